package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/auth"
	"github.com/roxannesyombua/Movers-App-Server/internal/config"
	"github.com/roxannesyombua/Movers-App-Server/internal/database"
	"github.com/roxannesyombua/Movers-App-Server/internal/events"
	"github.com/roxannesyombua/Movers-App-Server/internal/export"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"
	"github.com/roxannesyombua/Movers-App-Server/internal/pricing"
	"github.com/roxannesyombua/Movers-App-Server/internal/repository"
	"github.com/roxannesyombua/Movers-App-Server/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	handler http.Handler
	db      *database.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := zerolog.Nop()

	db, err := database.NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	engine, err := pricing.NewEngine(pricing.DefaultConfig())
	require.NoError(t, err)

	cache := repository.NewMemoryStatusCache(5 * time.Minute)
	bus := events.NewEventBus()
	tokens := auth.NewTokenManager("test-secret", "movers-test", time.Hour)

	cfg := &config.Config{}
	cfg.HTTP.Port = 0
	cfg.RateLimit.RPS = 1000
	cfg.RateLimit.Burst = 1000

	srv := NewHTTPServer(cfg, Deps{
		Users:     service.NewUserService(db, tokens, bus, &logger),
		Inventory: service.NewInventoryService(db),
		Quotes:    service.NewQuoteService(db, engine, bus, &logger),
		Bookings:  service.NewBookingService(db, bus, cache, &logger),
		Repo:      db,
		Cache:     cache,
		Exporter:  export.NewExporter(t.TempDir(), &logger),
		AuthMW:    NewAuthMiddleware(tokens, cache, &logger),
	}, &logger)

	return &testEnv{handler: srv.Handler(), db: db}
}

func (e *testEnv) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)

	var decoded map[string]any
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &decoded))
	}
	return rec, decoded
}

func (e *testEnv) registerAndLogin(t *testing.T, email string) string {
	t.Helper()

	rec, _ := e.do(t, http.MethodPost, "/auth/register", "", map[string]any{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    email,
		"password": "s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return token
}

func (e *testEnv) adminToken(t *testing.T) string {
	t.Helper()

	hash, err := auth.HashPassword("admin-s3cret")
	require.NoError(t, err)
	admin := &models.User{
		Username:     "admin",
		Email:        "admin@example.com",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	require.NoError(t, e.db.CreateUser(context.Background(), admin))

	rec, body := e.do(t, http.MethodPost, "/auth/login", "", map[string]any{
		"email":    "admin@example.com",
		"password": "admin-s3cret",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	return body["token"].(string)
}

func TestAuthFlow(t *testing.T) {
	env := newTestEnv(t)

	t.Run("RegisterValidates", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/auth/register", "", map[string]any{"email": ""})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DuplicateRegistration", func(t *testing.T) {
		payload := map[string]any{"email": "dup@example.com", "password": "s3cret"}
		rec, _ := env.do(t, http.MethodPost, "/auth/register", "", payload)
		require.Equal(t, http.StatusCreated, rec.Code)

		rec, _ = env.do(t, http.MethodPost, "/auth/register", "", payload)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("LoginWrongPassword", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/auth/login", "", map[string]any{
			"email":    "dup@example.com",
			"password": "wrong",
		})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("ProtectedEndpointNeedsToken", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodGet, "/api/quotes", "", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("GarbageTokenRejected", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodGet, "/api/quotes", "not-a-token", nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestBookingFlow(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "mover@example.com")

	t.Run("BookBeforeApprovalFails", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/book", token, map[string]any{
			"date": "2026-10-01", "time": "14:30",
		})
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "No approved booking found", body["error"])
	})

	t.Run("ShareLocation", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/api/location", token, map[string]any{
			"current_location": "Nairobi", "new_location": "Mombasa",
		})
		assert.Equal(t, http.StatusCreated, rec.Code)
	})

	t.Run("SecondOpenBookingConflicts", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/api/location", token, map[string]any{
			"current_location": "Kisumu", "new_location": "Nakuru",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	var quoteID float64
	t.Run("CalculateQuote", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/calculate_quote", token, map[string]any{
			"distance": 50, "home_type": "Bedsitter",
		})
		require.Equal(t, http.StatusOK, rec.Code)

		quote := body["quote"].(map[string]any)
		assert.Equal(t, 35250.0, quote["amount"])
		quoteID = quote["id"].(float64)
	})

	t.Run("CalculateQuoteStringDistance", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/calculate_quote", token, map[string]any{
			"distance": "25.5", "home_type": "Studio",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		quote := body["quote"].(map[string]any)
		// 200 base + 80 home rate + 25.5 km * 700
		assert.Equal(t, 18130.0, quote["amount"])
	})

	t.Run("CalculateQuoteBadDistance", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/calculate_quote", token, map[string]any{
			"distance": "far", "home_type": "Bedsitter",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Distance must be a number", body["error"])
	})

	t.Run("CalculateQuoteUnknownHomeType", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/api/calculate_quote", token, map[string]any{
			"distance": 50, "home_type": "Castle",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("RecalculateQuote", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPut, fmt.Sprintf("/api/quote/%d", int64(quoteID)), token, map[string]any{
			"distance": 100,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		quote := body["quote"].(map[string]any)
		assert.Equal(t, 70250.0, quote["amount"])
		assert.Equal(t, "Bedsitter", quote["house_type"])
	})

	t.Run("SelectQuote", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/select_quote", token, map[string]any{
			"quote_id": quoteID,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		booking := body["booking"].(map[string]any)
		assert.Equal(t, models.StatusQuoteSelected, booking["status"])
	})

	t.Run("ApproveQuote", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/quote", token, map[string]any{
			"approve": true,
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, true, body["approved"])
		assert.Equal(t, models.StatusApproved, body["status"])
	})

	t.Run("Book", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/book", token, map[string]any{
			"date": "2026-10-01", "time": "14:30",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		booking := body["booking"].(map[string]any)
		assert.Equal(t, models.StatusConfirmed, booking["status"])
	})

	t.Run("BookBadDate", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/api/book", token, map[string]any{
			"date": "01/10/2026", "time": "14:30",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("GetStatus", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/get_status", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, models.StatusConfirmed, body["status"])
	})

	t.Run("ListQuotes", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/quotes", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		quotes := body["quotes"].([]any)
		assert.Len(t, quotes, 2)
	})

	t.Run("DeleteQuote", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodDelete, fmt.Sprintf("/api/quote/%d", int64(quoteID)), token, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/quote/%d", int64(quoteID)), token, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("Notify", func(t *testing.T) {
		rec, body := env.do(t, http.MethodPost, "/api/notify", token, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "Notification sent", body["message"])
	})
}

func TestQuoteComputeVariant(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "variant@example.com")

	// /api/quote computes when the body carries move parameters.
	rec, body := env.do(t, http.MethodPost, "/api/quote", token, map[string]any{
		"distance": 50, "home_type": "Bedsitter",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	quote := body["quote"].(map[string]any)
	assert.Equal(t, 35250.0, quote["amount"])

	rec, _ = env.do(t, http.MethodPost, "/api/quote", token, map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQuoteOwnership(t *testing.T) {
	env := newTestEnv(t)
	ownerToken := env.registerAndLogin(t, "owner@example.com")
	strangerToken := env.registerAndLogin(t, "stranger@example.com")

	rec, body := env.do(t, http.MethodPost, "/api/calculate_quote", ownerToken, map[string]any{
		"distance": 10, "home_type": "Studio",
	})
	require.Equal(t, http.StatusOK, rec.Code)
	quoteID := int64(body["quote"].(map[string]any)["id"].(float64))

	rec, _ = env.do(t, http.MethodGet, fmt.Sprintf("/api/quote/%d", quoteID), strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodDelete, fmt.Sprintf("/api/quote/%d", quoteID), strangerToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/select_quote", strangerToken, map[string]any{
		"quote_id": quoteID,
	})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	env := newTestEnv(t)
	clientToken := env.registerAndLogin(t, "client@example.com")
	adminToken := env.adminToken(t)

	rec, _ := env.do(t, http.MethodPost, "/api/location", clientToken, map[string]any{
		"current_location": "Nairobi", "new_location": "Eldoret",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	t.Run("ClientCannotOverrideStatus", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodPost, "/api/update_status", clientToken, map[string]any{
			"status": "On Hold",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminOverridesStatus", func(t *testing.T) {
		client, err := env.db.GetUserByEmail(context.Background(), "client@example.com")
		require.NoError(t, err)

		rec, body := env.do(t, http.MethodPost, "/api/update_status", adminToken, map[string]any{
			"user_id": client.ID,
			"status":  "On Hold",
		})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "On Hold", body["status"])

		rec, body = env.do(t, http.MethodGet, "/api/get_status", clientToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "On Hold", body["status"])
	})

	t.Run("ClientCannotExport", func(t *testing.T) {
		rec, _ := env.do(t, http.MethodGet, "/api/export", clientToken, nil)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("AdminExports", func(t *testing.T) {
		rec, body := env.do(t, http.MethodGet, "/api/export", adminToken, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, body["file"])
	})
}

func TestInventoryEndpoints(t *testing.T) {
	env := newTestEnv(t)
	token := env.registerAndLogin(t, "packer@example.com")

	rec, _ := env.do(t, http.MethodPost, "/api/inventory", token, map[string]any{
		"category": "Furniture", "item_name": "Sofa", "quantity": 2,
	})
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec, _ = env.do(t, http.MethodPost, "/api/inventory", token, map[string]any{
		"category": "", "item_name": "Sofa",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, body := env.do(t, http.MethodGet, "/api/inventory", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	items := body["inventory"].([]any)
	require.Len(t, items, 1)
	assert.Equal(t, "Sofa", items[0].(map[string]any)["item_name"])
}

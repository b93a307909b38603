package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/roxannesyombua/Movers-App-Server/internal/database"
	"github.com/roxannesyombua/Movers-App-Server/internal/pricing"
	"github.com/roxannesyombua/Movers-App-Server/internal/service"
)

func (s *HTTPServer) handleWelcome(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		writeError(w, http.StatusNotFound, "Not found")
		return
	}
	writeMessage(w, http.StatusOK, "Welcome to the Movers App")
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	user, err := s.users.Register(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "User registered successfully",
		"user":    user,
	})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	token, user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

func (s *HTTPServer) handleInventory(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	switch r.Method {
	case http.MethodGet:
		items, err := s.inventory.ListForUser(r.Context(), user.ID)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"inventory": items})
	case http.MethodPost:
		var req struct {
			Category string `json:"category"`
			ItemName string `json:"item_name"`
			Quantity int64  `json:"quantity"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		item, err := s.inventory.Add(r.Context(), user.ID, req.Category, req.ItemName, req.Quantity)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, map[string]any{
			"message": "Inventory item added",
			"item":    item,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *HTTPServer) handleShareLocation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		CurrentLocation string `json:"current_location"`
		NewLocation     string `json:"new_location"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	booking, err := s.bookings.ShareLocation(r.Context(), user.ID, req.CurrentLocation, req.NewLocation)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Location shared successfully",
		"booking": booking,
	})
}

// handleQuote serves two request shapes on one path: a body carrying
// "approve" records the decision on the user's booking, a body carrying
// move parameters computes a fresh quote.
func (s *HTTPServer) handleQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		Approve  *bool           `json:"approve"`
		Distance json.RawMessage `json:"distance"`
		HomeType string          `json:"home_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	if req.Approve == nil {
		if len(req.Distance) == 0 && req.HomeType == "" {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}
		s.calculateQuote(w, r, user.ID, req.Distance, req.HomeType)
		return
	}

	booking, err := s.bookings.ApproveQuote(r.Context(), user.ID, *req.Approve)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Quote updated",
		"approved": booking.Approved,
		"status":   booking.Status,
	})
}

func (s *HTTPServer) handleCalculateQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		Distance json.RawMessage `json:"distance"`
		HomeType string          `json:"home_type"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	s.calculateQuote(w, r, user.ID, req.Distance, req.HomeType)
}

func (s *HTTPServer) calculateQuote(w http.ResponseWriter, r *http.Request, userID int64, rawDistance json.RawMessage, homeType string) {
	distance, ok := parseDistance(rawDistance)
	if !ok {
		writeError(w, http.StatusBadRequest, "Distance must be a number")
		return
	}

	quotes, err := s.quotes.Calculate(r.Context(), userID, distance, homeType)
	if err != nil {
		s.mapError(w, err)
		return
	}

	payload := map[string]any{"quotes": quotes}
	if len(quotes) == 1 {
		payload["quote"] = quotes[0]
	}
	writeJSON(w, http.StatusOK, payload)
}

func (s *HTTPServer) handleQuoteByID(w http.ResponseWriter, r *http.Request) {
	user := userFromContext(r.Context())

	idStr := strings.TrimPrefix(r.URL.Path, "/api/quote/")
	quoteID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || quoteID <= 0 {
		writeError(w, http.StatusNotFound, "Quote not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		quote, err := s.quotes.Get(r.Context(), user.ID, quoteID)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"quote": quote})
	case http.MethodPut:
		var req struct {
			Distance json.RawMessage `json:"distance"`
			HomeType *string         `json:"home_type"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid input")
			return
		}

		var newDistance *float64
		if len(req.Distance) > 0 {
			d, ok := parseDistance(req.Distance)
			if !ok {
				writeError(w, http.StatusBadRequest, "Distance must be a number")
				return
			}
			newDistance = &d
		}

		quote, err := s.quotes.Recalculate(r.Context(), user.ID, quoteID, newDistance, req.HomeType)
		if err != nil {
			s.mapError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Quote updated successfully",
			"quote":   quote,
		})
	case http.MethodDelete:
		if err := s.quotes.Delete(r.Context(), user.ID, quoteID); err != nil {
			s.mapError(w, err)
			return
		}
		writeMessage(w, http.StatusOK, "Quote deleted successfully")
	default:
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *HTTPServer) handleListQuotes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	quotes, err := s.quotes.ListForUser(r.Context(), user.ID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quotes": quotes})
}

func (s *HTTPServer) handleSelectQuote(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		QuoteID int64 `json:"quote_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.QuoteID == 0 {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	booking, quote, err := s.bookings.SelectQuote(r.Context(), user.ID, req.QuoteID)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "Quote selected successfully",
		"booking": booking,
		"quote":   quote,
	})
}

func (s *HTTPServer) handleBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		Date string `json:"date"`
		Time string `json:"time"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	booking, err := s.bookings.Schedule(r.Context(), user.ID, req.Date, req.Time)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Booking confirmed",
		"booking": booking,
	})
}

func (s *HTTPServer) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	var req struct {
		UserID int64  `json:"user_id"`
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	booking, err := s.bookings.OverrideStatus(r.Context(), user, req.UserID, req.Status)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Status updated",
		"status":  booking.Status,
	})
}

func (s *HTTPServer) handleGetStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	status, err := s.bookings.GetStatus(r.Context(), user.ID)
	if err != nil {
		s.mapError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": status})
}

func (s *HTTPServer) handleNotify(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())

	if err := s.bookings.Notify(r.Context(), user.ID); err != nil {
		s.mapError(w, err)
		return
	}
	writeMessage(w, http.StatusOK, "Notification sent")
}

func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	user := userFromContext(r.Context())
	if !user.IsAdmin() {
		writeError(w, http.StatusForbidden, "Admin access required")
		return
	}

	bookings, err := s.repo.GetAllBookings(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}
	quotes, err := s.repo.GetAllQuotes(r.Context())
	if err != nil {
		s.mapError(w, err)
		return
	}

	filePath, err := s.exporter.Export(bookings, quotes)
	if err != nil {
		s.mapError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Export created",
		"file":    filePath,
	})
}

// parseDistance accepts a JSON number or a numeric string.
func parseDistance(raw json.RawMessage) (float64, bool) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0, false
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0, false
		}
		value, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		return value, true
	}
	var value float64
	if err := json.Unmarshal(trimmed, &value); err != nil {
		return 0, false
	}
	return value, true
}

func (s *HTTPServer) mapError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, pricing.ErrUnknownHomeType),
		errors.Is(err, pricing.ErrNegativeDistance),
		errors.Is(err, pricing.ErrUnknownCompany):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNoApprovedBooking):
		writeError(w, http.StatusNotFound, "No approved booking found")
	case errors.Is(err, database.ErrNotFound):
		writeError(w, http.StatusNotFound, "Not found")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, service.ErrForbidden):
		writeError(w, http.StatusForbidden, "Admin access required")
	case errors.Is(err, database.ErrDuplicateUser):
		writeError(w, http.StatusConflict, "User already exists")
	case errors.Is(err, database.ErrOpenBookingExists):
		writeError(w, http.StatusConflict, "An open booking already exists")
	case errors.Is(err, database.ErrConcurrentModification):
		writeError(w, http.StatusConflict, "Booking was modified concurrently, retry")
	default:
		s.log.Error().Err(err).Msg("request failed")
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

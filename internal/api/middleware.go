package api

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/roxannesyombua/Movers-App-Server/internal/auth"
	"github.com/roxannesyombua/Movers-App-Server/internal/domain"
	"github.com/roxannesyombua/Movers-App-Server/internal/metrics"
	"github.com/roxannesyombua/Movers-App-Server/internal/models"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

type contextKey string

const userContextKey contextKey = "current_user"

// AuthMiddleware validates bearer tokens and enforces the per-user
// request budget before a request reaches the API handlers.
type AuthMiddleware struct {
	tokens *auth.TokenManager
	cache  domain.StatusCache
	log    zerolog.Logger
}

func NewAuthMiddleware(tokens *auth.TokenManager, cache domain.StatusCache, logger *zerolog.Logger) *AuthMiddleware {
	mw := &AuthMiddleware{tokens: tokens, cache: cache}
	if logger != nil {
		mw.log = logger.With().Str("component", "auth").Logger()
	}
	return mw
}

func (m *AuthMiddleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString, err := auth.ExtractToken(r.Header.Get("Authorization"))
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Missing or invalid authorization header")
			return
		}

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			m.log.Debug().Err(err).Msg("token rejected")
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		if m.cache != nil {
			allowed, err := m.cache.CheckRateLimit(r.Context(), claims.UserID,
				models.RateLimitRequests, models.RateLimitWindow*time.Second)
			if err != nil {
				m.log.Warn().Err(err).Int64("user_id", claims.UserID).Msg("rate limit check failed")
			} else if !allowed {
				writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
				return
			}
		}

		user := &models.User{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey, user)))
	})
}

func userFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(userContextKey).(*models.User)
	return user
}

// ipLimiter throttles unauthenticated endpoints per client address,
// mainly to slow credential stuffing on /auth/login.
type ipLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      rate.Limit
	burst    int
}

func newIPLimiter(rps float64, burst int) *ipLimiter {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 5
	}
	return &ipLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rate.Limit(rps),
		burst:    burst,
	}
}

func (l *ipLimiter) get(remoteAddr string) *rate.Limiter {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.limiters[host]
	if !exists {
		limiter = rate.NewLimiter(l.rps, l.burst)
		l.limiters[host] = limiter
	}
	return limiter
}

func (l *ipLimiter) wrap(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !l.get(r.RemoteAddr).Allow() {
			writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
			return
		}
		next(w, r)
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func loggingMiddleware(log *zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		metrics.IncHTTP(r.URL.Path, strconv.Itoa(recorder.status))
	})
}

package http

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rental-backend/internal/config"
	"rental-backend/internal/domain"
	"rental-backend/internal/logger"
	"rental-backend/internal/security"

	"github.com/gorilla/mux"
)

type contextKey string

const claimsKey contextKey = "claims"

// AuthMiddleware enforces the security level configured for the matched
// route and stores the token claims in the request context.
type AuthMiddleware struct {
	tokenManager security.TokenManager
}

func NewAuthMiddleware(tm security.TokenManager) *AuthMiddleware {
	return &AuthMiddleware{tokenManager: tm}
}

func (m *AuthMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}
		level := config.GetSecurityLevel(name)

		// Public endpoint - skip auth
		if level == config.SecurityPublic {
			next.ServeHTTP(w, r)
			return
		}

		token, ok := bearerToken(r)
		if !ok {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}
		claims, err := m.tokenManager.ValidateToken(token)
		if err != nil {
			writeError(w, r, domain.ErrUnauthorized)
			return
		}
		if !allowed(level, claims) {
			writeError(w, r, errForbidden)
			return
		}

		ctx := context.WithValue(r.Context(), claimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return header[7:], true
	}
	return "", false
}

func allowed(level config.SecurityLevel, claims *security.Claims) bool {
	switch level {
	case config.SecurityCustomer:
		return claims.Role == security.RoleCustomer && claims.CustomerID > 0
	case config.SecurityStaff:
		return claims.Role == security.RoleStaff
	}
	return true
}

func claimsFrom(ctx context.Context) *security.Claims {
	claims, _ := ctx.Value(claimsKey).(*security.Claims)
	return claims
}

// customerID returns the authenticated customer, or 0 outside customer routes.
func customerID(r *http.Request) int32 {
	if claims := claimsFrom(r.Context()); claims != nil {
		return claims.CustomerID
	}
	return 0
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		route := ""
		if cur := mux.CurrentRoute(r); cur != nil {
			route = cur.GetName()
		}
		logger.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"route", route,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds())
	})
}

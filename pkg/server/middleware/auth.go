package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/vincentyu/portfolio-backend/pkg/identity"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
	"github.com/vincentyu/portfolio-backend/pkg/token"
)

// TokenCookie is the name of the cookie that may carry the session token
const TokenCookie = "token"

// Authenticator is middleware that validates session tokens and loads the
// caller's account.
type Authenticator struct {
	Issuer *token.Issuer
	Users  store.CredentialStore
	Log    logrus.FieldLogger
}

// NewAuthenticator creates a new Authenticator middleware
func NewAuthenticator(issuer *token.Issuer, users store.CredentialStore, log logrus.FieldLogger) *Authenticator {
	return &Authenticator{Issuer: issuer, Users: users, Log: log}
}

// ExtractToken returns the session token of r: the token cookie when
// present, otherwise the Bearer value of the Authorization header.
func ExtractToken(r *http.Request) string {
	if c, err := r.Cookie(TokenCookie); err == nil && c.Value != "" {
		return c.Value
	}
	authHeader := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if len(authHeader) > len(prefix) && strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return strings.TrimSpace(authHeader[len(prefix):])
	}
	return ""
}

// AuthRequired rejects requests without a valid token for an existing user
// and stores the caller's Identity in the request context.
func (a *Authenticator) AuthRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := ExtractToken(r)
		if raw == "" {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}

		claims, err := a.Issuer.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "Invalid or expired token")
			return
		}

		user, err := a.Users.FetchUser(claims.ID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				writeError(w, http.StatusUnauthorized, "User not found")
				return
			}
			if a.Log != nil {
				a.Log.WithError(err).Error("failed to load authenticated user")
			}
			writeError(w, http.StatusInternalServerError, "Internal Server Error")
			return
		}

		id := identity.FromClaims(*user, claims).WithRemoteIP(identity.ClientIP(r))
		next.ServeHTTP(w, r.WithContext(identity.Set(r.Context(), id)))
	})
}

// AdminRequired only lets through callers whose Identity holds the admin
// role. It must run after AuthRequired.
func (a *Authenticator) AdminRequired(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := identity.Get(r.Context())
		if !ok {
			writeError(w, http.StatusUnauthorized, "Authentication required")
			return
		}
		if !id.IsAdmin() {
			writeError(w, http.StatusForbidden, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Admin chains AuthRequired and AdminRequired around h.
func (a *Authenticator) Admin(h http.HandlerFunc) http.Handler {
	return a.AuthRequired(a.AdminRequired(h))
}

// User wraps h with AuthRequired.
func (a *Authenticator) User(h http.HandlerFunc) http.Handler {
	return a.AuthRequired(h)
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": message})
}

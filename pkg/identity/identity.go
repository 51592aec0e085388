package identity

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/token"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

const (
	// Key is the context key for Identity.
	Key ContextKey = "identity"
)

// Identity is the authenticated caller of a request.
type Identity struct {
	// User is the freshly loaded account, without its password hash
	User model.User

	IssuedAt  time.Time
	ExpiresAt time.Time

	// RemoteIP is the client address
	RemoteIP net.IP
}

// FromClaims builds an Identity for user from verified token claims.
func FromClaims(user model.User, claims *token.Claims) *Identity {
	id := &Identity{User: user.Sanitized()}
	if claims != nil {
		if claims.IssuedAt != nil {
			id.IssuedAt = claims.IssuedAt.Time
		}
		if claims.ExpiresAt != nil {
			id.ExpiresAt = claims.ExpiresAt.Time
		}
	}
	return id
}

// WithRemoteIP sets the remote IP address.
func (i *Identity) WithRemoteIP(ip net.IP) *Identity {
	i.RemoteIP = ip
	return i
}

// IsAdmin returns true if the identity holds the admin role.
func (i *Identity) IsAdmin() bool {
	return i.User.Role.IsAdmin()
}

// ClientIP extracts the caller address from r, preferring the first
// X-Forwarded-For hop.
func ClientIP(r *http.Request) net.IP {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		first := strings.TrimSpace(strings.Split(fwd, ",")[0])
		if ip := net.ParseIP(first); ip != nil {
			return ip
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return net.ParseIP(host)
}

// Get retrieves Identity from context.
func Get(ctx context.Context) (*Identity, bool) {
	id, ok := ctx.Value(Key).(*Identity)
	return id, ok
}

// Set stores Identity in context.
func Set(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, Key, id)
}

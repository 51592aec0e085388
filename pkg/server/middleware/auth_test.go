package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/vincentyu/portfolio-backend/pkg/identity"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
	"github.com/vincentyu/portfolio-backend/pkg/token"
)

type mockUsers struct {
	mock.Mock
	store.CredentialStore
}

func (m *mockUsers) FetchUser(id uint) (*model.User, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newTestIssuer(t *testing.T) *token.Issuer {
	issuer, err := token.NewIssuer("test-secret", time.Hour)
	require.NoError(t, err)
	return issuer
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) string {
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"]
}

func TestExtractToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		cookie string
		want   string
	}{
		{name: "bearer", header: "Bearer abc", want: "abc"},
		{name: "lowercase scheme", header: "bearer abc", want: "abc"},
		{name: "cookie wins", header: "Bearer abc", cookie: "xyz", want: "xyz"},
		{name: "other scheme", header: "Basic Zm9v", want: ""},
		{name: "empty bearer", header: "Bearer ", want: ""},
		{name: "nothing", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if tt.cookie != "" {
				r.AddCookie(&http.Cookie{Name: TokenCookie, Value: tt.cookie})
			}
			assert.Equal(t, tt.want, ExtractToken(r))
		})
	}
}

func TestAuthRequired(t *testing.T) {
	issuer := newTestIssuer(t)
	alice := model.User{ID: 7, Username: "alice", Email: "alice@example.com", Role: model.RoleUser}
	valid, err := issuer.Issue(alice)
	require.NoError(t, err)

	expired, err := newTestIssuer(t).WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) }).Issue(alice)
	require.NoError(t, err)

	ghost, err := issuer.Issue(model.User{ID: 99, Email: "ghost@example.com"})
	require.NoError(t, err)

	users := &mockUsers{}
	users.On("FetchUser", uint(7)).Return(&alice, nil)
	users.On("FetchUser", uint(99)).Return(nil, store.ErrUserNotFound)

	auth := NewAuthenticator(issuer, users, nil)

	var seen *identity.Identity
	h := auth.AuthRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = identity.Get(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{name: "no token", status: http.StatusUnauthorized, message: "Authentication required"},
		{name: "garbage", header: "Bearer not-a-jwt", status: http.StatusUnauthorized, message: "Invalid or expired token"},
		{name: "expired", header: "Bearer " + expired, status: http.StatusUnauthorized, message: "Invalid or expired token"},
		{name: "deleted user", header: "Bearer " + ghost, status: http.StatusUnauthorized, message: "User not found"},
		{name: "valid", header: "Bearer " + valid, status: http.StatusNoContent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			r := httptest.NewRequest("GET", "/api/auth/me", nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			h.ServeHTTP(w, r)

			assert.Equal(t, tt.status, w.Code)
			if tt.message != "" {
				assert.Equal(t, tt.message, errorBody(t, w))
				assert.Nil(t, seen)
				return
			}
			require.NotNil(t, seen)
			assert.Equal(t, "alice", seen.User.Username)
			assert.False(t, seen.ExpiresAt.IsZero())
		})
	}
}

func TestAdminRequired(t *testing.T) {
	issuer := newTestIssuer(t)
	admin := model.User{ID: 1, Username: "root", Email: "root@example.com", Role: model.RoleAdmin}
	alice := model.User{ID: 2, Username: "alice", Email: "alice@example.com", Role: model.RoleUser}

	users := &mockUsers{}
	users.On("FetchUser", uint(1)).Return(&admin, nil)
	users.On("FetchUser", uint(2)).Return(&alice, nil)

	auth := NewAuthenticator(issuer, users, nil)
	h := auth.Admin(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	adminToken, _ := issuer.Issue(admin)
	aliceToken, _ := issuer.Issue(alice)

	t.Run("anonymous", func(t *testing.T) {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest("GET", "/api/users", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("regular user", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/users", nil)
		r.Header.Set("Authorization", "Bearer "+aliceToken)
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Equal(t, "Admin access required", errorBody(t, w))
	})

	t.Run("admin", func(t *testing.T) {
		r := httptest.NewRequest("GET", "/api/users", nil)
		r.AddCookie(&http.Cookie{Name: TokenCookie, Value: adminToken})
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("without identity", func(t *testing.T) {
		w := httptest.NewRecorder()
		auth.AdminRequired(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})).
			ServeHTTP(w, httptest.NewRequest("GET", "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

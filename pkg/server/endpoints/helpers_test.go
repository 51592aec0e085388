package endpoints

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/password"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/middleware"
	"github.com/vincentyu/portfolio-backend/pkg/token"
)

func TestMain(m *testing.M) {
	audit.SetEnabled(false)
	os.Exit(m.Run())
}

var (
	testAdmin = &model.User{ID: 1, Username: "admin", Email: "admin@example.com", Role: model.RoleAdmin}
	testUser  = &model.User{ID: 2, Username: "bob", Email: "bob@example.com", Role: model.RoleUser}
)

type mocks struct {
	users    *MockCredentialStore
	blog     *MockBlogStore
	projects *MockProjectsStore
	messages *MockMessagesStore
	health   *MockHealthStore
	notifier *MockNotifier
	logs     *test.Hook
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:   "test-secret",
		JWTExpiry:   "1h",
		Environment: config.EnvDevelopment,
		LogLevel:    "debug",
	}
}

// newMockServer builds a Server whose stores are testify mocks and
// registers every endpoint on its router.
func newMockServer(t *testing.T, cfg *config.Config) (*server.Server, *mocks) {
	t.Helper()
	if cfg == nil {
		cfg = testConfig()
	}

	log, hook := test.NewNullLogger()
	m := &mocks{
		users:    &MockCredentialStore{},
		blog:     &MockBlogStore{},
		projects: &MockProjectsStore{},
		messages: &MockMessagesStore{},
		health:   &MockHealthStore{},
		notifier: &MockNotifier{},
		logs:     hook,
	}

	issuer, err := token.NewIssuer(cfg.JWTSecret, time.Hour)
	require.NoError(t, err)

	s := &server.Server{
		Router:   mux.NewRouter(),
		Log:      log,
		Users:    m.users,
		Blog:     m.blog,
		Projects: m.projects,
		Messages: m.messages,
		Health:   m.health,
		Issuer:   issuer,
		Hasher:   password.NewHasher(4),
		Auth:     middleware.NewAuthenticator(issuer, m.users, log),
		Notifier: m.notifier,
	}
	s.SetConfig(cfg)
	RegisterAll(s)

	t.Cleanup(func() {
		m.users.AssertExpectations(t)
		m.blog.AssertExpectations(t)
		m.projects.AssertExpectations(t)
		m.messages.AssertExpectations(t)
		m.notifier.AssertExpectations(t)
	})
	return s, m
}

// tokenFor issues a token for user and lets the auth middleware find it.
func tokenFor(t *testing.T, s *server.Server, m *mocks, user *model.User) string {
	t.Helper()
	tok, err := s.Issuer.Issue(*user)
	require.NoError(t, err)
	m.users.On("FetchUser", user.ID).Return(user, nil).Maybe()
	return tok
}

func doRequest(h http.Handler, method, path string, body interface{}, tok string) *httptest.ResponseRecorder {
	var reader io.Reader
	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewBufferString(b)
	default:
		raw, _ := json.Marshal(b)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}

func errorMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	msg, _ := decodeBody(t, w)["error"].(string)
	return msg
}

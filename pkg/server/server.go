package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/vincentyu/portfolio-backend/pkg/config"
	"github.com/vincentyu/portfolio-backend/pkg/logging"
	"github.com/vincentyu/portfolio-backend/pkg/notify"
	"github.com/vincentyu/portfolio-backend/pkg/password"
	"github.com/vincentyu/portfolio-backend/pkg/server/middleware"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
	gormstore "github.com/vincentyu/portfolio-backend/pkg/server/store/gorm"
	"github.com/vincentyu/portfolio-backend/pkg/token"
)

// Server holds the router, the shared dependencies of the endpoints and
// the underlying http.Server.
type Server struct {
	Router   *mux.Router
	DB       *gorm.DB
	Log      *logrus.Logger
	Registry *prometheus.Registry

	Users    store.CredentialStore
	Blog     store.BlogStore
	Projects store.ProjectsStore
	Messages store.MessagesStore
	Health   store.HealthStore

	Issuer   *token.Issuer
	Hasher   *password.Hasher
	Auth     *middleware.Authenticator
	Notifier notify.Notifier

	cfgMu  sync.RWMutex
	config *config.Config

	handler http.Handler
	srv     *http.Server
}

// NewServer wires the GORM stores, token issuer and password hasher for
// cfg. notifier may be nil, in which case contact notifications are
// skipped.
func NewServer(cfg *config.Config, db *gorm.DB, log *logrus.Logger, notifier notify.Notifier) (*Server, error) {
	ttl, err := cfg.TokenTTL()
	if err != nil {
		return nil, err
	}
	issuer, err := token.NewIssuer(cfg.JWTSecret, ttl)
	if err != nil {
		return nil, err
	}

	users := gormstore.NewCredentialStore(db)

	s := &Server{
		Router:   mux.NewRouter(),
		DB:       db,
		Log:      log,
		Registry: prometheus.NewRegistry(),
		Users:    users,
		Blog:     gormstore.NewBlogStore(db),
		Projects: gormstore.NewProjectsStore(db),
		Messages: gormstore.NewMessagesStore(db),
		Health:   gormstore.NewHealthStore(db),
		Issuer:   issuer,
		Hasher:   password.NewHasher(cfg.BcryptRounds),
		Auth:     middleware.NewAuthenticator(issuer, users, log),
		Notifier: notifier,
		config:   cfg,
	}
	s.Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s.handler = s.buildHandler()

	s.srv = &http.Server{
		Handler:      s.handler,
		Addr:         net.JoinHostPort(cfg.BindAddress, cfg.Port),
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
	}
	return s, nil
}

// Config returns the current configuration
func (s *Server) Config() *config.Config {
	s.cfgMu.RLock()
	defer s.cfgMu.RUnlock()
	return s.config
}

// SetConfig swaps in a reloaded configuration. Allowed origins and the log
// level follow it; listen address and secrets need a restart.
func (s *Server) SetConfig(cfg *config.Config) {
	s.cfgMu.Lock()
	s.config = cfg
	s.cfgMu.Unlock()
	logging.SetLevel(s.Log, cfg.LogLevel)
}

func (s *Server) buildHandler() http.Handler {
	requests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "portfolio",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by status code and method.",
	}, []string{"code", "method"})
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "portfolio",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"code", "method"})
	s.Registry.MustRegister(requests, duration)

	s.Router.Handle("/metrics", promhttp.HandlerFor(s.Registry, promhttp.HandlerOpts{})).Methods("GET")

	var h http.Handler = s.Router
	h = promhttp.InstrumentHandlerDuration(duration, promhttp.InstrumentHandlerCounter(requests, h))
	h = middleware.LimitBody(h)
	h = handlers.CORS(
		handlers.AllowedOriginValidator(func(origin string) bool {
			return s.Config().IsAllowedOrigin(origin)
		}),
		handlers.AllowCredentials(),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "PATCH"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(h)
	h = middleware.SecurityHeaders(h)
	h = handlers.LoggingHandler(logging.Writer(s.Log), h)
	h = middleware.RequestID(h)
	h = handlers.RecoveryHandler(
		handlers.RecoveryLogger(s.Log),
		handlers.PrintRecoveryStack(true),
	)(h)
	return h
}

// Handler returns the fully wrapped HTTP handler
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.srv.Addr
}

// Start listens on the configured address and serves until Shutdown.
func (s *Server) Start() error {
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// StartWithListener serves on l until Shutdown.
func (s *Server) StartWithListener(l net.Listener) error {
	err := s.srv.Serve(l)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

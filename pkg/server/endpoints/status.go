package endpoints

import (
	"net/http"
	"time"

	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// APIName and APIVersion are reported by GET /api
const (
	APIName    = "Vincent Yu API"
	APIVersion = "1.0.0"
)

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status      string `json:"status"`
	Timestamp   string `json:"timestamp"`
	Environment string `json:"environment"`
	Error       string `json:"error,omitempty"`
}

// IndexResponse is the body of GET /api
type IndexResponse struct {
	Name      string   `json:"name"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

var apiEndpoints = []string{
	"/api/auth",
	"/api/blog",
	"/api/projects",
	"/api/contact",
	"/api/messages",
	"/api/users",
}

// RegisterStatusEndpoints registers the health check and API index
func RegisterStatusEndpoints(s *server.Server) {
	s.Router.HandleFunc("/health", handleHealth(s.Health, func() string {
		return s.Config().Environment
	})).Methods("GET")
	s.Router.HandleFunc("/api", handleIndex()).Methods("GET")
	s.Router.HandleFunc("/api/", handleIndex()).Methods("GET")
}

func handleHealth(health store.HealthStore, environment func() string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := HealthResponse{
			Status:      "ok",
			Timestamp:   time.Now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
			Environment: environment(),
		}

		if health != nil {
			if err := health.CheckConnectivity(); err != nil {
				resp.Status = "error"
				resp.Error = "database connectivity check failed"
				respondWithJSON(w, http.StatusServiceUnavailable, resp)
				return
			}
		}

		respondWithJSON(w, http.StatusOK, resp)
	}
}

func handleIndex() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondWithJSON(w, http.StatusOK, IndexResponse{
			Name:      APIName,
			Version:   APIVersion,
			Endpoints: apiEndpoints,
		})
	}
}

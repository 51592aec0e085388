package endpoints

import (
	"net/http"

	"github.com/vincentyu/portfolio-backend/pkg/server"
)

// RegisterAll registers all API endpoints on the server
func RegisterAll(srv *server.Server) {
	RegisterStatusEndpoints(srv)
	RegisterAuthEndpoints(srv)
	RegisterUsersEndpoints(srv)
	RegisterBlogEndpoints(srv)
	RegisterProjectsEndpoints(srv)
	RegisterContactEndpoints(srv)

	// Static files
	RegisterStaticFiles(srv)

	srv.Router.NotFoundHandler = http.HandlerFunc(handleNotFound)
	srv.Router.MethodNotAllowedHandler = http.HandlerFunc(handleNotFound)
}

// handleNotFound answers unknown routes, and known routes with an
// unsupported method, with a JSON 404.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	respondWithError(w, http.StatusNotFound, "Route not found: "+r.Method+" "+r.URL.Path)
}

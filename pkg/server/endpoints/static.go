package endpoints

import (
	"net/http"
	"os"
	"strings"

	"github.com/vincentyu/portfolio-backend/pkg/server"
)

// RegisterStaticFiles serves /uploads/* from the configured uploads
// directory. Directory listings are not exposed.
func RegisterStaticFiles(s *server.Server) {
	dir := s.Config().UploadsDir
	if dir == "" {
		return
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		s.Log.WithError(err).WithField("dir", dir).Warn("uploads directory is unavailable")
	}
	s.Log.WithField("dir", dir).Info("serving uploads")

	files := http.StripPrefix("/uploads/", http.FileServer(http.Dir(dir)))
	s.Router.PathPrefix("/uploads/").Handler(noListing(files)).Methods("GET", "HEAD")
}

func noListing(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasSuffix(r.URL.Path, "/") {
			respondWithError(w, http.StatusNotFound, "Route not found: "+r.Method+" "+r.URL.Path)
			return
		}
		next.ServeHTTP(w, r)
	})
}

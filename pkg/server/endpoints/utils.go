package endpoints

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/middleware"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

func respondWithError(w http.ResponseWriter, code int, payload interface{}) {
	respondWithJSON(w, code, map[string]interface{}{"error": payload})
}

func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, _ := json.Marshal(payload)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(response)
}

// errorWriter turns handler errors into JSON error responses. Causes are
// only echoed back outside production.
type errorWriter struct {
	log     logrus.FieldLogger
	verbose func() bool
}

func newErrorWriter(s *server.Server) *errorWriter {
	return &errorWriter{
		log:     s.Log,
		verbose: func() bool { return !s.Config().IsProduction() },
	}
}

func (e *errorWriter) respond(w http.ResponseWriter, r *http.Request, err error) {
	body := map[string]interface{}{}
	status := http.StatusInternalServerError

	var appErr *apperr.Error
	switch {
	case errors.As(err, &appErr):
		status = appErr.Kind.Status()
		body["error"] = appErr.Message
		if appErr.Err != nil && (appErr.Kind == apperr.KindValidation || appErr.Kind == apperr.KindConflict) {
			body["details"] = e.details(appErr.Err, "Duplicate entry")
		}
	case errors.Is(err, store.ErrConstraint):
		status = http.StatusConflict
		body["error"] = "Database constraint violation"
		body["details"] = e.details(err, "Duplicate entry")
	default:
		body["error"] = "Internal Server Error"
	}

	if status == http.StatusInternalServerError {
		fields := logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"request_id": middleware.GetRequestID(r.Context()),
		}
		e.log.WithFields(fields).WithError(err).Error("request failed")
		if e.verbose() {
			body["details"] = err.Error()
			body["path"] = r.URL.Path
			body["method"] = r.Method
		}
	}

	respondWithJSON(w, status, body)
}

func (e *errorWriter) details(err error, fallback string) string {
	if e.verbose() {
		return err.Error()
	}
	return fallback
}

// decodeJSON reads the request body into dst. An empty body decodes as an
// empty object so that missing fields are reported by validation.
func decodeJSON(r *http.Request, dst interface{}) error {
	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return nil
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return &apperr.Error{Kind: apperr.KindValidation, Message: "Request body too large", Err: err}
	}
	return &apperr.Error{Kind: apperr.KindValidation, Message: "Invalid JSON body", Err: err}
}

// idParam parses the numeric {id} route variable.
func idParam(r *http.Request, what string) (uint, error) {
	raw := mux.Vars(r)["id"]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, apperr.Validation("Invalid %s ID", what)
	}
	return uint(id), nil
}

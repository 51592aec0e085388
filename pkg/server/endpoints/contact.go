package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/notify"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// RegisterContactEndpoints registers the public contact form and the
// admin-only message inbox.
func RegisterContactEndpoints(s *server.Server) {
	errs := newErrorWriter(s)
	messages := s.Messages

	s.Router.HandleFunc("/api/contact", handleContact(messages, s.Notifier, s.Log, errs)).Methods("POST")

	inbox := s.Router.PathPrefix("/api/messages").Subrouter()
	inbox.Handle("", s.Auth.Admin(handleListMessages(messages, errs))).Methods("GET")
	inbox.Handle("/{id}", s.Auth.Admin(handleGetMessage(messages, errs))).Methods("GET")
	inbox.Handle("/{id}", s.Auth.Admin(handleDeleteMessage(messages, errs))).Methods("DELETE")
}

func handleContact(messages store.MessagesStore, notifier notify.Notifier, log logrus.FieldLogger, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req contactRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, contactMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		msg := &model.Message{
			Name:    req.Name,
			Email:   req.Email,
			Message: req.Message,
			Date:    time.Now().UTC().Format("2006-01-02"),
		}
		if req.Phone != "" {
			phone := req.Phone
			msg.Phone = &phone
		}
		if err := messages.CreateMessage(msg); err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		entry := log.WithField("message_id", msg.ID)
		if notifier != nil {
			err := notifier.SendContact(r.Context(), notify.ContactMessage{
				Name:    req.Name,
				Email:   req.Email,
				Phone:   req.Phone,
				Message: req.Message,
			})
			switch {
			case errors.Is(err, notify.ErrNotConfigured):
				entry.Debug("email not configured, contact notification skipped")
			case err != nil:
				entry.WithError(err).Warn("contact notification failed")
			default:
				entry.Info("contact notification sent")
			}
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"id":      msg.ID,
		})
	}
}

func messageNotFound(err error) error {
	if errors.Is(err, store.ErrMessageNotFound) {
		return apperr.NotFound("Not found")
	}
	return apperr.Internal(err)
}

func handleListMessages(messages store.MessagesStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := messages.ListMessages()
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}
		if list == nil {
			list = []model.Message{}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{"messages": list})
	}
}

func handleGetMessage(messages store.MessagesStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "message")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		msg, err := messages.FetchMessage(id)
		if err != nil {
			errs.respond(w, r, messageNotFound(err))
			return
		}
		respondWithJSON(w, http.StatusOK, msg)
	}
}

func handleDeleteMessage(messages store.MessagesStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "message")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		if err := messages.DeleteMessage(id); err != nil {
			errs.respond(w, r, messageNotFound(err))
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]bool{"success": true})
	}
}

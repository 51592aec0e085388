package endpoints

import (
	"errors"
	"net/http"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/identity"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/password"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// RegisterUsersEndpoints registers the admin-only /api/users routes
func RegisterUsersEndpoints(s *server.Server) {
	errs := newErrorWriter(s)
	users := s.Users
	router := s.Router.PathPrefix("/api/users").Subrouter()

	router.Handle("", s.Auth.Admin(handleListUsers(users, errs))).Methods("GET")
	router.Handle("", s.Auth.Admin(handleCreateUser(users, s.Hasher, errs))).Methods("POST")
	router.Handle("/{id}", s.Auth.Admin(handleGetUser(users, errs))).Methods("GET")
	router.Handle("/{id}", s.Auth.Admin(handleUpdateUser(users, errs))).Methods("PUT")
	router.Handle("/{id}", s.Auth.Admin(handleDeleteUser(users, errs))).Methods("DELETE")
	router.Handle("/{id}/role", s.Auth.Admin(handleChangeRole(users, errs))).Methods("PATCH")
	router.Handle("/{id}/password", s.Auth.Admin(handleResetPassword(users, s.Hasher, errs))).Methods("PATCH")
}

// adminEvent starts an audit event for the calling administrator.
func adminEvent(r *http.Request, action string, target uint) audit.UserAdminEvent {
	event := audit.UserAdminEvent{Action: action, TargetID: target}
	if id, ok := identity.Get(r.Context()); ok {
		event.ActorID = id.User.ID
		event.ActorEmail = id.User.Email
		event.ClientIP = id.RemoteIP.String()
	}
	return event
}

func auditResult(event audit.UserAdminEvent, err error) {
	event.Success = err == nil
	if err != nil {
		event.ErrorMessage = err.Error()
	}
	audit.Log(event)
}

func userNotFound(err error, id uint) error {
	if errors.Is(err, store.ErrUserNotFound) {
		return apperr.NotFound("User with ID %d not found", id)
	}
	return apperr.Internal(err)
}

func handleListUsers(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := users.ListUsers()
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}
		if list == nil {
			list = []model.User{}
		}
		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"count": len(list),
			"users": list,
		})
	}
}

func handleGetUser(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		user, err := users.FetchUser(id)
		if err != nil {
			errs.respond(w, r, userNotFound(err, id))
			return
		}
		respondWithJSON(w, http.StatusOK, user)
	}
}

func handleCreateUser(users store.CredentialStore, hasher *password.Hasher, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createUserRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, createUserMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		role := model.RoleUser
		if req.Role != "" {
			role, _ = model.RoleString(req.Role)
		}

		event := adminEvent(r, audit.ActionCreate, 0)
		event.Detail = "role=" + role.String()

		hash, err := hasher.Hash(req.Password)
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		user := &model.User{Username: req.Username, Email: req.Email, Password: hash, Role: role}
		if err := users.CreateUser(user); err != nil {
			auditResult(event, err)
			errs.respond(w, r, userWriteError(err, req.Username, req.Email))
			return
		}
		event.TargetID = user.ID
		auditResult(event, nil)

		respondWithJSON(w, http.StatusCreated, map[string]interface{}{
			"message": "User created successfully",
			"user":    user.Sanitized(),
		})
	}
}

func handleUpdateUser(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		var req updateUserRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, updateUserMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		update := store.UserUpdate{Username: req.Username, Email: req.Email}
		if req.Role != nil {
			role, _ := model.RoleString(*req.Role)
			update.Role = &role
		}
		if update.Empty() {
			errs.respond(w, r, apperr.Validation("At least one field must be provided for update"))
			return
		}

		event := adminEvent(r, audit.ActionUpdate, id)
		user, err := users.UpdateUser(id, update)
		auditResult(event, err)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				errs.respond(w, r, userNotFound(err, id))
				return
			}
			errs.respond(w, r, userWriteError(err, deref(req.Username), deref(req.Email)))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "User updated successfully",
			"user":    user,
		})
	}
}

func handleDeleteUser(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		caller, _ := identity.Get(r.Context())
		if caller.User.ID == id {
			errs.respond(w, r, apperr.Validation("You cannot delete your own account"))
			return
		}

		event := adminEvent(r, audit.ActionDelete, id)
		err = users.DeleteUser(id)
		auditResult(event, err)
		if err != nil {
			errs.respond(w, r, userNotFound(err, id))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "User deleted successfully",
			"id":      id,
		})
	}
}

func handleChangeRole(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		var req roleRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, roleMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		caller, _ := identity.Get(r.Context())
		if caller.User.ID == id {
			errs.respond(w, r, apperr.Validation("You cannot change your own role"))
			return
		}

		role, _ := model.RoleString(req.Role)
		event := adminEvent(r, audit.ActionChangeRole, id)
		event.Detail = "role=" + role.String()

		user, err := users.UpdateUser(id, store.UserUpdate{Role: &role})
		auditResult(event, err)
		if err != nil {
			errs.respond(w, r, userNotFound(err, id))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{
			"message": "User role updated successfully",
			"user":    user,
		})
	}
}

func handleResetPassword(users store.CredentialStore, hasher *password.Hasher, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := idParam(r, "user")
		if err != nil {
			errs.respond(w, r, err)
			return
		}

		var req passwordRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, passwordMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		hash, err := hasher.Hash(req.NewPassword)
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		event := adminEvent(r, audit.ActionResetPassword, id)
		err = users.SetPassword(id, hash)
		auditResult(event, err)
		if err != nil {
			errs.respond(w, r, userNotFound(err, id))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "User password reset successfully",
		})
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

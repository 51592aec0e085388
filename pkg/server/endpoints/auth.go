package endpoints

import (
	"errors"
	"net/http"
	"time"

	"github.com/vincentyu/portfolio-backend/pkg/apperr"
	"github.com/vincentyu/portfolio-backend/pkg/audit"
	"github.com/vincentyu/portfolio-backend/pkg/identity"
	"github.com/vincentyu/portfolio-backend/pkg/model"
	"github.com/vincentyu/portfolio-backend/pkg/server"
	"github.com/vincentyu/portfolio-backend/pkg/server/middleware"
	"github.com/vincentyu/portfolio-backend/pkg/server/store"
)

// AuthResponse is returned by register and login
type AuthResponse struct {
	Message string     `json:"message"`
	Token   string     `json:"token"`
	User    model.User `json:"user"`
}

// RegisterAuthEndpoints registers the /api/auth routes
func RegisterAuthEndpoints(s *server.Server) {
	errs := newErrorWriter(s)
	auth := s.Router.PathPrefix("/api/auth").Subrouter()

	// POST /api/auth/register - create an account with the user role
	auth.HandleFunc("/register", handleRegister(s, errs)).Methods("POST")

	// POST /api/auth/login - exchange email and password for a token
	auth.HandleFunc("/login", handleLogin(s, errs)).Methods("POST")

	// GET /api/auth/me - current account
	auth.Handle("/me", s.Auth.User(handleMe(s.Users, errs))).Methods("GET")

	// POST /api/auth/refresh - re-issue a token for the current account
	auth.Handle("/refresh", s.Auth.User(handleRefresh(s, errs))).Methods("POST")

	// POST /api/auth/logout - tokens are stateless, only the cookie is cleared
	auth.HandleFunc("/logout", handleLogout(s)).Methods("POST")
}

func handleRegister(s *server.Server, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req registerRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, registerMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		clientIP := identity.ClientIP(r).String()
		fail := func(err error) {
			audit.Log(audit.RegisterEvent{
				Username:     req.Username,
				Email:        req.Email,
				ClientIP:     clientIP,
				ErrorMessage: err.Error(),
			})
			errs.respond(w, r, err)
		}

		hash, err := s.Hasher.Hash(req.Password)
		if err != nil {
			fail(apperr.Internal(err))
			return
		}

		user := &model.User{
			Username: req.Username,
			Email:    req.Email,
			Password: hash,
			Role:     model.RoleUser,
		}
		if err := s.Users.CreateUser(user); err != nil {
			fail(userWriteError(err, req.Username, req.Email))
			return
		}

		tok, err := s.Issuer.Issue(*user)
		if err != nil {
			fail(apperr.Internal(err))
			return
		}

		audit.Log(audit.RegisterEvent{
			Username: user.Username,
			Email:    user.Email,
			ClientIP: clientIP,
			Success:  true,
		})

		setTokenCookie(w, s, tok)
		respondWithJSON(w, http.StatusCreated, AuthResponse{
			Message: "User registered successfully",
			Token:   tok,
			User:    user.Sanitized(),
		})
	}
}

func handleLogin(s *server.Server, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		if err := decodeJSON(r, &req); err != nil {
			errs.respond(w, r, err)
			return
		}
		if err := checkRequest(req, loginMessages); err != nil {
			errs.respond(w, r, err)
			return
		}

		event := audit.LoginEvent{Email: req.Email, ClientIP: identity.ClientIP(r).String()}

		user, err := s.Users.Credentials(req.Email)
		if err != nil && !errors.Is(err, store.ErrUserNotFound) {
			errs.respond(w, r, apperr.Internal(err))
			return
		}
		if user == nil || !s.Hasher.Verify(req.Password, user.Password) {
			event.ErrorMessage = "invalid credentials"
			audit.Log(event)
			respondWithError(w, http.StatusUnauthorized, "Invalid email or password")
			return
		}

		tok, err := s.Issuer.Issue(*user)
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		event.UserID = user.ID
		event.Success = true
		audit.Log(event)

		setTokenCookie(w, s, tok)
		respondWithJSON(w, http.StatusOK, AuthResponse{
			Message: "Login successful",
			Token:   tok,
			User:    user.Sanitized(),
		})
	}
}

func handleMe(users store.CredentialStore, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		user, err := users.FetchUser(id.User.ID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				respondWithError(w, http.StatusNotFound, "User not found")
				return
			}
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		respondWithJSON(w, http.StatusOK, map[string]interface{}{"user": user})
	}
}

func handleRefresh(s *server.Server, errs *errorWriter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, _ := identity.Get(r.Context())

		tok, err := s.Issuer.Issue(id.User)
		if err != nil {
			errs.respond(w, r, apperr.Internal(err))
			return
		}

		audit.Log(audit.TokenRefreshEvent{
			UserID:   id.User.ID,
			Email:    id.User.Email,
			ClientIP: id.RemoteIP.String(),
		})

		setTokenCookie(w, s, tok)
		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Token refreshed",
			"token":   tok,
		})
	}
}

func handleLogout(s *server.Server) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		clearTokenCookie(w, s)
		respondWithJSON(w, http.StatusOK, map[string]string{
			"message": "Logout successful. Please delete token from client.",
		})
	}
}

// tokenCookie returns the session cookie template. The frontend is served
// from another origin, so production cookies are SameSite=None and Secure.
func tokenCookie(s *server.Server) *http.Cookie {
	c := &http.Cookie{
		Name:     middleware.TokenCookie,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	if s.Config().IsProduction() {
		c.SameSite = http.SameSiteNoneMode
		c.Secure = true
	}
	return c
}

func setTokenCookie(w http.ResponseWriter, s *server.Server, tok string) {
	c := tokenCookie(s)
	c.Value = tok
	c.MaxAge = int(s.Issuer.TTL() / time.Second)
	http.SetCookie(w, c)
}

func clearTokenCookie(w http.ResponseWriter, s *server.Server) {
	c := tokenCookie(s)
	c.MaxAge = -1
	c.Expires = time.Unix(0, 0)
	http.SetCookie(w, c)
}

// userWriteError maps CreateUser and UpdateUser failures to API errors.
func userWriteError(err error, username, email string) error {
	switch {
	case errors.Is(err, store.ErrDuplicateEmail):
		return apperr.Conflict(err, "User with email '%s' already exists", email)
	case errors.Is(err, store.ErrDuplicateUsername):
		return apperr.Conflict(err, "Username '%s' is already taken", username)
	case errors.Is(err, store.ErrConstraint):
		return err
	default:
		return apperr.Internal(err)
	}
}

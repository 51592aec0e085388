package store

import (
	"errors"

	"github.com/vincentyu/portfolio-backend/pkg/model"
)

// ErrUserNotFound is returned when a user doesn't exist
var ErrUserNotFound = errors.New("user not found")

// ErrDuplicateEmail is returned when another user already has the email
var ErrDuplicateEmail = errors.New("email already in use")

// ErrDuplicateUsername is returned when another user already has the username
var ErrDuplicateUsername = errors.New("username already taken")

// UserUpdate lists the profile fields to change. Nil fields are left alone.
type UserUpdate struct {
	Username *string
	Email    *string
	Role     *model.Role
}

// Empty reports whether the update changes nothing.
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Role == nil
}

// CredentialStore persists users. Apart from Credentials, no method returns
// the password hash.
type CredentialStore interface {
	// CreateUser inserts user, whose Password must already be hashed, and
	// fills in its ID and timestamps.
	// Returns ErrDuplicateEmail or ErrDuplicateUsername on conflicts.
	CreateUser(user *model.User) error

	// FetchUser retrieves a user by ID.
	// Returns ErrUserNotFound if the user doesn't exist.
	FetchUser(id uint) (*model.User, error)

	// Credentials retrieves a user by email including the password hash,
	// for login only.
	// Returns ErrUserNotFound if the user doesn't exist.
	Credentials(email string) (*model.User, error)

	// ListUsers returns every user, newest first.
	ListUsers() ([]model.User, error)

	// UpdateUser applies update and returns the refreshed user.
	UpdateUser(id uint, update UserUpdate) (*model.User, error)

	// SetPassword replaces the stored password hash.
	SetPassword(id uint, hash string) error

	// DeleteUser removes a user.
	// Returns ErrUserNotFound if the user doesn't exist.
	DeleteUser(id uint) error
}

// Package store provides storage abstractions for the portfolio server.
//
// This package defines interfaces for database operations, allowing the
// endpoints to be decoupled from the specific database implementation and
// tested with mocks.
//
// # Available Stores
//
//   - CredentialStore: users and their password hashes
//   - BlogStore: blog posts addressed by slug
//   - ProjectsStore: portfolio projects addressed by slug
//   - MessagesStore: contact form submissions
//   - HealthStore: database connectivity checks
//
// # Errors
//
// Implementations translate driver errors into the sentinel errors declared
// here, so callers never see raw constraint failures:
//
//	user, err := credentials.FetchUser(id)
//	if errors.Is(err, store.ErrUserNotFound) {
//	    // Handle not found
//	}
package store

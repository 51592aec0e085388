// Package identity carries the authenticated caller through a request.
//
// The auth middleware verifies the session token, reloads the user from the
// credential store and stores an Identity in the request context:
//
//	id := identity.FromClaims(user, claims).WithRemoteIP(identity.ClientIP(r))
//	ctx = identity.Set(ctx, id)
//
// Handlers read it back with identity.Get. The stored user never includes
// the password hash.
package identity

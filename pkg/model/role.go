package model

//go:generate go run github.com/dmarkham/enumer -type Role -trimprefix Role -transform lower -json -yaml -sql -output role.gen.go

// Role is the authorization level of a user.
type Role int

const (
	RoleUser Role = iota
	RoleAdmin
)

// IsAdmin reports whether r grants access to admin-only routes.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

package models

// Role is the coarse authorization role resolved for a caller.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

// Identity is the authenticated representation of the caller, attached to the
// request context after signature verification and role resolution both
// succeed. It is never attached partially constructed.
type Identity struct {
	ID    string  `json:"id"`
	Email *string `json:"email"`
	Role  Role    `json:"role"`
}

package directory

import "time"

// Role is one of the closed set of authorization levels.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleLeadInspector Role = "lead_inspector"
	RoleInspector     Role = "inspector"
	RoleViewer        Role = "viewer"
)

// Roles lists every valid role.
var Roles = []Role{RoleAdmin, RoleLeadInspector, RoleInspector, RoleViewer}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleLeadInspector, RoleInspector, RoleViewer:
		return true
	}
	return false
}

// User is the public account projection. It never carries the password hash.
type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	FullName  string    `json:"full_name"`
	Role      Role      `json:"role"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CreateRequest carries the fields of a new account.
type CreateRequest struct {
	Username string `json:"username"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role"`
	Password string `json:"password"`
}

// Update applies only the fields that are set; nil fields are untouched.
type Update struct {
	FullName *string `json:"full_name,omitempty"`
	Role     *Role   `json:"role,omitempty"`
	Active   *bool   `json:"active,omitempty"`
}

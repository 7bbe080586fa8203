package models

// UserRole represents the portal's role set.
type UserRole string

const (
	RoleAdmin UserRole = "admin"
	RoleUser  UserRole = "user"
)

// UserProfile is the immutable snapshot of the authenticated user captured at
// login time. It is never refreshed automatically.
type UserProfile struct {
	ID       string   `json:"id"`
	Username string   `json:"username"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email,omitempty"`
}

// IsAdmin reports whether the profile carries the admin role.
func (u *UserProfile) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Uploader identifies the user a document was uploaded by. Only the id is
// guaranteed to be present.
type Uploader struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
}

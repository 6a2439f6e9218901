package auth

// Package auth contains domain-level types for authentication and sessions.
// It is pure and free of framework/adapter concerns.

import "time"

// Role represents an application's authorization role.
// Keep string form for easy persistence and cookies.
// Valid values are defined as constants below.
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleViewer Role = "viewer"
)

// ParseRole maps a stored role string to a Role, defaulting to viewer for
// absent or unrecognized values. Identity records written by older snapshots
// of the configuration may omit the role entirely.
func ParseRole(s string) Role {
	if Role(s) == RoleAdmin {
		return RoleAdmin
	}
	return RoleViewer
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleViewer
}

// Identity represents an authenticated principal resolved from the identity
// table. Folders is the normalized authorized-folder list; older records carry
// a single folder and are normalized into a one-element list at load time.
type Identity struct {
	Username string
	Name     string
	Email    string
	Role     Role
	Folders  []string
}

// Session is the server-side record we persist for an authenticated user.
// ID is an opaque session identifier (e.g., random URL-safe string).
// SelectedFolder is empty until the user picks a folder and is always a member
// of the identity's accessible set once set.
type Session struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	Role           Role      `json:"role"`
	SelectedFolder string    `json:"selected_folder,omitempty"`
	ExpiresAt      time.Time `json:"expires_at"`
}

// IsAdmin returns true if the session role is admin.
func (s Session) IsAdmin() bool { return s.Role == RoleAdmin }

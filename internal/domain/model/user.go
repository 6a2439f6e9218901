//revive:disable-next-line:var-naming // legacy package name widely used across the project
package model

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
)

const (
	maxUsernameLen = 64
	maxNameLen     = 255
	minPasswordLen = 8
)

// User is one identity record in the directory: credential, role, and the
// storage folders the account may read. PasswordHash is a bcrypt hash; the
// plaintext credential variants from early prototypes are not preserved.
type User struct {
	Username     string          `json:"username"              db:"username"  yaml:"-"`
	Name         string          `json:"name"                  db:"name"      yaml:"name"`
	Email        string          `json:"email"                 db:"email"     yaml:"email"`
	PasswordHash string          `json:"-"                     db:"password_hash" yaml:"password"`
	Role         domainauth.Role `json:"role"                  db:"role"      yaml:"role"`
	Folders      []string        `json:"authorized_folders"    db:"folders"   yaml:"authorized_folders"`
	CreatedAt    time.Time       `json:"created_at,omitempty"  db:"created_at" yaml:"-"`
	UpdatedAt    time.Time       `json:"updated_at,omitempty"  db:"updated_at" yaml:"-"`
}

// Identity converts the record into the domain identity shape used by policy
// evaluation and session creation.
func (u User) Identity() domainauth.Identity {
	return domainauth.Identity{
		Username: u.Username,
		Name:     u.Name,
		Email:    u.Email,
		Role:     u.Role,
		Folders:  u.Folders,
	}
}

// CreateUserRequest represents parameters to create a User.
type CreateUserRequest struct {
	Username string   `json:"username"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Role     string   `json:"role,omitempty"`
	Folders  []string `json:"authorized_folders"`
}

// UpdateUserRequest represents parameters to update a User. Nil fields are
// left unchanged; a nil or blank Password keeps the current hash.
type UpdateUserRequest struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Password *string   `json:"password,omitempty"`
	Role     *string   `json:"role,omitempty"`
	Folders  *[]string `json:"authorized_folders,omitempty"`
}

// Validate validates CreateUserRequest and normalizes the role.
func (r *CreateUserRequest) Validate() error {
	username := strings.TrimSpace(r.Username)
	if username == "" {
		return errors.New("username is required and cannot be empty")
	}
	if utf8.RuneCountInString(username) > maxUsernameLen {
		return errors.New("username cannot exceed 64 characters")
	}
	if strings.ContainsAny(username, " \t\n") {
		return errors.New("username cannot contain whitespace")
	}
	if utf8.RuneCountInString(r.Name) > maxNameLen {
		return errors.New("name cannot exceed 255 characters")
	}
	if len(r.Password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if r.Role != "" && !domainauth.Role(r.Role).Valid() {
		return errors.New("role must be admin or viewer")
	}
	normalized, err := NormalizeFolders(r.Folders)
	if err != nil {
		return err
	}
	r.Username = username
	r.Role = string(domainauth.ParseRole(r.Role))
	r.Folders = normalized
	return nil
}

// Validate validates UpdateUserRequest.
func (r *UpdateUserRequest) Validate() error {
	if r.Password != nil && *r.Password != "" && len(*r.Password) < minPasswordLen {
		return errors.New("password must be at least 8 characters")
	}
	if r.Role != nil && !domainauth.Role(*r.Role).Valid() {
		return errors.New("role must be admin or viewer")
	}
	if r.Folders != nil {
		normalized, err := NormalizeFolders(*r.Folders)
		if err != nil {
			return err
		}
		*r.Folders = normalized
	}
	return nil
}

// NormalizeFolders trims entries, drops blanks, and requires at least one
// remaining folder. Every folder must be an absolute storage path.
func NormalizeFolders(folders []string) ([]string, error) {
	out := make([]string, 0, len(folders))
	for _, f := range folders {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, "/") {
			return nil, errors.New("authorized folders must be absolute paths")
		}
		if len(f) > 1 {
			f = strings.TrimRight(f, "/")
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil, errors.New("at least one authorized folder is required")
	}
	return out, nil
}

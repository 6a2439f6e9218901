package ports

// Package ports defines interfaces (hexagonal ports) for the stores the
// services depend on. Implementations live in internal/adapters and
// internal/data; orchestration in internal/service.

import (
	"context"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
)

// UserStore supplies and mutates the identity table. The YAML adapter writes
// a full replacement file on every mutation; the Postgres repo mutates rows.
// Either way callers observe whole-record semantics.
type UserStore interface {
	// List returns every identity record, ordered by username.
	List(ctx context.Context) ([]model.User, error)
	// Get returns the record for username or a not-found error.
	Get(ctx context.Context, username string) (*model.User, error)
	// Create inserts a record; duplicate usernames are a conflict error.
	Create(ctx context.Context, user model.User) (*model.User, error)
	// Update replaces the stored record for user.Username.
	Update(ctx context.Context, user model.User) (*model.User, error)
	// Delete removes the record for username.
	Delete(ctx context.Context, username string) error
}

// SessionStore persists and retrieves user sessions.
type SessionStore interface {
	Save(ctx context.Context, sess domainauth.Session) error
	Get(ctx context.Context, id string) (domainauth.Session, error)
	Delete(ctx context.Context, id string) error
}

// ObjectStore fetches and writes raw artifacts (notes, dossiers) by storage
// path. The core only composes path strings; existence is the store's call.
type ObjectStore interface {
	// Fetch returns the raw bytes at path or a not-found error.
	Fetch(ctx context.Context, path string) ([]byte, error)
	// Put overwrites the artifact at path.
	Put(ctx context.Context, path string, data []byte) error
}

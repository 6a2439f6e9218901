package configfile

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tempStore(t *testing.T) *UserStore {
	t.Helper()
	return NewUserStore(filepath.Join(t.TempDir(), "users.yaml"))
}

func writeTable(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestUserStore_MissingFileReadsEmpty(t *testing.T) {
	store := tempStore(t)
	users, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestUserStore_CreateGetListDelete(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	created, err := store.Create(ctx, model.User{
		Username:     "bob",
		Name:         "Bob Martin",
		Email:        "bob@example.com",
		PasswordHash: "$2a$10$hash",
		Role:         domainauth.RoleViewer,
		Folders:      []string{"/BI_PLUS/clients/client_0002"},
	})
	require.NoError(t, err)
	assert.Equal(t, "bob", created.Username)

	got, err := store.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, "$2a$10$hash", got.PasswordHash)
	assert.Equal(t, []string{"/BI_PLUS/clients/client_0002"}, got.Folders)

	_, err = store.Create(ctx, model.User{Username: "alice", Role: domainauth.RoleAdmin, Folders: []string{"/A"}})
	require.NoError(t, err)

	users, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "bob", users[1].Username)

	require.NoError(t, store.Delete(ctx, "bob"))
	_, err = store.Get(ctx, "bob")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserStore_CreateDuplicateConflicts(t *testing.T) {
	store := tempStore(t)
	ctx := context.Background()

	_, err := store.Create(ctx, model.User{Username: "bob", Folders: []string{"/B"}})
	require.NoError(t, err)

	_, err = store.Create(ctx, model.User{Username: "bob", Folders: []string{"/C"}})
	assert.True(t, apperrors.IsConflict(err))
}

func TestUserStore_UpdateUnknownUser(t *testing.T) {
	store := tempStore(t)
	_, err := store.Update(context.Background(), model.User{Username: "ghost"})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserStore_DeleteUnknownUser(t *testing.T) {
	store := tempStore(t)
	err := store.Delete(context.Background(), "ghost")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUserStore_LegacySingularFolderNormalized(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	writeTable(t, path, `
credentials:
  usernames:
    legacy:
      name: Legacy User
      password: "$2a$10$hash"
      role: viewer
      authorized_folder: /BI_PLUS/clients/client_0009
    oldest:
      password: "$2a$10$hash"
      dropbox_folder: /BI_PLUS/clients/client_0001
`)

	store := NewUserStore(path)
	ctx := context.Background()

	legacy, err := store.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"/BI_PLUS/clients/client_0009"}, legacy.Folders)

	oldest, err := store.Get(ctx, "oldest")
	require.NoError(t, err)
	assert.Equal(t, []string{"/BI_PLUS/clients/client_0001"}, oldest.Folders)
	// Missing role defaults to viewer.
	assert.Equal(t, domainauth.RoleViewer, oldest.Role)
}

func TestUserStore_PluralFolderListWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	writeTable(t, path, `
credentials:
  usernames:
    both:
      password: "$2a$10$hash"
      authorized_folder: /legacy
      authorized_folders: ["/A", "/B"]
`)

	store := NewUserStore(path)
	got, err := store.Get(context.Background(), "both")
	require.NoError(t, err)
	assert.Equal(t, []string{"/A", "/B"}, got.Folders)
}

func TestUserStore_SaveWritesCanonicalShape(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	writeTable(t, path, `
credentials:
  usernames:
    legacy:
      password: "$2a$10$hash"
      authorized_folder: /legacy
`)

	store := NewUserStore(path)
	ctx := context.Background()

	// Any mutation rewrites the whole file in canonical plural form.
	_, err := store.Create(ctx, model.User{Username: "new", Folders: []string{"/N"}})
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "authorized_folders")
	assert.NotContains(t, string(raw), "authorized_folder:")

	legacy, err := store.Get(ctx, "legacy")
	require.NoError(t, err)
	assert.Equal(t, []string{"/legacy"}, legacy.Folders)
}

func TestUserStore_UnknownRoleDefaultsToViewer(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "users.yaml")
	writeTable(t, path, `
credentials:
  usernames:
    odd:
      password: "$2a$10$hash"
      role: superuser
      authorized_folders: ["/X"]
`)

	store := NewUserStore(path)
	got, err := store.Get(context.Background(), "odd")
	require.NoError(t, err)
	assert.Equal(t, domainauth.RoleViewer, got.Role)
}

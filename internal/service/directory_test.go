package service

import (
	"context"
	"strings"
	"testing"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func newTestDirectoryService(t *testing.T, users *fakeUserStore) *DirectoryService {
	t.Helper()
	svc, err := NewDirectoryService(DirectoryServiceOptions{
		Users:      users,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	return svc
}

func TestDirectoryService_Create(t *testing.T) {
	users := newFakeUserStore()
	svc := newTestDirectoryService(t, users)

	user, err := svc.Create(context.Background(), model.CreateUserRequest{
		Username: "  dave  ",
		Name:     "Dave",
		Email:    "dave@example.com",
		Password: "pw-dave-123",
		Folders:  []string{"/clients/delta/"},
	})
	require.NoError(t, err)

	assert.Equal(t, "dave", user.Username)
	assert.Equal(t, domainauth.RoleViewer, user.Role, "role defaults to viewer")
	assert.Equal(t, []string{"/clients/delta"}, user.Folders)
	assert.False(t, user.CreatedAt.IsZero())

	// Stored hash verifies against the plaintext and never equals it.
	assert.NotEqual(t, "pw-dave-123", user.PasswordHash)
	assert.True(t, strings.HasPrefix(user.PasswordHash, "$2"))
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw-dave-123")))
}

func TestDirectoryService_Create_Duplicate(t *testing.T) {
	users := newFakeUserStore(testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"))
	svc := newTestDirectoryService(t, users)

	_, err := svc.Create(context.Background(), model.CreateUserRequest{
		Username: "dave",
		Password: "pw-other-99",
		Folders:  []string{"/clients/delta"},
	})
	assert.True(t, apperrors.IsConflict(err))
}

func TestDirectoryService_Create_Invalid(t *testing.T) {
	svc := newTestDirectoryService(t, newFakeUserStore())

	tests := []struct {
		name string
		req  model.CreateUserRequest
	}{
		{"empty username", model.CreateUserRequest{Password: "pw-123456", Folders: []string{"/f"}}},
		{"short password", model.CreateUserRequest{Username: "x", Password: "short", Folders: []string{"/f"}}},
		{"bad role", model.CreateUserRequest{Username: "x", Password: "pw-123456", Role: "root", Folders: []string{"/f"}}},
		{"no folders", model.CreateUserRequest{Username: "x", Password: "pw-123456"}},
		{"relative folder", model.CreateUserRequest{Username: "x", Password: "pw-123456", Folders: []string{"clients"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.True(t, apperrors.IsValidation(err), "got %v", err)
		})
	}
}

func TestDirectoryService_Update(t *testing.T) {
	users := newFakeUserStore(testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"))
	svc := newTestDirectoryService(t, users)

	original, err := users.Get(context.Background(), "dave")
	require.NoError(t, err)

	name := "David"
	folders := []string{"/clients/delta", "/clients/echo"}
	updated, err := svc.Update(context.Background(), "dave", model.UpdateUserRequest{
		Name:    &name,
		Folders: &folders,
	})
	require.NoError(t, err)

	assert.Equal(t, "David", updated.Name)
	assert.Equal(t, folders, updated.Folders)
	assert.Equal(t, original.PasswordHash, updated.PasswordHash, "absent password keeps the hash")
}

func TestDirectoryService_Update_BlankPasswordKeepsHash(t *testing.T) {
	users := newFakeUserStore(testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"))
	svc := newTestDirectoryService(t, users)

	original, err := users.Get(context.Background(), "dave")
	require.NoError(t, err)

	blank := ""
	updated, err := svc.Update(context.Background(), "dave", model.UpdateUserRequest{Password: &blank})
	require.NoError(t, err)
	assert.Equal(t, original.PasswordHash, updated.PasswordHash)
}

func TestDirectoryService_Update_Password(t *testing.T) {
	users := newFakeUserStore(testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"))
	svc := newTestDirectoryService(t, users)

	newPassword := "pw-new-secret"
	updated, err := svc.Update(context.Background(), "dave", model.UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(newPassword)))
}

func TestDirectoryService_Update_NotFound(t *testing.T) {
	svc := newTestDirectoryService(t, newFakeUserStore())

	name := "Nobody"
	_, err := svc.Update(context.Background(), "nobody", model.UpdateUserRequest{Name: &name})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDirectoryService_Delete(t *testing.T) {
	users := newFakeUserStore(
		testUser(t, "admin", "pw-admin-1", domainauth.RoleAdmin, "/clients/alpha"),
		testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"),
	)
	svc := newTestDirectoryService(t, users)

	require.NoError(t, svc.Delete(context.Background(), "dave"))

	_, err := users.Get(context.Background(), "dave")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDirectoryService_Delete_LastAdmin(t *testing.T) {
	users := newFakeUserStore(
		testUser(t, "admin", "pw-admin-1", domainauth.RoleAdmin, "/clients/alpha"),
		testUser(t, "bob", "pw-bob-123", domainauth.RoleViewer, "/clients/bravo"),
	)
	svc := newTestDirectoryService(t, users)

	err := svc.Delete(context.Background(), "admin")
	assert.ErrorIs(t, err, ErrLastAdmin)

	_, getErr := users.Get(context.Background(), "admin")
	assert.NoError(t, getErr, "account survives the rejected delete")
}

func TestDirectoryService_Delete_AdminWithAnotherAdmin(t *testing.T) {
	users := newFakeUserStore(
		testUser(t, "admin", "pw-admin-1", domainauth.RoleAdmin, "/clients/alpha"),
		testUser(t, "root", "pw-root-12", domainauth.RoleAdmin, "/clients/alpha"),
	)
	svc := newTestDirectoryService(t, users)

	assert.NoError(t, svc.Delete(context.Background(), "admin"))
}

func TestDirectoryService_Update_DemoteLastAdmin(t *testing.T) {
	users := newFakeUserStore(
		testUser(t, "admin", "pw-admin-1", domainauth.RoleAdmin, "/clients/alpha"),
	)
	svc := newTestDirectoryService(t, users)

	viewer := string(domainauth.RoleViewer)
	_, err := svc.Update(context.Background(), "admin", model.UpdateUserRequest{Role: &viewer})
	assert.ErrorIs(t, err, ErrLastAdmin)

	stored, getErr := users.Get(context.Background(), "admin")
	require.NoError(t, getErr)
	assert.Equal(t, domainauth.RoleAdmin, stored.Role)
}

func TestDirectoryService_SetPassword(t *testing.T) {
	users := newFakeUserStore(testUser(t, "dave", "pw-dave-123", domainauth.RoleViewer, "/clients/delta"))
	svc := newTestDirectoryService(t, users)

	require.NoError(t, svc.SetPassword(context.Background(), "dave", "pw-rotated-1"))

	stored, err := users.Get(context.Background(), "dave")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("pw-rotated-1")))
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/ports"
	"golang.org/x/crypto/bcrypt"
)

// ErrLastAdmin is returned when a delete or demotion would leave the
// directory without any administrator.
var ErrLastAdmin = apperrors.Conflict("cannot remove the last administrator")

// DirectoryServiceOptions groups dependencies for DirectoryService.
type DirectoryServiceOptions struct {
	Users ports.UserStore // Required: identity table
	// BcryptCost overrides the hashing cost; defaults to bcrypt.DefaultCost.
	BcryptCost int
	Logger     *slog.Logger // Optional: structured logger
}

// DirectoryService manages the identity directory: listing, creating,
// updating, and deleting accounts. The directory must always contain at
// least one administrator.
type DirectoryService struct {
	users      ports.UserStore
	bcryptCost int
	logger     *slog.Logger
}

// NewDirectoryService constructs a new DirectoryService.
func NewDirectoryService(opts DirectoryServiceOptions) (*DirectoryService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserStore is required")
	}

	cost := opts.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "directory_service")
	}

	return &DirectoryService{users: opts.Users, bcryptCost: cost, logger: logger}, nil
}

// MustNewDirectoryService constructs a new DirectoryService and panics on error.
func MustNewDirectoryService(opts DirectoryServiceOptions) *DirectoryService {
	svc, err := NewDirectoryService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// List returns every account, ordered by username.
func (s *DirectoryService) List(ctx context.Context) ([]model.User, error) {
	return s.users.List(ctx)
}

// Get returns a single account by username.
func (s *DirectoryService) Get(ctx context.Context, username string) (*model.User, error) {
	return s.users.Get(ctx, username)
}

// Create validates the request, hashes the password, and inserts the account.
// The role defaults to viewer when omitted.
func (s *DirectoryService) Create(ctx context.Context, req model.CreateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid account")
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	user, err := s.users.Create(ctx, model.User{
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         domainauth.Role(req.Role),
		Folders:      req.Folders,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account created", "username", user.Username, "role", user.Role)
	}
	return user, nil
}

// Update applies the request's non-nil fields to the account. A blank or
// absent password keeps the current hash. Demoting the last administrator
// fails with ErrLastAdmin.
func (s *DirectoryService) Update(ctx context.Context, username string, req model.UpdateUserRequest) (*model.User, error) {
	if err := req.Validate(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "invalid account")
	}

	user, err := s.users.Get(ctx, username)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		newRole := domainauth.Role(*req.Role)
		if user.Role == domainauth.RoleAdmin && newRole != domainauth.RoleAdmin {
			if guardErr := s.guardLastAdmin(ctx, username); guardErr != nil {
				return nil, guardErr
			}
		}
		user.Role = newRole
	}
	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Folders != nil {
		user.Folders = *req.Folders
	}
	if req.Password != nil && *req.Password != "" {
		hash, hashErr := s.hashPassword(*req.Password)
		if hashErr != nil {
			return nil, hashErr
		}
		user.PasswordHash = hash
	}
	user.UpdatedAt = time.Now()

	updated, err := s.users.Update(ctx, *user)
	if err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account updated", "username", username)
	}
	return updated, nil
}

// Delete removes an account. Deleting the last administrator fails with
// ErrLastAdmin.
func (s *DirectoryService) Delete(ctx context.Context, username string) error {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		return err
	}

	if user.Role == domainauth.RoleAdmin {
		if guardErr := s.guardLastAdmin(ctx, username); guardErr != nil {
			return guardErr
		}
	}

	if err := s.users.Delete(ctx, username); err != nil {
		return err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "account deleted", "username", username)
	}
	return nil
}

// SetPassword replaces an account's password hash. Used by the ops CLI.
func (s *DirectoryService) SetPassword(ctx context.Context, username, password string) error {
	_, err := s.Update(ctx, username, model.UpdateUserRequest{Password: &password})
	return err
}

// HashPassword hashes a plaintext password at the service's configured cost.
func (s *DirectoryService) HashPassword(password string) (string, error) {
	return s.hashPassword(password)
}

func (s *DirectoryService) hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// guardLastAdmin fails when username is the only administrator left.
func (s *DirectoryService) guardLastAdmin(ctx context.Context, username string) error {
	users, err := s.users.List(ctx)
	if err != nil {
		return fmt.Errorf("load identity table: %w", err)
	}
	for _, u := range users {
		if u.Role == domainauth.RoleAdmin && u.Username != username {
			return nil
		}
	}
	return ErrLastAdmin
}

package service

// Package service holds the application services: credential resolution and
// sessions, folder access, the identity directory, notes, and dossier
// reports. Services depend only on the ports interfaces, so storage backends
// swap without touching this layer.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/policy"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/ports"
)

// ErrNoFoldersConfigured is returned when an identity resolves to an empty
// folder set. The account is misconfigured rather than forbidden.
var ErrNoFoldersConfigured = apperrors.Validation("no folders configured for this account")

// ErrNoFolderSelected is returned when an operation needs a working folder
// and the session has not selected one.
var ErrNoFolderSelected = apperrors.Validation("no folder selected")

// FolderServiceOptions groups dependencies for FolderService.
type FolderServiceOptions struct {
	Users  ports.UserStore // Required: identity table
	Logger *slog.Logger    // Optional: structured logger
}

// FolderService answers which folders a session may work in. Admins see the
// deduplicated, sorted union of every folder in the identity table; viewers
// see their own assignment.
type FolderService struct {
	users  ports.UserStore
	logger *slog.Logger
}

// NewFolderService constructs a new FolderService.
func NewFolderService(opts FolderServiceOptions) (*FolderService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserStore is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "folder_service")
	}

	return &FolderService{users: opts.Users, logger: logger}, nil
}

// MustNewFolderService constructs a new FolderService and panics on error.
func MustNewFolderService(opts FolderServiceOptions) *FolderService {
	svc, err := NewFolderService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Accessible returns the folders the session may select. An empty result is
// reported as ErrNoFoldersConfigured.
func (s *FolderService) Accessible(ctx context.Context, session *domainauth.Session) ([]string, error) {
	folders, err := accessibleFolders(ctx, s.users, session.Username)
	if err != nil {
		return nil, err
	}
	if len(folders) == 0 {
		return nil, ErrNoFoldersConfigured
	}
	return folders, nil
}

// accessibleFolders loads the identity (and, for admins, the whole table) and
// applies the folder policy. Shared with AuthService.SelectFolder so both
// sides of the selection flow agree on the accessible set.
func accessibleFolders(ctx context.Context, users ports.UserStore, username string) ([]string, error) {
	user, err := users.Get(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	var all []domainauth.Identity
	if user.Role == domainauth.RoleAdmin {
		records, listErr := users.List(ctx)
		if listErr != nil {
			return nil, fmt.Errorf("load identity table: %w", listErr)
		}
		all = make([]domainauth.Identity, 0, len(records))
		for _, r := range records {
			all = append(all, r.Identity())
		}
	}

	return policy.AccessibleFolders(user.Identity(), all), nil
}

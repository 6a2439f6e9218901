package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/policy"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/ports"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// ErrInvalidCredentials is returned for any login failure: unknown username,
// wrong password, or empty inputs. Callers cannot distinguish which.
var ErrInvalidCredentials = apperrors.Unauthorized("invalid credentials")

// ErrFolderNotAuthorized is returned when a folder selection falls outside
// the identity's accessible set.
var ErrFolderNotAuthorized = apperrors.Forbidden("folder is not authorized")

// ErrSessionNotFound is returned when a session ID does not resolve to a
// live session, either because it never existed or because it expired.
var ErrSessionNotFound = apperrors.Unauthorized("session not found")

// dummyHash is compared against when the username is unknown so that login
// latency does not reveal whether the account exists.
var dummyHash = func() []byte {
	h, err := bcrypt.GenerateFromPassword([]byte("biplus-dummy-credential"), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	return h
}()

// AuthServiceOptions groups dependencies for AuthService.
type AuthServiceOptions struct {
	Users      ports.UserStore    // Required: identity table
	Sessions   ports.SessionStore // Required: session persistence
	SessionTTL time.Duration      // Optional: defaults to 8h
	Logger     *slog.Logger       // Optional: structured logger
}

// AuthService resolves submitted credentials against the identity table and
// owns the session lifecycle. A session exists only between a successful
// Login and the matching Logout (or expiry); failed logins leave no state.
type AuthService struct {
	users      ports.UserStore
	sessions   ports.SessionStore
	sessionTTL time.Duration
	logger     *slog.Logger
}

const defaultSessionTTL = 8 * time.Hour

// NewAuthService constructs a new AuthService.
func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Users == nil {
		return nil, errors.New("UserStore is required")
	}
	if opts.Sessions == nil {
		return nil, errors.New("SessionStore is required")
	}

	ttl := opts.SessionTTL
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "auth_service")
	}

	return &AuthService{
		users:      opts.Users,
		sessions:   opts.Sessions,
		sessionTTL: ttl,
		logger:     logger,
	}, nil
}

// MustNewAuthService constructs a new AuthService and panics on error.
// Use this when you want fail-fast behavior during application startup.
func MustNewAuthService(opts AuthServiceOptions) *AuthService {
	svc, err := NewAuthService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Login validates the username/password pair against the identity table and,
// on success, creates and persists a session. Any mismatch returns
// ErrInvalidCredentials; there is no lockout, so a later correct attempt
// still succeeds.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	user, err := s.users.Get(ctx, username)
	if err != nil {
		if apperrors.IsNotFound(err) {
			// Burn the same bcrypt cost as a real comparison.
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load identity: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		if s.logger != nil {
			s.logger.InfoContext(ctx, "login rejected", "username", username)
		}
		return nil, ErrInvalidCredentials
	}

	session := domainauth.Session{
		ID:        uuid.New().String(),
		Username:  user.Username,
		Name:      user.Name,
		Email:     user.Email,
		Role:      user.Role,
		ExpiresAt: time.Now().Add(s.sessionTTL),
	}

	if saveErr := s.sessions.Save(ctx, session); saveErr != nil {
		return nil, fmt.Errorf("save session: %w", saveErr)
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "login succeeded", "username", username, "role", user.Role)
	}
	return &session, nil
}

// GetSession retrieves a session by ID. Expired sessions are deleted and
// reported as not found.
func (s *AuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if sessionID == "" {
		return nil, errors.New("session ID is required")
	}

	session, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(session.ExpiresAt) {
		if deleteErr := s.sessions.Delete(ctx, sessionID); deleteErr != nil {
			return nil, fmt.Errorf("delete expired session: %w", deleteErr)
		}
		return nil, ErrSessionNotFound
	}

	return &session, nil
}

// Logout removes a session. It is idempotent; an empty ID is a no-op.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

// SelectFolder records the session's working folder after checking it against
// the identity's accessible set. The updated session is persisted so the
// selection survives subsequent page views.
func (s *AuthService) SelectFolder(ctx context.Context, session *domainauth.Session, folder string) error {
	accessible, err := accessibleFolders(ctx, s.users, session.Username)
	if err != nil {
		return err
	}
	if !policy.Authorized(folder, accessible) {
		return ErrFolderNotAuthorized
	}

	session.SelectedFolder = folder
	if err := s.sessions.Save(ctx, *session); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

package httpx

import (
	"context"
	"errors"
	"time"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
)

// mockAuthService is a test double for AuthServiceInterface.
type mockAuthService struct {
	loginFunc        func(ctx context.Context, username, password string) (*domainauth.Session, error)
	getSessionFunc   func(ctx context.Context, sessionID string) (*domainauth.Session, error)
	logoutFunc       func(ctx context.Context, sessionID string) error
	selectFolderFunc func(ctx context.Context, session *domainauth.Session, folder string) error
}

func (m *mockAuthService) Login(ctx context.Context, username, password string) (*domainauth.Session, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, username, password)
	}
	return nil, errors.New("not implemented")
}

func (m *mockAuthService) GetSession(ctx context.Context, sessionID string) (*domainauth.Session, error) {
	if m.getSessionFunc != nil {
		return m.getSessionFunc(ctx, sessionID)
	}
	return &domainauth.Session{
		ID:        sessionID,
		Username:  "test-user",
		Email:     "test@example.com",
		Role:      domainauth.RoleViewer,
		ExpiresAt: time.Now().Add(time.Hour),
	}, nil
}

func (m *mockAuthService) Logout(ctx context.Context, sessionID string) error {
	if m.logoutFunc != nil {
		return m.logoutFunc(ctx, sessionID)
	}
	return nil
}

func (m *mockAuthService) SelectFolder(ctx context.Context, session *domainauth.Session, folder string) error {
	if m.selectFolderFunc != nil {
		return m.selectFolderFunc(ctx, session, folder)
	}
	return errors.New("not implemented")
}

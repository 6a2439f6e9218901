package httpx

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// In-memory stores backing the full router under test.

type memUserStore struct {
	mu    sync.Mutex
	users map[string]model.User
}

func (s *memUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (s *memUserStore) Get(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[username]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	return &u, nil
}

func (s *memUserStore) Create(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; ok {
		return nil, apperrors.Conflictf("user %q already exists", user.Username)
	}
	s.users[user.Username] = user
	return &user, nil
}

func (s *memUserStore) Update(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[user.Username]; !ok {
		return nil, apperrors.NotFoundf("user %q not found", user.Username)
	}
	s.users[user.Username] = user
	return &user, nil
}

func (s *memUserStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; !ok {
		return apperrors.NotFoundf("user %q not found", username)
	}
	delete(s.users, username)
	return nil
}

type memSessionStore struct {
	mu       sync.Mutex
	sessions map[string]domainauth.Session
}

func (s *memSessionStore) Save(_ context.Context, sess domainauth.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.ID] = sess
	return nil
}

func (s *memSessionStore) Get(_ context.Context, id string) (domainauth.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return domainauth.Session{}, apperrors.NotFound("session not found")
	}
	return sess, nil
}

func (s *memSessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

type memObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (s *memObjectStore) Fetch(_ context.Context, path string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.objects[path]
	if !ok {
		return nil, apperrors.NotFoundf("object %q not found", path)
	}
	return data, nil
}

func (s *memObjectStore) Put(_ context.Context, path string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.objects[path] = append([]byte(nil), data...)
	return nil
}

type routerFixture struct {
	handler http.Handler
	objects *memObjectStore
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()

	hash := func(password string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
		require.NoError(t, err)
		return string(h)
	}

	users := &memUserStore{users: map[string]model.User{
		"admin": {
			Username:     "admin",
			Name:         "Admin",
			Email:        "admin@example.com",
			PasswordHash: hash("pw-admin-1"),
			Role:         domainauth.RoleAdmin,
			Folders:      []string{"/clients/alpha"},
		},
		"bob": {
			Username:     "bob",
			Name:         "Bob",
			Email:        "bob@example.com",
			PasswordHash: hash("pw-bob-123"),
			Role:         domainauth.RoleViewer,
			Folders:      []string{"/clients/bravo"},
		},
	}}
	sessions := &memSessionStore{sessions: make(map[string]domainauth.Session)}
	objects := &memObjectStore{objects: make(map[string][]byte)}

	authSvc := service.MustNewAuthService(service.AuthServiceOptions{
		Users:      users,
		Sessions:   sessions,
		SessionTTL: time.Hour,
	})
	folderSvc := service.MustNewFolderService(service.FolderServiceOptions{Users: users})
	directorySvc, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Users:      users,
		BcryptCost: bcrypt.MinCost,
	})
	require.NoError(t, err)
	notesSvc := service.MustNewNotesService(service.NotesServiceOptions{Store: objects})
	reportSvc := service.MustNewReportService(service.ReportServiceOptions{Store: objects})

	handler := NewRouter(RouterServices{
		Auth:      authSvc,
		Folders:   folderSvc,
		Directory: directorySvc,
		Notes:     notesSvc,
		Reports:   reportSvc,
		Logger:    discardLogger(),
	})

	return &routerFixture{handler: handler, objects: objects}
}

// login runs the login flow and returns the session cookie.
func (f *routerFixture) login(t *testing.T, username, password string) *http.Cookie {
	t.Helper()

	body := `{"username":"` + username + `","password":"` + password + `"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "login failed: %s", rec.Body.String())

	for _, c := range rec.Result().Cookies() {
		if c.Name == SessionCookieName {
			return c
		}
	}
	t.Fatal("no session cookie in login response")
	return nil
}

func (f *routerFixture) do(cookie *http.Cookie, method, target, body string) *httptest.ResponseRecorder {
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func TestRouter_LoginAndFolderFlow(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.login(t, "bob", "pw-bob-123")

	rec := f.do(cookie, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"folders":["/clients/bravo"]}`, rec.Body.String())

	// Bob cannot select a folder outside his assignment.
	rec = f.do(cookie, http.MethodPost, "/auth/folder", `{"folder":"/clients/alpha"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(cookie, http.MethodPost, "/auth/folder", `{"folder":"/clients/bravo"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	// The selection sticks to the session.
	rec = f.do(cookie, http.MethodGet, "/auth/status", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var status map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "/clients/bravo", status["selected_folder"])
}

func TestRouter_AdminSeesFolderUnion(t *testing.T) {
	f := newRouterFixture(t)
	cookie := f.login(t, "admin", "pw-admin-1")

	rec := f.do(cookie, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"folders":["/clients/alpha","/clients/bravo"]}`, rec.Body.String())
}

func TestRouter_FoldersRequireAuth(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(nil, http.MethodGet, "/api/folders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_NotesFlow(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.login(t, "admin", "pw-admin-1")
	bob := f.login(t, "bob", "pw-bob-123")

	// Reading notes for a folder without any yields an empty document.
	rec := f.do(bob, http.MethodGet, "/api/notes?folder=/clients/bravo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var doc model.NotesDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.True(t, doc.Missing)

	// Only the admin may save.
	rec = f.do(bob, http.MethodPut, "/api/notes?folder=/clients/bravo", `{"content":"viewer edit"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(admin, http.MethodPut, "/api/notes?folder=/clients/bravo", `{"content":"admin note"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = f.do(bob, http.MethodGet, "/api/notes?folder=/clients/bravo", "")
	require.Equal(t, http.StatusOK, rec.Code)
	// The missing flag must be serialized explicitly so clients (and a reused
	// decode target) cannot inherit a stale value.
	assert.Contains(t, rec.Body.String(), `"missing":false`)
	var saved model.NotesDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &saved))
	assert.Equal(t, "admin note", saved.Content)
	assert.False(t, saved.Missing)
}

func TestRouter_NotesFolderScope(t *testing.T) {
	f := newRouterFixture(t)
	bob := f.login(t, "bob", "pw-bob-123")

	// Bob cannot read another client's notes by naming the folder.
	rec := f.do(bob, http.MethodGet, "/api/notes?folder=/clients/alpha", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	// No folder parameter and no selection is a validation error.
	rec = f.do(bob, http.MethodGet, "/api/notes", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_UsersAdminOnly(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.login(t, "admin", "pw-admin-1")
	bob := f.login(t, "bob", "pw-bob-123")

	rec := f.do(bob, http.MethodGet, "/api/users", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(admin, http.MethodGet, "/api/users", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var listing struct {
		Users []model.User `json:"users"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &listing))
	assert.Len(t, listing.Users, 2)
}

func TestRouter_UserLifecycle(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.login(t, "admin", "pw-admin-1")

	rec := f.do(admin, http.MethodPost, "/api/users",
		`{"username":"carol","name":"Carol","email":"carol@example.com","password":"pw-carol-99","authorized_folders":["/clients/charlie"]}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var created model.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, domainauth.RoleViewer, created.Role)

	// Carol can log in right away.
	carol := f.login(t, "carol", "pw-carol-99")
	rec = f.do(carol, http.MethodGet, "/api/folders", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"folders":["/clients/charlie"]}`, rec.Body.String())

	rec = f.do(admin, http.MethodPut, "/api/users/carol", `{"name":"Caroline"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(admin, http.MethodDelete, "/api/users/carol", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = f.do(admin, http.MethodGet, "/api/users/carol", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRouter_DeleteLastAdminRejected(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.login(t, "admin", "pw-admin-1")

	rec := f.do(admin, http.MethodDelete, "/api/users/admin", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRouter_LogoutInvalidatesSession(t *testing.T) {
	f := newRouterFixture(t)
	bob := f.login(t, "bob", "pw-bob-123")

	rec := f.do(bob, http.MethodPost, "/auth/logout", "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(bob, http.MethodGet, "/api/folders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_Health(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(nil, http.MethodGet, "/healthz", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

package configfile

// Package configfile implements the identity table on a YAML configuration
// file. Every mutation rewrites the whole file, mirroring the original
// "replace the credentials block" operator workflow; there are no partial
// diffs. A single process is assumed to own the file.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"gopkg.in/yaml.v3"
)

// UserStore reads and replaces a YAML identity table.
type UserStore struct {
	path string

	mu sync.Mutex
}

// NewUserStore creates a store backed by the YAML file at path. The file does
// not need to exist yet; an absent file reads as an empty table.
func NewUserStore(path string) *UserStore {
	return &UserStore{path: path}
}

// fileTable matches the on-disk layout inherited from the prototype dashboards:
//
//	credentials:
//	  usernames:
//	    <username>:
//	      name: ...
//	      email: ...
//	      password: <bcrypt hash>
//	      role: admin|viewer
//	      authorized_folders: [/path, ...]
//
// Legacy records may carry a singular authorized_folder (or its oldest alias
// dropbox_folder) instead of the list; both are normalized at load time.
type fileTable struct {
	Credentials struct {
		Usernames map[string]fileRecord `yaml:"usernames"`
	} `yaml:"credentials"`
}

type fileRecord struct {
	Name         string   `yaml:"name,omitempty"`
	Email        string   `yaml:"email,omitempty"`
	Password     string   `yaml:"password"`
	Role         string   `yaml:"role,omitempty"`
	Folders      []string `yaml:"authorized_folders,omitempty"`
	LegacyFolder string   `yaml:"authorized_folder,omitempty"`
	LegacyDropbox string  `yaml:"dropbox_folder,omitempty"`
}

func (r fileRecord) toUser(username string) model.User {
	folders := r.Folders
	if len(folders) == 0 {
		switch {
		case r.LegacyFolder != "":
			folders = []string{r.LegacyFolder}
		case r.LegacyDropbox != "":
			folders = []string{r.LegacyDropbox}
		}
	}
	return model.User{
		Username:     username,
		Name:         r.Name,
		Email:        r.Email,
		PasswordHash: r.Password,
		Role:         domainauth.ParseRole(r.Role),
		Folders:      folders,
	}
}

func recordFromUser(u model.User) fileRecord {
	return fileRecord{
		Name:     u.Name,
		Email:    u.Email,
		Password: u.PasswordHash,
		Role:     string(u.Role),
		Folders:  u.Folders,
	}
}

// load reads the whole table. Callers must hold mu.
func (s *UserStore) load() (map[string]model.User, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]model.User{}, nil
		}
		return nil, fmt.Errorf("read identity table: %w", err)
	}

	var table fileTable
	if err := yaml.Unmarshal(data, &table); err != nil {
		return nil, fmt.Errorf("parse identity table: %w", err)
	}

	users := make(map[string]model.User, len(table.Credentials.Usernames))
	for username, rec := range table.Credentials.Usernames {
		users[username] = rec.toUser(username)
	}
	return users, nil
}

// replace writes the full table back atomically (temp file + rename).
// Callers must hold mu.
func (s *UserStore) replace(users map[string]model.User) error {
	var table fileTable
	table.Credentials.Usernames = make(map[string]fileRecord, len(users))
	for username, u := range users {
		table.Credentials.Usernames[username] = recordFromUser(u)
	}

	data, err := yaml.Marshal(&table)
	if err != nil {
		return fmt.Errorf("encode identity table: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".users-*.yaml")
	if err != nil {
		return fmt.Errorf("create temp identity table: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write identity table: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close identity table: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace identity table: %w", err)
	}
	return nil
}

// List returns every identity record, ordered by username.
func (s *UserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}

	out := make([]model.User, 0, len(users))
	for _, u := range users {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

// Get returns the record for username.
func (s *UserStore) Get(_ context.Context, username string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	u, ok := users[username]
	if !ok {
		return nil, apperrors.NotFoundf("user %q not found", username)
	}
	return &u, nil
}

// Create inserts a record and rewrites the file.
func (s *UserStore) Create(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, exists := users[user.Username]; exists {
		return nil, apperrors.Conflictf("username %q already exists", user.Username)
	}
	users[user.Username] = user
	if err := s.replace(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Update replaces the stored record for user.Username and rewrites the file.
func (s *UserStore) Update(_ context.Context, user model.User) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return nil, err
	}
	if _, exists := users[user.Username]; !exists {
		return nil, apperrors.NotFoundf("user %q not found", user.Username)
	}
	users[user.Username] = user
	if err := s.replace(users); err != nil {
		return nil, err
	}
	return &user, nil
}

// Delete removes the record for username and rewrites the file.
func (s *UserStore) Delete(_ context.Context, username string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	users, err := s.load()
	if err != nil {
		return err
	}
	if _, exists := users[username]; !exists {
		return apperrors.NotFoundf("user %q not found", username)
	}
	delete(users, username)
	return s.replace(users)
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"path"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/domain/model"
	"github.com/biplus/ui-api/internal/domain/policy"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/ports"
)

// notesFileName is the per-folder notes artifact.
const notesFileName = "notes.md"

// ErrNotesReadOnly is returned when a non-admin session attempts to save notes.
var ErrNotesReadOnly = apperrors.Forbidden("notes are read-only for this role")

// NotesServiceOptions groups dependencies for NotesService.
type NotesServiceOptions struct {
	Store  ports.ObjectStore // Required: artifact storage
	Logger *slog.Logger      // Optional: structured logger
}

// NotesService reads and writes the free-form notes document kept alongside
// each client folder. Everyone with folder access may read; only admins save.
type NotesService struct {
	store  ports.ObjectStore
	logger *slog.Logger
}

// NewNotesService constructs a new NotesService.
func NewNotesService(opts NotesServiceOptions) (*NotesService, error) {
	if opts.Store == nil {
		return nil, errors.New("ObjectStore is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "notes_service")
	}

	return &NotesService{store: opts.Store, logger: logger}, nil
}

// MustNewNotesService constructs a new NotesService and panics on error.
func MustNewNotesService(opts NotesServiceOptions) *NotesService {
	svc, err := NewNotesService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Read returns the notes for folder. A folder without a notes artifact yields
// an empty document with Missing set rather than an error.
func (s *NotesService) Read(ctx context.Context, folder string) (*model.NotesDocument, error) {
	notesPath := path.Join(folder, notesFileName)

	data, err := s.store.Fetch(ctx, notesPath)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return &model.NotesDocument{Folder: folder, Path: notesPath, Missing: true}, nil
		}
		return nil, err
	}

	return &model.NotesDocument{Folder: folder, Path: notesPath, Content: string(data)}, nil
}

// Save overwrites the notes for folder. Only admin sessions may save.
func (s *NotesService) Save(ctx context.Context, session *domainauth.Session, folder, content string) (*model.NotesDocument, error) {
	if !policy.CanEdit(session.Role) {
		return nil, ErrNotesReadOnly
	}

	notesPath := path.Join(folder, notesFileName)
	if err := s.store.Put(ctx, notesPath, []byte(content)); err != nil {
		return nil, err
	}

	if s.logger != nil {
		s.logger.InfoContext(ctx, "notes saved", "folder", folder, "username", session.Username, "bytes", len(content))
	}
	return &model.NotesDocument{Folder: folder, Path: notesPath, Content: content}, nil
}

package service

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"strings"

	"github.com/biplus/ui-api/internal/domain/model"
	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/biplus/ui-api/internal/ports"
	"github.com/biplus/ui-api/internal/report"
)

// ErrDossierNotFound is returned when the requested dossier workbook does not
// exist under the folder.
var ErrDossierNotFound = apperrors.NotFound("dossier not found")

// ReportServiceOptions groups dependencies for ReportService.
type ReportServiceOptions struct {
	Store  ports.ObjectStore // Required: artifact storage
	Logger *slog.Logger      // Optional: structured logger
}

// ReportService loads dossier workbooks from storage and aggregates them into
// the revenue comparison summary. Dossiers live at
// <folder>/dossiers/<year>/<file>.xlsx.
type ReportService struct {
	store  ports.ObjectStore
	logger *slog.Logger
}

// NewReportService constructs a new ReportService.
func NewReportService(opts ReportServiceOptions) (*ReportService, error) {
	if opts.Store == nil {
		return nil, errors.New("ObjectStore is required")
	}

	var logger *slog.Logger
	if opts.Logger != nil {
		logger = opts.Logger.With("component", "report_service")
	}

	return &ReportService{store: opts.Store, logger: logger}, nil
}

// MustNewReportService constructs a new ReportService and panics on error.
func MustNewReportService(opts ReportServiceOptions) *ReportService {
	svc, err := NewReportService(opts)
	if err != nil {
		panic(err)
	}
	return svc
}

// Dossier fetches the named workbook and returns the aggregated comparison.
func (s *ReportService) Dossier(ctx context.Context, folder, year, file string) (*model.ReportSummary, error) {
	dossierPath, err := dossierPath(folder, year, file)
	if err != nil {
		return nil, err
	}

	data, err := s.store.Fetch(ctx, dossierPath)
	if err != nil {
		if apperrors.IsNotFound(err) {
			return nil, ErrDossierNotFound
		}
		return nil, err
	}

	lines, err := report.ParseWorkbook(data)
	if err != nil {
		if errors.Is(err, report.ErrEmptyWorkbook) {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeValidation, "dossier has no data rows")
		}
		return nil, apperrors.Wrapf(err, apperrors.ErrCodeValidation, "dossier %s is not a readable workbook", file)
	}

	summary := report.Aggregate(lines)
	summary.Folder = folder
	summary.Path = dossierPath

	if s.logger != nil {
		s.logger.InfoContext(ctx, "dossier aggregated", "folder", folder, "year", year, "file", file, "lines", len(summary.Lines))
	}
	return &summary, nil
}

// dossierPath builds the storage path for a dossier, rejecting inputs that
// would escape the folder.
func dossierPath(folder, year, file string) (string, error) {
	if !isYear(year) {
		return "", apperrors.ValidationField("year", "year must be a four-digit number")
	}
	if file == "" {
		return "", apperrors.ValidationField("file", "file is required")
	}
	if strings.ContainsAny(file, "/\\") || strings.Contains(file, "..") {
		return "", apperrors.ValidationField("file", "file must be a bare name")
	}
	if !strings.HasSuffix(file, ".xlsx") {
		file += ".xlsx"
	}
	return path.Join(folder, "dossiers", year, file), nil
}

// isYear reports whether s is exactly four decimal digits. Signs and other
// strconv-accepted forms do not name a dossier year.
func isYear(s string) bool {
	if len(s) != 4 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

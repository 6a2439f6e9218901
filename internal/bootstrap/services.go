package bootstrap

import (
	"fmt"
	"log/slog"

	"github.com/biplus/ui-api/config"
	"github.com/biplus/ui-api/internal/ports"
	"github.com/biplus/ui-api/internal/service"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Auth      *service.AuthService
	Folders   *service.FolderService
	Directory *service.DirectoryService
	Notes     *service.NotesService
	Reports   *service.ReportService
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config   *config.AppConfig
	Users    ports.UserStore
	Sessions ports.SessionStore
	Objects  ports.ObjectStore
	Logger   *slog.Logger
}

// InitServices constructs the application services from their adapters.
func InitServices(deps ServiceDeps) (ServiceContainer, error) {
	if deps.Config == nil {
		return ServiceContainer{}, fmt.Errorf("config is required")
	}

	auth, err := service.NewAuthService(service.AuthServiceOptions{
		Users:      deps.Users,
		Sessions:   deps.Sessions,
		SessionTTL: deps.Config.Auth.SessionTTL,
		Logger:     deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init auth service: %w", err)
	}

	folders, err := service.NewFolderService(service.FolderServiceOptions{
		Users:  deps.Users,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init folder service: %w", err)
	}

	directory, err := service.NewDirectoryService(service.DirectoryServiceOptions{
		Users:      deps.Users,
		BcryptCost: deps.Config.Auth.BcryptCost,
		Logger:     deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init directory service: %w", err)
	}

	notes, err := service.NewNotesService(service.NotesServiceOptions{
		Store:  deps.Objects,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init notes service: %w", err)
	}

	reports, err := service.NewReportService(service.ReportServiceOptions{
		Store:  deps.Objects,
		Logger: deps.Logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("init report service: %w", err)
	}

	return ServiceContainer{
		Auth:      auth,
		Folders:   folders,
		Directory: directory,
		Notes:     notes,
		Reports:   reports,
	}, nil
}

package httpx

// Package httpx exposes the JSON API: credential auth and sessions, folder
// access, the identity directory, notes, and dossier reports. Rendering is a
// separate frontend; this layer only speaks JSON.

import (
	"log/slog"
	"net/http"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/service"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Auth         *service.AuthService
	Folders      *service.FolderService
	Directory    *service.DirectoryService
	Notes        *service.NotesService
	Reports      *service.ReportService
	CookieDomain string
	Logger       *slog.Logger // Logger for HTTP errors (optional)
}

// NewRouter creates and configures a new HTTP router.
func NewRouter(services RouterServices) http.Handler {
	mux := http.NewServeMux()

	authHandlers := &AuthHandlers{
		Svc:          services.Auth,
		CookieDomain: services.CookieDomain,
		Logger:       services.Logger,
	}
	folderHandlers := &FolderHandlers{Svc: services.Folders}
	userHandlers := &UserHandlers{Svc: services.Directory}
	notesHandlers := &NotesHandlers{Svc: services.Notes, Folders: services.Folders}
	reportHandlers := &ReportHandlers{Svc: services.Reports, Folders: services.Folders}

	registerAuthRoutes(mux, authHandlers, services.Auth)
	registerFolderRoutes(mux, folderHandlers, services.Auth)
	registerUserRoutes(mux, userHandlers, services.Auth)
	registerNotesRoutes(mux, notesHandlers, services.Auth)
	registerReportRoutes(mux, reportHandlers, services.Auth)

	mux.Handle("GET /healthz", http.HandlerFunc(healthHandler))
	mux.Handle("HEAD /healthz", http.HandlerFunc(healthHandler))

	logger := services.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return Recover(logger)(Logging(logger)(mux))
}

func registerAuthRoutes(mux *http.ServeMux, h *AuthHandlers, auth *service.AuthService) {
	mux.HandleFunc("POST /auth/login", h.Login)
	mux.HandleFunc("POST /auth/logout", h.Logout)
	mux.HandleFunc("GET /auth/status", h.Status)
	mux.Handle("POST /auth/folder", RequireAuth(auth)(http.HandlerFunc(h.SelectFolder)))
}

func registerFolderRoutes(mux *http.ServeMux, h *FolderHandlers, auth *service.AuthService) {
	mux.Handle("GET /api/folders", RequireAuth(auth)(http.HandlerFunc(h.List)))
}

func registerUserRoutes(mux *http.ServeMux, h *UserHandlers, auth *service.AuthService) {
	adminOnly := RequireRole(auth, domainauth.RoleAdmin)
	mux.Handle("GET /api/users", adminOnly(http.HandlerFunc(h.List)))
	mux.Handle("POST /api/users", adminOnly(http.HandlerFunc(h.Create)))
	mux.Handle("GET /api/users/{username}", adminOnly(http.HandlerFunc(h.Get)))
	mux.Handle("PUT /api/users/{username}", adminOnly(http.HandlerFunc(h.Update)))
	mux.Handle("DELETE /api/users/{username}", adminOnly(http.HandlerFunc(h.Delete)))
}

func registerNotesRoutes(mux *http.ServeMux, h *NotesHandlers, auth *service.AuthService) {
	mux.Handle("GET /api/notes", RequireAuth(auth)(http.HandlerFunc(h.Read)))
	mux.Handle("PUT /api/notes", RequireRole(auth, domainauth.RoleAdmin)(http.HandlerFunc(h.Save)))
}

func registerReportRoutes(mux *http.ServeMux, h *ReportHandlers, auth *service.AuthService) {
	mux.Handle("GET /api/reports/dossier", RequireAuth(auth)(http.HandlerFunc(h.Dossier)))
}

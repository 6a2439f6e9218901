package httpx

import (
	"errors"
	"net/http"
	"slices"

	domainauth "github.com/biplus/ui-api/internal/domain/auth"
	"github.com/biplus/ui-api/internal/service"
)

// FolderHandlers provides HTTP handlers for folder access.
type FolderHandlers struct {
	Svc *service.FolderService
}

// List returns the folders the session may select.
// GET /api/folders.
func (h *FolderHandlers) List(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	folders, err := h.Svc.Accessible(r.Context(), session)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, map[string]any{"folders": folders})
}

// resolveFolder determines the working folder for a request: the folder query
// parameter when present, otherwise the session's selection. The result is
// always validated against the session's accessible set.
func resolveFolder(r *http.Request, session *domainauth.Session, folderSvc *service.FolderService) (string, error) {
	folder := r.URL.Query().Get("folder")
	if folder == "" {
		folder = session.SelectedFolder
	}
	if folder == "" {
		return "", service.ErrNoFolderSelected
	}

	accessible, err := folderSvc.Accessible(r.Context(), session)
	if err != nil {
		return "", err
	}
	if !slices.Contains(accessible, folder) {
		return "", service.ErrFolderNotAuthorized
	}
	return folder, nil
}

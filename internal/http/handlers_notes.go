package httpx

import (
	"errors"
	"net/http"

	"github.com/biplus/ui-api/internal/domain/model"
	"github.com/biplus/ui-api/internal/service"
)

// NotesHandlers provides HTTP handlers for the per-folder notes document.
type NotesHandlers struct {
	Svc     *service.NotesService
	Folders *service.FolderService
}

// Read returns the notes for the working folder.
// GET /api/notes?folder=<optional override>.
func (h *NotesHandlers) Read(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	folder, err := resolveFolder(r, session, h.Folders)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	doc, err := h.Svc.Read(r.Context(), folder)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

// Save overwrites the notes for the working folder. Admin only.
// PUT /api/notes?folder=<optional override>.
func (h *NotesHandlers) Save(w http.ResponseWriter, r *http.Request) {
	session, ok := GetSessionFromContext(r.Context())
	if !ok {
		WriteError(w, ErrorParams{
			Code:    http.StatusUnauthorized,
			ErrCode: "authentication_required",
			Err:     errors.New("authentication required"),
		})
		return
	}

	folder, err := resolveFolder(r, session, h.Folders)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	var req model.SaveNotesRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	doc, err := h.Svc.Save(r.Context(), session, folder, req.Content)
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, doc)
}

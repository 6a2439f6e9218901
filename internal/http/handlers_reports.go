package httpx

import (
	"errors"
	"net/http"

	"github.com/biplus/ui-api/internal/service"
)

// ReportHandlers provides HTTP handlers for dossier reports.
type ReportHandlers struct {
	Svc     *service.ReportService
	Folders *service.FolderService
}

// Dossier returns the aggregated revenue comparison for one dossier workbook.
// GET /api/reports/dossier?year=<yyyy>&file=<name>&folder=<optional override>.
func (h *ReportHandlers) Dossier(w http.ResponseWriter, r *http.Request) {
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

	summary, err := h.Svc.Dossier(r.Context(), folder, r.URL.Query().Get("year"), r.URL.Query().Get("file"))
	if err != nil {
		WriteAppError(w, err)
		return
	}

	WriteJSON(w, http.StatusOK, summary)
}

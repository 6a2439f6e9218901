package httpx

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	apperrors "github.com/biplus/ui-api/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]string{"hello": "world"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"hello":"world"}`, rec.Body.String())
}

func TestDecodeJSON_RejectsUnknownFields(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"nope": 1}`))

	var dst struct {
		Name string `json:"name"`
	}
	ok := DecodeJSON(rec, req, &dst)

	require.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_json")
}

func TestWriteAppError_StatusMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		errCode string
	}{
		{"not found", apperrors.NotFound("gone"), http.StatusNotFound, "not_found"},
		{"conflict", apperrors.Conflict("dup"), http.StatusConflict, "conflict"},
		{"validation", apperrors.Validation("bad"), http.StatusBadRequest, "validation"},
		{"unauthorized", apperrors.Unauthorized("nope"), http.StatusUnauthorized, "unauthorized"},
		{"forbidden", apperrors.Forbidden("no"), http.StatusForbidden, "forbidden"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
		{"internal app error", apperrors.Wrap(errors.New("db down"), apperrors.ErrCodeInternal, "oops"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteAppError(rec, tt.err)

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.errCode)
		})
	}
}

func TestWriteAppError_HidesInternalDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteAppError(rec, errors.New("password for db is hunter2"))

	assert.NotContains(t, rec.Body.String(), "hunter2")
}

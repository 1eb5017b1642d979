package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/httpx"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/requestctx"
	"github.com/ayush/notes-app/backend/internal/store"
)

const exportContentType = "application/json"

// FileStore defines the interface for export object storage.
type FileStore interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) error
	Download(ctx context.Context, key string) ([]byte, string, error)
}

// Export is the document written for a user's notes.
type Export struct {
	UserID     string        `json:"userId"`
	ExportedAt time.Time     `json:"exportedAt"`
	Notes      []models.Note `json:"notes"`
}

// ExportHandler snapshots a user's notes to object storage and serves the
// latest snapshot back. Objects are keyed by owner so one user can never
// address another's export.
type ExportHandler struct {
	notes NoteStore
	files FileStore
	log   logging.Logger
	now   func() time.Time
}

func NewExportHandler(notes NoteStore, files FileStore, log logging.Logger) *ExportHandler {
	return &ExportHandler{notes: notes, files: files, log: log, now: time.Now}
}

// ExportKey is the object key holding userID's latest export.
func ExportKey(userID string) string {
	return "exports/" + userID + "/notes.json"
}

// Create writes a fresh export of the caller's notes.
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := requestctx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.Error(w, r, h.log, errNoOwner)
		return
	}

	notes, err := h.notes.ListNotes(r.Context(), userID)
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}
	if notes == nil {
		notes = []models.Note{}
	}
	models.SortPinnedFirst(notes)

	data, err := json.Marshal(Export{UserID: userID, ExportedAt: h.now().UTC(), Notes: notes})
	if err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}

	key := ExportKey(userID)
	if err := h.files.Upload(r.Context(), key, data, exportContentType); err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}

	h.log.Info(r.Context(), "notes exported", "user_id", userID, "count", len(notes))
	httpx.Success(w, http.StatusOK, "Notes exported successfully", httpx.Fields{
		"key":   key,
		"count": len(notes),
	})
}

// Download streams the caller's latest export.
func (h *ExportHandler) Download(w http.ResponseWriter, r *http.Request) {
	userID := requestctx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.Error(w, r, h.log, errNoOwner)
		return
	}

	data, ct, err := h.files.Download(r.Context(), ExportKey(userID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			httpx.Error(w, r, h.log, apperr.NotFound("Export not found"))
			return
		}
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}
	if ct == "" {
		ct = exportContentType
	}

	w.Header().Set("Content-Type", ct)
	w.Header().Set("Content-Disposition", "attachment; filename=notes.json")
	_, _ = w.Write(data)
}

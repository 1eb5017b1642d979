package notes

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/httpx"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/requestctx"
)

// NoteStore defines the interface for note persistence. Every method that
// addresses a single note takes the owner id as part of the key.
type NoteStore interface {
	InsertNote(ctx context.Context, note *models.Note) error
	FindNote(ctx context.Context, noteID primitive.ObjectID, userID string) (*models.Note, error)
	UpdateNote(ctx context.Context, note *models.Note) error
	DeleteNote(ctx context.Context, noteID primitive.ObjectID, userID string) error
	ListNotes(ctx context.Context, userID string) ([]models.Note, error)
}

// Handler holds note HTTP handlers.
type Handler struct {
	notes NoteStore
	log   logging.Logger
}

func NewHandler(notes NoteStore, log logging.Logger) *Handler {
	return &Handler{notes: notes, log: log}
}

// Add creates a note owned by the caller.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	userID := requestctx.UserIDFromContext(r.Context())
	if userID == "" {
		httpx.Error(w, r, h.log, errNoOwner)
		return
	}

	var req models.AddNoteRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if strings.TrimSpace(req.Title) == "" {
		httpx.Error(w, r, h.log, apperr.Validation("Title is required"))
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		httpx.Error(w, r, h.log, apperr.Validation("Content is required"))
		return
	}

	note := &models.Note{
		Title:   req.Title,
		Content: req.Content,
		Tags:    models.NormalizeTags(req.Tags),
		UserID:  userID,
	}
	if err := h.notes.InsertNote(r.Context(), note); err != nil {
		httpx.Error(w, r, h.log, apperr.Internal(err))
		return
	}

	httpx.Success(w, http.StatusOK, "Note added successfully", httpx.Fields{"note": note})
}

// Edit updates the supplied fields of one of the caller's notes.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	noteID, err := ParseNoteID(chi.URLParam(r, "noteId"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	var req models.EditNoteRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if !req.HasChanges() {
		httpx.Error(w, r, h.log, apperr.Validation("No changes provided"))
		return
	}

	note, err := OwnedNote(r.Context(), h.notes, noteID, requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	req.Apply(note)
	if err := h.notes.UpdateNote(r.Context(), note); err != nil {
		httpx.Error(w, r, h.log, storeErr(err))
		return
	}

	httpx.Success(w, http.StatusOK, "Note updated successfully", httpx.Fields{"note": note})
}

// List returns the caller's notes, pinned first.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
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

	httpx.Success(w, http.StatusOK, "All Notes retrieved successfully", httpx.Fields{"notes": notes})
}

// Delete removes one of the caller's notes.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	noteID, err := ParseNoteID(chi.URLParam(r, "noteId"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	userID := requestctx.UserIDFromContext(r.Context())
	if _, err := OwnedNote(r.Context(), h.notes, noteID, userID); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	if err := h.notes.DeleteNote(r.Context(), noteID, userID); err != nil {
		httpx.Error(w, r, h.log, storeErr(err))
		return
	}

	httpx.Success(w, http.StatusOK, "Note deleted successfully", nil)
}

type pinRequest struct {
	IsPinned json.RawMessage `json:"isPinned"`
}

// SetPinned sets the pinned flag of one of the caller's notes.
func (h *Handler) SetPinned(w http.ResponseWriter, r *http.Request) {
	noteID, err := ParseNoteID(chi.URLParam(r, "noteId"))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	var req pinRequest
	if err := httpx.Decode(w, r, &req); err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}
	pinned, ok := parseBool(req.IsPinned)
	if !ok {
		httpx.Error(w, r, h.log, apperr.Validation("Invalid value for isPinned. Must be a boolean."))
		return
	}

	note, err := OwnedNote(r.Context(), h.notes, noteID, requestctx.UserIDFromContext(r.Context()))
	if err != nil {
		httpx.Error(w, r, h.log, err)
		return
	}

	note.IsPinned = pinned
	if err := h.notes.UpdateNote(r.Context(), note); err != nil {
		httpx.Error(w, r, h.log, storeErr(err))
		return
	}

	httpx.Success(w, http.StatusOK, "Note updated successfully", httpx.Fields{"note": note})
}

// parseBool accepts only a JSON true or false; absent, null, strings and
// numbers are rejected.
func parseBool(raw json.RawMessage) (bool, bool) {
	if len(raw) == 0 {
		return false, false
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return false, false
	}
	b, ok := v.(bool)
	return b, ok
}

package notes

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/store"
)

var (
	errInvalidNoteID = apperr.Validation("Invalid noteId format")
	errNoteNotFound  = apperr.NotFound("Note not found")
	errNoOwner       = apperr.Unauthorized("Token is required")
)

// ParseNoteID validates a note identifier taken from the URL.
func ParseNoteID(raw string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, errInvalidNoteID
	}
	return oid, nil
}

// OwnedNote resolves a note by id and owner together. A note that exists but
// belongs to someone else is reported exactly like a missing one.
func OwnedNote(ctx context.Context, notes NoteStore, noteID primitive.ObjectID, ownerID string) (*models.Note, error) {
	if ownerID == "" {
		return nil, errNoOwner
	}
	note, err := notes.FindNote(ctx, noteID, ownerID)
	if err != nil {
		return nil, storeErr(err)
	}
	return note, nil
}

// storeErr maps store sentinels onto the HTTP taxonomy.
func storeErr(err error) error {
	if errors.Is(err, store.ErrNotFound) {
		return errNoteNotFound
	}
	return apperr.Internal(err)
}

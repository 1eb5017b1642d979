package models

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Note is a single note document, owned by exactly one user.
type Note struct {
	ID        primitive.ObjectID `json:"_id"       bson:"_id,omitempty"`
	Title     string             `json:"title"     bson:"title"`
	Content   string             `json:"content"   bson:"content"`
	Tags      []string           `json:"tags"      bson:"tags"`
	IsPinned  bool               `json:"isPinned"  bson:"isPinned"`
	UserID    string             `json:"userId"    bson:"userId"`
	CreatedOn time.Time          `json:"createdOn" bson:"createdOn"`
}

// AddNoteRequest is the JSON body for POST /add-note.
type AddNoteRequest struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// EditNoteRequest is the JSON body for PUT /edit-note/{noteId}.
// Nil fields were absent from the request.
type EditNoteRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	Tags     *[]string `json:"tags"`
	IsPinned *bool     `json:"isPinned"`
}

// HasChanges reports whether any editable field was supplied.
// Blank title or content count as absent.
func (r *EditNoteRequest) HasChanges() bool {
	return supplied(r.Title) || supplied(r.Content) || r.Tags != nil || r.IsPinned != nil
}

func supplied(s *string) bool {
	return s != nil && strings.TrimSpace(*s) != ""
}

// Apply copies the supplied fields onto n.
func (r *EditNoteRequest) Apply(n *Note) {
	if supplied(r.Title) {
		n.Title = *r.Title
	}
	if supplied(r.Content) {
		n.Content = *r.Content
	}
	if r.Tags != nil {
		n.Tags = NormalizeTags(*r.Tags)
	}
	if r.IsPinned != nil {
		n.IsPinned = *r.IsPinned
	}
}

// NormalizeTags returns tags or an empty slice, never nil, so notes always
// serialize "tags": [].
func NormalizeTags(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

// SortPinnedFirst orders pinned notes before unpinned ones, keeping the
// existing relative order inside each group.
func SortPinnedFirst(notes []Note) {
	slices.SortStableFunc(notes, func(a, b Note) int {
		return cmp.Compare(pinRank(a), pinRank(b))
	})
}

func pinRank(n Note) int {
	if n.IsPinned {
		return 0
	}
	return 1
}

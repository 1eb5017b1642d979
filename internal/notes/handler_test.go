package notes

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/notes-app/backend/internal/apperr"
	"github.com/ayush/notes-app/backend/internal/logging"
	"github.com/ayush/notes-app/backend/internal/models"
	"github.com/ayush/notes-app/backend/internal/requestctx"
	"github.com/ayush/notes-app/backend/internal/store"
)

type envelope struct {
	Error   bool          `json:"error"`
	Message string        `json:"message"`
	Note    *models.Note  `json:"note"`
	Notes   []models.Note `json:"notes"`
}

type fixture struct {
	store  *store.MemoryStore
	router chi.Router
}

// newFixture mounts the note routes behind a stub that trusts the
// X-Test-User header, standing in for the auth middleware.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	mem := store.NewMemoryStore()
	h := NewHandler(mem, logging.Nop())

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if id := r.Header.Get("X-Test-User"); id != "" {
				r = r.WithContext(requestctx.WithUser(r.Context(), &models.User{ID: id}))
			}
			next.ServeHTTP(w, r)
		})
	})
	r.Post("/add-note", h.Add)
	r.Put("/edit-note/{noteId}", h.Edit)
	r.Get("/get-all-notes/", h.List)
	r.Delete("/delete-note/{noteId}", h.Delete)
	r.Put("/update-note-pinned/{noteId}", h.SetPinned)

	return &fixture{store: mem, router: r}
}

func (f *fixture) do(t *testing.T, method, path, user, body string) (int, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if user != "" {
		req.Header.Set("X-Test-User", user)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func (f *fixture) addNote(t *testing.T, user, body string) models.Note {
	t.Helper()
	code, env := f.do(t, http.MethodPost, "/add-note", user, body)
	require.Equal(t, http.StatusOK, code, env.Message)
	require.NotNil(t, env.Note)
	return *env.Note
}

func TestAdd_Defaults(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/add-note", "u1", `{"title":"A","content":"B"}`)

	require.Equal(t, http.StatusOK, code)
	assert.False(t, env.Error)
	assert.Equal(t, "Note added successfully", env.Message)
	require.NotNil(t, env.Note)
	assert.Equal(t, "A", env.Note.Title)
	assert.Equal(t, "B", env.Note.Content)
	assert.Equal(t, []string{}, env.Note.Tags)
	assert.False(t, env.Note.IsPinned)
	assert.Equal(t, "u1", env.Note.UserID)
	assert.False(t, env.Note.ID.IsZero())
	assert.False(t, env.Note.CreatedOn.IsZero())
}

func TestAdd_Validation(t *testing.T) {
	f := newFixture(t)

	tests := []struct {
		body    string
		message string
	}{
		{`{"content":"B"}`, "Title is required"},
		{`{"title":"   ","content":"B"}`, "Title is required"},
		{`{"title":"A"}`, "Content is required"},
		{``, "Title is required"},
		{`{"title":`, "Invalid request body"},
		{`{"title":"A","content":"B","tags":"x"}`, "Invalid request body"},
	}
	for _, tc := range tests {
		code, env := f.do(t, http.MethodPost, "/add-note", "u1", tc.body)
		assert.Equal(t, http.StatusBadRequest, code, tc.body)
		assert.True(t, env.Error)
		assert.Equal(t, tc.message, env.Message, tc.body)
	}
}

func TestAdd_WithoutIdentity(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodPost, "/add-note", "", `{"title":"A","content":"B"}`)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.True(t, env.Error)
}

func TestEdit(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B","tags":["x"]}`)
	path := "/edit-note/" + n.ID.Hex()

	code, env := f.do(t, http.MethodPut, path, "u1", `{"title":"A2","tags":[],"isPinned":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note updated successfully", env.Message)
	assert.Equal(t, "A2", env.Note.Title)
	assert.Equal(t, "B", env.Note.Content)
	assert.Equal(t, []string{}, env.Note.Tags)
	assert.True(t, env.Note.IsPinned)

	stored, err := f.store.FindNote(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "A2", stored.Title)
	assert.True(t, stored.IsPinned)
}

func TestEdit_NoChangesLeavesNoteUntouched(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B"}`)

	for _, body := range []string{`{}`, ``, `{"title":"","content":""}`, `{"title":"   "}`, `{"content":" \n"}`} {
		code, env := f.do(t, http.MethodPut, "/edit-note/"+n.ID.Hex(), "u1", body)
		assert.Equal(t, http.StatusBadRequest, code)
		assert.Equal(t, "No changes provided", env.Message)
	}

	stored, err := f.store.FindNote(context.Background(), n.ID, "u1")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)
	assert.Equal(t, "B", stored.Content)
}

func TestEdit_PinOnlyIsAChange(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B"}`)

	code, env := f.do(t, http.MethodPut, "/edit-note/"+n.ID.Hex(), "u1", `{"isPinned":true}`)
	require.Equal(t, http.StatusOK, code, env.Message)
	assert.True(t, env.Note.IsPinned)
	assert.Equal(t, "A", env.Note.Title)
}

func TestEdit_Errors(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "owner", `{"title":"A","content":"B"}`)

	code, env := f.do(t, http.MethodPut, "/edit-note/not-an-id", "owner", `{"title":"x"}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid noteId format", env.Message)

	code, env = f.do(t, http.MethodPut, "/edit-note/"+primitive.NewObjectID().Hex(), "owner", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", env.Message)

	code, env = f.do(t, http.MethodPut, "/edit-note/"+n.ID.Hex(), "intruder", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", env.Message)

	stored, err := f.store.FindNote(context.Background(), n.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, "A", stored.Title)
}

func TestCrossUserAccessIsNotFound(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "bob", `{"title":"secret","content":"bob's"}`)
	id := n.ID.Hex()

	requests := []struct {
		method, path, body string
	}{
		{http.MethodPut, "/edit-note/" + id, `{"title":"x"}`},
		{http.MethodPut, "/update-note-pinned/" + id, `{"isPinned":true}`},
		{http.MethodDelete, "/delete-note/" + id, ``},
	}
	for _, rq := range requests {
		code, env := f.do(t, rq.method, rq.path, "alice", rq.body)
		assert.Equal(t, http.StatusNotFound, code, rq.path)
		assert.Equal(t, "Note not found", env.Message)
		assert.Nil(t, env.Note)
	}

	_, env := f.do(t, http.MethodGet, "/get-all-notes/", "alice", "")
	assert.Empty(t, env.Notes)

	stored, err := f.store.FindNote(context.Background(), n.ID, "bob")
	require.NoError(t, err)
	assert.Equal(t, "secret", stored.Title)
	assert.False(t, stored.IsPinned)
}

func TestDeleteTwice(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B"}`)
	path := "/delete-note/" + n.ID.Hex()

	code, env := f.do(t, http.MethodDelete, path, "u1", "")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "Note deleted successfully", env.Message)

	code, env = f.do(t, http.MethodDelete, path, "u1", "")
	assert.Equal(t, http.StatusNotFound, code)
	assert.Equal(t, "Note not found", env.Message)

	code, _ = f.do(t, http.MethodPut, "/edit-note/"+n.ID.Hex(), "u1", `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, code)
}

func TestDelete_InvalidID(t *testing.T) {
	f := newFixture(t)

	code, env := f.do(t, http.MethodDelete, "/delete-note/123", "u1", "")
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid noteId format", env.Message)
}

func TestSetPinned(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B"}`)
	path := "/update-note-pinned/" + n.ID.Hex()

	code, env := f.do(t, http.MethodPut, path, "u1", `{"isPinned":true}`)
	require.Equal(t, http.StatusOK, code)
	assert.True(t, env.Note.IsPinned)

	code, env = f.do(t, http.MethodPut, path, "u1", `{"isPinned":false}`)
	require.Equal(t, http.StatusOK, code)
	assert.False(t, env.Note.IsPinned)
}

func TestSetPinned_RejectsNonBoolean(t *testing.T) {
	f := newFixture(t)
	n := f.addNote(t, "u1", `{"title":"A","content":"B"}`)
	path := "/update-note-pinned/" + n.ID.Hex()

	for _, body := range []string{`{}`, `{"isPinned":null}`, `{"isPinned":"true"}`, `{"isPinned":1}`} {
		code, env := f.do(t, http.MethodPut, path, "u1", body)
		assert.Equal(t, http.StatusBadRequest, code, body)
		assert.Equal(t, "Invalid value for isPinned. Must be a boolean.", env.Message, body)
	}

	code, env := f.do(t, http.MethodPut, "/update-note-pinned/zzz", "u1", `{"isPinned":true}`)
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "Invalid noteId format", env.Message)
}

func TestList_OnlyOwnNotesPinnedFirst(t *testing.T) {
	f := newFixture(t)
	a := f.addNote(t, "u1", `{"title":"a","content":"x"}`)
	f.addNote(t, "u1", `{"title":"b","content":"x"}`)
	c := f.addNote(t, "u1", `{"title":"c","content":"x"}`)
	f.addNote(t, "u1", `{"title":"d","content":"x"}`)
	f.addNote(t, "u2", `{"title":"other","content":"x"}`)

	for _, n := range []models.Note{c, a} {
		code, _ := f.do(t, http.MethodPut, "/update-note-pinned/"+n.ID.Hex(), "u1", `{"isPinned":true}`)
		require.Equal(t, http.StatusOK, code)
	}

	code, env := f.do(t, http.MethodGet, "/get-all-notes/", "u1", "")
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "All Notes retrieved successfully", env.Message)

	var titles []string
	for _, n := range env.Notes {
		assert.Equal(t, "u1", n.UserID)
		titles = append(titles, n.Title)
	}
	assert.Equal(t, []string{"a", "c", "b", "d"}, titles)
}

func TestList_EmptyIsArray(t *testing.T) {
	f := newFixture(t)

	req := httptest.NewRequest(http.MethodGet, "/get-all-notes/", nil)
	req.Header.Set("X-Test-User", "nobody")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"notes":[]`)
}

type brokenStore struct{ NoteStore }

func (brokenStore) ListNotes(context.Context, string) ([]models.Note, error) {
	return nil, errors.New("server selection timeout")
}

func (brokenStore) FindNote(context.Context, primitive.ObjectID, string) (*models.Note, error) {
	return nil, errors.New("server selection timeout")
}

func TestStoreFailuresAreInternal(t *testing.T) {
	h := NewHandler(brokenStore{}, logging.Nop())
	ctx := requestctx.WithUser(context.Background(), &models.User{ID: "u1"})

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet, "/get-all-notes/", nil).WithContext(ctx))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "timeout")

	_, err := OwnedNote(ctx, brokenStore{}, primitive.NewObjectID(), "u1")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))
}

func TestOwnedNote(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemoryStore()
	n := &models.Note{Title: "t", Content: "c", UserID: "owner"}
	require.NoError(t, mem.InsertNote(ctx, n))

	got, err := OwnedNote(ctx, mem, n.ID, "owner")
	require.NoError(t, err)
	assert.Equal(t, n.ID, got.ID)

	_, err = OwnedNote(ctx, mem, n.ID, "someone-else")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = OwnedNote(ctx, mem, primitive.NewObjectID(), "owner")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = OwnedNote(ctx, mem, n.ID, "")
	assert.Equal(t, apperr.KindUnauthorized, apperr.KindOf(err))
}

func TestParseNoteID(t *testing.T) {
	id := primitive.NewObjectID()
	got, err := ParseNoteID(id.Hex())
	require.NoError(t, err)
	assert.Equal(t, id, got)

	for _, raw := range []string{"", "abc", "64b7f0c2a1e4d3b2c1a0f9e", "64b7f0c2a1e4d3b2c1a0f9eZ"} {
		_, err := ParseNoteID(raw)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), raw)
	}
}

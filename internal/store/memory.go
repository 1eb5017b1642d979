package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/ayush/notes-app/backend/internal/models"
)

// MemoryStore is an in-process implementation of the user and note stores,
// used with STORE_DRIVER=memory and in tests. Records are copied on the way
// in and out so callers never share memory with the store.
type MemoryStore struct {
	mu      sync.RWMutex
	users   map[string]models.User
	byEmail map[string]string
	notes   map[primitive.ObjectID]models.Note
	order   []primitive.ObjectID
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:   make(map[string]models.User),
		byEmail: make(map[string]string),
		notes:   make(map[primitive.ObjectID]models.Note),
	}
}

func (s *MemoryStore) CreateUser(_ context.Context, fullName, email, hashedPassword string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail[email]; ok {
		return nil, ErrDuplicateEmail
	}
	u := models.User{
		ID:        primitive.NewObjectID().Hex(),
		FullName:  fullName,
		Email:     email,
		Password:  hashedPassword,
		CreatedOn: time.Now().UTC(),
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return &u, nil
}

func (s *MemoryStore) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

func (s *MemoryStore) GetUserByID(_ context.Context, id string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) InsertNote(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	note.ID = primitive.NewObjectID()
	note.CreatedOn = time.Now().UTC()
	note.Tags = models.NormalizeTags(note.Tags)
	s.notes[note.ID] = cloneNote(*note)
	s.order = append(s.order, note.ID)
	return nil
}

func (s *MemoryStore) FindNote(_ context.Context, noteID primitive.ObjectID, userID string) (*models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return nil, ErrNotFound
	}
	n = cloneNote(n)
	return &n, nil
}

func (s *MemoryStore) UpdateNote(_ context.Context, note *models.Note) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.notes[note.ID]
	if !ok || cur.UserID != note.UserID {
		return ErrNotFound
	}
	cur.Title = note.Title
	cur.Content = note.Content
	cur.Tags = models.NormalizeTags(slices.Clone(note.Tags))
	cur.IsPinned = note.IsPinned
	s.notes[note.ID] = cur
	return nil
}

func (s *MemoryStore) DeleteNote(_ context.Context, noteID primitive.ObjectID, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.notes[noteID]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(s.notes, noteID)
	s.order = slices.DeleteFunc(s.order, func(id primitive.ObjectID) bool { return id == noteID })
	return nil
}

func (s *MemoryStore) ListNotes(_ context.Context, userID string) ([]models.Note, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	notes := []models.Note{}
	for _, id := range s.order {
		if n := s.notes[id]; n.UserID == userID {
			notes = append(notes, cloneNote(n))
		}
	}
	models.SortPinnedFirst(notes)
	return notes, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func cloneNote(n models.Note) models.Note {
	n.Tags = models.NormalizeTags(slices.Clone(n.Tags))
	return n
}

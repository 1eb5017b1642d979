package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/ayush/notes-app/backend/internal/models"
)

// MongoStore handles user and note documents in MongoDB.
type MongoStore struct {
	users *mongo.Collection
	notes *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{
		users: db.Collection("users"),
		notes: db.Collection("notes"),
	}
}

// userDoc is the stored shape of a user; the domain model keeps the id as a string.
type userDoc struct {
	ID        primitive.ObjectID `bson:"_id,omitempty"`
	FullName  string             `bson:"fullName"`
	Email     string             `bson:"email"`
	Password  string             `bson:"password"`
	CreatedOn time.Time          `bson:"createdOn"`
}

func (d *userDoc) model() *models.User {
	return &models.User{
		ID:        d.ID.Hex(),
		FullName:  d.FullName,
		Email:     d.Email,
		Password:  d.Password,
		CreatedOn: d.CreatedOn,
	}
}

// EnsureIndexes creates the unique email index and the per-owner note index.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo users index: %w", err)
	}
	_, err = s.notes.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}, {Key: "isPinned", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("mongo notes index: %w", err)
	}
	return nil
}

func (s *MongoStore) CreateUser(ctx context.Context, fullName, email, hashedPassword string) (*models.User, error) {
	doc := userDoc{
		FullName:  fullName,
		Email:     email,
		Password:  hashedPassword,
		CreatedOn: time.Now().UTC(),
	}
	res, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("mongo insert user: %w", err)
	}
	doc.ID = res.InsertedID.(primitive.ObjectID)
	return doc.model(), nil
}

func (s *MongoStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findUser(ctx, bson.M{"email": email})
}

func (s *MongoStore) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return s.findUser(ctx, bson.M{"_id": oid})
}

func (s *MongoStore) findUser(ctx context.Context, filter bson.M) (*models.User, error) {
	var doc userDoc
	if err := s.users.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find user: %w", err)
	}
	return doc.model(), nil
}

func (s *MongoStore) InsertNote(ctx context.Context, note *models.Note) error {
	note.CreatedOn = time.Now().UTC()
	note.Tags = models.NormalizeTags(note.Tags)
	res, err := s.notes.InsertOne(ctx, note)
	if err != nil {
		return fmt.Errorf("mongo insert note: %w", err)
	}
	note.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

// ownedFilter is the only way notes are addressed: by id and owner together.
func ownedFilter(noteID primitive.ObjectID, userID string) bson.M {
	return bson.M{"_id": noteID, "userId": userID}
}

func (s *MongoStore) FindNote(ctx context.Context, noteID primitive.ObjectID, userID string) (*models.Note, error) {
	var note models.Note
	if err := s.notes.FindOne(ctx, ownedFilter(noteID, userID)).Decode(&note); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("mongo find note: %w", err)
	}
	note.Tags = models.NormalizeTags(note.Tags)
	return &note, nil
}

func (s *MongoStore) UpdateNote(ctx context.Context, note *models.Note) error {
	update := bson.M{"$set": bson.M{
		"title":    note.Title,
		"content":  note.Content,
		"tags":     models.NormalizeTags(note.Tags),
		"isPinned": note.IsPinned,
	}}
	res, err := s.notes.UpdateOne(ctx, ownedFilter(note.ID, note.UserID), update)
	if err != nil {
		return fmt.Errorf("mongo update note: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *MongoStore) DeleteNote(ctx context.Context, noteID primitive.ObjectID, userID string) error {
	res, err := s.notes.DeleteOne(ctx, ownedFilter(noteID, userID))
	if err != nil {
		return fmt.Errorf("mongo delete note: %w", err)
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListNotes returns the user's notes, pinned first, then in insertion order.
func (s *MongoStore) ListNotes(ctx context.Context, userID string) ([]models.Note, error) {
	opts := options.Find().SetSort(bson.D{{Key: "isPinned", Value: -1}, {Key: "_id", Value: 1}})
	cur, err := s.notes.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo list notes: %w", err)
	}
	defer cur.Close(ctx)

	notes := []models.Note{}
	if err := cur.All(ctx, &notes); err != nil {
		return nil, fmt.Errorf("mongo decode notes: %w", err)
	}
	for i := range notes {
		notes[i].Tags = models.NormalizeTags(notes[i].Tags)
	}
	return notes, nil
}

// Ping checks connectivity for the health endpoint.
func (s *MongoStore) Ping(ctx context.Context) error {
	return s.users.Database().Client().Ping(ctx, nil)
}

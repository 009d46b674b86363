// internal/app/store/users/userstore.go
package userstore

import (
	"context"
	"errors"
	"time"

	"github.com/nsu/musclub/internal/domain/models"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

var (
	// ErrNotFound is returned when a lookup by id matches no user.
	ErrNotFound = errors.New("user not found")
	// ErrUsernameTaken is returned when another user already holds the username.
	ErrUsernameTaken = errors.New("username already in use")
	// ErrEmailTaken is returned when another user already holds the email.
	ErrEmailTaken = errors.New("email already in use")
)

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("users")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		return models.User{}, err
	}
	return u, nil
}

// Create inserts a new user. Username and email uniqueness is checked up
// front with a case-folded lookup; the unique indexes remain the backstop
// for racing creates, mapped to the same sentinel errors.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	if err := s.checkConflicts(ctx, nil, u.Username, u.Email); err != nil {
		return models.User{}, err
	}

	now := time.Now().UTC()
	u.ID = primitive.NewObjectID()
	u.UsernameCI = text.Fold(u.Username)
	u.EmailCI = text.Fold(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, s.dupError(ctx, u.Username)
		}
		return models.User{}, err
	}
	return u, nil
}

// Update replaces username, email, and role, enforcing uniqueness against
// every user except the one being updated.
func (s *Store) Update(ctx context.Context, id primitive.ObjectID, u models.User) (models.User, error) {
	if err := s.checkConflicts(ctx, &id, u.Username, u.Email); err != nil {
		return models.User{}, err
	}

	set := bson.M{
		"username":    u.Username,
		"username_ci": text.Fold(u.Username),
		"email":       u.Email,
		"email_ci":    text.Fold(u.Email),
		"role":        u.Role,
		"updated_at":  time.Now().UTC(),
	}

	var out models.User
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&out)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.User{}, ErrNotFound
		}
		if wafflemongo.IsDup(err) {
			return models.User{}, s.dupError(ctx, u.Username)
		}
		return models.User{}, err
	}
	return out, nil
}

func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPage returns one page of users sorted by _id with a look-ahead row
// for next-page detection. start is a 1-based offset.
func (s *Store) ListPage(ctx context.Context, start, limit int) ([]models.User, bool, error) {
	if start < 1 {
		start = 1
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "_id", Value: 1}}).
		SetSkip(int64(start - 1)).
		SetLimit(int64(limit + 1))

	cur, err := s.c.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, false, err
	}
	defer cur.Close(ctx)

	var rows []models.User
	if err := cur.All(ctx, &rows); err != nil {
		return nil, false, err
	}

	hasNext := false
	if len(rows) > limit {
		rows = rows[:limit]
		hasNext = true
	}
	return rows, hasNext, nil
}

// checkConflicts reports ErrUsernameTaken / ErrEmailTaken when another user
// (excluding exclID, when set) already holds the folded username or email.
func (s *Store) checkConflicts(ctx context.Context, exclID *primitive.ObjectID, username, email string) error {
	filter := func(field, value string) bson.M {
		f := bson.M{field: text.Fold(value)}
		if exclID != nil {
			f["_id"] = bson.M{"$ne": *exclID}
		}
		return f
	}

	n, err := s.c.CountDocuments(ctx, filter("username_ci", username))
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrUsernameTaken
	}

	n, err = s.c.CountDocuments(ctx, filter("email_ci", email))
	if err != nil {
		return err
	}
	if n > 0 {
		return ErrEmailTaken
	}
	return nil
}

// dupError decides which uniqueness constraint a duplicate-key error came
// from by re-checking the username; only reachable on racing inserts.
func (s *Store) dupError(ctx context.Context, username string) error {
	n, err := s.c.CountDocuments(ctx, bson.M{"username_ci": text.Fold(username)})
	if err == nil && n > 0 {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

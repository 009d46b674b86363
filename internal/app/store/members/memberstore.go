// internal/app/store/members/memberstore.go
package memberstore

import (
	"context"
	"errors"
	"time"

	"github.com/nsu/musclub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrNotFound is returned when no membership exists for (event, user).
var ErrNotFound = errors.New("membership not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_members")}
}

// Get returns the membership row for (eventID, userID).
func (s *Store) Get(ctx context.Context, eventID, userID primitive.ObjectID) (models.EventMember, error) {
	var m models.EventMember
	err := s.c.FindOne(ctx, bson.M{"event_id": eventID, "user_id": userID}).Decode(&m)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.EventMember{}, ErrNotFound
		}
		return models.EventMember{}, err
	}
	return m, nil
}

// ListByEvent returns an event's membership rows in insertion (_id) order.
func (s *Store) ListByEvent(ctx context.Context, eventID primitive.ObjectID) ([]models.EventMember, error) {
	cur, err := s.c.Find(ctx, bson.M{"event_id": eventID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.EventMember
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Upsert creates the membership row or updates its role. On an existing
// row only the role changes; added_at keeps its original value. Returns
// the row as stored.
func (s *Store) Upsert(ctx context.Context, eventID, userID primitive.ObjectID, role string) (models.EventMember, error) {
	update := bson.M{
		"$set": bson.M{"role": role},
		"$setOnInsert": bson.M{
			"event_id": eventID,
			"user_id":  userID,
			"added_at": time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var m models.EventMember
	err := s.c.FindOneAndUpdate(ctx, bson.M{"event_id": eventID, "user_id": userID}, update, opts).Decode(&m)
	if err != nil {
		return models.EventMember{}, err
	}
	return m, nil
}

// Remove deletes the membership row for (eventID, userID).
// Returns ErrNotFound when no row matched.
func (s *Store) Remove(ctx context.Context, eventID, userID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"event_id": eventID, "user_id": userID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// RemoveByEvent deletes every membership row of an event. Used by the
// event delete cascade. Returns the number of rows removed.
func (s *Store) RemoveByEvent(ctx context.Context, eventID primitive.ObjectID) (int64, error) {
	res, err := s.c.DeleteMany(ctx, bson.M{"event_id": eventID})
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

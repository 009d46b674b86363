// internal/app/store/events/eventstore.go
package eventstore

import (
	"context"
	"errors"
	"time"

	"github.com/nsu/musclub/internal/domain/models"

	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

// ErrNotFound is returned when a lookup by id matches no event.
var ErrNotFound = errors.New("event not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("events")}
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error) {
	var e models.Event
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&e); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return e, nil
}

func (s *Store) Create(ctx context.Context, e models.Event) (models.Event, error) {
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.TitleCI = text.Fold(e.Title)
	e.CreatedAt = now
	e.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, e); err != nil {
		return models.Event{}, err
	}
	return e, nil
}

// UpdateInfo replaces the caller-editable fields of an event. Structural
// fields (parent_id) and ai_description are managed by their own methods.
func (s *Store) UpdateInfo(ctx context.Context, id primitive.ObjectID, e models.Event) (models.Event, error) {
	set := bson.M{
		"title":       e.Title,
		"title_ci":    text.Fold(e.Title),
		"description": e.Description,
		"start_time":  e.StartTime,
		"venue":       e.Venue,
		"updated_at":  time.Now().UTC(),
	}
	update := bson.M{"$set": set}
	if e.EndTime != nil {
		set["end_time"] = *e.EndTime
	} else {
		update["$unset"] = bson.M{"end_time": ""}
	}

	var out models.Event
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	if err := s.c.FindOneAndUpdate(ctx, bson.M{"_id": id}, update, opts).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return models.Event{}, ErrNotFound
		}
		return models.Event{}, err
	}
	return out, nil
}

// Delete removes an event by ID. Returns ErrNotFound when nothing matched.
// Cascading cleanup (member rows, child detachment) is the caller's job.
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

// FindByParent returns the direct children of an event in _id order,
// which is insertion order for ObjectIDs.
func (s *Store) FindByParent(ctx context.Context, parentID primitive.ObjectID) ([]models.Event, error) {
	cur, err := s.c.Find(ctx, bson.M{"parent_id": parentID},
		options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Event
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SetParent points child at parent. A nil parent clears the link (the event
// becomes a root). The relation service performs the cycle check before
// calling this.
func (s *Store) SetParent(ctx context.Context, childID primitive.ObjectID, parentID *primitive.ObjectID) error {
	update := bson.M{"$set": bson.M{"updated_at": time.Now().UTC()}}
	if parentID != nil {
		update["$set"].(bson.M)["parent_id"] = *parentID
	} else {
		update["$unset"] = bson.M{"parent_id": ""}
	}
	res, err := s.c.UpdateByID(ctx, childID, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// DetachChildren clears parent_id on every direct child of an event.
// Used when the parent is deleted. Returns the number of children detached.
func (s *Store) DetachChildren(ctx context.Context, parentID primitive.ObjectID) (int64, error) {
	res, err := s.c.UpdateMany(ctx, bson.M{"parent_id": parentID}, bson.M{
		"$unset": bson.M{"parent_id": ""},
		"$set":   bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// SaveAIDescription stores the AI-generated poster text for an event.
func (s *Store) SaveAIDescription(ctx context.Context, id primitive.ObjectID, description string) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"ai_description": description,
		"updated_at":     time.Now().UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// ListPage returns one page of events sorted by _id with look-ahead: it
// fetches limit+1 rows so the caller can detect whether a next page exists.
// start is a 1-based offset.
func (s *Store) ListPage(ctx context.Context, start, limit int) ([]models.Event, bool, error) {
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

	var rows []models.Event
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

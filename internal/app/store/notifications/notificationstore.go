// internal/app/store/notifications/notificationstore.go
package notificationstore

import (
	"context"
	"errors"
	"time"

	"github.com/nsu/musclub/internal/domain/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type Store struct {
	c *mongo.Collection
}

// ErrNotFound is returned when a status transition matches no document.
var ErrNotFound = errors.New("notification not found")

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("event_notifications")}
}

// Create inserts a new PENDING notification with its rendered subject/body.
func (s *Store) Create(ctx context.Context, n models.EventNotification) (models.EventNotification, error) {
	n.ID = primitive.NewObjectID()
	n.Status = models.NotificationPending
	n.SentAt = nil
	n.CreatedAt = time.Now().UTC()
	if _, err := s.c.InsertOne(ctx, n); err != nil {
		return models.EventNotification{}, err
	}
	return n, nil
}

// ExistsPending reports whether a PENDING notification already exists for
// the exact (event, user, sendAt) tuple. This is the scheduling idempotency
// key; SENT and FAILED rows deliberately do not count.
func (s *Store) ExistsPending(ctx context.Context, eventID, userID primitive.ObjectID, sendAt time.Time) (bool, error) {
	n, err := s.c.CountDocuments(ctx, bson.M{
		"event_id": eventID,
		"user_id":  userID,
		"send_at":  sendAt,
		"status":   models.NotificationPending,
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DueBefore returns every PENDING notification whose send_at is at or
// before now. Order is whatever the index yields; the sweep does not
// depend on it.
func (s *Store) DueBefore(ctx context.Context, now time.Time) ([]models.EventNotification, error) {
	cur, err := s.c.Find(ctx, bson.M{
		"status":  models.NotificationPending,
		"send_at": bson.M{"$lte": now},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.EventNotification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkSent transitions a notification to SENT and records when it went out.
// Status and sent_at land in one UpdateOne so the transition is atomic.
func (s *Store) MarkSent(ctx context.Context, id primitive.ObjectID, sentAt time.Time) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status":  models.NotificationSent,
		"sent_at": sentAt.UTC(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkFailed transitions a notification to FAILED. FAILED is terminal: the
// sweep never picks the row up again and nothing requeues it.
func (s *Store) MarkFailed(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"status": models.NotificationFailed,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// CountByStatus returns how many notifications an event has in the given
// status. Used by tests and the scheduling response counts.
func (s *Store) CountByStatus(ctx context.Context, eventID primitive.ObjectID, status string) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"event_id": eventID, "status": status})
}

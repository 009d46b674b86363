package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/nsu/musclub/internal/domain/models"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateEvent inserts a root event starting at the given time.
func (f *Fixtures) CreateEvent(ctx context.Context, title string, startTime time.Time) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		StartTime: startTime,
		Venue:     "Test Hall",
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test event: %v", err)
	}
	return ev
}

// CreateChildEvent inserts an event whose parent is parentID.
func (f *Fixtures) CreateChildEvent(ctx context.Context, title string, startTime time.Time, parentID primitive.ObjectID) models.Event {
	f.t.Helper()

	now := time.Now().UTC()
	ev := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		TitleCI:   text.Fold(title),
		StartTime: startTime,
		ParentID:  &parentID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := f.db.Collection("events").InsertOne(ctx, ev); err != nil {
		f.t.Fatalf("failed to create test child event: %v", err)
	}
	return ev
}

// CreateUser inserts a user with the given username and email.
func (f *Fixtures) CreateUser(ctx context.Context, username, email string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		Username:   username,
		UsernameCI: text.Fold(username),
		Email:      email,
		EmailCI:    text.Fold(email),
		Role:       "MEMBER",
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateMember inserts a membership row joining the user to the event.
func (f *Fixtures) CreateMember(ctx context.Context, eventID, userID primitive.ObjectID, role string) models.EventMember {
	f.t.Helper()

	m := models.EventMember{
		ID:      primitive.NewObjectID(),
		EventID: eventID,
		UserID:  userID,
		Role:    role,
		AddedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("event_members").InsertOne(ctx, m); err != nil {
		f.t.Fatalf("failed to create test membership: %v", err)
	}
	return m
}

// CreateNotification inserts a notification row with the given status and
// send time.
func (f *Fixtures) CreateNotification(ctx context.Context, eventID, userID primitive.ObjectID, sendAt time.Time, status string) models.EventNotification {
	f.t.Helper()

	n := models.EventNotification{
		ID:        primitive.NewObjectID(),
		EventID:   eventID,
		UserID:    userID,
		SendAt:    sendAt,
		Status:    status,
		Subject:   "Test subject",
		Body:      "Test body",
		CreatedAt: time.Now().UTC(),
	}
	if _, err := f.db.Collection("event_notifications").InsertOne(ctx, n); err != nil {
		f.t.Fatalf("failed to create test notification: %v", err)
	}
	return n
}

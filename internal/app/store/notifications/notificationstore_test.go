package notificationstore_test

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	notificationstore "github.com/nsu/musclub/internal/app/store/notifications"
	"github.com/nsu/musclub/internal/domain/models"
	"github.com/nsu/musclub/internal/testutil"
)

func TestCreate_ForcesPendingState(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)

	sent := time.Now().UTC()
	created, err := store.Create(ctx, models.EventNotification{
		EventID: primitive.NewObjectID(),
		UserID:  primitive.NewObjectID(),
		SendAt:  time.Now().Add(time.Hour).UTC(),
		Status:  models.NotificationSent, // caller cannot pre-mark rows
		SentAt:  &sent,
		Subject: "s",
		Body:    "b",
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.Status != models.NotificationPending {
		t.Fatalf("status: got %q, want PENDING", created.Status)
	}
	if created.SentAt != nil {
		t.Fatal("SentAt must start nil")
	}
	if created.CreatedAt.IsZero() {
		t.Fatal("CreatedAt not set")
	}
}

func TestExistsPending(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)

	eventID := primitive.NewObjectID()
	userID := primitive.NewObjectID()
	sendAt := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)

	created, err := store.Create(ctx, models.EventNotification{
		EventID: eventID, UserID: userID, SendAt: sendAt, Subject: "s", Body: "b",
	})
	if err != nil {
		t.Fatal(err)
	}

	exists, err := store.ExistsPending(ctx, eventID, userID, sendAt)
	if err != nil {
		t.Fatal(err)
	}
	if !exists {
		t.Fatal("expected pending row to be found")
	}

	// A different send time is a different booking.
	exists, err = store.ExistsPending(ctx, eventID, userID, sendAt.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("different send_at should not match")
	}

	// Terminal rows never count as duplicates.
	if err := store.MarkFailed(ctx, created.ID); err != nil {
		t.Fatal(err)
	}
	exists, err = store.ExistsPending(ctx, eventID, userID, sendAt)
	if err != nil {
		t.Fatal(err)
	}
	if exists {
		t.Fatal("FAILED row must not block a new booking")
	}
}

func TestDueBefore(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)
	fx := testutil.NewFixtures(t, db)

	now := time.Now().UTC()
	eventID := primitive.NewObjectID()

	due := fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now.Add(-time.Minute), models.NotificationPending)
	fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now.Add(time.Hour), models.NotificationPending)
	fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now.Add(-time.Hour), models.NotificationSent)
	fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now.Add(-time.Hour), models.NotificationFailed)

	rows, err := store.DueBefore(ctx, now)
	if err != nil {
		t.Fatalf("DueBefore failed: %v", err)
	}
	if len(rows) != 1 || rows[0].ID != due.ID {
		t.Fatalf("due rows: got %+v, want only %s", rows, due.ID.Hex())
	}
}

func TestMarkSentAndFailed(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := notificationstore.New(db)
	fx := testutil.NewFixtures(t, db)

	eventID := primitive.NewObjectID()
	now := time.Now().UTC()

	a := fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now, models.NotificationPending)
	b := fx.CreateNotification(ctx, eventID, primitive.NewObjectID(), now, models.NotificationPending)

	sentAt := now.Truncate(time.Millisecond)
	if err := store.MarkSent(ctx, a.ID, sentAt); err != nil {
		t.Fatalf("MarkSent failed: %v", err)
	}
	if err := store.MarkFailed(ctx, b.ID); err != nil {
		t.Fatalf("MarkFailed failed: %v", err)
	}

	sent, err := store.CountByStatus(ctx, eventID, models.NotificationSent)
	if err != nil {
		t.Fatal(err)
	}
	failed, err := store.CountByStatus(ctx, eventID, models.NotificationFailed)
	if err != nil {
		t.Fatal(err)
	}
	pending, err := store.CountByStatus(ctx, eventID, models.NotificationPending)
	if err != nil {
		t.Fatal(err)
	}
	if sent != 1 || failed != 1 || pending != 0 {
		t.Fatalf("counts: sent=%d failed=%d pending=%d", sent, failed, pending)
	}
}

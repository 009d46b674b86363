package memberstore_test

import (
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	memberstore "github.com/nsu/musclub/internal/app/store/members"
	"github.com/nsu/musclub/internal/testutil"
)

func TestUpsert_InsertThenUpdate(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := memberstore.New(db)

	eventID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	first, err := store.Upsert(ctx, eventID, userID, "PERFORMER")
	if err != nil {
		t.Fatalf("insert upsert failed: %v", err)
	}
	if first.Role != "PERFORMER" || first.AddedAt.IsZero() {
		t.Fatalf("inserted row: %+v", first)
	}

	second, err := store.Upsert(ctx, eventID, userID, "ORGANIZER")
	if err != nil {
		t.Fatalf("update upsert failed: %v", err)
	}
	if second.Role != "ORGANIZER" {
		t.Fatalf("role: got %q", second.Role)
	}
	if !second.AddedAt.Equal(first.AddedAt) {
		t.Fatalf("AddedAt changed on update: %v then %v", first.AddedAt, second.AddedAt)
	}

	rows, err := store.ListByEvent(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected one row per (event,user), got %d", len(rows))
	}
}

func TestListByEvent_InsertionOrder(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := memberstore.New(db)

	eventID := primitive.NewObjectID()
	var userIDs []primitive.ObjectID
	for i := 0; i < 3; i++ {
		uid := primitive.NewObjectID()
		userIDs = append(userIDs, uid)
		if _, err := store.Upsert(ctx, eventID, uid, "PERFORMER"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(2 * time.Millisecond) // distinct ObjectID timestamps
	}

	rows, err := store.ListByEvent(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows: got %d, want 3", len(rows))
	}
	for i, row := range rows {
		if row.UserID != userIDs[i] {
			t.Fatalf("row %d out of order: got %s, want %s", i, row.UserID.Hex(), userIDs[i].Hex())
		}
	}
}

func TestGetAndRemove(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := memberstore.New(db)

	eventID := primitive.NewObjectID()
	userID := primitive.NewObjectID()

	if _, err := store.Upsert(ctx, eventID, userID, "PERFORMER"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Get(ctx, eventID, userID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got.Role != "PERFORMER" {
		t.Fatalf("role: got %q", got.Role)
	}

	if err := store.Remove(ctx, eventID, userID); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if err := store.Remove(ctx, eventID, userID); !errors.Is(err, memberstore.ErrNotFound) {
		t.Fatalf("second remove: expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, eventID, userID); !errors.Is(err, memberstore.ErrNotFound) {
		t.Fatalf("Get after remove: expected ErrNotFound, got %v", err)
	}
}

func TestRemoveByEvent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := testutil.TestContext(t)
	store := memberstore.New(db)

	eventID := primitive.NewObjectID()
	otherEvent := primitive.NewObjectID()
	sharedUser := primitive.NewObjectID()

	for i := 0; i < 3; i++ {
		if _, err := store.Upsert(ctx, eventID, primitive.NewObjectID(), "PERFORMER"); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := store.Upsert(ctx, otherEvent, sharedUser, "PERFORMER"); err != nil {
		t.Fatal(err)
	}

	removed, err := store.RemoveByEvent(ctx, eventID)
	if err != nil {
		t.Fatalf("RemoveByEvent failed: %v", err)
	}
	if removed != 3 {
		t.Fatalf("removed: got %d, want 3", removed)
	}

	// Other events' rows are untouched.
	rows, err := store.ListByEvent(ctx, otherEvent)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 {
		t.Fatalf("other event rows: got %d, want 1", len(rows))
	}
}

package notify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/notify"
	"github.com/nsu/musclub/internal/domain/models"
	"github.com/nsu/musclub/internal/testutil"
)

type fixture struct {
	sched   *notify.Scheduler
	events  *testutil.FakeEvents
	users   *testutil.FakeUsers
	members *testutil.FakeMembers
	notifs  *testutil.FakeNotifications
	sender  *testutil.FakeSender
}

func newFixture() *fixture {
	events := testutil.NewFakeEvents()
	users := testutil.NewFakeUsers()
	members := testutil.NewFakeMembers()
	notifs := testutil.NewFakeNotifications()
	sender := testutil.NewFakeSender()
	return &fixture{
		sched:   notify.NewScheduler(events, users, members, notifs, sender, zap.NewNop()),
		events:  events,
		users:   users,
		members: members,
		notifs:  notifs,
		sender:  sender,
	}
}

func (f *fixture) addEvent(title string, start time.Time) models.Event {
	e := models.Event{
		ID:        primitive.NewObjectID(),
		Title:     title,
		StartTime: start,
		Venue:     "Main Hall",
	}
	f.events.Put(e)
	return e
}

func (f *fixture) addMember(t *testing.T, eventID primitive.ObjectID, username, email string) models.User {
	t.Helper()
	u := models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Email:    email,
	}
	f.users.Put(u)
	if _, err := f.members.Upsert(context.Background(), eventID, u.ID, "PERFORMER"); err != nil {
		t.Fatal(err)
	}
	return u
}

func TestScheduleReminders_BooksDayBeforeStart(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	start := time.Now().UTC().Add(72 * time.Hour).Truncate(time.Second)
	ev := f.addEvent("Spring Concert", start)
	f.addMember(t, ev.ID, "alice", "alice@example.com")

	res, err := f.sched.ScheduleReminders(ctx, ev.ID)
	if err != nil {
		t.Fatalf("ScheduleReminders failed: %v", err)
	}
	if res.Created != 1 {
		t.Fatalf("created: got %d, want 1", res.Created)
	}

	rows := f.notifs.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	n := rows[0]
	if want := start.Add(-notify.ReminderLead); !n.SendAt.Equal(want) {
		t.Fatalf("SendAt: got %v, want %v", n.SendAt, want)
	}
	if n.Status != models.NotificationPending {
		t.Fatalf("status: got %q, want PENDING", n.Status)
	}
	if !strings.Contains(n.Subject, "Spring Concert") {
		t.Fatalf("subject %q missing event title", n.Subject)
	}
	if !strings.Contains(n.Body, "alice") || !strings.Contains(n.Body, "Main Hall") {
		t.Fatalf("body missing recipient or venue: %q", n.Body)
	}
}

func TestScheduleReminders_PastStartReschedulesSoon(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	// Starts in an hour, so start-24h is already past.
	ev := f.addEvent("Tonight", time.Now().UTC().Add(time.Hour))
	f.addMember(t, ev.ID, "bob", "bob@example.com")

	before := time.Now().UTC()
	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatalf("ScheduleReminders failed: %v", err)
	}
	after := time.Now().UTC()

	rows := f.notifs.Rows()
	if len(rows) != 1 {
		t.Fatalf("rows: got %d, want 1", len(rows))
	}
	sendAt := rows[0].SendAt
	if sendAt.Before(before.Add(time.Minute)) || sendAt.After(after.Add(time.Minute)) {
		t.Fatalf("SendAt %v not about one minute from now", sendAt)
	}
}

func TestScheduleReminders_SecondRunIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(72*time.Hour))
	f.addMember(t, ev.ID, "alice", "alice@example.com")
	f.addMember(t, ev.ID, "bob", "bob@example.com")

	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	res, err := f.sched.ScheduleReminders(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 0 || res.SkippedDuplicate != 2 {
		t.Fatalf("second run: got %+v, want 0 created / 2 duplicates", res)
	}
	if got := len(f.notifs.Rows()); got != 2 {
		t.Fatalf("rows after double schedule: got %d, want 2", got)
	}
}

func TestScheduleReminders_SkipsMembersWithoutEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(72*time.Hour))
	f.addMember(t, ev.ID, "alice", "alice@example.com")
	f.addMember(t, ev.ID, "noaddr", "   ")

	res, err := f.sched.ScheduleReminders(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 || res.SkippedNoEmail != 1 {
		t.Fatalf("got %+v, want 1 created / 1 skipped_no_email", res)
	}
}

func TestScheduleReminders_NoMembersIsNotAnError(t *testing.T) {
	f := newFixture()

	ev := f.addEvent("Empty", time.Now().UTC().Add(72*time.Hour))
	res, err := f.sched.ScheduleReminders(context.Background(), ev.ID)
	if err != nil {
		t.Fatalf("expected nil error for memberless event, got %v", err)
	}
	if res.Created != 0 {
		t.Fatalf("created: got %d, want 0", res.Created)
	}
}

func TestScheduleReminders_MissingEvent(t *testing.T) {
	f := newFixture()

	_, err := f.sched.ScheduleReminders(context.Background(), primitive.NewObjectID())
	if !errors.Is(err, notify.ErrEventNotFound) {
		t.Fatalf("expected ErrEventNotFound, got %v", err)
	}
}

func TestScheduleReminders_NoStartTime(t *testing.T) {
	f := newFixture()

	ev := models.Event{ID: primitive.NewObjectID(), Title: "Undated"}
	f.events.Put(ev)

	_, err := f.sched.ScheduleReminders(context.Background(), ev.ID)
	if !errors.Is(err, notify.ErrNoStartTime) {
		t.Fatalf("expected ErrNoStartTime, got %v", err)
	}
}

func TestProcessDueNotifications_SendsAndMarks(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(time.Hour))
	f.addMember(t, ev.ID, "alice", "alice@example.com")
	f.addMember(t, ev.ID, "bob", "bob@example.com")

	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	// Both rows land about a minute out; a sweep "now" sees nothing yet.
	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatal(err)
	}
	if got := len(f.sender.Sent()); got != 0 {
		t.Fatalf("premature delivery: %d messages", got)
	}

	// Pull the rows into the past and sweep again.
	f.backdatePending(t)
	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatal(err)
	}

	if got := len(f.sender.Sent()); got != 2 {
		t.Fatalf("sent: got %d, want 2", got)
	}
	for _, n := range f.notifs.Rows() {
		if n.Status != models.NotificationSent {
			t.Fatalf("status: got %q, want SENT", n.Status)
		}
		if n.SentAt == nil {
			t.Fatal("SentAt not recorded on sent row")
		}
	}
}

func TestProcessDueNotifications_FailureIsIsolatedAndTerminal(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(time.Hour))
	f.addMember(t, ev.ID, "alice", "alice@example.com")
	f.addMember(t, ev.ID, "broken", "broken@example.com")
	f.sender.FailFor("broken@example.com", errors.New("mailbox unavailable"))

	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	f.backdatePending(t)

	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatalf("sweep must not propagate delivery errors, got %v", err)
	}

	var sent, failed int
	for _, n := range f.notifs.Rows() {
		switch n.Status {
		case models.NotificationSent:
			sent++
		case models.NotificationFailed:
			failed++
		}
	}
	if sent != 1 || failed != 1 {
		t.Fatalf("got %d sent / %d failed, want 1 / 1", sent, failed)
	}

	// A second sweep does not retry the failed row.
	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatal(err)
	}
	if got := len(f.sender.Sent()); got != 1 {
		t.Fatalf("failed row was retried: %d sends total", got)
	}
}

func TestProcessDueNotifications_DeletedUserFailsRowOnly(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(time.Hour))
	alive := f.addMember(t, ev.ID, "alice", "alice@example.com")
	gone := f.addMember(t, ev.ID, "ghost", "ghost@example.com")

	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	f.users.Delete(gone.ID)
	f.backdatePending(t)

	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatal(err)
	}

	sent := f.sender.Sent()
	if len(sent) != 1 || sent[0].To != alive.Email {
		t.Fatalf("expected one delivery to %s, got %+v", alive.Email, sent)
	}
	for _, n := range f.notifs.Rows() {
		if n.UserID == gone.ID && n.Status != models.NotificationFailed {
			t.Fatalf("dangling-user row: got %q, want FAILED", n.Status)
		}
	}
}

func TestScheduleReminders_FreshPendingAfterFailure(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Concert", time.Now().UTC().Add(time.Hour))
	f.addMember(t, ev.ID, "broken", "broken@example.com")
	f.sender.FailFor("broken@example.com", errors.New("mailbox unavailable"))

	if _, err := f.sched.ScheduleReminders(ctx, ev.ID); err != nil {
		t.Fatal(err)
	}
	f.backdatePending(t)
	if err := f.sched.ProcessDueNotifications(ctx); err != nil {
		t.Fatal(err)
	}

	// The duplicate check matches PENDING rows only, so after a failure a
	// re-schedule books a fresh attempt.
	res, err := f.sched.ScheduleReminders(ctx, ev.ID)
	if err != nil {
		t.Fatal(err)
	}
	if res.Created != 1 {
		t.Fatalf("created after failure: got %d, want 1", res.Created)
	}
	if got := len(f.notifs.Rows()); got != 2 {
		t.Fatalf("rows: got %d, want 2 (one FAILED, one PENDING)", got)
	}
}

// backdatePending rewrites every PENDING row's send time to the past so
// the next sweep picks it up.
func (f *fixture) backdatePending(t *testing.T) {
	t.Helper()
	past := time.Now().UTC().Add(-time.Minute)
	for _, n := range f.notifs.Rows() {
		if n.Status == models.NotificationPending {
			f.notifs.SetSendAt(n.ID, past)
		}
	}
}

func TestScheduleReminders_UserStoreOutageIsNotASkip(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ev := f.addEvent("Spring Concert", time.Now().UTC().Add(72*time.Hour))
	f.addMember(t, ev.ID, "alice", "alice@example.com")

	storeErr := errors.New("connection reset")
	f.users.FailGet(storeErr)

	res, err := f.sched.ScheduleReminders(ctx, ev.ID)
	if !errors.Is(err, storeErr) {
		t.Fatalf("err: got %v, want the store error", err)
	}
	if res.SkippedNoEmail != 0 {
		t.Fatalf("skipped_no_email: got %d, want 0", res.SkippedNoEmail)
	}
	if len(f.notifs.Rows()) != 0 {
		t.Fatalf("rows: got %d, want 0", len(f.notifs.Rows()))
	}
}

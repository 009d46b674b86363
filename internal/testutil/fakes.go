package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	eventstore "github.com/nsu/musclub/internal/app/store/events"
	memberstore "github.com/nsu/musclub/internal/app/store/members"
	userstore "github.com/nsu/musclub/internal/app/store/users"
	"github.com/nsu/musclub/internal/domain/models"
)

// The fakes below are in-memory stand-ins for the Mongo stores. They
// return the same sentinel errors as the real stores so the service layer
// translates them identically, which lets the relation and notify tests
// run without a database.

// FakeEvents is an in-memory events store.
type FakeEvents struct {
	mu    sync.Mutex
	byID  map[primitive.ObjectID]models.Event
	order []primitive.ObjectID
}

func NewFakeEvents() *FakeEvents {
	return &FakeEvents{byID: make(map[primitive.ObjectID]models.Event)}
}

// Put inserts or replaces an event directly, bypassing Create.
func (f *FakeEvents) Put(e models.Event) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[e.ID]; !ok {
		f.order = append(f.order, e.ID)
	}
	f.byID[e.ID] = e
}

func (f *FakeEvents) GetByID(_ context.Context, id primitive.ObjectID) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return models.Event{}, eventstore.ErrNotFound
	}
	return e, nil
}

func (f *FakeEvents) Create(_ context.Context, e models.Event) (models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	now := time.Now().UTC()
	e.ID = primitive.NewObjectID()
	e.CreatedAt = now
	e.UpdatedAt = now
	f.byID[e.ID] = e
	f.order = append(f.order, e.ID)
	return e, nil
}

func (f *FakeEvents) FindByParent(_ context.Context, parentID primitive.ObjectID) ([]models.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Event
	for _, id := range f.order {
		e := f.byID[id]
		if e.ParentID != nil && *e.ParentID == parentID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *FakeEvents) SetParent(_ context.Context, childID primitive.ObjectID, parentID *primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[childID]
	if !ok {
		return eventstore.ErrNotFound
	}
	e.ParentID = parentID
	e.UpdatedAt = time.Now().UTC()
	f.byID[childID] = e
	return nil
}

func (f *FakeEvents) SaveAIDescription(_ context.Context, id primitive.ObjectID, description string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.byID[id]
	if !ok {
		return eventstore.ErrNotFound
	}
	e.AIDescription = description
	e.UpdatedAt = time.Now().UTC()
	f.byID[id] = e
	return nil
}

// FakeUsers is an in-memory users store.
type FakeUsers struct {
	mu     sync.Mutex
	byID   map[primitive.ObjectID]models.User
	getErr error
}

func NewFakeUsers() *FakeUsers {
	return &FakeUsers{byID: make(map[primitive.ObjectID]models.User)}
}

func (f *FakeUsers) Put(u models.User) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byID[u.ID] = u
}

func (f *FakeUsers) Delete(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.byID, id)
}

// FailGet makes every GetByID return err, simulating a store outage.
func (f *FakeUsers) FailGet(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getErr = err
}

func (f *FakeUsers) GetByID(_ context.Context, id primitive.ObjectID) (models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return models.User{}, f.getErr
	}
	u, ok := f.byID[id]
	if !ok {
		return models.User{}, userstore.ErrNotFound
	}
	return u, nil
}

// FakeMembers is an in-memory event_members store. Rows keep insertion
// order, matching the _id sort of the real store.
type FakeMembers struct {
	mu   sync.Mutex
	rows []models.EventMember
}

func NewFakeMembers() *FakeMembers {
	return &FakeMembers{}
}

func (f *FakeMembers) ListByEvent(_ context.Context, eventID primitive.ObjectID) ([]models.EventMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EventMember
	for _, m := range f.rows {
		if m.EventID == eventID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeMembers) Upsert(_ context.Context, eventID, userID primitive.ObjectID, role string) (models.EventMember, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.rows {
		if m.EventID == eventID && m.UserID == userID {
			f.rows[i].Role = role
			return f.rows[i], nil
		}
	}
	m := models.EventMember{
		ID:      primitive.NewObjectID(),
		EventID: eventID,
		UserID:  userID,
		Role:    role,
		AddedAt: time.Now().UTC(),
	}
	f.rows = append(f.rows, m)
	return m, nil
}

func (f *FakeMembers) Remove(_ context.Context, eventID, userID primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, m := range f.rows {
		if m.EventID == eventID && m.UserID == userID {
			f.rows = append(f.rows[:i], f.rows[i+1:]...)
			return nil
		}
	}
	return memberstore.ErrNotFound
}

// FakeNotifications is an in-memory event_notifications store.
type FakeNotifications struct {
	mu   sync.Mutex
	rows []models.EventNotification
}

func NewFakeNotifications() *FakeNotifications {
	return &FakeNotifications{}
}

// SetSendAt rewrites a row's send time, for tests that need a due row
// without waiting.
func (f *FakeNotifications) SetSendAt(id primitive.ObjectID, sendAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id {
			f.rows[i].SendAt = sendAt
		}
	}
}

// Rows returns a copy of all rows, oldest first.
func (f *FakeNotifications) Rows() []models.EventNotification {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.EventNotification, len(f.rows))
	copy(out, f.rows)
	return out
}

func (f *FakeNotifications) Create(_ context.Context, n models.EventNotification) (models.EventNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.ID = primitive.NewObjectID()
	n.Status = models.NotificationPending
	n.SentAt = nil
	n.CreatedAt = time.Now().UTC()
	f.rows = append(f.rows, n)
	return n, nil
}

func (f *FakeNotifications) ExistsPending(_ context.Context, eventID, userID primitive.ObjectID, sendAt time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.rows {
		if n.EventID == eventID && n.UserID == userID &&
			n.SendAt.Equal(sendAt) && n.Status == models.NotificationPending {
			return true, nil
		}
	}
	return false, nil
}

func (f *FakeNotifications) DueBefore(_ context.Context, now time.Time) ([]models.EventNotification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.EventNotification
	for _, n := range f.rows {
		if n.Status == models.NotificationPending && !n.SendAt.After(now) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SendAt.Before(out[j].SendAt) })
	return out, nil
}

func (f *FakeNotifications) MarkSent(_ context.Context, id primitive.ObjectID, sentAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id {
			f.rows[i].Status = models.NotificationSent
			t := sentAt
			f.rows[i].SentAt = &t
			return nil
		}
	}
	return nil
}

func (f *FakeNotifications) MarkFailed(_ context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, n := range f.rows {
		if n.ID == id {
			f.rows[i].Status = models.NotificationFailed
		}
	}
	return nil
}

// FakeSender records outgoing mail and can be told to fail for specific
// recipients.
type FakeSender struct {
	mu      sync.Mutex
	sent    []SentMail
	failFor map[string]error
}

// SentMail is one message captured by FakeSender.
type SentMail struct {
	To      string
	Subject string
	Body    string
}

func NewFakeSender() *FakeSender {
	return &FakeSender{failFor: make(map[string]error)}
}

// FailFor makes Send return err for the given recipient address.
func (f *FakeSender) FailFor(to string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failFor[to] = err
}

func (f *FakeSender) Send(_ context.Context, to, subject, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.failFor[to]; ok {
		return err
	}
	f.sent = append(f.sent, SentMail{To: to, Subject: subject, Body: body})
	return nil
}

// Sent returns a copy of the captured messages in send order.
func (f *FakeSender) Sent() []SentMail {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]SentMail, len(f.sent))
	copy(out, f.sent)
	return out
}

// internal/domain/models/notification.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Notification status values. A notification is terminal once it leaves
// PENDING; SENT and FAILED rows are never revisited by the sweep.
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
	NotificationFailed  = "FAILED"
)

// EventNotification is a one-shot scheduled reminder for a single event
// participant. Subject and body are rendered once at creation time so that
// later edits to the event or user do not change what gets delivered.
//
// The tuple (event_id, user_id, send_at, status=PENDING) is the idempotency
// key: scheduling reminders twice for the same event and computed send time
// never double-books a recipient.
type EventNotification struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`

	SendAt time.Time  `bson:"send_at" json:"send_at"`
	SentAt *time.Time `bson:"sent_at,omitempty" json:"sent_at,omitempty"`
	Status string     `bson:"status" json:"status"`

	Subject string `bson:"subject" json:"subject"`
	Body    string `bson:"body" json:"body"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}

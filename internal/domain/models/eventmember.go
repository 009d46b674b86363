// internal/domain/models/eventmember.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// EventMember is the authoritative join between users and events.
// Exactly one document per (event_id, user_id); role is a free-form string
// describing what the user does at this event ("PERFORMER", "ORGANIZER", ...).
//
// AddedAt is set when the membership is first created and is never touched
// by later role updates.
type EventMember struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	EventID primitive.ObjectID `bson:"event_id" json:"event_id"`
	UserID  primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role    string             `bson:"role" json:"role"`
	AddedAt time.Time          `bson:"added_at" json:"added_at"`
}

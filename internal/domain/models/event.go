// internal/domain/models/event.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Event is a schedulable occurrence: a concert, rehearsal, festival day, etc.
//
// NOTE:
//   - ParentID is the only structural link between events. A nil ParentID
//     means the event is a root. The relation service guarantees that
//     following ParentID never revisits a node.
//   - Child events are not embedded; use the parent_id index to find them.
type Event struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"` // lowercase, diacritics-stripped
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	StartTime   time.Time          `bson:"start_time" json:"start_time"`
	EndTime     *time.Time         `bson:"end_time,omitempty" json:"end_time,omitempty"`
	Venue       string             `bson:"venue,omitempty" json:"venue,omitempty"`

	// AIDescription is the last AI-generated poster text saved for this event.
	AIDescription string `bson:"ai_description,omitempty" json:"ai_description,omitempty"`

	ParentID *primitive.ObjectID `bson:"parent_id,omitempty" json:"parent_id,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

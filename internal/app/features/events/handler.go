// internal/app/features/events/handler.go
package events

import (
	"go.uber.org/zap"

	"github.com/nsu/musclub/internal/app/ai"
	"github.com/nsu/musclub/internal/app/notify"
	"github.com/nsu/musclub/internal/app/relation"
	eventstore "github.com/nsu/musclub/internal/app/store/events"
	memberstore "github.com/nsu/musclub/internal/app/store/members"
)

// Handler is the shared dependency container for the events feature.
// CRUD talks to the event store directly; hierarchy and membership
// operations go through the relation service so cycle and direct-child
// rules are enforced in one place.
type Handler struct {
	Events    *eventstore.Store
	Members   *memberstore.Store
	Relation  *relation.Service
	Scheduler *notify.Scheduler
	Poster    *ai.PosterService
	Social    *ai.SocialPostService
	Log       *zap.Logger
}

// NewHandler constructs an events Handler. It is called from the bootstrap
// BuildHandler function once the stores and services exist.
func NewHandler(
	events *eventstore.Store,
	members *memberstore.Store,
	rel *relation.Service,
	scheduler *notify.Scheduler,
	poster *ai.PosterService,
	social *ai.SocialPostService,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Events:    events,
		Members:   members,
		Relation:  rel,
		Scheduler: scheduler,
		Poster:    poster,
		Social:    social,
		Log:       logger,
	}
}

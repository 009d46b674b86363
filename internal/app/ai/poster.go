// internal/app/ai/poster.go

package ai

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	eventstore "github.com/nsu/musclub/internal/app/store/events"
	"github.com/nsu/musclub/internal/domain/models"
)

// ErrEventNotFound is returned when the referenced event does not exist.
var ErrEventNotFound = errors.New("event not found")

// EventStore is the slice of the event store the copy services need.
type EventStore interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (models.Event, error)
	SaveAIDescription(ctx context.Context, id primitive.ObjectID, description string) error
}

// PosterService generates poster descriptions for events.
type PosterService struct {
	events EventStore
	client TextClient
	logger *zap.Logger
}

func NewPosterService(events EventStore, client TextClient, logger *zap.Logger) *PosterService {
	return &PosterService{events: events, client: client, logger: logger}
}

// GeneratePoster produces a Russian-language poster description for the
// event. When save is true the text is also stored on the event's
// ai_description field. Provider errors pass through wrapped so callers
// can distinguish ErrPaymentRequired from ErrUnavailable.
func (s *PosterService) GeneratePoster(ctx context.Context, eventID primitive.ObjectID, save bool) (string, error) {
	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return "", ErrEventNotFound
		}
		return "", fmt.Errorf("load event: %w", err)
	}

	text, err := s.client.GenerateText(ctx, posterSystemPrompt, posterUserPrompt(ev))
	if err != nil {
		s.logger.Error("poster generation failed",
			zap.String("event_id", eventID.Hex()),
			zap.Error(err))
		return "", err
	}
	text = stripMarkup(text)

	if save {
		if err := s.events.SaveAIDescription(ctx, eventID, text); err != nil {
			return "", fmt.Errorf("save ai description: %w", err)
		}
	}
	return text, nil
}

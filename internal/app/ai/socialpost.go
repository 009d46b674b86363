// internal/app/ai/socialpost.go

package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	eventstore "github.com/nsu/musclub/internal/app/store/events"
)

const (
	defaultPlatform = "general"
	defaultTone     = "casual"
)

// SocialPost is a generated post together with the platform and tone it
// was written for.
type SocialPost struct {
	Content  string `json:"content"`
	Platform string `json:"platform"`
	Tone     string `json:"tone"`
}

// SocialPostService generates platform-targeted social media posts for
// events.
type SocialPostService struct {
	events EventStore
	client TextClient
	logger *zap.Logger
}

func NewSocialPostService(events EventStore, client TextClient, logger *zap.Logger) *SocialPostService {
	return &SocialPostService{events: events, client: client, logger: logger}
}

// Generate produces a social media post for the event. Empty platform or
// tone fall back to "general" and "casual". The post is not persisted;
// callers get a one-shot result.
func (s *SocialPostService) Generate(ctx context.Context, eventID primitive.ObjectID, platform, tone string) (*SocialPost, error) {
	platform = strings.TrimSpace(platform)
	if platform == "" {
		platform = defaultPlatform
	}
	tone = strings.TrimSpace(tone)
	if tone == "" {
		tone = defaultTone
	}

	ev, err := s.events.GetByID(ctx, eventID)
	if err != nil {
		if errors.Is(err, eventstore.ErrNotFound) {
			return nil, ErrEventNotFound
		}
		return nil, fmt.Errorf("load event: %w", err)
	}

	content, err := s.client.GenerateText(ctx, socialSystemPrompt(platform, tone), socialUserPrompt(ev))
	if err != nil {
		s.logger.Error("social post generation failed",
			zap.String("event_id", eventID.Hex()),
			zap.String("platform", platform),
			zap.Error(err))
		return nil, err
	}

	return &SocialPost{
		Content:  stripMarkup(content),
		Platform: platform,
		Tone:     tone,
	}, nil
}

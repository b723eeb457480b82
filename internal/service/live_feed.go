package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/stemsi/qrattend-backend/internal/cache"
	"github.com/stemsi/qrattend-backend/internal/config"
	"github.com/stemsi/qrattend-backend/internal/model"
)

// LiveFeed publishes class attendance events to subscribers.
type LiveFeed struct {
	broker cache.Broker
	log    zerolog.Logger
}

// NewLiveFeed creates a feed over broker.
func NewLiveFeed(broker cache.Broker, log zerolog.Logger) *LiveFeed {
	return &LiveFeed{broker: broker, log: log.With().Str("component", "live_feed").Logger()}
}

// Publish sends ev to the class channel. Failures are logged, never returned,
// so a broker outage cannot fail a recorded scan.
func (f *LiveFeed) Publish(ctx context.Context, ev model.LiveEvent) {
	if f == nil {
		return
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		f.log.Error().Err(err).Msg("Failed to encode live event")
		return
	}
	if err := f.broker.Publish(ctx, config.CacheKey.ClassLiveChannel(ev.ClassID), payload); err != nil {
		f.log.Warn().Err(err).Str("class_id", ev.ClassID).Str("type", string(ev.Type)).Msg("Failed to publish live event")
	}
}

// Subscribe attaches to a class channel.
func (f *LiveFeed) Subscribe(ctx context.Context, classID string) (cache.Subscription, error) {
	sub, err := f.broker.Subscribe(ctx, config.CacheKey.ClassLiveChannel(classID))
	if err != nil {
		return nil, fmt.Errorf("subscribe live feed: %w", err)
	}
	return sub, nil
}

package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// EventType represents the type of event being broadcast
type EventType string

const (
	EventTypeGameStateUpdated EventType = "game.state_updated"
	EventTypeGameDeleted      EventType = "game.deleted"
)

// Event represents a generic event structure
type Event struct {
	Type   EventType      `json:"type"`
	GameID string         `json:"game_id,omitempty"`
	Data   map[string]any `json:"data,omitempty"`
}

// Broadcaster publishes game events and hands them to subscribers.
type Broadcaster interface {
	Publish(ctx context.Context, gameID uuid.UUID, event Event) error
	// Subscribe returns a channel of events for one game and a func that
	// ends the subscription.
	Subscribe(ctx context.Context, gameID uuid.UUID) (<-chan Event, func(), error)
}

// Channel is the pub/sub channel for a game.
func Channel(gameID uuid.UUID) string {
	return fmt.Sprintf("game-events:%s", gameID.String())
}

// StateUpdated builds a game.state_updated event.
func StateUpdated(gameID uuid.UUID, roomID string, messages []string) Event {
	return Event{
		Type:   EventTypeGameStateUpdated,
		GameID: gameID.String(),
		Data: map[string]any{
			"room":     roomID,
			"messages": messages,
		},
	}
}

// RedisBroadcaster publishes events to Redis Pub/Sub for SSE distribution
type RedisBroadcaster struct {
	redisClient *redis.Client
	logger      *slog.Logger
}

var _ Broadcaster = (*RedisBroadcaster)(nil)

// NewRedisBroadcaster creates a new event broadcaster
func NewRedisBroadcaster(redisClient *redis.Client, logger *slog.Logger) *RedisBroadcaster {
	return &RedisBroadcaster{
		redisClient: redisClient,
		logger:      logger,
	}
}

// Publish publishes an event to the game-specific channel
func (b *RedisBroadcaster) Publish(ctx context.Context, gameID uuid.UUID, event Event) error {
	channel := Channel(gameID)

	data, err := json.Marshal(event)
	if err != nil {
		b.logger.Error("Failed to marshal event", "error", err, "event", event)
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if err := b.redisClient.Publish(ctx, channel, data).Err(); err != nil {
		b.logger.Error("Failed to publish event", "error", err, "channel", channel)
		return fmt.Errorf("failed to publish event: %w", err)
	}

	b.logger.Debug("Event published", "channel", channel, "event_type", event.Type)
	return nil
}

// Subscribe listens on the game channel until ctx ends or cancel is called.
func (b *RedisBroadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) (<-chan Event, func(), error) {
	channel := Channel(gameID)
	pubsub := b.redisClient.Subscribe(ctx, channel)
	// wait for the subscription to be confirmed so no publish is missed
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("failed to subscribe: %w", err)
	}

	msgs := pubsub.Channel()
	out := make(chan Event, 16)
	go func() {
		defer close(out)
		for msg := range msgs {
			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				b.logger.Error("Failed to unmarshal event", "error", err, "payload", msg.Payload)
				continue
			}
			select {
			case out <- event:
			case <-ctx.Done():
				return
			}
		}
	}()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			if err := pubsub.Close(); err != nil {
				b.logger.Error("Failed to close pubsub", "error", err)
			}
		})
	}
	return out, cancel, nil
}

package storage

import (
	"context"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// Storage persists game state snapshots. Content (rooms, quests, maps) is
// read from the data directory by the content loader, not from here.
type Storage interface {
	// Health and lifecycle
	Ping(ctx context.Context) error
	Close() error

	// GameState operations. LoadGameState returns nil, nil when the id has
	// no saved state.
	SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error
	LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error)
	DeleteGameState(ctx context.Context, id uuid.UUID) error
}

package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

// MemoryStorage keeps game states in process memory. States are stored
// serialized so callers never share live values with the store.
type MemoryStorage struct {
	mu         sync.RWMutex
	gamestates map[uuid.UUID][]byte
	pingError  error
}

// Ensure MemoryStorage implements Storage interface
var _ Storage = (*MemoryStorage)(nil)

// NewMemoryStorage creates an empty in-memory store
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		gamestates: make(map[uuid.UUID][]byte),
	}
}

// SetPingError configures ping to fail with the given error; nil restores
// success
func (m *MemoryStorage) SetPingError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pingError = err
}

// Ping reports the configured ping error
func (m *MemoryStorage) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.pingError
}

// Close is a no-op
func (m *MemoryStorage) Close() error {
	return nil
}

// SaveGameState stores a gamestate
func (m *MemoryStorage) SaveGameState(ctx context.Context, id uuid.UUID, gamestate *state.GameState) error {
	if gamestate == nil {
		return errors.New("gamestate cannot be nil")
	}
	data, err := json.Marshal(gamestate)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gamestates[id] = data
	return nil
}

// LoadGameState loads a gamestate, or nil if not found
func (m *MemoryStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	m.mu.RLock()
	data, exists := m.gamestates[id]
	m.mu.RUnlock()
	if !exists {
		return nil, nil
	}
	var gs state.GameState
	if err := json.Unmarshal(data, &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

// DeleteGameState removes a gamestate
func (m *MemoryStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.gamestates, id)
	return nil
}

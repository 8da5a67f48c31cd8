package events

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// LocalBroadcaster fans events out to subscribers in the same process. It
// serves single-node deployments that run without Redis.
type LocalBroadcaster struct {
	mu     sync.Mutex
	subs   map[uuid.UUID]map[int]chan Event
	nextID int
}

var _ Broadcaster = (*LocalBroadcaster)(nil)

func NewLocalBroadcaster() *LocalBroadcaster {
	return &LocalBroadcaster{subs: make(map[uuid.UUID]map[int]chan Event)}
}

// Publish never blocks; a subscriber with a full buffer misses the event.
func (b *LocalBroadcaster) Publish(ctx context.Context, gameID uuid.UUID, event Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subs[gameID] {
		select {
		case ch <- event:
		default:
		}
	}
	return nil
}

func (b *LocalBroadcaster) Subscribe(ctx context.Context, gameID uuid.UUID) (<-chan Event, func(), error) {
	b.mu.Lock()
	id := b.nextID
	b.nextID++
	ch := make(chan Event, 16)
	if b.subs[gameID] == nil {
		b.subs[gameID] = make(map[int]chan Event)
	}
	b.subs[gameID][id] = ch
	b.mu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			delete(b.subs[gameID], id)
			if len(b.subs[gameID]) == 0 {
				delete(b.subs, gameID)
			}
			close(ch)
		})
	}
	return ch, cancel, nil
}

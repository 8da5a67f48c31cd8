package events

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func receive(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case e, ok := <-ch:
		require.True(t, ok, "channel closed")
		return e
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
	return Event{}
}

func TestRedisBroadcaster_PublishSubscribe(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	b := NewRedisBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx, cancelCtx := context.WithCancel(context.Background())
	defer cancelCtx()

	gameID := uuid.New()
	ch, cancel, err := b.Subscribe(ctx, gameID)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(ctx, gameID, StateUpdated(gameID, "forest_1", []string{"You enter the forest."})))

	e := receive(t, ch)
	assert.Equal(t, EventTypeGameStateUpdated, e.Type)
	assert.Equal(t, gameID.String(), e.GameID)
	assert.Equal(t, "forest_1", e.Data["room"])
}

func TestRedisBroadcaster_OtherGameNotDelivered(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	b := NewRedisBroadcaster(client, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx := context.Background()
	mine, other := uuid.New(), uuid.New()
	ch, cancel, err := b.Subscribe(ctx, mine)
	require.NoError(t, err)
	defer cancel()

	require.NoError(t, b.Publish(ctx, other, Event{Type: EventTypeGameDeleted}))
	require.NoError(t, b.Publish(ctx, mine, Event{Type: EventTypeGameDeleted, GameID: mine.String()}))
	assert.Equal(t, mine.String(), receive(t, ch).GameID)
}

func TestLocalBroadcaster(t *testing.T) {
	b := NewLocalBroadcaster()
	ctx := context.Background()
	gameID := uuid.New()

	ch, cancel, err := b.Subscribe(ctx, gameID)
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, gameID, StateUpdated(gameID, "city_gates", nil)))
	assert.Equal(t, "city_gates", receive(t, ch).Data["room"])

	cancel()
	cancel()
	_, ok := <-ch
	assert.False(t, ok)

	// publishing with no subscribers is fine
	assert.NoError(t, b.Publish(ctx, gameID, Event{Type: EventTypeGameDeleted}))
}

func TestChannel(t *testing.T) {
	id := uuid.MustParse("4f7a1c1e-8f65-4a3b-9d2f-1b2c3d4e5f60")
	assert.Equal(t, "game-events:4f7a1c1e-8f65-4a3b-9d2f-1b2c3d4e5f60", Channel(id))
}

package storage

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/config"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func sampleState() *state.GameState {
	gs := state.NewGameState()
	gs.World = "Valley"
	gs.RoomID = "forest_1"
	gs.PreviousRoomID = "city_gates"
	gs.Flags["gate_open"] = "true"
	gs.Flags["bandit_trouble"] = "active"
	gs.Quests = []quest.Quest{{ID: "bandit_trouble", Title: "Bandit Trouble", State: quest.Active}}
	return gs
}

// exercise runs the shared round trip against any Storage
func exercise(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, s.Ping(ctx))

	gs := sampleState()
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))

	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, gs.ID, loaded.ID)
	assert.Equal(t, "forest_1", loaded.RoomID)
	assert.Equal(t, "city_gates", loaded.PreviousRoomID)
	assert.Equal(t, "active", loaded.Flags["bandit_trouble"])
	require.Len(t, loaded.Quests, 1)
	assert.Equal(t, quest.Active, loaded.Quests[0].State)

	// saving again overwrites
	gs.RoomID = "bandit_camp"
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	loaded, err = s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Equal(t, "bandit_camp", loaded.RoomID)

	missing, err := s.LoadGameState(ctx, uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)

	require.NoError(t, s.DeleteGameState(ctx, gs.ID))
	loaded, err = s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	assert.Error(t, s.SaveGameState(ctx, uuid.New(), nil))
}

func TestRedisStorage(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient("redis://" + mr.Addr())
	require.NoError(t, err)

	s := NewRedisStorage(client, time.Hour, testLogger())
	defer s.Close()
	exercise(t, s)
}

func TestRedisStorage_TTL(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr())
	require.NoError(t, err)
	s := NewRedisStorage(client, time.Minute, testLogger())
	defer s.Close()

	ctx := context.Background()
	gs := sampleState()
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	assert.Equal(t, time.Minute, mr.TTL(gameStatePrefix+gs.ID.String()))

	mr.FastForward(2 * time.Minute)
	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestRedisStorage_WaitForConnection(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := NewRedisClient(mr.Addr())
	require.NoError(t, err)
	s := NewRedisStorage(client, 0, testLogger())
	defer s.Close()

	assert.NoError(t, s.WaitForConnection(context.Background(), 3, time.Millisecond))

	mr.Close()
	assert.Error(t, s.WaitForConnection(context.Background(), 2, time.Millisecond))
}

func TestSQLStorage_SQLite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "games.db")
	s, err := OpenSQL(context.Background(), "sqlite", path, testLogger())
	require.NoError(t, err)
	defer s.Close()
	exercise(t, s)
}

func TestSQLStorage_SurvivesReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "games.db")

	s, err := OpenSQL(ctx, "sqlite", path, testLogger())
	require.NoError(t, err)
	gs := sampleState()
	require.NoError(t, s.SaveGameState(ctx, gs.ID, gs))
	require.NoError(t, s.Close())

	s, err = OpenSQL(ctx, "sqlite", path, testLogger())
	require.NoError(t, err)
	defer s.Close()
	loaded, err := s.LoadGameState(ctx, gs.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "Valley", loaded.World)
}

func TestOpenSQL_Errors(t *testing.T) {
	_, err := OpenSQL(context.Background(), "sqlite", " ", testLogger())
	assert.Error(t, err)
	_, err = OpenSQL(context.Background(), "mysql", "x", testLogger())
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	pg := &SQLStorage{driver: "postgres"}
	assert.Equal(t, "SELECT a FROM t WHERE id = $1 AND b = $2", pg.rebind("SELECT a FROM t WHERE id = ? AND b = ?"))
	lite := &SQLStorage{driver: "sqlite"}
	assert.Equal(t, "WHERE id = ?", lite.rebind("WHERE id = ?"))
}

func TestOpen_Drivers(t *testing.T) {
	ctx := context.Background()

	s, client, err := Open(ctx, &config.Config{StorageDriver: config.DriverMemory}, testLogger())
	require.NoError(t, err)
	assert.Nil(t, client)
	assert.IsType(t, &storage.MemoryStorage{}, s)

	mr := miniredis.RunT(t)
	s, client, err = Open(ctx, &config.Config{StorageDriver: config.DriverRedis, RedisURL: mr.Addr(), SaveTTL: time.Hour}, testLogger())
	require.NoError(t, err)
	require.NotNil(t, client)
	assert.IsType(t, &RedisStorage{}, s)
	require.NoError(t, s.Close())

	s, _, err = Open(ctx, &config.Config{StorageDriver: config.DriverSQLite, DatabaseURL: filepath.Join(t.TempDir(), "x.db")}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &SQLStorage{}, s)
	require.NoError(t, s.Close())

	_, _, err = Open(ctx, &config.Config{StorageDriver: "floppy"}, testLogger())
	assert.Error(t, err)
}

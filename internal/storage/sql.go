package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // PostgreSQL driver
	_ "modernc.org/sqlite"

	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

const schema = `CREATE TABLE IF NOT EXISTS game_states (
	id TEXT PRIMARY KEY,
	data TEXT NOT NULL,
	created_at BIGINT NOT NULL,
	updated_at BIGINT NOT NULL
)`

// SQLStorage keeps game states in a single table, one JSON document per
// game. It runs on SQLite ("sqlite") or PostgreSQL ("postgres").
type SQLStorage struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Ensure SQLStorage implements Storage interface
var _ storage.Storage = (*SQLStorage)(nil)

// OpenSQL opens the database and creates the table if needed.
func OpenSQL(ctx context.Context, driver, dsn string, logger *slog.Logger) (*SQLStorage, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	if driver == "sqlite" && !strings.Contains(dsn, "?") {
		dsn += "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", driver, err)
	}
	if driver == "sqlite" {
		// a single writer avoids SQLITE_BUSY under concurrent saves
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s db: %w", driver, err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	logger.Info("SQL storage ready", "driver", driver)
	return &SQLStorage{db: db, driver: driver, logger: logger}, nil
}

// rebind rewrites ? placeholders as $n for postgres.
func (s *SQLStorage) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (s *SQLStorage) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s ping failed: %w", s.driver, err)
	}
	return nil
}

func (s *SQLStorage) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStorage) SaveGameState(ctx context.Context, id uuid.UUID, gs *state.GameState) error {
	if gs == nil {
		return errors.New("gamestate cannot be nil")
	}
	gs.UpdatedAt = time.Now().UTC()

	data, err := json.Marshal(gs)
	if err != nil {
		return fmt.Errorf("failed to marshal gamestate: %w", err)
	}

	query := s.rebind(`INSERT INTO game_states (id, data, created_at, updated_at) VALUES (?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`)
	_, err = s.db.ExecContext(ctx, query, id.String(), string(data), gs.CreatedAt.UnixMilli(), gs.UpdatedAt.UnixMilli())
	if err != nil {
		s.logger.Error("Failed to save gamestate", "uuid", id, "error", err)
		return fmt.Errorf("failed to save gamestate: %w", err)
	}
	return nil
}

func (s *SQLStorage) LoadGameState(ctx context.Context, id uuid.UUID) (*state.GameState, error) {
	var data string
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT data FROM game_states WHERE id = ?`), id.String()).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("Gamestate not found", "uuid", id)
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load gamestate: %w", err)
	}

	var gs state.GameState
	if err := json.Unmarshal([]byte(data), &gs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal gamestate: %w", err)
	}
	return &gs, nil
}

func (s *SQLStorage) DeleteGameState(ctx context.Context, id uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM game_states WHERE id = ?`), id.String()); err != nil {
		return fmt.Errorf("failed to delete gamestate: %w", err)
	}
	return nil
}

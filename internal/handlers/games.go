package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/jwebster45206/quest-engine/internal/services/events"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/storage"
)

// CommandRequest is the body of POST /v1/games/{id}/commands. Either the
// raw command text or a typed command may be given.
type CommandRequest struct {
	Command string            `json:"command,omitempty"`
	Type    state.CommandType `json:"type,omitempty"`
	Arg     string            `json:"arg,omitempty"`
}

// GameHandler runs games stored in Storage against the loaded world.
type GameHandler struct {
	storage storage.Storage
	content state.Content
	world   *content.World
	catalog inventory.Catalog
	events  events.Broadcaster
	logger  *slog.Logger

	// commands for all games run one at a time so load-apply-save never
	// interleaves for the same game
	mu sync.Mutex
}

func NewGameHandler(store storage.Storage, src state.Content, world *content.World, catalog inventory.Catalog, broadcaster events.Broadcaster, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		storage: store,
		content: src,
		world:   world,
		catalog: catalog,
		events:  broadcaster,
		logger:  logger,
	}
}

// ServeHTTP handles HTTP requests for games
// Routes:
// POST   /v1/games                     - Start a new game
// GET    /v1/games/{id}                - Current view of a game
// DELETE /v1/games/{id}                - Delete a game
// POST   /v1/games/{id}/commands       - Apply a player command
// GET    /v1/games/{id}/maps/{mapID}   - Visible pins and paths of a map
func (h *GameHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/v1/games"), "/")
	if path == "" {
		if r.Method != http.MethodPost {
			writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
			return
		}
		h.handleCreate(w, r)
		return
	}

	parts := strings.Split(path, "/")
	gameID, err := uuid.Parse(parts[0])
	if err != nil {
		h.logger.Warn("Invalid game ID", "id", parts[0], "error", err)
		writeError(w, h.logger, http.StatusBadRequest, "Invalid game ID format")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.handleRead(w, r, gameID)
	case len(parts) == 1 && r.Method == http.MethodDelete:
		h.handleDelete(w, r, gameID)
	case len(parts) == 2 && parts[1] == "commands" && r.Method == http.MethodPost:
		h.handleCommand(w, r, gameID)
	case len(parts) == 3 && parts[1] == "maps" && r.Method == http.MethodGet:
		h.handleMap(w, r, gameID, parts[2])
	case len(parts) <= 3:
		writeError(w, h.logger, http.StatusMethodNotAllowed, "Method not allowed")
	default:
		writeError(w, h.logger, http.StatusNotFound, "Not found")
	}
}

func (h *GameHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	s, err := state.NewSession(ctx, h.world, h.catalog, h.content, h.logger)
	if err != nil {
		h.logger.Error("Failed to create game", "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to create game")
		return
	}
	if err := s.Start(ctx); err != nil {
		h.logger.Error("Failed to enter start room", "error", err, "room", h.world.StartRoom)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to enter start room")
		return
	}
	if err := h.storage.SaveGameState(ctx, s.ID(), s.Snapshot()); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	h.logger.Info("Game created", "game_id", s.ID(), "room", s.Room().ID)
	writeJSON(w, h.logger, http.StatusCreated, s.View())
}

// load restores a session; it writes the error response and returns nil
// when the game cannot be loaded.
func (h *GameHandler) load(ctx context.Context, w http.ResponseWriter, id uuid.UUID) *state.Session {
	gs, err := h.storage.LoadGameState(ctx, id)
	if err != nil {
		h.logger.Error("Failed to load game", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return nil
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return nil
	}
	s, err := state.Restore(ctx, gs, h.world, h.catalog, h.content, h.logger)
	if err != nil {
		h.logger.Error("Failed to restore game", "game_id", id, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to restore game")
		return nil
	}
	return s
}

func (h *GameHandler) handleRead(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	s := h.load(r.Context(), w, id)
	if s == nil {
		return
	}
	writeJSON(w, h.logger, http.StatusOK, s.View())
}

func (h *GameHandler) handleDelete(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()
	h.mu.Lock()
	defer h.mu.Unlock()

	gs, err := h.storage.LoadGameState(ctx, id)
	if err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load game")
		return
	}
	if gs == nil {
		writeError(w, h.logger, http.StatusNotFound, "Game not found")
		return
	}
	if err := h.storage.DeleteGameState(ctx, id); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to delete game")
		return
	}
	h.publish(ctx, id, events.Event{Type: events.EventTypeGameDeleted, GameID: id.String()})
	h.logger.Info("Game deleted", "game_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *GameHandler) handleCommand(w http.ResponseWriter, r *http.Request, id uuid.UUID) {
	ctx := r.Context()

	var req CommandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "Invalid request body")
		return
	}
	cmd := state.Command{Type: req.Type, Arg: req.Arg}
	if req.Command != "" {
		parsed, err := state.ParseCommand(req.Command)
		if err != nil {
			writeError(w, h.logger, http.StatusBadRequest, err.Error())
			return
		}
		cmd = parsed
	}
	if cmd.Type == state.CmdNone {
		writeError(w, h.logger, http.StatusBadRequest, "command is required")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.load(ctx, w, id)
	if s == nil {
		return
	}
	if err := s.Apply(ctx, cmd); err != nil {
		status := commandStatus(err)
		if status == http.StatusInternalServerError {
			h.logger.Error("Command failed", "game_id", id, "command", cmd.Type, "error", err)
		} else {
			h.logger.Debug("Command rejected", "game_id", id, "command", cmd.Type, "error", err)
		}
		writeError(w, h.logger, status, err.Error())
		return
	}
	if err := h.storage.SaveGameState(ctx, id, s.Snapshot()); err != nil {
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to save game")
		return
	}

	view := s.View()
	h.publish(ctx, id, events.StateUpdated(id, view.Room.ID, view.Messages))
	writeJSON(w, h.logger, http.StatusOK, view)
}

func (h *GameHandler) handleMap(w http.ResponseWriter, r *http.Request, id uuid.UUID, mapID string) {
	ctx := r.Context()
	s := h.load(ctx, w, id)
	if s == nil {
		return
	}
	snap, err := s.MapView(ctx, mapID)
	if err != nil {
		if errors.Is(err, content.ErrContentNotFound) {
			writeError(w, h.logger, http.StatusNotFound, "Map not found")
			return
		}
		h.logger.Error("Failed to load map", "map_id", mapID, "error", err)
		writeError(w, h.logger, http.StatusInternalServerError, "Failed to load map")
		return
	}
	writeJSON(w, h.logger, http.StatusOK, snap)
}

func (h *GameHandler) publish(ctx context.Context, id uuid.UUID, e events.Event) {
	if h.events == nil {
		return
	}
	// a failed publish never fails the command
	if err := h.events.Publish(ctx, id, e); err != nil {
		h.logger.Warn("Failed to publish event", "game_id", id, "error", err)
	}
}

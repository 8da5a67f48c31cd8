package handlers

import (
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/pkg/content"
)

// WorldSummary describes the loaded world to clients.
type WorldSummary struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	StartRoom   string   `json:"start_room"`
	Quests      []string `json:"quests"`
	Maps        []string `json:"maps"`
	Rooms       []string `json:"rooms"`
}

type WorldHandler struct {
	log    *slog.Logger
	world  *content.World
	loader *content.FileLoader
}

func NewWorldHandler(log *slog.Logger, world *content.World, loader *content.FileLoader) *WorldHandler {
	return &WorldHandler{
		log:    log,
		world:  world,
		loader: loader,
	}
}

// ServeHTTP handles GET /v1/world
func (h *WorldHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, h.log, http.StatusMethodNotAllowed, "Method not allowed. Only GET is supported.")
		return
	}

	rooms, err := h.loader.List(content.RoomsDir)
	if err != nil {
		h.log.Error("Failed to list rooms", "error", err)
		writeError(w, h.log, http.StatusInternalServerError, "Failed to list rooms")
		return
	}

	summary := WorldSummary{
		Name:        h.world.Name,
		Description: h.world.Description,
		StartRoom:   h.world.StartRoom,
		Quests:      append([]string{}, h.world.Quests...),
		Maps:        append([]string{}, h.world.Maps...),
		Rooms:       rooms,
	}
	if summary.Rooms == nil {
		summary.Rooms = []string{}
	}
	writeJSON(w, h.log, http.StatusOK, summary)
}

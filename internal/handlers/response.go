package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/room"
	"github.com/jwebster45206/quest-engine/pkg/state"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, ErrorResponse{Error: msg})
}

// rejected lists errors that mean the command is not allowed right now.
// The game is unchanged when one of these is returned.
var rejected = []error{
	state.ErrUnknownCommand,
	state.ErrInCombat,
	state.ErrInDialogue,
	state.ErrNotInCombat,
	state.ErrNotInDialogue,
	state.ErrNoDialogue,
	state.ErrNotUsable,
	state.ErrNotHere,
	room.ErrActionNotOffered,
	room.ErrExitNotOffered,
	dialogue.ErrInvalidChoice,
	dialogue.ErrDialogueEnded,
	dialogue.ErrMissingItem,
	combat.ErrCombatOver,
	combat.ErrItemNotUsable,
	combat.ErrNotPlayersTurn,
	quest.ErrQuestNotFound,
	quest.ErrPrerequisitesUnmet,
	quest.ErrWrongState,
	inventory.ErrItemNotOwned,
	inventory.ErrNotEquipable,
}

// commandStatus maps a command error to an HTTP status.
func commandStatus(err error) int {
	for _, target := range rejected {
		if errors.Is(err, target) {
			return http.StatusUnprocessableEntity
		}
	}
	if errors.Is(err, room.ErrRoomNotFound) || errors.Is(err, content.ErrContentNotFound) {
		// the world points at a record that does not exist
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

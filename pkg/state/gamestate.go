package state

import (
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// DialogueState records an open conversation: which variant of the room's
// dialogues is being walked and at which step.
type DialogueState struct {
	NPC     string `json:"npc"`
	Variant int    `json:"variant"` // Index into the room's dialogues
	Step    int    `json:"step"`
}

// GameState is the serializable snapshot of a game session.
type GameState struct {
	ID             uuid.UUID         `json:"id"`                         // Unique ID per session
	World          string            `json:"world,omitempty"`            // Name of the world manifest
	RoomID         string            `json:"room_id"`                    // Current room
	PreviousRoomID string            `json:"previous_room_id,omitempty"` // Flee destination
	Flags          map[string]string `json:"flags"`
	Inventory      inventory.Record  `json:"inventory"`
	Player         *actor.Player     `json:"player"`
	Quests         []quest.Quest     `json:"quests,omitempty"` // Records with progress
	Dialogue       *DialogueState    `json:"dialogue,omitempty"`
	Combat         *combat.Status    `json:"combat,omitempty"`
	Messages       []string          `json:"messages,omitempty"` // Narration of the last command
	CreatedAt      time.Time         `json:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at"`
}

// NewGameState returns an empty state with a fresh id.
func NewGameState() *GameState {
	now := time.Now().UTC()
	return &GameState{
		ID:        uuid.New(),
		Flags:     make(map[string]string),
		CreatedAt: now,
		UpdatedAt: now,
	}
}


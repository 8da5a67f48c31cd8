package room

import (
	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/conditionals"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
)

// Room represents a place in the game world with actions, exits and an
// optional combat encounter.
type Room struct {
	ID                 string              `json:"room_id" yaml:"room_id"`
	Name               string              `json:"name,omitempty" yaml:"name,omitempty"` // Display name; derived from the id when empty
	Description        string              `json:"description" yaml:"description"`
	ClearedDescription string              `json:"cleared_description,omitempty" yaml:"cleared_description,omitempty"` // Shown once the encounter is cleared
	Items              []string            `json:"items,omitempty" yaml:"items,omitempty"`
	Actions            []Action            `json:"actions,omitempty" yaml:"actions,omitempty"`
	Dialogues          []dialogue.Dialogue `json:"dialogues,omitempty" yaml:"dialogues,omitempty"`
	Exits              []Exit              `json:"exits,omitempty" yaml:"exits,omitempty"`
	Combat             *actor.Encounter    `json:"combat,omitempty" yaml:"combat,omitempty"`
}

// Action is something the player can do in a room. Selecting it opens the
// dialogue named by Dialogue, or by ID when Dialogue is empty.
type Action struct {
	ID                string `json:"action_id" yaml:"action_id"`
	conditionals.Gate `yaml:",inline"`
	Description       string `json:"action_description" yaml:"action_description"`
	Dialogue          string `json:"dialogue,omitempty" yaml:"dialogue,omitempty"`
}

// DialogueName returns the dialogue this action triggers.
func (a Action) DialogueName() string {
	if a.Dialogue != "" {
		return a.Dialogue
	}
	return a.ID
}

// Exit leads to another room when its requirement holds.
type Exit struct {
	Name                     string `json:"exit_name" yaml:"exit_name"`
	LeadsTo                  string `json:"leads_to" yaml:"leads_to"`
	conditionals.Requirement `yaml:",inline"`
}

// ClearedFlag returns the flag that records the room's encounter as beaten.
func (r *Room) ClearedFlag() string {
	if r.Combat != nil && r.Combat.ClearedFlag != "" {
		return r.Combat.ClearedFlag
	}
	return r.ID + "_cleared"
}

// HasLiveEncounter reports whether entering the room starts combat.
func (r *Room) HasLiveEncounter(v conditionals.FlagView) bool {
	return r.Combat != nil && !conditionals.IsTrue(v, r.ClearedFlag())
}

// CurrentDescription returns the room text for the current flags.
func (r *Room) CurrentDescription(v conditionals.FlagView) string {
	if r.Combat != nil && r.ClearedDescription != "" && conditionals.IsTrue(v, r.ClearedFlag()) {
		return r.ClearedDescription
	}
	return r.Description
}

// Dialogue returns the variant of the named dialogue offered under the
// current flags.
func (r *Room) Dialogue(name string, v conditionals.FlagView) (*dialogue.Dialogue, bool) {
	return dialogue.Select(r.Dialogues, name, v)
}

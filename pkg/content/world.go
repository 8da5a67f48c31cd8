package content

import (
	"fmt"
	"slices"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

// World is the manifest that ties a content set together.
type World struct {
	Name          string              `json:"name" yaml:"name"`
	Description   string              `json:"description,omitempty" yaml:"description,omitempty"`
	StartRoom     string              `json:"start_room" yaml:"start_room"`
	RespawnRoom   string              `json:"respawn_room,omitempty" yaml:"respawn_room,omitempty"` // Defaults to StartRoom
	InitialFlags  map[string]string   `json:"initial_flags,omitempty" yaml:"initial_flags,omitempty"`
	Player        actor.PlayerSpec    `json:"player" yaml:"player"`
	Quests        []string            `json:"quests,omitempty" yaml:"quests,omitempty"`
	Maps          []string            `json:"maps,omitempty" yaml:"maps,omitempty"`
	Chapters      []worldmap.Chapter  `json:"chapters,omitempty" yaml:"chapters,omitempty"`
	EnhancedStats bool                `json:"enhanced_stats,omitempty" yaml:"enhanced_stats,omitempty"`
}

// Respawn returns the room the player returns to after defeat.
func (w *World) Respawn() string {
	if w.RespawnRoom != "" {
		return w.RespawnRoom
	}
	return w.StartRoom
}

// Validate checks the manifest and normalizes initial flag values. Unknown
// flag values are rejected here rather than at the first gate that reads
// them.
func (w *World) Validate() error {
	var errs []string
	if w.StartRoom == "" {
		errs = append(errs, "start_room is required")
	}
	if w.Player.ID == "" {
		errs = append(errs, "player.id is required")
	}

	names := make([]string, 0, len(w.InitialFlags))
	for name := range w.InitialFlags {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if !flags.ValidName(name) {
			errs = append(errs, fmt.Sprintf("initial_flags: invalid flag name %q", name))
			continue
		}
		v, err := flags.ParseValue(w.InitialFlags[name])
		if err != nil {
			errs = append(errs, fmt.Sprintf("initial_flags.%s: %v", name, err))
			continue
		}
		w.InitialFlags[name] = v
	}

	for i, ch := range w.Chapters {
		if ch.ID == "" {
			errs = append(errs, fmt.Sprintf("chapters[%d]: id is required", i))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidContent, strings.Join(errs, "; "))
	}
	return nil
}

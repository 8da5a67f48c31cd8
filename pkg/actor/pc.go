package actor

import (
	"encoding/json"
	"fmt"
	"maps"

	"github.com/jwebster45206/d20"
)

// DefaultMaxHP is used when a player spec omits max_hp.
const DefaultMaxHP = 30

// Stats5e represents the six core D&D 5e ability scores
type Stats5e struct {
	Strength     int `json:"strength" yaml:"strength"`
	Dexterity    int `json:"dexterity" yaml:"dexterity"`
	Constitution int `json:"constitution" yaml:"constitution"`
	Intelligence int `json:"intelligence" yaml:"intelligence"`
	Wisdom       int `json:"wisdom" yaml:"wisdom"`
	Charisma     int `json:"charisma" yaml:"charisma"`
}

// ToAttributes converts Stats5e to a map for d20.Actor compatibility
func (s *Stats5e) ToAttributes() map[string]int {
	return map[string]int{
		"strength":     s.Strength,
		"dexterity":    s.Dexterity,
		"constitution": s.Constitution,
		"intelligence": s.Intelligence,
		"wisdom":       s.Wisdom,
		"charisma":     s.Charisma,
	}
}

// PlayerSpec is the serializable specification for the player character
type PlayerSpec struct {
	ID              string         `json:"id" yaml:"id"`
	Name            string         `json:"name,omitempty" yaml:"name,omitempty"`
	Stats           Stats5e        `json:"stats,omitempty" yaml:"stats,omitempty"`
	HP              int            `json:"hp,omitempty" yaml:"hp,omitempty"`         // Current HP (for serialization)
	MaxHP           int            `json:"max_hp,omitempty" yaml:"max_hp,omitempty"` // Maximum HP
	AC              int            `json:"ac,omitempty" yaml:"ac,omitempty"`
	CombatModifiers map[string]int `json:"combat_modifiers,omitempty" yaml:"combat_modifiers,omitempty"`
	Attributes      map[string]int `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Inventory       []string       `json:"inventory,omitempty" yaml:"inventory,omitempty"` // Opening items
	Equipped        string         `json:"equipped,omitempty" yaml:"equipped,omitempty"`   // Opening main-hand item
	Gold            int            `json:"gold,omitempty" yaml:"gold,omitempty"`
}

// Player is the runtime representation of the player character.
// Live hit points are kept on the d20 actor.
type Player struct {
	Spec  *PlayerSpec
	Actor *d20.Actor // Built at runtime from PlayerSpec
}

// NewPlayerFromSpec creates a Player from a PlayerSpec
func NewPlayerFromSpec(spec *PlayerSpec) (*Player, error) {
	if spec == nil {
		return nil, fmt.Errorf("spec cannot be nil")
	}
	if spec.MaxHP <= 0 {
		spec.MaxHP = DefaultMaxHP
	}

	allAttrs := spec.Stats.ToAttributes()
	maps.Copy(allAttrs, spec.Attributes)

	actor, err := d20.NewActor(spec.ID).
		WithHP(spec.MaxHP).
		WithAC(spec.AC).
		WithAttributes(allAttrs).
		WithCombatModifiers(spec.CombatModifiers).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build actor: %w", err)
	}

	// Set current HP if different from max (for saved players)
	if spec.HP != spec.MaxHP && spec.HP > 0 {
		if err := actor.SetHP(spec.HP); err != nil {
			return nil, fmt.Errorf("failed to set HP: %w", err)
		}
	}

	return &Player{Spec: spec, Actor: actor}, nil
}

// Health returns current hit points.
func (p *Player) Health() int { return p.Actor.HP() }

// MaxHealth returns maximum hit points from the d20 sheet.
func (p *Player) MaxHealth() int { return p.Actor.MaxHP() }

// TakeDamage reduces health. Health cannot go below 0.
func (p *Player) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	p.Actor.SubHP(n)
}

// Heal increases health. Health cannot exceed MaxHealth.
func (p *Player) Heal(n int) {
	if n <= 0 {
		return
	}
	p.Actor.AddHP(n)
}

// Restore sets health back to maximum.
func (p *Player) Restore() {
	p.Actor.ResetHP()
}

// IsDefeated returns true once health reaches 0.
func (p *Player) IsDefeated() bool {
	return p.Actor.IsKnockedOut()
}

// UnarmedDamage is the damage dealt with nothing in the main hand: the
// "unarmed" combat modifier if present, otherwise 1.
func (p *Player) UnarmedDamage() int {
	for _, mod := range p.Actor.GetCombatModifiers() {
		if mod.Reason == "unarmed" && mod.Value > 0 {
			return mod.Value
		}
	}
	return 1
}

// MarshalJSON writes the spec with the live health value.
func (p *Player) MarshalJSON() ([]byte, error) {
	if p == nil {
		return []byte("null"), nil
	}
	spec := *p.Spec
	spec.HP = p.Actor.HP()
	spec.MaxHP = p.MaxHealth()
	return json.Marshal(spec)
}

// UnmarshalJSON reconstructs a Player from JSON and rebuilds its Actor
func (p *Player) UnmarshalJSON(data []byte) error {
	var spec PlayerSpec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("failed to unmarshal player spec: %w", err)
	}
	built, err := NewPlayerFromSpec(&spec)
	if err != nil {
		return err
	}
	// a saved 0 means knocked out; keep it rather than resetting to max
	if spec.HP == 0 {
		if err := built.Actor.SetHP(0); err != nil {
			return fmt.Errorf("failed to set HP: %w", err)
		}
	}
	*p = *built
	return nil
}

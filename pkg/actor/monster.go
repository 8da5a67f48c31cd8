package actor

// Encounter is the combat encounter record attached to a room.
type Encounter struct {
	EnemyName   string `json:"enemy_name" yaml:"enemy_name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Health      int    `json:"enemy_health" yaml:"enemy_health"`
	Damage      int    `json:"enemy_damage" yaml:"enemy_damage"`
	ClearedFlag string `json:"cleared_flag,omitempty" yaml:"cleared_flag,omitempty"` // Set "true" on victory; defaults to <room_id>_cleared
}

// Enemy represents the opponent in a live combat encounter.
type Enemy struct {
	Name   string `json:"name"`
	HP     int    `json:"hp"`
	MaxHP  int    `json:"max_hp"`
	Damage int    `json:"damage"`
}

// NewEnemy builds a fresh enemy from an encounter record.
func NewEnemy(enc *Encounter) *Enemy {
	if enc == nil {
		return nil
	}
	return &Enemy{
		Name:   enc.EnemyName,
		HP:     enc.Health,
		MaxHP:  enc.Health,
		Damage: enc.Damage,
	}
}

// TakeDamage reduces the enemy's HP by the specified amount.
// HP may go negative; IsDefeated treats anything at or below 0 as down.
func (e *Enemy) TakeDamage(n int) {
	if n <= 0 {
		return
	}
	e.HP -= n
}

// IsDefeated returns true if the enemy's HP is 0 or less.
func (e *Enemy) IsDefeated() bool {
	return e.HP <= 0
}

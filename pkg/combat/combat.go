// Package combat runs a single turn-based fight between the player and the
// enemy of a room encounter.
package combat

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
)

// DeadFlag is set "true" when the player is defeated.
const DeadFlag = "Dead"

// State is the position of the combat state machine.
type State string

const (
	PlayerTurn     State = "player_turn"
	EnemyTurn      State = "enemy_turn"
	Victory        State = "victory"
	Fled           State = "fled"
	PlayerDefeated State = "player_defeated"
)

// IsTerminal reports whether the fight is over.
func (s State) IsTerminal() bool {
	return s == Victory || s == Fled || s == PlayerDefeated
}

var (
	ErrCombatOver     = errors.New("combat is over")
	ErrItemNotUsable  = errors.New("item has no usable effect")
	ErrNoEnemy        = errors.New("encounter has no enemy")
	ErrNotPlayersTurn = errors.New("not the player's turn")
)

// Action is what the player did on a turn.
type Action string

const (
	ActionAttack  Action = "attack"
	ActionUseItem Action = "use_item"
	ActionFlee    Action = "flee"
)

// Turn reports the outcome of one player action and the enemy reply.
type Turn struct {
	Action      Action   `json:"action"`
	Item        string   `json:"item,omitempty"`
	DamageDealt int      `json:"damage_dealt,omitempty"`
	Healed      int      `json:"healed,omitempty"`
	DamageTaken int      `json:"damage_taken,omitempty"`
	EnemyHP     int      `json:"enemy_hp"`
	PlayerHP    int      `json:"player_hp"`
	State       State    `json:"state"`
	Narration   []string `json:"narration"`
}

func (t *Turn) narrate(format string, args ...any) {
	t.Narration = append(t.Narration, fmt.Sprintf(format, args...))
}

// Status is the serializable state of an open fight.
type Status struct {
	Enemy       actor.Enemy `json:"enemy"`
	State       State       `json:"state"`
	ClearedFlag string      `json:"cleared_flag"`
}

// Encounter is one fight. A new fight is a new Encounter.
type Encounter struct {
	enemy       *actor.Enemy
	player      *actor.Player
	inv         *inventory.Inventory
	flags       *flags.Store
	clearedFlag string
	state       State
	logger      *slog.Logger
}

// Deps are the shared structures a fight mutates.
type Deps struct {
	Player    *actor.Player
	Inventory *inventory.Inventory
	Flags     *flags.Store
	Logger    *slog.Logger
}

// New starts a fight against the enemy of enc. clearedFlag is set "true" on
// victory.
func New(enc *actor.Encounter, clearedFlag string, d Deps) (*Encounter, error) {
	enemy := actor.NewEnemy(enc)
	if enemy == nil {
		return nil, ErrNoEnemy
	}
	return Resume(Status{Enemy: *enemy, State: PlayerTurn, ClearedFlag: clearedFlag}, d), nil
}

// Resume rebuilds a fight from a saved status.
func Resume(s Status, d Deps) *Encounter {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	enemy := s.Enemy
	state := s.State
	if state == "" || state == EnemyTurn {
		state = PlayerTurn
	}
	return &Encounter{
		enemy:       &enemy,
		player:      d.Player,
		inv:         d.Inventory,
		flags:       d.Flags,
		clearedFlag: s.ClearedFlag,
		state:       state,
		logger:      logger,
	}
}

// State returns the current state.
func (e *Encounter) State() State { return e.state }

// Enemy returns the opponent.
func (e *Encounter) Enemy() *actor.Enemy { return e.enemy }

// Status returns the serializable state.
func (e *Encounter) Status() Status {
	return Status{Enemy: *e.enemy, State: e.state, ClearedFlag: e.clearedFlag}
}

// AttackDamage is the damage an attack deals: the effect amount of the
// main-hand item, or the player's unarmed damage.
func (e *Encounter) AttackDamage() (int, string) {
	if item, ok := e.inv.MainHand(); ok && item.Effect != nil && item.Effect.Amount > 0 {
		return item.Effect.Amount, item.DisplayName()
	}
	return e.player.UnarmedDamage(), "bare hands"
}

func (e *Encounter) begin(a Action) (*Turn, error) {
	if e.state.IsTerminal() {
		return nil, ErrCombatOver
	}
	if e.state != PlayerTurn {
		return nil, ErrNotPlayersTurn
	}
	return &Turn{Action: a}, nil
}

// Attack strikes the enemy with the equipped weapon.
func (e *Encounter) Attack() (Turn, error) {
	t, err := e.begin(ActionAttack)
	if err != nil {
		return Turn{}, err
	}
	dmg, with := e.AttackDamage()
	e.enemy.TakeDamage(dmg)
	t.DamageDealt = dmg
	t.narrate("You strike the %s with your %s for %d damage.", e.enemy.Name, with, dmg)
	e.resolve(t)
	return *t, nil
}

// UseItem applies an item's effect and uses it up.
func (e *Encounter) UseItem(id string) (Turn, error) {
	t, err := e.begin(ActionUseItem)
	if err != nil {
		return Turn{}, err
	}
	item, ok := e.inv.Get(id)
	if !ok {
		return Turn{}, fmt.Errorf("use %q: %w", id, inventory.ErrItemNotOwned)
	}
	eff := item.Effect
	if eff == nil {
		return Turn{}, fmt.Errorf("use %q: %w", id, ErrItemNotUsable)
	}

	switch {
	case eff.Type == inventory.EffectHeal && eff.Target == inventory.TargetSelf:
		before := e.player.Health()
		e.player.Heal(eff.Amount)
		t.Healed = e.player.Health() - before
		t.narrate("You use the %s and recover %d health.", item.DisplayName(), t.Healed)
	case eff.Type == inventory.EffectDamage && eff.Target == inventory.TargetNPC:
		e.enemy.TakeDamage(eff.Amount)
		t.DamageDealt = eff.Amount
		t.narrate("You use the %s on the %s for %d damage.", item.DisplayName(), e.enemy.Name, eff.Amount)
	default:
		return Turn{}, fmt.Errorf("use %q (%s on %s): %w", id, eff.Type, eff.Target, ErrItemNotUsable)
	}

	if err := e.inv.Consume(id); err != nil {
		return Turn{}, err
	}
	t.Item = id
	e.resolve(t)
	return *t, nil
}

// Flee ends the fight at once. The enemy gets no reply.
func (e *Encounter) Flee() (Turn, error) {
	t, err := e.begin(ActionFlee)
	if err != nil {
		return Turn{}, err
	}
	e.state = Fled
	t.narrate("You flee from the %s.", e.enemy.Name)
	e.finish(t)
	return *t, nil
}

// resolve checks for victory, otherwise runs the enemy turn.
func (e *Encounter) resolve(t *Turn) {
	if e.enemy.IsDefeated() {
		e.state = Victory
		if e.clearedFlag != "" {
			e.flags.Set(e.clearedFlag, flags.True)
		}
		t.narrate("The %s is defeated!", e.enemy.Name)
		e.finish(t)
		return
	}

	e.state = EnemyTurn
	e.player.TakeDamage(e.enemy.Damage)
	t.DamageTaken = e.enemy.Damage
	t.narrate("The %s hits you for %d damage.", e.enemy.Name, e.enemy.Damage)

	if e.player.IsDefeated() {
		e.state = PlayerDefeated
		e.flags.Set(DeadFlag, flags.True)
		t.narrate("You have been defeated by the %s.", e.enemy.Name)
		e.finish(t)
		return
	}
	e.state = PlayerTurn
	e.finish(t)
}

func (e *Encounter) finish(t *Turn) {
	t.State = e.state
	t.EnemyHP = max(e.enemy.HP, 0)
	t.PlayerHP = e.player.Health()
	e.logger.Debug("Combat turn",
		"action", t.Action,
		"enemy", e.enemy.Name,
		"enemy_hp", t.EnemyHP,
		"player_hp", t.PlayerHP,
		"state", t.State)
}

package combat

import (
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testCatalog = inventory.Catalog{
	"sword":  {ID: "sword", Name: "Iron Sword", Slot: inventory.SlotMainHand, Effect: &inventory.Effect{Type: inventory.EffectDamage, Target: inventory.TargetNPC, Amount: 15}},
	"potion": {ID: "potion", Name: "Healing Potion", Stackable: true, Effect: &inventory.Effect{Type: inventory.EffectHeal, Target: inventory.TargetSelf, Amount: 10}},
	"bomb":   {ID: "bomb", Name: "Fire Bomb", Effect: &inventory.Effect{Type: inventory.EffectDamage, Target: inventory.TargetNPC, Amount: 8}},
	"rock":   {ID: "rock", Name: "Rock"},
}

type fixture struct {
	player *actor.Player
	inv    *inventory.Inventory
	flags  *flags.Store
}

func newFixture(t *testing.T, maxHP int) *fixture {
	t.Helper()
	p, err := actor.NewPlayerFromSpec(&actor.PlayerSpec{ID: "hero", MaxHP: maxHP, AC: 12})
	require.NoError(t, err)
	return &fixture{player: p, inv: inventory.New(testCatalog), flags: flags.NewStore()}
}

func (f *fixture) deps() Deps {
	return Deps{Player: f.player, Inventory: f.inv, Flags: f.flags}
}

func banditEncounter() *actor.Encounter {
	return &actor.Encounter{EnemyName: "Bandit", Health: 20, Damage: 5}
}

func TestEncounter_BanditScenario(t *testing.T) {
	f := newFixture(t, 30)
	f.inv.Grant("sword")
	require.NoError(t, f.inv.Equip("sword"))

	enc, err := New(banditEncounter(), "bandit_camp_cleared", f.deps())
	require.NoError(t, err)
	assert.Equal(t, PlayerTurn, enc.State())

	turn, err := enc.Attack()
	require.NoError(t, err)
	assert.Equal(t, 15, turn.DamageDealt)
	assert.Equal(t, 5, turn.EnemyHP)
	assert.Equal(t, 5, turn.DamageTaken)
	assert.Equal(t, 25, turn.PlayerHP)
	assert.Equal(t, PlayerTurn, turn.State)

	turn, err = enc.Attack()
	require.NoError(t, err)
	assert.Equal(t, Victory, turn.State)
	assert.Equal(t, 0, turn.EnemyHP)
	assert.Equal(t, 0, turn.DamageTaken, "no enemy turn after a lethal blow")
	assert.Equal(t, 25, f.player.Health())
	assert.True(t, f.flags.IsTrue("bandit_camp_cleared"))

	_, err = enc.Attack()
	assert.ErrorIs(t, err, ErrCombatOver)
}

func TestEncounter_UnarmedAttack(t *testing.T) {
	f := newFixture(t, 30)
	enc, err := New(banditEncounter(), "", f.deps())
	require.NoError(t, err)

	turn, err := enc.Attack()
	require.NoError(t, err)
	assert.Equal(t, 1, turn.DamageDealt)
	assert.Equal(t, 19, turn.EnemyHP)
}

func TestEncounter_UnarmedModifier(t *testing.T) {
	p, err := actor.NewPlayerFromSpec(&actor.PlayerSpec{ID: "monk", MaxHP: 30, CombatModifiers: map[string]int{"unarmed": 4}})
	require.NoError(t, err)
	f := &fixture{player: p, inv: inventory.New(testCatalog), flags: flags.NewStore()}

	enc, err := New(banditEncounter(), "", f.deps())
	require.NoError(t, err)
	turn, err := enc.Attack()
	require.NoError(t, err)
	assert.Equal(t, 4, turn.DamageDealt)
}

func TestEncounter_UseHealingItem(t *testing.T) {
	f := newFixture(t, 30)
	f.inv.Add("potion", 2)
	f.player.TakeDamage(12)

	enc, err := New(banditEncounter(), "", f.deps())
	require.NoError(t, err)

	turn, err := enc.UseItem("potion")
	require.NoError(t, err)
	assert.Equal(t, 10, turn.Healed)
	assert.Equal(t, 5, turn.DamageTaken)
	assert.Equal(t, 23, f.player.Health())
	assert.Equal(t, 1, f.inv.Count("potion"), "one unit of a stack is consumed")
	assert.Equal(t, PlayerTurn, enc.State())
}

func TestEncounter_UseDamageItem(t *testing.T) {
	f := newFixture(t, 30)
	f.inv.Grant("bomb")

	enc, err := New(&actor.Encounter{EnemyName: "Rat", Health: 8, Damage: 2}, "cellar_cleared", f.deps())
	require.NoError(t, err)

	turn, err := enc.UseItem("bomb")
	require.NoError(t, err)
	assert.Equal(t, Victory, turn.State)
	assert.False(t, f.inv.Has("bomb"), "non-stacking item is removed")
	assert.True(t, f.flags.IsTrue("cellar_cleared"))
}

func TestEncounter_UseItemErrors(t *testing.T) {
	f := newFixture(t, 30)
	f.inv.Grant("rock")
	enc, err := New(banditEncounter(), "", f.deps())
	require.NoError(t, err)

	_, err = enc.UseItem("potion")
	assert.ErrorIs(t, err, inventory.ErrItemNotOwned)

	_, err = enc.UseItem("rock")
	assert.ErrorIs(t, err, ErrItemNotUsable)
	assert.True(t, f.inv.Has("rock"), "failed use consumes nothing")
	assert.Equal(t, PlayerTurn, enc.State())
	assert.Equal(t, 30, f.player.Health(), "failed use skips the enemy turn")
}

func TestEncounter_Flee(t *testing.T) {
	f := newFixture(t, 30)
	enc, err := New(banditEncounter(), "bandit_camp_cleared", f.deps())
	require.NoError(t, err)

	turn, err := enc.Flee()
	require.NoError(t, err)
	assert.Equal(t, Fled, turn.State)
	assert.Equal(t, 0, turn.DamageTaken)
	assert.Equal(t, 30, f.player.Health())
	assert.False(t, f.flags.IsTrue("bandit_camp_cleared"))

	_, err = enc.Flee()
	assert.ErrorIs(t, err, ErrCombatOver)
}

func TestEncounter_PlayerDefeated(t *testing.T) {
	f := newFixture(t, 6)
	enc, err := New(&actor.Encounter{EnemyName: "Ogre", Health: 100, Damage: 10}, "", f.deps())
	require.NoError(t, err)

	turn, err := enc.Attack()
	require.NoError(t, err)
	assert.Equal(t, PlayerDefeated, turn.State)
	assert.Equal(t, 0, turn.PlayerHP, "health is clamped at zero")
	assert.True(t, f.flags.IsTrue(DeadFlag))
	assert.True(t, turn.State.IsTerminal())
}

func TestEncounter_StatusResume(t *testing.T) {
	f := newFixture(t, 30)
	f.inv.Grant("sword")
	require.NoError(t, f.inv.Equip("sword"))

	enc, err := New(banditEncounter(), "x_cleared", f.deps())
	require.NoError(t, err)
	_, err = enc.Attack()
	require.NoError(t, err)

	resumed := Resume(enc.Status(), f.deps())
	assert.Equal(t, 5, resumed.Enemy().HP)
	assert.Equal(t, PlayerTurn, resumed.State())

	turn, err := resumed.Attack()
	require.NoError(t, err)
	assert.Equal(t, Victory, turn.State)
	assert.True(t, f.flags.IsTrue("x_cleared"))
}

func TestNew_NoEnemy(t *testing.T) {
	f := newFixture(t, 30)
	_, err := New(nil, "", f.deps())
	assert.ErrorIs(t, err, ErrNoEnemy)
}

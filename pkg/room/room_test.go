package room

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cityGatesJSON = `{
  "room_id": "city_gates",
  "description": "Tall gates loom over the road.",
  "actions": [
    {"action_id": "talk_guard", "action_description": "Talk to the guard"},
    {"action_id": "talk_elder", "flag_false": "met_elder", "action_description": "Greet the stranger"},
    {"action_id": "talk_elder", "flag_true": "met_elder", "action_description": "Talk to the elder"},
    {"action_id": "open_chest", "flag_true": "chest_key", "action_description": "Open the chest"}
  ],
  "exits": [
    {"exit_name": "north", "leads_to": "forest_1", "conditions": ["gate_key"]},
    {"exit_name": "south", "leads_to": "market_burning", "conditions": ["market_fire"]},
    {"exit_name": "south", "leads_to": "market", "conditions_not": ["market_fire"]}
  ]
}`

func cityGates(t *testing.T) *Room {
	t.Helper()
	var r Room
	require.NoError(t, json.Unmarshal([]byte(cityGatesJSON), &r))
	return &r
}

func exitTargets(exits []Exit) []string {
	var out []string
	for _, e := range exits {
		out = append(out, e.LeadsTo)
	}
	return out
}

func TestAvailableExits_GateKey(t *testing.T) {
	r := cityGates(t)
	fs := flags.NewStore()

	assert.NotContains(t, exitTargets(AvailableExits(r, fs)), "forest_1")

	fs.Set("gate_key", flags.True)
	assert.Contains(t, exitTargets(AvailableExits(r, fs)), "forest_1")

	fs.Set("gate_key", flags.False)
	assert.NotContains(t, exitTargets(AvailableExits(r, fs)), "forest_1")

	fs.Set("gate_key", flags.True)
	assert.Contains(t, exitTargets(AvailableExits(r, fs)), "forest_1")
}

func TestAvailableExits_SharedLabel(t *testing.T) {
	r := cityGates(t)
	fs := flags.NewStore()

	assert.Equal(t, []string{"market"}, exitTargets(AvailableExits(r, fs)))

	fs.Set("market_fire", flags.True)
	assert.Equal(t, []string{"market_burning"}, exitTargets(AvailableExits(r, fs)))
}

func TestAvailableExits_AmbiguousFirstWins(t *testing.T) {
	r := &Room{ID: "crossroads", Exits: []Exit{
		{Name: "east", LeadsTo: "a"},
		{Name: "east", LeadsTo: "b"},
	}}
	assert.Equal(t, []string{"a"}, exitTargets(AvailableExits(r, flags.NewStore())))
}

func TestAvailableActions(t *testing.T) {
	r := cityGates(t)
	fs := flags.NewStore()

	actions := AvailableActions(r, fs)
	require.Len(t, actions, 2)
	assert.Equal(t, "talk_guard", actions[0].ID)
	assert.Equal(t, "Greet the stranger", actions[1].Description)

	fs.Set("met_elder", flags.True)
	fs.Set("chest_key", flags.True)
	actions = AvailableActions(r, fs)
	require.Len(t, actions, 3)
	assert.Equal(t, "Talk to the elder", actions[1].Description)
	assert.Equal(t, "open_chest", actions[2].ID)
}

func TestAvailableActions_UnrelatedGatesPreferFlagTrue(t *testing.T) {
	r := &Room{ID: "hall", Actions: []Action{
		{ID: "look"},
		{ID: "look"},
	}}
	r.Actions[0].FlagFalse = "lamp_lit"
	r.Actions[0].Description = "Peer into darkness"
	r.Actions[1].FlagTrue = "has_torch"
	r.Actions[1].Description = "Look by torchlight"

	fs := flags.NewStore()
	got := AvailableActions(r, fs)
	require.Len(t, got, 1)
	assert.Equal(t, "Peer into darkness", got[0].Description)

	fs.Set("has_torch", flags.True)
	got = AvailableActions(r, fs)
	require.Len(t, got, 1)
	assert.Equal(t, "Look by torchlight", got[0].Description)
}

func TestFindActionAndExit(t *testing.T) {
	r := cityGates(t)
	fs := flags.NewStore()

	_, err := FindAction(r, "open_chest", fs)
	assert.ErrorIs(t, err, ErrActionNotOffered)

	a, err := FindAction(r, "talk_guard", fs)
	require.NoError(t, err)
	assert.Equal(t, "talk_guard", a.DialogueName())

	_, err = FindExit(r, "north", fs)
	assert.ErrorIs(t, err, ErrExitNotOffered)
}

func TestRoom_Encounter(t *testing.T) {
	r := &Room{
		ID:                 "bandit_camp",
		Description:        "A bandit blocks the way.",
		ClearedDescription: "The camp is quiet.",
		Combat:             &actor.Encounter{EnemyName: "Bandit", Health: 20, Damage: 5},
	}
	fs := flags.NewStore()

	assert.True(t, r.HasLiveEncounter(fs))
	assert.Equal(t, "A bandit blocks the way.", r.CurrentDescription(fs))

	fs.Set(r.ClearedFlag(), flags.True)
	assert.Equal(t, "bandit_camp_cleared", r.ClearedFlag())
	assert.False(t, r.HasLiveEncounter(fs))
	assert.Equal(t, "The camp is quiet.", r.CurrentDescription(fs))
}

type mapLoader map[string]*Room

func (m mapLoader) LoadRoom(_ context.Context, id string) (*Room, error) {
	if r, ok := m[id]; ok {
		return r, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrRoomNotFound, id)
}

func TestGraph_Traverse(t *testing.T) {
	g := NewGraph(mapLoader{"forest_1": {ID: "forest_1"}}, nil)

	r, err := g.Traverse(context.Background(), Exit{Name: "north", LeadsTo: "forest_1"})
	require.NoError(t, err)
	assert.Equal(t, "forest_1", r.ID)

	_, err = g.Traverse(context.Background(), Exit{Name: "west", LeadsTo: "nowhere"})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

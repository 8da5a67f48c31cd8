package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/content"
)

func newValidator(dir string) *ContentValidator {
	return &ContentValidator{loader: content.NewFileLoader(dir, logger.Discard()).Strict()}
}

func write(t *testing.T, dir, name, body string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestValidate_SampleData(t *testing.T) {
	err := newValidator(filepath.Join("..", "..", "data")).Validate(context.Background())
	assert.NoError(t, err)
}

func TestValidate_BrokenReferences(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "world.json", `{"name": "W", "start_room": "start", "player": {"id": "p"}, "quests": ["missing_quest"]}`)
	write(t, dir, "rooms/start.json", `{
  "room_id": "start",
  "description": "Start.",
  "exits": [{"exit_name": "north", "leads_to": "nowhere", "conditions": ["has key"]}]
}`)
	write(t, dir, "rooms/BadName.json", `{"room_id": "BadName", "description": "x"}`)

	err := newValidator(dir).Validate(context.Background())
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "world quest 'missing_quest' does not exist")
	assert.Contains(t, msg, "room start exit north 'nowhere' does not exist")
	assert.Contains(t, msg, "invalid flag name 'has key'")
	assert.Contains(t, msg, "room ID 'BadName' should be lowercase snake_case")
}

func TestValidate_MissingNextStep(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "world.json", `{"name": "W", "start_room": "dock", "player": {"id": "p"}}`)
	write(t, dir, "rooms/dock.json", `{
  "room_id": "dock",
  "description": "A dock.",
  "actions": [{"action_id": "talk_ferryman", "action_description": "Talk", "dialogue": "ferryman"}],
  "dialogues": [{"npc_name": "ferryman", "dialogues": [{"message": "Crossing?", "responses": [{"text": "bye"}]}]}]
}`)

	err := newValidator(dir).Validate(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing next_step")
}

func TestValidate_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "world.json", `{"name": "W", "start_room": "start", "player": {"id": "p"}, "weather": "rain"}`)
	err := newValidator(dir).Validate(context.Background())
	assert.Error(t, err)
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"city_gates", true},
		{"a", true},
		{"forest_1", true},
		{"City_Gates", false},
		{"trailing_", false},
		{"with-dash", false},
		{"1st_room", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.valid, isValidID(tt.id), tt.id)
	}
}

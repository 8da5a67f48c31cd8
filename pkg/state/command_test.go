package state

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input    string
		expected Command
		wantErr  bool
	}{
		{"look", Command{Type: CmdLook}, false},
		{"  L  ", Command{Type: CmdLook}, false},
		{"go north", Command{Type: CmdExit, Arg: "north"}, false},
		{"3", Command{Type: CmdRespond, Arg: "3"}, false},
		{"say 2", Command{Type: CmdRespond, Arg: "2"}, false},
		{"use Healing Potion", Command{Type: CmdUse, Arg: "Healing Potion"}, false},
		{"turn in Bandit Trouble", Command{Type: CmdTurnIn, Arg: "Bandit Trouble"}, false},
		{"attack", Command{Type: CmdAttack}, false},
		{"dance wildly", Command{}, true},
		{"", Command{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			cmd, err := ParseCommand(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnknownCommand)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, cmd)
		})
	}
}

func TestToSnakeCase(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Healing Potion", "healing_potion"},
		{"north-gate", "north_gate"},
		{"already_snake", "already_snake"},
		{"Double  Space", "double_space"},
	}
	for _, tt := range tests {
		if got := toSnakeCase(tt.input); got != tt.expected {
			t.Errorf("toSnakeCase(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMatch(t *testing.T) {
	names := map[string]string{"potion": "Healing Potion", "Soul Stone": "Soul Stone"}
	name := func(id string) string { return names[id] }
	ids := []string{"potion", "Soul Stone"}

	assert.Equal(t, "potion", match("potion", ids, name))
	assert.Equal(t, "potion", match("healing potion", ids, name))
	assert.Equal(t, "Soul Stone", match("soul stone", ids, name))
	assert.Equal(t, "rope", match("rope", ids, name))
}

package state

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jwebster45206/quest-engine/pkg/room"
)

var ErrUnknownCommand = errors.New("unknown command")

type CommandType string

const (
	CmdLook    CommandType = "look"
	CmdAction  CommandType = "do"
	CmdRespond CommandType = "say"
	CmdExit    CommandType = "go"
	CmdTake    CommandType = "take"
	CmdAttack  CommandType = "attack"
	CmdUse     CommandType = "use"
	CmdFlee    CommandType = "flee"
	CmdEquip   CommandType = "equip"
	CmdAccept  CommandType = "accept"
	CmdTurnIn  CommandType = "turn_in"
	CmdAbandon CommandType = "abandon"
	CmdNone    CommandType = "" // No command
)

// Command is a parsed player command.
type Command struct {
	Type CommandType `json:"type"`
	Arg  string      `json:"arg,omitempty"`
}

var aliases = map[string]CommandType{
	"look":    CmdLook,
	"l":       CmdLook,
	"do":      CmdAction,
	"talk":    CmdAction,
	"say":     CmdRespond,
	"choose":  CmdRespond,
	"go":      CmdExit,
	"move":    CmdExit,
	"m":       CmdExit,
	"take":    CmdTake,
	"get":     CmdTake,
	"g":       CmdTake,
	"attack":  CmdAttack,
	"a":       CmdAttack,
	"use":     CmdUse,
	"flee":    CmdFlee,
	"run":     CmdFlee,
	"equip":   CmdEquip,
	"wield":   CmdEquip,
	"accept":  CmdAccept,
	"turn_in": CmdTurnIn,
	"turnin":  CmdTurnIn,
	"abandon": CmdAbandon,
}

// ParseCommand parses player input such as "go north", "say 2" or
// "use Healing Potion". A bare number answers the open conversation.
func ParseCommand(input string) (Command, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return Command{}, ErrUnknownCommand
	}
	if _, err := strconv.Atoi(trimmed); err == nil {
		return Command{Type: CmdRespond, Arg: trimmed}, nil
	}

	verb, rest, _ := strings.Cut(trimmed, " ")
	verb = strings.ToLower(verb)
	rest = strings.TrimSpace(rest)
	if verb == "turn" && strings.HasPrefix(strings.ToLower(rest), "in ") {
		verb, rest = "turn_in", strings.TrimSpace(rest[3:])
	}
	cmd, ok := aliases[verb]
	if !ok {
		return Command{}, fmt.Errorf("%w: %s", ErrUnknownCommand, verb)
	}
	return Command{Type: cmd, Arg: rest}, nil
}

// match resolves a typed argument to one of the candidate ids, comparing
// ids and display names in snake_case. Unmatched input is returned as is.
func match(arg string, candidates []string, name func(string) string) string {
	want := toSnakeCase(arg)
	for _, c := range candidates {
		if c == arg {
			return c
		}
	}
	for _, c := range candidates {
		if toSnakeCase(c) == want || (name != nil && toSnakeCase(name(c)) == want) {
			return c
		}
	}
	return arg
}

func (s *Session) heldItems() []string {
	var ids []string
	for _, e := range s.inv.Entries() {
		ids = append(ids, e.Item.ID)
	}
	return ids
}

func (s *Session) itemName(id string) string {
	return s.inv.Catalog().Lookup(id).DisplayName()
}

func (s *Session) questIDs() []string {
	var ids []string
	for _, q := range s.quests.Quests() {
		ids = append(ids, q.ID)
	}
	return ids
}

func (s *Session) questTitle(id string) string {
	if q, ok := s.quests.Get(id); ok {
		return q.Title
	}
	return id
}

// Apply runs a command against the session.
func (s *Session) Apply(ctx context.Context, cmd Command) error {
	switch cmd.Type {
	case CmdLook:
		s.begin()
		if s.room != nil {
			s.say("%s", s.room.CurrentDescription(s.flags))
		}
		return nil
	case CmdAction:
		var ids []string
		if s.room != nil {
			for _, a := range room.AvailableActions(s.room, s.flags) {
				ids = append(ids, a.ID)
			}
		}
		return s.ChooseAction(ctx, match(cmd.Arg, ids, nil))
	case CmdRespond:
		n, err := strconv.Atoi(cmd.Arg)
		if err != nil {
			return fmt.Errorf("response must be a number: %q", cmd.Arg)
		}
		// responses are numbered from 1 for players
		return s.ChooseResponse(ctx, n-1)
	case CmdExit:
		var names []string
		if s.room != nil {
			for _, e := range room.AvailableExits(s.room, s.flags) {
				names = append(names, e.Name)
			}
		}
		return s.TakeExit(ctx, match(cmd.Arg, names, nil))
	case CmdTake:
		return s.TakeItem(ctx, match(cmd.Arg, s.RoomItems(), s.itemName))
	case CmdAttack:
		return s.Attack(ctx)
	case CmdUse:
		return s.UseItem(ctx, match(cmd.Arg, s.heldItems(), s.itemName))
	case CmdFlee:
		return s.Flee(ctx)
	case CmdEquip:
		return s.Equip(ctx, match(cmd.Arg, s.heldItems(), s.itemName))
	case CmdAccept:
		return s.AcceptQuest(ctx, match(cmd.Arg, s.questIDs(), s.questTitle))
	case CmdTurnIn:
		return s.TurnInQuest(ctx, match(cmd.Arg, s.questIDs(), s.questTitle))
	case CmdAbandon:
		return s.FailQuest(ctx, match(cmd.Arg, s.questIDs(), s.questTitle))
	}
	return fmt.Errorf("%w: %s", ErrUnknownCommand, cmd.Type)
}

// toSnakeCase converts a string to lower snake_case
func toSnakeCase(s string) string {
	var out strings.Builder
	prevUnderscore := false
	for i, r := range s {
		if r >= 'A' && r <= 'Z' {
			r = r + ('a' - 'A')
		}
		if r == ' ' || r == '-' || r == '.' || r == '_' {
			if !prevUnderscore && i > 0 {
				out.WriteRune('_')
				prevUnderscore = true
			}
			continue
		}
		out.WriteRune(r)
		prevUnderscore = false
	}
	return out.String()
}

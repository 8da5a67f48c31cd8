package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/conditionals"
)

var (
	ErrRoomNotFound     = errors.New("room not found")
	ErrActionNotOffered = errors.New("action not available")
	ErrExitNotOffered   = errors.New("exit not available")
)

// Loader resolves room records by id. Implementations return an error
// wrapping ErrRoomNotFound when the id has no record.
type Loader interface {
	LoadRoom(ctx context.Context, id string) (*Room, error)
}

// AvailableActions returns the actions offered under the current flags, in
// declaration order. When several variants share an action_id only the most
// specific satisfied variant is kept.
func AvailableActions(r *Room, v conditionals.FlagView) []Action {
	groups := make(map[string][]Action)
	var order []string
	for _, a := range r.Actions {
		if _, seen := groups[a.ID]; !seen {
			order = append(order, a.ID)
		}
		groups[a.ID] = append(groups[a.ID], a)
	}

	var out []Action
	for _, id := range order {
		variants := groups[id]
		best := conditionals.MostSpecific(variants, func(a Action) conditionals.Gate { return a.Gate }, v)
		if best >= 0 {
			out = append(out, variants[best])
		}
	}
	return out
}

// AvailableExits returns the traversable exits. Exits sharing an exit_name
// resolve to the first satisfiable one in declaration order.
func AvailableExits(r *Room, v conditionals.FlagView) []Exit {
	seen := make(map[string]bool)
	var out []Exit
	for _, e := range r.Exits {
		if seen[e.Name] || !e.Satisfied(v) {
			continue
		}
		seen[e.Name] = true
		out = append(out, e)
	}
	return out
}

// FindAction returns the offered action with the given id.
func FindAction(r *Room, id string, v conditionals.FlagView) (Action, error) {
	for _, a := range AvailableActions(r, v) {
		if a.ID == id {
			return a, nil
		}
	}
	return Action{}, fmt.Errorf("%w: %s", ErrActionNotOffered, id)
}

// FindExit returns the offered exit with the given name.
func FindExit(r *Room, name string, v conditionals.FlagView) (Exit, error) {
	for _, e := range AvailableExits(r, v) {
		if e.Name == name {
			return e, nil
		}
	}
	return Exit{}, fmt.Errorf("%w: %s", ErrExitNotOffered, name)
}

// Graph navigates between rooms using a content loader.
type Graph struct {
	loader Loader
	logger *slog.Logger
}

// NewGraph creates a room graph over a loader.
func NewGraph(loader Loader, logger *slog.Logger) *Graph {
	if logger == nil {
		logger = slog.Default()
	}
	return &Graph{loader: loader, logger: logger}
}

// Load fetches a room by id.
func (g *Graph) Load(ctx context.Context, id string) (*Room, error) {
	r, err := g.loader.LoadRoom(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRoomNotFound) {
			g.logger.Warn("Room not found", "room_id", id)
			return nil, err
		}
		return nil, fmt.Errorf("failed to load room %s: %w", id, err)
	}
	return r, nil
}

// Traverse loads the destination of an exit.
func (g *Graph) Traverse(ctx context.Context, e Exit) (*Room, error) {
	r, err := g.Load(ctx, e.LeadsTo)
	if err != nil {
		return nil, err
	}
	g.logger.Debug("Exit traversed", "exit", e.Name, "to", r.ID)
	return r, nil
}

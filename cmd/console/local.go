package main

import (
	"context"
	"errors"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/state"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

var errNotStarted = errors.New("game not started")

// Game is what the console plays against: a game on the API or one run
// in process from a data directory.
type Game interface {
	World(ctx context.Context) (WorldSummary, error)
	Start(ctx context.Context) (state.View, error)
	Send(ctx context.Context, line string) (state.View, error)
	Map(ctx context.Context, mapID string) (worldmap.Snapshot, error)
}

// localGame runs a session in process. Nothing is saved.
type localGame struct {
	loader  *content.FileLoader
	world   *content.World
	catalog inventory.Catalog
	logger  *slog.Logger
	session *state.Session
}

var _ Game = (*localGame)(nil)

func newLocalGame(ctx context.Context, dataDir string, logger *slog.Logger) (*localGame, error) {
	loader := content.NewFileLoader(dataDir, logger)
	world, err := loader.LoadWorld(ctx)
	if err != nil {
		return nil, err
	}
	catalog, err := loader.LoadItems(ctx)
	if err != nil {
		return nil, err
	}
	return &localGame{loader: loader, world: world, catalog: catalog, logger: logger}, nil
}

func (g *localGame) World(ctx context.Context) (WorldSummary, error) {
	return WorldSummary{Name: g.world.Name, Description: g.world.Description}, nil
}

func (g *localGame) Start(ctx context.Context) (state.View, error) {
	s, err := state.NewSession(ctx, g.world, g.catalog, g.loader, g.logger)
	if err != nil {
		return state.View{}, err
	}
	if err := s.Start(ctx); err != nil {
		return state.View{}, err
	}
	g.session = s
	return s.View(), nil
}

func (g *localGame) Send(ctx context.Context, line string) (state.View, error) {
	if g.session == nil {
		return state.View{}, errNotStarted
	}
	cmd, err := state.ParseCommand(line)
	if err != nil {
		return state.View{}, err
	}
	if err := g.session.Apply(ctx, cmd); err != nil {
		return state.View{}, err
	}
	return g.session.View(), nil
}

func (g *localGame) Map(ctx context.Context, mapID string) (worldmap.Snapshot, error) {
	if g.session == nil {
		return worldmap.Snapshot{}, errNotStarted
	}
	return g.session.MapView(ctx, mapID)
}

package main

import (
	"context"
	"fmt"
	"os"
	"regexp"
	"slices"
	"strings"

	"github.com/jwebster45206/quest-engine/internal/logger"
	"github.com/jwebster45206/quest-engine/pkg/conditionals"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/room"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <data_dir>\n", os.Args[0])
		os.Exit(1)
	}

	dataDir := os.Args[1]
	validator := &ContentValidator{loader: content.NewFileLoader(dataDir, logger.Discard()).Strict()}

	fmt.Printf("Validating %s...\n", dataDir)
	if err := validator.Validate(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Content is valid!")
}

// ContentValidator checks a data directory: every record decodes strictly,
// ids are snake_case, flag names are well formed and cross references
// point at records that exist.
type ContentValidator struct {
	loader *content.FileLoader
	errors []string
}

func (v *ContentValidator) Validate(ctx context.Context) error {
	v.errors = nil

	world, err := v.loader.LoadWorld(ctx)
	if err != nil {
		return fmt.Errorf("world: %w", err)
	}
	catalog, err := v.loader.LoadItems(ctx)
	if err != nil {
		return fmt.Errorf("items: %w", err)
	}

	roomIDs := v.list(content.RoomsDir)
	questIDs := v.list(content.QuestsDir)
	mapIDs := v.list(content.MapsDir)

	v.requireRef("world start_room", world.StartRoom, roomIDs)
	v.requireRef("world respawn_room", world.Respawn(), roomIDs)
	for _, id := range world.Quests {
		v.requireRef("world quest", id, questIDs)
	}
	for _, id := range world.Maps {
		v.requireRef("world map", id, mapIDs)
	}
	for _, ch := range world.Chapters {
		if ch.UnlockFlag != "" {
			v.validateFlag("chapter "+ch.ID+" unlock_flag", ch.UnlockFlag)
		}
	}
	for _, id := range world.Player.Inventory {
		v.requireItem("player inventory", id, catalog)
	}
	if world.Player.Equipped != "" {
		v.requireItem("player equipped", world.Player.Equipped, catalog)
	}

	for _, id := range roomIDs {
		v.validateIDFormat("room ID", id)
		r, err := v.loader.LoadRoom(ctx, id)
		if err != nil {
			v.addError(fmt.Sprintf("room %s: %v", id, err))
			continue
		}
		v.validateRoom(r, roomIDs, catalog)
	}

	for _, id := range questIDs {
		v.validateIDFormat("quest ID", id)
		q, err := v.loader.LoadQuest(ctx, id)
		if err != nil {
			v.addError(fmt.Sprintf("quest %s: %v", id, err))
			continue
		}
		for _, pre := range q.PrerequisiteQuests {
			v.requireRef("quest "+id+" prerequisite", pre, questIDs)
		}
		for _, f := range q.PrerequisiteFlags {
			v.validateFlag("quest "+id+" prerequisite flag", f)
		}
		for _, f := range q.Reward.Flags {
			v.validateFlag("quest "+id+" reward flag", f)
		}
		for _, it := range q.Reward.Items {
			v.requireItem("quest "+id+" reward", it, catalog)
		}
	}

	for _, id := range mapIDs {
		v.validateIDFormat("map ID", id)
		m, err := v.loader.LoadMap(ctx, id)
		if err != nil {
			v.addError(fmt.Sprintf("map %s: %v", id, err))
			continue
		}
		pins := make(map[string]bool)
		for _, p := range m.Pins {
			pins[p.LocationID] = true
			if p.RevealFlag != "" {
				v.validateFlag("map "+id+" pin "+p.LocationID+" revealFlag", p.RevealFlag)
			}
			for _, q := range p.RevealQuests {
				v.requireRef("map "+id+" pin "+p.LocationID+" revealQuests", q, questIDs)
			}
		}
		for _, p := range m.Paths {
			if !pins[p.FromLocationID] || !pins[p.ToLocationID] {
				v.addError(fmt.Sprintf("map %s path %s joins a location with no pin", id, p.PathID))
			}
		}
	}

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors:\n%s", strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *ContentValidator) list(dir string) []string {
	ids, err := v.loader.List(dir)
	if err != nil {
		v.addError(fmt.Sprintf("listing %s: %v", dir, err))
	}
	return ids
}

func (v *ContentValidator) validateRoom(r *room.Room, roomIDs []string, catalog inventory.Catalog) {
	where := "room " + r.ID
	for _, it := range r.Items {
		v.requireItem(where+" item", it, catalog)
	}
	for _, a := range r.Actions {
		v.validateGate(where+" action "+a.ID, a.Gate)
	}
	for _, d := range r.Dialogues {
		v.validateGate(where+" dialogue "+d.NPC, d.Gate)
		for _, step := range d.Steps {
			for _, resp := range step.Responses {
				for _, f := range []string{resp.SetFlagTrue, resp.SetFlagFalse, resp.SetFlagConcluded} {
					if f != "" {
						v.validateFlag(where+" dialogue "+d.NPC+" response", f)
					}
				}
			}
		}
	}
	for _, e := range r.Exits {
		v.requireRef(where+" exit "+e.Name, e.LeadsTo, roomIDs)
		for _, f := range slices.Concat(e.Conditions, e.ConditionsNot) {
			v.validateFlag(where+" exit "+e.Name+" condition", f)
		}
	}
}

func (v *ContentValidator) validateGate(where string, g conditionals.Gate) {
	if g.FlagTrue != "" {
		v.validateFlag(where+" flag_true", g.FlagTrue)
	}
	if g.FlagFalse != "" {
		v.validateFlag(where+" flag_false", g.FlagFalse)
	}
}

func (v *ContentValidator) validateFlag(where, name string) {
	if !flags.ValidName(name) {
		v.addError(fmt.Sprintf("%s has invalid flag name '%s'", where, name))
	}
}

func (v *ContentValidator) requireRef(where, id string, known []string) {
	if id == "" {
		return
	}
	if !slices.Contains(known, id) {
		v.addError(fmt.Sprintf("%s '%s' does not exist", where, id))
	}
}

// items outside the catalog still work as plain items, so only ids with
// odd formatting are reported
func (v *ContentValidator) requireItem(where, id string, catalog inventory.Catalog) {
	if _, ok := catalog[id]; ok {
		return
	}
	v.validateIDFormat(where, id)
}

func (v *ContentValidator) validateIDFormat(fieldName, id string) {
	if id == "" {
		return
	}

	if !isValidID(id) {
		v.addError(fmt.Sprintf("%s '%s' should be lowercase snake_case", fieldName, id))
	}
}

func (v *ContentValidator) addError(msg string) {
	v.errors = append(v.errors, "  - "+msg)
}

var validIDRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidID(id string) bool {
	return validIDRegex.MatchString(id)
}

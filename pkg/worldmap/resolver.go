package worldmap

import (
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/conditionals"
	"github.com/jwebster45206/quest-engine/pkg/flags"
)

// RevealedPrefix prefixes the flag written when a location is revealed
// directly, e.g. by a quest.
const RevealedPrefix = "revealed_"

// ChapterGate reports whether a location belongs to an unlocked chapter.
// Locations outside unlocked chapters are never visible.
type ChapterGate interface {
	IsLocationInUnlockedChapter(locationID string) bool
}

// Resolver evaluates location visibility against the flag store.
type Resolver struct {
	flags    *flags.Store
	chapters ChapterGate
	logger   *slog.Logger
}

// NewResolver creates a resolver. chapters may be nil when the content has
// no chapter gating.
func NewResolver(store *flags.Store, chapters ChapterGate, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{flags: store, chapters: chapters, logger: logger}
}

// RevealedFlag returns the flag that records a direct reveal of a location.
func RevealedFlag(locationID string) string {
	return RevealedPrefix + locationID
}

// Reveal marks a location visible by writing its revealed flag.
func (r *Resolver) Reveal(locationID string) {
	if locationID == "" {
		return
	}
	r.flags.Set(RevealedFlag(locationID), flags.True)
	r.logger.Debug("Location revealed", "location_id", locationID)
}

// IsVisible evaluates one rule for a location.
func (r *Resolver) IsVisible(locationID string, rule Visibility) bool {
	if r.chapters != nil && !r.chapters.IsLocationInUnlockedChapter(locationID) {
		return false
	}
	if rule.AlwaysVisible {
		return true
	}
	if rule.RevealFlag != "" && conditionals.IsTrue(r.flags, rule.RevealFlag) {
		return true
	}
	if conditionals.IsTrue(r.flags, RevealedFlag(locationID)) {
		return true
	}
	for _, q := range rule.RevealQuests {
		if flags.ValidName(q) && r.flags.IsRevealing(q) {
			return true
		}
	}
	return false
}

// IsPinVisible reports whether a pin is visible.
func (r *Resolver) IsPinVisible(p Pin) bool {
	return r.IsVisible(p.LocationID, p.Visibility)
}

// Snapshot is the visible subset of a map.
type Snapshot struct {
	MapID     string   `json:"map_id"`
	Locations []string `json:"visible_locations"`
	Pins      []Pin    `json:"pins"`
	Paths     []Path   `json:"paths"`
}

// Resolve computes the visible pins and paths of a map. It only reads
// flags, so repeated calls with unchanged flags return equal snapshots.
func (r *Resolver) Resolve(m *Map) Snapshot {
	visible := make(map[string]bool)
	snap := Snapshot{MapID: m.MapID, Pins: []Pin{}, Paths: []Path{}}

	for loc, rules := range m.Rules() {
		for _, rule := range rules {
			if r.IsVisible(loc, rule) {
				visible[loc] = true
				break
			}
		}
	}

	seen := make(map[string]bool)
	for _, p := range m.Pins {
		if !visible[p.LocationID] {
			continue
		}
		snap.Pins = append(snap.Pins, p)
		if !seen[p.LocationID] {
			seen[p.LocationID] = true
			snap.Locations = append(snap.Locations, p.LocationID)
		}
	}
	for _, p := range m.Paths {
		if IsPathVisible(p, visible[p.FromLocationID], visible[p.ToLocationID]) {
			snap.Paths = append(snap.Paths, p)
		}
	}
	return snap
}

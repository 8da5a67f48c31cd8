package worldmap

import "github.com/jwebster45206/quest-engine/pkg/conditionals"

// Chapter groups locations behind an unlock flag. A chapter with no unlock
// flag is always unlocked.
type Chapter struct {
	ID         string   `json:"id" yaml:"id"`
	UnlockFlag string   `json:"unlock_flag,omitempty" yaml:"unlock_flag,omitempty"`
	Locations  []string `json:"locations" yaml:"locations"`
}

// FlagChapters gates locations by chapter unlock flags.
type FlagChapters struct {
	byLocation map[string][]Chapter
	flags      conditionals.FlagView
}

// NewFlagChapters builds a chapter gate over the flag store.
func NewFlagChapters(chapters []Chapter, v conditionals.FlagView) *FlagChapters {
	idx := make(map[string][]Chapter)
	for _, ch := range chapters {
		for _, loc := range ch.Locations {
			idx[loc] = append(idx[loc], ch)
		}
	}
	return &FlagChapters{byLocation: idx, flags: v}
}

// IsLocationInUnlockedChapter reports whether any chapter containing the
// location is unlocked. Locations in no chapter are always unlocked.
func (c *FlagChapters) IsLocationInUnlockedChapter(locationID string) bool {
	chapters, ok := c.byLocation[locationID]
	if !ok {
		return true
	}
	for _, ch := range chapters {
		if ch.UnlockFlag == "" || conditionals.IsTrue(c.flags, ch.UnlockFlag) {
			return true
		}
	}
	return false
}

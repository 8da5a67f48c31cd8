package state

import (
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
)

// EffectWorker applies side effects from dialogue responses, combat and
// quest rewards to the shared structures, and turns each one into a quest
// progress event.
type EffectWorker struct {
	flags  *flags.Store
	inv    *inventory.Inventory
	quests *quest.Engine
	logger *slog.Logger
	notes  []string
}

// NewEffectWorker creates a worker over the session's shared structures.
func NewEffectWorker(store *flags.Store, inv *inventory.Inventory, quests *quest.Engine, logger *slog.Logger) *EffectWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &EffectWorker{flags: store, inv: inv, quests: quests, logger: logger}
}

// SetFlag writes a flag. Setting a flag "true" is a SetFlag event.
func (w *EffectWorker) SetFlag(name, value string) {
	if !flags.ValidName(name) {
		w.logger.Warn("Ignoring invalid flag name", "flag", name)
		return
	}
	w.flags.Set(name, value)
	if value == flags.True {
		w.Report(quest.SetFlag, name, 1)
	}
}

// GrantItem adds an item to the inventory.
func (w *EffectWorker) GrantItem(id string) {
	w.inv.Grant(id)
	w.note("You received: " + w.inv.Catalog().Lookup(id).DisplayName())
	w.Report(quest.CollectItem, id, 1)
}

// DeliverItem hands an item over to an NPC.
func (w *EffectWorker) DeliverItem(id string) {
	if err := w.inv.Remove(id); err != nil {
		w.logger.Warn("Failed to deliver item", "item", id, "error", err)
		return
	}
	w.note("You handed over: " + w.inv.Catalog().Lookup(id).DisplayName())
	w.Report(quest.DeliverItem, id, 1)
}

// HasItem reports whether the player holds an item.
func (w *EffectWorker) HasItem(id string) bool {
	return w.inv.Has(id)
}

// AddGold adds quest reward gold.
func (w *EffectWorker) AddGold(n int) {
	if n == 0 {
		return
	}
	w.inv.AddGold(n)
	w.notef("You received %d gold.", n)
}

// AddXP adds quest reward experience.
func (w *EffectWorker) AddXP(n int) {
	if n == 0 {
		return
	}
	w.inv.AddXP(n)
	w.notef("You gained %d experience.", n)
}

// Grant adds a quest reward item.
func (w *EffectWorker) Grant(id string) {
	w.GrantItem(id)
}

// Report credits a progress event to the active quests and advances every
// quest whose current objective is now complete.
func (w *EffectWorker) Report(t quest.ObjectiveType, target string, amount int) {
	if w.quests == nil {
		return
	}
	for _, id := range w.quests.ReportProgress(t, target, amount) {
		if _, err := w.quests.Advance(id); err != nil {
			w.logger.Error("Failed to advance quest", "quest_id", id, "error", err)
			continue
		}
		q, _ := w.quests.Get(id)
		if q.State == quest.ReadyToTurnIn {
			w.note("Quest ready to turn in: " + q.Title)
		}
	}
}

func (w *EffectWorker) note(msg string) {
	w.notes = append(w.notes, msg)
}

func (w *EffectWorker) notef(format string, args ...any) {
	w.note(fmt.Sprintf(format, args...))
}

// Drain returns and clears the narration produced since the last call.
func (w *EffectWorker) Drain() []string {
	out := w.notes
	w.notes = nil
	return out
}

package quest

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jwebster45206/quest-engine/pkg/conditionals"
	"github.com/jwebster45206/quest-engine/pkg/flags"
)

var (
	ErrQuestNotFound      = errors.New("quest not found")
	ErrPrerequisitesUnmet = errors.New("quest prerequisites not met")
	ErrWrongState         = errors.New("quest is not in the required state")
)

// Revealer makes map locations visible.
type Revealer interface {
	Reveal(locationID string)
}

// Rewards receives turn-in rewards.
type Rewards interface {
	AddGold(n int)
	AddXP(n int)
	Grant(id string)
}

// Engine tracks quests and mirrors each quest's state into the flag named
// by the quest id, so reveal rules can read it.
type Engine struct {
	flags         *flags.Store
	revealer      Revealer
	logger        *slog.Logger
	quests        map[string]*Quest
	order         []string
	enhancedStats bool
}

// NewEngine creates a quest engine writing to store.
func NewEngine(store *flags.Store, revealer Revealer, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		flags:    store,
		revealer: revealer,
		logger:   logger,
		quests:   make(map[string]*Quest),
	}
}

// WithEnhancedStats enables experience point rewards.
// Returns the Engine for method chaining
func (e *Engine) WithEnhancedStats(enabled bool) *Engine {
	e.enhancedStats = enabled
	return e
}

// Register adds a quest record. Saved progress on the record is kept.
func (e *Engine) Register(q *Quest) error {
	if err := q.Validate(); err != nil {
		return err
	}
	if q.State == "" {
		q.State = NotStarted
	}
	if _, exists := e.quests[q.ID]; !exists {
		e.order = append(e.order, q.ID)
	}
	e.quests[q.ID] = q
	return nil
}

// Get returns a registered quest.
func (e *Engine) Get(id string) (*Quest, bool) {
	q, ok := e.quests[id]
	return q, ok
}

// Quests returns every registered quest in registration order.
func (e *Engine) Quests() []*Quest {
	out := make([]*Quest, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.quests[id])
	}
	return out
}

func (e *Engine) lookup(id string) (*Quest, error) {
	q, ok := e.quests[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrQuestNotFound, id)
	}
	return q, nil
}

// CanAccept reports whether a not-yet-started quest has all prerequisite
// quests completed and all prerequisite flags true.
func (e *Engine) CanAccept(id string) bool {
	q, ok := e.quests[id]
	if !ok || q.State != NotStarted {
		return false
	}
	for _, pre := range q.PrerequisiteQuests {
		p, ok := e.quests[pre]
		if !ok || p.State != Completed {
			return false
		}
	}
	for _, name := range q.PrerequisiteFlags {
		if !conditionals.IsTrue(e.flags, name) {
			return false
		}
	}
	return true
}

// Available returns the quests that can be accepted now.
func (e *Engine) Available() []*Quest {
	var out []*Quest
	for _, id := range e.order {
		if e.CanAccept(id) {
			out = append(out, e.quests[id])
		}
	}
	return out
}

// Accept starts a quest and reveals its accept locations.
func (e *Engine) Accept(id string) error {
	q, err := e.lookup(id)
	if err != nil {
		return err
	}
	if q.State != NotStarted {
		return fmt.Errorf("accept %s (%s): %w", id, q.State, ErrWrongState)
	}
	if !e.CanAccept(id) {
		return fmt.Errorf("accept %s: %w", id, ErrPrerequisitesUnmet)
	}

	q.State = Active
	q.CurrentObjective = 0
	e.flags.Set(q.ID, flags.Active)
	e.reveal(q.RevealsOnAccept)

	if next := q.nextBlocking(0); next >= 0 {
		q.CurrentObjective = next
	} else {
		q.State = ReadyToTurnIn
	}

	e.logger.Info("Quest accepted", "quest_id", id)
	return nil
}

// ReportProgress credits an event to every active quest. Only the current
// objective accrues, plus objectives marked parallel or optional; the first
// incomplete match in declaration order takes the event. Events
// matching nothing change nothing. Returns the ids of quests that changed.
func (e *Engine) ReportProgress(t ObjectiveType, targetID string, amount int) []string {
	var changed []string
	for _, id := range e.order {
		q := e.quests[id]
		if q.State != Active {
			continue
		}
		for i := range q.Objectives {
			o := &q.Objectives[i]
			eligible := i == q.CurrentObjective || o.Parallel || o.Optional
			if !eligible || o.Complete || !o.Matches(t, targetID) {
				continue
			}
			if !o.AddProgress(amount) {
				continue
			}
			e.logger.Debug("Objective progress",
				"quest_id", id,
				"objective", o.ID,
				"progress", o.Progress())
			changed = append(changed, id)
			break
		}
	}
	return changed
}

// Advance moves past a completed current objective. It returns true if a
// new objective became current; when the last blocking objective is done
// the quest becomes ReadyToTurnIn and Advance returns false.
func (e *Engine) Advance(id string) (bool, error) {
	q, err := e.lookup(id)
	if err != nil {
		return false, err
	}
	if q.State != Active {
		return false, fmt.Errorf("advance %s (%s): %w", id, q.State, ErrWrongState)
	}
	cur := q.Current()
	if cur == nil || !cur.Complete {
		return false, nil
	}
	if next := q.nextBlocking(q.CurrentObjective + 1); next >= 0 {
		q.CurrentObjective = next
		return true, nil
	}
	q.State = ReadyToTurnIn
	e.logger.Info("Quest ready to turn in", "quest_id", id)
	return false, nil
}

// TurnIn grants the reward of a ReadyToTurnIn quest and completes it.
func (e *Engine) TurnIn(id string, rewards Rewards) error {
	q, err := e.lookup(id)
	if err != nil {
		return err
	}
	if q.State != ReadyToTurnIn {
		return fmt.Errorf("turn in %s (%s): %w", id, q.State, ErrWrongState)
	}

	rewards.AddGold(q.Reward.Gold)
	if e.enhancedStats {
		rewards.AddXP(q.Reward.ExperiencePoints)
	}
	for _, item := range q.Reward.Items {
		rewards.Grant(item)
	}
	for _, name := range q.Reward.Flags {
		e.flags.Set(name, flags.True)
	}
	e.reveal(q.RevealsOnComplete)

	q.State = Completed
	e.flags.Set(q.ID, flags.Concluded)
	e.logger.Info("Quest completed", "quest_id", id, "gold", q.Reward.Gold)
	return nil
}

// Fail marks a quest Failed. Failed is terminal.
func (e *Engine) Fail(id string) error {
	q, err := e.lookup(id)
	if err != nil {
		return err
	}
	if q.State == Completed || q.State == Failed {
		return fmt.Errorf("fail %s (%s): %w", id, q.State, ErrWrongState)
	}
	q.State = Failed
	e.flags.Set(q.ID, flags.False)
	e.logger.Info("Quest failed", "quest_id", id)
	return nil
}

func (e *Engine) reveal(locations []string) {
	if e.revealer == nil {
		return
	}
	for _, loc := range locations {
		e.revealer.Reveal(loc)
	}
}

// ObjectiveView is an objective as shown to the player.
type ObjectiveView struct {
	ID          string `json:"id"`
	Description string `json:"description"`
	Progress    string `json:"progress"`
	Complete    bool   `json:"complete"`
	Current     bool   `json:"current"`
	Optional    bool   `json:"optional,omitempty"`
}

// View is a quest as shown to the player.
type View struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description,omitempty"`
	Giver       string          `json:"giver,omitempty"`
	State       State           `json:"state"`
	Objectives  []ObjectiveView `json:"objectives"`
}

// Views returns every started quest with per-objective progress strings.
func (e *Engine) Views() []View {
	var out []View
	for _, id := range e.order {
		q := e.quests[id]
		if q.State == NotStarted {
			continue
		}
		v := View{ID: q.ID, Title: q.Title, Description: q.Description, Giver: q.Giver, State: q.State}
		for i, o := range q.Objectives {
			v.Objectives = append(v.Objectives, ObjectiveView{
				ID:          o.ID,
				Description: o.Description,
				Progress:    o.Progress(),
				Complete:    o.Complete,
				Current:     q.State == Active && i == q.CurrentObjective,
				Optional:    o.Optional,
			})
		}
		out = append(out, v)
	}
	return out
}

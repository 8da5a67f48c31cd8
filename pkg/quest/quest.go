package quest

import "fmt"

// State is a quest's lifecycle position.
type State string

const (
	NotStarted    State = "not_started"
	Active        State = "active"
	ReadyToTurnIn State = "ready_to_turn_in"
	Completed     State = "completed"
	Failed        State = "failed"
)

// ObjectiveType is what kind of event advances an objective.
type ObjectiveType string

const (
	GoToRoom    ObjectiveType = "go_to_room"
	TalkToNPC   ObjectiveType = "talk_to_npc"
	CollectItem ObjectiveType = "collect_item"
	DeliverItem ObjectiveType = "deliver_item"
	DefeatEnemy ObjectiveType = "defeat_enemy"
	DefeatCount ObjectiveType = "defeat_count"
	SetFlag     ObjectiveType = "set_flag"
	UseItem     ObjectiveType = "use_item"
	Custom      ObjectiveType = "custom"
)

// Valid reports whether t is a known objective type.
func (t ObjectiveType) Valid() bool {
	switch t {
	case GoToRoom, TalkToNPC, CollectItem, DeliverItem, DefeatEnemy, DefeatCount, SetFlag, UseItem, Custom:
		return true
	}
	return false
}

// Objective is one measurable step within a quest.
type Objective struct {
	ID           string        `json:"id" yaml:"id"`
	Description  string        `json:"description" yaml:"description"`
	Type         ObjectiveType `json:"type" yaml:"type"`
	TargetID     string        `json:"target_id" yaml:"target_id"`
	TargetCount  int           `json:"target_count,omitempty" yaml:"target_count,omitempty"`
	CurrentCount int           `json:"current_count,omitempty" yaml:"current_count,omitempty"`
	Complete     bool          `json:"complete,omitempty" yaml:"complete,omitempty"`
	Optional     bool          `json:"optional,omitempty" yaml:"optional,omitempty"` // Never blocks turn-in
	Parallel     bool          `json:"parallel,omitempty" yaml:"parallel,omitempty"` // Accrues progress out of turn
}

// Target returns the count needed, at least 1.
func (o *Objective) Target() int {
	return max(o.TargetCount, 1)
}

// AddProgress adds amount, capped at the target. Returns true if the count
// changed. Calls after completion are no-ops.
func (o *Objective) AddProgress(amount int) bool {
	if amount <= 0 || o.Complete {
		return false
	}
	o.CurrentCount = min(o.CurrentCount+amount, o.Target())
	o.Complete = o.CurrentCount >= o.Target()
	return true
}

// Matches reports whether an event is for this objective.
func (o *Objective) Matches(t ObjectiveType, targetID string) bool {
	return o.Type == t && o.TargetID == targetID
}

// Progress renders "(count/target)" or "(Complete)".
func (o *Objective) Progress() string {
	if o.Complete {
		return "(Complete)"
	}
	return fmt.Sprintf("(%d/%d)", o.CurrentCount, o.Target())
}

// Reward is granted on turn-in.
type Reward struct {
	Gold             int      `json:"gold,omitempty" yaml:"gold,omitempty"`
	ExperiencePoints int      `json:"experience_points,omitempty" yaml:"experience_points,omitempty"`
	Items            []string `json:"items,omitempty" yaml:"items,omitempty"`
	Flags            []string `json:"flags,omitempty" yaml:"flags,omitempty"` // Set "true"
}

// Quest is a quest record plus its progress.
type Quest struct {
	ID                 string      `json:"id" yaml:"id"`
	Title              string      `json:"title" yaml:"title"`
	Description        string      `json:"description,omitempty" yaml:"description,omitempty"`
	Giver              string      `json:"giver,omitempty" yaml:"giver,omitempty"` // NPC or location
	PrerequisiteQuests []string    `json:"prerequisite_quests,omitempty" yaml:"prerequisite_quests,omitempty"`
	PrerequisiteFlags  []string    `json:"prerequisite_flags,omitempty" yaml:"prerequisite_flags,omitempty"`
	Objectives         []Objective `json:"objectives" yaml:"objectives"`
	// CurrentObjective indexes the first incomplete blocking objective while
	// Active. Every blocking objective before it is complete; optional ones
	// before it may still be open.
	CurrentObjective   int         `json:"current_objective" yaml:"current_objective"`
	RevealsOnAccept    []string    `json:"reveals_on_accept,omitempty" yaml:"reveals_on_accept,omitempty"`
	RevealsOnComplete  []string    `json:"reveals_on_complete,omitempty" yaml:"reveals_on_complete,omitempty"`
	Reward             Reward      `json:"reward" yaml:"reward"`
	State              State       `json:"state,omitempty" yaml:"state,omitempty"`
}

// Current returns the current objective, or nil if none applies.
func (q *Quest) Current() *Objective {
	if q.CurrentObjective < 0 || q.CurrentObjective >= len(q.Objectives) {
		return nil
	}
	return &q.Objectives[q.CurrentObjective]
}

// nextBlocking returns the first incomplete blocking objective at or after
// from, or -1.
func (q *Quest) nextBlocking(from int) int {
	for i := from; i < len(q.Objectives); i++ {
		o := &q.Objectives[i]
		if !o.Optional && !o.Complete {
			return i
		}
	}
	return -1
}

// Validate checks the record is usable.
func (q *Quest) Validate() error {
	if q.ID == "" {
		return fmt.Errorf("quest id is required")
	}
	if len(q.Objectives) == 0 {
		return fmt.Errorf("quest %s has no objectives", q.ID)
	}
	for i, o := range q.Objectives {
		if !o.Type.Valid() {
			return fmt.Errorf("quest %s objective %d: unknown type %q", q.ID, i, o.Type)
		}
		if o.TargetCount < 0 {
			return fmt.Errorf("quest %s objective %d: negative target_count", q.ID, i)
		}
	}
	return nil
}

package conditionals

import "github.com/jwebster45206/quest-engine/pkg/flags"

// FlagView provides the minimal read access needed to evaluate gates.
// This avoids import cycles with the state package
type FlagView interface {
	Get(name string) (string, bool)
}

// Gate is an optional single-flag test on an action or dialogue variant.
// flag_true requires the flag to be exactly "true"; flag_false requires it
// to be false or absent. Both may be set, in which case both must hold.
type Gate struct {
	FlagTrue  string `json:"flag_true,omitempty" yaml:"flag_true,omitempty"`
	FlagFalse string `json:"flag_false,omitempty" yaml:"flag_false,omitempty"`
}

// IsZero reports whether the gate has no conditions (always satisfied).
func (g Gate) IsZero() bool {
	return g.FlagTrue == "" && g.FlagFalse == ""
}

// Satisfied evaluates the gate against the current flags.
func (g Gate) Satisfied(v FlagView) bool {
	if g.FlagTrue != "" && !IsTrue(v, g.FlagTrue) {
		return false
	}
	if g.FlagFalse != "" && !IsFalse(v, g.FlagFalse) {
		return false
	}
	return true
}

// Specificity ranks how narrow a gate is. A positive fact is narrower than an
// absence, and a gate testing both is narrower still.
func (g Gate) Specificity() int {
	n := 0
	if g.FlagTrue != "" {
		n += 2
	}
	if g.FlagFalse != "" {
		n++
	}
	return n
}

// Requirement is the conjunctive condition set on an exit.
type Requirement struct {
	Conditions    []string `json:"conditions,omitempty" yaml:"conditions,omitempty"`         // All must be "true"
	ConditionsNot []string `json:"conditions_not,omitempty" yaml:"conditions_not,omitempty"` // All must be false or absent
}

// Satisfied reports whether every condition holds.
func (r Requirement) Satisfied(v FlagView) bool {
	for _, name := range r.Conditions {
		if !IsTrue(v, name) {
			return false
		}
	}
	for _, name := range r.ConditionsNot {
		if !IsFalse(v, name) {
			return false
		}
	}
	return true
}

// IsTrue reports whether the named flag is exactly "true". Malformed names
// never satisfy a gate.
func IsTrue(v FlagView, name string) bool {
	if !flags.ValidName(name) {
		return false
	}
	val, ok := v.Get(name)
	return ok && val == flags.True
}

// IsFalse reports whether the named flag is absent or "false". Malformed
// names never satisfy a gate.
func IsFalse(v FlagView, name string) bool {
	if !flags.ValidName(name) {
		return false
	}
	val, ok := v.Get(name)
	return !ok || val == flags.False
}

// MostSpecific returns the index of the satisfied candidate with the highest
// gate specificity, or -1 if none is satisfied. Ties go to the earliest
// declared candidate.
func MostSpecific[T any](candidates []T, gate func(T) Gate, v FlagView) int {
	best, bestScore := -1, -1
	for i, c := range candidates {
		g := gate(c)
		if !g.Satisfied(v) {
			continue
		}
		if s := g.Specificity(); s > bestScore {
			best, bestScore = i, s
		}
	}
	return best
}

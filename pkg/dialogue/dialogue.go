// Package dialogue holds branching conversation records and the interpreter
// that walks them.
package dialogue

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/conditionals"
	"gopkg.in/yaml.v3"
)

var (
	ErrNoSteps       = errors.New("dialogue has no steps")
	ErrDialogueEnded = errors.New("dialogue has ended")
	ErrInvalidChoice = errors.New("invalid response choice")
	ErrBadNextStep   = errors.New("invalid next_step")
)

// Next is where a response leads: either another step or the end of the
// dialogue. The zero value is unset and fails validation.
type Next struct {
	set  bool
	end  bool
	step int
}

// Continue returns a Next that moves to step i.
func Continue(i int) Next { return Next{set: true, step: i} }

// End returns a Next that terminates the dialogue.
func End() Next { return Next{set: true, end: true} }

// IsSet reports whether the response says where it leads.
func (n Next) IsSet() bool { return n.set }

// IsEnd reports whether the dialogue terminates.
func (n Next) IsEnd() bool { return n.end }

// Step returns the target step index; ok is false for End and for an
// unset Next, which ends the dialogue rather than looping.
func (n Next) Step() (int, bool) {
	if n.end || !n.set {
		return 0, false
	}
	return n.step, true
}

func (n Next) String() string {
	if !n.set {
		return "unset"
	}
	if n.end {
		return "end"
	}
	return fmt.Sprintf("step %d", n.step)
}

func nextFromInt(i int) (Next, error) {
	switch {
	case i == -1:
		return End(), nil
	case i >= 0:
		return Continue(i), nil
	}
	return Next{}, fmt.Errorf("%w: %d", ErrBadNextStep, i)
}

func (n Next) toInt() int {
	if n.end || !n.set {
		return -1
	}
	return n.step
}

// MarshalJSON writes the content form: a step index or -1.
func (n Next) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.toInt())
}

// UnmarshalJSON reads a step index; -1 means End.
func (n *Next) UnmarshalJSON(data []byte) error {
	var i int
	if err := json.Unmarshal(data, &i); err != nil {
		return fmt.Errorf("%w: %s", ErrBadNextStep, string(data))
	}
	v, err := nextFromInt(i)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// MarshalYAML writes the content form.
func (n Next) MarshalYAML() (any, error) {
	return n.toInt(), nil
}

// UnmarshalYAML reads a step index; -1 means End.
func (n *Next) UnmarshalYAML(node *yaml.Node) error {
	var i int
	if err := node.Decode(&i); err != nil {
		return fmt.Errorf("%w: %s", ErrBadNextStep, node.Value)
	}
	v, err := nextFromInt(i)
	if err != nil {
		return err
	}
	*n = v
	return nil
}

// Response is one selectable reply within a step.
type Response struct {
	Text             string `json:"text" yaml:"text"`
	Next             Next   `json:"next_step" yaml:"next_step"`
	SetFlagTrue      string `json:"setFlagTrue,omitempty" yaml:"setFlagTrue,omitempty"`
	SetFlagFalse     string `json:"setFlagFalse,omitempty" yaml:"setFlagFalse,omitempty"`
	SetFlagConcluded string `json:"setFlagConcluded,omitempty" yaml:"setFlagConcluded,omitempty"`
	GetItem          string `json:"getItem,omitempty" yaml:"getItem,omitempty"`
	GiveItem         string `json:"giveItem,omitempty" yaml:"giveItem,omitempty"` // Handed to the NPC
}

// Step is one message and its responses. A step without responses is
// terminal.
type Step struct {
	Message   string     `json:"message" yaml:"message"`
	Responses []Response `json:"responses,omitempty" yaml:"responses,omitempty"`
}

// Dialogue is an NPC's conversation tree. Several variants may share an
// NPC name, distinguished by their gates.
type Dialogue struct {
	NPC               string `json:"npc_name" yaml:"npc_name"`
	conditionals.Gate `yaml:",inline"`
	Steps             []Step `json:"dialogues" yaml:"dialogues"`
}

// Validate checks that every response says where it leads and that the
// step it names exists.
func (d *Dialogue) Validate() error {
	if len(d.Steps) == 0 {
		return fmt.Errorf("dialogue %q: %w", d.NPC, ErrNoSteps)
	}
	for si, step := range d.Steps {
		for ri, r := range step.Responses {
			if !r.Next.IsSet() {
				return fmt.Errorf("dialogue %q step %d response %d: %w: missing next_step", d.NPC, si, ri, ErrBadNextStep)
			}
			if i, ok := r.Next.Step(); ok && i >= len(d.Steps) {
				return fmt.Errorf("dialogue %q step %d response %d: %w: %d", d.NPC, si, ri, ErrBadNextStep, i)
			}
		}
	}
	return nil
}

// Select returns the variant for npc offered under the current flags: the
// satisfied variant with the most specific gate, earliest declared on ties.
func Select(variants []Dialogue, npc string, v conditionals.FlagView) (*Dialogue, bool) {
	var candidates []*Dialogue
	for i := range variants {
		if variants[i].NPC == npc {
			candidates = append(candidates, &variants[i])
		}
	}
	best := conditionals.MostSpecific(candidates, func(d *Dialogue) conditionals.Gate { return d.Gate }, v)
	if best < 0 {
		return nil, false
	}
	return candidates[best], true
}

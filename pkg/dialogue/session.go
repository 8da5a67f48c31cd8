package dialogue

import (
	"errors"
	"fmt"

	"github.com/jwebster45206/quest-engine/pkg/flags"
)

var ErrMissingItem = errors.New("response requires an item the player does not have")

// EffectKind names a response side effect.
type EffectKind string

const (
	EffectSetFlag     EffectKind = "set_flag"
	EffectGrantItem   EffectKind = "grant_item"
	EffectDeliverItem EffectKind = "deliver_item"
)

// Effect is one side effect of selecting a response.
type Effect struct {
	Kind  EffectKind `json:"kind"`
	Name  string     `json:"name"`
	Value string     `json:"value,omitempty"`
}

// Effects returns the response's side effects in application order: flag
// mutations first, then item transfers.
func (r Response) Effects() []Effect {
	var out []Effect
	if r.SetFlagTrue != "" {
		out = append(out, Effect{Kind: EffectSetFlag, Name: r.SetFlagTrue, Value: flags.True})
	}
	if r.SetFlagFalse != "" {
		out = append(out, Effect{Kind: EffectSetFlag, Name: r.SetFlagFalse, Value: flags.False})
	}
	if r.SetFlagConcluded != "" {
		out = append(out, Effect{Kind: EffectSetFlag, Name: r.SetFlagConcluded, Value: flags.Concluded})
	}
	if r.GetItem != "" {
		out = append(out, Effect{Kind: EffectGrantItem, Name: r.GetItem})
	}
	if r.GiveItem != "" {
		out = append(out, Effect{Kind: EffectDeliverItem, Name: r.GiveItem})
	}
	return out
}

// Sink receives dialogue side effects.
type Sink interface {
	SetFlag(name, value string)
	GrantItem(id string)
	DeliverItem(id string)
	HasItem(id string) bool
}

// Transition describes the result of choosing a response.
type Transition struct {
	From    int      `json:"from"`
	Next    Next     `json:"next"`
	Applied []Effect `json:"applied,omitempty"`
}

// Session is a dialogue in progress: the dialogue plus the current step.
type Session struct {
	dlg   *Dialogue
	step  int
	ended bool
}

// Start opens a dialogue at its entry step.
func Start(d *Dialogue) (*Session, error) {
	return Resume(d, 0)
}

// Resume reopens a dialogue at a saved step.
func Resume(d *Dialogue, step int) (*Session, error) {
	if d == nil || len(d.Steps) == 0 {
		return nil, ErrNoSteps
	}
	if step < 0 || step >= len(d.Steps) {
		return nil, fmt.Errorf("%w: %d", ErrBadNextStep, step)
	}
	return &Session{dlg: d, step: step}, nil
}

// Dialogue returns the dialogue being walked.
func (s *Session) Dialogue() *Dialogue { return s.dlg }

// NPC returns who is being spoken to.
func (s *Session) NPC() string { return s.dlg.NPC }

// StepIndex returns the current step.
func (s *Session) StepIndex() int { return s.step }

// Current returns the current step.
func (s *Session) Current() Step { return s.dlg.Steps[s.step] }

// Done reports whether no further choice can be made: an End response was
// chosen or the current step has no responses.
func (s *Session) Done() bool {
	return s.ended || len(s.Current().Responses) == 0
}

// Choose selects response i, applies its side effects in order and moves
// to the next step. Nothing is applied if the choice is rejected.
func (s *Session) Choose(i int, sink Sink) (Transition, error) {
	if s.Done() {
		return Transition{}, ErrDialogueEnded
	}
	step := s.Current()
	if i < 0 || i >= len(step.Responses) {
		return Transition{}, fmt.Errorf("%w: %d", ErrInvalidChoice, i)
	}
	r := step.Responses[i]
	if r.GiveItem != "" && !sink.HasItem(r.GiveItem) {
		return Transition{}, fmt.Errorf("%w: %s", ErrMissingItem, r.GiveItem)
	}

	t := Transition{From: s.step, Next: r.Next}
	for _, e := range r.Effects() {
		switch e.Kind {
		case EffectSetFlag:
			sink.SetFlag(e.Name, e.Value)
		case EffectGrantItem:
			sink.GrantItem(e.Name)
		case EffectDeliverItem:
			sink.DeliverItem(e.Name)
		}
		t.Applied = append(t.Applied, e)
	}

	next, ok := r.Next.Step()
	if !ok || next >= len(s.dlg.Steps) {
		s.ended = true
		t.Next = End()
		return t, nil
	}
	s.step = next
	return t, nil
}

package dialogue

import (
	"encoding/json"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

// recordingSink implements Sink for testing
type recordingSink struct {
	flags map[string]string
	items []string
	given []string
	calls []string
}

func newSink() *recordingSink {
	return &recordingSink{flags: map[string]string{}}
}

func (s *recordingSink) SetFlag(name, value string) {
	s.flags[name] = value
	s.calls = append(s.calls, "flag:"+name)
}

func (s *recordingSink) GrantItem(id string) {
	s.items = append(s.items, id)
	s.calls = append(s.calls, "item:"+id)
}

func (s *recordingSink) DeliverItem(id string) {
	s.items = slices.DeleteFunc(s.items, func(it string) bool { return it == id })
	s.given = append(s.given, id)
	s.calls = append(s.calls, "give:"+id)
}

func (s *recordingSink) HasItem(id string) bool {
	return slices.Contains(s.items, id)
}

const hermitJSON = `{
  "npc_name": "hermit",
  "dialogues": [
    {"message": "Who goes there?", "responses": [
      {"text": "A friend.", "next_step": 1},
      {"text": "Nobody.", "next_step": -1}
    ]},
    {"message": "Then take this.", "responses": [
      {"text": "Thank you.", "next_step": 2, "setFlagTrue": "HasSoulStone", "getItem": "Soul Stone"}
    ]},
    {"message": "Go now."}
  ]
}`

func loadHermit(t *testing.T) *Dialogue {
	t.Helper()
	var d Dialogue
	require.NoError(t, json.Unmarshal([]byte(hermitJSON), &d))
	require.NoError(t, d.Validate())
	return &d
}

func TestNext_JSON(t *testing.T) {
	var n Next
	require.NoError(t, json.Unmarshal([]byte("-1"), &n))
	assert.True(t, n.IsEnd())

	require.NoError(t, json.Unmarshal([]byte("7"), &n))
	step, ok := n.Step()
	assert.True(t, ok)
	assert.Equal(t, 7, step)

	assert.ErrorIs(t, json.Unmarshal([]byte("-2"), &n), ErrBadNextStep)
	assert.ErrorIs(t, json.Unmarshal([]byte(`"x"`), &n), ErrBadNextStep)

	data, err := json.Marshal(End())
	require.NoError(t, err)
	assert.Equal(t, "-1", string(data))
}

func TestNext_YAML(t *testing.T) {
	var r Response
	require.NoError(t, yaml.Unmarshal([]byte("text: Bye\nnext_step: -1\n"), &r))
	assert.True(t, r.Next.IsEnd())

	require.NoError(t, yaml.Unmarshal([]byte("text: Go on\nnext_step: 3\n"), &r))
	step, ok := r.Next.Step()
	assert.True(t, ok)
	assert.Equal(t, 3, step)
}

func TestValidate(t *testing.T) {
	d := Dialogue{NPC: "x", Steps: []Step{{Message: "hi", Responses: []Response{{Text: "?", Next: Continue(4)}}}}}
	assert.ErrorIs(t, d.Validate(), ErrBadNextStep)

	empty := Dialogue{NPC: "y"}
	assert.ErrorIs(t, empty.Validate(), ErrNoSteps)
}

func TestValidate_MissingNextStep(t *testing.T) {
	var d Dialogue
	require.NoError(t, json.Unmarshal([]byte(`{"npc_name": "ferryman", "dialogues": [{"message": "Crossing?", "responses": [{"text": "bye"}]}]}`), &d))
	assert.False(t, d.Steps[0].Responses[0].Next.IsSet())
	err := d.Validate()
	assert.ErrorIs(t, err, ErrBadNextStep)
	assert.Contains(t, err.Error(), "missing next_step")

	var r Response
	require.NoError(t, yaml.Unmarshal([]byte("text: Bye\n"), &r))
	assert.False(t, r.Next.IsSet())

	require.NoError(t, yaml.Unmarshal([]byte("text: Again\nnext_step: 0\n"), &r))
	assert.True(t, r.Next.IsSet())
}

func TestSession_UnsetNextEnds(t *testing.T) {
	d := &Dialogue{NPC: "ferryman", Steps: []Step{
		{Message: "Crossing?", Responses: []Response{{Text: "bye"}}},
	}}
	s, err := Start(d)
	require.NoError(t, err)

	tr, err := s.Choose(0, newSink())
	require.NoError(t, err)
	assert.True(t, tr.Next.IsEnd())
	assert.True(t, s.Done())
}

func TestSession_GetItemAndFlag(t *testing.T) {
	d := loadHermit(t)
	s, err := Start(d)
	require.NoError(t, err)
	sink := newSink()

	assert.Equal(t, "Who goes there?", s.Current().Message)

	tr, err := s.Choose(0, sink)
	require.NoError(t, err)
	assert.Equal(t, 0, tr.From)
	assert.Equal(t, 1, s.StepIndex())

	tr, err = s.Choose(0, sink)
	require.NoError(t, err)
	assert.Equal(t, "true", sink.flags["HasSoulStone"])
	assert.Equal(t, []string{"Soul Stone"}, sink.items)
	assert.Equal(t, []string{"flag:HasSoulStone", "item:Soul Stone"}, sink.calls, "flags apply before items")
	assert.Len(t, tr.Applied, 2)

	// step 2 has no responses and is terminal
	assert.Equal(t, 2, s.StepIndex())
	assert.True(t, s.Done())
	_, err = s.Choose(0, sink)
	assert.ErrorIs(t, err, ErrDialogueEnded)
}

func TestSession_SoulStoneJumpsToStep7(t *testing.T) {
	steps := make([]Step, 8)
	for i := range steps {
		steps[i] = Step{Message: "..."}
	}
	steps[0].Responses = []Response{{Text: "Take it", Next: Continue(7), SetFlagTrue: "HasSoulStone", GetItem: "Soul Stone"}}
	d := &Dialogue{NPC: "keeper", Steps: steps}
	require.NoError(t, d.Validate())

	s, err := Start(d)
	require.NoError(t, err)
	sink := newSink()

	_, err = s.Choose(0, sink)
	require.NoError(t, err)
	assert.Equal(t, "true", sink.flags["HasSoulStone"])
	assert.True(t, sink.HasItem("Soul Stone"))
	assert.Equal(t, 7, s.StepIndex())
}

func TestSession_EndResponse(t *testing.T) {
	s, err := Start(loadHermit(t))
	require.NoError(t, err)

	tr, err := s.Choose(1, newSink())
	require.NoError(t, err)
	assert.True(t, tr.Next.IsEnd())
	assert.True(t, s.Done())
}

func TestSession_InvalidChoice(t *testing.T) {
	s, err := Start(loadHermit(t))
	require.NoError(t, err)

	_, err = s.Choose(5, newSink())
	assert.ErrorIs(t, err, ErrInvalidChoice)
	assert.Equal(t, 0, s.StepIndex())
}

func TestSession_Deterministic(t *testing.T) {
	run := func() (int, map[string]string, []string) {
		s, err := Start(loadHermit(t))
		require.NoError(t, err)
		sink := newSink()
		_, err = s.Choose(0, sink)
		require.NoError(t, err)
		_, err = s.Choose(0, sink)
		require.NoError(t, err)
		return s.StepIndex(), sink.flags, sink.items
	}
	step1, flags1, items1 := run()
	step2, flags2, items2 := run()
	assert.Equal(t, step1, step2)
	assert.Equal(t, flags1, flags2)
	assert.Equal(t, items1, items2)
}

func TestSession_GiveItemRequiresItem(t *testing.T) {
	d := &Dialogue{NPC: "smith", Steps: []Step{
		{Message: "Got the ore?", Responses: []Response{
			{Text: "Here.", Next: End(), SetFlagTrue: "ore_delivered", GiveItem: "iron_ore"},
		}},
	}}
	s, err := Start(d)
	require.NoError(t, err)
	sink := newSink()

	_, err = s.Choose(0, sink)
	assert.ErrorIs(t, err, ErrMissingItem)
	assert.Empty(t, sink.flags, "nothing applies when the choice is rejected")

	sink.items = []string{"iron_ore"}
	_, err = s.Choose(0, sink)
	require.NoError(t, err)
	assert.Equal(t, []string{"iron_ore"}, sink.given)
	assert.Equal(t, "true", sink.flags["ore_delivered"])
}

func TestSelect(t *testing.T) {
	variants := []Dialogue{
		{NPC: "elder", Steps: []Step{{Message: "default"}}},
		{NPC: "elder", Steps: []Step{{Message: "first meeting"}}},
		{NPC: "guard", Steps: []Step{{Message: "halt"}}},
	}
	variants[1].FlagFalse = "met_elder"

	d, ok := Select(variants, "elder", mapView{})
	require.True(t, ok)
	assert.Equal(t, "first meeting", d.Steps[0].Message)

	d, ok = Select(variants, "elder", mapView{"met_elder": "true"})
	require.True(t, ok)
	assert.Equal(t, "default", d.Steps[0].Message)

	_, ok = Select(variants, "nobody", mapView{})
	assert.False(t, ok)
}

type mapView map[string]string

func (m mapView) Get(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

package state

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/room"
)

// ActionView is an offered action.
type ActionView struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

// ExitView is an offered exit.
type ExitView struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// RoomView is the current room as the renderer sees it. Actions and exits
// are empty while a fight or conversation is open.
type RoomView struct {
	ID          string       `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Items       []string     `json:"items,omitempty"`
	Actions     []ActionView `json:"actions"`
	Exits       []ExitView   `json:"exits"`
}

// DialogueView is the current conversation step.
type DialogueView struct {
	NPC       string   `json:"npc"`
	Step      int      `json:"step"`
	Message   string   `json:"message"`
	Responses []string `json:"responses"`
}

// CombatView is the open fight.
type CombatView struct {
	Enemy      string       `json:"enemy"`
	EnemyHP    int          `json:"enemy_hp"`
	EnemyMaxHP int          `json:"enemy_max_hp"`
	State      combat.State `json:"state"`
}

// ItemView is one inventory line.
type ItemView struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Count    int    `json:"count"`
	Equipped bool   `json:"equipped,omitempty"`
}

// PlayerView is the player's status.
type PlayerView struct {
	Name      string     `json:"name"`
	Health    int        `json:"health"`
	MaxHealth int        `json:"max_health"`
	Gold      int        `json:"gold"`
	XP        int        `json:"xp,omitempty"`
	Inventory []ItemView `json:"inventory"`
}

// QuestOffer is a quest that can be accepted now.
type QuestOffer struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Giver string `json:"giver,omitempty"`
}

// View is everything the renderer needs after a command.
type View struct {
	GameID          uuid.UUID     `json:"game_id"`
	World           string        `json:"world,omitempty"`
	Room            RoomView      `json:"room"`
	Dialogue        *DialogueView `json:"dialogue,omitempty"`
	Combat          *CombatView   `json:"combat,omitempty"`
	Player          PlayerView    `json:"player"`
	Quests          []quest.View  `json:"quests"`
	AvailableQuests []QuestOffer  `json:"available_quests,omitempty"`
	Messages        []string      `json:"messages"`
}

// Label turns an id like "north_gate" into "North Gate".
func Label(id string) string {
	// a Caser is stateful, so one per call
	return cases.Title(language.English).String(strings.ReplaceAll(id, "_", " "))
}

// View builds the renderer view of the session.
func (s *Session) View() View {
	v := View{
		GameID:   s.id,
		World:    s.world.Name,
		Quests:   s.quests.Views(),
		Messages: append([]string{}, s.messages...),
	}
	if v.Quests == nil {
		v.Quests = []quest.View{}
	}

	if s.room != nil {
		v.Room = s.roomView(s.room)
	}
	if s.talk != nil {
		step := s.talk.Current()
		dv := &DialogueView{NPC: s.talk.NPC(), Step: s.talk.StepIndex(), Message: step.Message, Responses: []string{}}
		for _, r := range step.Responses {
			dv.Responses = append(dv.Responses, r.Text)
		}
		v.Dialogue = dv
	}
	if s.fight != nil {
		e := s.fight.Enemy()
		v.Combat = &CombatView{Enemy: e.Name, EnemyHP: max(e.HP, 0), EnemyMaxHP: e.MaxHP, State: s.fight.State()}
	}

	name := s.player.Spec.Name
	if name == "" {
		name = Label(s.player.Spec.ID)
	}
	v.Player = PlayerView{
		Name:      name,
		Health:    s.player.Health(),
		MaxHealth: s.player.MaxHealth(),
		Gold:      s.inv.Gold(),
		XP:        s.inv.XP(),
		Inventory: []ItemView{},
	}
	mainHand, _ := s.inv.MainHand()
	for _, e := range s.inv.Entries() {
		v.Player.Inventory = append(v.Player.Inventory, ItemView{
			ID:       e.Item.ID,
			Name:     e.Item.DisplayName(),
			Count:    e.Count,
			Equipped: mainHand.ID != "" && mainHand.ID == e.Item.ID,
		})
	}

	for _, q := range s.quests.Available() {
		v.AvailableQuests = append(v.AvailableQuests, QuestOffer{ID: q.ID, Title: q.Title, Giver: q.Giver})
	}
	return v
}

func (s *Session) roomView(r *room.Room) RoomView {
	name := r.Name
	if name == "" {
		name = Label(r.ID)
	}
	rv := RoomView{
		ID:          r.ID,
		Name:        name,
		Description: r.CurrentDescription(s.flags),
		Items:       s.RoomItems(),
		Actions:     []ActionView{},
		Exits:       []ExitView{},
	}
	if s.fight != nil || s.talk != nil {
		return rv
	}
	for _, a := range room.AvailableActions(r, s.flags) {
		rv.Actions = append(rv.Actions, ActionView{ID: a.ID, Label: a.Description})
	}
	for _, e := range room.AvailableExits(r, s.flags) {
		rv.Exits = append(rv.Exits, ExitView{Name: e.Name, Label: Label(e.Name)})
	}
	return rv
}

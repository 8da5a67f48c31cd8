package state

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/jwebster45206/quest-engine/pkg/actor"
	"github.com/jwebster45206/quest-engine/pkg/combat"
	"github.com/jwebster45206/quest-engine/pkg/content"
	"github.com/jwebster45206/quest-engine/pkg/dialogue"
	"github.com/jwebster45206/quest-engine/pkg/flags"
	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/room"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

var (
	ErrInCombat      = errors.New("not available during combat")
	ErrInDialogue    = errors.New("not available during a conversation")
	ErrNotInCombat   = errors.New("not in combat")
	ErrNotInDialogue = errors.New("not in a conversation")
	ErrNoDialogue    = errors.New("nobody responds")
	ErrNotUsable     = errors.New("item cannot be used here")
	ErrNotHere       = errors.New("item is not here")
)

// Content is the content source a session reads records from.
type Content interface {
	room.Loader
	LoadQuest(ctx context.Context, id string) (*quest.Quest, error)
	LoadMap(ctx context.Context, id string) (*worldmap.Map, error)
}

// Session is one running game. It owns the flag store, inventory, player
// and quest list and routes every player command to the component that
// handles it. A Session is not safe for concurrent use.
type Session struct {
	id        uuid.UUID
	createdAt time.Time
	world     *content.World
	content   Content
	logger    *slog.Logger

	flags   *flags.Store
	inv     *inventory.Inventory
	player  *actor.Player
	quests  *quest.Engine
	maps    *worldmap.Resolver
	graph   *room.Graph
	effects *EffectWorker

	room     *room.Room
	prevRoom string
	talk     *dialogue.Session
	fight    *combat.Encounter
	messages []string
}

// NewSession builds a fresh game from a world manifest. Call Start to enter
// the opening room.
func NewSession(ctx context.Context, world *content.World, catalog inventory.Catalog, src Content, logger *slog.Logger) (*Session, error) {
	gs := NewGameState()
	gs.World = world.Name
	gs.Flags = make(map[string]string, len(world.InitialFlags))
	for k, v := range world.InitialFlags {
		gs.Flags[k] = v
	}

	spec := world.Player
	player, err := actor.NewPlayerFromSpec(&spec)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	gs.Player = player

	inv := inventory.New(catalog)
	for _, id := range spec.Inventory {
		inv.Grant(id)
	}
	if spec.Equipped != "" {
		inv.Grant(spec.Equipped)
		if err := inv.Equip(spec.Equipped); err != nil {
			return nil, fmt.Errorf("failed to equip %s: %w", spec.Equipped, err)
		}
	}
	inv.AddGold(spec.Gold)
	gs.Inventory = inv.Record()

	for _, id := range world.Quests {
		q, err := src.LoadQuest(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to load quest %s: %w", id, err)
		}
		gs.Quests = append(gs.Quests, *q)
	}

	return Restore(ctx, gs, world, catalog, src, logger)
}

// Restore rebuilds a session from a snapshot.
func Restore(ctx context.Context, gs *GameState, world *content.World, catalog inventory.Catalog, src Content, logger *slog.Logger) (*Session, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if gs.Player == nil {
		return nil, fmt.Errorf("game %s has no player", gs.ID)
	}

	s := &Session{
		id:        gs.ID,
		createdAt: gs.CreatedAt,
		world:     world,
		content:   src,
		logger:    logger.With("game_id", gs.ID.String()),
		flags:     flags.FromMap(gs.Flags),
		inv:       inventory.FromRecord(catalog, gs.Inventory),
		player:    gs.Player,
		prevRoom:  gs.PreviousRoomID,
		messages:  gs.Messages,
	}
	s.maps = worldmap.NewResolver(s.flags, worldmap.NewFlagChapters(world.Chapters, s.flags), s.logger)
	s.quests = quest.NewEngine(s.flags, s.maps, s.logger).WithEnhancedStats(world.EnhancedStats)
	for i := range gs.Quests {
		q := gs.Quests[i]
		q.Objectives = slices.Clone(q.Objectives)
		if err := s.quests.Register(&q); err != nil {
			return nil, fmt.Errorf("failed to register quest: %w", err)
		}
	}
	s.effects = NewEffectWorker(s.flags, s.inv, s.quests, s.logger)
	s.graph = room.NewGraph(src, s.logger)

	if gs.RoomID == "" {
		return s, nil
	}
	r, err := s.graph.Load(ctx, gs.RoomID)
	if err != nil {
		return nil, err
	}
	s.room = r

	if gs.Dialogue != nil {
		v := gs.Dialogue.Variant
		if v < 0 || v >= len(r.Dialogues) {
			return nil, fmt.Errorf("saved dialogue variant %d out of range in %s", v, r.ID)
		}
		talk, err := dialogue.Resume(&r.Dialogues[v], gs.Dialogue.Step)
		if err != nil {
			return nil, fmt.Errorf("failed to resume dialogue: %w", err)
		}
		s.talk = talk
	}
	if gs.Combat != nil {
		s.fight = combat.Resume(*gs.Combat, s.combatDeps())
	}
	return s, nil
}

// ID returns the game id.
func (s *Session) ID() uuid.UUID { return s.id }

// Flags returns the flag store.
func (s *Session) Flags() *flags.Store { return s.flags }

// Inventory returns the player's inventory.
func (s *Session) Inventory() *inventory.Inventory { return s.inv }

// Player returns the player.
func (s *Session) Player() *actor.Player { return s.player }

// Quests returns the quest engine.
func (s *Session) Quests() *quest.Engine { return s.quests }

// Room returns the current room.
func (s *Session) Room() *room.Room { return s.room }

// InCombat reports whether a fight is open.
func (s *Session) InCombat() bool { return s.fight != nil }

// InDialogue reports whether a conversation is open.
func (s *Session) InDialogue() bool { return s.talk != nil }

// Messages returns the narration of the last command.
func (s *Session) Messages() []string { return s.messages }

func (s *Session) say(format string, args ...any) {
	s.messages = append(s.messages, fmt.Sprintf(format, args...))
}

// begin clears the narration of the previous command.
func (s *Session) begin() {
	s.messages = nil
}

// end collects narration produced by side effects.
func (s *Session) end() {
	s.messages = append(s.messages, s.effects.Drain()...)
}

func (s *Session) combatDeps() combat.Deps {
	return combat.Deps{Player: s.player, Inventory: s.inv, Flags: s.flags, Logger: s.logger}
}

// Start enters the world's opening room.
func (s *Session) Start(ctx context.Context) error {
	return s.Enter(ctx, s.world.StartRoom)
}

// Enter moves the player into a room by id. If the room cannot be loaded
// the session is left unchanged.
func (s *Session) Enter(ctx context.Context, roomID string) error {
	r, err := s.graph.Load(ctx, roomID)
	if err != nil {
		return err
	}
	s.begin()
	s.enter(r)
	s.end()
	return nil
}

func (s *Session) enter(r *room.Room) {
	if s.room != nil && s.room.ID != r.ID {
		s.prevRoom = s.room.ID
	}
	s.room = r
	s.talk = nil
	s.fight = nil

	s.say("%s", r.CurrentDescription(s.flags))
	s.logger.Info("Entered room", "room_id", r.ID)
	s.effects.Report(quest.GoToRoom, r.ID, 1)

	if r.HasLiveEncounter(s.flags) {
		fight, err := combat.New(r.Combat, r.ClearedFlag(), s.combatDeps())
		if err != nil {
			s.logger.Error("Failed to start combat", "room_id", r.ID, "error", err)
			return
		}
		s.fight = fight
		if r.Combat.Description != "" {
			s.say("%s", r.Combat.Description)
		} else {
			s.say("A %s attacks!", r.Combat.EnemyName)
		}
	}
}

func (s *Session) requireExploring() error {
	if s.fight != nil {
		return ErrInCombat
	}
	if s.talk != nil {
		return ErrInDialogue
	}
	return nil
}

// ChooseAction performs a room action, opening the dialogue it triggers.
func (s *Session) ChooseAction(ctx context.Context, actionID string) error {
	if err := s.requireExploring(); err != nil {
		return err
	}
	a, err := room.FindAction(s.room, actionID, s.flags)
	if err != nil {
		return err
	}
	d, ok := s.room.Dialogue(a.DialogueName(), s.flags)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNoDialogue, a.DialogueName())
	}
	talk, err := dialogue.Start(d)
	if err != nil {
		return err
	}

	s.begin()
	s.talk = talk
	s.effects.Report(quest.TalkToNPC, d.NPC, 1)
	s.say("%s", talk.Current().Message)
	if talk.Done() {
		s.talk = nil
	}
	s.end()
	return nil
}

// ChooseResponse selects a response in the open conversation.
func (s *Session) ChooseResponse(ctx context.Context, i int) error {
	if s.talk == nil {
		return ErrNotInDialogue
	}
	t, err := s.talk.Choose(i, s.effects)
	if err != nil {
		return err
	}
	s.begin()
	s.logger.Debug("Dialogue response",
		"npc", s.talk.NPC(),
		"from", t.From,
		"next", t.Next.String(),
		"effects", len(t.Applied))

	if !t.Next.IsEnd() {
		s.say("%s", s.talk.Current().Message)
	}
	if s.talk.Done() {
		s.talk = nil
	}
	s.end()
	return nil
}

// TakeExit walks through an exit by name.
func (s *Session) TakeExit(ctx context.Context, name string) error {
	if err := s.requireExploring(); err != nil {
		return err
	}
	e, err := room.FindExit(s.room, name, s.flags)
	if err != nil {
		return err
	}
	r, err := s.graph.Traverse(ctx, e)
	if err != nil {
		return err
	}
	s.begin()
	s.enter(r)
	s.end()
	return nil
}

// Attack strikes the enemy.
func (s *Session) Attack(ctx context.Context) error {
	if s.fight == nil {
		return ErrNotInCombat
	}
	t, err := s.fight.Attack()
	if err != nil {
		return err
	}
	s.begin()
	return s.afterTurn(ctx, t)
}

// UseItem uses an item. In combat this takes the player's turn; outside
// combat only self-targeted items can be used.
func (s *Session) UseItem(ctx context.Context, id string) error {
	if s.fight != nil {
		t, err := s.fight.UseItem(id)
		if err != nil {
			return err
		}
		s.begin()
		s.effects.Report(quest.UseItem, id, 1)
		return s.afterTurn(ctx, t)
	}

	if s.talk != nil {
		return ErrInDialogue
	}
	item, ok := s.inv.Get(id)
	if !ok {
		return fmt.Errorf("use %q: %w", id, inventory.ErrItemNotOwned)
	}
	if item.Effect == nil || item.Effect.Type != inventory.EffectHeal || item.Effect.Target != inventory.TargetSelf {
		return fmt.Errorf("use %q: %w", id, ErrNotUsable)
	}
	s.begin()
	before := s.player.Health()
	s.player.Heal(item.Effect.Amount)
	if err := s.inv.Consume(id); err != nil {
		return err
	}
	s.say("You use the %s and recover %d health.", item.DisplayName(), s.player.Health()-before)
	s.effects.Report(quest.UseItem, id, 1)
	s.end()
	return nil
}

// Flee runs from combat back to the previous room.
func (s *Session) Flee(ctx context.Context) error {
	if s.fight == nil {
		return ErrNotInCombat
	}
	t, err := s.fight.Flee()
	if err != nil {
		return err
	}
	s.begin()
	return s.afterTurn(ctx, t)
}

func (s *Session) afterTurn(ctx context.Context, t combat.Turn) error {
	s.messages = append(s.messages, t.Narration...)
	enemy := s.fight.Enemy().Name

	switch t.State {
	case combat.Victory:
		s.fight = nil
		s.logger.Info("Combat won", "room_id", s.room.ID, "enemy", enemy)
		s.effects.Report(quest.DefeatEnemy, enemy, 1)
		s.effects.Report(quest.DefeatCount, enemy, 1)
		if s.room.ClearedDescription != "" {
			s.say("%s", s.room.CurrentDescription(s.flags))
		}

	case combat.Fled:
		s.fight = nil
		s.logger.Info("Fled combat", "room_id", s.room.ID, "enemy", enemy)
		back := s.prevRoom
		if back == "" || back == s.room.ID {
			back = s.world.StartRoom
		}
		r, err := s.graph.Load(ctx, back)
		if err != nil {
			s.end()
			return err
		}
		s.enter(r)

	case combat.PlayerDefeated:
		s.fight = nil
		s.logger.Info("Player defeated", "room_id", s.room.ID, "enemy", enemy)
		r, err := s.graph.Load(ctx, s.world.Respawn())
		if err != nil {
			s.end()
			return err
		}
		s.player.Restore()
		s.say("You awaken, bruised but alive.")
		s.prevRoom = ""
		s.enter(r)
	}
	s.end()
	return nil
}

// TakenFlag is the flag recording that an item was picked up from a room.
func TakenFlag(roomID, itemID string) string {
	return "taken_" + roomID + "_" + itemID
}

// RoomItems returns the items lying in the current room.
func (s *Session) RoomItems() []string {
	if s.room == nil {
		return nil
	}
	var out []string
	for _, id := range s.room.Items {
		if !s.flags.IsTrue(TakenFlag(s.room.ID, id)) {
			out = append(out, id)
		}
	}
	return out
}

// TakeItem picks up an item lying in the current room.
func (s *Session) TakeItem(ctx context.Context, id string) error {
	if err := s.requireExploring(); err != nil {
		return err
	}
	if !slices.Contains(s.RoomItems(), id) {
		return fmt.Errorf("take %q: %w", id, ErrNotHere)
	}
	s.begin()
	s.flags.Set(TakenFlag(s.room.ID, id), flags.True)
	s.effects.GrantItem(id)
	s.end()
	return nil
}

// Equip puts an item in the main hand.
func (s *Session) Equip(ctx context.Context, id string) error {
	if err := s.inv.Equip(id); err != nil {
		return err
	}
	s.begin()
	s.say("You equip the %s.", s.inv.Catalog().Lookup(id).DisplayName())
	return nil
}

// AcceptQuest starts a quest.
func (s *Session) AcceptQuest(ctx context.Context, id string) error {
	if err := s.quests.Accept(id); err != nil {
		return err
	}
	s.begin()
	q, _ := s.quests.Get(id)
	s.say("Quest accepted: %s", q.Title)
	if q.State == quest.ReadyToTurnIn {
		s.say("Quest ready to turn in: %s", q.Title)
	}
	s.end()
	return nil
}

// TurnInQuest completes a quest and collects its reward.
func (s *Session) TurnInQuest(ctx context.Context, id string) error {
	if err := s.quests.TurnIn(id, s.effects); err != nil {
		s.effects.Drain()
		return err
	}
	s.begin()
	q, _ := s.quests.Get(id)
	s.say("Quest completed: %s", q.Title)
	s.end()
	return nil
}

// FailQuest marks a quest failed.
func (s *Session) FailQuest(ctx context.Context, id string) error {
	if err := s.quests.Fail(id); err != nil {
		return err
	}
	s.begin()
	q, _ := s.quests.Get(id)
	s.say("Quest failed: %s", q.Title)
	return nil
}

// MapView resolves the visible pins and paths of a map.
func (s *Session) MapView(ctx context.Context, mapID string) (worldmap.Snapshot, error) {
	m, err := s.content.LoadMap(ctx, mapID)
	if err != nil {
		s.logger.Warn("Map not found", "map_id", mapID)
		return worldmap.Snapshot{}, err
	}
	return s.maps.Resolve(m), nil
}

// Snapshot returns the serializable state of the session.
func (s *Session) Snapshot() *GameState {
	gs := &GameState{
		ID:             s.id,
		World:          s.world.Name,
		PreviousRoomID: s.prevRoom,
		Flags:          s.flags.Snapshot(),
		Inventory:      s.inv.Record(),
		Player:         s.player,
		Messages:       append([]string(nil), s.messages...),
		CreatedAt:      s.createdAt,
		UpdatedAt:      time.Now().UTC(),
	}
	if s.room != nil {
		gs.RoomID = s.room.ID
	}
	for _, q := range s.quests.Quests() {
		c := *q
		c.Objectives = slices.Clone(q.Objectives)
		gs.Quests = append(gs.Quests, c)
	}
	if s.talk != nil {
		gs.Dialogue = &DialogueState{
			NPC:     s.talk.NPC(),
			Variant: s.dialogueVariant(s.talk.Dialogue()),
			Step:    s.talk.StepIndex(),
		}
	}
	if s.fight != nil {
		st := s.fight.Status()
		gs.Combat = &st
	}
	return gs
}

func (s *Session) dialogueVariant(d *dialogue.Dialogue) int {
	for i := range s.room.Dialogues {
		if &s.room.Dialogues[i] == d {
			return i
		}
	}
	return -1
}

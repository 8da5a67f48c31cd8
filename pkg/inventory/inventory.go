package inventory

import (
	"errors"
	"fmt"
	"slices"
)

var (
	ErrItemNotOwned = errors.New("item not in inventory")
	ErrNotEquipable = errors.New("item cannot be equipped")
)

// EffectType is what an item does when used.
type EffectType string

const (
	EffectHeal   EffectType = "heal"
	EffectDamage EffectType = "damage"
)

// EffectTarget is who an item effect applies to.
type EffectTarget string

const (
	TargetSelf EffectTarget = "self"
	TargetNPC  EffectTarget = "npc"
)

// SlotMainHand is the equipment slot that supplies attack damage.
const SlotMainHand = "main_hand"

// Effect is the usable effect of an item. For weapons the amount is the
// damage dealt by an attack.
type Effect struct {
	Type   EffectType   `json:"type" yaml:"type"`
	Target EffectTarget `json:"target" yaml:"target"`
	Amount int          `json:"amount" yaml:"amount"`
}

// Item is a catalog definition.
type Item struct {
	ID          string  `json:"id" yaml:"id"`
	Name        string  `json:"name,omitempty" yaml:"name,omitempty"`
	Description string  `json:"description,omitempty" yaml:"description,omitempty"`
	Stackable   bool    `json:"stackable,omitempty" yaml:"stackable,omitempty"`
	Slot        string  `json:"slot,omitempty" yaml:"slot,omitempty"`
	Effect      *Effect `json:"effect,omitempty" yaml:"effect,omitempty"`
}

// DisplayName returns the item's name, falling back to its id.
func (it Item) DisplayName() string {
	if it.Name != "" {
		return it.Name
	}
	return it.ID
}

// Catalog maps item ids to definitions. Items granted by content that have
// no catalog entry are treated as plain, non-stacking items.
type Catalog map[string]Item

// Lookup returns the definition of id, or a plain item named id.
func (c Catalog) Lookup(id string) Item {
	if it, ok := c[id]; ok {
		if it.ID == "" {
			it.ID = id
		}
		return it
	}
	return Item{ID: id, Name: id}
}

// Entry is one inventory line.
type Entry struct {
	Item  Item `json:"item"`
	Count int  `json:"count"`
}

// Inventory holds the player's items, currency and equipment.
// Entry order is acquisition order.
type Inventory struct {
	catalog  Catalog
	entries  []Entry
	gold     int
	xp       int
	mainHand string
}

// New creates an empty inventory backed by a catalog.
func New(catalog Catalog) *Inventory {
	if catalog == nil {
		catalog = Catalog{}
	}
	return &Inventory{catalog: catalog}
}

// Catalog returns the item catalog.
func (inv *Inventory) Catalog() Catalog {
	return inv.catalog
}

func (inv *Inventory) index(id string) int {
	return slices.IndexFunc(inv.entries, func(e Entry) bool { return e.Item.ID == id })
}

// Grant adds one unit of the item id.
func (inv *Inventory) Grant(id string) {
	inv.Add(id, 1)
}

// Add adds count units of the item id. Non-stacking items are held at most
// once.
func (inv *Inventory) Add(id string, count int) {
	if id == "" || count <= 0 {
		return
	}
	item := inv.catalog.Lookup(id)
	if i := inv.index(id); i >= 0 {
		if item.Stackable {
			inv.entries[i].Count += count
		}
		return
	}
	if !item.Stackable {
		count = 1
	}
	inv.entries = append(inv.entries, Entry{Item: item, Count: count})
}

// Has reports whether the inventory holds at least one unit of id.
func (inv *Inventory) Has(id string) bool {
	return inv.index(id) >= 0
}

// Count returns the units held of id.
func (inv *Inventory) Count(id string) int {
	if i := inv.index(id); i >= 0 {
		return inv.entries[i].Count
	}
	return 0
}

// Get returns the held item definition for id.
func (inv *Inventory) Get(id string) (Item, bool) {
	if i := inv.index(id); i >= 0 {
		return inv.entries[i].Item, true
	}
	return Item{}, false
}

// Consume uses up one unit of a stacking item, or removes a non-stacking
// item entirely. Removing the equipped item unequips it.
func (inv *Inventory) Consume(id string) error {
	i := inv.index(id)
	if i < 0 {
		return fmt.Errorf("consume %q: %w", id, ErrItemNotOwned)
	}
	if inv.entries[i].Item.Stackable && inv.entries[i].Count > 1 {
		inv.entries[i].Count--
		return nil
	}
	inv.entries = slices.Delete(inv.entries, i, i+1)
	if inv.mainHand == id {
		inv.mainHand = ""
	}
	return nil
}

// Remove takes an item out of the inventory regardless of stack size.
func (inv *Inventory) Remove(id string) error {
	i := inv.index(id)
	if i < 0 {
		return fmt.Errorf("remove %q: %w", id, ErrItemNotOwned)
	}
	inv.entries = slices.Delete(inv.entries, i, i+1)
	if inv.mainHand == id {
		inv.mainHand = ""
	}
	return nil
}

// Equip puts a held main-hand item in the main hand.
func (inv *Inventory) Equip(id string) error {
	item, ok := inv.Get(id)
	if !ok {
		return fmt.Errorf("equip %q: %w", id, ErrItemNotOwned)
	}
	if item.Slot != SlotMainHand {
		return fmt.Errorf("equip %q: %w", id, ErrNotEquipable)
	}
	inv.mainHand = id
	return nil
}

// MainHand returns the equipped main-hand item.
func (inv *Inventory) MainHand() (Item, bool) {
	if inv.mainHand == "" {
		return Item{}, false
	}
	return inv.Get(inv.mainHand)
}

// Entries returns a copy of the inventory lines.
func (inv *Inventory) Entries() []Entry {
	return slices.Clone(inv.entries)
}

func (inv *Inventory) Gold() int { return inv.gold }
func (inv *Inventory) XP() int   { return inv.xp }

func (inv *Inventory) AddGold(n int) { inv.gold += n }
func (inv *Inventory) AddXP(n int)   { inv.xp += n }

// Record is the serializable form of an inventory.
type Record struct {
	Items    map[string]int `json:"items,omitempty"`
	Order    []string       `json:"order,omitempty"`
	Gold     int            `json:"gold"`
	XP       int            `json:"xp"`
	MainHand string         `json:"main_hand,omitempty"`
}

// Record snapshots the inventory.
func (inv *Inventory) Record() Record {
	r := Record{
		Items:    make(map[string]int, len(inv.entries)),
		Gold:     inv.gold,
		XP:       inv.xp,
		MainHand: inv.mainHand,
	}
	for _, e := range inv.entries {
		r.Items[e.Item.ID] = e.Count
		r.Order = append(r.Order, e.Item.ID)
	}
	return r
}

// FromRecord rebuilds an inventory from a snapshot.
func FromRecord(catalog Catalog, r Record) *Inventory {
	inv := New(catalog)
	for _, id := range r.Order {
		n := r.Items[id]
		if n <= 0 {
			continue
		}
		item := inv.catalog.Lookup(id)
		inv.entries = append(inv.entries, Entry{Item: item, Count: n})
	}
	inv.gold = r.Gold
	inv.xp = r.XP
	if r.MainHand != "" && inv.Has(r.MainHand) {
		inv.mainHand = r.MainHand
	}
	return inv
}

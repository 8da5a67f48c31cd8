// Package worldmap holds world map records and resolves which pins and paths
// the player can currently see.
package worldmap

// Position is a pin's location on the map image, in image units.
type Position struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
}

// Visibility is the reveal rule for a location.
type Visibility struct {
	AlwaysVisible bool     `json:"alwaysVisible,omitempty" yaml:"alwaysVisible,omitempty"`
	RevealFlag    string   `json:"revealFlag,omitempty" yaml:"revealFlag,omitempty"`
	RevealQuests  []string `json:"revealQuests,omitempty" yaml:"revealQuests,omitempty"`
}

// Pin is a location marker on a map. Its visibility is a projection of the
// location's rule.
type Pin struct {
	LocationID  string   `json:"locationId" yaml:"locationId"`
	DisplayName string   `json:"displayName" yaml:"displayName"`
	Position    Position `json:"position" yaml:"position"`
	Style       string   `json:"style,omitempty" yaml:"style,omitempty"`
	Visibility  `yaml:",inline"`
}

// Path connects two locations.
type Path struct {
	PathID                  string     `json:"pathId" yaml:"pathId"`
	FromLocationID          string     `json:"fromLocationId" yaml:"fromLocationId"`
	ToLocationID            string     `json:"toLocationId" yaml:"toLocationId"`
	Style                   string     `json:"style,omitempty" yaml:"style,omitempty"`
	VisibleWhenBothRevealed bool       `json:"visibleWhenBothRevealed,omitempty" yaml:"visibleWhenBothRevealed,omitempty"`
	VisibleWhenOneRevealed  bool       `json:"visibleWhenOneRevealed,omitempty" yaml:"visibleWhenOneRevealed,omitempty"`
	Waypoints               []Position `json:"waypoints,omitempty" yaml:"waypoints,omitempty"`
}

// Map is a region map record.
type Map struct {
	MapID        string `json:"mapId" yaml:"mapId"`
	RegionID     string `json:"regionId,omitempty" yaml:"regionId,omitempty"`
	MapImagePath string `json:"mapImagePath,omitempty" yaml:"mapImagePath,omitempty"`
	Pins         []Pin  `json:"pins" yaml:"pins"`
	Paths        []Path `json:"paths,omitempty" yaml:"paths,omitempty"`
}

// Rules returns the visibility rules of each location on the map. Pins that
// share a location contribute one rule each; any of them revealing the
// location is enough.
func (m *Map) Rules() map[string][]Visibility {
	rules := make(map[string][]Visibility, len(m.Pins))
	for _, p := range m.Pins {
		rules[p.LocationID] = append(rules[p.LocationID], p.Visibility)
	}
	return rules
}

// IsPathVisible applies a path's policy to the visibility of its ends. A
// path with neither policy set is never visible. When both are set the
// stricter both-revealed policy applies.
func IsPathVisible(p Path, fromVisible, toVisible bool) bool {
	switch {
	case p.VisibleWhenBothRevealed:
		return fromVisible && toVisible
	case p.VisibleWhenOneRevealed:
		return fromVisible || toVisible
	}
	return false
}

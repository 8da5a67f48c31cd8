package flags

import (
	"fmt"
	"maps"
	"strings"
	"unicode"
)

// Recognized sentinel values. An absent key is treated as False for gating.
const (
	True      = "true"
	False     = "false"
	Active    = "active"
	Concluded = "concluded"
)

// Store is the process-wide flag mapping. It is written by every component
// and is not safe for concurrent use.
type Store struct {
	vals map[string]string
}

// NewStore returns an empty flag store.
func NewStore() *Store {
	return &Store{vals: make(map[string]string)}
}

// FromMap builds a store seeded with a copy of m.
func FromMap(m map[string]string) *Store {
	s := NewStore()
	maps.Copy(s.vals, m)
	return s
}

// Get returns the value of a flag and whether it has ever been set.
func (s *Store) Get(name string) (string, bool) {
	v, ok := s.vals[name]
	return v, ok
}

// Set writes a flag, overwriting any previous value. Flags are never removed.
func (s *Store) Set(name, value string) {
	s.vals[name] = value
}

// IsTrue reports whether the flag is exactly "true".
func (s *Store) IsTrue(name string) bool {
	return s.vals[name] == True
}

// IsFalse reports whether the flag is absent or exactly "false".
func (s *Store) IsFalse(name string) bool {
	v, ok := s.vals[name]
	return !ok || v == False
}

// IsRevealing reports whether the flag is present and not "false". Quest
// state values ("active", "concluded") count as revealing.
func (s *Store) IsRevealing(name string) bool {
	v, ok := s.vals[name]
	return ok && v != False
}

// Snapshot returns a copy of every flag.
func (s *Store) Snapshot() map[string]string {
	return maps.Clone(s.vals)
}

// Len returns the number of flags ever set.
func (s *Store) Len() int {
	return len(s.vals)
}

// ValidName reports whether name can be used as a flag key.
func ValidName(name string) bool {
	if name == "" {
		return false
	}
	return strings.IndexFunc(name, unicode.IsSpace) < 0
}

// ParseValue validates a flag value authored in content. Only the sentinel
// values are accepted.
func ParseValue(v string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case True:
		return True, nil
	case False:
		return False, nil
	case Active:
		return Active, nil
	case Concluded:
		return Concluded, nil
	}
	return "", fmt.Errorf("unrecognized flag value %q", v)
}

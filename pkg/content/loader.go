// Package content loads rooms, quests, maps, items and the world manifest
// from a data directory of JSON or YAML files.
package content

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jwebster45206/quest-engine/pkg/inventory"
	"github.com/jwebster45206/quest-engine/pkg/quest"
	"github.com/jwebster45206/quest-engine/pkg/room"
	"github.com/jwebster45206/quest-engine/pkg/worldmap"
)

var (
	ErrContentNotFound = errors.New("content not found")
	ErrInvalidContent  = errors.New("invalid content")
)

// Subdirectories and files of a data directory.
const (
	RoomsDir  = "rooms"
	QuestsDir = "quests"
	MapsDir   = "maps"
	ItemsFile = "items"
	WorldFile = "world"
)

var extensions = []string{".json", ".yaml", ".yml"}

// FileLoader reads content records from disk.
type FileLoader struct {
	dataDir string
	strict  bool
	logger  *slog.Logger
}

// NewFileLoader creates a loader rooted at dataDir.
func NewFileLoader(dataDir string, logger *slog.Logger) *FileLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileLoader{dataDir: dataDir, logger: logger}
}

// Strict makes the loader reject unknown fields.
// Returns the FileLoader for method chaining
func (l *FileLoader) Strict() *FileLoader {
	l.strict = true
	return l
}

// DataDir returns the root directory.
func (l *FileLoader) DataDir() string { return l.dataDir }

// find returns the first existing file for base with a known extension.
func (l *FileLoader) find(dir, base string) (string, error) {
	if base == "" || strings.ContainsAny(base, `/\`) || strings.Contains(base, "..") {
		return "", fmt.Errorf("%w: bad id %q", ErrContentNotFound, base)
	}
	for _, ext := range extensions {
		path := filepath.Join(l.dataDir, dir, base+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrContentNotFound, filepath.Join(dir, base))
}

// DecodeFile decodes a JSON or YAML file by extension.
func DecodeFile(path string, v any, strict bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidContent, path, err)
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(v); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidContent, path, err)
		}
	}
	return nil
}

func (l *FileLoader) load(dir, id string, v any) error {
	path, err := l.find(dir, id)
	if err != nil {
		l.logger.Warn("Content not found", "dir", dir, "id", id)
		return err
	}
	l.logger.Debug("Loading content", "path", path)
	return DecodeFile(path, v, l.strict)
}

// LoadRoom loads and validates a room record.
func (l *FileLoader) LoadRoom(ctx context.Context, id string) (*room.Room, error) {
	var r room.Room
	if err := l.load(RoomsDir, id, &r); err != nil {
		if errors.Is(err, ErrContentNotFound) {
			return nil, fmt.Errorf("%w: %w", room.ErrRoomNotFound, err)
		}
		return nil, err
	}
	if r.ID == "" {
		r.ID = id
	}
	if err := ValidateRoom(&r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LoadQuest loads and validates a quest record.
func (l *FileLoader) LoadQuest(ctx context.Context, id string) (*quest.Quest, error) {
	var q quest.Quest
	if err := l.load(QuestsDir, id, &q); err != nil {
		return nil, err
	}
	if q.ID == "" {
		q.ID = id
	}
	if err := q.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidContent, err)
	}
	return &q, nil
}

// LoadMap loads a map record.
func (l *FileLoader) LoadMap(ctx context.Context, id string) (*worldmap.Map, error) {
	var m worldmap.Map
	if err := l.load(MapsDir, id, &m); err != nil {
		return nil, err
	}
	if m.MapID == "" {
		m.MapID = id
	}
	return &m, nil
}

// LoadItems loads the item catalog. A missing catalog is empty.
func (l *FileLoader) LoadItems(ctx context.Context) (inventory.Catalog, error) {
	path, err := l.find("", ItemsFile)
	if err != nil {
		return inventory.Catalog{}, nil
	}
	var items []inventory.Item
	if err := DecodeFile(path, &items, l.strict); err != nil {
		return nil, err
	}
	catalog := make(inventory.Catalog, len(items))
	for _, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("%w: item without id in %s", ErrInvalidContent, path)
		}
		catalog[it.ID] = it
	}
	return catalog, nil
}

// LoadWorld loads and validates the world manifest.
func (l *FileLoader) LoadWorld(ctx context.Context) (*World, error) {
	path, err := l.find("", WorldFile)
	if err != nil {
		return nil, err
	}
	var w World
	if err := DecodeFile(path, &w, l.strict); err != nil {
		return nil, err
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return &w, nil
}

// List returns the ids of every record in a content subdirectory, sorted.
func (l *FileLoader) List(dir string) ([]string, error) {
	root := filepath.Join(l.dataDir, dir)
	var ids []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root {
				return filepath.SkipDir
			}
			return nil
		}
		ext := filepath.Ext(path)
		if !slices.Contains(extensions, ext) {
			return nil
		}
		ids = append(ids, strings.TrimSuffix(filepath.Base(path), ext))
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}
	slices.Sort(ids)
	return slices.Compact(ids), nil
}

// ValidateRoom checks the dialogues and exits of a room.
func ValidateRoom(r *room.Room) error {
	var errs []string
	for i := range r.Dialogues {
		if err := r.Dialogues[i].Validate(); err != nil {
			errs = append(errs, err.Error())
		}
	}
	for i, e := range r.Exits {
		if e.Name == "" || e.LeadsTo == "" {
			errs = append(errs, fmt.Sprintf("exit %d needs exit_name and leads_to", i))
		}
	}
	for i, a := range r.Actions {
		if a.ID == "" {
			errs = append(errs, fmt.Sprintf("action %d needs action_id", i))
		}
	}
	if r.Combat != nil && r.Combat.EnemyName == "" {
		errs = append(errs, "combat needs enemy_name")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: room %s: %s", ErrInvalidContent, r.ID, strings.Join(errs, "; "))
	}
	return nil
}

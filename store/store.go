package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"deckclip/model"

	"github.com/apex/log"
	"github.com/google/renameio/v2"
)

// Defaults are seeded when the backing file does not exist yet.
var Defaults = []model.Entry{
	{ID: "1", Name: "SteamDeck=0", Command: "SteamDeck=0 %command%"},
	{ID: "2", Name: "Proton log", Command: "PROTON_LOG=1 %command%"},
	{ID: "3", Name: "DXVK HUD", Command: "DXVK_HUD=fps %command%"},
}

// Store keeps the entries in memory and writes the whole list back to a
// single JSON file after every mutation. It is not safe for concurrent use.
type Store struct {
	path    string
	entries []model.Entry
}

// New binds a store to path and loads it.
func New(path string) *Store {
	s := &Store{path: path}
	s.Load()
	return s
}

func (s *Store) Path() string {
	return s.path
}

// Load replaces the in-memory entries with the contents of the backing file.
// A missing file is seeded with Defaults; an unreadable or malformed one
// leaves the store empty.
func (s *Store) Load() {
	ctx := log.WithField("path", s.path)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		ctx.Info("no entries file, seeding defaults")
		s.entries = slices.Clone(Defaults)
		s.save()
		return
	}
	if err != nil {
		ctx.WithError(err).Error("failed to read entries")
		s.entries = nil
		return
	}

	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		ctx.WithError(err).Error("failed to parse entries")
		s.entries = nil
		return
	}

	s.entries = entries
	ctx.WithField("count", len(entries)).Debug("loaded entries")
}

// List returns a copy of the entries in creation order.
func (s *Store) List() []model.Entry {
	out := make([]model.Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Get returns the first entry with the given id.
func (s *Store) Get(id string) (model.Entry, bool) {
	for _, e := range s.entries {
		if e.ID == id {
			return e, true
		}
	}
	return model.Entry{}, false
}

func (s *Store) Add(name, command string) model.Entry {
	e := model.Entry{
		ID:      s.nextID(),
		Name:    name,
		Command: command,
	}
	s.entries = append(s.entries, e)
	s.save()
	return e
}

// Update overwrites name and command of the first entry matching id. Nothing
// is written when id is unknown.
func (s *Store) Update(id, name, command string) (model.Entry, bool) {
	for i := range s.entries {
		if s.entries[i].ID != id {
			continue
		}
		s.entries[i].Name = name
		s.entries[i].Command = command
		s.save()
		return s.entries[i], true
	}
	return model.Entry{}, false
}

// Delete removes every entry matching id. It always reports true.
func (s *Store) Delete(id string) bool {
	s.entries = slices.DeleteFunc(s.entries, func(e model.Entry) bool {
		return e.ID == id
	})
	s.save()
	return true
}

// nextID is one more than the largest numeric id. Non-numeric ids are
// skipped.
func (s *Store) nextID() string {
	highest := 0
	for _, e := range s.entries {
		n, err := strconv.Atoi(e.ID)
		if err != nil {
			continue
		}
		highest = max(highest, n)
	}
	return strconv.Itoa(highest + 1)
}

// save logs write failures; memory stays the only copy until the next
// successful write.
func (s *Store) save() {
	if err := s.write(); err != nil {
		log.WithField("path", s.path).WithError(err).Error("failed to save entries")
	}
}

func (s *Store) write() error {
	entries := s.entries
	if entries == nil {
		entries = []model.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("encode entries: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0755); err != nil {
		return fmt.Errorf("create settings dir: %w", err)
	}
	// Temp file in the same directory, fsync, rename over the target.
	if err := renameio.WriteFile(s.path, data, 0644); err != nil {
		return fmt.Errorf("replace entries file: %w", err)
	}
	return nil
}

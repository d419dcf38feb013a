package history

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/labelsafe/backend/internal/domain"
)

// DefaultCapacity is the bound on retained scan entries.
const DefaultCapacity = 50

// Store is a bounded scan history: newest first, unique by code, capped
// at its capacity. It can optionally persist to a JSON file, loaded on
// startup and written through on every append.
type Store struct {
	mutex    sync.RWMutex
	entries  []domain.HistoryEntry
	capacity int
	filePath string
}

// NewStore creates a history store. capacity <= 0 selects the default;
// filePath may be empty for a purely in-memory store.
func NewStore(capacity int, filePath string) (*Store, error) {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}

	s := &Store{
		capacity: capacity,
		filePath: filePath,
	}

	if filePath != "" {
		if err := s.load(); err != nil {
			return nil, fmt.Errorf("failed to load history: %w", err)
		}
	}

	return s, nil
}

// Append records a completed classification. An existing entry for the
// same code is replaced and the entry moves to the front.
func (s *Store) Append(entry domain.HistoryEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	kept := make([]domain.HistoryEntry, 0, len(s.entries)+1)
	kept = append(kept, entry)
	for _, e := range s.entries {
		if e.Code != entry.Code {
			kept = append(kept, e)
		}
	}
	if len(kept) > s.capacity {
		kept = kept[:s.capacity]
	}
	s.entries = kept

	if s.filePath != "" {
		return s.persist()
	}
	return nil
}

// Entries returns a copy of the history, newest first.
func (s *Store) Entries() []domain.HistoryEntry {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	out := make([]domain.HistoryEntry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of retained entries.
func (s *Store) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.entries)
}

// load reads the persisted history. A missing file is not an error.
func (s *Store) load() error {
	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	var entries []domain.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return err
	}

	if len(entries) > s.capacity {
		entries = entries[:s.capacity]
	}
	s.entries = entries
	return nil
}

// persist writes the history atomically via a temp file rename.
func (s *Store) persist() error {
	data, err := json.Marshal(s.entries)
	if err != nil {
		return err
	}

	tmp := s.filePath + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.filePath)
}

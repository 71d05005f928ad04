package store

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// MemoryStore keeps scripts in memory. Contents are lost when the process
// exits.
type MemoryStore struct {
	mu       sync.RWMutex
	scripts  map[string]storedScript
	revision int64
	closed   bool
}

type storedScript struct {
	source   string
	revision int64
	updated  time.Time
}

// Compile-time interface check.
var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		scripts: make(map[string]storedScript),
	}
}

// Save implements Store.
func (m *MemoryStore) Save(name, source string) error {
	if name == "" {
		return ErrInvalidName
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	m.revision++
	m.scripts[name] = storedScript{
		source:   source,
		revision: m.revision,
		updated:  time.Now().UTC(),
	}
	return nil
}

// Load implements Store.
func (m *MemoryStore) Load(name string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", ErrStoreClosed
	}

	s, ok := m.scripts[name]
	if !ok {
		return "", ErrNotFound
	}
	return s.source, nil
}

// List implements Store.
func (m *MemoryStore) List() ([]Info, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return nil, ErrStoreClosed
	}

	infos := make([]Info, 0, len(m.scripts))
	for name, s := range m.scripts {
		infos = append(infos, Info{
			Name:     name,
			Revision: s.revision,
			Updated:  s.updated,
			Size:     int64(len(s.source)),
		})
	}
	slices.SortFunc(infos, func(a, b Info) int {
		return cmp.Compare(a.Revision, b.Revision)
	})
	return infos, nil
}

// Delete implements Store.
func (m *MemoryStore) Delete(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return ErrStoreClosed
	}

	delete(m.scripts, name)
	return nil
}

// Close implements Store.
func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.closed = true
	m.scripts = nil
	return nil
}

// Len returns the number of stored scripts.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.scripts)
}

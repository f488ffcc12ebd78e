package knowledge

import (
	"context"
	"sort"
	"sync"

	"github.com/doeshing/nixwish/internal/domain"
	"github.com/doeshing/nixwish/internal/ports"
)

// MemoryStore is an in-memory KnowledgeStore. It backs tests and serves as the
// fallback when the SQLite database cannot be opened.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]domain.KnowledgeEntry
	aliases map[string]string
}

// NewMemoryStore builds an empty store, optionally pre-populated.
func NewMemoryStore(seed ...domain.KnowledgeEntry) *MemoryStore {
	s := &MemoryStore{
		entries: make(map[string]domain.KnowledgeEntry),
		aliases: make(map[string]string),
	}
	for _, e := range seed {
		_ = s.Upsert(context.Background(), e)
	}
	return s
}

// Get implements ports.KnowledgeStore.
func (s *MemoryStore) Get(_ context.Context, name string) (domain.KnowledgeEntry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok, nil
}

// ByAlias implements ports.KnowledgeStore.
func (s *MemoryStore) ByAlias(ctx context.Context, alias string) (domain.KnowledgeEntry, bool, error) {
	s.mu.RLock()
	name, ok := s.aliases[alias]
	s.mu.RUnlock()
	if !ok {
		return domain.KnowledgeEntry{}, false, nil
	}
	return s.Get(ctx, name)
}

// All implements ports.KnowledgeStore.
func (s *MemoryStore) All(context.Context) ([]domain.KnowledgeEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]domain.KnowledgeEntry, 0, len(s.entries))
	for _, e := range s.entries {
		entries = append(entries, e)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Upsert implements ports.KnowledgeStore.
func (s *MemoryStore) Upsert(_ context.Context, entry domain.KnowledgeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if old, ok := s.entries[entry.Name]; ok {
		for _, a := range old.Aliases {
			delete(s.aliases, a)
		}
	}
	s.entries[entry.Name] = entry
	for _, a := range entry.Aliases {
		s.aliases[a] = entry.Name
	}
	return nil
}

var _ ports.KnowledgeStore = (*MemoryStore)(nil)

// Package history guarda o histórico recente de uploads de planilha.
package history

import (
	"context"
	"sync"

	"github.com/xavierca1/leadhub/internal/entity"
)

const (
	MaxEntries   = 100
	DefaultLimit = 10
)

// MemoryStore é um ring buffer de tamanho fixo protegido por mutex.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []entity.UploadHistoryEntry
	next    int
	full    bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make([]entity.UploadHistoryEntry, MaxEntries)}
}

func (s *MemoryStore) Append(_ context.Context, entry entity.UploadHistoryEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[s.next] = entry
	s.next = (s.next + 1) % MaxEntries
	if s.next == 0 {
		s.full = true
	}
	return nil
}

// List devolve até limit entradas, da mais recente para a mais antiga.
func (s *MemoryStore) List(_ context.Context, limit int) ([]entity.UploadHistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.newestFirst(clampLimit(limit)), nil
}

func (s *MemoryStore) Stats(_ context.Context) (entity.UploadStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return entity.SummarizeUploads(s.newestFirst(MaxEntries)), nil
}

func (s *MemoryStore) newestFirst(limit int) []entity.UploadHistoryEntry {
	size := s.next
	if s.full {
		size = MaxEntries
	}
	if limit > size {
		limit = size
	}

	out := make([]entity.UploadHistoryEntry, 0, limit)
	for i := 1; i <= limit; i++ {
		idx := (s.next - i + MaxEntries) % MaxEntries
		out = append(out, s.entries[idx])
	}
	return out
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxEntries {
		return MaxEntries
	}
	return limit
}

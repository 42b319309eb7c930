package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"evidly-workers/internal/common/errors"
	"evidly-workers/internal/models"
)

// MemoryStore is the demo-mode history. It also implements Searcher with a
// plain substring match.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []models.ReportHistoryEntry
	byID    map[string]int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: map[string]int{}}
}

func (m *MemoryStore) Append(_ context.Context, entry models.ReportHistoryEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.byID[entry.ID]; exists {
		return errors.NewHistoryAppendFailedError(fmt.Errorf("entry %s already exists", entry.ID))
	}
	m.byID[entry.ID] = len(m.entries)
	m.entries = append(m.entries, entry.Clone())
	return nil
}

func (m *MemoryStore) List(_ context.Context, locationID string, limit int) ([]models.ReportHistoryEntry, error) {
	return m.filter(locationID, limit, func(models.ReportHistoryEntry) bool { return true }), nil
}

func (m *MemoryStore) Get(_ context.Context, id string) (*models.ReportHistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	i, ok := m.byID[id]
	if !ok {
		return nil, errors.NewHistoryNotFoundError(id)
	}
	entry := m.entries[i].Clone()
	return &entry, nil
}

func (m *MemoryStore) Search(_ context.Context, locationID, query string, limit int) ([]models.ReportHistoryEntry, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	return m.filter(locationID, limit, func(e models.ReportHistoryEntry) bool {
		if q == "" {
			return true
		}
		if strings.Contains(strings.ToLower(e.JurisdictionKey), q) || strings.Contains(strings.ToLower(e.GeneratedBy), q) {
			return true
		}
		for _, s := range e.Sections {
			if strings.Contains(strings.ToLower(string(s)), q) {
				return true
			}
		}
		return false
	}), nil
}

// Len reports the number of stored entries.
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

func (m *MemoryStore) filter(locationID string, limit int, keep func(models.ReportHistoryEntry) bool) []models.ReportHistoryEntry {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Walk newest insertion first so that equal timestamps list the later append first.
	out := []models.ReportHistoryEntry{}
	for i := len(m.entries) - 1; i >= 0; i-- {
		if e := m.entries[i]; e.LocationID == locationID && keep(e) {
			out = append(out, e.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })

	if limit = ClampLimit(limit); len(out) > limit {
		out = out[:limit]
	}
	return out
}

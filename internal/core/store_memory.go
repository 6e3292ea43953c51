package core

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// MemoryStore is a Store backed by process memory. It enforces the same
// (owner, phone) uniqueness as the Postgres schema. Used by tests and by
// local runs without a database.
type MemoryStore struct {
	mu      sync.RWMutex
	leads   map[uuid.UUID]Lead
	history map[uuid.UUID][]HistoryEntry
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		leads:   make(map[uuid.UUID]Lead),
		history: make(map[uuid.UUID][]HistoryEntry),
	}
}

var _ Store = (*MemoryStore)(nil)

func (m *MemoryStore) InsertLead(ctx context.Context, lead Lead, entry HistoryEntry) error {
	return m.InsertLeads(ctx, []Lead{lead}, []HistoryEntry{entry})
}

func (m *MemoryStore) InsertLeads(ctx context.Context, leads []Lead, entries []HistoryEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Check the whole batch before writing anything.
	seen := make(map[string]bool, len(leads))
	for _, l := range leads {
		if _, exists := m.leads[l.ID]; exists {
			return fmt.Errorf("duplicate key: lead id %s already exists", l.ID)
		}
		key := l.OwnerID + "|" + l.Phone
		if seen[key] || m.phoneTaken(l.OwnerID, l.Phone, uuid.Nil) {
			return fmt.Errorf("duplicate key: owner already has a lead with phone %s", l.Phone)
		}
		seen[key] = true
	}
	for _, e := range entries {
		if _, ok := m.leads[e.LeadID]; !ok && !containsLead(leads, e.LeadID) {
			return fmt.Errorf("history entry references unknown lead %s", e.LeadID)
		}
	}

	for _, l := range leads {
		m.leads[l.ID] = cloneLead(l)
	}
	for _, e := range entries {
		m.history[e.LeadID] = append(m.history[e.LeadID], e)
	}
	return nil
}

func (m *MemoryStore) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	l, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}
	return cloneLead(l), nil
}

func (m *MemoryStore) ListLeads(ctx context.Context) ([]Lead, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Lead, 0, len(m.leads))
	for _, l := range m.leads {
		out = append(out, cloneLead(l))
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID.String() < out[j].ID.String()
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (m *MemoryStore) UpdateLead(ctx context.Context, id uuid.UUID, fn UpdateFunc) (Lead, error) {
	if err := ctx.Err(); err != nil {
		return Lead{}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.leads[id]
	if !ok {
		return Lead{}, ErrLeadNotFound
	}

	next, entry, err := fn(cloneLead(current))
	if err != nil {
		return Lead{}, err
	}
	if entry == nil {
		return cloneLead(current), nil
	}
	if next.Phone != current.Phone && m.phoneTaken(next.OwnerID, next.Phone, id) {
		return Lead{}, fmt.Errorf("duplicate key: owner already has a lead with phone %s", next.Phone)
	}

	m.leads[id] = cloneLead(next)
	m.history[id] = append(m.history[id], *entry)
	return cloneLead(next), nil
}

func (m *MemoryStore) ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entries := m.history[leadID]
	out := make([]HistoryEntry, 0, min(len(entries), max(limit, 0)))
	for i := len(entries) - 1; i >= 0 && len(out) < limit; i-- {
		out = append(out, entries[i])
	}
	return out, nil
}

func (m *MemoryStore) phoneTaken(owner, phone string, except uuid.UUID) bool {
	for id, l := range m.leads {
		if id != except && l.OwnerID == owner && l.Phone == phone {
			return true
		}
	}
	return false
}

func containsLead(leads []Lead, id uuid.UUID) bool {
	return slices.ContainsFunc(leads, func(l Lead) bool { return l.ID == id })
}

// cloneLead copies the slice and pointer fields so callers cannot mutate
// stored state.
func cloneLead(l Lead) Lead {
	l.Tags = slices.Clone(l.Tags)
	if l.BudgetMin != nil {
		v := *l.BudgetMin
		l.BudgetMin = &v
	}
	if l.BudgetMax != nil {
		v := *l.BudgetMax
		l.BudgetMax = &v
	}
	return l
}

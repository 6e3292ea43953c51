package core

import (
	"context"

	"github.com/google/uuid"
)

// UpdateFunc computes the next state of a lead from its current stored
// state. Returning a nil entry means nothing changed and nothing is written.
// Returning an error aborts the update with no changes applied.
type UpdateFunc func(current Lead) (next Lead, entry *HistoryEntry, err error)

// Store persists leads and their history. Every method is atomic: either
// all of its writes are applied or none are.
type Store interface {
	// InsertLead stores a new lead together with its creation entry.
	InsertLead(ctx context.Context, lead Lead, entry HistoryEntry) error

	// InsertLeads stores a batch of leads and their creation entries in
	// one all-or-nothing operation.
	InsertLeads(ctx context.Context, leads []Lead, entries []HistoryEntry) error

	// GetLead returns ErrLeadNotFound when no lead has the id.
	GetLead(ctx context.Context, id uuid.UUID) (Lead, error)

	// ListLeads returns every lead, most recently updated first.
	ListLeads(ctx context.Context) ([]Lead, error)

	// UpdateLead reads the lead and applies fn to that same read while
	// holding off concurrent writers to the lead.
	UpdateLead(ctx context.Context, id uuid.UUID, fn UpdateFunc) (Lead, error)

	// ListHistory returns up to limit entries for a lead, newest first.
	ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error)
}

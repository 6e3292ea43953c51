package core

import (
	"context"
	"errors"
	"time"

	"github.com/JonMunkholm/leadintake/internal/logging"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// CreateLead validates raw and stores it as a new lead owned by actor,
// together with its creation history entry. New leads always start in
// StatusNew; later stages are reached through UpdateLead.
func (s *Service) CreateLead(ctx context.Context, actor string, raw RawLead) (_ *Lead, err error) {
	ctx, done := s.startOp(ctx, "create")
	defer done(&err)

	if actor == "" {
		return nil, ErrAuthRequired
	}

	validated, err := Validate(raw)
	if err != nil {
		return nil, err
	}
	validated.Status = StatusNew

	now := s.now()
	lead := Lead{
		ID:            uuid.New(),
		ValidatedLead: validated,
		OwnerID:       actor,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	entry := newHistoryEntry(lead.ID, actor, now, CreatedDiff())

	if err := s.store.InsertLead(ctx, lead, entry); err != nil {
		return nil, classifyWriteError("insert lead", err)
	}

	logging.WithActor(ctx, actor).Info("lead created",
		append([]any{"lead_id", lead.ID, "status", lead.Status}, clientAttrs(ctx)...)...)
	return &lead, nil
}

// UpdateLead applies patch to a lead on behalf of actor.
//
// The actor must own the lead and knownVersion must equal the lead's stored
// update time exactly. Both checks run against the same read that the write
// is based on. A patch that changes nothing returns the lead unchanged and
// records no history. Otherwise the lead and exactly one history entry with
// the changed fields are written together.
func (s *Service) UpdateLead(ctx context.Context, id uuid.UUID, actor string, knownVersion time.Time, patch LeadPatch) (_ *Lead, err error) {
	ctx, done := s.startOp(ctx, "update", attribute.String("lead.id", id.String()))
	defer done(&err)

	if actor == "" {
		return nil, ErrAuthRequired
	}
	log := logging.WithActor(ctx, actor).With("lead_id", id)

	var diff HistoryDiff
	updated, err := s.store.UpdateLead(ctx, id, func(current Lead) (Lead, *HistoryEntry, error) {
		if current.OwnerID != actor {
			return Lead{}, nil, ErrPermissionDenied
		}
		if !current.UpdatedAt.Equal(knownVersion) {
			return Lead{}, nil, ErrConcurrencyConflict
		}

		validated, err := Validate(patch.Apply(current.Raw()))
		if err != nil {
			return Lead{}, nil, err
		}

		diff = DiffLeads(current.ValidatedLead, validated)
		if diff.Empty() {
			return current, nil, nil
		}

		next := current
		next.ValidatedLead = validated
		next.UpdatedAt = s.nextTimestamp(current.UpdatedAt)
		entry := newHistoryEntry(id, actor, next.UpdatedAt, diff)
		return next, &entry, nil
	})
	if err != nil {
		switch {
		case errors.Is(err, ErrConcurrencyConflict):
			log.Warn("lead update conflict", "known_version", FormatVersion(knownVersion))
		case errors.Is(err, ErrPermissionDenied):
			log.Warn("lead update denied")
		}
		return nil, classifyWriteError("update lead", err)
	}

	if diff.Empty() {
		log.Debug("lead update had no changes")
	} else {
		log.Info("lead updated", append([]any{"fields", len(diff.Changes)}, clientAttrs(ctx)...)...)
	}
	return &updated, nil
}

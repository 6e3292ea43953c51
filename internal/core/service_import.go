package core

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/JonMunkholm/leadintake/internal/logging"
	"github.com/google/uuid"
)

// ImportCSV imports leads from a CSV file on behalf of actor.
//
// Invalid rows are reported in the result and skipped; every valid row is
// inserted in one all-or-nothing batch, each lead owned by actor with its
// own creation history entry. A file over the row cap inserts nothing and
// returns the result together with an error wrapping ErrBatchTooLarge. When
// the batch insert fails the result reports zero inserted alongside the
// error.
func (s *Service) ImportCSV(ctx context.Context, actor string, r io.Reader) (_ *ImportResult, err error) {
	ctx, done := s.startOp(ctx, "import")
	defer done(&err)

	start := time.Now()
	if actor == "" {
		return nil, ErrAuthRequired
	}

	if err := s.opts.ImportLimiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.opts.ImportLimiter.Release()

	log := logging.WithActor(ctx, actor)

	plan, err := PlanImport(r, s.opts.MaxImportRows)
	if err != nil {
		if errors.Is(err, ErrBatchTooLarge) && plan != nil {
			log.Warn("lead import rejected", "rows", plan.DataRows, "limit", s.opts.MaxImportRows)
			return &ImportResult{
				Rejected:      plan.DataRows,
				Errors:        plan.Errors,
				BatchRejected: true,
				Duration:      time.Since(start),
			}, err
		}
		return nil, err
	}

	result := &ImportResult{
		Rejected: len(plan.Errors),
		Errors:   plan.Errors,
	}
	if result.Errors == nil {
		result.Errors = []RowError{}
	}

	if len(plan.Leads) > 0 {
		now := s.now()
		leads := make([]Lead, len(plan.Leads))
		entries := make([]HistoryEntry, len(plan.Leads))
		for i, v := range plan.Leads {
			leads[i] = Lead{
				ID:            uuid.New(),
				ValidatedLead: v,
				OwnerID:       actor,
				CreatedAt:     now,
				UpdatedAt:     now,
			}
			entries[i] = newHistoryEntry(leads[i].ID, actor, now, CreatedDiff())
		}

		if err := s.store.InsertLeads(ctx, leads, entries); err != nil {
			result.Duration = time.Since(start)
			log.Error("lead import failed", "rows", len(leads), "error", err)
			return result, classifyWriteError("insert leads", err)
		}
		result.Inserted = len(leads)
	}

	result.Duration = time.Since(start)
	s.metrics.ObserveImport(result.Inserted, result.Rejected)
	log.Info("lead import finished",
		append([]any{
			"inserted", result.Inserted,
			"rejected", result.Rejected,
			"duration", result.Duration,
		}, clientAttrs(ctx)...)...)
	return result, nil
}

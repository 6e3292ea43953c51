package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	db "github.com/JonMunkholm/leadintake/internal/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// TxBeginner is the slice of *pgxpool.Pool the Postgres store needs.
// pgxmock pools satisfy it too.
type TxBeginner interface {
	db.DBTX
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PostgresStore is a Store backed by the leads and lead_history tables.
type PostgresStore struct {
	pool TxBeginner
}

// NewPostgresStore creates a store over a connection pool.
func NewPostgresStore(pool TxBeginner) *PostgresStore {
	return &PostgresStore{pool: pool}
}

var _ Store = (*PostgresStore)(nil)

// withTx runs fn in a transaction, committing on success and rolling back
// on any error.
func (s *PostgresStore) withTx(ctx context.Context, fn func(q *db.Queries) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	if err := fn(db.New(s.pool).WithTx(tx)); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertLead(ctx context.Context, lead Lead, entry HistoryEntry) error {
	hist, err := historyParams(entry)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(q *db.Queries) error {
		if err := q.InsertLead(ctx, leadParams(lead)); err != nil {
			return fmt.Errorf("insert lead: %w", err)
		}
		if err := q.InsertLeadHistory(ctx, hist); err != nil {
			return fmt.Errorf("insert lead history: %w", err)
		}
		return nil
	})
}

// InsertLeads uses COPY for both tables inside one transaction.
func (s *PostgresStore) InsertLeads(ctx context.Context, leads []Lead, entries []HistoryEntry) error {
	if len(leads) == 0 {
		return nil
	}

	leadRows := make([]db.InsertLeadParams, len(leads))
	for i, l := range leads {
		leadRows[i] = leadParams(l)
	}
	histRows := make([]db.InsertLeadHistoryParams, len(entries))
	for i, e := range entries {
		p, err := historyParams(e)
		if err != nil {
			return err
		}
		histRows[i] = p
	}

	return s.withTx(ctx, func(q *db.Queries) error {
		n, err := q.CopyLeads(ctx, leadRows)
		if err != nil {
			return fmt.Errorf("copy leads: %w", err)
		}
		if int(n) != len(leadRows) {
			return fmt.Errorf("copy leads: wrote %d of %d rows", n, len(leadRows))
		}
		if len(histRows) > 0 {
			if _, err := q.CopyLeadHistory(ctx, histRows); err != nil {
				return fmt.Errorf("copy lead history: %w", err)
			}
		}
		return nil
	})
}

func (s *PostgresStore) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	row, err := db.New(s.pool).GetLead(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrLeadNotFound
		}
		return Lead{}, fmt.Errorf("get lead: %w", err)
	}
	return leadFromRow(row), nil
}

func (s *PostgresStore) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := db.New(s.pool).ListLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("list leads: %w", err)
	}
	leads := make([]Lead, len(rows))
	for i, r := range rows {
		leads[i] = leadFromRow(r)
	}
	return leads, nil
}

// UpdateLead locks the row with SELECT ... FOR UPDATE so fn and the write
// see the same state. The UPDATE is also conditional on updated_at.
func (s *PostgresStore) UpdateLead(ctx context.Context, id uuid.UUID, fn UpdateFunc) (Lead, error) {
	var result Lead

	err := s.withTx(ctx, func(q *db.Queries) error {
		row, err := q.GetLeadForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrLeadNotFound
			}
			return fmt.Errorf("lock lead: %w", err)
		}
		current := leadFromRow(row)

		next, entry, err := fn(current)
		if err != nil {
			return err
		}
		if entry == nil {
			result = current
			return nil
		}

		n, err := q.UpdateLead(ctx, updateParams(next, current.UpdatedAt))
		if err != nil {
			return fmt.Errorf("update lead: %w", err)
		}
		if n == 0 {
			return ErrConcurrencyConflict
		}

		hist, err := historyParams(*entry)
		if err != nil {
			return err
		}
		if err := q.InsertLeadHistory(ctx, hist); err != nil {
			return fmt.Errorf("insert lead history: %w", err)
		}

		result = next
		return nil
	})
	if err != nil {
		return Lead{}, err
	}
	return result, nil
}

func (s *PostgresStore) ListHistory(ctx context.Context, leadID uuid.UUID, limit int) ([]HistoryEntry, error) {
	rows, err := db.New(s.pool).ListLeadHistory(ctx, db.ListLeadHistoryParams{
		LeadID: leadID,
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list lead history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(rows))
	for _, r := range rows {
		var diff HistoryDiff
		if err := json.Unmarshal(r.Diff, &diff); err != nil {
			return nil, fmt.Errorf("decode history %s: %w", r.ID, err)
		}
		entries = append(entries, HistoryEntry{
			ID:        r.ID,
			LeadID:    r.LeadID,
			ChangedAt: r.ChangedAt,
			ChangedBy: r.ChangedBy,
			Diff:      diff,
		})
	}
	return entries, nil
}

func leadParams(l Lead) db.InsertLeadParams {
	return db.InsertLeadParams{
		ID:           l.ID,
		FullName:     l.FullName,
		Email:        ToPgText(l.Email),
		Phone:        l.Phone,
		City:         string(l.City),
		PropertyType: string(l.PropertyType),
		Bhk:          ToPgText(string(l.BHK)),
		Purpose:      string(l.Purpose),
		BudgetMin:    ToPgInt8(l.BudgetMin),
		BudgetMax:    ToPgInt8(l.BudgetMax),
		Timeline:     string(l.Timeline),
		Source:       string(l.Source),
		Status:       string(l.Status),
		Notes:        ToPgText(l.Notes),
		Tags:         tagsValue(l.Tags),
		OwnerID:      l.OwnerID,
		CreatedAt:    l.CreatedAt,
		UpdatedAt:    l.UpdatedAt,
	}
}

func updateParams(l Lead, prevUpdated time.Time) db.UpdateLeadParams {
	return db.UpdateLeadParams{
		ID:           l.ID,
		FullName:     l.FullName,
		Email:        ToPgText(l.Email),
		Phone:        l.Phone,
		City:         string(l.City),
		PropertyType: string(l.PropertyType),
		Bhk:          ToPgText(string(l.BHK)),
		Purpose:      string(l.Purpose),
		BudgetMin:    ToPgInt8(l.BudgetMin),
		BudgetMax:    ToPgInt8(l.BudgetMax),
		Timeline:     string(l.Timeline),
		Source:       string(l.Source),
		Status:       string(l.Status),
		Notes:        ToPgText(l.Notes),
		Tags:         tagsValue(l.Tags),
		UpdatedAt:    l.UpdatedAt,
		PrevUpdated:  prevUpdated,
	}
}

func historyParams(e HistoryEntry) (db.InsertLeadHistoryParams, error) {
	diff, err := json.Marshal(e.Diff)
	if err != nil {
		return db.InsertLeadHistoryParams{}, fmt.Errorf("encode history diff: %w", err)
	}
	return db.InsertLeadHistoryParams{
		ID:        e.ID,
		LeadID:    e.LeadID,
		ChangedAt: e.ChangedAt,
		ChangedBy: e.ChangedBy,
		Diff:      diff,
	}, nil
}

func leadFromRow(r db.Lead) Lead {
	return Lead{
		ID: r.ID,
		ValidatedLead: ValidatedLead{
			FullName:     r.FullName,
			Email:        PgTextToString(r.Email),
			Phone:        r.Phone,
			City:         City(r.City),
			PropertyType: PropertyType(r.PropertyType),
			BHK:          BHK(PgTextToString(r.Bhk)),
			Purpose:      Purpose(r.Purpose),
			BudgetMin:    PgInt8ToPtr(r.BudgetMin),
			BudgetMax:    PgInt8ToPtr(r.BudgetMax),
			Timeline:     Timeline(r.Timeline),
			Source:       Source(r.Source),
			Status:       Status(r.Status),
			Notes:        PgTextToString(r.Notes),
			Tags:         tagsValue(r.Tags),
		},
		OwnerID:   r.OwnerID,
		CreatedAt: r.CreatedAt.UTC(),
		UpdatedAt: r.UpdatedAt.UTC(),
	}
}

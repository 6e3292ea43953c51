package database

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// iteratorForCopyLeads implements pgx.CopyFromSource.
type iteratorForCopyLeads struct {
	rows                 []InsertLeadParams
	skippedFirstNextCall bool
}

func (r *iteratorForCopyLeads) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCopyLeads) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ID,
		r.rows[0].FullName,
		r.rows[0].Email,
		r.rows[0].Phone,
		r.rows[0].City,
		r.rows[0].PropertyType,
		r.rows[0].Bhk,
		r.rows[0].Purpose,
		r.rows[0].BudgetMin,
		r.rows[0].BudgetMax,
		r.rows[0].Timeline,
		r.rows[0].Source,
		r.rows[0].Status,
		r.rows[0].Notes,
		r.rows[0].Tags,
		r.rows[0].OwnerID,
		r.rows[0].CreatedAt,
		r.rows[0].UpdatedAt,
	}, nil
}

func (r iteratorForCopyLeads) Err() error {
	return nil
}

// LeadCopyColumns is the column order used by CopyLeads.
var LeadCopyColumns = []string{
	"id", "full_name", "email", "phone", "city", "property_type", "bhk", "purpose",
	"budget_min", "budget_max", "timeline", "source", "status", "notes", "tags",
	"owner_id", "created_at", "updated_at",
}

func (q *Queries) CopyLeads(ctx context.Context, arg []InsertLeadParams) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"leads"}, LeadCopyColumns, &iteratorForCopyLeads{rows: arg})
}

// iteratorForCopyLeadHistory implements pgx.CopyFromSource.
type iteratorForCopyLeadHistory struct {
	rows                 []InsertLeadHistoryParams
	skippedFirstNextCall bool
}

func (r *iteratorForCopyLeadHistory) Next() bool {
	if len(r.rows) == 0 {
		return false
	}
	if !r.skippedFirstNextCall {
		r.skippedFirstNextCall = true
		return true
	}
	r.rows = r.rows[1:]
	return len(r.rows) > 0
}

func (r iteratorForCopyLeadHistory) Values() ([]interface{}, error) {
	return []interface{}{
		r.rows[0].ID,
		r.rows[0].LeadID,
		r.rows[0].ChangedAt,
		r.rows[0].ChangedBy,
		r.rows[0].Diff,
	}, nil
}

func (r iteratorForCopyLeadHistory) Err() error {
	return nil
}

// LeadHistoryCopyColumns is the column order used by CopyLeadHistory.
var LeadHistoryCopyColumns = []string{"id", "lead_id", "changed_at", "changed_by", "diff"}

func (q *Queries) CopyLeadHistory(ctx context.Context, arg []InsertLeadHistoryParams) (int64, error) {
	return q.db.CopyFrom(ctx, pgx.Identifier{"lead_history"}, LeadHistoryCopyColumns, &iteratorForCopyLeadHistory{rows: arg})
}

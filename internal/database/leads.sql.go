package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const leadColumns = `id, full_name, email, phone, city, property_type, bhk, purpose,
       budget_min, budget_max, timeline, source, status, notes, tags,
       owner_id, created_at, updated_at`

const insertLead = `-- name: InsertLead :exec
INSERT INTO leads (
    id, full_name, email, phone, city, property_type, bhk, purpose,
    budget_min, budget_max, timeline, source, status, notes, tags,
    owner_id, created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18
)
`

type InsertLeadParams struct {
	ID           uuid.UUID
	FullName     string
	Email        pgtype.Text
	Phone        string
	City         string
	PropertyType string
	Bhk          pgtype.Text
	Purpose      string
	BudgetMin    pgtype.Int8
	BudgetMax    pgtype.Int8
	Timeline     string
	Source       string
	Status       string
	Notes        pgtype.Text
	Tags         []string
	OwnerID      string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (q *Queries) InsertLead(ctx context.Context, arg InsertLeadParams) error {
	_, err := q.db.Exec(ctx, insertLead,
		arg.ID,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.City,
		arg.PropertyType,
		arg.Bhk,
		arg.Purpose,
		arg.BudgetMin,
		arg.BudgetMax,
		arg.Timeline,
		arg.Source,
		arg.Status,
		arg.Notes,
		arg.Tags,
		arg.OwnerID,
		arg.CreatedAt,
		arg.UpdatedAt,
	)
	return err
}

const getLead = `-- name: GetLead :one
SELECT ` + leadColumns + `
FROM leads
WHERE id = $1
`

func (q *Queries) GetLead(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := q.db.QueryRow(ctx, getLead, id)
	var i Lead
	err := scanLead(row, &i)
	return i, err
}

const getLeadForUpdate = `-- name: GetLeadForUpdate :one
SELECT ` + leadColumns + `
FROM leads
WHERE id = $1
FOR UPDATE
`

func (q *Queries) GetLeadForUpdate(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := q.db.QueryRow(ctx, getLeadForUpdate, id)
	var i Lead
	err := scanLead(row, &i)
	return i, err
}

const listLeads = `-- name: ListLeads :many
SELECT ` + leadColumns + `
FROM leads
ORDER BY updated_at DESC, id
`

func (q *Queries) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := q.db.Query(ctx, listLeads)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Lead
	for rows.Next() {
		var i Lead
		if err := scanLead(rows, &i); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const updateLead = `-- name: UpdateLead :execrows
UPDATE leads SET
    full_name = $2,
    email = $3,
    phone = $4,
    city = $5,
    property_type = $6,
    bhk = $7,
    purpose = $8,
    budget_min = $9,
    budget_max = $10,
    timeline = $11,
    source = $12,
    status = $13,
    notes = $14,
    tags = $15,
    updated_at = $16
WHERE id = $1 AND updated_at = $17
`

type UpdateLeadParams struct {
	ID           uuid.UUID
	FullName     string
	Email        pgtype.Text
	Phone        string
	City         string
	PropertyType string
	Bhk          pgtype.Text
	Purpose      string
	BudgetMin    pgtype.Int8
	BudgetMax    pgtype.Int8
	Timeline     string
	Source       string
	Status       string
	Notes        pgtype.Text
	Tags         []string
	UpdatedAt    time.Time
	PrevUpdated  time.Time
}

// UpdateLead only matches while updated_at still equals PrevUpdated and
// reports the number of rows written.
func (q *Queries) UpdateLead(ctx context.Context, arg UpdateLeadParams) (int64, error) {
	result, err := q.db.Exec(ctx, updateLead,
		arg.ID,
		arg.FullName,
		arg.Email,
		arg.Phone,
		arg.City,
		arg.PropertyType,
		arg.Bhk,
		arg.Purpose,
		arg.BudgetMin,
		arg.BudgetMax,
		arg.Timeline,
		arg.Source,
		arg.Status,
		arg.Notes,
		arg.Tags,
		arg.UpdatedAt,
		arg.PrevUpdated,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLead(row rowScanner, i *Lead) error {
	return row.Scan(
		&i.ID,
		&i.FullName,
		&i.Email,
		&i.Phone,
		&i.City,
		&i.PropertyType,
		&i.Bhk,
		&i.Purpose,
		&i.BudgetMin,
		&i.BudgetMax,
		&i.Timeline,
		&i.Source,
		&i.Status,
		&i.Notes,
		&i.Tags,
		&i.OwnerID,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
}

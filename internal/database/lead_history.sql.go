package database

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const insertLeadHistory = `-- name: InsertLeadHistory :exec
INSERT INTO lead_history (id, lead_id, changed_at, changed_by, diff)
VALUES ($1, $2, $3, $4, $5)
`

type InsertLeadHistoryParams struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ChangedAt time.Time
	ChangedBy string
	Diff      []byte
}

func (q *Queries) InsertLeadHistory(ctx context.Context, arg InsertLeadHistoryParams) error {
	_, err := q.db.Exec(ctx, insertLeadHistory,
		arg.ID,
		arg.LeadID,
		arg.ChangedAt,
		arg.ChangedBy,
		arg.Diff,
	)
	return err
}

const listLeadHistory = `-- name: ListLeadHistory :many
SELECT id, lead_id, changed_at, changed_by, diff
FROM lead_history
WHERE lead_id = $1
ORDER BY changed_at DESC, id
LIMIT $2
`

type ListLeadHistoryParams struct {
	LeadID uuid.UUID
	Limit  int32
}

func (q *Queries) ListLeadHistory(ctx context.Context, arg ListLeadHistoryParams) ([]LeadHistory, error) {
	rows, err := q.db.Query(ctx, listLeadHistory, arg.LeadID, arg.Limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []LeadHistory
	for rows.Next() {
		var i LeadHistory
		if err := rows.Scan(
			&i.ID,
			&i.LeadID,
			&i.ChangedAt,
			&i.ChangedBy,
			&i.Diff,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

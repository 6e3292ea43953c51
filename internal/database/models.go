package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type Lead struct {
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

type LeadHistory struct {
	ID        uuid.UUID
	LeadID    uuid.UUID
	ChangedAt time.Time
	ChangedBy string
	Diff      []byte
}

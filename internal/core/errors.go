package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// Sentinel errors returned by the service. Callers test them with errors.Is.
var (
	ErrAuthRequired        = errors.New("authentication required")
	ErrPermissionDenied    = errors.New("permission denied: actor does not own this lead")
	ErrConcurrencyConflict = errors.New("concurrency conflict: lead was modified since it was read")
	ErrLeadNotFound        = errors.New("lead not found")
	ErrDuplicateLead       = errors.New("duplicate lead")
	ErrBatchTooLarge       = errors.New("batch too large")
	ErrInvalidCSV          = errors.New("invalid csv")
	ErrEmptyFile           = errors.New("empty file")
	ErrInvalidVersion      = errors.New("invalid version")
)

// pgUniqueViolation is the SQLSTATE for unique_violation.
const pgUniqueViolation = "23505"

// PersistenceError is a backend failure with the operation that caused it.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// classifyWriteError wraps a store write failure. Uniqueness violations also
// match ErrDuplicateLead so callers can message them separately.
func classifyWriteError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrDuplicateLead) || errors.Is(err, ErrLeadNotFound) ||
		errors.Is(err, ErrPermissionDenied) || errors.Is(err, ErrConcurrencyConflict) {
		return err
	}
	var vErrs ValidationErrors
	if errors.As(err, &vErrs) {
		return err
	}

	perr := &PersistenceError{Op: op, Err: err}
	if isDuplicateError(err) {
		return fmt.Errorf("%w: %w", ErrDuplicateLead, perr)
	}
	return perr
}

func isDuplicateError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}

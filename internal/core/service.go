package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/JonMunkholm/leadintake/internal/logging"
	"github.com/JonMunkholm/leadintake/internal/metrics"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/JonMunkholm/leadintake/internal/core"

// Defaults applied by NewService when an option is zero.
const (
	DefaultPageSize     = 10
	DefaultHistoryLimit = 5
)

// Options tune a Service. Zero values fall back to the package defaults.
type Options struct {
	PageSize      int
	HistoryLimit  int
	MaxImportRows int
	ImportLimiter *ImportLimiter
	Metrics       *metrics.LeadMetrics
	// Clock returns the current time. Defaults to time.Now.
	Clock func() time.Time
	// TracerProvider receives the operation spans. Defaults to the global
	// provider, which drops spans until an SDK is registered with otel.
	TracerProvider trace.TracerProvider
}

// Service is the entry point for every lead operation. The acting user is
// always passed explicitly.
type Service struct {
	store   Store
	opts    Options
	metrics *metrics.LeadMetrics
	clock   func() time.Time
	tracer  trace.Tracer
}

// NewService creates a Service over store.
func NewService(store Store, opts Options) *Service {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.HistoryLimit <= 0 {
		opts.HistoryLimit = DefaultHistoryLimit
	}
	if opts.MaxImportRows <= 0 {
		opts.MaxImportRows = DefaultMaxImportRows
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	return &Service{
		store:   store,
		opts:    opts,
		metrics: opts.Metrics,
		clock:   clock,
		tracer:  tp.Tracer(tracerName),
	}
}

// PageSize is the number of leads per listing page.
func (s *Service) PageSize() int {
	return s.opts.PageSize
}

// MaxImportRows is the largest CSV an import accepts.
func (s *Service) MaxImportRows() int {
	return s.opts.MaxImportRows
}

// now returns the current time at the precision Postgres stores.
func (s *Service) now() time.Time {
	return s.clock().UTC().Truncate(time.Microsecond)
}

// nextTimestamp returns now, or prev+1µs when the clock has not moved past
// prev. Every update must change the version token.
func (s *Service) nextTimestamp(prev time.Time) time.Time {
	t := s.now()
	if !t.After(prev) {
		t = prev.Add(time.Microsecond)
	}
	return t
}

// startOp opens a span for op. The returned func ends the span and records
// metrics from the final error.
func (s *Service) startOp(ctx context.Context, op string, attrs ...attribute.KeyValue) (context.Context, func(*error)) {
	ctx, span := s.tracer.Start(ctx, "core."+op, trace.WithAttributes(attrs...))
	start := time.Now()
	return ctx, func(errp *error) {
		var err error
		if errp != nil {
			err = *errp
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		s.metrics.ObserveOperation(op, outcome(err), time.Since(start).Seconds())
	}
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	var vErrs ValidationErrors
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &vErrs):
		return "invalid"
	case errors.Is(err, ErrConcurrencyConflict):
		return "conflict"
	case errors.Is(err, ErrPermissionDenied), errors.Is(err, ErrAuthRequired):
		return "denied"
	case errors.Is(err, ErrLeadNotFound):
		return "not_found"
	case errors.Is(err, ErrDuplicateLead):
		return "duplicate"
	case errors.Is(err, ErrBatchTooLarge):
		return "rejected"
	case errors.Is(err, ErrTooManyImports):
		return "busy"
	default:
		return "error"
	}
}

// GetLead returns one lead by id.
func (s *Service) GetLead(ctx context.Context, id uuid.UUID) (_ *Lead, err error) {
	ctx, done := s.startOp(ctx, "get", attribute.String("lead.id", id.String()))
	defer done(&err)

	lead, err := s.store.GetLead(ctx, id)
	if err != nil {
		return nil, err
	}
	return &lead, nil
}

// LeadHistory returns the most recent history entries for a lead, newest
// first. A limit of zero or less uses the configured default.
func (s *Service) LeadHistory(ctx context.Context, id uuid.UUID, limit int) (_ []HistoryEntry, err error) {
	ctx, done := s.startOp(ctx, "history", attribute.String("lead.id", id.String()))
	defer done(&err)

	if limit <= 0 {
		limit = s.opts.HistoryLimit
	}
	if _, err := s.store.GetLead(ctx, id); err != nil {
		return nil, err
	}
	entries, err := s.store.ListHistory(ctx, id, limit)
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}
	return entries, nil
}

// ListLeads returns one page of leads matching filter, most recently
// updated first.
func (s *Service) ListLeads(ctx context.Context, filter LeadFilter, page int) (_ LeadPage, err error) {
	ctx, done := s.startOp(ctx, "list", attribute.Int("page", page))
	defer done(&err)

	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return LeadPage{}, fmt.Errorf("list leads: %w", err)
	}
	return Paginate(FilterLeads(leads, filter), page, s.opts.PageSize), nil
}

// ExportCSV writes every lead matching filter as CSV.
func (s *Service) ExportCSV(ctx context.Context, w io.Writer, filter LeadFilter) (err error) {
	ctx, done := s.startOp(ctx, "export")
	defer done(&err)

	leads, err := s.store.ListLeads(ctx)
	if err != nil {
		return fmt.Errorf("list leads: %w", err)
	}
	matched := FilterLeads(leads, filter)
	if err := WriteLeadsCSV(w, matched); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	logging.FromContext(ctx).Info("lead export finished", "rows", len(matched))
	return nil
}

// Package core holds the lead intake domain, independent of any transport.
//
// # Architecture
//
//   - Validation: [Validate] turns loosely-typed [RawLead] input into a
//     [ValidatedLead] or a [ValidationErrors] list. Structural checks come
//     from validate tags; cross-field rules run afterwards as an ordered
//     pipeline.
//   - Import and export: [PlanImport] parses and validates a CSV file
//     without side effects; [WriteLeadsCSV] writes the same fixed column set
//     so exports re-import cleanly.
//   - Update coordination: [Service.UpdateLead] checks ownership and the
//     caller's version against the same read that the write uses, and
//     records a minimal [HistoryDiff].
//   - Query: [FilterLeads] and [Paginate] operate on an already-ordered
//     slice.
//   - Storage: [Store] is implemented by [PostgresStore] and [MemoryStore].
//
// # Versions
//
// A lead's version is its updated_at timestamp at microsecond precision,
// rendered by [FormatVersion]. An update must present exactly the stored
// value; any other value is a [ErrConcurrencyConflict].
//
// # Error Handling
//
// Failures are sentinel errors or typed errors tested with errors.Is and
// errors.As. [MapError] turns any of them into a [UserMessage] with a
// support code.
package core

// Package records abstracts the persistence layer behind a generic
// record repository: per-model query building with filter, search, sort and
// pagination, plus mutation by id. The admin engine never issues storage
// calls outside this interface.
package records

import (
	"context"
	"errors"
)

// ErrNoRows indicates the requested record does not exist.
var ErrNoRows = errors.New("records: no rows")

// DescendingPrefix marks a descending sort field in OrderBy.
const DescendingPrefix = "-"

// Record is a single row keyed by column name.
type Record map[string]any

// Query is an immutable-style builder over one model's records. Builder
// methods return the receiver for chaining; Count and All execute.
type Query interface {
	// Filter adds an equality predicate.
	Filter(field string, value any) Query
	// Match adds a case-insensitive substring predicate ORed across fields.
	Match(fields []string, term string) Query
	// OrderBy sorts by field; a DescendingPrefix ("-name") inverts order.
	OrderBy(field string) Query
	Offset(n int) Query
	Limit(n int) Query

	// Count returns the number of records matching the predicates,
	// ignoring offset/limit.
	Count(ctx context.Context) (int64, error)
	// All fetches the matching page.
	All(ctx context.Context) ([]Record, error)
}

// Repository yields query builders and performs mutations. Each call is an
// independent atomic operation against the store; the engine never spans a
// multi-call transaction.
type Repository interface {
	Query(model string) Query
	Get(ctx context.Context, model string, id any) (Record, error)
	Create(ctx context.Context, model string, values map[string]any) error
	Update(ctx context.Context, model string, id any, values map[string]any) error
	Delete(ctx context.Context, model string, id any) error
}

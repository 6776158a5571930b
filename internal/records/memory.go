package records

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryRepository is an in-process Repository used by tests and local
// demos. It applies the same filter/sort/paginate semantics as the
// PostgreSQL implementation over copied snapshots, so readers never observe
// partial writes.
type MemoryRepository struct {
	mu     sync.RWMutex
	tables map[string][]Record
	nextID map[string]int64
}

// NewMemoryRepository constructs an empty MemoryRepository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		tables: make(map[string][]Record),
		nextID: make(map[string]int64),
	}
}

// Seed inserts records directly, assigning ids to rows without one.
func (r *MemoryRepository) Seed(model string, recs ...Record) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, rec := range recs {
		r.insertLocked(model, rec)
	}
}

// Query starts a builder over a snapshot of the table.
func (r *MemoryRepository) Query(model string) Query {
	return &memQuery{repo: r, model: model, limit: -1}
}

// Get returns a copy of the record with the given id.
func (r *MemoryRepository) Get(ctx context.Context, model string, id any) (Record, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, rec := range r.tables[model] {
		if equalID(rec["id"], id) {
			return cloneRecord(rec), nil
		}
	}
	return nil, ErrNoRows
}

// Create inserts a new record.
func (r *MemoryRepository) Create(ctx context.Context, model string, values map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.insertLocked(model, Record(values))
	return nil
}

// Update assigns the given values on one record.
func (r *MemoryRepository) Update(ctx context.Context, model string, id any, values map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, rec := range r.tables[model] {
		if equalID(rec["id"], id) {
			updated := cloneRecord(rec)
			for k, v := range values {
				updated[k] = v
			}
			r.tables[model][i] = updated
			return nil
		}
	}
	return ErrNoRows
}

// Delete removes one record.
func (r *MemoryRepository) Delete(ctx context.Context, model string, id any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	rows := r.tables[model]
	for i, rec := range rows {
		if equalID(rec["id"], id) {
			r.tables[model] = append(rows[:i:i], rows[i+1:]...)
			return nil
		}
	}
	return ErrNoRows
}

func (r *MemoryRepository) insertLocked(model string, rec Record) {
	stored := cloneRecord(rec)
	if _, ok := stored["id"]; !ok {
		r.nextID[model]++
		stored["id"] = r.nextID[model]
	} else if id, ok := stored["id"].(int64); ok && id > r.nextID[model] {
		r.nextID[model] = id
	}
	r.tables[model] = append(r.tables[model], stored)
}

func (r *MemoryRepository) snapshot(model string) []Record {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rows := r.tables[model]
	out := make([]Record, len(rows))
	for i, rec := range rows {
		out[i] = cloneRecord(rec)
	}
	return out
}

type memPredicate func(Record) bool

type memQuery struct {
	repo   *MemoryRepository
	model  string
	preds  []memPredicate
	order  []string
	offset int
	limit  int
}

func (q *memQuery) Filter(field string, value any) Query {
	q.preds = append(q.preds, func(rec Record) bool {
		return fmt.Sprint(rec[field]) == fmt.Sprint(value)
	})
	return q
}

func (q *memQuery) Match(fields []string, term string) Query {
	if len(fields) == 0 {
		return q
	}
	lowered := strings.ToLower(term)
	q.preds = append(q.preds, func(rec Record) bool {
		for _, f := range fields {
			if strings.Contains(strings.ToLower(fmt.Sprint(rec[f])), lowered) {
				return true
			}
		}
		return false
	})
	return q
}

func (q *memQuery) OrderBy(field string) Query {
	q.order = append(q.order, field)
	return q
}

func (q *memQuery) Offset(n int) Query {
	q.offset = n
	return q
}

func (q *memQuery) Limit(n int) Query {
	q.limit = n
	return q
}

func (q *memQuery) Count(ctx context.Context) (int64, error) {
	return int64(len(q.matching())), nil
}

func (q *memQuery) All(ctx context.Context) ([]Record, error) {
	rows := q.matching()
	q.sortRows(rows)
	if q.offset > 0 {
		if q.offset >= len(rows) {
			return nil, nil
		}
		rows = rows[q.offset:]
	}
	if q.limit >= 0 && q.limit < len(rows) {
		rows = rows[:q.limit]
	}
	return rows, nil
}

func (q *memQuery) matching() []Record {
	var out []Record
	for _, rec := range q.repo.snapshot(q.model) {
		ok := true
		for _, pred := range q.preds {
			if !pred(rec) {
				ok = false
				break
			}
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out
}

func (q *memQuery) sortRows(rows []Record) {
	if len(q.order) == 0 {
		return
	}
	sort.SliceStable(rows, func(i, j int) bool {
		for _, field := range q.order {
			name, desc := strings.CutPrefix(field, DescendingPrefix)
			if !desc {
				name = field
			}
			cmp := compareValues(rows[i][name], rows[j][name])
			if cmp == 0 {
				continue
			}
			if desc {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	switch av := a.(type) {
	case int64:
		if bv, ok := b.(int64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case float64:
		if bv, ok := b.(float64); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}

func cloneRecord(rec Record) Record {
	out := make(Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

func equalID(a, b any) bool {
	return fmt.Sprint(a) == fmt.Sprint(b)
}

package records

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var identPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// PostgresRepository implements Repository on a pgx pool. Table and column
// names come from registered descriptors, never from request input, but they
// are still validated before being interpolated into SQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs a PostgresRepository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Query starts a builder for the given table.
func (r *PostgresRepository) Query(model string) Query {
	return &pgQuery{pool: r.pool, table: model, limit: -1, offset: -1}
}

// Get fetches a single record by id.
func (r *PostgresRepository) Get(ctx context.Context, model string, id any) (Record, error) {
	if err := checkIdent(model); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`SELECT * FROM %q WHERE id = $1 LIMIT 1`, model), id)
	if err != nil {
		return nil, fmt.Errorf("records: get %s: %w", model, err)
	}
	defer rows.Close()
	recs, err := collectRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, ErrNoRows
	}
	return recs[0], nil
}

// Create inserts a record with the given column values.
func (r *PostgresRepository) Create(ctx context.Context, model string, values map[string]any) error {
	if err := checkIdent(model); err != nil {
		return err
	}
	if len(values) == 0 {
		return fmt.Errorf("records: create %s: no values", model)
	}
	cols := make([]string, 0, len(values))
	placeholders := make([]string, 0, len(values))
	args := make([]any, 0, len(values))
	for col, val := range values {
		if err := checkIdent(col); err != nil {
			return err
		}
		cols = append(cols, fmt.Sprintf("%q", col))
		placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+1))
		args = append(args, val)
	}
	sql := fmt.Sprintf(`INSERT INTO %q (%s) VALUES (%s)`, model, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if _, err := r.pool.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("records: create %s: %w", model, err)
	}
	return nil
}

// Update assigns the given columns on one record in a single statement.
func (r *PostgresRepository) Update(ctx context.Context, model string, id any, values map[string]any) error {
	if err := checkIdent(model); err != nil {
		return err
	}
	if len(values) == 0 {
		return nil
	}
	sets := make([]string, 0, len(values))
	args := make([]any, 0, len(values)+1)
	for col, val := range values {
		if err := checkIdent(col); err != nil {
			return err
		}
		args = append(args, val)
		sets = append(sets, fmt.Sprintf("%q = $%d", col, len(args)))
	}
	args = append(args, id)
	sql := fmt.Sprintf(`UPDATE %q SET %s WHERE id = $%d`, model, strings.Join(sets, ", "), len(args))
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("records: update %s: %w", model, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

// Delete removes one record by id.
func (r *PostgresRepository) Delete(ctx context.Context, model string, id any) error {
	if err := checkIdent(model); err != nil {
		return err
	}
	tag, err := r.pool.Exec(ctx, fmt.Sprintf(`DELETE FROM %q WHERE id = $1`, model), id)
	if err != nil {
		return fmt.Errorf("records: delete %s: %w", model, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNoRows
	}
	return nil
}

type pgPredicate struct {
	fields []string
	term   string
	value  any
	exact  bool
}

type pgQuery struct {
	pool   *pgxpool.Pool
	table  string
	preds  []pgPredicate
	order  []string
	offset int
	limit  int
	err    error
}

func (q *pgQuery) Filter(field string, value any) Query {
	q.keep(field)
	q.preds = append(q.preds, pgPredicate{fields: []string{field}, value: value, exact: true})
	return q
}

func (q *pgQuery) Match(fields []string, term string) Query {
	for _, f := range fields {
		q.keep(f)
	}
	if len(fields) > 0 {
		q.preds = append(q.preds, pgPredicate{fields: fields, term: term})
	}
	return q
}

func (q *pgQuery) OrderBy(field string) Query {
	q.keep(strings.TrimPrefix(field, DescendingPrefix))
	q.order = append(q.order, field)
	return q
}

func (q *pgQuery) Offset(n int) Query {
	q.offset = n
	return q
}

func (q *pgQuery) Limit(n int) Query {
	q.limit = n
	return q
}

func (q *pgQuery) Count(ctx context.Context) (int64, error) {
	if err := q.buildErr(); err != nil {
		return 0, err
	}
	where, args := q.whereClause()
	sql := fmt.Sprintf(`SELECT COUNT(*) FROM %q%s`, q.table, where)
	var total int64
	if err := q.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("records: count %s: %w", q.table, err)
	}
	return total, nil
}

func (q *pgQuery) All(ctx context.Context) ([]Record, error) {
	if err := q.buildErr(); err != nil {
		return nil, err
	}
	where, args := q.whereClause()
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT * FROM %q%s`, q.table, where)
	if len(q.order) > 0 {
		parts := make([]string, 0, len(q.order))
		for _, field := range q.order {
			if desc, ok := strings.CutPrefix(field, DescendingPrefix); ok {
				parts = append(parts, fmt.Sprintf("%q DESC", desc))
			} else {
				parts = append(parts, fmt.Sprintf("%q ASC", field))
			}
		}
		sb.WriteString(" ORDER BY " + strings.Join(parts, ", "))
	}
	if q.limit >= 0 {
		fmt.Fprintf(&sb, " LIMIT %d", q.limit)
	}
	if q.offset > 0 {
		fmt.Fprintf(&sb, " OFFSET %d", q.offset)
	}
	rows, err := q.pool.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("records: query %s: %w", q.table, err)
	}
	defer rows.Close()
	return collectRecords(rows)
}

func (q *pgQuery) whereClause() (string, []any) {
	if len(q.preds) == 0 {
		return "", nil
	}
	clauses := make([]string, 0, len(q.preds))
	var args []any
	for _, p := range q.preds {
		if p.exact {
			args = append(args, p.value)
			clauses = append(clauses, fmt.Sprintf("%q = $%d", p.fields[0], len(args)))
			continue
		}
		args = append(args, "%"+p.term+"%")
		ors := make([]string, 0, len(p.fields))
		for _, f := range p.fields {
			ors = append(ors, fmt.Sprintf("%q::text ILIKE $%d", f, len(args)))
		}
		clauses = append(clauses, "("+strings.Join(ors, " OR ")+")")
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// keep records the first identifier error; execution surfaces it.
func (q *pgQuery) keep(ident string) {
	if q.err == nil {
		q.err = checkIdent(ident)
	}
}

func (q *pgQuery) buildErr() error {
	if q.err != nil {
		return q.err
	}
	return checkIdent(q.table)
}

func checkIdent(name string) error {
	if !identPattern.MatchString(name) {
		return fmt.Errorf("records: invalid identifier %q", name)
	}
	return nil
}

func collectRecords(rows pgx.Rows) ([]Record, error) {
	fields := rows.FieldDescriptions()
	var out []Record
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("records: scan: %w", err)
		}
		rec := make(Record, len(fields))
		for i, fd := range fields {
			rec[fd.Name] = values[i]
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("records: rows: %w", err)
	}
	return out, nil
}

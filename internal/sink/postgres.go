package sink

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sony/gobreaker"

	"github.com/sage-ingest/sage/internal/model"
	"github.com/sage-ingest/sage/internal/table"
)

// postgresSink writes tables to PostgreSQL, one connection pool per
// distinct connection (keyed by host/port/database/user) reused across
// runs, each wrapped in its own circuit breaker so a single bad
// destination doesn't retry into a storm against a healthy one (grounded
// on the teacher's savepoint-per-batch insert pattern, internal/core/upload.go).
type postgresSink struct {
	pools    map[string]*pgxpool.Pool
	breakers map[string]*gobreaker.CircuitBreaker
}

func newPostgresSink() *postgresSink {
	return &postgresSink{
		pools:    map[string]*pgxpool.Pool{},
		breakers: map[string]*gobreaker.CircuitBreaker{},
	}
}

func connKey(c model.Connection) string {
	return fmt.Sprintf("%s@%s:%d/%s", c.User, c.Host, c.Port, c.Database)
}

func (p *postgresSink) pool(ctx context.Context, c model.Connection) (*pgxpool.Pool, error) {
	key := connKey(c)
	if pool, ok := p.pools[key]; ok {
		return pool, nil
	}
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s", c.User, c.Password.Resolved, c.Host, c.Port, c.Database)
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to destination %s: %w", key, err)
	}
	p.pools[key] = pool
	return pool, nil
}

func (p *postgresSink) breaker(c model.Connection) *gobreaker.CircuitBreaker {
	key := connKey(c)
	if b, ok := p.breakers[key]; ok {
		return b
	}
	b := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "sink:" + key,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
	})
	p.breakers[key] = b
	return b
}

// apply writes every catalog table in pkg to its destination, each within
// its own transaction, behind the connection's circuit breaker. It returns
// the logical name of the catalog being written when a write fails, so the
// caller can attribute the resulting Finding to that catalog.
func (p *postgresSink) apply(ctx context.Context, pkg model.Package, tables table.Set, runID string) (int64, string, error) {
	conn := pkg.Destination.Connection
	pool, err := p.pool(ctx, conn)
	if err != nil {
		return 0, firstCatalogName(pkg), err
	}
	breaker := p.breaker(conn)

	var total int64
	for _, ref := range pkg.Catalogs {
		tbl, ok := tables[ref.LogicalName]
		if !ok {
			continue
		}
		targetTable := destinationTable(pkg, ref)
		n, err := breaker.Execute(func() (any, error) {
			return p.writeTable(ctx, pool, targetTable, ref.Catalog, tbl, pkg.Destination.InsertionMethod, runID)
		})
		if err != nil {
			return total, ref.LogicalName, fmt.Errorf("writing catalog %q to %q: %w", ref.LogicalName, targetTable, err)
		}
		total += n.(int64)
	}
	return total, "", nil
}

func destinationTable(pkg model.Package, ref model.CatalogRef) string {
	if len(pkg.Catalogs) == 1 {
		return pkg.Destination.TargetTable
	}
	return pkg.Destination.TargetTable + "_" + ref.LogicalName
}

func (p *postgresSink) writeTable(ctx context.Context, pool *pgxpool.Pool, targetTable string, cat model.Catalog, tbl *table.Table, method model.InsertionMethod, runID string) (int64, error) {
	tx, err := pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	columns := tbl.Columns
	if method == model.InsertionReplace {
		if _, err := tx.Exec(ctx, fmt.Sprintf("DELETE FROM %s", pgx.Identifier{targetTable}.Sanitize())); err != nil {
			return 0, fmt.Errorf("replace: clearing %q: %w", targetTable, err)
		}
	}

	n, err := copyOrInsert(ctx, tx, targetTable, columns, tbl.Rows, cat, method)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return n, nil
}

// copyOrInsert attempts a bulk COPY first (the teacher's ~10-100x faster
// path, internal/core/upload.go insertWithCopy), falling back to a
// row-by-row insert if COPY fails. The fallback still aborts on the first
// row error: a uniqueness (or other constraint) violation is a terminal,
// whole-transaction failure, not a partial commit (spec.md §4.5).
func copyOrInsert(ctx context.Context, tx pgx.Tx, targetTable string, columns []string, rows [][]string, cat model.Catalog, method model.InsertionMethod) (int64, error) {
	if method == model.InsertionInsert || method == model.InsertionReplace {
		rowsAny := make([][]any, len(rows))
		for i, r := range rows {
			rowsAny[i] = stringsToAny(r, len(columns))
		}
		n, err := tx.CopyFrom(ctx, pgx.Identifier{targetTable}, columns, pgx.CopyFromRows(rowsAny))
		if err == nil {
			return n, nil
		}
		// COPY failed (likely a constraint violation) — fall back to a
		// row-by-row insert so the first offending row can be identified;
		// any row failure here still fails the whole write.
		return insertRowByRow(ctx, tx, targetTable, columns, rows)
	}

	// upsert: no COPY path (COPY cannot express ON CONFLICT), go straight
	// to a parameterized upsert per row.
	return upsertRowByRow(ctx, tx, targetTable, columns, rows, cat)
}

func insertRowByRow(ctx context.Context, tx pgx.Tx, targetTable string, columns []string, rows [][]string) (int64, error) {
	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		pgx.Identifier{targetTable}.Sanitize(),
		strings.Join(quoteIdents(columns), ", "),
		strings.Join(placeholders, ", "))

	for i, row := range rows {
		args := stringsToAny(row, len(columns))
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return int64(len(rows)), nil
}

func upsertRowByRow(ctx context.Context, tx pgx.Tx, targetTable string, columns []string, rows [][]string, cat model.Catalog) (int64, error) {
	conflictCols := uniqueFieldNames(cat)
	if len(conflictCols) == 0 {
		return 0, fmt.Errorf("insertion_method 'upsert' requires at least one unique field in catalog %q", cat.Name)
	}

	placeholders := make([]string, len(columns))
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	var updateClauses []string
	for _, c := range columns {
		if containsName(conflictCols, c) {
			continue
		}
		updateClauses = append(updateClauses, fmt.Sprintf("%s = EXCLUDED.%s", quoteIdent(c), quoteIdent(c)))
	}

	stmt := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) ON CONFLICT (%s) DO UPDATE SET %s",
		pgx.Identifier{targetTable}.Sanitize(),
		strings.Join(quoteIdents(columns), ", "),
		strings.Join(placeholders, ", "),
		strings.Join(quoteIdents(conflictCols), ", "),
		strings.Join(updateClauses, ", "),
	)

	for i, row := range rows {
		args := stringsToAny(row, len(columns))
		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return 0, fmt.Errorf("row %d: %w", i+1, err)
		}
	}
	return int64(len(rows)), nil
}

func uniqueFieldNames(cat model.Catalog) []string {
	var out []string
	for _, f := range cat.Fields {
		if f.Unique {
			out = append(out, f.Name)
		}
	}
	return out
}

func containsName(list []string, name string) bool {
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

func quoteIdent(name string) string {
	return pgx.Identifier{name}.Sanitize()
}

func quoteIdents(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = quoteIdent(n)
	}
	return out
}

func stringsToAny(row []string, width int) []any {
	out := make([]any, width)
	for i := 0; i < width; i++ {
		if i < len(row) {
			if row[i] == "" {
				out[i] = nil
			} else {
				out[i] = row[i]
			}
		} else {
			out[i] = nil
		}
	}
	return out
}

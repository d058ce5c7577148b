package core

import (
	"context"
	"time"

	"github.com/shrek82/arecord/dialect"
	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/pool"
)

// Row is one result row keyed by column name.
type Row map[string]any

// Executor runs parameterized statements over pooled connections.
// Statements use ? placeholders and backtick-quoted identifiers; they are
// rebound to the pool's dialect before execution.
type Executor struct {
	pool   *pool.Pool
	logger logger.Logger
}

// NewExecutor creates an executor over p, logging with the pool's logger.
func NewExecutor(p *pool.Pool) *Executor {
	return &Executor{pool: p, logger: p.Logger()}
}

// Default returns an executor over the process-wide pool.
func Default() (*Executor, error) {
	p, err := pool.Default()
	if err != nil {
		return nil, err
	}
	return NewExecutor(p), nil
}

// Pool returns the executor's connection pool.
func (e *Executor) Pool() *pool.Pool {
	return e.pool
}

// Select runs a query and returns at most limit rows, or every row when
// limit is 0. No match yields an empty slice.
func (e *Executor) Select(ctx context.Context, query string, args []any, limit int) (rows []Row, err error) {
	l := loggerFrom(ctx, e.logger)
	query = dialect.Rebind(e.pool.Dialect(), query)

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return nil, err
	}
	defer e.pool.Release(conn)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	rs, err := conn.QueryContext(ctx, query, args...)
	e.logSQL(l, query, time.Since(start), args)
	if err != nil {
		l.Error("sql execution failed: %v", err)
		return nil, err
	}
	defer func() {
		if cerr := rs.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	columns, err := rs.Columns()
	if err != nil {
		return nil, err
	}

	rows = []Row{}
	for rs.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rs.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := make(Row, len(columns))
		for i, col := range columns {
			row[col] = normalize(values[i])
		}
		rows = append(rows, row)

		if limit > 0 && len(rows) >= limit {
			break
		}
	}
	if err := rs.Err(); err != nil {
		return nil, err
	}

	l.Info("rows returned: %d", len(rows))
	return rows, nil
}

// Execute runs an INSERT, UPDATE or DELETE and returns the number of
// affected rows. Driver errors are returned as is.
func (e *Executor) Execute(ctx context.Context, query string, args []any) (int64, error) {
	l := loggerFrom(ctx, e.logger)
	query = dialect.Rebind(e.pool.Dialect(), query)

	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return 0, err
	}
	defer e.pool.Release(conn)

	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	start := time.Now()
	res, err := conn.ExecContext(ctx, query, args...)
	e.logSQL(l, query, time.Since(start), args)
	if err != nil {
		l.Error("sql execution failed: %v", err)
		return 0, err
	}
	return res.RowsAffected()
}

func (e *Executor) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if d := e.pool.Config().QueryTimeout; d > 0 {
		return context.WithTimeout(ctx, d)
	}
	return ctx, func() {}
}

func (e *Executor) logSQL(l logger.Logger, query string, d time.Duration, args []any) {
	l.SQL(query, d, args...)
	if threshold := e.pool.Config().SlowThreshold; threshold > 0 && d > threshold {
		l.Warn("slow sql [%v > %v]: %s", d, threshold, query)
	}
}

func normalize(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}

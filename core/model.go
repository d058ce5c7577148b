package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/shrek82/arecord/cache"
	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/model"
)

// Model is the active-record handle of one registered entity type.
// It is safe for concurrent use.
type Model struct {
	schema *model.Schema
	exec   *Executor
	cache  cache.Cache
	ttl    time.Duration
	// writes counts evictions; Find drops what it cached if a write
	// happened while it was reading.
	writes atomic.Uint64
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithExecutor binds the model to e instead of the process-wide pool.
func WithExecutor(e *Executor) ModelOption {
	return func(m *Model) { m.exec = e }
}

// WithCache makes Find read through c. Writes evict the cached row.
// A zero ttl keeps entries until evicted. Writes made by other processes
// sharing c are not tracked, so their readers may see a stale row until
// the ttl expires.
func WithCache(c cache.Cache, ttl time.Duration) ModelOption {
	return func(m *Model) {
		m.cache = c
		m.ttl = ttl
	}
}

// NewModel creates the handle for a registered schema.
func NewModel(schema *model.Schema, opts ...ModelOption) *Model {
	m := &Model{schema: schema}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Schema returns the model's schema.
func (m *Model) Schema() *model.Schema {
	return m.schema
}

// New creates an unsaved record holding values. Nothing is validated.
func (m *Model) New(values map[string]any) *Record {
	r := &Record{model: m, values: make(map[string]any, len(values))}
	// schema attributes first so Keys stays stable for extras
	for _, attr := range m.schema.Attrs() {
		if v, ok := values[attr]; ok {
			r.values[attr] = v
		}
	}
	for k, v := range values {
		if _, ok := r.values[k]; !ok {
			r.Set(k, v)
		}
	}
	return r
}

func (m *Model) executor() (*Executor, error) {
	if m.exec != nil {
		return m.exec, nil
	}
	return Default()
}

func (m *Model) logger() logger.Logger {
	if e, err := m.executor(); err == nil {
		return e.logger
	}
	return logger.Discard()
}

// Find loads the record whose primary key equals pk. A missing row yields
// a nil record and a nil error.
func (m *Model) Find(ctx context.Context, pk any) (*Record, error) {
	key := m.cacheKey(pk)
	var gen uint64
	if m.cache != nil {
		if r, ok := m.fromCache(ctx, key); ok {
			return r, nil
		}
		gen = m.writes.Load()
	}

	e, err := m.executor()
	if err != nil {
		return nil, err
	}
	query := m.schema.SelectSQL + " WHERE " + quote(m.schema.ColumnOf(m.schema.PrimaryKey)) + "=?"
	rows, err := e.Select(ctx, query, []any{pk}, 1)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	r, err := m.fromRow(rows[0])
	if err != nil {
		return nil, err
	}

	if m.cache != nil {
		m.toCache(ctx, key, r)
		if m.writes.Load() != gen {
			// a write raced with the read; the cached row may predate it
			m.drop(ctx, key)
		}
	}
	return r, nil
}

// FindOption narrows FindAll.
type FindOption func(*findQuery)

type findQuery struct {
	where   string
	args    []any
	orderBy string
	limit   int
	offset  int
}

// Where appends a condition in statement syntax with ? placeholders.
// Identifiers may be backtick-quoted. Conditions are joined with AND.
func Where(clause string, args ...any) FindOption {
	return func(q *findQuery) {
		if q.where != "" {
			q.where += " AND "
		}
		q.where += "(" + clause + ")"
		q.args = append(q.args, args...)
	}
}

// OrderBy sets the ORDER BY expression, e.g. "`created_at` DESC".
func OrderBy(expr string) FindOption {
	return func(q *findQuery) { q.orderBy = expr }
}

// Limit caps the number of records returned.
func Limit(n int) FindOption {
	return func(q *findQuery) { q.limit = n }
}

// Offset skips the first n records. It requires Limit.
func Offset(n int) FindOption {
	return func(q *findQuery) { q.offset = n }
}

// FindAll loads every record matching opts. No match yields a nil slice
// and a nil error.
func (m *Model) FindAll(ctx context.Context, opts ...FindOption) ([]*Record, error) {
	q := &findQuery{}
	for _, opt := range opts {
		opt(q)
	}
	if q.limit < 0 || q.offset < 0 {
		return nil, fmt.Errorf("%w: negative limit or offset", ErrInvalidQuery)
	}
	if q.offset > 0 && q.limit == 0 {
		return nil, fmt.Errorf("%w: offset without limit", ErrInvalidQuery)
	}

	var sb strings.Builder
	sb.WriteString(m.schema.SelectSQL)
	args := append([]any(nil), q.args...)
	if q.where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(q.where)
	}
	if q.orderBy != "" {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(q.orderBy)
	}
	if q.limit > 0 {
		sb.WriteString(" LIMIT ? OFFSET ?")
		args = append(args, q.limit, q.offset)
	}

	e, err := m.executor()
	if err != nil {
		return nil, err
	}
	rows, err := e.Select(ctx, sb.String(), args, 0)
	if err != nil {
		return nil, err
	}

	var records []*Record
	for _, row := range rows {
		r, err := m.fromRow(row)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, nil
}

// fromRow builds a record from a result row keyed by column names.
func (m *Model) fromRow(row Row) (*Record, error) {
	r := &Record{model: m, values: make(map[string]any, len(row))}
	for _, attr := range m.schema.Attrs() {
		col := m.schema.ColumnOf(attr)
		raw, ok := row[col]
		if !ok {
			continue
		}
		f, _ := m.schema.Field(attr)
		v, err := f.Convert(raw)
		if err != nil {
			return nil, fmt.Errorf("column %s.%s: %w", m.schema.Table, col, err)
		}
		r.values[attr] = v
	}
	return r, nil
}

func (m *Model) cacheKey(pk any) string {
	return fmt.Sprintf("arecord:%s:%v", m.schema.Table, pk)
}

func (m *Model) fromCache(ctx context.Context, key string) (*Record, bool) {
	data, ok, err := m.cache.Get(ctx, key)
	if err != nil {
		m.logger().Warn("cache get %s failed: %v", key, err)
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var values map[string]any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&values); err != nil {
		m.logger().Warn("cache entry %s is corrupt: %v", key, err)
		return nil, false
	}

	r := &Record{model: m, values: make(map[string]any, len(values))}
	for _, attr := range m.schema.Attrs() {
		raw, ok := values[attr]
		if !ok {
			continue
		}
		if n, isNum := raw.(json.Number); isNum {
			raw = n.String()
		}
		f, _ := m.schema.Field(attr)
		v, err := f.Convert(raw)
		if err != nil {
			m.logger().Warn("cache entry %s is corrupt: %v", key, err)
			return nil, false
		}
		r.values[attr] = v
	}
	m.logger().Debug("cache hit: %s", key)
	return r, true
}

func (m *Model) toCache(ctx context.Context, key string, r *Record) {
	data, err := json.Marshal(r)
	if err != nil {
		m.logger().Warn("cache encode %s failed: %v", key, err)
		return
	}
	if err := m.cache.Set(ctx, key, data, m.ttl); err != nil {
		m.logger().Warn("cache set %s failed: %v", key, err)
	}
}

func (m *Model) evict(ctx context.Context, pk any) {
	if m.cache == nil {
		return
	}
	m.writes.Add(1)
	m.drop(ctx, m.cacheKey(pk))
}

func (m *Model) drop(ctx context.Context, key string) {
	if err := m.cache.Delete(ctx, key); err != nil {
		m.logger().Warn("cache delete %s failed: %v", key, err)
	}
}

func quote(name string) string {
	return "`" + name + "`"
}

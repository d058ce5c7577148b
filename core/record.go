package core

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Record is one entity instance: a key/value mapping whose keys are the
// attribute names of its Model's schema. Reading a missing key fails;
// writing always succeeds.
type Record struct {
	model  *Model
	values map[string]any
	extra  []string // keys outside the schema, in insertion order
}

// Model returns the entity type the record belongs to.
func (r *Record) Model() *Model {
	return r.model
}

// Get returns the value stored under name.
func (r *Record) Get(name string) (any, error) {
	v, ok := r.values[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s has no attribute %q", ErrFieldNotFound, r.model.schema.Entity, name)
	}
	return v, nil
}

// Value returns the value stored under name, or nil when it is missing.
func (r *Record) Value(name string) any {
	return r.values[name]
}

// Has reports whether name holds a value, nil included.
func (r *Record) Has(name string) bool {
	_, ok := r.values[name]
	return ok
}

// Set stores v under name.
func (r *Record) Set(name string, v any) {
	if _, ok := r.values[name]; !ok {
		if _, declared := r.model.schema.Field(name); !declared {
			r.extra = append(r.extra, name)
		}
	}
	r.values[name] = v
}

// PK returns the primary-key value.
func (r *Record) PK() any {
	return r.values[r.model.schema.PrimaryKey]
}

// Keys returns the stored keys: schema attributes in schema order, then
// any other keys in the order they were first set.
func (r *Record) Keys() []string {
	keys := make([]string, 0, len(r.values))
	for _, attr := range r.model.schema.Attrs() {
		if _, ok := r.values[attr]; ok {
			keys = append(keys, attr)
		}
	}
	return append(keys, r.extra...)
}

// Map returns a copy of the record's values.
func (r *Record) Map() map[string]any {
	m := make(map[string]any, len(r.values))
	for k, v := range r.values {
		m[k] = v
	}
	return m
}

// MarshalJSON encodes the record as an object with keys in Keys order.
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.Keys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// valueOrDefault returns the attribute's value, resolving and storing the
// field default when the value is unset.
func (r *Record) valueOrDefault(attr string) (any, error) {
	if v := r.values[attr]; v != nil {
		return v, nil
	}
	f, _ := r.model.schema.Field(attr)
	v, ok, err := f.DefaultValue()
	if err != nil {
		return nil, fmt.Errorf("default for %s.%s: %w", r.model.schema.Entity, attr, err)
	}
	if !ok {
		return nil, nil
	}
	r.model.logger().Debug("using default value for %s: %v", attr, v)
	r.Set(attr, v)
	return v, nil
}

// Save inserts the record. Unset attributes take their field defaults
// first; a callable default runs once per record. An affected-row count
// other than 1 is logged, not returned.
func (r *Record) Save(ctx context.Context) error {
	s := r.model.schema
	e, err := r.model.executor()
	if err != nil {
		return err
	}

	args := make([]any, 0, len(s.Fields)+1)
	for _, attr := range s.Fields {
		v, err := r.valueOrDefault(attr)
		if err != nil {
			return err
		}
		args = append(args, v)
	}
	pk, err := r.valueOrDefault(s.PrimaryKey)
	if err != nil {
		return err
	}
	args = append(args, pk)

	rows, err := e.Execute(ctx, s.InsertSQL, args)
	if err != nil {
		return err
	}
	if rows != 1 {
		loggerFrom(ctx, e.logger).Warn("failed to insert record: affected rows: %d", rows)
	}
	r.model.evict(ctx, pk)
	return nil
}

// Update writes every non-key attribute of the record to the row with the
// record's primary key. An affected-row count other than 1 is logged.
func (r *Record) Update(ctx context.Context) error {
	s := r.model.schema
	e, err := r.model.executor()
	if err != nil {
		return err
	}

	args := make([]any, 0, len(s.Fields)+1)
	for _, attr := range s.Fields {
		args = append(args, r.values[attr])
	}
	args = append(args, r.PK())

	rows, err := e.Execute(ctx, s.UpdateSQL, args)
	if err != nil {
		return err
	}
	if rows != 1 {
		loggerFrom(ctx, e.logger).Warn("failed to update record: affected rows: %d", rows)
	}
	r.model.evict(ctx, r.PK())
	return nil
}

// Remove deletes the row with the record's primary key. An affected-row
// count other than 1 is logged.
func (r *Record) Remove(ctx context.Context) error {
	s := r.model.schema
	e, err := r.model.executor()
	if err != nil {
		return err
	}

	rows, err := e.Execute(ctx, s.DeleteSQL, []any{r.PK()})
	if err != nil {
		return err
	}
	if rows != 1 {
		loggerFrom(ctx, e.logger).Warn("failed to delete record: affected rows: %d", rows)
	}
	r.model.evict(ctx, r.PK())
	return nil
}

// SaveAll saves records concurrently through the shared pool and returns
// the first error. Records already saved when a sibling fails stay saved.
func SaveAll(ctx context.Context, records ...*Record) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, r := range records {
		r := r
		g.Go(func() error {
			return r.Save(ctx)
		})
	}
	return g.Wait()
}

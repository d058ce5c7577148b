package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which column variant a Field describes.
type Kind int

const (
	KindString Kind = iota
	KindInteger
	KindBoolean
	KindFloat
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "StringField"
	case KindInteger:
		return "IntegerField"
	case KindBoolean:
		return "BooleanField"
	case KindFloat:
		return "FloatField"
	case KindText:
		return "TextField"
	}
	return "Field"
}

// Field describes one column of an entity table.
// A Field is immutable once constructed.
type Field struct {
	kind       Kind
	name       string
	columnType string
	primaryKey bool
	def        any
	defFunc    func() any
}

// FieldOption customizes a Field at construction.
type FieldOption func(*Field)

// Column overrides the column name; it defaults to the attribute name.
func Column(name string) FieldOption {
	return func(f *Field) { f.name = name }
}

// DDL overrides the column type string.
func DDL(columnType string) FieldOption {
	return func(f *Field) { f.columnType = columnType }
}

// PrimaryKey marks the field as the table's primary key.
// Boolean and text fields cannot be primary keys; the option is ignored for them.
func PrimaryKey() FieldOption {
	return func(f *Field) {
		if f.kind != KindBoolean && f.kind != KindText {
			f.primaryKey = true
		}
	}
}

// Default sets a static default used when the value is unset at save time.
func Default(v any) FieldOption {
	return func(f *Field) {
		f.def = v
		f.defFunc = nil
	}
}

// DefaultFunc sets a default producer invoked at save time.
func DefaultFunc(fn func() any) FieldOption {
	return func(f *Field) {
		f.defFunc = fn
		f.def = nil
	}
}

func newField(kind Kind, ddl string, def any, opts []FieldOption) *Field {
	f := &Field{kind: kind, columnType: ddl, def: def}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// StringField describes a varchar(100) column.
func StringField(opts ...FieldOption) *Field {
	return newField(KindString, "varchar(100)", nil, opts)
}

// IntegerField describes a bigint column.
func IntegerField(opts ...FieldOption) *Field {
	return newField(KindInteger, "bigint", nil, opts)
}

// BooleanField describes a boolean column defaulting to false.
func BooleanField(opts ...FieldOption) *Field {
	return newField(KindBoolean, "boolean", false, opts)
}

// FloatField describes a real column defaulting to 0.0.
func FloatField(opts ...FieldOption) *Field {
	return newField(KindFloat, "real", 0.0, opts)
}

// TextField describes a text column.
func TextField(opts ...FieldOption) *Field {
	return newField(KindText, "text", nil, opts)
}

func (f *Field) Kind() Kind           { return f.kind }
func (f *Field) Name() string         { return f.name }
func (f *Field) ColumnType() string   { return f.columnType }
func (f *Field) IsPrimaryKey() bool   { return f.primaryKey }
func (f *Field) HasDefault() bool     { return f.def != nil || f.defFunc != nil }
func (f *Field) HasDefaultFunc() bool { return f.defFunc != nil }

// DefaultValue resolves the field's default. A producer is invoked on every
// call. The result is normalized with Convert; ok is false when the field
// has no default.
func (f *Field) DefaultValue() (v any, ok bool, err error) {
	switch {
	case f.defFunc != nil:
		v = f.defFunc()
	case f.def != nil:
		v = f.def
	default:
		return nil, false, nil
	}
	v, err = f.Convert(v)
	return v, true, err
}

func (f *Field) String() string {
	return fmt.Sprintf("<%s,%s:%s>", f.kind, f.columnType, f.name)
}

// Convert normalizes a Go or driver value into the field kind's canonical
// type: string, int64, bool or float64. nil stays nil.
func (f *Field) Convert(v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch f.kind {
	case KindString, KindText:
		switch x := v.(type) {
		case string:
			return x, nil
		case time.Time:
			return x.Format(time.RFC3339Nano), nil
		case fmt.Stringer:
			return x.String(), nil
		}
		return fmt.Sprint(v), nil
	case KindInteger:
		return toInt64(v)
	case KindBoolean:
		return toBool(v)
	case KindFloat:
		return toFloat64(v)
	}
	return v, nil
}

func toInt64(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows an integer", ErrConvert, x)
		}
		return int64(x), nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, fmt.Errorf("%w: %d overflows an integer", ErrConvert, x)
		}
		return int64(x), nil
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not an integer", ErrConvert, x)
		}
		return n, nil
	}
	return nil, fmt.Errorf("%w: %T to integer", ErrConvert, v)
}

func floatToInt64(f float64) (any, error) {
	if f != math.Trunc(f) || f < math.MinInt64 || f >= math.MaxInt64 {
		return nil, fmt.Errorf("%w: %v is not an integer", ErrConvert, f)
	}
	return int64(f), nil
}

func toFloat64(v any) (any, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case time.Time:
		return float64(x.UnixNano()) / float64(time.Second), nil
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a float", ErrConvert, x)
		}
		return n, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T to float", ErrConvert, v)
	}
	return float64(n.(int64)), nil
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case bool:
		return x, nil
	case string:
		b, err := strconv.ParseBool(strings.TrimSpace(x))
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a boolean", ErrConvert, x)
		}
		return b, nil
	}
	n, err := toInt64(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %T to boolean", ErrConvert, v)
	}
	return n.(int64) != 0, nil
}

package model

import (
	"fmt"
	"strings"
	"sync"
)

// Decl associates an attribute name with its field descriptor.
type Decl struct {
	Attr  string
	Field *Field
}

// Schema is the table metadata and statement templates derived once per
// entity type. It is never mutated after Register returns it.
//
// Templates quote identifiers with backticks and use ? placeholders; the
// dialect rebinds both at execution time.
type Schema struct {
	Entity     string
	Table      string
	PrimaryKey string   // attribute name of the primary key
	Fields     []string // non-key attribute names in declaration order

	SelectSQL string
	InsertSQL string
	UpdateSQL string
	DeleteSQL string

	mappings map[string]*Field
}

// Field returns the descriptor of an attribute.
func (s *Schema) Field(attr string) (*Field, bool) {
	f, ok := s.mappings[attr]
	return f, ok
}

// Attrs returns the primary key followed by the ordered non-key attributes.
func (s *Schema) Attrs() []string {
	attrs := make([]string, 0, len(s.Fields)+1)
	attrs = append(attrs, s.PrimaryKey)
	return append(attrs, s.Fields...)
}

// ColumnOf returns the column name of an attribute.
func (s *Schema) ColumnOf(attr string) string {
	if f, ok := s.mappings[attr]; ok && f.name != "" {
		return f.name
	}
	return attr
}

// SchemaOption customizes registration.
type SchemaOption func(*schemaConfig)

type schemaConfig struct {
	table        string
	defaultFuncs map[string]func() any
}

// TableName overrides the table name; it defaults to the entity name.
func TableName(name string) SchemaOption {
	return func(c *schemaConfig) { c.table = name }
}

// WithDefaultFunc attaches a default producer to a declared attribute,
// replacing any default its descriptor carries. It is the way to give
// struct-tag declarations a callable default.
func WithDefaultFunc(attr string, fn func() any) SchemaOption {
	return func(c *schemaConfig) {
		if c.defaultFuncs == nil {
			c.defaultFuncs = make(map[string]func() any)
		}
		c.defaultFuncs[attr] = fn
	}
}

var registry sync.Map

// Register derives the schema of an entity type from its declared fields
// and records it for the rest of the process. It fails when the entity
// declares zero or several primary keys, and when the entity name was
// registered before.
func Register(entity string, decls []Decl, opts ...SchemaOption) (*Schema, error) {
	cfg := &schemaConfig{}
	for _, opt := range opts {
		opt(cfg)
	}

	s, err := buildSchema(entity, decls, cfg)
	if err != nil {
		return nil, err
	}

	if _, loaded := registry.LoadOrStore(entity, s); loaded {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyRegistered, entity)
	}
	return s, nil
}

// MustRegister is like Register but panics on error. It is meant for
// package-level entity declarations evaluated at startup.
func MustRegister(entity string, decls []Decl, opts ...SchemaOption) *Schema {
	s, err := Register(entity, decls, opts...)
	if err != nil {
		panic(err)
	}
	return s
}

// Lookup returns the schema registered for an entity name.
func Lookup(entity string) (*Schema, bool) {
	v, ok := registry.Load(entity)
	if !ok {
		return nil, false
	}
	return v.(*Schema), true
}

func buildSchema(entity string, decls []Decl, cfg *schemaConfig) (*Schema, error) {
	if entity == "" {
		return nil, ErrEmptyEntity
	}

	s := &Schema{
		Entity:   entity,
		Table:    entity,
		mappings: make(map[string]*Field, len(decls)),
	}
	if cfg.table != "" {
		s.Table = cfg.table
	}

	columns := make(map[string]string, len(decls))
	for _, d := range decls {
		if d.Attr == "" || d.Field == nil {
			return nil, fmt.Errorf("%w: %s", ErrEmptyEntity, entity)
		}
		if _, dup := s.mappings[d.Attr]; dup {
			return nil, fmt.Errorf("%w: %s.%s", ErrDuplicateAttr, entity, d.Attr)
		}
		s.mappings[d.Attr] = d.Field

		col := s.ColumnOf(d.Attr)
		if other, dup := columns[col]; dup {
			return nil, fmt.Errorf("%w: %s.%s and %s.%s share column %s", ErrDuplicateAttr, entity, other, entity, d.Attr, col)
		}
		columns[col] = d.Attr

		if d.Field.primaryKey {
			if s.PrimaryKey != "" {
				return nil, fmt.Errorf("%w for field: %s.%s", ErrDuplicatePrimaryKey, entity, d.Attr)
			}
			s.PrimaryKey = d.Attr
		} else {
			s.Fields = append(s.Fields, d.Attr)
		}
	}
	if s.PrimaryKey == "" {
		return nil, fmt.Errorf("%w: %s", ErrNoPrimaryKey, entity)
	}

	for attr, fn := range cfg.defaultFuncs {
		f, ok := s.mappings[attr]
		if !ok {
			return nil, fmt.Errorf("%w: default for %s.%s", ErrUnknownAttr, entity, attr)
		}
		withFunc := *f
		withFunc.def = nil
		withFunc.defFunc = fn
		s.mappings[attr] = &withFunc
	}

	s.buildTemplates()
	return s, nil
}

func quote(name string) string {
	return "`" + name + "`"
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("?, ", n-1) + "?"
}

func (s *Schema) buildTemplates() {
	table := quote(s.Table)
	pk := quote(s.ColumnOf(s.PrimaryKey))

	escaped := make([]string, len(s.Fields))
	assigns := make([]string, len(s.Fields))
	for i, attr := range s.Fields {
		escaped[i] = quote(s.ColumnOf(attr))
		assigns[i] = escaped[i] + "=?"
	}

	selectCols := append([]string{pk}, escaped...)
	s.SelectSQL = fmt.Sprintf("SELECT %s FROM %s", strings.Join(selectCols, ", "), table)

	insertCols := append(append([]string{}, escaped...), pk)
	s.InsertSQL = fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(insertCols, ", "), placeholders(len(insertCols)))

	set := strings.Join(assigns, ", ")
	if len(assigns) == 0 {
		set = pk + "=" + pk
	}
	s.UpdateSQL = fmt.Sprintf("UPDATE %s SET %s WHERE %s=?", table, set, pk)

	s.DeleteSQL = fmt.Sprintf("DELETE FROM %s WHERE %s=?", table, pk)
}

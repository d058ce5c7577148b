package dialect

import (
	"fmt"
	"strings"
	"sync"

	"github.com/shrek82/arecord/model"
)

// Dialect represents the database-specific parts of statement execution.
// Statement templates are written once with backtick-quoted identifiers and
// ? placeholders; a Dialect rewrites both for its driver.
type Dialect interface {
	// Name returns the driver name the dialect is registered under.
	Name() string
	// Quote wraps a table or column name in database-specific quotes.
	Quote(name string) string
	// Placeholder returns the bind marker for the 1-based argument index.
	Placeholder(index int) string
	// CreateTableSQL renders descriptive DDL for a schema. The mapper never
	// executes it; creating tables is an operator's job.
	CreateTableSQL(s *model.Schema) string
}

var (
	mu       sync.RWMutex
	dialects = make(map[string]Dialect)
)

// Register registers a dialect for a given driver name.
func Register(name string, d Dialect) {
	mu.Lock()
	defer mu.Unlock()
	dialects[name] = d
}

// Get retrieves a registered dialect by driver name.
func Get(name string) (Dialect, bool) {
	mu.RLock()
	defer mu.RUnlock()
	d, ok := dialects[name]
	return d, ok
}

// Rebind rewrites a canonical statement for d: each ? outside a string
// literal becomes d.Placeholder(n) and each `name` becomes d.Quote(name).
func Rebind(d Dialect, sql string) string {
	if !strings.ContainsAny(sql, "?`") {
		return sql
	}

	var sb strings.Builder
	sb.Grow(len(sql) + 8)

	index := 1
	inLiteral := false
	for i := 0; i < len(sql); i++ {
		c := sql[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			sb.WriteByte(c)
		case inLiteral:
			sb.WriteByte(c)
		case c == '?':
			sb.WriteString(d.Placeholder(index))
			index++
		case c == '`':
			end := strings.IndexByte(sql[i+1:], '`')
			if end < 0 {
				sb.WriteString(sql[i:])
				return sb.String()
			}
			sb.WriteString(d.Quote(sql[i+1 : i+1+end]))
			i += end + 1
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}

// createTable renders the CREATE TABLE statement shared by all dialects.
// columnType, when set, translates descriptor DDL types for the dialect.
func createTable(d Dialect, s *model.Schema, suffix string, columnType func(string) string) string {
	columns := make([]string, 0, len(s.Fields)+1)
	for _, attr := range s.Attrs() {
		f, _ := s.Field(attr)
		typ := f.ColumnType()
		if columnType != nil {
			typ = columnType(typ)
		}
		column := fmt.Sprintf("%s %s", d.Quote(s.ColumnOf(attr)), typ)
		if f.IsPrimaryKey() {
			column += " NOT NULL PRIMARY KEY"
		}
		columns = append(columns, column)
	}
	sql := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", d.Quote(s.Table), strings.Join(columns, ", "))
	return sql + suffix
}

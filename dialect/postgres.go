package dialect

import (
	"fmt"
	"strings"

	"github.com/shrek82/arecord/model"
)

// PostgreSQL dialect implementation, shared by the lib/pq and pgx drivers.
type postgres struct {
	name string
}

func init() {
	Register("postgres", &postgres{name: "postgres"})
	Register("pgx", &postgres{name: "pgx"})
}

func (d *postgres) Name() string { return d.name }

func (d *postgres) Quote(name string) string {
	// PostgreSQL uses double quotes for identifiers
	return fmt.Sprintf(`"%s"`, strings.ReplaceAll(name, `"`, `""`))
}

func (d *postgres) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index)
}

func (d *postgres) CreateTableSQL(s *model.Schema) string {
	return createTable(d, s, "", pgColumnType)
}

// pgColumnType widens real to an 8-byte float: real is float4 in
// PostgreSQL but a double in MySQL and SQLite.
func pgColumnType(typ string) string {
	if strings.EqualFold(strings.TrimSpace(typ), "real") {
		return "double precision"
	}
	return typ
}

package dialect

import (
	"fmt"
	"strings"

	"github.com/shrek82/arecord/model"
)

// SQLite dialect implementation
type sqlite3 struct{}

func init() {
	Register("sqlite3", &sqlite3{})
}

func (d *sqlite3) Name() string { return "sqlite3" }

func (d *sqlite3) Quote(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

func (d *sqlite3) Placeholder(index int) string {
	return "?"
}

func (d *sqlite3) CreateTableSQL(s *model.Schema) string {
	return createTable(d, s, "", nil)
}

package dialect

import (
	"fmt"
	"strings"

	"github.com/shrek82/arecord/model"
)

// MySQL dialect implementation
type mysql struct{}

func init() {
	Register("mysql", &mysql{})
}

func (d *mysql) Name() string { return "mysql" }

func (d *mysql) Quote(name string) string {
	return fmt.Sprintf("`%s`", strings.ReplaceAll(name, "`", "``"))
}

func (d *mysql) Placeholder(index int) string {
	return "?"
}

func (d *mysql) CreateTableSQL(s *model.Schema) string {
	return createTable(d, s, " ENGINE=innodb DEFAULT CHARSET=utf8", nil)
}

// Command schemagen prints, and optionally applies, the CREATE TABLE
// statements of the blog's entities.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"text/template"
	"time"

	"github.com/shrek82/arecord/core"
	"github.com/shrek82/arecord/dialect"
	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/model"
	"github.com/shrek82/arecord/models"
	"github.com/shrek82/arecord/pool"
)

var (
	driverName = flag.String("driver", envOr("AREC_DRIVER", "mysql"), "dialect: mysql, postgres, pgx or sqlite3")
	dsn        = flag.String("dsn", os.Getenv("AREC_DSN"), "data source name; with -apply the tables are created there")
	tableName  = flag.String("table", "", "only this table; empty means every table")
	outFile    = flag.String("out", "", "output file; empty writes to stdout")
	apply      = flag.Bool("apply", false, "execute the statements against -dsn")
	logLevel   = flag.String("log", envOr("AREC_LOG_LEVEL", "info"), "log level for -apply: silent, error, warn, info or debug")
)

const ddlTemplate = `-- generated by schemagen for {{.Dialect}} at {{.Generated}}
{{range .Tables}}
-- {{.Entity}}
{{.SQL}};
{{end}}`

type tableDDL struct {
	Entity string
	Table  string
	SQL    string
}

type ddlData struct {
	Dialect   string
	Generated string
	Tables    []tableDDL
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	flag.Parse()

	d, ok := dialect.Get(*driverName)
	if !ok {
		log.Fatalf("unsupported driver: %s", *driverName)
	}
	tables, err := collect(d, models.Schemas(), *tableName)
	if err != nil {
		log.Fatal(err)
	}

	var w io.Writer = os.Stdout
	if *outFile != "" {
		f, err := os.Create(*outFile)
		if err != nil {
			log.Fatalf("create %s: %v", *outFile, err)
		}
		defer f.Close()
		w = f
	}
	if err := render(w, d.Name(), tables, time.Now()); err != nil {
		log.Fatalf("render: %v", err)
	}

	if *apply {
		if err := applyDDL(context.Background(), tables); err != nil {
			log.Fatalf("apply: %v", err)
		}
	}
}

// collect renders the DDL of the given schemas, or only of table.
func collect(d dialect.Dialect, schemas []*model.Schema, table string) ([]tableDDL, error) {
	var tables []tableDDL
	for _, s := range schemas {
		if table != "" && s.Table != table {
			continue
		}
		tables = append(tables, tableDDL{Entity: s.Entity, Table: s.Table, SQL: d.CreateTableSQL(s)})
	}
	if len(tables) == 0 {
		return nil, fmt.Errorf("no entity maps to table %q", table)
	}
	return tables, nil
}

func render(w io.Writer, dialectName string, tables []tableDDL, at time.Time) error {
	tmpl, err := template.New("ddl").Parse(ddlTemplate)
	if err != nil {
		return err
	}
	return tmpl.Execute(w, ddlData{
		Dialect:   dialectName,
		Generated: at.Format(time.RFC3339),
		Tables:    tables,
	})
}

func applyDDL(ctx context.Context, tables []tableDDL) error {
	if *dsn == "" {
		return fmt.Errorf("-apply needs -dsn or AREC_DSN")
	}
	level, err := logger.ParseLevel(*logLevel)
	if err != nil {
		return err
	}
	l := logger.New()
	l.SetLevel(level)

	cfg := pool.DefaultConfig()
	cfg.Driver = *driverName
	cfg.DSN = *dsn
	cfg.MaxSize = 1
	cfg.Logger = l
	p, err := pool.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	e := core.NewExecutor(p)
	for _, t := range tables {
		// statements are already in the target dialect
		if _, err := e.Execute(ctx, t.SQL, nil); err != nil {
			return fmt.Errorf("create %s: %w", t.Table, err)
		}
		l.Info("created table %s", t.Table)
	}
	return nil
}

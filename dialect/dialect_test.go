package dialect

import (
	"strings"
	"testing"

	"github.com/shrek82/arecord/model"
)

func mustGet(t *testing.T, name string) Dialect {
	t.Helper()
	d, ok := Get(name)
	if !ok {
		t.Fatalf("%s dialect not registered", name)
	}
	return d
}

func TestRebind(t *testing.T) {
	const canonical = "UPDATE `users` SET `name`=?, `email`=? WHERE `id`=?"

	t.Run("Postgres", func(t *testing.T) {
		got := Rebind(mustGet(t, "postgres"), canonical)
		want := `UPDATE "users" SET "name"=$1, "email"=$2 WHERE "id"=$3`
		if got != want {
			t.Errorf("got  %s\nwant %s", got, want)
		}
	})

	t.Run("PgxSharesPostgres", func(t *testing.T) {
		d := mustGet(t, "pgx")
		if d.Name() != "pgx" || d.Placeholder(2) != "$2" {
			t.Errorf("Unexpected pgx dialect: %s %s", d.Name(), d.Placeholder(2))
		}
	})

	t.Run("MySQLUnchanged", func(t *testing.T) {
		if got := Rebind(mustGet(t, "mysql"), canonical); got != canonical {
			t.Errorf("MySQL should keep the canonical form, got %s", got)
		}
	})

	t.Run("SQLiteUnchanged", func(t *testing.T) {
		if got := Rebind(mustGet(t, "sqlite3"), canonical); got != canonical {
			t.Errorf("SQLite should keep the canonical form, got %s", got)
		}
	})

	t.Run("SkipsLiterals", func(t *testing.T) {
		got := Rebind(mustGet(t, "postgres"), "SELECT `id` FROM `t` WHERE `name`='who?' AND `age`>?")
		want := `SELECT "id" FROM "t" WHERE "name"='who?' AND "age">$1`
		if got != want {
			t.Errorf("got  %s\nwant %s", got, want)
		}
	})

	t.Run("NothingToDo", func(t *testing.T) {
		if got := Rebind(mustGet(t, "postgres"), "SELECT 1"); got != "SELECT 1" {
			t.Errorf("got %s", got)
		}
	})
}

func TestCreateTableSQL(t *testing.T) {
	s, err := model.Register("DialectUser", []model.Decl{
		{Attr: "id", Field: model.StringField(model.PrimaryKey(), model.DDL("varchar(50)"))},
		{Attr: "name", Field: model.StringField(model.DDL("varchar(50)"))},
		{Attr: "admin", Field: model.BooleanField()},
		{Attr: "created_at", Field: model.FloatField()},
	}, model.TableName("users"))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	mysqlDDL := mustGet(t, "mysql").CreateTableSQL(s)
	for _, part := range []string{
		"CREATE TABLE IF NOT EXISTS `users`",
		"`id` varchar(50) NOT NULL PRIMARY KEY",
		"`name` varchar(50)",
		"`admin` boolean",
		"ENGINE=innodb",
	} {
		if !strings.Contains(mysqlDDL, part) {
			t.Errorf("Expected %q in %s", part, mysqlDDL)
		}
	}

	pgDDL := mustGet(t, "postgres").CreateTableSQL(s)
	if !strings.Contains(pgDDL, `"id" varchar(50) NOT NULL PRIMARY KEY`) {
		t.Errorf("Unexpected postgres DDL: %s", pgDDL)
	}
	if !strings.Contains(pgDDL, `"created_at" double precision`) {
		t.Errorf("Postgres floats must be 8 bytes wide: %s", pgDDL)
	}
	if !strings.Contains(mysqlDDL, "`created_at` real") {
		t.Errorf("MySQL keeps the descriptor type: %s", mysqlDDL)
	}
	if strings.Contains(pgDDL, "ENGINE") {
		t.Errorf("Postgres DDL must not carry MySQL options: %s", pgDDL)
	}
}

package core

import (
	"context"
	"os"
	"testing"

	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/pool"
)

// roundTrip runs the widget lifecycle against an external server.
func roundTrip(t *testing.T, cfg pool.Config) {
	t.Helper()
	ctx := context.Background()
	cfg.Logger = logger.Discard()

	p, err := pool.Open(ctx, cfg)
	if err != nil {
		t.Fatalf("failed to connect: %v", err)
	}
	defer p.Close()

	e := NewExecutor(p)
	if _, err := e.Execute(ctx, "DROP TABLE IF EXISTS `widgets`", nil); err != nil {
		t.Fatalf("drop failed: %v", err)
	}
	if _, err := e.Execute(ctx, p.Dialect().CreateTableSQL(widgetSchema), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	defer e.Execute(ctx, "DROP TABLE IF EXISTS `widgets`", nil)

	m := NewModel(widgetSchema, WithExecutor(e))
	const stamp = 1760781234.567
	w := m.New(map[string]any{"id": "it1", "name": "it's", "stamp": stamp})
	if err := w.Save(ctx); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	w.Set("count", 5)
	if err := w.Update(ctx); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	found, err := m.Find(ctx, "it1")
	if err != nil || found == nil {
		t.Fatalf("Find = %v, %v", found, err)
	}
	if found.Value("name") != "it's" || found.Value("count") != int64(5) {
		t.Errorf("Unexpected record: %v", found.Map())
	}
	if found.Value("stamp") != stamp {
		t.Errorf("Float column lost precision: wrote %v, read %v", stamp, found.Value("stamp"))
	}

	page, err := m.FindAll(ctx, Where("`count` > ?", 1), OrderBy("`id`"), Limit(10))
	if err != nil || len(page) != 1 {
		t.Fatalf("FindAll = %d records, %v", len(page), err)
	}

	if err := found.Remove(ctx); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if gone, _ := m.Find(ctx, "it1"); gone != nil {
		t.Error("Record still present after Remove")
	}
}

func TestPostgres(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("POSTGRES_TEST_DSN not set, skipping PostgreSQL tests")
	}
	for _, driver := range []string{"postgres", "pgx"} {
		t.Run(driver, func(t *testing.T) {
			cfg := pool.DefaultConfig()
			cfg.Driver = driver
			cfg.DSN = dsn
			roundTrip(t, cfg)
		})
	}
}

func TestMySQL(t *testing.T) {
	dsn := os.Getenv("MYSQL_TEST_DSN")
	if dsn == "" {
		t.Skip("MYSQL_TEST_DSN not set, skipping MySQL tests")
	}
	cfg := pool.DefaultConfig()
	cfg.DSN = dsn
	roundTrip(t, cfg)
}

package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/pool"
)

func TestExecutorSelect(t *testing.T) {
	buf := &syncBuffer{}
	l := logger.New()
	l.SetOutput(buf)
	p := openTestPool(t, 2, l)
	e := NewExecutor(p)
	ctx := WithTraceID(context.Background(), "trace-7")

	if _, err := e.Execute(ctx, "CREATE TABLE `kv` (`k` varchar(10) NOT NULL PRIMARY KEY, `v` text)", nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		n, err := e.Execute(ctx, "INSERT INTO `kv` (`k`, `v`) VALUES (?, ?)", []any{k, "it's " + k})
		if err != nil || n != 1 {
			t.Fatalf("insert %s = %d, %v", k, n, err)
		}
	}

	rows, err := e.Select(ctx, "SELECT `k`, `v` FROM `kv` ORDER BY `k`", nil, 2)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Expected limit 2, got %d rows", len(rows))
	}
	if rows[0]["k"] != "a" || rows[0]["v"] != "it's a" {
		t.Errorf("Unexpected first row: %v", rows[0])
	}

	empty, err := e.Select(ctx, "SELECT `k` FROM `kv` WHERE `k` = ?", []any{"zz"}, 0)
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("Expected an empty non-nil slice, got %#v", empty)
	}

	out := buf.String()
	if !strings.Contains(out, "rows returned: 2") || !strings.Contains(out, "trace-7") {
		t.Errorf("Unexpected log output:\n%s", out)
	}
	if p.Stats().InUse != 0 {
		t.Errorf("Connections leaked: %d in use", p.Stats().InUse)
	}
}

func TestExecutorDriverError(t *testing.T) {
	e := NewExecutor(openTestPool(t, 1, nil))
	if _, err := e.Execute(context.Background(), "INSERT INTO `missing` (`a`) VALUES (?)", []any{1}); err == nil {
		t.Error("Expected a driver error for a missing table")
	}
	if _, err := e.Select(context.Background(), "SELECT * FROM `missing`", nil, 0); err == nil {
		t.Error("Expected a driver error for a missing table")
	}
}

func TestDefaultExecutor(t *testing.T) {
	if _, err := Default(); !errors.Is(err, pool.ErrNotInitialized) {
		t.Fatalf("Expected ErrNotInitialized, got %v", err)
	}

	cfg := pool.DefaultConfig()
	cfg.Driver = "sqlite3"
	cfg.Database = t.TempDir() + "/global.db"
	cfg.Logger = logger.Discard()
	if _, err := pool.Init(context.Background(), cfg); err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	t.Cleanup(func() { pool.Shutdown() })

	e, err := Default()
	if err != nil {
		t.Fatalf("Default failed: %v", err)
	}
	ctx := context.Background()
	if _, err := e.Execute(ctx, e.Pool().Dialect().CreateTableSQL(widgetSchema), nil); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	m := NewModel(widgetSchema)
	if err := m.New(map[string]any{"id": "g1", "name": "global"}).Save(ctx); err != nil {
		t.Fatalf("Save through the global pool failed: %v", err)
	}
	if r, err := m.Find(ctx, "g1"); err != nil || r == nil {
		t.Errorf("Find = %v, %v", r, err)
	}
}

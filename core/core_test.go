package core

import (
	"bytes"
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/shrek82/arecord/logger"
	"github.com/shrek82/arecord/model"
	"github.com/shrek82/arecord/pool"
)

var stamps atomic.Int64

var widgetSchema = model.MustRegister("Widget", []model.Decl{
	{Attr: "id", Field: model.StringField(model.PrimaryKey())},
	{Attr: "name", Field: model.StringField()},
	{Attr: "count", Field: model.IntegerField(model.Default(0))},
	{Attr: "stamp", Field: model.FloatField(model.DefaultFunc(func() any {
		return float64(stamps.Add(1))
	}))},
}, model.TableName("widgets"))

// syncBuffer collects log output from concurrent writers.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func openTestPool(t *testing.T, maxSize int, l logger.Logger) *pool.Pool {
	t.Helper()
	cfg := pool.DefaultConfig()
	cfg.Driver = "sqlite3"
	cfg.Database = filepath.Join(t.TempDir(), "core.db")
	cfg.MaxSize = maxSize
	if cfg.MinSize > maxSize {
		cfg.MinSize = maxSize
	}
	if l == nil {
		l = logger.Discard()
	}
	cfg.Logger = l

	p, err := pool.Open(context.Background(), cfg)
	if err != nil {
		t.Fatalf("failed to open pool: %v", err)
	}
	t.Cleanup(func() { p.Close() })
	return p
}

// setupWidgets returns a widget model over a fresh sqlite database.
func setupWidgets(t *testing.T, l logger.Logger, opts ...ModelOption) *Model {
	t.Helper()
	p := openTestPool(t, 4, l)
	e := NewExecutor(p)
	if _, err := e.Execute(context.Background(), p.Dialect().CreateTableSQL(widgetSchema), nil); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	return NewModel(widgetSchema, append([]ModelOption{WithExecutor(e)}, opts...)...)
}

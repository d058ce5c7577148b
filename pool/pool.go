package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/shrek82/arecord/dialect"
	"github.com/shrek82/arecord/logger"
)

// Pool is a bounded set of database connections shared by every caller.
// At most MaxSize connections are handed out at once; Acquire waits for a
// free slot.
type Pool struct {
	db      *sql.DB
	dialect dialect.Dialect
	cfg     Config
	logger  logger.Logger
	slots   chan struct{}
	inUse   atomic.Int64
	closed  atomic.Bool
}

// Conn is a connection checked out of a Pool. Return it with Pool.Release.
type Conn struct {
	*sql.Conn
	pool *Pool
	once sync.Once
}

// Stats reports pool usage.
type Stats struct {
	InUse   int
	MaxSize int
	DB      sql.DBStats
}

// Open creates a pool and eagerly opens MinSize connections.
func Open(ctx context.Context, cfg Config) (*Pool, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	d, ok := dialect.Get(cfg.Driver)
	if !ok {
		return nil, fmt.Errorf("%w: unknown dialect %s", ErrInvalidConfig, cfg.Driver)
	}
	dsn, err := cfg.FormatDSN()
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}
	if cfg.MaxSize > 0 {
		db.SetMaxOpenConns(cfg.MaxSize)
		db.SetMaxIdleConns(cfg.MaxSize)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	l := cfg.Logger
	if l == nil {
		l = logger.New()
	}

	if cfg.ignoresAutocommit() {
		l.Warn("autocommit=false is not supported by driver %s, statements still autocommit", cfg.Driver)
	}

	p := &Pool{
		db:      db,
		dialect: d,
		cfg:     cfg,
		logger:  l,
		slots:   make(chan struct{}, cfg.MaxSize),
	}

	if err := p.warm(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return p, nil
}

// warm opens MinSize connections and parks them as idle.
func (p *Pool) warm(ctx context.Context) error {
	conns := make([]*sql.Conn, 0, p.cfg.MinSize)
	defer func() {
		for _, c := range conns {
			c.Close()
		}
	}()
	for i := 0; i < p.cfg.MinSize; i++ {
		c, err := p.db.Conn(ctx)
		if err != nil {
			return err
		}
		if err := c.PingContext(ctx); err != nil {
			c.Close()
			return err
		}
		conns = append(conns, c)
	}
	return nil
}

// Acquire checks a connection out of the pool, waiting for a free slot
// until ctx is done or the configured AcquireTimeout elapses. A pool with
// MaxSize 0 fails immediately.
func (p *Pool) Acquire(ctx context.Context) (*Conn, error) {
	if p.closed.Load() {
		return nil, ErrPoolClosed
	}
	if p.cfg.MaxSize == 0 {
		return nil, ErrPoolExhausted
	}
	if p.cfg.AcquireTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.AcquireTimeout)
		defer cancel()
	}

	select {
	case p.slots <- struct{}{}:
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire connection: %w", ctx.Err())
	}

	c, err := p.db.Conn(ctx)
	if err != nil {
		<-p.slots
		return nil, err
	}
	p.inUse.Add(1)
	return &Conn{Conn: c, pool: p}, nil
}

// Release returns a connection to the pool. It is safe to call with nil
// and more than once.
func (p *Pool) Release(c *Conn) {
	if c == nil {
		return
	}
	c.once.Do(func() {
		if err := c.Conn.Close(); err != nil {
			p.logger.Debug("release connection: %v", err)
		}
		p.inUse.Add(-1)
		<-p.slots
	})
}

// Close closes the pool. Connections still checked out are closed when
// released.
func (p *Pool) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return p.db.Close()
}

// Dialect returns the SQL dialect of the pool's driver.
func (p *Pool) Dialect() dialect.Dialect {
	return p.dialect
}

// Logger returns the logger configured for the pool.
func (p *Pool) Logger() logger.Logger {
	return p.logger
}

// Config returns the configuration the pool was opened with.
func (p *Pool) Config() Config {
	return p.cfg
}

// Stats reports current usage.
func (p *Pool) Stats() Stats {
	return Stats{
		InUse:   int(p.inUse.Load()),
		MaxSize: p.cfg.MaxSize,
		DB:      p.db.Stats(),
	}
}

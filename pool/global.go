package pool

import (
	"context"
	"sync"
)

var (
	globalMu sync.Mutex
	global   *Pool
)

// Init opens the process-wide pool. Calling it again while a pool is
// installed returns ErrAlreadyInitialized and leaves the installed pool
// untouched; call Shutdown first to replace it.
func Init(ctx context.Context, cfg Config) (*Pool, error) {
	globalMu.Lock()
	defer globalMu.Unlock()

	if global != nil {
		global.logger.Warn("connection pool already initialized, ignoring second Init")
		return nil, ErrAlreadyInitialized
	}

	p, err := Open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	p.logger.Info("create database connection pool (driver: %s, size: %d..%d)", cfg.Driver, cfg.MinSize, cfg.MaxSize)
	global = p
	return p, nil
}

// Default returns the process-wide pool.
func Default() (*Pool, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if global == nil {
		return nil, ErrNotInitialized
	}
	return global, nil
}

// Shutdown closes and uninstalls the process-wide pool. It is a no-op when
// no pool is installed.
func Shutdown() error {
	globalMu.Lock()
	p := global
	global = nil
	globalMu.Unlock()

	if p == nil {
		return nil
	}
	p.logger.Info("close database connection pool")
	return p.Close()
}

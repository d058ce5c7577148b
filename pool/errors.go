package pool

import "errors"

var (
	// ErrNotInitialized is returned by Default before Init succeeded.
	ErrNotInitialized = errors.New("connection pool not initialized")
	// ErrAlreadyInitialized is returned by Init while a pool is installed.
	ErrAlreadyInitialized = errors.New("connection pool already initialized")
	// ErrPoolExhausted is returned when the pool can never hand out a connection.
	ErrPoolExhausted = errors.New("connection pool exhausted")
	// ErrPoolClosed is returned when acquiring from a closed pool.
	ErrPoolClosed = errors.New("connection pool closed")
	// ErrInvalidConfig is returned when the pool configuration is unusable.
	ErrInvalidConfig = errors.New("invalid pool config")
)

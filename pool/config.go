package pool

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/shrek82/arecord/logger"
)

// Config holds everything needed to create the connection pool.
// Start from DefaultConfig: a zero MaxSize is a valid (always exhausted) pool.
type Config struct {
	Driver     string // mysql, postgres, pgx or sqlite3
	Host       string
	Port       int
	User       string
	Password   string
	Database   string // database name, or the file path for sqlite3
	Charset    string
	// Autocommit is sent to MySQL as a session setting. PostgreSQL and
	// SQLite always autocommit outside transactions; Open only warns when
	// it is false for them.
	Autocommit bool
	SSLMode    string // postgres only

	MinSize int // connections opened eagerly by Open
	MaxSize int // upper bound of connections in use at once

	// AcquireTimeout bounds the wait for a free connection. Zero waits
	// until the caller's context is done.
	AcquireTimeout time.Duration
	// QueryTimeout bounds every statement. Zero disables it.
	QueryTimeout time.Duration
	// SlowThreshold makes statements slower than it log a warning. Zero disables it.
	SlowThreshold time.Duration
	// ConnMaxLifetime is passed to database/sql. Zero keeps connections forever.
	ConnMaxLifetime time.Duration

	// DSN, when set, is used as is and the address fields are ignored.
	DSN string

	Logger logger.Logger
}

// DefaultConfig returns a MySQL configuration with the stock pool bounds.
func DefaultConfig() Config {
	return Config{
		Driver:     "mysql",
		Host:       "localhost",
		Port:       3306,
		Charset:    "utf8",
		Autocommit: true,
		MinSize:    1,
		MaxSize:    10,
	}
}

func (c Config) validate() error {
	if c.Driver == "" {
		return fmt.Errorf("%w: driver is empty", ErrInvalidConfig)
	}
	if c.MaxSize < 0 || c.MinSize < 0 {
		return fmt.Errorf("%w: negative pool bounds %d..%d", ErrInvalidConfig, c.MinSize, c.MaxSize)
	}
	if c.MinSize > c.MaxSize {
		return fmt.Errorf("%w: min size %d exceeds max size %d", ErrInvalidConfig, c.MinSize, c.MaxSize)
	}
	return nil
}

// ignoresAutocommit reports whether Autocommit=false cannot be honored.
func (c Config) ignoresAutocommit() bool {
	return !c.Autocommit && c.Driver != "mysql"
}

func (c Config) host() string {
	if c.Host == "" {
		return "localhost"
	}
	return c.Host
}

func (c Config) port() int {
	if c.Port != 0 {
		return c.Port
	}
	switch c.Driver {
	case "postgres", "pgx":
		return 5432
	}
	return 3306
}

// FormatDSN builds the driver-specific data source name.
func (c Config) FormatDSN() (string, error) {
	if c.DSN != "" {
		return c.DSN, nil
	}
	switch c.Driver {
	case "mysql":
		return c.mysqlDSN(), nil
	case "postgres", "pgx":
		return c.postgresDSN(), nil
	case "sqlite3":
		return c.sqliteDSN()
	}
	return "", fmt.Errorf("%w: unsupported driver %s", ErrInvalidConfig, c.Driver)
}

func (c Config) mysqlDSN() string {
	mc := mysql.NewConfig()
	mc.User = c.User
	mc.Passwd = c.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(c.host(), strconv.Itoa(c.port()))
	mc.DBName = c.Database
	mc.Params = map[string]string{}
	if c.Charset != "" {
		mc.Params["charset"] = c.Charset
	}
	// unknown params are sent as SET statements on connect
	if c.Autocommit {
		mc.Params["autocommit"] = "1"
	} else {
		mc.Params["autocommit"] = "0"
	}
	return mc.FormatDSN()
}

func (c Config) postgresDSN() string {
	kv := []string{
		"host=" + pgQuote(c.host()),
		"port=" + strconv.Itoa(c.port()),
	}
	if c.User != "" {
		kv = append(kv, "user="+pgQuote(c.User))
	}
	if c.Password != "" {
		kv = append(kv, "password="+pgQuote(c.Password))
	}
	if c.Database != "" {
		kv = append(kv, "dbname="+pgQuote(c.Database))
	}
	sslmode := c.SSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	kv = append(kv, "sslmode="+sslmode)
	if c.Charset != "" {
		kv = append(kv, "client_encoding="+pgQuote(pgEncoding(c.Charset)))
	}
	return strings.Join(kv, " ")
}

func pgQuote(v string) string {
	if v != "" && !strings.ContainsAny(v, ` '\`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	v = strings.ReplaceAll(v, `'`, `\'`)
	return "'" + v + "'"
}

func pgEncoding(charset string) string {
	switch strings.ToLower(charset) {
	case "utf8", "utf8mb4", "utf-8":
		return "UTF8"
	}
	return charset
}

func (c Config) sqliteDSN() (string, error) {
	if c.Database == "" {
		return "", fmt.Errorf("%w: sqlite3 needs a database file", ErrInvalidConfig)
	}
	sep := "?"
	if strings.Contains(c.Database, "?") {
		sep = "&"
	}
	return c.Database + sep + "_busy_timeout=5000", nil
}

package dbconn

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
)

// Config holds connection parameters for the monitored server.
type Config struct {
	Host           string
	Port           int
	User           string
	Password       string
	ConnectTimeout time.Duration
	QueryTimeout   time.Duration
	Attempts       int
	RetryBackoff   time.Duration
}

// withDefaults fills zero values so a partially specified config still works.
func (c Config) withDefaults() Config {
	if c.Host == "" {
		c.Host = "localhost"
	}
	if c.Port == 0 {
		c.Port = 3306
	}
	if c.User == "" {
		c.User = "root"
	}
	if c.ConnectTimeout <= 0 {
		c.ConnectTimeout = 5 * time.Second
	}
	if c.QueryTimeout <= 0 {
		c.QueryTimeout = 30 * time.Second
	}
	if c.Attempts <= 0 {
		c.Attempts = 3
	}
	if c.RetryBackoff <= 0 {
		c.RetryBackoff = time.Second
	}
	return c
}

// dsn builds the go-sql-driver DSN. No database is selected: collectors
// query status and information_schema surfaces only.
func (c Config) dsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/?parseTime=true&timeout=%s&readTimeout=%s&writeTimeout=%s",
		c.User, c.Password, c.Host, c.Port,
		c.ConnectTimeout.String(), c.QueryTimeout.String(), c.QueryTimeout.String())
}

// Session is the single live connection handle used by all collectors
// within one run.
type Session struct {
	db           *sql.DB
	queryTimeout time.Duration
}

// Connect establishes a session, retrying up to cfg.Attempts times. Each
// attempt is a fresh connection, not a resumption. Exhausting retries
// returns a *ConnectionError carrying the last cause.
func Connect(ctx context.Context, cfg Config) (*Session, error) {
	cfg = cfg.withDefaults()
	target := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= cfg.Attempts; attempt++ {
		db, err := sql.Open("mysql", cfg.dsn())
		if err != nil {
			lastErr = err
		} else {
			db.SetMaxOpenConns(2)
			db.SetMaxIdleConns(1)
			db.SetConnMaxLifetime(30 * time.Minute)

			pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				return &Session{db: db, queryTimeout: cfg.QueryTimeout}, nil
			}
			lastErr = err
			_ = db.Close()
		}

		if attempt < cfg.Attempts {
			select {
			case <-time.After(cfg.RetryBackoff):
			case <-ctx.Done():
				return nil, &ConnectionError{Target: target, Attempts: attempt, Err: ctx.Err()}
			}
		}
	}

	return nil, &ConnectionError{Target: target, Attempts: cfg.Attempts, Err: lastErr}
}

// Rows is a result set whose query timeout spans iteration. Closing it
// releases the deadline along with the underlying rows.
type Rows struct {
	*sql.Rows
	cancel context.CancelFunc
}

// Close releases the rows and the per-query deadline.
func (r *Rows) Close() error {
	err := r.Rows.Close()
	r.cancel()
	return err
}

// Query runs one read-only statement under the session's query timeout.
// Failures are wrapped in *QueryError so callers at the collector
// boundary record them without aborting the run. The returned Rows must
// be closed to release the deadline.
func (s *Session) Query(ctx context.Context, stmt string, args ...interface{}) (*Rows, error) {
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	rows, err := s.db.QueryContext(qctx, stmt, args...)
	if err != nil {
		cancel()
		return nil, &QueryError{Stmt: stmt, Err: err}
	}
	return &Rows{Rows: rows, cancel: cancel}, nil
}

// QueryRowScan runs a single-row statement and scans the result.
func (s *Session) QueryRowScan(ctx context.Context, stmt string, dest ...interface{}) error {
	qctx, cancel := context.WithTimeout(ctx, s.queryTimeout)
	defer cancel()
	if err := s.db.QueryRowContext(qctx, stmt).Scan(dest...); err != nil {
		return &QueryError{Stmt: stmt, Err: err}
	}
	return nil
}

// Close releases the session. Safe to call on every exit path.
func (s *Session) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

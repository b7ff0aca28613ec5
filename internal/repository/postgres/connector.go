package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/lib/pq"

	"eventbooking/internal/domain"
)

// DefaultConnectTimeout bounds dialing and the startup handshake so callers fail fast while the database is unreachable.
const DefaultConnectTimeout = 5 * time.Second

// Connector hands out the process-wide database handle.
type Connector interface {
	Conn(ctx context.Context) (*sql.DB, error)
}

// LazyConnector opens the database on first use and memoizes the handle.
// A failed attempt leaves nothing cached, so the next call retries.
type LazyConnector struct {
	dsn     string
	timeout time.Duration
	open    func(dsn string, connectTimeout time.Duration) (*sql.DB, error)

	mu sync.Mutex
	db atomic.Pointer[sql.DB]
}

// NewLazyConnector returns a LazyConnector for the given Postgres DSN.
// A non-positive connectTimeout uses DefaultConnectTimeout.
func NewLazyConnector(dsn string, connectTimeout time.Duration) *LazyConnector {
	if connectTimeout <= 0 {
		connectTimeout = DefaultConnectTimeout
	}
	return &LazyConnector{
		dsn:     dsn,
		timeout: connectTimeout,
		open:    openPostgres,
	}
}

// openPostgres builds a pool whose connections give up on dial and handshake after
// connectTimeout, unless the DSN sets its own connect_timeout. lib/pq ignores context
// cancellation during startup, so the deadline has to live on the connection itself.
func openPostgres(dsn string, connectTimeout time.Duration) (*sql.DB, error) {
	cfg, err := pq.NewConfig(dsn)
	if err != nil {
		return nil, err
	}
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = connectTimeout
	}
	connector, err := pq.NewConnectorConfig(cfg)
	if err != nil {
		return nil, err
	}
	return sql.OpenDB(connector), nil
}

// Conn returns the shared handle, connecting first if needed. Concurrent first
// callers wait on a single connection attempt.
func (c *LazyConnector) Conn(ctx context.Context) (*sql.DB, error) {
	if db := c.db.Load(); db != nil {
		return db, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if db := c.db.Load(); db != nil {
		return db, nil
	}

	db, err := c.open(c.dsn, c.timeout)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", domain.ErrStorage, err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect database: %w: %w", domain.ErrStorage, err)
	}

	c.db.Store(db)
	return db, nil
}

// Close closes the handle if one was established. A later Conn reconnects.
func (c *LazyConnector) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	db := c.db.Swap(nil)
	if db == nil {
		return nil
	}
	return db.Close()
}

type staticConnector struct {
	db *sql.DB
}

// NewStaticConnector returns a Connector that always hands out db.
func NewStaticConnector(db *sql.DB) Connector {
	return &staticConnector{db: db}
}

func (s *staticConnector) Conn(_ context.Context) (*sql.DB, error) {
	return s.db, nil
}

// storageErr wraps a driver error so callers can classify it with errors.Is(err, domain.ErrStorage).
func storageErr(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, domain.ErrStorage, err)
}

// HealthCheck reports whether the database behind a Connector is reachable.
type HealthCheck struct {
	conn Connector
}

func NewHealthCheck(conn Connector) *HealthCheck {
	return &HealthCheck{conn: conn}
}

// Ping connects if needed and round-trips to the server.
func (h *HealthCheck) Ping(ctx context.Context) error {
	db, err := h.conn.Conn(ctx)
	if err != nil {
		return err
	}
	if err := db.PingContext(ctx); err != nil {
		return storageErr("ping database", err)
	}
	return nil
}

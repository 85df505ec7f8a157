package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" driver

	"github.com/kailas-cloud/jobdex/internal/db"
)

var _ db.Readiness = (*Client)(nil)

// Config holds connection pool parameters.
type Config struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// Client wraps a pgx-backed *sql.DB.
type Client struct {
	db *sql.DB
}

// Open creates a pool. It does not contact the server; use WaitForReady.
func Open(cfg Config) (*Client, error) {
	if cfg.DSN == "" {
		return nil, fmt.Errorf("dsn is required")
	}
	conn, err := sql.Open("pgx", cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		conn.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		conn.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
	return &Client{db: conn}, nil
}

// NewClientForTest wraps an existing handle (sqlmock).
func NewClientForTest(conn *sql.DB) *Client { return &Client{db: conn} }

// DB returns the underlying handle.
func (c *Client) DB() *sql.DB { return c.db }

// Ping checks connectivity.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.db.PingContext(ctx); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// WaitForReady polls Ping until the server responds or timeout expires.
func (c *Client) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()

	for {
		if err := c.Ping(ctx); err == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for postgres: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}

// Close closes the pool.
func (c *Client) Close() error { return c.db.Close() }

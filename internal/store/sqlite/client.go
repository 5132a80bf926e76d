package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"ziwei/internal/store"

	_ "modernc.org/sqlite"
)

var _ store.Store = (*Client)(nil)

const openTimeout = 30 * time.Second

// filePragmas apply to on-disk databases; an in-memory database keeps the
// driver defaults apart from the busy timeout.
var filePragmas = []string{
	"PRAGMA journal_mode = WAL;",
	"PRAGMA synchronous = NORMAL;",
}

type Client struct {
	db *sql.DB
}

func New(ctx context.Context, dsn string) (*Client, error) {
	driverDSN, err := parseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parsing sqlite DSN: %w", err)
	}

	db, err := sql.Open("sqlite", driverDSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}

	memory := isMemory(driverDSN)
	if memory {
		// Each connection to :memory: would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(ctx, openTimeout)
	defer cancel()

	if err := configure(ctx, db, memory); err != nil {
		db.Close()
		return nil, err
	}
	return &Client{db: db}, nil
}

func configure(ctx context.Context, db *sql.DB, memory bool) error {
	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("pinging sqlite: %w", err)
	}
	pragmas := []string{fmt.Sprintf("PRAGMA busy_timeout = %d;", openTimeout.Milliseconds())}
	if !memory {
		pragmas = append(pragmas, filePragmas...)
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("setting pragma %q: %w", pragma, err)
		}
	}
	return nil
}

func (c *Client) Close(ctx context.Context) error {
	return c.db.Close()
}

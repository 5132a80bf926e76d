package postgres

import (
	"context"
	"fmt"
)

// EnsureSchema runs the DDL as one multi-statement Exec, which postgres wraps
// in an implicit transaction.
func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
CREATE TABLE IF NOT EXISTS profiles (
    id              BIGINT GENERATED ALWAYS AS IDENTITY PRIMARY KEY,
    name            TEXT NOT NULL,
    name_normalized TEXT NOT NULL,
    calendar        TEXT NOT NULL DEFAULT 'solar',
    birth_year      INTEGER NOT NULL,
    birth_month     INTEGER NOT NULL,
    birth_day       INTEGER NOT NULL,
    leap_month      BOOLEAN NOT NULL DEFAULT FALSE,
    hour_branch     INTEGER NOT NULL,
    gender          TEXT NOT NULL,
    tags            TEXT[] DEFAULT '{}',
    notes           TEXT DEFAULT '',
    source_file     TEXT,
    source_hash     TEXT,
    last_updated    TIMESTAMPTZ DEFAULT now(),
    CONSTRAINT uq_profile_name UNIQUE (name_normalized)
);

ALTER TABLE profiles ADD COLUMN IF NOT EXISTS search_vector TSVECTOR;

CREATE INDEX IF NOT EXISTS idx_profiles_search ON profiles USING GIN (search_vector);
CREATE INDEX IF NOT EXISTS idx_profiles_source_file ON profiles (source_file);
CREATE INDEX IF NOT EXISTS idx_profiles_tags ON profiles USING GIN (tags);
`
	if _, err := c.pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensuring schema: %w", err)
	}
	return nil
}

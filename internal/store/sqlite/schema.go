package sqlite

import (
	"context"
	"fmt"
	"strings"
)

func (c *Client) EnsureSchema(ctx context.Context) error {
	ddl := `
	CREATE TABLE IF NOT EXISTS profiles (
		id              INTEGER PRIMARY KEY AUTOINCREMENT,
		name            TEXT NOT NULL,
		name_normalized TEXT NOT NULL,
		calendar        TEXT NOT NULL DEFAULT 'solar',
		birth_year      INTEGER NOT NULL,
		birth_month     INTEGER NOT NULL,
		birth_day       INTEGER NOT NULL,
		leap_month      INTEGER NOT NULL DEFAULT 0,
		hour_branch     INTEGER NOT NULL,
		gender          TEXT NOT NULL,
		tags            TEXT DEFAULT '[]',
		notes           TEXT DEFAULT '',
		source_file     TEXT,
		source_hash     TEXT,
		last_updated    TEXT DEFAULT (datetime('now')),
		CONSTRAINT uq_profile_name UNIQUE (name_normalized)
	);

	CREATE INDEX IF NOT EXISTS idx_profiles_source_file ON profiles (source_file);

	CREATE VIRTUAL TABLE IF NOT EXISTS profiles_fts USING fts5(
		name,
		tags,
		notes,
		content=profiles,
		content_rowid=id
	);

	CREATE TRIGGER IF NOT EXISTS profiles_ai AFTER INSERT ON profiles BEGIN
		INSERT INTO profiles_fts(rowid, name, tags, notes)
		VALUES (new.id, new.name, new.tags, new.notes);
	END;

	CREATE TRIGGER IF NOT EXISTS profiles_ad AFTER DELETE ON profiles BEGIN
		INSERT INTO profiles_fts(profiles_fts, rowid, name, tags, notes)
		VALUES ('delete', old.id, old.name, old.tags, old.notes);
	END;

	CREATE TRIGGER IF NOT EXISTS profiles_au AFTER UPDATE ON profiles BEGIN
		INSERT INTO profiles_fts(profiles_fts, rowid, name, tags, notes)
		VALUES ('delete', old.id, old.name, old.tags, old.notes);
		INSERT INTO profiles_fts(rowid, name, tags, notes)
		VALUES (new.id, new.name, new.tags, new.notes);
	END;
	`

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, stmt := range splitStatements(ddl) {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("executing DDL: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing schema transaction: %w", err)
	}

	return nil
}

// splitStatements cuts the DDL on lines ending in ';'. Trigger bodies are
// kept whole because their inner statements end mid-line or are followed by
// END on its own line.
func splitStatements(ddl string) []string {
	var statements []string
	var current strings.Builder
	inTrigger := false

	for _, line := range strings.Split(ddl, "\n") {
		stripped := strings.TrimSpace(line)
		if strings.HasPrefix(stripped, "--") {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(stripped), "CREATE TRIGGER") {
			inTrigger = true
		}
		current.WriteString(line)
		current.WriteString("\n")

		if !strings.HasSuffix(stripped, ";") {
			continue
		}
		if inTrigger && !strings.EqualFold(stripped, "END;") {
			continue
		}
		inTrigger = false
		statements = append(statements, current.String())
		current.Reset()
	}

	if strings.TrimSpace(current.String()) != "" {
		statements = append(statements, current.String())
	}

	return statements
}

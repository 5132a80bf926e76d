package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// RemoveStaleProfiles deletes imported profiles whose source file is not in
// currentSourceFiles. An empty list removes nothing.
func (c *Client) RemoveStaleProfiles(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	tag, err := c.pool.Exec(ctx, `
DELETE FROM profiles
WHERE coalesce(source_file, '') <> ''
  AND NOT (source_file = ANY($1))
`, currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("removing stale profiles: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (c *Client) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.pool.Query(ctx,
		`SELECT source_file, coalesce(source_hash, '') FROM profiles WHERE coalesce(source_file, '') <> ''`)
	if err != nil {
		return nil, fmt.Errorf("querying source hashes: %w", err)
	}

	hashes := make(map[string]string)
	var file, hash string
	_, err = pgx.ForEachRow(rows, []any{&file, &hash}, func() error {
		hashes[file] = hash
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning source hashes: %w", err)
	}
	return hashes, nil
}

package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
)

// The file list travels as one JSON array parameter, which keeps large
// imports under sqlite's bound-variable limit.
const removeStaleSQL = `
DELETE FROM profiles
WHERE coalesce(source_file, '') <> ''
  AND source_file NOT IN (SELECT value FROM json_each(?))
`

// RemoveStaleProfiles deletes imported profiles whose source file is no longer
// present. Profiles added by hand have no source file and are never removed.
// An empty list removes nothing.
func (c *Client) RemoveStaleProfiles(ctx context.Context, currentSourceFiles []string) (int64, error) {
	if len(currentSourceFiles) == 0 {
		return 0, nil
	}

	files, err := json.Marshal(currentSourceFiles)
	if err != nil {
		return 0, fmt.Errorf("encoding source files: %w", err)
	}

	result, err := c.db.ExecContext(ctx, removeStaleSQL, string(files))
	if err != nil {
		return 0, fmt.Errorf("removing stale profiles: %w", err)
	}
	return result.RowsAffected()
}

// GetSourceHashes maps each imported profile's source file to its content hash.
func (c *Client) GetSourceHashes(ctx context.Context) (map[string]string, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT source_file, coalesce(source_hash, '') FROM profiles WHERE coalesce(source_file, '') <> ''`)
	if err != nil {
		return nil, fmt.Errorf("querying source hashes: %w", err)
	}
	defer rows.Close()

	hashes := make(map[string]string)
	for rows.Next() {
		var file, hash string
		if err := rows.Scan(&file, &hash); err != nil {
			return nil, fmt.Errorf("scanning source hash: %w", err)
		}
		hashes[file] = hash
	}
	return hashes, rows.Err()
}

package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"ziwei/internal/store"
)

const searchLimit = 50

// Names and tags are indexed with the 'simple' configuration and notes with
// 'english', so the query is parsed both ways and OR-ed.
const searchSQL = `
WITH q AS (
    SELECT websearch_to_tsquery('simple', $1) || websearch_to_tsquery('english', $1) AS query
)
SELECT p.name, p.tags,
    ts_rank(p.search_vector, q.query) AS score,
    CASE WHEN p.notes <> '' THEN
        ts_headline('english', p.notes, q.query,
            'MaxFragments=2, MaxWords=30, MinWords=10, StartSel=**, StopSel=**')
    ELSE '' END AS snippet
FROM profiles p, q
WHERE p.search_vector @@ q.query
ORDER BY score DESC, p.name ASC
LIMIT $2
`

func (c *Client) SearchProfiles(ctx context.Context, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	rows, err := c.pool.Query(ctx, searchSQL, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("searching profiles: %w", err)
	}

	results, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (store.SearchResult, error) {
		var r store.SearchResult
		var score float32
		if err := row.Scan(&r.Name, &r.Tags, &score, &r.Snippet); err != nil {
			return r, err
		}
		r.Score = float64(score)
		if r.Tags == nil {
			r.Tags = []string{}
		}
		return r, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning search results: %w", err)
	}
	return results, nil
}

package sqlite

import (
	"context"
	"fmt"
	"strings"

	"ziwei/internal/store"
)

func (c *Client) SearchProfiles(ctx context.Context, query string) ([]store.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query must not be empty")
	}

	sqlQuery := `
	SELECT p.name, p.tags,
		   bm25(profiles_fts, 10.0, 4.0, 1.0) AS score,
		   snippet(profiles_fts, 2, '**', '**', '...', 30) AS snippet
	FROM profiles_fts
	JOIN profiles p ON profiles_fts.rowid = p.id
	WHERE profiles_fts MATCH ?
	ORDER BY score ASC, p.name ASC
	LIMIT 50
	`

	rows, err := c.db.QueryContext(ctx, sqlQuery, convertWebsearchToFTS5(query))
	if err != nil {
		return nil, fmt.Errorf("searching profiles: %w", err)
	}
	defer rows.Close()

	results := []store.SearchResult{}
	for rows.Next() {
		var r store.SearchResult
		var tagsText string
		if err := rows.Scan(&r.Name, &tagsText, &r.Score, &r.Snippet); err != nil {
			return nil, fmt.Errorf("scanning search result: %w", err)
		}
		if r.Tags, err = decodeTags(tagsText); err != nil {
			return nil, err
		}
		// bm25 ranks better matches lower; flip it so higher is better.
		r.Score = -r.Score
		results = append(results, r)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating search results: %w", err)
	}

	return results, nil
}

// convertWebsearchToFTS5 turns a web-style query into FTS5 syntax. Bare terms
// are joined with AND; a leading '-' becomes FTS5's binary NOT.
func convertWebsearchToFTS5(query string) string {
	var result strings.Builder
	var inQuote bool
	var current strings.Builder

	join := func(negate bool) {
		if result.Len() == 0 {
			return
		}
		if isOperator(lastWord(result.String())) {
			result.WriteString(" ")
			return
		}
		if negate {
			result.WriteString(" NOT ")
			return
		}
		result.WriteString(" AND ")
	}

	flushToken := func() {
		token := current.String()
		current.Reset()
		if token == "" {
			return
		}

		if upper := strings.ToUpper(token); isOperator(upper) {
			if result.Len() > 0 {
				result.WriteString(" ")
			}
			result.WriteString(upper)
			return
		}

		negate := strings.HasPrefix(token, "-") && len(token) > 1
		if negate {
			token = token[1:]
		}
		join(negate)
		result.WriteString(token)
	}

	for i := 0; i < len(query); i++ {
		ch := query[i]
		switch {
		case ch == '"':
			if inQuote {
				inQuote = false
				token := current.String()
				current.Reset()
				if token != "" {
					join(false)
					result.WriteString(`"`)
					result.WriteString(token)
					result.WriteString(`"`)
				}
			} else {
				flushToken()
				inQuote = true
			}
		case inQuote:
			current.WriteByte(ch)
		case ch == ' ' || ch == '\t':
			flushToken()
		default:
			current.WriteByte(ch)
		}
	}

	flushToken()

	return result.String()
}

func isOperator(word string) bool {
	return word == "AND" || word == "OR" || word == "NOT"
}

func lastWord(s string) string {
	words := strings.Fields(s)
	if len(words) == 0 {
		return ""
	}
	return words[len(words)-1]
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"ziwei/internal/store"
)

func (c *Client) UpsertProfile(ctx context.Context, p store.ProfileInput) error {
	tags := p.Tags
	if len(tags) == 0 {
		tags = nil
	}
	calendar := p.Birth.Calendar
	if calendar == "" {
		calendar = store.CalendarSolar
	}

	query := `
INSERT INTO profiles (name, name_normalized, calendar, birth_year, birth_month, birth_day, leap_month, hour_branch, gender, tags, notes, source_file, source_hash, last_updated, search_vector)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, COALESCE($10, '{}'::text[]), $11, $12, $13, now(),
    setweight(to_tsvector('simple', coalesce($1, '')), 'A') ||
    setweight(to_tsvector('simple', coalesce(array_to_string(COALESCE($10, '{}'::text[]), ' '), '')), 'B') ||
    setweight(to_tsvector('english', coalesce($11, '')), 'C')
)
ON CONFLICT (name_normalized) DO UPDATE SET
    name = EXCLUDED.name,
    calendar = EXCLUDED.calendar,
    birth_year = EXCLUDED.birth_year,
    birth_month = EXCLUDED.birth_month,
    birth_day = EXCLUDED.birth_day,
    leap_month = EXCLUDED.leap_month,
    hour_branch = EXCLUDED.hour_branch,
    gender = EXCLUDED.gender,
    tags = EXCLUDED.tags,
    notes = EXCLUDED.notes,
    source_file = EXCLUDED.source_file,
    source_hash = EXCLUDED.source_hash,
    last_updated = now(),
    search_vector = EXCLUDED.search_vector
`

	_, err := c.pool.Exec(ctx, query,
		strings.TrimSpace(p.Name),
		store.NormalizeName(p.Name),
		calendar,
		p.Birth.Year,
		p.Birth.Month,
		p.Birth.Day,
		p.Birth.LeapMonth,
		p.Birth.HourBranch,
		p.Birth.Gender,
		tags,
		p.Notes,
		p.SourceFile,
		p.SourceHash,
	)
	if err != nil {
		return fmt.Errorf("upserting profile: %w", err)
	}
	return nil
}

func (c *Client) GetProfile(ctx context.Context, name string) (*store.Profile, error) {
	query := `
SELECT name, calendar, birth_year, birth_month, birth_day, leap_month, hour_branch, gender,
    tags, notes, COALESCE(source_file, ''), COALESCE(source_hash, '')
FROM profiles
WHERE name_normalized = $1
`

	var p store.Profile
	err := c.pool.QueryRow(ctx, query, store.NormalizeName(name)).Scan(
		&p.Name,
		&p.Birth.Calendar,
		&p.Birth.Year,
		&p.Birth.Month,
		&p.Birth.Day,
		&p.Birth.LeapMonth,
		&p.Birth.HourBranch,
		&p.Birth.Gender,
		&p.Tags,
		&p.Notes,
		&p.SourceFile,
		&p.SourceHash,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	if p.Tags == nil {
		p.Tags = []string{}
	}
	return &p, nil
}

func (c *Client) ListProfiles(ctx context.Context, tag string) ([]store.ProfileSummary, error) {
	query := `
SELECT name, calendar, birth_year, birth_month, birth_day, tags
FROM profiles
WHERE ($1 = '' OR EXISTS (SELECT 1 FROM unnest(tags) AS t WHERE lower(t) = lower($1)))
ORDER BY name
`

	rows, err := c.pool.Query(ctx, query, tag)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	summaries := []store.ProfileSummary{}
	for rows.Next() {
		var s store.ProfileSummary
		if err := rows.Scan(&s.Name, &s.Calendar, &s.Year, &s.Month, &s.Day, &s.Tags); err != nil {
			return nil, fmt.Errorf("scanning profile summary: %w", err)
		}
		if s.Tags == nil {
			s.Tags = []string{}
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile summaries: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteProfile(ctx context.Context, name string) (bool, error) {
	tag, err := c.pool.Exec(ctx, "DELETE FROM profiles WHERE name_normalized = $1", store.NormalizeName(name))
	if err != nil {
		return false, fmt.Errorf("deleting profile: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

package sqlite

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"ziwei/internal/store"
)

func (c *Client) UpsertProfile(ctx context.Context, p store.ProfileInput) error {
	tags := p.Tags
	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("marshaling tags: %w", err)
	}

	query := `
	INSERT INTO profiles (name, name_normalized, calendar, birth_year, birth_month, birth_day, leap_month, hour_branch, gender, tags, notes, source_file, source_hash, last_updated)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, datetime('now'))
	ON CONFLICT (name_normalized) DO UPDATE SET
		name = excluded.name,
		calendar = excluded.calendar,
		birth_year = excluded.birth_year,
		birth_month = excluded.birth_month,
		birth_day = excluded.birth_day,
		leap_month = excluded.leap_month,
		hour_branch = excluded.hour_branch,
		gender = excluded.gender,
		tags = excluded.tags,
		notes = excluded.notes,
		source_file = excluded.source_file,
		source_hash = excluded.source_hash,
		last_updated = datetime('now')
	`

	_, err = c.db.ExecContext(ctx, query,
		strings.TrimSpace(p.Name),
		store.NormalizeName(p.Name),
		calendarOrDefault(p.Birth.Calendar),
		p.Birth.Year,
		p.Birth.Month,
		p.Birth.Day,
		p.Birth.LeapMonth,
		p.Birth.HourBranch,
		p.Birth.Gender,
		string(tagsJSON),
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
	WHERE name_normalized = ?
	`

	rows, err := c.db.QueryContext(ctx, query, store.NormalizeName(name))
	if err != nil {
		return nil, fmt.Errorf("getting profile: %w", err)
	}
	defer rows.Close()

	var profiles []store.Profile
	for rows.Next() {
		var p store.Profile
		var tagsText string
		err := rows.Scan(
			&p.Name,
			&p.Birth.Calendar,
			&p.Birth.Year,
			&p.Birth.Month,
			&p.Birth.Day,
			&p.Birth.LeapMonth,
			&p.Birth.HourBranch,
			&p.Birth.Gender,
			&tagsText,
			&p.Notes,
			&p.SourceFile,
			&p.SourceHash,
		)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		if p.Tags, err = decodeTags(tagsText); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile rows: %w", err)
	}

	if len(profiles) == 0 {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, name)
	}
	if len(profiles) > 1 {
		return nil, fmt.Errorf("internal error: profile uniqueness constraint violated (found %d rows for %q)", len(profiles), name)
	}

	return &profiles[0], nil
}

func (c *Client) ListProfiles(ctx context.Context, tag string) ([]store.ProfileSummary, error) {
	query := `
	SELECT name, calendar, birth_year, birth_month, birth_day, tags
	FROM profiles
	ORDER BY name
	`

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing profiles: %w", err)
	}
	defer rows.Close()

	summaries := []store.ProfileSummary{}
	for rows.Next() {
		var s store.ProfileSummary
		var tagsText string
		if err := rows.Scan(&s.Name, &s.Calendar, &s.Year, &s.Month, &s.Day, &tagsText); err != nil {
			return nil, fmt.Errorf("scanning profile summary: %w", err)
		}
		if s.Tags, err = decodeTags(tagsText); err != nil {
			return nil, err
		}
		if tag != "" && !containsTag(s.Tags, tag) {
			continue
		}
		summaries = append(summaries, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating profile summaries: %w", err)
	}

	return summaries, nil
}

func (c *Client) DeleteProfile(ctx context.Context, name string) (bool, error) {
	result, err := c.db.ExecContext(ctx, "DELETE FROM profiles WHERE name_normalized = ?", store.NormalizeName(name))
	if err != nil {
		return false, fmt.Errorf("deleting profile: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("getting rows affected: %w", err)
	}
	return affected > 0, nil
}

func decodeTags(text string) ([]string, error) {
	tags := []string{}
	if text == "" {
		return tags, nil
	}
	if err := json.Unmarshal([]byte(text), &tags); err != nil {
		return nil, fmt.Errorf("unmarshaling tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	return tags, nil
}

func containsTag(tags []string, tag string) bool {
	for _, t := range tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func calendarOrDefault(calendar string) string {
	if calendar == "" {
		return store.CalendarSolar
	}
	return calendar
}

// Package profile turns stored or imported birth records into charts.
package profile

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"ziwei/internal/chart"
	"ziwei/internal/ganzhi"
	"ziwei/internal/lunar"
	"ziwei/internal/parser"
	"ziwei/internal/store"
)

var ErrInvalidProfile = errors.New("invalid profile")

// FromDocument reads a `type: profile` markdown document. The birth hour is
// taken from hour_branch (0-11) or from birth_time ("HH:MM").
func FromDocument(doc *parser.Document) (store.ProfileInput, error) {
	if doc.Kind != parser.KindProfile {
		return store.ProfileInput{}, fmt.Errorf("%w: %s is type %q", ErrInvalidProfile, doc.Title, doc.Kind)
	}

	raw, err := doc.String("birth_date")
	if err != nil {
		return store.ProfileInput{}, fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	year, month, day, err := ParseDate(raw)
	if err != nil {
		return store.ProfileInput{}, err
	}

	birth := store.Birth{
		Calendar: store.CalendarSolar,
		Year:     year,
		Month:    month,
		Day:      day,
	}
	if calendar, err := doc.String("calendar"); err == nil {
		birth.Calendar = strings.ToLower(calendar)
	}
	if leap, ok := doc.Frontmatter["leap_month"].(bool); ok {
		birth.LeapMonth = leap
	}

	if _, ok := doc.Frontmatter["hour_branch"]; ok {
		birth.HourBranch, err = doc.Int("hour_branch")
	} else {
		var clock string
		if clock, err = doc.String("birth_time"); err == nil {
			birth.HourBranch, err = ParseClock(clock)
		}
	}
	if err != nil {
		return store.ProfileInput{}, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, doc.Title, err)
	}

	if birth.Gender, err = doc.String("gender"); err != nil {
		return store.ProfileInput{}, fmt.Errorf("%w: %s: %v", ErrInvalidProfile, doc.Title, err)
	}

	input := store.ProfileInput{
		Name:       doc.Title,
		Birth:      birth,
		Tags:       doc.Tags,
		Notes:      strings.TrimSpace(doc.Body),
		SourceFile: doc.SourceFile,
	}
	if err := Validate(input.Birth); err != nil {
		return store.ProfileInput{}, fmt.Errorf("%s: %w", doc.Title, err)
	}
	return input, nil
}

// ParseDate reads YYYY-MM-DD. Calendar validity is checked later.
func ParseDate(value string) (int, int, int, error) {
	parts := strings.Split(strings.TrimSpace(value), "-")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidProfile, value)
	}
	var out [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil {
			return 0, 0, 0, fmt.Errorf("%w: date %q is not YYYY-MM-DD", ErrInvalidProfile, value)
		}
		out[i] = n
	}
	return out[0], out[1], out[2], nil
}

// ParseClock maps an "HH:MM" clock time to its two-hour branch.
func ParseClock(value string) (int, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok {
		return 0, fmt.Errorf("time %q is not HH:MM", value)
	}
	hour, err := strconv.Atoi(hh)
	if err != nil {
		return 0, fmt.Errorf("time %q is not HH:MM", value)
	}
	minute, err := strconv.Atoi(mm)
	if err != nil {
		return 0, fmt.Errorf("time %q is not HH:MM", value)
	}
	return ganzhi.HourBranch(hour, minute)
}

// Validate checks the fields that do not need the calendar tables.
func Validate(b store.Birth) error {
	if b.Calendar != store.CalendarSolar && b.Calendar != store.CalendarLunar {
		return fmt.Errorf("%w: calendar %q", ErrInvalidProfile, b.Calendar)
	}
	if b.LeapMonth && b.Calendar != store.CalendarLunar {
		return fmt.Errorf("%w: leap_month needs the lunar calendar", ErrInvalidProfile)
	}
	if b.HourBranch < 0 || b.HourBranch >= chart.PalaceCount {
		return fmt.Errorf("%w: hour branch %d", ErrInvalidProfile, b.HourBranch)
	}
	if _, err := chart.ParseGender(b.Gender); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidProfile, err)
	}
	return nil
}

// Chart computes the natal chart of a birth record.
func Chart(engine *chart.Engine, b store.Birth) (*chart.Chart, error) {
	if err := Validate(b); err != nil {
		return nil, err
	}
	gender, err := chart.ParseGender(b.Gender)
	if err != nil {
		return nil, err
	}
	if b.Calendar == store.CalendarLunar {
		ld := lunar.Date{Year: b.Year, Month: b.Month, Day: b.Day, IsLeapMonth: b.LeapMonth}
		return engine.ComputeLunar(ld, b.HourBranch, gender)
	}
	return engine.Compute(chart.SolarDate{Year: b.Year, Month: b.Month, Day: b.Day, HourBranch: b.HourBranch}, gender)
}

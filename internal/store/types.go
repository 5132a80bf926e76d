package store

import "strings"

const (
	CalendarSolar = "solar"
	CalendarLunar = "lunar"
)

// Birth is a stored birth record. Year, Month and Day are in the calendar
// named by Calendar; LeapMonth only applies to lunar dates.
type Birth struct {
	Calendar   string
	Year       int
	Month      int
	Day        int
	LeapMonth  bool
	HourBranch int
	Gender     string
}

type ProfileInput struct {
	Name       string
	Birth      Birth
	Tags       []string
	Notes      string
	SourceFile string
	SourceHash string
}

type Profile struct {
	Name       string
	Birth      Birth
	Tags       []string
	Notes      string
	SourceFile string
	SourceHash string
}

type ProfileSummary struct {
	Name     string
	Calendar string
	Year     int
	Month    int
	Day      int
	Tags     []string
}

type SearchResult struct {
	Name    string
	Tags    []string
	Score   float64
	Snippet string
}

// NormalizeName is the key profiles are unique on.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

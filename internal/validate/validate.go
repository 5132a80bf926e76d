// Package validate checks stored profiles and the meaning knowledge base.
package validate

import (
	"context"
	"errors"
	"fmt"
	"os"

	"ziwei/internal/chart"
	"ziwei/internal/meaning"
	"ziwei/internal/profile"
	"ziwei/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeOutOfRange     = "out_of_range_date"
	codeInvalidBirth   = "invalid_birth_data"
	codeInvariant      = "chart_invariant"
	codeSourceMissing  = "source_file_missing"
	codeMeaningMissing = "meaning_missing"
)

type Issue struct {
	Severity Severity
	Code     string
	Message  string
	Profile  string
	FilePath string
}

type Report struct {
	Profiles int
	Issues   []Issue
}

func (r *Report) Count(severity Severity) int {
	n := 0
	for _, issue := range r.Issues {
		if issue.Severity == severity {
			n++
		}
	}
	return n
}

type ProfileSource interface {
	ListProfiles(ctx context.Context, tag string) ([]store.ProfileSummary, error)
	GetProfile(ctx context.Context, name string) (*store.Profile, error)
}

type Coverage interface {
	Coverage() []meaning.Key
}

// Run computes a chart for every stored profile and reports the ones that
// fail, then lists knowledge base gaps as warnings. Either source may be nil.
func Run(ctx context.Context, engine *chart.Engine, profiles ProfileSource, kb Coverage) (*Report, error) {
	if engine == nil {
		return nil, fmt.Errorf("chart engine is required")
	}

	report := &Report{Issues: make([]Issue, 0)}

	if profiles != nil {
		summaries, err := profiles.ListProfiles(ctx, "")
		if err != nil {
			return nil, fmt.Errorf("list profiles: %w", err)
		}
		for _, summary := range summaries {
			p, err := profiles.GetProfile(ctx, summary.Name)
			if errors.Is(err, store.ErrNotFound) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("get profile %s: %w", summary.Name, err)
			}
			report.Profiles++
			report.Issues = append(report.Issues, checkProfile(engine, p)...)
		}
	}

	if kb != nil {
		for _, key := range kb.Coverage() {
			report.Issues = append(report.Issues, Issue{
				Severity: SeverityWarn,
				Code:     codeMeaningMissing,
				Message:  fmt.Sprintf("no meaning text for %s in %s", key.Transformation.Label(), key.Palace),
			})
		}
	}

	return report, nil
}

func checkProfile(engine *chart.Engine, p *store.Profile) []Issue {
	var issues []Issue
	issue := func(severity Severity, code, message string) {
		issues = append(issues, Issue{
			Severity: severity,
			Code:     code,
			Message:  message,
			Profile:  p.Name,
			FilePath: p.SourceFile,
		})
	}

	if _, err := profile.Chart(engine, p.Birth); err != nil {
		switch {
		case errors.Is(err, chart.ErrOutOfRangeDate):
			issue(SeverityError, codeOutOfRange, err.Error())
		case errors.Is(err, chart.ErrInvalidBirthData), errors.Is(err, profile.ErrInvalidProfile):
			issue(SeverityError, codeInvalidBirth, err.Error())
		default:
			issue(SeverityError, codeInvariant, err.Error())
		}
	}

	if p.SourceFile != "" {
		if _, err := os.Stat(p.SourceFile); errors.Is(err, os.ErrNotExist) {
			issue(SeverityWarn, codeSourceMissing, "source file no longer exists")
		}
	}
	return issues
}

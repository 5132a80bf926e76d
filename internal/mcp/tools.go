package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"ziwei/internal/chart"
	"ziwei/internal/decade"
	"ziwei/internal/lunar"
	"ziwei/internal/profile"
	"ziwei/internal/store"
	"ziwei/internal/view"
)

type BirthInput struct {
	Date       string `json:"date" jsonschema:"birth date as YYYY-MM-DD"`
	Calendar   string `json:"calendar,omitempty" jsonschema:"solar (default) or lunar"`
	LeapMonth  bool   `json:"leap_month,omitempty" jsonschema:"lunar date falls in the leap month"`
	HourBranch *int   `json:"hour_branch,omitempty" jsonschema:"two-hour branch 0 (子) to 11 (亥)"`
	BirthTime  string `json:"birth_time,omitempty" jsonschema:"clock time HH:MM, used when hour_branch is absent"`
	Gender     string `json:"gender" jsonschema:"male or female"`
}

type ComputeChartInput struct {
	Birth BirthInput `json:"birth" jsonschema:"birth data"`
}

type DecadeCyclesInput struct {
	Birth BirthInput `json:"birth" jsonschema:"birth data"`
	Year  int        `json:"year,omitempty" jsonschema:"Gregorian year for the current cycle and flow year; defaults to this year"`
}

type CycleActivationsInput struct {
	Birth       BirthInput `json:"birth" jsonschema:"birth data"`
	PalaceIndex *int       `json:"palace_index,omitempty" jsonschema:"decade palace index 0-11; defaults to the cycle current in year"`
	Year        int        `json:"year,omitempty" jsonschema:"Gregorian year used when palace_index is absent"`
}

type LunarConvertInput struct {
	Date      string `json:"date" jsonschema:"date as YYYY-MM-DD"`
	From      string `json:"from,omitempty" jsonschema:"calendar of date: solar (default) or lunar"`
	LeapMonth bool   `json:"leap_month,omitempty" jsonschema:"lunar date falls in the leap month"`
}

type ProfileChartInput struct {
	Name string `json:"name" jsonschema:"stored profile name"`
}

type SearchProfilesInput struct {
	Query string `json:"query" jsonschema:"search terms"`
}

type DecadeCyclesOutput struct {
	Forward  bool         `json:"forward"`
	Cycles   []view.Cycle `json:"cycles"`
	Year     int          `json:"year"`
	Age      int          `json:"nominal_age"`
	Current  *view.Cycle  `json:"current,omitempty"`
	FlowYear FlowYear     `json:"flow_year"`
}

type FlowYear struct {
	Year        int    `json:"year"`
	PalaceIndex int    `json:"palace_index"`
	PalaceName  string `json:"palace_name"`
}

type CycleActivationsOutput struct {
	Cycle       view.Cycle        `json:"cycle"`
	Activations []view.Activation `json:"activations"`
}

type SearchResultOutput struct {
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet,omitempty"`
}

type SearchProfilesOutput struct {
	Results []SearchResultOutput `json:"results"`
}

var errNoProfiles = errors.New("no profile store configured")

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "compute_chart",
		Description: "Compute a Zi Wei Dou Shu natal chart from birth data",
	}, instrument(s, "compute_chart", s.handleComputeChart))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "decade_cycles",
		Description: "List the twelve ten-year decade cycles, the current cycle and the flow year palace",
	}, instrument(s, "decade_cycles", s.handleDecadeCycles))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "cycle_activations",
		Description: "Resolve where a decade palace's four transformations land, with their meanings",
	}, instrument(s, "cycle_activations", s.handleCycleActivations))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "lunar_convert",
		Description: "Convert a date between the Gregorian and Chinese lunar calendars",
	}, instrument(s, "lunar_convert", s.handleLunarConvert))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "profile_chart",
		Description: "Compute the natal chart of a stored profile",
	}, instrument(s, "profile_chart", s.handleProfileChart))

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "search_profiles",
		Description: "Search stored profiles by name, tags and notes",
	}, instrument(s, "search_profiles", s.handleSearchProfiles))
}

func instrument[In, Out any](s *Server, tool string, handler func(context.Context, *sdk.CallToolRequest, In) (*sdk.CallToolResult, Out, error)) func(context.Context, *sdk.CallToolRequest, In) (*sdk.CallToolResult, Out, error) {
	return func(ctx context.Context, req *sdk.CallToolRequest, input In) (*sdk.CallToolResult, Out, error) {
		result, output, err := handler(ctx, req, input)
		s.metrics.ObserveToolCall(tool, err)
		if err != nil {
			s.logger.Warn("tool call failed", zap.String("tool", tool), zap.Error(err))
		}
		return result, output, err
	}
}

func (in BirthInput) birth() (store.Birth, error) {
	if in.Date == "" {
		return store.Birth{}, fmt.Errorf("date is required")
	}
	year, month, day, err := profile.ParseDate(in.Date)
	if err != nil {
		return store.Birth{}, err
	}
	b := store.Birth{
		Calendar:  strings.ToLower(in.Calendar),
		Year:      year,
		Month:     month,
		Day:       day,
		LeapMonth: in.LeapMonth,
		Gender:    in.Gender,
	}
	if b.Calendar == "" {
		b.Calendar = store.CalendarSolar
	}
	switch {
	case in.HourBranch != nil:
		b.HourBranch = *in.HourBranch
	case in.BirthTime != "":
		if b.HourBranch, err = profile.ParseClock(in.BirthTime); err != nil {
			return store.Birth{}, err
		}
	default:
		return store.Birth{}, fmt.Errorf("hour_branch or birth_time is required")
	}
	return b, nil
}

func (s *Server) chart(source string, b store.Birth) (*chart.Chart, error) {
	start := time.Now()
	c, err := profile.Chart(s.engine, b)
	s.metrics.ObserveChart(source, start, err)
	return c, err
}

func (s *Server) chartFromInput(in BirthInput) (*chart.Chart, error) {
	b, err := in.birth()
	if err != nil {
		return nil, err
	}
	return s.chart("mcp", b)
}

func (s *Server) handleComputeChart(ctx context.Context, req *sdk.CallToolRequest, input ComputeChartInput) (*sdk.CallToolResult, view.Chart, error) {
	c, err := s.chartFromInput(input.Birth)
	if err != nil {
		return nil, view.Chart{}, err
	}
	return nil, view.FromChart(c), nil
}

func (s *Server) year(year int) int {
	if year != 0 {
		return year
	}
	return s.now().Year()
}

func (s *Server) handleDecadeCycles(ctx context.Context, req *sdk.CallToolRequest, input DecadeCyclesInput) (*sdk.CallToolResult, DecadeCyclesOutput, error) {
	c, err := s.chartFromInput(input.Birth)
	if err != nil {
		return nil, DecadeCyclesOutput{}, err
	}
	cycles, err := decade.Compute(c)
	if err != nil {
		return nil, DecadeCyclesOutput{}, err
	}

	year := s.year(input.Year)
	flow := decade.FlowYearPalace(year)
	out := DecadeCyclesOutput{
		Forward: decade.Forward(c),
		Cycles:  view.FromCycles(c, cycles),
		Year:    year,
		Age:     decade.NominalAge(c, year),
		FlowYear: FlowYear{
			Year:        year,
			PalaceIndex: flow,
			PalaceName:  string(c.Palaces[flow].Name),
		},
	}
	if current, ok, err := decade.CycleForAge(c, out.Age); err != nil {
		return nil, DecadeCyclesOutput{}, err
	} else if ok {
		cv := view.FromCycle(c, current)
		out.Current = &cv
	}
	return nil, out, nil
}

func (s *Server) handleCycleActivations(ctx context.Context, req *sdk.CallToolRequest, input CycleActivationsInput) (*sdk.CallToolResult, CycleActivationsOutput, error) {
	c, err := s.chartFromInput(input.Birth)
	if err != nil {
		return nil, CycleActivationsOutput{}, err
	}

	var cycle decade.Cycle
	if input.PalaceIndex != nil {
		cycle, err = cycleForPalace(c, *input.PalaceIndex)
		if err != nil {
			return nil, CycleActivationsOutput{}, err
		}
	} else {
		year := s.year(input.Year)
		var ok bool
		cycle, ok, err = decade.CurrentCycle(c, year)
		if err != nil {
			return nil, CycleActivationsOutput{}, err
		}
		if !ok {
			return nil, CycleActivationsOutput{}, fmt.Errorf("no decade cycle covers %d", year)
		}
	}

	results, err := s.resolver.CycleActivations(c, cycle.PalaceIndex)
	if err != nil {
		return nil, CycleActivationsOutput{}, err
	}
	return nil, CycleActivationsOutput{
		Cycle:       view.FromCycle(c, cycle),
		Activations: view.FromActivations(results),
	}, nil
}

func cycleForPalace(c *chart.Chart, index int) (decade.Cycle, error) {
	cycles, err := decade.Compute(c)
	if err != nil {
		return decade.Cycle{}, err
	}
	for _, cycle := range cycles {
		if cycle.PalaceIndex == index {
			return cycle, nil
		}
	}
	return decade.Cycle{}, fmt.Errorf("palace index %d is not in 0-11", index)
}

func (s *Server) handleLunarConvert(ctx context.Context, req *sdk.CallToolRequest, input LunarConvertInput) (*sdk.CallToolResult, view.LunarDate, error) {
	year, month, day, err := profile.ParseDate(input.Date)
	if err != nil {
		return nil, view.LunarDate{}, err
	}
	switch strings.ToLower(input.From) {
	case "", store.CalendarSolar:
		if input.LeapMonth {
			return nil, view.LunarDate{}, fmt.Errorf("leap_month needs a lunar date")
		}
		ld, err := lunar.SolarToLunar(year, month, day)
		if err != nil {
			return nil, view.LunarDate{}, err
		}
		return nil, view.FromLunar(lunar.Solar{Year: year, Month: month, Day: day}, ld), nil
	case store.CalendarLunar:
		solar, err := lunar.LunarToSolar(year, month, day, input.LeapMonth)
		if err != nil {
			return nil, view.LunarDate{}, err
		}
		ld := lunar.Date{Year: year, Month: month, Day: day, IsLeapMonth: input.LeapMonth}
		return nil, view.FromLunar(solar, ld), nil
	default:
		return nil, view.LunarDate{}, fmt.Errorf("unknown calendar %q", input.From)
	}
}

func (s *Server) handleProfileChart(ctx context.Context, req *sdk.CallToolRequest, input ProfileChartInput) (*sdk.CallToolResult, view.Chart, error) {
	if input.Name == "" {
		return nil, view.Chart{}, fmt.Errorf("name is required")
	}
	if s.profiles == nil {
		return nil, view.Chart{}, errNoProfiles
	}
	p, err := s.profiles.GetProfile(ctx, input.Name)
	if err != nil {
		return nil, view.Chart{}, err
	}
	c, err := s.chart("profile", p.Birth)
	if err != nil {
		return nil, view.Chart{}, fmt.Errorf("%s: %w", p.Name, err)
	}
	out := view.FromChart(c)
	out.Name = p.Name
	return nil, out, nil
}

func (s *Server) handleSearchProfiles(ctx context.Context, req *sdk.CallToolRequest, input SearchProfilesInput) (*sdk.CallToolResult, SearchProfilesOutput, error) {
	if input.Query == "" {
		return nil, SearchProfilesOutput{}, fmt.Errorf("query is required")
	}
	if s.profiles == nil {
		return nil, SearchProfilesOutput{}, errNoProfiles
	}
	results, err := s.profiles.SearchProfiles(ctx, input.Query)
	if err != nil {
		return nil, SearchProfilesOutput{}, err
	}
	output := make([]SearchResultOutput, 0, len(results))
	for _, r := range results {
		output = append(output, SearchResultOutput{
			Name:    r.Name,
			Tags:    append([]string{}, r.Tags...),
			Score:   r.Score,
			Snippet: r.Snippet,
		})
	}
	return nil, SearchProfilesOutput{Results: output}, nil
}

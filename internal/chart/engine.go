// Package chart places the stars of a Zi Wei Dou Shu natal chart.
//
// Palace index i always sits on earthly branch i (0 = 子). Computation is
// pure: every call allocates its own Chart and reads only static tables.
package chart

import (
	"errors"
	"fmt"

	"ziwei/internal/ganzhi"
	"ziwei/internal/lunar"
)

var (
	ErrOutOfRangeDate   = lunar.ErrOutOfRange
	ErrInvalidBirthData = errors.New("invalid birth data")

	// ErrInvariant marks a table lookup that failed for validated input.
	ErrInvariant = errors.New("internal invariant violation")
)

type Options struct {
	Layout MainStarLayout
}

type Engine struct {
	opts Options
}

func NewEngine(opts Options) *Engine {
	return &Engine{opts: opts}
}

// ComputeChart builds a chart with the default options.
func ComputeChart(date SolarDate, gender Gender) (*Chart, error) {
	return NewEngine(Options{}).Compute(date, gender)
}

func (e *Engine) Compute(date SolarDate, gender Gender) (*Chart, error) {
	if gender != GenderMale && gender != GenderFemale {
		return nil, fmt.Errorf("%w: gender %d", ErrInvalidBirthData, gender)
	}
	if date.HourBranch < 0 || date.HourBranch >= PalaceCount {
		return nil, fmt.Errorf("%w: hour branch %d", ErrInvalidBirthData, date.HourBranch)
	}

	ld, err := lunar.SolarToLunar(date.Year, date.Month, date.Day)
	if err != nil {
		if errors.Is(err, lunar.ErrOutOfRange) {
			return nil, fmt.Errorf("computing chart: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidBirthData, err)
	}
	return e.computeLunar(date, ld, gender)
}

// ComputeLunar builds a chart from a lunar birth date.
func (e *Engine) ComputeLunar(ld lunar.Date, hourBranch int, gender Gender) (*Chart, error) {
	solar, err := lunar.LunarToSolar(ld.Year, ld.Month, ld.Day, ld.IsLeapMonth)
	if err != nil {
		if errors.Is(err, lunar.ErrOutOfRange) {
			return nil, fmt.Errorf("computing chart: %w", err)
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidBirthData, err)
	}
	return e.Compute(SolarDate{Year: solar.Year, Month: solar.Month, Day: solar.Day, HourBranch: hourBranch}, gender)
}

func (e *Engine) computeLunar(date SolarDate, ld lunar.Date, gender Gender) (*Chart, error) {
	if ld.Month < 1 || ld.Month > 12 || ld.Day < 1 || ld.Day > maxLunarDay {
		return nil, fmt.Errorf("%w: lunar date %s", ErrInvalidBirthData, ld)
	}

	year := ganzhi.YearStemBranch(ld.Year)
	zodiac, err := ganzhi.Zodiac(year.Branch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}

	life, body := lifeAndBody(ld.Month, date.HourBranch)

	c := &Chart{
		LifePalaceIndex: life,
		BodyPalaceIndex: body,
		Birth: BirthInputs{
			Solar:          date,
			Lunar:          ld,
			Gender:         gender,
			YearStemBranch: year,
			Zodiac:         zodiac,
		},
	}
	if err := buildPalaces(c, year.Stem); err != nil {
		return nil, err
	}

	lp := c.LifePalace()
	bureau, err := ganzhi.BureauFor(lp.Stem, lp.Branch)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvariant, err)
	}
	c.Bureau = bureau

	mains, err := placeMainStars(bureau, ld.Day, e.opts.Layout)
	if err != nil {
		return nil, err
	}
	auxes, err := placeAuxiliaryStars(auxInputs{
		yearStem:   year.Stem,
		yearBranch: year.Branch,
		month:      ld.Month,
		hour:       date.HourBranch,
	})
	if err != nil {
		return nil, err
	}
	for _, pl := range append(mains, auxes...) {
		if err := addStar(c, pl); err != nil {
			return nil, err
		}
	}

	if err := applyTransformations(c, year.Stem); err != nil {
		return nil, err
	}
	return c, nil
}

// lifeAndBody counts the lunar month forward from 寅, then the hour branch
// backward for the life palace and forward for the body palace. A leap month
// counts as its ordinary month.
func lifeAndBody(month, hour int) (int, int) {
	monthPalace := ganzhi.BranchYin + month - 1
	return ganzhi.Mod(monthPalace-hour, PalaceCount), ganzhi.Mod(monthPalace+hour, PalaceCount)
}

func buildPalaces(c *Chart, yearStem int) error {
	for i := 0; i < PalaceCount; i++ {
		stem, err := ganzhi.PalaceStem(yearStem, i)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvariant, err)
		}
		// Names run counter-clockwise from the life palace.
		name := PalaceNames[ganzhi.Mod(c.LifePalaceIndex-i, PalaceCount)]
		c.Palaces[i] = Palace{
			Index:          i,
			Name:           name,
			Stem:           stem,
			Branch:         i,
			MainStars:      make([]Star, 0, 4),
			AuxiliaryStars: make([]Star, 0, 6),
			TemporalStars:  make([]Star, 0, 2),
			IsBodyPalace:   i == c.BodyPalaceIndex,
		}
	}
	return nil
}

func addStar(c *Chart, pl placement) error {
	p, err := c.Palace(pl.palace)
	if err != nil {
		return fmt.Errorf("placing %s: %w", pl.star.Name, err)
	}
	switch pl.star.Category {
	case CategoryMain:
		p.MainStars = append(p.MainStars, pl.star)
	case CategoryAuxiliary:
		p.AuxiliaryStars = append(p.AuxiliaryStars, pl.star)
	case CategoryTemporal:
		p.TemporalStars = append(p.TemporalStars, pl.star)
	default:
		return fmt.Errorf("%w: %s has category %s", ErrInvariant, pl.star.Name, pl.star.Category)
	}
	return nil
}

// Package view converts charts, decade cycles and activations into
// JSON-friendly structs shared by the CLI and the MCP tools.
package view

import (
	"ziwei/internal/activation"
	"ziwei/internal/chart"
	"ziwei/internal/decade"
	"ziwei/internal/ganzhi"
	"ziwei/internal/lunar"
)

type Chart struct {
	Name       string   `json:"name,omitempty"`
	Birth      Birth    `json:"birth"`
	Bureau     string   `json:"bureau"`
	BureauNum  int      `json:"bureau_number"`
	LifePalace int      `json:"life_palace"`
	BodyPalace int      `json:"body_palace"`
	Palaces    []Palace `json:"palaces"`
}

type Birth struct {
	Solar          string `json:"solar"`
	Lunar          string `json:"lunar"`
	LeapMonth      bool   `json:"leap_month,omitempty"`
	HourBranch     string `json:"hour_branch"`
	Gender         string `json:"gender"`
	YearStemBranch string `json:"year_stem_branch"`
	Zodiac         string `json:"zodiac"`
}

type Palace struct {
	Index           int              `json:"index"`
	Name            string           `json:"name"`
	StemBranch      string           `json:"stem_branch"`
	MainStars       []Star           `json:"main_stars"`
	AuxiliaryStars  []Star           `json:"auxiliary_stars"`
	TemporalStars   []Star           `json:"temporal_stars"`
	Transformations []Transformation `json:"transformations,omitempty"`
	IsLifePalace    bool             `json:"is_life_palace,omitempty"`
	IsBodyPalace    bool             `json:"is_body_palace,omitempty"`
}

type Star struct {
	Name           string `json:"name"`
	Transformation string `json:"transformation,omitempty"`
}

type Transformation struct {
	Key  string `json:"key"`
	Star string `json:"star"`
}

type Cycle struct {
	PalaceIndex int    `json:"palace_index"`
	PalaceName  string `json:"palace_name"`
	StemBranch  string `json:"stem_branch"`
	AgeStart    int    `json:"age_start"`
	AgeEnd      int    `json:"age_end"`
}

type Activation struct {
	Transformation string   `json:"transformation"`
	Star           string   `json:"star"`
	PalaceIndex    int      `json:"palace_index"`
	PalaceName     string   `json:"palace_name"`
	Paragraphs     []string `json:"paragraphs"`
	Takeaways      []string `json:"takeaways,omitempty"`
}

type LunarDate struct {
	Solar          string `json:"solar"`
	Lunar          string `json:"lunar"`
	LeapMonth      bool   `json:"leap_month,omitempty"`
	YearStemBranch string `json:"year_stem_branch"`
	Zodiac         string `json:"zodiac"`
}

func FromChart(c *chart.Chart) Chart {
	branch, _ := ganzhi.BranchName(c.Birth.Solar.HourBranch)
	out := Chart{
		Birth: Birth{
			Solar:          lunar.Solar{Year: c.Birth.Solar.Year, Month: c.Birth.Solar.Month, Day: c.Birth.Solar.Day}.String(),
			Lunar:          c.Birth.Lunar.String(),
			LeapMonth:      c.Birth.Lunar.IsLeapMonth,
			HourBranch:     branch,
			Gender:         c.Birth.Gender.String(),
			YearStemBranch: c.Birth.YearStemBranch.String(),
			Zodiac:         c.Birth.Zodiac,
		},
		Bureau:     c.Bureau.String(),
		BureauNum:  int(c.Bureau),
		LifePalace: c.LifePalaceIndex,
		BodyPalace: c.BodyPalaceIndex,
		Palaces:    make([]Palace, 0, chart.PalaceCount),
	}
	for i := range c.Palaces {
		p := &c.Palaces[i]
		palace := Palace{
			Index:          p.Index,
			Name:           string(p.Name),
			StemBranch:     ganzhi.StemBranch{Stem: p.Stem, Branch: p.Branch}.String(),
			MainStars:      stars(p.MainStars),
			AuxiliaryStars: stars(p.AuxiliaryStars),
			TemporalStars:  stars(p.TemporalStars),
			IsLifePalace:   p.Index == c.LifePalaceIndex,
			IsBodyPalace:   p.IsBodyPalace,
		}
		for _, tag := range p.Tags {
			palace.Transformations = append(palace.Transformations, Transformation{Key: tag.Key.Label(), Star: tag.StarName})
		}
		out.Palaces = append(out.Palaces, palace)
	}
	return out
}

func stars(in []chart.Star) []Star {
	out := make([]Star, 0, len(in))
	for _, s := range in {
		star := Star{Name: s.Name}
		if s.Transformation != "" {
			star.Transformation = s.Transformation.Label()
		}
		out = append(out, star)
	}
	return out
}

func FromCycle(c *chart.Chart, cycle decade.Cycle) Cycle {
	p := &c.Palaces[cycle.PalaceIndex]
	return Cycle{
		PalaceIndex: cycle.PalaceIndex,
		PalaceName:  string(p.Name),
		StemBranch:  ganzhi.StemBranch{Stem: p.Stem, Branch: p.Branch}.String(),
		AgeStart:    cycle.AgeStart,
		AgeEnd:      cycle.AgeEnd,
	}
}

func FromCycles(c *chart.Chart, cycles []decade.Cycle) []Cycle {
	out := make([]Cycle, 0, len(cycles))
	for _, cycle := range cycles {
		out = append(out, FromCycle(c, cycle))
	}
	return out
}

func FromActivations(results []activation.Result) []Activation {
	out := make([]Activation, 0, len(results))
	for _, r := range results {
		out = append(out, Activation{
			Transformation: r.Transformation.Key.Label(),
			Star:           r.Transformation.StarName,
			PalaceIndex:    r.TargetPalace.Index,
			PalaceName:     string(r.TargetPalace.Name),
			Paragraphs:     append([]string{}, r.MeaningParagraphs...),
			Takeaways:      append([]string{}, r.KeyTakeaways...),
		})
	}
	return out
}

func FromLunar(solar lunar.Solar, ld lunar.Date) LunarDate {
	year := ganzhi.YearStemBranch(ld.Year)
	zodiac, _ := ganzhi.Zodiac(year.Branch)
	return LunarDate{
		Solar:          solar.String(),
		Lunar:          ld.String(),
		LeapMonth:      ld.IsLeapMonth,
		YearStemBranch: year.String(),
		Zodiac:         zodiac,
	}
}

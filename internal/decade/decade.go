// Package decade resolves the ten-year decade cycles (大限) and the flow
// year (流年) palace of a chart.
package decade

import (
	"fmt"

	"ziwei/internal/chart"
	"ziwei/internal/ganzhi"
)

const (
	CycleCount  = chart.PalaceCount
	CycleLength = 10

	// 1984 is a 甲子 year, so its flow year palace is 子.
	anchorYear   = 1984
	anchorPalace = ganzhi.BranchZi
)

type Cycle struct {
	PalaceIndex int
	AgeStart    int
	AgeEnd      int
}

func (c Cycle) Contains(age int) bool {
	return age >= c.AgeStart && age <= c.AgeEnd
}

// startAges is indexed by bureau (水二局 first) and year stem parity
// (yang, then yin).
var startAges = [5][2]int{
	{10, 9},
	{10, 9},
	{10, 9},
	{10, 9},
	{10, 9},
}

// StartAge returns the nominal age the first cycle begins at.
func StartAge(bureau ganzhi.Bureau, yearStem int) (int, error) {
	if !bureau.Valid() {
		return 0, fmt.Errorf("%w: bureau %d", chart.ErrInvariant, bureau)
	}
	if yearStem < 0 || yearStem > 9 {
		return 0, fmt.Errorf("%w: year stem %d", chart.ErrInvariant, yearStem)
	}
	row := int(bureau - ganzhi.BureauWater)
	if row < 0 || row >= len(startAges) {
		return 0, fmt.Errorf("%w: no start age row for bureau %d", chart.ErrInvariant, bureau)
	}
	return startAges[row][yearStem%2], nil
}

// Forward reports whether cycles advance clockwise (increasing branch).
// Yang-year men and yin-year women move forward; everyone else moves back.
func Forward(c *chart.Chart) bool {
	yang := c.Birth.YearStemBranch.IsYang()
	male := c.Birth.Gender == chart.GenderMale
	return yang == male
}

func Compute(c *chart.Chart) ([]Cycle, error) {
	start, err := StartAge(c.Bureau, c.Birth.YearStemBranch.Stem)
	if err != nil {
		return nil, err
	}
	if c.LifePalaceIndex < 0 || c.LifePalaceIndex >= chart.PalaceCount {
		return nil, fmt.Errorf("%w: life palace %d", chart.ErrInvariant, c.LifePalaceIndex)
	}

	step := 1
	if !Forward(c) {
		step = -1
	}

	cycles := make([]Cycle, CycleCount)
	for i := range cycles {
		ageStart := start + i*CycleLength
		cycles[i] = Cycle{
			PalaceIndex: ganzhi.Mod(c.LifePalaceIndex+step*i, chart.PalaceCount),
			AgeStart:    ageStart,
			AgeEnd:      ageStart + CycleLength - 1,
		}
	}
	return cycles, nil
}

// CycleForAge returns the cycle covering a nominal age. Ages before the first
// cycle or after the last report false.
func CycleForAge(c *chart.Chart, age int) (Cycle, bool, error) {
	cycles, err := Compute(c)
	if err != nil {
		return Cycle{}, false, err
	}
	if age < cycles[0].AgeStart {
		return Cycle{}, false, nil
	}
	i := (age - cycles[0].AgeStart) / CycleLength
	if i >= len(cycles) {
		return Cycle{}, false, nil
	}
	return cycles[i], true, nil
}

// NominalAge counts the birth year as age one, the way the cycles do.
func NominalAge(c *chart.Chart, year int) int {
	return year - c.Birth.Lunar.Year + 1
}

func CurrentCycle(c *chart.Chart, year int) (Cycle, bool, error) {
	return CycleForAge(c, NominalAge(c, year))
}

func FlowYearPalace(year int) int {
	return ganzhi.Mod(anchorPalace+(year-anchorYear), chart.PalaceCount)
}

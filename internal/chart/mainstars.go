package chart

import (
	"fmt"

	"ziwei/internal/ganzhi"
)

const (
	StarZiwei     = "紫微"
	StarTianji    = "天机"
	StarTaiyang   = "太阳"
	StarWuqu      = "武曲"
	StarTiantong  = "天同"
	StarLianzhen  = "廉贞"
	StarTianfu    = "天府"
	StarTaiyin    = "太阴"
	StarTanlang   = "贪狼"
	StarJumen     = "巨门"
	StarTianxiang = "天相"
	StarTianliang = "天梁"
	StarQisha     = "七杀"
	StarPojun     = "破军"
)

// MainStarLayout selects how the 天府 series relates to the anchor.
type MainStarLayout int

const (
	// LayoutFixedOffset places all thirteen companions at constant offsets
	// from 紫微.
	LayoutFixedOffset MainStarLayout = iota
	// LayoutClassical mirrors 天府 across the 寅-申 axis and keeps the
	// constant offsets inside each series.
	LayoutClassical
)

func (l MainStarLayout) String() string {
	if l == LayoutClassical {
		return "classical"
	}
	return "fixed"
}

func ParseMainStarLayout(value string) (MainStarLayout, error) {
	switch value {
	case "", "fixed", "fixed_offset":
		return LayoutFixedOffset, nil
	case "classical":
		return LayoutClassical, nil
	default:
		return 0, fmt.Errorf("unknown main star layout %q", value)
	}
}

type starOffset struct {
	name   string
	offset int
}

// ziweiSeries runs counter-clockwise from 紫微.
var ziweiSeries = []starOffset{
	{StarZiwei, 0},
	{StarTianji, -1},
	{StarTaiyang, -3},
	{StarWuqu, -4},
	{StarTiantong, -5},
	{StarLianzhen, -8},
}

// tianfuSeries runs clockwise from 天府. Under LayoutFixedOffset 天府 shares
// 紫微's palace, which is the layout for 紫微 at 寅 or 申.
var tianfuSeries = []starOffset{
	{StarTianfu, 0},
	{StarTaiyin, 1},
	{StarTanlang, 2},
	{StarJumen, 3},
	{StarTianxiang, 4},
	{StarTianliang, 5},
	{StarQisha, 6},
	{StarPojun, 10},
}

// mainStarOrder is the display order of the fourteen main stars.
var mainStarOrder = func() []string {
	names := make([]string, 0, len(ziweiSeries)+len(tianfuSeries))
	for _, s := range ziweiSeries {
		names = append(names, s.name)
	}
	for _, s := range tianfuSeries {
		names = append(names, s.name)
	}
	return names
}()

const maxLunarDay = 30

// ziweiTable holds the 紫微 palace for each bureau (row bureau-2) and lunar
// day (column day-1).
var ziweiTable = buildZiweiTable()

func buildZiweiTable() [5][maxLunarDay]int {
	var table [5][maxLunarDay]int
	for b := ganzhi.BureauWater; b <= ganzhi.BureauFire; b++ {
		for day := 1; day <= maxLunarDay; day++ {
			table[b-ganzhi.BureauWater][day-1] = ziweiPosition(int(b), day)
		}
	}
	return table
}

// ziweiPosition applies the division rule: borrow the smallest x so that
// day+x divides by the bureau, count the quotient from 寅, then step back
// for an odd borrow and forward for an even one.
func ziweiPosition(bureau, day int) int {
	x := 0
	for (day+x)%bureau != 0 {
		x++
	}
	pos := ganzhi.BranchYin + (day+x)/bureau - 1
	if x%2 == 1 {
		pos -= x
	} else {
		pos += x
	}
	return ganzhi.Mod(pos, PalaceCount)
}

func ziweiIndex(bureau ganzhi.Bureau, day int) (int, error) {
	if !bureau.Valid() {
		return 0, fmt.Errorf("%w: bureau %d", ErrInvariant, bureau)
	}
	if day < 1 || day > maxLunarDay {
		return 0, fmt.Errorf("%w: lunar day %d", ErrInvalidBirthData, day)
	}
	return ziweiTable[bureau-ganzhi.BureauWater][day-1], nil
}

type placement struct {
	star   Star
	palace int
}

func placeMainStars(bureau ganzhi.Bureau, day int, layout MainStarLayout) ([]placement, error) {
	anchor, err := ziweiIndex(bureau, day)
	if err != nil {
		return nil, err
	}

	// Fixed offsets keep the 寅 configuration for every anchor.
	tianfu := anchor
	if layout == LayoutClassical {
		tianfu = ganzhi.Mod(4-anchor, PalaceCount)
	}

	out := make([]placement, 0, len(mainStarOrder))
	for _, s := range ziweiSeries {
		out = append(out, placement{
			star:   Star{Name: s.name, Category: CategoryMain},
			palace: ganzhi.Mod(anchor+s.offset, PalaceCount),
		})
	}
	for _, s := range tianfuSeries {
		out = append(out, placement{
			star:   Star{Name: s.name, Category: CategoryMain},
			palace: ganzhi.Mod(tianfu+s.offset, PalaceCount),
		})
	}
	return out, nil
}

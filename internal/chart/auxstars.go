package chart

import (
	"fmt"

	"ziwei/internal/ganzhi"
)

const (
	StarLucun    = "禄存"
	StarQingyang = "擎羊"
	StarTuoluo   = "陀罗"
	StarTiankui  = "天魁"
	StarTianyue  = "天钺"
	StarTianma   = "天马"
	StarHongluan = "红鸾"
	StarTianxi   = "天喜"
	StarZuofu    = "左辅"
	StarYoubi    = "右弼"
	StarTianxing = "天刑"
	StarTianyao  = "天姚"
	StarWenchang = "文昌"
	StarWenqu    = "文曲"
	StarDikong   = "地空"
	StarDijie    = "地劫"
	StarHuoxing  = "火星"
	StarLingxing = "铃星"
	StarTaifu    = "台辅"
	StarFenggao  = "封诰"
)

type auxInputs struct {
	yearStem   int
	yearBranch int
	month      int
	hour       int
}

type ruleKind int

const (
	byYearStem ruleKind = iota
	byYearBranch
	monthForward
	monthReverse
	hourForward
	hourReverse
	hourByTriad
)

// auxRule places one star. table is read according to kind: indexed by stem
// or branch, a single start palace for the month and hour rotations, or one
// start palace per year-branch triad for hourByTriad.
type auxRule struct {
	name     string
	category StarCategory
	kind     ruleKind
	table    []int
	shift    int
}

var (
	lucunTable   = []int{2, 3, 5, 6, 5, 6, 8, 9, 11, 0}
	tiankuiTable = []int{1, 0, 11, 11, 1, 0, 1, 6, 3, 3}
	tianyueTable = []int{7, 8, 9, 9, 7, 8, 7, 2, 5, 5}
	tianmaTable  = []int{2, 11, 8, 5, 2, 11, 8, 5, 2, 11, 8, 5}

	// hongluanTable counts back from 卯 by year branch.
	hongluanTable = []int{3, 2, 1, 0, 11, 10, 9, 8, 7, 6, 5, 4}

	// Triads keyed by branch%4: 申子辰, 巳酉丑, 寅午戌, 亥卯未.
	huoxingStarts  = []int{2, 3, 1, 9}
	lingxingStarts = []int{10, 10, 3, 10}
)

var auxRules = []auxRule{
	{name: StarLucun, category: CategoryAuxiliary, kind: byYearStem, table: lucunTable},
	{name: StarQingyang, category: CategoryAuxiliary, kind: byYearStem, table: lucunTable, shift: 1},
	{name: StarTuoluo, category: CategoryAuxiliary, kind: byYearStem, table: lucunTable, shift: -1},
	{name: StarTiankui, category: CategoryAuxiliary, kind: byYearStem, table: tiankuiTable},
	{name: StarTianyue, category: CategoryAuxiliary, kind: byYearStem, table: tianyueTable},
	{name: StarTianma, category: CategoryAuxiliary, kind: byYearBranch, table: tianmaTable},
	{name: StarHongluan, category: CategoryAuxiliary, kind: byYearBranch, table: hongluanTable},
	{name: StarTianxi, category: CategoryAuxiliary, kind: byYearBranch, table: hongluanTable, shift: 6},
	{name: StarZuofu, category: CategoryAuxiliary, kind: monthForward, table: []int{4}},
	{name: StarYoubi, category: CategoryAuxiliary, kind: monthReverse, table: []int{10}},
	{name: StarTianxing, category: CategoryAuxiliary, kind: monthForward, table: []int{9}},
	{name: StarTianyao, category: CategoryAuxiliary, kind: monthForward, table: []int{1}},
	{name: StarWenchang, category: CategoryAuxiliary, kind: hourReverse, table: []int{10}},
	{name: StarWenqu, category: CategoryAuxiliary, kind: hourForward, table: []int{4}},
	{name: StarDikong, category: CategoryAuxiliary, kind: hourReverse, table: []int{11}},
	{name: StarDijie, category: CategoryAuxiliary, kind: hourForward, table: []int{11}},
	{name: StarHuoxing, category: CategoryAuxiliary, kind: hourByTriad, table: huoxingStarts},
	{name: StarLingxing, category: CategoryAuxiliary, kind: hourByTriad, table: lingxingStarts},
	{name: StarTaifu, category: CategoryTemporal, kind: hourForward, table: []int{6}},
	{name: StarFenggao, category: CategoryTemporal, kind: hourForward, table: []int{2}},
}

func lookup(name string, table []int, i int) (int, error) {
	if i < 0 || i >= len(table) {
		return 0, fmt.Errorf("%w: %s table has no entry %d", ErrInvariant, name, i)
	}
	v := table[i]
	if v < 0 || v >= PalaceCount {
		return 0, fmt.Errorf("%w: %s table entry %d is %d", ErrInvariant, name, i, v)
	}
	return v, nil
}

func (r auxRule) place(in auxInputs) (int, error) {
	var (
		pos int
		err error
	)
	switch r.kind {
	case byYearStem:
		pos, err = lookup(r.name, r.table, in.yearStem)
	case byYearBranch:
		pos, err = lookup(r.name, r.table, in.yearBranch)
	case monthForward, monthReverse, hourForward, hourReverse:
		pos, err = lookup(r.name, r.table, 0)
		step := in.month - 1
		if r.kind == hourForward || r.kind == hourReverse {
			step = in.hour
		}
		if r.kind == monthReverse || r.kind == hourReverse {
			step = -step
		}
		pos += step
	case hourByTriad:
		pos, err = lookup(r.name, r.table, in.yearBranch%4)
		pos += in.hour
	default:
		return 0, fmt.Errorf("%w: %s has unknown rule kind %d", ErrInvariant, r.name, r.kind)
	}
	if err != nil {
		return 0, err
	}
	return ganzhi.Mod(pos+r.shift, PalaceCount), nil
}

func placeAuxiliaryStars(in auxInputs) ([]placement, error) {
	out := make([]placement, 0, len(auxRules))
	for _, rule := range auxRules {
		pos, err := rule.place(in)
		if err != nil {
			return nil, err
		}
		out = append(out, placement{
			star:   Star{Name: rule.name, Category: rule.category},
			palace: pos,
		})
	}
	return out, nil
}

package chart

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"ziwei/internal/ganzhi"
	"ziwei/internal/lunar"
)

func mustChart(t *testing.T, date SolarDate, gender Gender) *Chart {
	t.Helper()
	c, err := ComputeChart(date, gender)
	if err != nil {
		t.Fatalf("ComputeChart(%+v): %v", date, err)
	}
	return c
}

func starPalace(t *testing.T, c *Chart, name string) int {
	t.Helper()
	p, ok := c.FindStar(name)
	if !ok {
		t.Fatalf("star %s not found", name)
	}
	return p.Index
}

func TestComputeChartReference(t *testing.T) {
	t.Run("1990 lunar new year, 子 hour", func(t *testing.T) {
		c := mustChart(t, SolarDate{Year: 1990, Month: 1, Day: 27, HourBranch: 0}, GenderMale)

		if c.Birth.Lunar != (lunar.Date{Year: 1990, Month: 1, Day: 1}) {
			t.Fatalf("unexpected lunar date %s", c.Birth.Lunar)
		}
		if c.Birth.YearStemBranch != (ganzhi.StemBranch{Stem: 6, Branch: 6}) {
			t.Fatalf("expected 庚午, got %s", c.Birth.YearStemBranch)
		}
		if c.Birth.Zodiac != "马" {
			t.Fatalf("expected 马, got %s", c.Birth.Zodiac)
		}
		if c.LifePalaceIndex != 2 || c.BodyPalaceIndex != 2 {
			t.Fatalf("expected life/body 2/2, got %d/%d", c.LifePalaceIndex, c.BodyPalaceIndex)
		}
		if c.Bureau != ganzhi.BureauEarth {
			t.Fatalf("expected 土五局, got %s", c.Bureau)
		}
		if c.LifePalace().Stem != 4 {
			t.Fatalf("expected life palace stem 戊, got %d", c.LifePalace().Stem)
		}

		want := map[string]int{
			StarZiwei: 6, StarTianji: 5, StarTaiyang: 3, StarWuqu: 2, StarTiantong: 1, StarLianzhen: 10,
			StarTianfu: 6, StarTaiyin: 7, StarTanlang: 8, StarJumen: 9, StarTianxiang: 10, StarTianliang: 11,
			StarQisha: 0, StarPojun: 4,
			StarLucun: 8, StarQingyang: 9, StarTuoluo: 7, StarTiankui: 1, StarTianyue: 7,
			StarTianma: 8, StarHongluan: 9, StarTianxi: 3,
			StarZuofu: 4, StarYoubi: 10, StarTianxing: 9, StarTianyao: 1,
			StarWenchang: 10, StarWenqu: 4, StarDikong: 11, StarDijie: 11,
			StarHuoxing: 1, StarLingxing: 3, StarTaifu: 6, StarFenggao: 2,
		}
		for name, index := range want {
			if got := starPalace(t, c, name); got != index {
				t.Fatalf("%s: expected palace %d, got %d", name, index, got)
			}
		}
	})

	t.Run("1990 summer, 午 hour", func(t *testing.T) {
		c := mustChart(t, SolarDate{Year: 1990, Month: 6, Day: 15, HourBranch: 6}, GenderFemale)
		if c.Birth.Lunar != (lunar.Date{Year: 1990, Month: 5, Day: 23}) {
			t.Fatalf("unexpected lunar date %s", c.Birth.Lunar)
		}
		if c.LifePalaceIndex != 0 || c.BodyPalaceIndex != 0 {
			t.Fatalf("expected life/body 0/0, got %d/%d", c.LifePalaceIndex, c.BodyPalaceIndex)
		}
		if c.Bureau != ganzhi.BureauFire {
			t.Fatalf("expected 火六局, got %s", c.Bureau)
		}
		if got := starPalace(t, c, StarZiwei); got != 4 {
			t.Fatalf("expected 紫微 at 4, got %d", got)
		}
		if !c.Palaces[0].IsBodyPalace {
			t.Fatalf("expected body palace flag on palace 0")
		}
	})
}

func TestPalaceNames(t *testing.T) {
	c := mustChart(t, SolarDate{Year: 2024, Month: 2, Day: 10, HourBranch: 3}, GenderMale)
	if c.LifePalaceIndex != 11 || c.BodyPalaceIndex != 5 {
		t.Fatalf("expected life/body 11/5, got %d/%d", c.LifePalaceIndex, c.BodyPalaceIndex)
	}
	if c.Palaces[11].Name != PalaceLife {
		t.Fatalf("expected 命宫 at 11, got %s", c.Palaces[11].Name)
	}
	if c.Palaces[10].Name != PalaceSiblings {
		t.Fatalf("expected 兄弟 at 10, got %s", c.Palaces[10].Name)
	}
	if c.Palaces[0].Name != PalaceParents {
		t.Fatalf("expected 父母 at 0, got %s", c.Palaces[0].Name)
	}
	p, ok := c.PalaceByName(PalaceWealth)
	if !ok || p.Index != 7 {
		t.Fatalf("expected 财帛 at 7, got %+v", p)
	}
}

func TestComputeChartDeterminism(t *testing.T) {
	date := SolarDate{Year: 1985, Month: 11, Day: 3, HourBranch: 9}
	a := mustChart(t, date, GenderFemale)
	b := mustChart(t, date, GenderFemale)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Fatalf("charts differ (-first +second):\n%s", diff)
	}
}

func TestChartStructure(t *testing.T) {
	dates := []SolarDate{
		{Year: 1900, Month: 1, Day: 31, HourBranch: 0},
		{Year: 1955, Month: 7, Day: 19, HourBranch: 4},
		{Year: 1990, Month: 6, Day: 15, HourBranch: 6},
		{Year: 2023, Month: 3, Day: 22, HourBranch: 11},
		{Year: 2100, Month: 12, Day: 31, HourBranch: 7},
	}
	for _, date := range dates {
		c := mustChart(t, date, GenderMale)

		seen := make(map[int]bool)
		mains, auxes, temporals, tags := 0, 0, 0, 0
		for i, p := range c.Palaces {
			if p.Index != i || p.Branch != i {
				t.Fatalf("%+v: palace slot %d holds index %d", date, i, p.Index)
			}
			seen[p.Index] = true
			mains += len(p.MainStars)
			auxes += len(p.AuxiliaryStars)
			temporals += len(p.TemporalStars)
			tags += len(p.Tags)
		}
		if len(seen) != PalaceCount {
			t.Fatalf("%+v: expected 12 unique palaces, got %d", date, len(seen))
		}
		if mains != 14 || auxes != 18 || temporals != 2 {
			t.Fatalf("%+v: unexpected star counts %d/%d/%d", date, mains, auxes, temporals)
		}
		if tags != 4 {
			t.Fatalf("%+v: expected 4 transformation tags, got %d", date, tags)
		}

		names := make(map[PalaceName]bool)
		for _, p := range c.Palaces {
			names[p.Name] = true
		}
		if len(names) != PalaceCount {
			t.Fatalf("%+v: expected 12 distinct palace names", date)
		}
	}
}

func TestPalacesDoNotShareStorage(t *testing.T) {
	c := mustChart(t, SolarDate{Year: 1972, Month: 4, Day: 8, HourBranch: 2}, GenderMale)
	backing := make(map[*Star]string)
	for i := range c.Palaces {
		p := &c.Palaces[i]
		for _, stars := range [][]Star{p.MainStars, p.AuxiliaryStars, p.TemporalStars} {
			if cap(stars) == 0 {
				continue
			}
			first := &stars[:cap(stars)][0]
			if owner, ok := backing[first]; ok {
				t.Fatalf("palace %d shares storage with %s", i, owner)
			}
			backing[first] = p.Label()
		}
	}

	c.Palaces[0].MainStars = append(c.Palaces[0].MainStars, Star{Name: "extra", Category: CategoryMain})
	for i := 1; i < PalaceCount; i++ {
		if c.Palaces[i].HasStar(CategoryMain, "extra") {
			t.Fatalf("append to palace 0 leaked into palace %d", i)
		}
	}
}

func TestMainStarRigidity(t *testing.T) {
	var reference map[string]int
	for year := 1950; year <= 2030; year += 7 {
		for month := 1; month <= 12; month += 2 {
			for day := 1; day <= 28; day += 5 {
				c := mustChart(t, SolarDate{Year: year, Month: month, Day: day, HourBranch: (day + month) % 12}, GenderMale)
				anchor := starPalace(t, c, StarZiwei)
				relative := make(map[string]int)
				for _, p := range c.Palaces {
					for _, s := range p.MainStars {
						relative[s.Name] = ganzhi.Mod(p.Index-anchor, PalaceCount)
					}
				}
				if reference == nil {
					reference = relative
					continue
				}
				if diff := cmp.Diff(reference, relative); diff != "" {
					t.Fatalf("%d-%02d-%02d: relative layout differs:\n%s", year, month, day, diff)
				}
			}
		}
	}
}

func TestClassicalLayout(t *testing.T) {
	engine := NewEngine(Options{Layout: LayoutClassical})
	c, err := engine.Compute(SolarDate{Year: 1990, Month: 6, Day: 15, HourBranch: 6}, GenderFemale)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	ziwei := starPalace(t, c, StarZiwei)
	tianfu := starPalace(t, c, StarTianfu)
	if ziwei != 4 || tianfu != 0 {
		t.Fatalf("expected 紫微/天府 at 4/0, got %d/%d", ziwei, tianfu)
	}
	if got := starPalace(t, c, StarPojun); got != 10 {
		t.Fatalf("expected 破军 at 10, got %d", got)
	}
	if got := starPalace(t, c, StarTianji); got != 3 {
		t.Fatalf("expected 天机 at 3, got %d", got)
	}
}

func TestLayoutsAgreeAtYinAndShen(t *testing.T) {
	// 水二局 day 2 puts 紫微 at 寅; day 14 puts it at 申.
	for _, day := range []int{2, 14} {
		fixed, err := placeMainStars(ganzhi.BureauWater, day, LayoutFixedOffset)
		if err != nil {
			t.Fatalf("day %d: expected no error, got %v", day, err)
		}
		classical, err := placeMainStars(ganzhi.BureauWater, day, LayoutClassical)
		if err != nil {
			t.Fatalf("day %d: expected no error, got %v", day, err)
		}
		if fixed[0].palace != 2 && fixed[0].palace != 8 {
			t.Fatalf("day %d: expected 紫微 at 寅 or 申, got %d", day, fixed[0].palace)
		}
		if len(fixed) != len(classical) {
			t.Fatalf("day %d: expected %d placements, got %d", day, len(fixed), len(classical))
		}
		for i := range fixed {
			if fixed[i] != classical[i] {
				t.Fatalf("day %d: expected %+v, got %+v", day, classical[i], fixed[i])
			}
		}
	}
}

func TestZiweiTable(t *testing.T) {
	tests := []struct {
		bureau ganzhi.Bureau
		day    int
		want   int
	}{
		{ganzhi.BureauWater, 1, 1},
		{ganzhi.BureauWater, 2, 2},
		{ganzhi.BureauWood, 1, 4},
		{ganzhi.BureauMetal, 1, 11},
		{ganzhi.BureauEarth, 1, 6},
		{ganzhi.BureauFire, 1, 9},
		{ganzhi.BureauFire, 30, 6},
	}
	for _, tt := range tests {
		got, err := ziweiIndex(tt.bureau, tt.day)
		if err != nil {
			t.Fatalf("%s day %d: %v", tt.bureau, tt.day, err)
		}
		if got != tt.want {
			t.Fatalf("%s day %d: expected %d, got %d", tt.bureau, tt.day, tt.want, got)
		}
	}

	if _, err := ziweiIndex(ganzhi.Bureau(7), 1); !errors.Is(err, ErrInvariant) {
		t.Fatalf("expected ErrInvariant, got %v", err)
	}
	if _, err := ziweiIndex(ganzhi.BureauWater, 31); !errors.Is(err, ErrInvalidBirthData) {
		t.Fatalf("expected ErrInvalidBirthData, got %v", err)
	}
}

func TestTransformations(t *testing.T) {
	t.Run("stem table", func(t *testing.T) {
		got, err := TransformationsForStem(6)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		want := [4]Transformation{
			{Key: KeyLu, StarName: StarTaiyang},
			{Key: KeyQuan, StarName: StarWuqu},
			{Key: KeyKe, StarName: StarTaiyin},
			{Key: KeyJi, StarName: StarTiantong},
		}
		if got != want {
			t.Fatalf("expected %+v, got %+v", want, got)
		}
		if _, err := TransformationsForStem(10); !errors.Is(err, ErrInvariant) {
			t.Fatalf("expected ErrInvariant, got %v", err)
		}
	})

	t.Run("natal tags", func(t *testing.T) {
		c := mustChart(t, SolarDate{Year: 1990, Month: 1, Day: 27, HourBranch: 0}, GenderMale)
		want := map[TransformationKey]int{KeyLu: 3, KeyQuan: 2, KeyKe: 7, KeyJi: 1}
		for key, index := range want {
			found := false
			for _, tag := range c.Palaces[index].Tags {
				if tag.Key == key {
					found = true
				}
			}
			if !found {
				t.Fatalf("expected %s tag in palace %d", key.Label(), index)
			}
		}
		for _, s := range c.Palaces[3].MainStars {
			if s.Name == StarTaiyang && s.Transformation != KeyLu {
				t.Fatalf("expected 太阳 marked 禄, got %q", s.Transformation)
			}
		}
	})
}

func TestComputeChartErrors(t *testing.T) {
	tests := []struct {
		name   string
		date   SolarDate
		gender Gender
		want   error
	}{
		{name: "hour too large", date: SolarDate{Year: 1990, Month: 1, Day: 27, HourBranch: 12}, gender: GenderMale, want: ErrInvalidBirthData},
		{name: "negative hour", date: SolarDate{Year: 1990, Month: 1, Day: 27, HourBranch: -1}, gender: GenderMale, want: ErrInvalidBirthData},
		{name: "no gender", date: SolarDate{Year: 1990, Month: 1, Day: 27}, gender: 0, want: ErrInvalidBirthData},
		{name: "february 30", date: SolarDate{Year: 1990, Month: 2, Day: 30}, gender: GenderMale, want: ErrInvalidBirthData},
		{name: "month 13", date: SolarDate{Year: 1990, Month: 13, Day: 1}, gender: GenderMale, want: ErrInvalidBirthData},
		{name: "before table", date: SolarDate{Year: 1850, Month: 5, Day: 1}, gender: GenderMale, want: ErrOutOfRangeDate},
		{name: "after table", date: SolarDate{Year: 2150, Month: 5, Day: 1}, gender: GenderFemale, want: ErrOutOfRangeDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ComputeChart(tt.date, tt.gender)
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if c != nil {
				t.Fatalf("expected no partial chart")
			}
		})
	}
}

func TestComputeLunar(t *testing.T) {
	engine := NewEngine(Options{})
	c, err := engine.ComputeLunar(lunar.Date{Year: 2023, Month: 2, Day: 1, IsLeapMonth: true}, 5, GenderFemale)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if c.Birth.Solar != (SolarDate{Year: 2023, Month: 3, Day: 22, HourBranch: 5}) {
		t.Fatalf("unexpected solar date %+v", c.Birth.Solar)
	}
	if !c.Birth.Lunar.IsLeapMonth {
		t.Fatalf("expected leap month to survive")
	}

	if _, err := engine.ComputeLunar(lunar.Date{Year: 2024, Month: 3, Day: 1, IsLeapMonth: true}, 0, GenderMale); !errors.Is(err, ErrInvalidBirthData) {
		t.Fatalf("expected ErrInvalidBirthData, got %v", err)
	}
}

func TestParsers(t *testing.T) {
	if g, err := ParseGender("F"); err != nil || g != GenderFemale {
		t.Fatalf("expected female, got %v %v", g, err)
	}
	if _, err := ParseGender("x"); !errors.Is(err, ErrInvalidBirthData) {
		t.Fatalf("expected ErrInvalidBirthData, got %v", err)
	}
	if k, err := ParseTransformationKey("化忌"); err != nil || k != KeyJi {
		t.Fatalf("expected 忌, got %v %v", k, err)
	}
	if k, err := ParseTransformationKey("quan"); err != nil || k != KeyQuan {
		t.Fatalf("expected 权, got %v %v", k, err)
	}
	if p, err := ParsePalaceName("财帛宫"); err != nil || p != PalaceWealth {
		t.Fatalf("expected 财帛, got %v %v", p, err)
	}
	if p, err := ParsePalaceName("仆役"); err != nil || p != PalaceFriends {
		t.Fatalf("expected 交友, got %v %v", p, err)
	}
	if l, err := ParseMainStarLayout("classical"); err != nil || l != LayoutClassical {
		t.Fatalf("expected classical, got %v %v", l, err)
	}
	if _, err := ParseMainStarLayout("spiral"); err == nil {
		t.Fatalf("expected error")
	}
}

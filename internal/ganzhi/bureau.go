package ganzhi

import "fmt"

// Bureau is the Five-Elements Bureau number. Its value is also the divisor
// used to place 紫微 and the age the first decade cycle starts at.
type Bureau int

const (
	BureauWater Bureau = 2
	BureauWood  Bureau = 3
	BureauMetal Bureau = 4
	BureauEarth Bureau = 5
	BureauFire  Bureau = 6
)

var bureauNames = map[Bureau]string{
	BureauWater: "水二局",
	BureauWood:  "木三局",
	BureauMetal: "金四局",
	BureauEarth: "土五局",
	BureauFire:  "火六局",
}

func (b Bureau) Valid() bool {
	return b >= BureauWater && b <= BureauFire
}

func (b Bureau) String() string {
	if name, ok := bureauNames[b]; ok {
		return name
	}
	return fmt.Sprintf("Bureau(%d)", int(b))
}

// bureauTable rows are stem pairs (甲乙, 丙丁, 戊己, 庚辛, 壬癸); columns are
// branch pairs (子丑/午未, 寅卯/申酉, 辰巳/戌亥). Values follow the 纳音 element.
var bureauTable = [5][3]Bureau{
	{BureauMetal, BureauWater, BureauFire},
	{BureauWater, BureauFire, BureauEarth},
	{BureauFire, BureauEarth, BureauWood},
	{BureauEarth, BureauWood, BureauMetal},
	{BureauWood, BureauMetal, BureauWater},
}

// BureauFor resolves the bureau from a stem/branch pair, normally the
// life palace's.
func BureauFor(stem, branch int) (Bureau, error) {
	if stem < 0 || stem > 9 {
		return 0, fmt.Errorf("%w: stem %d", ErrIndex, stem)
	}
	if branch < 0 || branch > 11 {
		return 0, fmt.Errorf("%w: branch %d", ErrIndex, branch)
	}
	b := bureauTable[stem/2][(branch/2)%3]
	if !b.Valid() {
		return 0, fmt.Errorf("bureau table entry [%d][%d] is invalid: %d", stem/2, (branch/2)%3, b)
	}
	return b, nil
}

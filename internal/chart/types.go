package chart

import (
	"fmt"
	"strings"

	"ziwei/internal/ganzhi"
	"ziwei/internal/lunar"
)

const PalaceCount = 12

type Gender int

const (
	GenderMale Gender = iota + 1
	GenderFemale
)

func (g Gender) String() string {
	switch g {
	case GenderMale:
		return "male"
	case GenderFemale:
		return "female"
	default:
		return "unknown"
	}
}

func ParseGender(value string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "male", "m", "男":
		return GenderMale, nil
	case "female", "f", "女":
		return GenderFemale, nil
	default:
		return 0, fmt.Errorf("%w: gender %q", ErrInvalidBirthData, value)
	}
}

// SolarDate is a Gregorian birth date with the two-hour branch of birth.
type SolarDate struct {
	Year       int
	Month      int
	Day        int
	HourBranch int
}

type StarCategory string

const (
	CategoryMain              StarCategory = "main"
	CategoryAuxiliary         StarCategory = "auxiliary"
	CategoryTransformationTag StarCategory = "transformation_tag"
	CategoryTemporal          StarCategory = "temporal"
)

type TransformationKey string

const (
	KeyLu   TransformationKey = "禄"
	KeyQuan TransformationKey = "权"
	KeyKe   TransformationKey = "科"
	KeyJi   TransformationKey = "忌"
)

// TransformationKeys is the canonical order of the four transformations.
var TransformationKeys = [4]TransformationKey{KeyLu, KeyQuan, KeyKe, KeyJi}

func (k TransformationKey) Label() string {
	return "化" + string(k)
}

func ParseTransformationKey(value string) (TransformationKey, error) {
	v := strings.TrimPrefix(strings.TrimSpace(value), "化")
	for _, key := range TransformationKeys {
		if v == string(key) {
			return key, nil
		}
	}
	switch strings.ToLower(v) {
	case "lu":
		return KeyLu, nil
	case "quan":
		return KeyQuan, nil
	case "ke":
		return KeyKe, nil
	case "ji":
		return KeyJi, nil
	}
	return "", fmt.Errorf("unknown transformation %q", value)
}

type Star struct {
	Name           string
	Category       StarCategory
	Transformation TransformationKey
}

type Transformation struct {
	Key      TransformationKey
	StarName string
}

type PalaceName string

const (
	PalaceLife     PalaceName = "命宫"
	PalaceSiblings PalaceName = "兄弟"
	PalaceSpouse   PalaceName = "夫妻"
	PalaceChildren PalaceName = "子女"
	PalaceWealth   PalaceName = "财帛"
	PalaceHealth   PalaceName = "疾厄"
	PalaceTravel   PalaceName = "迁移"
	PalaceFriends  PalaceName = "交友"
	PalaceCareer   PalaceName = "官禄"
	PalaceProperty PalaceName = "田宅"
	PalaceFortune  PalaceName = "福德"
	PalaceParents  PalaceName = "父母"
)

// PalaceNames lists the twelve names counter-clockwise from the life palace.
var PalaceNames = [PalaceCount]PalaceName{
	PalaceLife, PalaceSiblings, PalaceSpouse, PalaceChildren,
	PalaceWealth, PalaceHealth, PalaceTravel, PalaceFriends,
	PalaceCareer, PalaceProperty, PalaceFortune, PalaceParents,
}

func ParsePalaceName(value string) (PalaceName, error) {
	v := strings.TrimSpace(value)
	for _, name := range PalaceNames {
		if v == string(name) || v+"宫" == string(name) || v == string(name)+"宫" {
			return name, nil
		}
	}
	if v == "仆役" || v == "奴仆" {
		return PalaceFriends, nil
	}
	return "", fmt.Errorf("unknown palace name %q", value)
}

type Palace struct {
	Index          int
	Name           PalaceName
	Stem           int
	Branch         int
	MainStars      []Star
	AuxiliaryStars []Star
	TemporalStars  []Star
	Tags           []Transformation
	IsBodyPalace   bool
}

func (p *Palace) Label() string {
	sb := ganzhi.StemBranch{Stem: p.Stem, Branch: p.Branch}
	return fmt.Sprintf("%s %s", sb, p.Name)
}

func (p *Palace) stars(category StarCategory) []Star {
	switch category {
	case CategoryMain:
		return p.MainStars
	case CategoryAuxiliary:
		return p.AuxiliaryStars
	case CategoryTemporal:
		return p.TemporalStars
	default:
		return nil
	}
}

func (p *Palace) HasStar(category StarCategory, name string) bool {
	for _, s := range p.stars(category) {
		if s.Name == name {
			return true
		}
	}
	return false
}

type BirthInputs struct {
	Solar          SolarDate
	Lunar          lunar.Date
	Gender         Gender
	YearStemBranch ganzhi.StemBranch
	Zodiac         string
}

type Chart struct {
	Palaces         [PalaceCount]Palace
	Bureau          ganzhi.Bureau
	LifePalaceIndex int
	BodyPalaceIndex int
	Birth           BirthInputs
}

func (c *Chart) Palace(index int) (*Palace, error) {
	if index < 0 || index >= PalaceCount {
		return nil, fmt.Errorf("%w: palace index %d", ErrInvariant, index)
	}
	return &c.Palaces[index], nil
}

func (c *Chart) LifePalace() *Palace {
	return &c.Palaces[c.LifePalaceIndex]
}

func (c *Chart) PalaceByName(name PalaceName) (*Palace, bool) {
	for i := range c.Palaces {
		if c.Palaces[i].Name == name {
			return &c.Palaces[i], true
		}
	}
	return nil, false
}

// StarSearchOrder is the category priority used when locating a star.
var StarSearchOrder = []StarCategory{CategoryMain, CategoryAuxiliary, CategoryTemporal}

// FindStar scans all palaces one category at a time and returns the first
// palace holding the named star.
func (c *Chart) FindStar(name string) (*Palace, bool) {
	for _, category := range StarSearchOrder {
		for i := range c.Palaces {
			if c.Palaces[i].HasStar(category, name) {
				return &c.Palaces[i], true
			}
		}
	}
	return nil, false
}

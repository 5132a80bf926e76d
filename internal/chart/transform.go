package chart

import (
	"fmt"
)

// sihuaTable lists the 禄 权 科 忌 stars for each heavenly stem.
var sihuaTable = [10][4]string{
	{StarLianzhen, StarPojun, StarWuqu, StarTaiyang},       // 甲
	{StarTianji, StarTianliang, StarZiwei, StarTaiyin},     // 乙
	{StarTiantong, StarTianji, StarWenchang, StarLianzhen}, // 丙
	{StarTaiyin, StarTiantong, StarTianji, StarJumen},      // 丁
	{StarTanlang, StarTaiyin, StarYoubi, StarTianji},       // 戊
	{StarWuqu, StarTanlang, StarTianliang, StarWenqu},      // 己
	{StarTaiyang, StarWuqu, StarTaiyin, StarTiantong},      // 庚
	{StarJumen, StarTaiyang, StarWenqu, StarWenchang},      // 辛
	{StarTianliang, StarZiwei, StarZuofu, StarWuqu},        // 壬
	{StarPojun, StarJumen, StarTaiyin, StarTanlang},        // 癸
}

// TransformationsForStem returns the four transformations of a stem in
// canonical order.
func TransformationsForStem(stem int) ([4]Transformation, error) {
	var out [4]Transformation
	if stem < 0 || stem >= len(sihuaTable) {
		return out, fmt.Errorf("%w: transformation stem %d", ErrInvariant, stem)
	}
	for i, key := range TransformationKeys {
		out[i] = Transformation{Key: key, StarName: sihuaTable[stem][i]}
	}
	return out, nil
}

func applyTransformations(c *Chart, stem int) error {
	transforms, err := TransformationsForStem(stem)
	if err != nil {
		return err
	}
	for _, tr := range transforms {
		if !tagStar(c, tr) {
			return fmt.Errorf("%w: transformation star %s is not on the chart", ErrInvariant, tr.StarName)
		}
	}
	return nil
}

func tagStar(c *Chart, tr Transformation) bool {
	for i := range c.Palaces {
		p := &c.Palaces[i]
		for _, stars := range [][]Star{p.MainStars, p.AuxiliaryStars} {
			for j := range stars {
				if stars[j].Name == tr.StarName {
					stars[j].Transformation = tr.Key
					p.Tags = append(p.Tags, tr)
					return true
				}
			}
		}
	}
	return false
}

// Package ganzhi resolves heavenly stems, earthly branches, zodiac animals and
// the Five-Elements Bureau of the sexagenary calendar.
package ganzhi

import (
	"errors"
	"fmt"
)

var ErrIndex = errors.New("stem or branch index out of range")

var stemNames = [10]string{"甲", "乙", "丙", "丁", "戊", "己", "庚", "辛", "壬", "癸"}

var branchNames = [12]string{"子", "丑", "寅", "卯", "辰", "巳", "午", "未", "申", "酉", "戌", "亥"}

var zodiacAnimals = [12]string{"鼠", "牛", "虎", "兔", "龙", "蛇", "马", "羊", "猴", "鸡", "狗", "猪"}

const (
	BranchZi  = 0
	BranchYin = 2
)

type StemBranch struct {
	Stem   int
	Branch int
}

func (sb StemBranch) String() string {
	stem, err := StemName(sb.Stem)
	if err != nil {
		return fmt.Sprintf("?%d", sb.Stem)
	}
	branch, err := BranchName(sb.Branch)
	if err != nil {
		return stem + "?"
	}
	return stem + branch
}

// IsYang reports whether the stem is yang (甲 丙 戊 庚 壬).
func (sb StemBranch) IsYang() bool {
	return sb.Stem%2 == 0
}

func YearStemBranch(year int) StemBranch {
	return StemBranch{Stem: Mod(year-4, 10), Branch: Mod(year-4, 12)}
}

// Mod is a modulo that never returns a negative value.
func Mod(a, n int) int {
	r := a % n
	if r < 0 {
		r += n
	}
	return r
}

func StemName(stem int) (string, error) {
	if stem < 0 || stem >= len(stemNames) {
		return "", fmt.Errorf("%w: stem %d", ErrIndex, stem)
	}
	return stemNames[stem], nil
}

func BranchName(branch int) (string, error) {
	if branch < 0 || branch >= len(branchNames) {
		return "", fmt.Errorf("%w: branch %d", ErrIndex, branch)
	}
	return branchNames[branch], nil
}

func Zodiac(branch int) (string, error) {
	if branch < 0 || branch >= len(zodiacAnimals) {
		return "", fmt.Errorf("%w: branch %d", ErrIndex, branch)
	}
	return zodiacAnimals[branch], nil
}

// PalaceStem returns the heavenly stem of the palace sitting on branch for a
// year with the given stem. The 寅 palace starts the rotation, so 子 and 丑
// repeat the stems of 寅 and 卯.
func PalaceStem(yearStem, branch int) (int, error) {
	if yearStem < 0 || yearStem > 9 {
		return 0, fmt.Errorf("%w: stem %d", ErrIndex, yearStem)
	}
	if branch < 0 || branch > 11 {
		return 0, fmt.Errorf("%w: branch %d", ErrIndex, branch)
	}
	first := (yearStem%5)*2 + 2
	return (first + Mod(branch-BranchYin, 12)) % 10, nil
}

// HourBranch maps a clock time to its two-hour branch. 23:00 already belongs
// to the next 子 hour.
func HourBranch(hour, minute int) (int, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %02d:%02d", hour, minute)
	}
	return ((hour + 1) / 2) % 12, nil
}

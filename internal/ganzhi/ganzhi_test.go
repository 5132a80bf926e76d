package ganzhi

import (
	"errors"
	"testing"
)

func TestYearStemBranch(t *testing.T) {
	tests := []struct {
		year   int
		stem   int
		branch int
		label  string
		zodiac string
	}{
		{year: 1984, stem: 0, branch: 0, label: "甲子", zodiac: "鼠"},
		{year: 1990, stem: 6, branch: 6, label: "庚午", zodiac: "马"},
		{year: 2000, stem: 6, branch: 4, label: "庚辰", zodiac: "龙"},
		{year: 2024, stem: 0, branch: 4, label: "甲辰", zodiac: "龙"},
		{year: 1900, stem: 6, branch: 0, label: "庚子", zodiac: "鼠"},
		{year: 3, stem: 9, branch: 11, label: "癸亥", zodiac: "猪"},
	}

	for _, tt := range tests {
		t.Run(tt.label, func(t *testing.T) {
			sb := YearStemBranch(tt.year)
			if sb.Stem != tt.stem || sb.Branch != tt.branch {
				t.Fatalf("year %d: expected (%d,%d), got (%d,%d)", tt.year, tt.stem, tt.branch, sb.Stem, sb.Branch)
			}
			if sb.String() != tt.label {
				t.Fatalf("expected %s, got %s", tt.label, sb.String())
			}
			animal, err := Zodiac(sb.Branch)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if animal != tt.zodiac {
				t.Fatalf("expected %s, got %s", tt.zodiac, animal)
			}
		})
	}
}

func TestPalaceStem(t *testing.T) {
	t.Run("甲 year starts 寅 at 丙", func(t *testing.T) {
		want := map[int]int{BranchYin: 2, 3: 3, 11: 1, BranchZi: 2, 1: 3}
		for branch, stem := range want {
			got, err := PalaceStem(0, branch)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != stem {
				t.Fatalf("branch %d: expected stem %d, got %d", branch, stem, got)
			}
		}
	})

	t.Run("庚 year starts 寅 at 戊", func(t *testing.T) {
		got, err := PalaceStem(6, BranchYin)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if got != 4 {
			t.Fatalf("expected 戊 (4), got %d", got)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		if _, err := PalaceStem(10, 0); !errors.Is(err, ErrIndex) {
			t.Fatalf("expected ErrIndex, got %v", err)
		}
		if _, err := PalaceStem(0, 12); !errors.Is(err, ErrIndex) {
			t.Fatalf("expected ErrIndex, got %v", err)
		}
	})
}

func TestBureauFor(t *testing.T) {
	tests := []struct {
		name   string
		stem   int
		branch int
		want   Bureau
	}{
		{name: "甲子 海中金", stem: 0, branch: 0, want: BureauMetal},
		{name: "丙寅 炉中火", stem: 2, branch: 2, want: BureauFire},
		{name: "戊寅 城头土", stem: 4, branch: 2, want: BureauEarth},
		{name: "戊辰 大林木", stem: 4, branch: 4, want: BureauWood},
		{name: "壬辰 长流水", stem: 8, branch: 4, want: BureauWater},
		{name: "辛亥 钗钏金", stem: 7, branch: 11, want: BureauMetal},
		{name: "丁未 天河水", stem: 3, branch: 7, want: BureauWater},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := BureauFor(tt.stem, tt.branch)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %s, got %s", tt.want, got)
			}
		})
	}

	t.Run("every pair resolves", func(t *testing.T) {
		for stem := 0; stem < 10; stem++ {
			for branch := 0; branch < 12; branch++ {
				b, err := BureauFor(stem, branch)
				if err != nil {
					t.Fatalf("(%d,%d): %v", stem, branch, err)
				}
				if !b.Valid() {
					t.Fatalf("(%d,%d): invalid bureau %d", stem, branch, b)
				}
			}
		}
	})

	t.Run("bad stem", func(t *testing.T) {
		if _, err := BureauFor(-1, 0); !errors.Is(err, ErrIndex) {
			t.Fatalf("expected ErrIndex, got %v", err)
		}
	})
}

func TestHourBranch(t *testing.T) {
	tests := []struct {
		hour, minute, want int
	}{
		{23, 30, 0},
		{0, 15, 0},
		{1, 0, 1},
		{11, 59, 6},
		{12, 0, 6},
		{22, 59, 11},
	}
	for _, tt := range tests {
		got, err := HourBranch(tt.hour, tt.minute)
		if err != nil {
			t.Fatalf("%02d:%02d: %v", tt.hour, tt.minute, err)
		}
		if got != tt.want {
			t.Fatalf("%02d:%02d: expected %d, got %d", tt.hour, tt.minute, tt.want, got)
		}
	}
	if _, err := HourBranch(24, 0); err == nil {
		t.Fatalf("expected error")
	}
}

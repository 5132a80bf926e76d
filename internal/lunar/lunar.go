package lunar

import (
	"errors"
	"fmt"
	"time"
)

const (
	MinYear = 1900
	MaxYear = 2100
)

var (
	ErrOutOfRange  = errors.New("date outside supported lunar range")
	ErrInvalidDate = errors.New("invalid calendar date")
)

// epoch is lunar 1900-01-01.
var epoch = time.Date(1900, time.January, 31, 0, 0, 0, 0, time.UTC)

// Date is a lunar calendar date. A leap month shares its number with the
// ordinary month it follows.
type Date struct {
	Year        int
	Month       int
	Day         int
	IsLeapMonth bool
}

func (d Date) String() string {
	if d.IsLeapMonth {
		return fmt.Sprintf("%04d-L%02d-%02d", d.Year, d.Month, d.Day)
	}
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

type Solar struct {
	Year  int
	Month int
	Day   int
}

func (s Solar) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", s.Year, s.Month, s.Day)
}

func (s Solar) Time() time.Time {
	return time.Date(s.Year, time.Month(s.Month), s.Day, 0, 0, 0, 0, time.UTC)
}

func entry(year int) (uint32, error) {
	if year < MinYear || year > MaxYear {
		return 0, fmt.Errorf("%w: year %d", ErrOutOfRange, year)
	}
	return yearTable[year-MinYear], nil
}

// LeapMonth returns the leap month number of the lunar year, or 0.
func LeapMonth(year int) (int, error) {
	info, err := entry(year)
	if err != nil {
		return 0, err
	}
	return int(info & 0xf), nil
}

func LeapMonthDays(year int) (int, error) {
	info, err := entry(year)
	if err != nil {
		return 0, err
	}
	if info&0xf == 0 {
		return 0, nil
	}
	if info&0x10000 != 0 {
		return 30, nil
	}
	return 29, nil
}

func MonthDays(year, month int) (int, error) {
	info, err := entry(year)
	if err != nil {
		return 0, err
	}
	if month < 1 || month > 12 {
		return 0, fmt.Errorf("%w: lunar month %d", ErrInvalidDate, month)
	}
	if info&(0x10000>>uint(month)) != 0 {
		return 30, nil
	}
	return 29, nil
}

func YearDays(year int) (int, error) {
	info, err := entry(year)
	if err != nil {
		return 0, err
	}
	days := 348
	for mask := uint32(0x8000); mask > 0x8; mask >>= 1 {
		if info&mask != 0 {
			days++
		}
	}
	leap, _ := LeapMonthDays(year)
	return days + leap, nil
}

func SolarToLunar(year, month, day int) (Date, error) {
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if month < 1 || month > 12 || t.Day() != day || t.Month() != time.Month(month) {
		return Date{}, fmt.Errorf("%w: solar %04d-%02d-%02d", ErrInvalidDate, year, month, day)
	}
	if t.Before(epoch) {
		return Date{}, fmt.Errorf("%w: solar %s before %s", ErrOutOfRange, t.Format(time.DateOnly), epoch.Format(time.DateOnly))
	}

	offset := int(t.Sub(epoch).Hours() / 24)

	y := MinYear
	for ; y <= MaxYear; y++ {
		n, _ := YearDays(y)
		if offset < n {
			break
		}
		offset -= n
	}
	if y > MaxYear {
		return Date{}, fmt.Errorf("%w: solar %s after lunar year %d", ErrOutOfRange, t.Format(time.DateOnly), MaxYear)
	}

	leap, _ := LeapMonth(y)
	for m := 1; m <= 12; m++ {
		n, _ := MonthDays(y, m)
		if offset < n {
			return Date{Year: y, Month: m, Day: offset + 1}, nil
		}
		offset -= n
		if m == leap {
			n, _ = LeapMonthDays(y)
			if offset < n {
				return Date{Year: y, Month: m, Day: offset + 1, IsLeapMonth: true}, nil
			}
			offset -= n
		}
	}

	// YearDays and the month walk read the same entry, so the walk always lands.
	return Date{}, fmt.Errorf("lunar year %d table entry is inconsistent", y)
}

func LunarToSolar(year, month, day int, isLeap bool) (Solar, error) {
	leap, err := LeapMonth(year)
	if err != nil {
		return Solar{}, err
	}
	if month < 1 || month > 12 {
		return Solar{}, fmt.Errorf("%w: lunar month %d", ErrInvalidDate, month)
	}
	if isLeap && leap != month {
		return Solar{}, fmt.Errorf("%w: lunar year %d has no leap month %d", ErrInvalidDate, year, month)
	}

	var length int
	if isLeap {
		length, _ = LeapMonthDays(year)
	} else {
		length, _ = MonthDays(year, month)
	}
	if day < 1 || day > length {
		return Solar{}, fmt.Errorf("%w: lunar day %d (month has %d days)", ErrInvalidDate, day, length)
	}

	offset := 0
	for y := MinYear; y < year; y++ {
		n, _ := YearDays(y)
		offset += n
	}
	for m := 1; m < month; m++ {
		n, _ := MonthDays(year, m)
		offset += n
		if m == leap {
			n, _ = LeapMonthDays(year)
			offset += n
		}
	}
	if isLeap {
		n, _ := MonthDays(year, month)
		offset += n
	}
	offset += day - 1

	t := epoch.AddDate(0, 0, offset)
	return Solar{Year: t.Year(), Month: int(t.Month()), Day: t.Day()}, nil
}

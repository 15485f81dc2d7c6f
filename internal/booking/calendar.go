package booking

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
)

var ErrInvalidDate = errors.New("date must be a valid YYYY-MM-DD calendar date")

var (
	isoDatePattern     = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	displayDatePattern = regexp.MustCompile(`^\d{2}/\d{2}/\d{4}$`)
)

// backendWeekdayCodes translates a Sunday-first weekday (0..6) into the
// backend's Monday-first code (1..7).
var backendWeekdayCodes = [7]int{7, 1, 2, 3, 4, 5, 6}

// sakamotoOffsets are the month offsets of Sakamoto's weekday method.
var sakamotoOffsets = [12]int{0, 3, 2, 5, 0, 3, 5, 1, 4, 6, 2, 4}

// Date is a calendar date with no time or zone attached.
type Date struct {
	Year  int
	Month int
	Day   int
}

// ParseDate parses a strict YYYY-MM-DD value.
func ParseDate(value string) (Date, error) {
	if !isoDatePattern.MatchString(value) {
		return Date{}, ErrInvalidDate
	}
	year, _ := strconv.Atoi(value[0:4])
	month, _ := strconv.Atoi(value[5:7])
	day, _ := strconv.Atoi(value[8:10])
	return newDate(year, month, day, value)
}

// ParseDisplayDate parses the DD/MM/YYYY form shown to users.
func ParseDisplayDate(value string) (Date, error) {
	if !displayDatePattern.MatchString(value) {
		return Date{}, ErrInvalidDate
	}
	day, _ := strconv.Atoi(value[0:2])
	month, _ := strconv.Atoi(value[3:5])
	year, _ := strconv.Atoi(value[6:10])
	return newDate(year, month, day, value)
}

// IsISODate reports whether value is a valid YYYY-MM-DD date.
func IsISODate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

func newDate(year, month, day int, raw string) (Date, error) {
	if year < 1 || month < 1 || month > 12 || day < 1 || day > daysInMonth(year, month) {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
	}
	return Date{Year: year, Month: month, Day: day}, nil
}

func daysInMonth(year, month int) int {
	switch month {
	case 2:
		if isLeapYear(year) {
			return 29
		}
		return 28
	case 4, 6, 9, 11:
		return 30
	default:
		return 31
	}
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// String returns the YYYY-MM-DD form.
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, d.Month, d.Day)
}

// Display returns the DD/MM/YYYY form.
func (d Date) Display() string {
	return fmt.Sprintf("%02d/%02d/%04d", d.Day, d.Month, d.Year)
}

// SundayWeekday returns 0 for Sunday through 6 for Saturday.
func (d Date) SundayWeekday() int {
	year := d.Year
	if d.Month < 3 {
		year--
	}
	return (year + year/4 - year/100 + year/400 + sakamotoOffsets[d.Month-1] + d.Day) % 7
}

// BackendWeekday returns the backend weekday code (1=Monday .. 7=Sunday).
func (d Date) BackendWeekday() int {
	return BackendWeekdayCode(d.SundayWeekday())
}

// BackendWeekdayCode maps a Sunday-first weekday to the backend code. It
// returns 0 for values outside 0..6.
func BackendWeekdayCode(sundayWeekday int) int {
	if sundayWeekday < 0 || sundayWeekday >= len(backendWeekdayCodes) {
		return 0
	}
	return backendWeekdayCodes[sundayWeekday]
}

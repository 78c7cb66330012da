package calculator

import (
	"math"
	"time"

	"DCASimulator/internal/model"
)

// AddMonths behaves like Excel's EDATE: the day of month is clamped to the
// last day of the target month instead of overflowing into the next one.
func AddMonths(t time.Time, months int) time.Time {
	first := time.Date(t.Year(), t.Month(), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	target := first.AddDate(0, months, 0)
	day := t.Day()
	if last := daysIn(target.Year(), target.Month()); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

// YearsToMonths rounds a fractional year count to whole months, half to even.
func YearsToMonths(years float64) int {
	return int(math.RoundToEven(years * 12))
}

// DateOf truncates t to its calendar date at 00:00 UTC.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// BuildGrid returns the sample dates between start and end (both inclusive)
// at the requested cadence. The grid is anchored on the first cadence boundary
// on or after start: Sundays for weekly, the 1st for month-start and
// 1 January for year-start. An empty grid is returned when start is after end.
func BuildGrid(start, end time.Time, freq model.Frequency) []time.Time {
	start, end = DateOf(start), DateOf(end)
	if start.After(end) || !freq.Valid() {
		return nil
	}

	first := anchor(start, freq)
	var grid []time.Time
	for i := 0; ; i++ {
		t := step(first, freq, i)
		if t.After(end) {
			break
		}
		grid = append(grid, t)
	}
	return grid
}

func anchor(start time.Time, freq model.Frequency) time.Time {
	switch freq {
	case model.Weekly:
		return start.AddDate(0, 0, (7-int(start.Weekday()))%7)
	case model.MonthStart:
		if start.Day() == 1 {
			return start
		}
		return time.Date(start.Year(), start.Month()+1, 1, 0, 0, 0, 0, time.UTC)
	case model.YearStart:
		if start.Month() == time.January && start.Day() == 1 {
			return start
		}
		return time.Date(start.Year()+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return start
	}
}

// step always offsets from the anchor so month lengths never accumulate drift.
func step(first time.Time, freq model.Frequency, i int) time.Time {
	switch freq {
	case model.Weekly:
		return first.AddDate(0, 0, 7*i)
	case model.MonthStart:
		return first.AddDate(0, i, 0)
	case model.YearStart:
		return first.AddDate(i, 0, 0)
	default:
		return first.AddDate(0, 0, i)
	}
}

// PurchaseWindow returns the prefix of grid strictly before purchaseEnd.
func PurchaseWindow(grid []time.Time, purchaseEnd time.Time) []time.Time {
	end := DateOf(purchaseEnd)
	n := 0
	for n < len(grid) && grid[n].Before(end) {
		n++
	}
	return grid[:n]
}

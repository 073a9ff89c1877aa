package leave

import "time"

// HolidaySet holds public holidays keyed by calendar date.
type HolidaySet map[Date]struct{}

func NewHolidaySet(dates ...Date) HolidaySet {
	set := make(HolidaySet, len(dates))
	for _, d := range dates {
		set.Add(d)
	}
	return set
}

func HolidaySetOf(holidays []Holiday) HolidaySet {
	set := make(HolidaySet, len(holidays))
	for _, h := range holidays {
		set.Add(h.Date)
	}
	return set
}

func (s HolidaySet) Add(d Date) {
	if d.IsZero() {
		return
	}
	s[DateOf(d.Time())] = struct{}{}
}

func (s HolidaySet) Contains(d Date) bool {
	if s == nil {
		return false
	}
	_, ok := s[DateOf(d.Time())]
	return ok
}

func IsWeekend(d Date) bool {
	wd := d.Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// WorkingDays counts the inclusive range [start, end] minus weekends and holidays.
// A reversed range yields 0.
func WorkingDays(start, end Date, holidays HolidaySet) int {
	if start.After(end) {
		return 0
	}
	count := 0
	for d := start; !d.After(end); d = d.AddDays(1) {
		if IsWeekend(d) || holidays.Contains(d) {
			continue
		}
		count++
	}
	return count
}

// BusinessDaysBetween counts weekdays strictly between from and to. Holidays are
// deliberately not consulted. Returns 0 when to is not after from.
func BusinessDaysBetween(from, to Date) int {
	count := 0
	for d := from.AddDays(1); d.Before(to); d = d.AddDays(1) {
		if !IsWeekend(d) {
			count++
		}
	}
	return count
}

// WholeMonthsBetween is the floor of the month difference from earlier to later.
// The later date is walked back by the calendar-month gap with overflow
// normalization, so Jan 31 to Apr 30 counts 2. A later date on Feb 28/29 is
// first pushed to Feb 30, which makes Nov 30 to Feb 28 count 3.
func WholeMonthsBetween(earlier, later Date) int {
	if later.Before(earlier) {
		return -WholeMonthsBetween(later, earlier)
	}
	months := (later.Year()-earlier.Year())*12 + int(later.Month()-earlier.Month())
	if months < 1 {
		return 0
	}
	shifted := later.Time()
	if shifted.Month() == time.February && shifted.Day() > 27 {
		shifted = time.Date(shifted.Year(), time.February, 30, 0, 0, 0, 0, time.UTC)
	}
	shifted = shifted.AddDate(0, -months, 0)
	if shifted.Before(earlier.Time()) && !(months == 1 && isLastDayOfMonth(later)) {
		months--
	}
	return months
}

func isLastDayOfMonth(d Date) bool {
	return d.AddDays(1).Month() != d.Month()
}

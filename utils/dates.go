package utils

import "time"

const dateLayout = "2006-01-02"

// LocalDateString formats t as a YYYY-MM-DD string in the local calendar.
// "Today" for streak purposes is always the device-local day, not UTC.
func LocalDateString(t time.Time) string {
	return t.Local().Format(dateLayout)
}

// SubtractDays returns t moved back n calendar days, crossing month and
// year boundaries.
func SubtractDays(t time.Time, n int) time.Time {
	return t.AddDate(0, 0, -n)
}

// LastSevenDayStrings returns today's date string first, followed by the
// six days before it.
func LastSevenDayStrings(now time.Time) []string {
	days := make([]string, 0, 7)
	for i := 0; i < 7; i++ {
		days = append(days, LocalDateString(SubtractDays(now, i)))
	}
	return days
}

// FilterToLastSevenDays keeps only the dates that fall inside the rolling
// 7-day window ending at now. Input order is preserved.
func FilterToLastSevenDays(dates []string, now time.Time) []string {
	window := make(map[string]bool, 7)
	for _, d := range LastSevenDayStrings(now) {
		window[d] = true
	}

	filtered := make([]string, 0, len(dates))
	for _, d := range dates {
		if window[d] {
			filtered = append(filtered, d)
		}
	}
	return filtered
}

// ConsecutiveDaysEndingToday counts the run of calendar days ending at
// today that are all present in dates. A single missing day anywhere in
// the run truncates the count at that gap.
func ConsecutiveDaysEndingToday(dates []string, now time.Time) int {
	present := make(map[string]bool, len(dates))
	for _, d := range dates {
		present[d] = true
	}

	streak := 0
	expected := now
	for present[LocalDateString(expected)] {
		streak++
		expected = SubtractDays(expected, 1)
	}
	return streak
}

// Package studycal implements the study-day calendar used across Seedling.
// A study day is a weekday (Monday-Friday) in Korea Standard Time; weekends
// never count toward mission duration or lesson progress. Both the mission
// due-date policy and the opened-day counter derive from the primitives here
// so the two can never drift apart.
// No external dependencies - uses only standard library.
package studycal

import "time"

// KST is the Korea Standard Time zone (UTC+9, no DST).
// South Korea has not observed DST since 1988, so this is constant year-round.
var KST = time.FixedZone("Asia/Seoul", 9*60*60)

// studyDaysPerWeek is the number of study days in one calendar week.
const studyDaysPerWeek = 5

// Now returns the current time in KST.
func Now() time.Time {
	return time.Now().In(KST)
}

// ToKST converts a time to KST.
func ToKST(t time.Time) time.Time {
	return t.In(KST)
}

// Date creates a date (midnight) in KST.
func Date(year, month, day int) time.Time {
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, KST)
}

// StartOfDay returns the start of the day (00:00:00) in KST.
func StartOfDay(t time.Time) time.Time {
	k := ToKST(t)
	return time.Date(k.Year(), k.Month(), k.Day(), 0, 0, 0, 0, KST)
}

// IsWeekend reports whether the given time falls on Saturday or Sunday in KST.
func IsWeekend(t time.Time) bool {
	wd := ToKST(t).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// IsStudyDay reports whether the given time falls on a study day (Mon-Fri).
func IsStudyDay(t time.Time) bool {
	return !IsWeekend(t)
}

// NextStudyDay returns the first study day strictly after the given time.
func NextStudyDay(t time.Time) time.Time {
	next := StartOfDay(t).AddDate(0, 0, 1)
	for IsWeekend(next) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// AdvanceToStudyDay returns t itself if it falls on a study day, otherwise
// the following Monday. Used to find a mission's first effective study day.
func AdvanceToStudyDay(t time.Time) time.Time {
	d := StartOfDay(t)
	for IsWeekend(d) {
		d = d.AddDate(0, 0, 1)
	}
	return d
}

// DaysBetween returns the number of calendar days from a through b
// (b - a, negative when b precedes a). Both ends are truncated to midnight KST.
func DaysBetween(a, b time.Time) int {
	start := StartOfDay(a)
	end := StartOfDay(b)
	return int(end.Sub(start).Hours() / 24)
}

// AddStudyDays returns the date on which the n-th study day falls, counting
// the first effective study day as day 1. n must be >= 1; callers validate.
//
// Instead of walking day by day, whole Mon-Fri blocks are consumed as full
// calendar weeks (adding 7 days keeps the weekday fixed, so a block can never
// land on a weekend), then the remainder is added with a 2-day hop when it
// would spill past Friday.
func AddStudyDays(start time.Time, n int) time.Time {
	d := AdvanceToStudyDay(start)

	remaining := n - 1
	fullWeeks := remaining / studyDaysPerWeek
	extra := remaining % studyDaysPerWeek

	d = d.AddDate(0, 0, fullWeeks*7)

	// Mon=1 .. Fri=5 after AdvanceToStudyDay.
	if int(d.Weekday())+extra > studyDaysPerWeek {
		extra += 2
	}

	return d.AddDate(0, 0, extra)
}

// CountStudyDays returns the number of study days from start through end
// inclusive, or 0 when end precedes start.
//
// Any 7 consecutive calendar days contain exactly 5 study days, so whole
// weeks are counted in one step and only the remainder is walked.
func CountStudyDays(start, end time.Time) int {
	total := DaysBetween(start, end) + 1
	if total <= 0 {
		return 0
	}

	fullWeeks := total / 7
	count := fullWeeks * studyDaysPerWeek

	d := StartOfDay(start).AddDate(0, 0, fullWeeks*7)
	for rem := total % 7; rem > 0; rem-- {
		if IsStudyDay(d) {
			count++
		}
		d = d.AddDate(0, 0, 1)
	}

	return count
}

// SameDate reports whether two times fall on the same calendar day in KST.
func SameDate(t1, t2 time.Time) bool {
	a, b := ToKST(t1), ToKST(t2)
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// FormatDate is the standard date format (YYYY-MM-DD) used in logs and keys.
const FormatDate = "2006-01-02"

// FormatDateStr formats a time as a date string (YYYY-MM-DD) in KST.
func FormatDateStr(t time.Time) string {
	return ToKST(t).Format(FormatDate)
}

// ParseDate parses a date string (YYYY-MM-DD) in KST.
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(FormatDate, value, KST)
}

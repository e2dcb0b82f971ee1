package mission

import (
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

// ══════════════════════════════════════════════════════════════════════════════
// CALENDAR POLICIES
// Both policies derive from pkg/studycal so the due-date arithmetic and the
// opened-day arithmetic can never disagree about what a study day is.
// ══════════════════════════════════════════════════════════════════════════════

// DueDate computes the calendar date on which a mission of missionDays
// study days ends, given its start date. Weekends never count: a weekend
// start is pushed to the following Monday, and the remaining days are laid
// out across Mon-Fri blocks.
func DueDate(start time.Time, missionDays int) (time.Time, error) {
	if missionDays <= 0 {
		return time.Time{}, shared.ErrInvalidScheduleInput
	}
	return studycal.AddStudyDays(start, missionDays), nil
}

// NewPeriodForStudyDays builds a mission period from a start date and a
// study-day count, with the end date computed by DueDate.
func NewPeriodForStudyDays(start time.Time, missionDays int) (Period, error) {
	due, err := DueDate(start, missionDays)
	if err != nil {
		return Period{}, err
	}
	return NewPeriod(start, due)
}

// OpenedDaySequence counts how many study-day slots have opened between
// startDate and today, capped at endDate. It returns 0 before the mission
// starts and stops growing once the period ends.
//
// The learning-record subsystem uses the same function to gate which day's
// lesson a learner may open; there is deliberately a single implementation.
func OpenedDaySequence(startDate, endDate, today time.Time) int {
	effectiveEnd := studycal.StartOfDay(today)
	end := studycal.StartOfDay(endDate)
	if effectiveEnd.After(end) {
		effectiveEnd = end
	}
	return studycal.CountStudyDays(startDate, effectiveEnd)
}

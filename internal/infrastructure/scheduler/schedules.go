package scheduler

import (
	"fmt"
	"time"
)

// IntervalSchedule schedules a job to run at a fixed interval.
type IntervalSchedule struct {
	Interval time.Duration
}

// NewIntervalSchedule creates a new IntervalSchedule.
func NewIntervalSchedule(interval time.Duration) *IntervalSchedule {
	return &IntervalSchedule{
		Interval: interval,
	}
}

// Next returns the next scheduled time.
func (s *IntervalSchedule) Next(t time.Time) time.Time {
	return t.Add(s.Interval)
}

// String returns the string representation of the schedule.
func (s *IntervalSchedule) String() string {
	return fmt.Sprintf("@every %s", s.Interval.String())
}

// DailyAtSchedule schedules a job once a day at a fixed local time.
// The expiry sweep uses it to fire shortly after the KST date rolls over.
type DailyAtSchedule struct {
	Hour   int
	Minute int
}

// NewDailyAtSchedule creates a schedule firing daily at hour:minute in the
// timezone of the time passed to Next.
func NewDailyAtSchedule(hour, minute int) (*DailyAtSchedule, error) {
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("invalid hour: %d", hour)
	}
	if minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid minute: %d", minute)
	}
	return &DailyAtSchedule{Hour: hour, Minute: minute}, nil
}

// Next returns the next occurrence of the configured wall-clock time
// strictly after t, in t's location.
func (s *DailyAtSchedule) Next(t time.Time) time.Time {
	next := time.Date(t.Year(), t.Month(), t.Day(), s.Hour, s.Minute, 0, 0, t.Location())
	if !next.After(t) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// String returns the string representation of the schedule.
func (s *DailyAtSchedule) String() string {
	return fmt.Sprintf("@daily %02d:%02d", s.Hour, s.Minute)
}

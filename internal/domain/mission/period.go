package mission

import (
	"fmt"
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// Period is the immutable study window of a mission. Both dates are
// date-granular (midnight KST); the end date is inclusive.
type Period struct {
	StartDate time.Time
	EndDate   time.Time
}

// NewPeriod creates a period, normalizing both ends to midnight KST.
func NewPeriod(start, end time.Time) (Period, error) {
	if start.IsZero() || end.IsZero() {
		return Period{}, shared.ErrMissionPeriodRequired
	}

	p := Period{
		StartDate: studycal.StartOfDay(start),
		EndDate:   studycal.StartOfDay(end),
	}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the period's ordering invariant.
func (p Period) Validate() error {
	if p.IsZero() {
		return shared.ErrMissionPeriodRequired
	}
	if p.StartDate.After(p.EndDate) {
		return shared.ErrInvalidMissionPeriod
	}
	return nil
}

// IsZero reports whether either end of the period is missing.
func (p Period) IsZero() bool {
	return p.StartDate.IsZero() || p.EndDate.IsZero()
}

// Contains reports whether the given date falls within the period, both
// ends inclusive.
func (p Period) Contains(t time.Time) bool {
	d := studycal.StartOfDay(t)
	return !d.Before(p.StartDate) && !d.After(p.EndDate)
}

// EndsBefore reports whether the period's end date lies strictly before
// the given date.
func (p Period) EndsBefore(t time.Time) bool {
	return p.EndDate.Before(studycal.StartOfDay(t))
}

// TotalStudyDays returns the number of study days the period spans.
func (p Period) TotalStudyDays() int {
	return studycal.CountStudyDays(p.StartDate, p.EndDate)
}

// String returns the period as "YYYY-MM-DD..YYYY-MM-DD".
func (p Period) String() string {
	return fmt.Sprintf("%s..%s",
		studycal.FormatDateStr(p.StartDate), studycal.FormatDateStr(p.EndDate))
}

// Reward is the reward a parent attaches to a mission at creation.
// The message is optional.
type Reward struct {
	Title   string
	Message string
}

// NewReward creates a reward.
func NewReward(title, message string) (Reward, error) {
	r := Reward{Title: title, Message: message}
	if err := r.Validate(); err != nil {
		return Reward{}, err
	}
	return r, nil
}

// Validate checks that the reward has a title.
func (r Reward) Validate() error {
	if r.Title == "" {
		return shared.ErrMissionFieldRequired.WithReason("reward title")
	}
	return nil
}

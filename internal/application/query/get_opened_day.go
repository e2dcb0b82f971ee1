// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"log/slog"
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET OPENED DAY QUERY
// Lesson gating: a mission's lessons unlock one study day at a time, and
// the learner may only open lessons up to the day that has already opened.
// The count comes from the same calendar arithmetic the due-date policy
// uses, so gating can never disagree with the mission deadline.
// ══════════════════════════════════════════════════════════════════════════════

// GetOpenedDayQuery contains the parameters for the opened-day lookup.
type GetOpenedDayQuery struct {
	// MissionID is the mission whose day counter to read.
	MissionID string

	// RequestedDay is the day-of-mission the learner wants to open.
	// Zero means only the counter is wanted.
	RequestedDay int

	// AsOf is the reference date. Zero means now.
	AsOf time.Time
}

// Validate validates the query.
func (q GetOpenedDayQuery) Validate() error {
	if q.MissionID == "" {
		return shared.ErrMissionFieldRequired.WithReason("mission id")
	}
	if q.RequestedDay < 0 {
		return shared.ErrInvalidScheduleInput
	}
	return nil
}

// OpenedDayDTO is the read model for lesson gating.
type OpenedDayDTO struct {
	// MissionID is the mission the counter belongs to.
	MissionID string `json:"mission_id"`

	// OpenedDaySequence is how many study days have opened so far.
	// 0 before the mission's start date.
	OpenedDaySequence int `json:"opened_day_sequence"`

	// TotalStudyDays is the mission's full study-day span.
	TotalStudyDays int `json:"total_study_days"`

	// RequestedDay echoes the query, when one was asked.
	RequestedDay int `json:"requested_day,omitempty"`

	// RequestedDayOpen is true when the requested day is within the
	// opened range.
	RequestedDayOpen bool `json:"requested_day_open"`

	// AsOf is the date the counter was computed for.
	AsOf time.Time `json:"as_of"`
}

// GetOpenedDayHandler handles the GetOpenedDayQuery.
type GetOpenedDayHandler struct {
	repo   mission.Repository
	cache  mission.Cache
	logger *slog.Logger
	now    func() time.Time
}

// NewGetOpenedDayHandler creates a new GetOpenedDayHandler.
func NewGetOpenedDayHandler(repo mission.Repository, cache mission.Cache, logger *slog.Logger) *GetOpenedDayHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &GetOpenedDayHandler{
		repo:   repo,
		cache:  cache,
		logger: logger,
		now:    studycal.Now,
	}
}

// WithClock overrides the handler's clock. For tests.
func (h *GetOpenedDayHandler) WithClock(now func() time.Time) *GetOpenedDayHandler {
	h.now = now
	return h
}

// Handle executes the opened-day query.
func (h *GetOpenedDayHandler) Handle(ctx context.Context, q GetOpenedDayQuery) (*OpenedDayDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	m, err := h.getMission(ctx, q.MissionID)
	if err != nil {
		return nil, err
	}

	asOf := q.AsOf
	if asOf.IsZero() {
		asOf = h.now()
	}

	opened := m.OpenedDaySequence(asOf)

	return &OpenedDayDTO{
		MissionID:         m.ID,
		OpenedDaySequence: opened,
		TotalStudyDays:    m.Period.TotalStudyDays(),
		RequestedDay:      q.RequestedDay,
		RequestedDayOpen:  q.RequestedDay > 0 && q.RequestedDay <= opened,
		AsOf:              studycal.StartOfDay(asOf),
	}, nil
}

// getMission reads through the cache when one is configured. Cache
// errors are treated as misses.
func (h *GetOpenedDayHandler) getMission(ctx context.Context, missionID string) (*mission.Mission, error) {
	if h.cache != nil {
		if m, err := h.cache.Get(ctx, missionID); err == nil {
			return m, nil
		}
	}

	m, err := h.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	if h.cache != nil {
		if err := h.cache.Set(ctx, m, 10*time.Minute); err != nil {
			h.logger.Debug("cache set failed", "mission_id", missionID, "error", err)
		}
	}

	return m, nil
}

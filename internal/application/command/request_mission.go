package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

// ══════════════════════════════════════════════════════════════════════════════
// REQUEST MISSION COMMAND
// A child asks for a new mission. The period is derived from the start
// date and the study-day count through the due-date policy, so weekends
// never shorten the mission.
// ══════════════════════════════════════════════════════════════════════════════

// RequestMissionCommand contains the data to request a mission.
type RequestMissionCommand struct {
	// FamilyRelationID is the parent-child pairing requesting the mission.
	FamilyRelationID string

	// CategoryID is the learning track. Optional.
	CategoryID string

	// StartDate is the first day of the mission. Zero means today.
	StartDate time.Time

	// MissionDays is the mission length in study days.
	MissionDays int

	// RewardTitle is the reward the parent promises.
	RewardTitle string

	// RewardMessage is an optional message attached to the reward.
	RewardMessage string
}

// Validate validates the command.
func (c RequestMissionCommand) Validate() error {
	if c.FamilyRelationID == "" {
		return shared.ErrMissionFieldRequired.WithReason("family relation id")
	}
	if c.MissionDays <= 0 {
		return shared.ErrInvalidScheduleInput
	}
	if c.RewardTitle == "" {
		return shared.ErrMissionFieldRequired.WithReason("reward title")
	}
	return nil
}

// RequestMissionResult contains the result of requesting a mission.
type RequestMissionResult struct {
	// Mission is the created mission in APPROVAL_REQUEST.
	Mission *mission.Mission

	// DueDate is the computed end of the study window.
	DueDate time.Time
}

// RequestMissionHandler handles the RequestMissionCommand.
type RequestMissionHandler struct {
	repo      mission.Repository
	publisher shared.EventPublisher
	logger    *slog.Logger
	now       func() time.Time
}

// NewRequestMissionHandler creates a new RequestMissionHandler.
func NewRequestMissionHandler(
	repo mission.Repository,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *RequestMissionHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &RequestMissionHandler{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
		now:       studycal.Now,
	}
}

// WithClock overrides the handler's clock. For tests.
func (h *RequestMissionHandler) WithClock(now func() time.Time) *RequestMissionHandler {
	h.now = now
	return h
}

// Handle executes the request mission command.
func (h *RequestMissionHandler) Handle(ctx context.Context, cmd RequestMissionCommand) (*RequestMissionResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	// One open mission per relation and category at a time.
	exists, err := h.repo.ExistsActive(ctx, cmd.FamilyRelationID, cmd.CategoryID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.ErrMissionAlreadyExists
	}

	start := cmd.StartDate
	if start.IsZero() {
		start = h.now()
	}

	period, err := mission.NewPeriodForStudyDays(start, cmd.MissionDays)
	if err != nil {
		return nil, err
	}

	reward, err := mission.NewReward(cmd.RewardTitle, cmd.RewardMessage)
	if err != nil {
		return nil, err
	}

	m, err := mission.NewMission(mission.NewMissionParams{
		ID:               uuid.NewString(),
		FamilyRelationID: cmd.FamilyRelationID,
		CategoryID:       cmd.CategoryID,
		Period:           period,
		Reward:           reward,
	})
	if err != nil {
		return nil, err
	}

	if err := h.repo.Create(ctx, m); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(mission.NewRequestedEvent(m)); err != nil {
			h.logger.Warn("event publish failed",
				"event_type", shared.EventMissionRequested,
				"mission_id", m.ID,
				"error", err,
			)
		}
	}

	h.logger.Info("mission requested",
		"mission_id", m.ID,
		"family_relation_id", m.FamilyRelationID,
		"period", m.Period.String(),
	)

	return &RequestMissionResult{Mission: m, DueDate: period.EndDate}, nil
}

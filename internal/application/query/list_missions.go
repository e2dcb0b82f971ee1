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
// LIST MISSIONS QUERY
// ══════════════════════════════════════════════════════════════════════════════

// ListMissionsQuery contains the parameters for listing a family
// relation's missions.
type ListMissionsQuery struct {
	// FamilyRelationID selects whose missions to list.
	FamilyRelationID string

	// Phase optionally narrows the list to one lifecycle phase.
	// Empty means all phases.
	Phase mission.Phase

	// AsOf is the reference date for derived fields. Zero means now.
	AsOf time.Time
}

// Validate validates the query.
func (q ListMissionsQuery) Validate() error {
	if q.FamilyRelationID == "" {
		return shared.ErrMissionFieldRequired.WithReason("family relation id")
	}
	switch q.Phase {
	case "", mission.PhaseInProgress, mission.PhaseFinished:
	default:
		return shared.ErrInvalidMissionPhase.WithReason(string(q.Phase))
	}
	return nil
}

// MissionDTO is the read model for one mission in a listing.
type MissionDTO struct {
	ID                string         `json:"id"`
	FamilyRelationID  string         `json:"family_relation_id"`
	CategoryID        string         `json:"category_id,omitempty"`
	Status            mission.Status `json:"status"`
	Phase             mission.Phase  `json:"phase"`
	StartDate         string         `json:"start_date"`
	EndDate           string         `json:"end_date"`
	TotalStudyDays    int            `json:"total_study_days"`
	OpenedDaySequence int            `json:"opened_day_sequence"`
	RewardTitle       string         `json:"reward_title"`
	RewardMessage     string         `json:"reward_message,omitempty"`
	Version           int            `json:"version"`
}

// ListMissionsResult is the result of the listing.
type ListMissionsResult struct {
	Missions []MissionDTO `json:"missions"`
	Total    int          `json:"total"`
}

// ListMissionsHandler handles the ListMissionsQuery.
type ListMissionsHandler struct {
	repo   mission.Repository
	logger *slog.Logger
	now    func() time.Time
}

// NewListMissionsHandler creates a new ListMissionsHandler.
func NewListMissionsHandler(repo mission.Repository, logger *slog.Logger) *ListMissionsHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &ListMissionsHandler{
		repo:   repo,
		logger: logger,
		now:    studycal.Now,
	}
}

// WithClock overrides the handler's clock. For tests.
func (h *ListMissionsHandler) WithClock(now func() time.Time) *ListMissionsHandler {
	h.now = now
	return h
}

// Handle executes the listing.
func (h *ListMissionsHandler) Handle(ctx context.Context, q ListMissionsQuery) (*ListMissionsResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	missions, err := h.repo.FindByFamilyRelation(ctx, q.FamilyRelationID, q.Phase)
	if err != nil {
		return nil, err
	}

	asOf := q.AsOf
	if asOf.IsZero() {
		asOf = h.now()
	}

	dtos := make([]MissionDTO, 0, len(missions))
	for _, m := range missions {
		dtos = append(dtos, toMissionDTO(m, asOf))
	}

	return &ListMissionsResult{Missions: dtos, Total: len(dtos)}, nil
}

func toMissionDTO(m *mission.Mission, asOf time.Time) MissionDTO {
	return MissionDTO{
		ID:                m.ID,
		FamilyRelationID:  m.FamilyRelationID,
		CategoryID:        m.CategoryID,
		Status:            m.Status,
		Phase:             m.Status.Phase(),
		StartDate:         studycal.FormatDateStr(m.Period.StartDate),
		EndDate:           studycal.FormatDateStr(m.Period.EndDate),
		TotalStudyDays:    m.Period.TotalStudyDays(),
		OpenedDaySequence: m.OpenedDaySequence(asOf),
		RewardTitle:       m.Reward.Title,
		RewardMessage:     m.Reward.Message,
		Version:           m.Version,
	}
}

package command

import (
	"context"
	"log/slog"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// DECIDE APPROVAL COMMAND
// The parent accepts or rejects a pending mission request. Whether the
// caller is actually the recipient parent is checked upstream by the
// family subsystem; here the state machine is the guard.
// ══════════════════════════════════════════════════════════════════════════════

// ApprovalDecision is the parent's answer to a mission request.
type ApprovalDecision string

const (
	// DecisionAccept approves the mission.
	DecisionAccept ApprovalDecision = "accept"

	// DecisionReject declines the mission. Terminal for the mission.
	DecisionReject ApprovalDecision = "reject"
)

// DecideApprovalCommand contains the data for an approval decision.
type DecideApprovalCommand struct {
	// MissionID is the mission awaiting approval.
	MissionID string

	// Decision is accept or reject.
	Decision ApprovalDecision
}

// Validate validates the command.
func (c DecideApprovalCommand) Validate() error {
	if c.MissionID == "" {
		return shared.ErrMissionFieldRequired.WithReason("mission id")
	}
	if c.Decision != DecisionAccept && c.Decision != DecisionReject {
		return shared.ErrInvalidMissionTransition.WithReason(
			"decision must be accept or reject")
	}
	return nil
}

// DecideApprovalHandler handles the DecideApprovalCommand.
type DecideApprovalHandler struct {
	repo      mission.Repository
	cache     mission.Cache
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewDecideApprovalHandler creates a new DecideApprovalHandler.
func NewDecideApprovalHandler(
	repo mission.Repository,
	cache mission.Cache,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *DecideApprovalHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &DecideApprovalHandler{
		repo:      repo,
		cache:     cache,
		publisher: publisher,
		logger:    logger,
	}
}

// Handle executes the approval decision.
func (h *DecideApprovalHandler) Handle(ctx context.Context, cmd DecideApprovalCommand) (*StatusChangeResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	m, err := h.repo.GetByID(ctx, cmd.MissionID)
	if err != nil {
		return nil, err
	}

	from := m.Status
	switch cmd.Decision {
	case DecisionAccept:
		err = m.AcceptApproval()
	case DecisionReject:
		err = m.RejectApproval()
	}
	if err != nil {
		return nil, err
	}

	if err := h.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	if h.publisher != nil {
		if err := h.publisher.Publish(mission.NewStatusChangedEvent(m, from, string(cmd.Decision))); err != nil {
			h.logger.Warn("event publish failed",
				"mission_id", m.ID,
				"error", err,
			)
		}
	}

	if h.cache != nil {
		if err := h.cache.Invalidate(ctx, m.ID); err != nil {
			h.logger.Warn("cache invalidation failed", "mission_id", m.ID, "error", err)
		}
	}

	h.logger.Info("approval decided",
		"mission_id", m.ID,
		"decision", cmd.Decision,
		"status", m.Status,
	)

	return &StatusChangeResult{Mission: m, FromStatus: from, ToStatus: m.Status}, nil
}

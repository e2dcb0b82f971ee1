// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/seedling-app/seedling-backend/internal/domain/judgement"
	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// MISSION STATUS CHANGER
// The single write path for mission lifecycle transitions. Every status
// move loads the aggregate, applies exactly the transition the aggregate
// allows, persists once, and publishes the resulting lifecycle event.
// Judgement verdicts gate the outcome transitions; the aggregate gates
// the state machine itself.
// ══════════════════════════════════════════════════════════════════════════════

// StatusChangeResult contains the outcome of a lifecycle transition.
type StatusChangeResult struct {
	// Mission is the aggregate after the transition was persisted.
	Mission *mission.Mission

	// FromStatus is the status before the transition.
	FromStatus mission.Status

	// ToStatus is the status after the transition.
	ToStatus mission.Status
}

// CompleteMissionResult extends StatusChangeResult with the judgement
// verdict that authorized the completion.
type CompleteMissionResult struct {
	StatusChangeResult

	// Verdict is the positive success judgement.
	Verdict judgement.SuccessJudgement
}

// FailMissionResult extends StatusChangeResult with the failure verdict.
type FailMissionResult struct {
	StatusChangeResult

	// Verdict is the failure judgement that authorized the early fail.
	Verdict judgement.FailureJudgement
}

// BatchFailureOutcome reports how the sweep handled one overdue mission.
type BatchFailureOutcome string

const (
	// BatchOutcomeFailed - the mission was moved to FAILED.
	BatchOutcomeFailed BatchFailureOutcome = "failed"

	// BatchOutcomeSkipped - a concurrent user transition closed the
	// mission first, so the sweep left it alone.
	BatchOutcomeSkipped BatchFailureOutcome = "skipped"
)

// MissionStatusChanger orchestrates mission lifecycle transitions.
type MissionStatusChanger struct {
	repo      mission.Repository
	cache     mission.Cache
	judge     judgement.Judge
	publisher shared.EventPublisher
	logger    *slog.Logger
	retrier   *retry.Retrier
}

// NewMissionStatusChanger creates a new MissionStatusChanger.
// The cache is optional; pass nil to run without one.
func NewMissionStatusChanger(
	repo mission.Repository,
	cache mission.Cache,
	judge judgement.Judge,
	publisher shared.EventPublisher,
	logger *slog.Logger,
) *MissionStatusChanger {
	if logger == nil {
		logger = slog.Default()
	}

	return &MissionStatusChanger{
		repo:      repo,
		cache:     cache,
		judge:     judge,
		publisher: publisher,
		logger:    logger,
		retrier: retry.New(
			retry.WithMaxAttempts(2),
			retry.WithRetryIf(shared.IsConflict),
		),
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// User-facing transitions
// ─────────────────────────────────────────────────────────────────────────────

// ToInProgress starts an approved mission. An optimistic-lock conflict is
// surfaced to the caller: a user action should see the fresh state, not
// silently retry over it.
func (c *MissionStatusChanger) ToInProgress(ctx context.Context, missionID string) (*StatusChangeResult, error) {
	m, err := c.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	from := m.Status
	if err := m.Start(); err != nil {
		return nil, err
	}

	if err := c.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	c.afterTransition(ctx, m, from, "")

	return &StatusChangeResult{Mission: m, FromStatus: from, ToStatus: m.Status}, nil
}

// ToCompleted completes a mission when the success policy allows it.
// A negative verdict returns ErrMissionJudgementRejected carrying the
// policy's reason and leaves the mission untouched. A positive verdict
// chains Succeed and RequestReward: a completed mission is immediately
// reward-eligible, and both moves are persisted as one update.
func (c *MissionStatusChanger) ToCompleted(ctx context.Context, missionID string, snapshot judgement.ProgressSnapshot) (*CompleteMissionResult, error) {
	m, err := c.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	verdict := c.judge.JudgeSuccess(snapshot)
	if !verdict.Success {
		return nil, shared.ErrMissionJudgementRejected.WithReason(verdict.Reason)
	}

	from := m.Status
	if err := m.Succeed(); err != nil {
		return nil, err
	}
	completed := m.Status

	if err := m.RequestReward(); err != nil {
		return nil, err
	}

	if err := c.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	// Two events for the two chained moves, in order.
	c.publishEvent(mission.NewTransitionEvent(m, from, completed, verdict.Reason))
	c.afterTransition(ctx, m, completed, "")

	c.logger.Info("mission completed",
		"mission_id", m.ID,
		"accuracy", verdict.Accuracy,
	)

	return &CompleteMissionResult{
		StatusChangeResult: StatusChangeResult{Mission: m, FromStatus: from, ToStatus: m.Status},
		Verdict:            verdict,
	}, nil
}

// ToFailed fails a mission early, before its deadline, when the failure
// policy says the wrong-answer budget is exhausted. A verdict that does
// not warrant failure returns ErrMissionJudgementRejected.
func (c *MissionStatusChanger) ToFailed(ctx context.Context, missionID string, snapshot judgement.ProgressSnapshot) (*FailMissionResult, error) {
	m, err := c.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	verdict, err := c.judge.JudgeFailure(snapshot)
	if err != nil {
		return nil, err
	}
	if !verdict.Failed {
		return nil, shared.ErrMissionJudgementRejected.WithReason(verdict.Reason)
	}

	from := m.Status
	if err := m.Fail(); err != nil {
		return nil, err
	}

	if err := c.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	c.afterTransition(ctx, m, from, verdict.Reason)

	c.logger.Info("mission failed early",
		"mission_id", m.ID,
		"reason", verdict.Reason,
	)

	return &FailMissionResult{
		StatusChangeResult: StatusChangeResult{Mission: m, FromStatus: from, ToStatus: m.Status},
		Verdict:            verdict,
	}, nil
}

// ToApproveReward marks the promised reward as delivered by the parent,
// closing the mission lifecycle.
func (c *MissionStatusChanger) ToApproveReward(ctx context.Context, missionID string) (*StatusChangeResult, error) {
	m, err := c.repo.GetByID(ctx, missionID)
	if err != nil {
		return nil, err
	}

	from := m.Status
	if err := m.CompleteReward(); err != nil {
		return nil, err
	}

	if err := c.repo.Update(ctx, m); err != nil {
		return nil, err
	}

	c.afterTransition(ctx, m, from, "")

	return &StatusChangeResult{Mission: m, FromStatus: from, ToStatus: m.Status}, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Batch expiry
// ─────────────────────────────────────────────────────────────────────────────

// ProcessBatchFailure fails one overdue mission on behalf of the nightly
// sweep. It is its own unit of work: the write commits independently of
// the overdue-list read and of every other mission in the batch.
//
// A version conflict means someone raced the sweep. The row is re-read
// and retried; if the mission already left PhaseInProgress the user's
// transition wins and the sweep records a skip instead of clobbering it.
func (c *MissionStatusChanger) ProcessBatchFailure(ctx context.Context, m *mission.Mission) (BatchFailureOutcome, error) {
	current := m
	var outcome BatchFailureOutcome

	err := c.retrier.Do(ctx, func(ctx context.Context) error {
		if current == nil {
			fresh, err := c.repo.GetByID(ctx, m.ID)
			if err != nil {
				return err
			}
			current = fresh
		}

		if current.Status.Phase() != mission.PhaseInProgress {
			outcome = BatchOutcomeSkipped
			return nil
		}

		from := current.Status
		if err := current.Fail(); err != nil {
			return err
		}

		if err := c.repo.Update(ctx, current); err != nil {
			// Stale copy; force a re-read on the next attempt.
			current = nil
			return err
		}

		c.afterTransition(ctx, current, from, "mission period expired")
		outcome = BatchOutcomeFailed
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("batch failure for mission %s: %w", m.ID, err)
	}

	return outcome, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Internals
// ─────────────────────────────────────────────────────────────────────────────

// afterTransition publishes the lifecycle event and drops the stale cache
// entry. Both are best-effort: the transition is already committed.
func (c *MissionStatusChanger) afterTransition(ctx context.Context, m *mission.Mission, from mission.Status, reason string) {
	c.publishEvent(mission.NewStatusChangedEvent(m, from, reason))

	if c.cache != nil {
		if err := c.cache.Invalidate(ctx, m.ID); err != nil {
			c.logger.Warn("cache invalidation failed",
				"mission_id", m.ID,
				"error", err,
			)
		}
	}
}

func (c *MissionStatusChanger) publishEvent(event shared.Event) {
	if c.publisher == nil {
		return
	}
	if err := c.publisher.Publish(event); err != nil {
		c.logger.Warn("event publish failed",
			"event_type", event.EventType(),
			"aggregate_id", event.AggregateID(),
			"error", err,
		)
	}
}

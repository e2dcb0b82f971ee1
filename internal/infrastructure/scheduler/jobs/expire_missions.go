// Package jobs contains implementations of scheduled jobs for Seedling.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/seedling-app/seedling-backend/internal/application/command"
	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

// ══════════════════════════════════════════════════════════════════════════════
// EXPIRE MISSIONS JOB
// ══════════════════════════════════════════════════════════════════════════════

// SweepMarker coordinates sweep runs across workers. Implementations
// claim a per-date marker so the same calendar day is never swept twice.
// A nil marker means no coordination (single worker).
type SweepMarker interface {
	// Claim tries to mark the given date as swept. It returns true when
	// this worker won the claim.
	Claim(ctx context.Context, date string, ttl time.Duration) (bool, error)
}

// ExpireMissionsJob fails missions whose period has ended without the
// learner finishing. It runs once per day just after midnight: every
// mission still open whose end date lies strictly in the past is moved
// to FAILED, one mission at a time, so a single bad row never stops the
// rest of the sweep.
type ExpireMissionsJob struct {
	// Dependencies
	repo    mission.Repository
	changer *command.MissionStatusChanger
	marker  SweepMarker
	logger  *slog.Logger

	// Configuration
	config ExpireMissionsConfig

	// now is the clock the sweep anchors "today" on. Injected for tests.
	now func() time.Time

	// State
	lastRunStats atomic.Value // *ExpireMissionsStats
}

// ExpireMissionsConfig contains configuration for the expiry sweep.
type ExpireMissionsConfig struct {
	// Timeout is the maximum duration for one sweep.
	Timeout time.Duration

	// MarkerTTL is how long the per-date sweep marker is held. Long
	// enough that a second worker starting the same night sees it.
	MarkerTTL time.Duration
}

// DefaultExpireMissionsConfig returns sensible defaults.
func DefaultExpireMissionsConfig() ExpireMissionsConfig {
	return ExpireMissionsConfig{
		Timeout:   5 * time.Minute,
		MarkerTTL: 26 * time.Hour,
	}
}

// ExpireMissionsStats contains statistics from one sweep run.
type ExpireMissionsStats struct {
	StartedAt   time.Time
	CompletedAt time.Time
	Duration    time.Duration

	// SweepDate is the calendar day the sweep ran for.
	SweepDate string

	// Checked is how many overdue missions the sweep examined.
	Checked int

	// Failed is how many missions were moved to FAILED.
	Failed int

	// Skipped is how many missions a concurrent user transition closed
	// first, leaving the sweep nothing to do.
	Skipped int

	// Errors holds the per-mission failures. The sweep continues past
	// each one.
	Errors []error
}

// NewExpireMissionsJob creates a new expiry sweep job.
// The marker is optional; pass nil when only one worker runs the sweep.
func NewExpireMissionsJob(
	repo mission.Repository,
	changer *command.MissionStatusChanger,
	marker SweepMarker,
	logger *slog.Logger,
	config ExpireMissionsConfig,
) *ExpireMissionsJob {
	if logger == nil {
		logger = slog.Default()
	}

	return &ExpireMissionsJob{
		repo:    repo,
		changer: changer,
		marker:  marker,
		logger:  logger,
		config:  config,
		now:     studycal.Now,
	}
}

// WithClock overrides the job's clock. For tests.
func (j *ExpireMissionsJob) WithClock(now func() time.Time) *ExpireMissionsJob {
	j.now = now
	return j
}

// Name returns the job name.
func (j *ExpireMissionsJob) Name() string {
	return "expire_missions"
}

// Description returns a human-readable description.
func (j *ExpireMissionsJob) Description() string {
	return "Fails open missions whose period ended without completion"
}

// Run executes one expiry sweep.
func (j *ExpireMissionsJob) Run(ctx context.Context) error {
	startedAt := time.Now()
	today := j.now()
	sweepDate := studycal.FormatDateStr(today)

	stats := &ExpireMissionsStats{
		StartedAt: startedAt,
		SweepDate: sweepDate,
		Errors:    make([]error, 0),
	}

	j.logger.Info("starting expire_missions job", "sweep_date", sweepDate)

	// Apply timeout
	if j.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, j.config.Timeout)
		defer cancel()
	}

	if j.marker != nil {
		claimed, err := j.marker.Claim(ctx, sweepDate, j.config.MarkerTTL)
		if err != nil {
			return fmt.Errorf("failed to claim sweep marker: %w", err)
		}
		if !claimed {
			j.logger.Info("sweep already ran for this date, skipping", "sweep_date", sweepDate)
			j.finalize(stats, startedAt)
			return nil
		}
	}

	overdue, err := j.repo.FindOverdue(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to find overdue missions: %w", err)
	}

	stats.Checked = len(overdue)
	j.logger.Info("found overdue missions", "count", len(overdue))

	for _, m := range overdue {
		select {
		case <-ctx.Done():
			j.finalize(stats, startedAt)
			return ctx.Err()
		default:
		}

		outcome, err := j.changer.ProcessBatchFailure(ctx, m)
		if err != nil {
			stats.Errors = append(stats.Errors, fmt.Errorf("mission %s: %w", m.ID, err))
			j.logger.Error("failed to expire mission",
				"mission_id", m.ID,
				"error", err,
			)
			continue
		}

		switch outcome {
		case command.BatchOutcomeFailed:
			stats.Failed++
		case command.BatchOutcomeSkipped:
			stats.Skipped++
		}
	}

	j.finalize(stats, startedAt)

	j.logger.Info("expire_missions job completed",
		"duration", stats.Duration.String(),
		"checked", stats.Checked,
		"failed", stats.Failed,
		"skipped", stats.Skipped,
		"errors", len(stats.Errors),
	)

	return nil
}

func (j *ExpireMissionsJob) finalize(stats *ExpireMissionsStats, startedAt time.Time) {
	stats.CompletedAt = time.Now()
	stats.Duration = stats.CompletedAt.Sub(startedAt)
	j.lastRunStats.Store(stats)
}

// LastRunStats returns statistics from the last run, or nil if the job
// has not run yet.
func (j *ExpireMissionsJob) LastRunStats() *ExpireMissionsStats {
	if stats, ok := j.lastRunStats.Load().(*ExpireMissionsStats); ok {
		return stats
	}
	return nil
}

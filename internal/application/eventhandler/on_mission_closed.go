// Package eventhandler contains handlers for domain events.
package eventhandler

import (
	"context"
	"log/slog"
	"sync"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// ═══════════════════════════════════════════════════════════════════════════
// ON MISSION CLOSED HANDLER
// Reacts to the terminal lifecycle events of a mission. Runs after the
// transition is already committed, so everything here is best-effort:
// an error is logged and counted but never undoes the transition.
//
// Responsibilities:
// 1. Drop the family relation's cached mission list, so the next read
//    sees the final status.
// 2. Keep running counters of outcomes for operational visibility.
// ═══════════════════════════════════════════════════════════════════════════

// RelationCacheInvalidator drops cached mission listings for a family
// relation after one of its missions changes.
type RelationCacheInvalidator interface {
	InvalidateRelation(ctx context.Context, familyRelationID string) error
}

// MissionClosedConfig contains configuration for the handler.
type MissionClosedConfig struct {
	// InvalidateListings enables dropping cached relation listings.
	InvalidateListings bool
}

// DefaultMissionClosedConfig returns the default configuration.
func DefaultMissionClosedConfig() MissionClosedConfig {
	return MissionClosedConfig{
		InvalidateListings: true,
	}
}

// MissionClosedCounters holds running outcome counters since startup.
type MissionClosedCounters struct {
	Completed        int64
	Failed           int64
	RewardsRequested int64
	RewardsCompleted int64
}

// OnMissionClosedHandler handles terminal mission lifecycle events.
type OnMissionClosedHandler struct {
	invalidator RelationCacheInvalidator
	logger      *slog.Logger
	config      MissionClosedConfig

	mu       sync.Mutex
	counters MissionClosedCounters
}

// NewOnMissionClosedHandler creates a new handler.
// The invalidator is optional; pass nil to run without listing caches.
func NewOnMissionClosedHandler(
	invalidator RelationCacheInvalidator,
	logger *slog.Logger,
	config MissionClosedConfig,
) *OnMissionClosedHandler {
	if logger == nil {
		logger = slog.Default()
	}

	return &OnMissionClosedHandler{
		invalidator: invalidator,
		logger:      logger,
		config:      config,
	}
}

// Register subscribes the handler to the terminal mission events.
func (h *OnMissionClosedHandler) Register(bus shared.EventSubscriber) error {
	for _, eventType := range []shared.EventType{
		shared.EventMissionCompleted,
		shared.EventMissionFailed,
		shared.EventMissionRewardRequested,
		shared.EventMissionRewardCompleted,
	} {
		if err := bus.Subscribe(eventType, h.Handle); err != nil {
			return err
		}
	}
	return nil
}

// Handle processes one terminal mission event.
func (h *OnMissionClosedHandler) Handle(event shared.Event) error {
	ctx := context.Background()

	statusEvent, ok := event.(mission.StatusChangedEvent)
	if !ok {
		h.logger.Warn("received non-StatusChangedEvent",
			"event_type", event.EventType(),
		)
		return nil
	}

	h.logger.Info("processing mission closed event",
		"mission_id", statusEvent.AggregateID(),
		"family_relation_id", statusEvent.FamilyRelationID,
		"event_type", statusEvent.EventType(),
		"from_status", statusEvent.FromStatus,
		"to_status", statusEvent.ToStatus,
	)

	h.count(event.EventType())

	if h.config.InvalidateListings && h.invalidator != nil {
		if err := h.invalidator.InvalidateRelation(ctx, statusEvent.FamilyRelationID); err != nil {
			h.logger.Warn("failed to invalidate relation listing cache",
				"family_relation_id", statusEvent.FamilyRelationID,
				"error", err,
			)
		}
	}

	return nil
}

func (h *OnMissionClosedHandler) count(eventType shared.EventType) {
	h.mu.Lock()
	defer h.mu.Unlock()

	switch eventType {
	case shared.EventMissionCompleted:
		h.counters.Completed++
	case shared.EventMissionFailed:
		h.counters.Failed++
	case shared.EventMissionRewardRequested:
		h.counters.RewardsRequested++
	case shared.EventMissionRewardCompleted:
		h.counters.RewardsCompleted++
	}
}

// Counters returns a snapshot of the outcome counters.
func (h *OnMissionClosedHandler) Counters() MissionClosedCounters {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.counters
}

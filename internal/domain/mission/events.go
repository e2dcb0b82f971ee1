package mission

import (
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// MISSION DOMAIN EVENTS
// ══════════════════════════════════════════════════════════════════════════════

// RequestedEvent is emitted when a child requests a new mission.
type RequestedEvent struct {
	shared.BaseEvent
	FamilyRelationID string    `json:"family_relation_id"`
	CategoryID       string    `json:"category_id,omitempty"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	RewardTitle      string    `json:"reward_title"`
}

// Payload implements shared.Event.
func (e RequestedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"family_relation_id": e.FamilyRelationID,
		"category_id":        e.CategoryID,
		"start_date":         e.StartDate,
		"end_date":           e.EndDate,
		"reward_title":       e.RewardTitle,
	}
}

// NewRequestedEvent creates a RequestedEvent from a freshly created mission.
func NewRequestedEvent(m *Mission) RequestedEvent {
	return RequestedEvent{
		BaseEvent:        shared.NewBaseEvent(shared.EventMissionRequested, m.ID),
		FamilyRelationID: m.FamilyRelationID,
		CategoryID:       m.CategoryID,
		StartDate:        m.Period.StartDate,
		EndDate:          m.Period.EndDate,
		RewardTitle:      m.Reward.Title,
	}
}

// StatusChangedEvent is emitted on every lifecycle transition. The event
// type encodes the edge; the payload carries both sides of the move.
type StatusChangedEvent struct {
	shared.BaseEvent
	FamilyRelationID string `json:"family_relation_id"`
	FromStatus       Status `json:"from_status"`
	ToStatus         Status `json:"to_status"`
	Reason           string `json:"reason,omitempty"`
}

// Payload implements shared.Event.
func (e StatusChangedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"family_relation_id": e.FamilyRelationID,
		"from_status":        e.FromStatus,
		"to_status":          e.ToStatus,
		"reason":             e.Reason,
	}
}

// statusEventTypes maps the reached status to its event type.
var statusEventTypes = map[Status]shared.EventType{
	StatusApprovalAccepted: shared.EventMissionApprovalAccepted,
	StatusApprovalRejected: shared.EventMissionApprovalRejected,
	StatusInProgress:       shared.EventMissionStarted,
	StatusCompleted:        shared.EventMissionCompleted,
	StatusFailed:           shared.EventMissionFailed,
	StatusRewardRequested:  shared.EventMissionRewardRequested,
	StatusRewardCompleted:  shared.EventMissionRewardCompleted,
}

// NewStatusChangedEvent creates the event for a transition that already
// happened on the aggregate.
func NewStatusChangedEvent(m *Mission, from Status, reason string) StatusChangedEvent {
	return NewTransitionEvent(m, from, m.Status, reason)
}

// NewTransitionEvent creates the event for one edge explicitly. Used when
// chained transitions are persisted together and each edge needs its own
// event.
func NewTransitionEvent(m *Mission, from, to Status, reason string) StatusChangedEvent {
	eventType, ok := statusEventTypes[to]
	if !ok {
		eventType = shared.EventMissionRequested
	}

	return StatusChangedEvent{
		BaseEvent:        shared.NewBaseEvent(eventType, m.ID),
		FamilyRelationID: m.FamilyRelationID,
		FromStatus:       from,
		ToStatus:         to,
		Reason:           reason,
	}
}

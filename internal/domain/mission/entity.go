// Package mission contains the mission domain model for Seedling.
// A mission is a parent-assigned, time-boxed learning goal for a child,
// tracked through an explicit lifecycle. This is the core of the business
// logic - there are no external dependencies here.
package mission

import (
	"fmt"
	"time"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATUS STATE MACHINE
// ══════════════════════════════════════════════════════════════════════════════

// Status is the lifecycle state of a mission.
type Status string

const (
	// StatusApprovalRequest - the child requested the mission, waiting for the parent.
	StatusApprovalRequest Status = "APPROVAL_REQUEST"
	// StatusApprovalAccepted - the parent approved, mission not yet started.
	StatusApprovalAccepted Status = "APPROVAL_ACCEPTED"
	// StatusApprovalRejected - the parent rejected the request. Terminal.
	StatusApprovalRejected Status = "APPROVAL_REJECTED"
	// StatusInProgress - the child is studying.
	StatusInProgress Status = "IN_PROGRESS"
	// StatusCompleted - all success conditions were met before the deadline.
	StatusCompleted Status = "COMPLETED"
	// StatusFailed - the mission failed, early or by expiry. Terminal.
	StatusFailed Status = "FAILED"
	// StatusRewardRequested - the child asked for the promised reward.
	StatusRewardRequested Status = "REWARD_REQUESTED"
	// StatusRewardCompleted - the parent delivered the reward. Terminal.
	StatusRewardCompleted Status = "REWARD_COMPLETED"
)

// IsValid checks that the status is one of the known states.
func (s Status) IsValid() bool {
	switch s {
	case StatusApprovalRequest, StatusApprovalAccepted, StatusApprovalRejected,
		StatusInProgress, StatusCompleted, StatusFailed,
		StatusRewardRequested, StatusRewardCompleted:
		return true
	default:
		return false
	}
}

// Phase is a derived grouping of states used for read filters.
// It is never stored; it exists so queries can cheaply separate missions
// that are still open from those that are closed.
type Phase string

const (
	// PhaseInProgress - the mission can still change outcome.
	PhaseInProgress Phase = "IN_PROGRESS_PHASE"
	// PhaseFinished - the mission reached an outcome (or a reward stage).
	PhaseFinished Phase = "FINISHED_PHASE"
)

// Phase returns the derived phase of the status.
func (s Status) Phase() Phase {
	switch s {
	case StatusApprovalRequest, StatusApprovalAccepted, StatusInProgress:
		return PhaseInProgress
	default:
		return PhaseFinished
	}
}

// IsTerminal reports whether no transition leaves this status.
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// InProgressStatuses lists every status in PhaseInProgress, in lifecycle
// order. Repositories use this set for overdue and duplicate queries.
func InProgressStatuses() []Status {
	return []Status{StatusApprovalRequest, StatusApprovalAccepted, StatusInProgress}
}

// Transition is a named edge of the mission state machine.
type Transition string

const (
	TransitionAcceptApproval Transition = "accept-approval"
	TransitionRejectApproval Transition = "reject-approval"
	TransitionStart          Transition = "start"
	TransitionSucceed        Transition = "succeed"
	TransitionFail           Transition = "fail"
	TransitionRequestReward  Transition = "request-reward"
	TransitionCompleteReward Transition = "complete-reward"
)

// transitions is the complete edge set of the state machine. Every legal
// (source, edge) pair is listed here and nowhere else, so the machine can
// be audited in one place. Anything absent is rejected.
var transitions = map[Status]map[Transition]Status{
	StatusApprovalRequest: {
		TransitionAcceptApproval: StatusApprovalAccepted,
		TransitionRejectApproval: StatusApprovalRejected,
	},
	StatusApprovalAccepted: {
		TransitionStart: StatusInProgress,
	},
	StatusInProgress: {
		TransitionSucceed: StatusCompleted,
		TransitionFail:    StatusFailed,
	},
	StatusCompleted: {
		TransitionRequestReward: StatusRewardRequested,
	},
	StatusRewardRequested: {
		TransitionCompleteReward: StatusRewardCompleted,
	},
	// StatusApprovalRejected, StatusFailed, StatusRewardCompleted: terminal.
}

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: MISSION
// ══════════════════════════════════════════════════════════════════════════════

// Mission is the aggregate root of the mission lifecycle. Its status only
// ever moves along the edges declared above; all mutation goes through the
// transition methods. Missions are never physically deleted - terminal rows
// stay as history.
type Mission struct {
	// ID - unique identifier (UUID string), assigned on creation.
	ID string

	// FamilyRelationID - the parent-child pairing that owns the mission.
	// Opaque to this engine; validated by the family subsystem.
	FamilyRelationID string

	// CategoryID - the learning track the mission belongs to. Optional.
	CategoryID string

	// Period - the study window. Immutable once set.
	Period Period

	// Reward - the reward the parent promised. Immutable once set.
	Reward Reward

	// Status - current lifecycle state.
	Status Status

	// Version - optimistic-lock revision, bumped by the repository on
	// every successful update. A stale writer gets a conflict instead of
	// silently clobbering a concurrent transition.
	Version int

	// CreatedAt - when the mission row was created.
	CreatedAt time.Time

	// UpdatedAt - when the mission was last changed.
	UpdatedAt time.Time
}

// NewMissionParams contains the parameters for creating a new mission.
// The request/approval workflow validates family-relation membership and
// duplicate rules before calling NewMission.
type NewMissionParams struct {
	ID               string
	FamilyRelationID string
	CategoryID       string
	Period           Period
	Reward           Reward
}

// NewMission creates a mission in StatusApprovalRequest with validation
// of all required fields.
func NewMission(params NewMissionParams) (*Mission, error) {
	if params.ID == "" {
		return nil, shared.ErrMissionFieldRequired.WithReason("id")
	}
	if params.FamilyRelationID == "" {
		return nil, shared.ErrMissionFieldRequired.WithReason("family relation id")
	}
	if params.Period.IsZero() {
		return nil, shared.ErrMissionPeriodRequired
	}
	if err := params.Period.Validate(); err != nil {
		return nil, err
	}
	if err := params.Reward.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	return &Mission{
		ID:               params.ID,
		FamilyRelationID: params.FamilyRelationID,
		CategoryID:       params.CategoryID,
		Period:           params.Period,
		Reward:           params.Reward,
		Status:           StatusApprovalRequest,
		Version:          1,
		CreatedAt:        now,
		UpdatedAt:        now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSITIONS
// ══════════════════════════════════════════════════════════════════════════════

// transition applies a single edge. On any (status, edge) pair not in the
// table it returns ErrInvalidMissionTransition and leaves the mission
// unchanged - there is no partial mutation and no way to leave a terminal
// state.
func (m *Mission) transition(t Transition) error {
	next, ok := transitions[m.Status][t]
	if !ok {
		return shared.ErrInvalidMissionTransition.WithReason(
			fmt.Sprintf("%s is not allowed from %s", t, m.Status))
	}

	m.Status = next
	m.UpdatedAt = time.Now().UTC()
	return nil
}

// AcceptApproval moves APPROVAL_REQUEST -> APPROVAL_ACCEPTED.
// Called on behalf of the parent by the approval decision flow.
func (m *Mission) AcceptApproval() error {
	return m.transition(TransitionAcceptApproval)
}

// RejectApproval moves APPROVAL_REQUEST -> APPROVAL_REJECTED (terminal).
func (m *Mission) RejectApproval() error {
	return m.transition(TransitionRejectApproval)
}

// Start moves APPROVAL_ACCEPTED -> IN_PROGRESS.
func (m *Mission) Start() error {
	return m.transition(TransitionStart)
}

// Succeed moves IN_PROGRESS -> COMPLETED. The aggregate only enforces the
// state precondition; the judgement precondition (a positive success
// verdict) is enforced by the status changer.
func (m *Mission) Succeed() error {
	return m.transition(TransitionSucceed)
}

// Fail moves IN_PROGRESS -> FAILED (terminal). Used both for early failure
// and for deadline expiry by the batch sweep.
func (m *Mission) Fail() error {
	return m.transition(TransitionFail)
}

// RequestReward moves COMPLETED -> REWARD_REQUESTED. A completed mission
// always immediately becomes reward-eligible, so the status changer chains
// this right after Succeed within one persisted update.
func (m *Mission) RequestReward() error {
	return m.transition(TransitionRequestReward)
}

// CompleteReward moves REWARD_REQUESTED -> REWARD_COMPLETED (terminal).
func (m *Mission) CompleteReward() error {
	return m.transition(TransitionCompleteReward)
}

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

// IsOverdue reports whether the mission is still open while its end date
// lies strictly before the given date. Overdue missions are failed by the
// nightly sweep.
func (m *Mission) IsOverdue(today time.Time) bool {
	return m.Status.Phase() == PhaseInProgress && m.Period.EndsBefore(today)
}

// OpenedDaySequence returns how many study days of this mission have
// opened as of the given date.
func (m *Mission) OpenedDaySequence(today time.Time) int {
	return OpenedDaySequence(m.Period.StartDate, m.Period.EndDate, today)
}

// String returns a compact representation for logging.
func (m *Mission) String() string {
	return fmt.Sprintf("Mission{ID: %s, Relation: %s, Status: %s, Period: %s}",
		m.ID, m.FamilyRelationID, m.Status, m.Period)
}

// Clone creates a copy of the mission.
func (m *Mission) Clone() *Mission {
	if m == nil {
		return nil
	}
	clone := *m
	return &clone
}

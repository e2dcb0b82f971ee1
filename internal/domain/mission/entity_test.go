package mission

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

func validParams() NewMissionParams {
	period, _ := NewPeriod(studycal.Date(2026, 1, 5), studycal.Date(2026, 1, 16))
	reward, _ := NewReward("new bicycle", "promised for finishing the animal words")

	return NewMissionParams{
		ID:               "m-1",
		FamilyRelationID: "fr-1",
		CategoryID:       "cat-animals",
		Period:           period,
		Reward:           reward,
	}
}

func newTestMission(t *testing.T) *Mission {
	t.Helper()
	m, err := NewMission(validParams())
	require.NoError(t, err)
	return m
}

func TestNewMission(t *testing.T) {
	m := newTestMission(t)

	assert.Equal(t, StatusApprovalRequest, m.Status)
	assert.Equal(t, 1, m.Version)
	assert.False(t, m.CreatedAt.IsZero())
	assert.Equal(t, m.CreatedAt, m.UpdatedAt)
}

func TestNewMission_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*NewMissionParams)
	}{
		{"missing id", func(p *NewMissionParams) { p.ID = "" }},
		{"missing family relation", func(p *NewMissionParams) { p.FamilyRelationID = "" }},
		{"missing period", func(p *NewMissionParams) { p.Period = Period{} }},
		{"missing reward title", func(p *NewMissionParams) { p.Reward = Reward{} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := validParams()
			tt.mutate(&params)

			_, err := NewMission(params)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestNewMission_CategoryOptional(t *testing.T) {
	params := validParams()
	params.CategoryID = ""

	m, err := NewMission(params)
	require.NoError(t, err)
	assert.Empty(t, m.CategoryID)
}

// TestStatusTransitions checks every (status, method) pair. Pairs absent
// from the state machine must be rejected without mutating the mission.
func TestStatusTransitions(t *testing.T) {
	type edge struct {
		name  string
		apply func(*Mission) error
	}

	edges := []edge{
		{"AcceptApproval", (*Mission).AcceptApproval},
		{"RejectApproval", (*Mission).RejectApproval},
		{"Start", (*Mission).Start},
		{"Succeed", (*Mission).Succeed},
		{"Fail", (*Mission).Fail},
		{"RequestReward", (*Mission).RequestReward},
		{"CompleteReward", (*Mission).CompleteReward},
	}

	allowed := map[Status]map[string]Status{
		StatusApprovalRequest: {
			"AcceptApproval": StatusApprovalAccepted,
			"RejectApproval": StatusApprovalRejected,
		},
		StatusApprovalAccepted: {
			"Start": StatusInProgress,
		},
		StatusInProgress: {
			"Succeed": StatusCompleted,
			"Fail":    StatusFailed,
		},
		StatusCompleted: {
			"RequestReward": StatusRewardRequested,
		},
		StatusRewardRequested: {
			"CompleteReward": StatusRewardCompleted,
		},
		StatusApprovalRejected: {},
		StatusFailed:           {},
		StatusRewardCompleted:  {},
	}

	for from, moves := range allowed {
		for _, e := range edges {
			t.Run(string(from)+"/"+e.name, func(t *testing.T) {
				m := newTestMission(t)
				m.Status = from

				next, ok := moves[e.name]
				err := e.apply(m)

				if ok {
					require.NoError(t, err)
					assert.Equal(t, next, m.Status)
				} else {
					require.Error(t, err)
					assert.ErrorIs(t, err, shared.ErrStateTransition)
					assert.Equal(t, from, m.Status, "a rejected transition must not mutate")
				}
			})
		}
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.True(t, StatusApprovalRejected.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusRewardCompleted.IsTerminal())

	assert.False(t, StatusApprovalRequest.IsTerminal())
	assert.False(t, StatusInProgress.IsTerminal())
	assert.False(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusRewardRequested.IsTerminal())
}

func TestStatusPhase(t *testing.T) {
	for _, s := range InProgressStatuses() {
		assert.Equal(t, PhaseInProgress, s.Phase(), s)
	}
	for _, s := range []Status{
		StatusApprovalRejected, StatusCompleted, StatusFailed,
		StatusRewardRequested, StatusRewardCompleted,
	} {
		assert.Equal(t, PhaseFinished, s.Phase(), s)
	}
}

func TestMission_IsOverdue(t *testing.T) {
	m := newTestMission(t)
	m.Status = StatusInProgress

	endDate := m.Period.EndDate

	assert.False(t, m.IsOverdue(endDate), "not overdue on the end date itself")
	assert.True(t, m.IsOverdue(endDate.AddDate(0, 0, 1)), "overdue the day after")

	m.Status = StatusCompleted
	assert.False(t, m.IsOverdue(endDate.AddDate(0, 0, 30)), "finished missions are never overdue")
}

func TestMission_Clone(t *testing.T) {
	m := newTestMission(t)
	clone := m.Clone()

	require.NotSame(t, m, clone)
	assert.Equal(t, m, clone)

	clone.Status = StatusFailed
	assert.Equal(t, StatusApprovalRequest, m.Status)

	var nilMission *Mission
	assert.Nil(t, nilMission.Clone())
}

func TestMission_UpdatedAtAdvances(t *testing.T) {
	m := newTestMission(t)
	before := m.UpdatedAt

	time.Sleep(time.Millisecond)
	require.NoError(t, m.AcceptApproval())

	assert.True(t, m.UpdatedAt.After(before))
}

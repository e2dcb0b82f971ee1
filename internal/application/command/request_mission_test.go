package command

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedling-app/seedling-backend/internal/domain/mission"
	"github.com/seedling-app/seedling-backend/internal/domain/shared"
	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

func validRequest() RequestMissionCommand {
	return RequestMissionCommand{
		FamilyRelationID: "fr-1",
		CategoryID:       "cat-1",
		StartDate:        studycal.Date(2026, 1, 5),
		MissionDays:      10,
		RewardTitle:      "zoo trip",
		RewardMessage:    "if you finish all the animal words",
	}
}

func TestRequestMission(t *testing.T) {
	repo := newFakeRepo()
	pub := &fakePublisher{}
	handler := NewRequestMissionHandler(repo, pub, nil)

	result, err := handler.Handle(context.Background(), validRequest())
	require.NoError(t, err)

	m := result.Mission
	assert.NotEmpty(t, m.ID)
	assert.Equal(t, mission.StatusApprovalRequest, m.Status)
	assert.Equal(t, 1, m.Version)
	assert.True(t, result.DueDate.Equal(studycal.Date(2026, 1, 16)),
		"10 study days from Monday Jan 5 end on Friday Jan 16")

	assert.Equal(t, []shared.EventType{shared.EventMissionRequested}, pub.types())
	assert.Equal(t, mission.StatusApprovalRequest, repo.stored(t, m.ID).Status)
}

func TestRequestMission_Validation(t *testing.T) {
	handler := NewRequestMissionHandler(newFakeRepo(), nil, nil)

	tests := []struct {
		name   string
		mutate func(*RequestMissionCommand)
	}{
		{"missing relation", func(c *RequestMissionCommand) { c.FamilyRelationID = "" }},
		{"zero days", func(c *RequestMissionCommand) { c.MissionDays = 0 }},
		{"negative days", func(c *RequestMissionCommand) { c.MissionDays = -5 }},
		{"missing reward title", func(c *RequestMissionCommand) { c.RewardTitle = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validRequest()
			tt.mutate(&cmd)

			_, err := handler.Handle(context.Background(), cmd)
			require.Error(t, err)
			assert.True(t, shared.IsValidation(err))
		})
	}
}

func TestRequestMission_DuplicateActive(t *testing.T) {
	repo := newFakeRepo()
	handler := NewRequestMissionHandler(repo, nil, nil)

	_, err := handler.Handle(context.Background(), validRequest())
	require.NoError(t, err)

	_, err = handler.Handle(context.Background(), validRequest())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestRequestMission_DefaultsStartToToday(t *testing.T) {
	repo := newFakeRepo()
	handler := NewRequestMissionHandler(repo, nil, nil).
		WithClock(func() time.Time { return studycal.Date(2026, 1, 7) })

	cmd := validRequest()
	cmd.StartDate = time.Time{}
	cmd.MissionDays = 5

	result, err := handler.Handle(context.Background(), cmd)
	require.NoError(t, err)

	assert.True(t, result.Mission.Period.StartDate.Equal(studycal.Date(2026, 1, 7)))
	assert.True(t, result.DueDate.Equal(studycal.Date(2026, 1, 13)),
		"Wed + 5 study days crosses one weekend")
}

func TestDecideApproval(t *testing.T) {
	t.Run("accept", func(t *testing.T) {
		repo := newFakeRepo()
		pub := &fakePublisher{}
		m := seedMission(t, repo, mission.StatusApprovalRequest)

		handler := NewDecideApprovalHandler(repo, nil, pub, nil)
		result, err := handler.Handle(context.Background(), DecideApprovalCommand{
			MissionID: m.ID,
			Decision:  DecisionAccept,
		})
		require.NoError(t, err)

		assert.Equal(t, mission.StatusApprovalAccepted, result.ToStatus)
		assert.Equal(t, []shared.EventType{shared.EventMissionApprovalAccepted}, pub.types())
	})

	t.Run("reject", func(t *testing.T) {
		repo := newFakeRepo()
		pub := &fakePublisher{}
		m := seedMission(t, repo, mission.StatusApprovalRequest)

		handler := NewDecideApprovalHandler(repo, nil, pub, nil)
		result, err := handler.Handle(context.Background(), DecideApprovalCommand{
			MissionID: m.ID,
			Decision:  DecisionReject,
		})
		require.NoError(t, err)

		assert.Equal(t, mission.StatusApprovalRejected, result.ToStatus)
		assert.True(t, result.ToStatus.IsTerminal())
		assert.Equal(t, []shared.EventType{shared.EventMissionApprovalRejected}, pub.types())
	})

	t.Run("invalid decision", func(t *testing.T) {
		handler := NewDecideApprovalHandler(newFakeRepo(), nil, nil, nil)
		_, err := handler.Handle(context.Background(), DecideApprovalCommand{
			MissionID: "m-1",
			Decision:  "maybe",
		})
		assert.ErrorIs(t, err, shared.ErrStateTransition)
	})

	t.Run("already decided", func(t *testing.T) {
		repo := newFakeRepo()
		m := seedMission(t, repo, mission.StatusInProgress)

		handler := NewDecideApprovalHandler(repo, nil, nil, nil)
		_, err := handler.Handle(context.Background(), DecideApprovalCommand{
			MissionID: m.ID,
			Decision:  DecisionAccept,
		})
		assert.ErrorIs(t, err, shared.ErrStateTransition)
	})
}

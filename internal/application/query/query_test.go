package query

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

// readRepo is a read-only mission.Repository over a fixed mission set.
type readRepo struct {
	missions []*mission.Mission
	getCalls int
}

func (r *readRepo) Create(context.Context, *mission.Mission) error { return nil }
func (r *readRepo) Update(context.Context, *mission.Mission) error { return nil }

func (r *readRepo) GetByID(_ context.Context, id string) (*mission.Mission, error) {
	r.getCalls++
	for _, m := range r.missions {
		if m.ID == id {
			return m.Clone(), nil
		}
	}
	return nil, shared.ErrMissionNotFound
}

func (r *readRepo) FindOverdue(context.Context, time.Time) ([]*mission.Mission, error) {
	return nil, nil
}

func (r *readRepo) FindByFamilyRelation(_ context.Context, familyRelationID string, phase mission.Phase) ([]*mission.Mission, error) {
	var result []*mission.Mission
	for _, m := range r.missions {
		if m.FamilyRelationID != familyRelationID {
			continue
		}
		if phase != "" && m.Status.Phase() != phase {
			continue
		}
		result = append(result, m.Clone())
	}
	return result, nil
}

func (r *readRepo) ExistsActive(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r *readRepo) CountByStatus(context.Context) (map[mission.Status]int, error) {
	return nil, nil
}

// memCache is a map-backed mission.Cache.
type memCache struct {
	entries map[string]*mission.Mission
	hits    int
}

func newMemCache() *memCache {
	return &memCache{entries: make(map[string]*mission.Mission)}
}

func (c *memCache) Get(_ context.Context, missionID string) (*mission.Mission, error) {
	m, ok := c.entries[missionID]
	if !ok {
		return nil, shared.ErrMissionNotFound
	}
	c.hits++
	return m.Clone(), nil
}

func (c *memCache) Set(_ context.Context, m *mission.Mission, _ time.Duration) error {
	c.entries[m.ID] = m.Clone()
	return nil
}

func (c *memCache) Invalidate(_ context.Context, missionID string) error {
	delete(c.entries, missionID)
	return nil
}

func buildMission(t *testing.T, id string, status mission.Status) *mission.Mission {
	t.Helper()

	period, err := mission.NewPeriodForStudyDays(studycal.Date(2026, 1, 5), 10)
	require.NoError(t, err)
	reward, err := mission.NewReward("picnic", "weekend picnic in the park")
	require.NoError(t, err)

	m, err := mission.NewMission(mission.NewMissionParams{
		ID:               id,
		FamilyRelationID: "fr-1",
		CategoryID:       "cat-1",
		Period:           period,
		Reward:           reward,
	})
	require.NoError(t, err)
	m.Status = status
	return m
}

// ─────────────────────────────────────────────────────────────────────────────
// GetOpenedDay
// ─────────────────────────────────────────────────────────────────────────────

func TestGetOpenedDay(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusInProgress),
	}}
	handler := NewGetOpenedDayHandler(repo, nil, nil)

	// Thursday of the second week: 9 study days have opened.
	dto, err := handler.Handle(context.Background(), GetOpenedDayQuery{
		MissionID: "m-1",
		AsOf:      studycal.Date(2026, 1, 15),
	})
	require.NoError(t, err)

	assert.Equal(t, 9, dto.OpenedDaySequence)
	assert.Equal(t, 10, dto.TotalStudyDays)
}

func TestGetOpenedDay_Gating(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusInProgress),
	}}
	handler := NewGetOpenedDayHandler(repo, nil, nil)
	asOf := studycal.Date(2026, 1, 7) // day 3

	t.Run("opened day is allowed", func(t *testing.T) {
		dto, err := handler.Handle(context.Background(), GetOpenedDayQuery{
			MissionID:    "m-1",
			RequestedDay: 3,
			AsOf:         asOf,
		})
		require.NoError(t, err)
		assert.Equal(t, 3, dto.OpenedDaySequence)
		assert.True(t, dto.RequestedDayOpen)
	})

	t.Run("future day is denied", func(t *testing.T) {
		dto, err := handler.Handle(context.Background(), GetOpenedDayQuery{
			MissionID:    "m-1",
			RequestedDay: 4,
			AsOf:         asOf,
		})
		require.NoError(t, err)
		assert.False(t, dto.RequestedDayOpen)
	})
}

func TestGetOpenedDay_BeforeStart(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusApprovalAccepted),
	}}
	handler := NewGetOpenedDayHandler(repo, nil, nil)

	dto, err := handler.Handle(context.Background(), GetOpenedDayQuery{
		MissionID:    "m-1",
		RequestedDay: 1,
		AsOf:         studycal.Date(2026, 1, 2),
	})
	require.NoError(t, err)

	assert.Equal(t, 0, dto.OpenedDaySequence)
	assert.False(t, dto.RequestedDayOpen, "nothing is open before the start date")
}

func TestGetOpenedDay_CacheReadThrough(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusInProgress),
	}}
	cache := newMemCache()
	handler := NewGetOpenedDayHandler(repo, cache, nil)

	q := GetOpenedDayQuery{MissionID: "m-1", AsOf: studycal.Date(2026, 1, 7)}

	_, err := handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls, "miss goes to the repository")

	_, err = handler.Handle(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls, "second read is served from cache")
	assert.Equal(t, 1, cache.hits)
}

func TestGetOpenedDay_Validation(t *testing.T) {
	handler := NewGetOpenedDayHandler(&readRepo{}, nil, nil)

	_, err := handler.Handle(context.Background(), GetOpenedDayQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(context.Background(), GetOpenedDayQuery{MissionID: "m-1", RequestedDay: -1})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(context.Background(), GetOpenedDayQuery{MissionID: "missing"})
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

// ─────────────────────────────────────────────────────────────────────────────
// ListMissions
// ─────────────────────────────────────────────────────────────────────────────

func TestListMissions(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusInProgress),
		buildMission(t, "m-2", mission.StatusFailed),
		buildMission(t, "m-3", mission.StatusApprovalRequest),
	}}
	handler := NewListMissionsHandler(repo, nil)

	t.Run("all phases", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), ListMissionsQuery{
			FamilyRelationID: "fr-1",
			AsOf:             studycal.Date(2026, 1, 7),
		})
		require.NoError(t, err)
		assert.Equal(t, 3, result.Total)
	})

	t.Run("open only", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), ListMissionsQuery{
			FamilyRelationID: "fr-1",
			Phase:            mission.PhaseInProgress,
			AsOf:             studycal.Date(2026, 1, 7),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Total)
		for _, dto := range result.Missions {
			assert.Equal(t, mission.PhaseInProgress, dto.Phase)
		}
	})

	t.Run("finished only", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), ListMissionsQuery{
			FamilyRelationID: "fr-1",
			Phase:            mission.PhaseFinished,
			AsOf:             studycal.Date(2026, 1, 7),
		})
		require.NoError(t, err)
		require.Equal(t, 1, result.Total)
		assert.Equal(t, mission.StatusFailed, result.Missions[0].Status)
	})

	t.Run("unknown relation is empty", func(t *testing.T) {
		result, err := handler.Handle(context.Background(), ListMissionsQuery{
			FamilyRelationID: "fr-other",
		})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Total)
		assert.Empty(t, result.Missions)
	})
}

func TestListMissions_DTOFields(t *testing.T) {
	repo := &readRepo{missions: []*mission.Mission{
		buildMission(t, "m-1", mission.StatusInProgress),
	}}
	handler := NewListMissionsHandler(repo, nil)

	result, err := handler.Handle(context.Background(), ListMissionsQuery{
		FamilyRelationID: "fr-1",
		AsOf:             studycal.Date(2026, 1, 9),
	})
	require.NoError(t, err)
	require.Len(t, result.Missions, 1)

	dto := result.Missions[0]
	assert.Equal(t, "m-1", dto.ID)
	assert.Equal(t, "2026-01-05", dto.StartDate)
	assert.Equal(t, "2026-01-16", dto.EndDate)
	assert.Equal(t, 10, dto.TotalStudyDays)
	assert.Equal(t, 5, dto.OpenedDaySequence, "first Friday opens day 5")
	assert.Equal(t, "picnic", dto.RewardTitle)
}

func TestListMissions_Validation(t *testing.T) {
	handler := NewListMissionsHandler(&readRepo{}, nil)

	_, err := handler.Handle(context.Background(), ListMissionsQuery{})
	assert.True(t, shared.IsValidation(err))

	_, err = handler.Handle(context.Background(), ListMissionsQuery{
		FamilyRelationID: "fr-1",
		Phase:            "SIDEWAYS_PHASE",
	})
	assert.True(t, shared.IsValidation(err))
}

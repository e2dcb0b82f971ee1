package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedling-app/seedling-backend/pkg/studycal"
)

func TestIntervalSchedule(t *testing.T) {
	s := NewIntervalSchedule(5 * time.Minute)
	now := time.Date(2026, 1, 5, 10, 0, 0, 0, studycal.KST)

	assert.Equal(t, now.Add(5*time.Minute), s.Next(now))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestDailyAtSchedule(t *testing.T) {
	s, err := NewDailyAtSchedule(0, 5)
	require.NoError(t, err)

	t.Run("before fire time, same day", func(t *testing.T) {
		at := time.Date(2026, 1, 5, 0, 0, 30, 0, studycal.KST)
		want := time.Date(2026, 1, 5, 0, 5, 0, 0, studycal.KST)
		assert.Equal(t, want, s.Next(at))
	})

	t.Run("after fire time, next day", func(t *testing.T) {
		at := time.Date(2026, 1, 5, 9, 0, 0, 0, studycal.KST)
		want := time.Date(2026, 1, 6, 0, 5, 0, 0, studycal.KST)
		assert.Equal(t, want, s.Next(at))
	})

	t.Run("exactly at fire time moves to next day", func(t *testing.T) {
		at := time.Date(2026, 1, 5, 0, 5, 0, 0, studycal.KST)
		want := time.Date(2026, 1, 6, 0, 5, 0, 0, studycal.KST)
		assert.Equal(t, want, s.Next(at))
	})

	assert.Equal(t, "@daily 00:05", s.String())
}

func TestNewDailyAtSchedule_Validation(t *testing.T) {
	_, err := NewDailyAtSchedule(24, 0)
	assert.Error(t, err)

	_, err = NewDailyAtSchedule(-1, 0)
	assert.Error(t, err)

	_, err = NewDailyAtSchedule(0, 60)
	assert.Error(t, err)
}

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 0 * * *", false},
		{"*/5 * * * *", false},
		{"0 9 * * 1", false},
		{"0,30 8-18 * * 1-5", false},
		{"* * * *", true},       // four fields
		{"* * * * * *", true},   // six fields
		{"61 * * * *", true},    // minute out of range
		{"* 24 * * *", true},    // hour out of range
		{"x * * * *", true},     // not a number
		{"*/0 * * * *", true},   // zero step
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			_, err := ParseCronExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCronExpression_Next(t *testing.T) {
	t.Run("daily midnight", func(t *testing.T) {
		ce := MustParseCronExpression("0 0 * * *")

		at := time.Date(2026, 1, 5, 23, 30, 0, 0, studycal.KST)
		want := time.Date(2026, 1, 6, 0, 0, 0, 0, studycal.KST)
		assert.Equal(t, want, ce.Next(at))
	})

	t.Run("every five minutes", func(t *testing.T) {
		ce := MustParseCronExpression("*/5 * * * *")

		at := time.Date(2026, 1, 5, 10, 2, 0, 0, studycal.KST)
		want := time.Date(2026, 1, 5, 10, 5, 0, 0, studycal.KST)
		assert.Equal(t, want, ce.Next(at))
	})

	t.Run("monday morning", func(t *testing.T) {
		ce := MustParseCronExpression("0 9 * * 1")

		// Jan 5 2026 is a Monday; asking after 09:00 skips to the next one.
		at := time.Date(2026, 1, 5, 10, 0, 0, 0, studycal.KST)
		want := time.Date(2026, 1, 12, 9, 0, 0, 0, studycal.KST)
		assert.Equal(t, want, ce.Next(at))
	})

	t.Run("preserves location", func(t *testing.T) {
		ce := MustParseCronExpression("0 0 * * *")

		at := time.Date(2026, 1, 5, 12, 0, 0, 0, studycal.KST)
		next := ce.Next(at)
		assert.Equal(t, studycal.KST, next.Location())
	})
}

func TestMustParseCronExpression_Panics(t *testing.T) {
	assert.Panics(t, func() {
		MustParseCronExpression("not a cron")
	})
}

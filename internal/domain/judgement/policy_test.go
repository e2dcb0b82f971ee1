package judgement

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// passingSnapshot meets every success condition: all keywords learned,
// three quizzes per keyword solved, accuracy above the bar.
func passingSnapshot() ProgressSnapshot {
	return ProgressSnapshot{
		TotalKeywords:     5,
		LearnedKeywords:   5,
		RequiredQuizCount: 15,
		SolvedQuizCount:   15,
		CorrectQuizCount:  13,
	}
}

func TestEvaluateSuccess_AllConditionsMet(t *testing.T) {
	verdict := EvaluateSuccess(passingSnapshot())

	assert.True(t, verdict.Success)
	assert.InDelta(t, 13.0/15.0, verdict.Accuracy, 1e-9)
	assert.NotEmpty(t, verdict.Reason)
}

func TestEvaluateSuccess_ExactThreshold(t *testing.T) {
	s := passingSnapshot()
	s.SolvedQuizCount = 15
	s.CorrectQuizCount = 12 // exactly 0.80

	verdict := EvaluateSuccess(s)
	assert.True(t, verdict.Success, "accuracy of exactly 0.80 passes")
}

// TestEvaluateSuccess_Ordering checks that the conditions short-circuit in
// fixed order: the reported reason names the first failing condition even
// when later ones fail too.
func TestEvaluateSuccess_Ordering(t *testing.T) {
	t.Run("keywords first", func(t *testing.T) {
		s := passingSnapshot()
		s.LearnedKeywords = 3
		s.SolvedQuizCount = 2 // quizzes also short
		s.CorrectQuizCount = 0

		verdict := EvaluateSuccess(s)
		require.False(t, verdict.Success)
		assert.Contains(t, verdict.Reason, "keywords")
	})

	t.Run("quizzes second", func(t *testing.T) {
		s := passingSnapshot()
		s.SolvedQuizCount = 10 // short of 3 per keyword
		s.CorrectQuizCount = 2 // accuracy also bad

		verdict := EvaluateSuccess(s)
		require.False(t, verdict.Success)
		assert.Contains(t, verdict.Reason, "quizzes")
	})

	t.Run("accuracy last", func(t *testing.T) {
		s := passingSnapshot()
		s.CorrectQuizCount = 11 // 0.733

		verdict := EvaluateSuccess(s)
		require.False(t, verdict.Success)
		assert.Contains(t, verdict.Reason, "accuracy")
	})
}

func TestEvaluateFailure_Budget(t *testing.T) {
	// 30 questions: required correct = ceil(30 * 0.80) = 24, allowed wrong = 6.
	verdict, err := EvaluateFailure(30, 6)
	require.NoError(t, err)
	assert.False(t, verdict.Failed, "exactly at the budget is still alive")
	assert.Equal(t, 6, verdict.AllowedWrongAnswers)
	assert.Equal(t, 0, verdict.RemainingWrongAnswers)

	verdict, err = EvaluateFailure(30, 7)
	require.NoError(t, err)
	assert.True(t, verdict.Failed, "one past the budget is unrecoverable")
	assert.Equal(t, 0, verdict.RemainingWrongAnswers)
}

func TestEvaluateFailure_CeilRounding(t *testing.T) {
	// 7 questions: required correct = ceil(5.6) = 6, allowed wrong = 1.
	verdict, err := EvaluateFailure(7, 1)
	require.NoError(t, err)
	assert.False(t, verdict.Failed)
	assert.Equal(t, 1, verdict.AllowedWrongAnswers)

	verdict, err = EvaluateFailure(7, 2)
	require.NoError(t, err)
	assert.True(t, verdict.Failed)
}

func TestEvaluateFailure_InvalidInput(t *testing.T) {
	_, err := EvaluateFailure(0, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = EvaluateFailure(-5, 0)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)

	_, err = EvaluateFailure(10, -1)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestSnapshotAccuracy(t *testing.T) {
	assert.Equal(t, 0.0, ProgressSnapshot{}.Accuracy(), "no solved quizzes means zero accuracy")

	s := ProgressSnapshot{SolvedQuizCount: 4, CorrectQuizCount: 3}
	assert.InDelta(t, 0.75, s.Accuracy(), 1e-9)
	assert.Equal(t, 1, s.WrongAnswers())
}

func TestServiceJudge(t *testing.T) {
	svc := NewService()

	success := svc.JudgeSuccess(passingSnapshot())
	assert.True(t, success.Success)

	failure, err := svc.JudgeFailure(ProgressSnapshot{
		RequiredQuizCount: 30,
		SolvedQuizCount:   10,
		CorrectQuizCount:  3,
	})
	require.NoError(t, err)
	assert.True(t, failure.Failed, "7 wrong of 30 exceeds the budget of 6")
}

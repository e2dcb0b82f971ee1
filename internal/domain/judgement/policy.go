package judgement

import (
	"fmt"
	"math"

	"github.com/seedling-app/seedling-backend/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VERDICTS
// ══════════════════════════════════════════════════════════════════════════════

// SuccessJudgement is the verdict of the success policy. Pure output
// value, consumed immediately by the status changer.
type SuccessJudgement struct {
	// Success is true only when every success condition holds.
	Success bool

	// Reason is a human-readable explanation, suitable for showing the
	// parent why the mission can or cannot be completed yet.
	Reason string

	// Accuracy is the measured quiz accuracy at judgement time.
	Accuracy float64
}

// FailureJudgement is the verdict of the early-failure policy.
type FailureJudgement struct {
	// Failed is true when the wrong-answer budget is exhausted and the
	// mission can no longer succeed, regardless of remaining quizzes.
	Failed bool

	// Reason explains the verdict.
	Reason string

	// AllowedWrongAnswers is the total wrong-answer budget.
	AllowedWrongAnswers int

	// RemainingWrongAnswers is how much budget is left (0 once failed).
	RemainingWrongAnswers int
}

// ══════════════════════════════════════════════════════════════════════════════
// SUCCESS POLICY
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateSuccess checks the three success conditions in fixed order,
// short-circuiting on the first one that fails:
//
//  1. every keyword learned
//  2. three quizzes solved per keyword
//  3. accuracy of at least 80%
//
// Only when all three hold is the verdict positive.
func EvaluateSuccess(snapshot ProgressSnapshot) SuccessJudgement {
	accuracy := snapshot.Accuracy()

	if snapshot.LearnedKeywords < snapshot.TotalKeywords {
		return SuccessJudgement{
			Success: false,
			Reason: fmt.Sprintf("not all keywords learned: %d of %d",
				snapshot.LearnedKeywords, snapshot.TotalKeywords),
			Accuracy: accuracy,
		}
	}

	requiredQuizzes := QuizzesPerKeyword * snapshot.TotalKeywords
	if snapshot.SolvedQuizCount < requiredQuizzes {
		return SuccessJudgement{
			Success: false,
			Reason: fmt.Sprintf("not enough quizzes solved: %d of %d",
				snapshot.SolvedQuizCount, requiredQuizzes),
			Accuracy: accuracy,
		}
	}

	if accuracy < RequiredAccuracy {
		return SuccessJudgement{
			Success: false,
			Reason: fmt.Sprintf("accuracy below threshold: %.2f < %.2f",
				accuracy, RequiredAccuracy),
			Accuracy: accuracy,
		}
	}

	return SuccessJudgement{
		Success:  true,
		Reason:   fmt.Sprintf("all success conditions met with accuracy %.2f", accuracy),
		Accuracy: accuracy,
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// EARLY-FAILURE POLICY
// ══════════════════════════════════════════════════════════════════════════════

// EvaluateFailure decides whether a mission is already beyond saving.
// The wrong-answer budget is totalQuestions minus ceil(totalQuestions * 0.80);
// once wrongAnswers exceeds it, remaining quizzes cannot change the outcome
// and the mission is a guaranteed failure even before the deadline.
func EvaluateFailure(totalQuestions, wrongAnswers int) (FailureJudgement, error) {
	if totalQuestions <= 0 {
		return FailureJudgement{}, shared.ErrInvalidJudgementInput.WithReason(
			fmt.Sprintf("total questions must be positive, got %d", totalQuestions))
	}
	if wrongAnswers < 0 {
		return FailureJudgement{}, shared.ErrInvalidJudgementInput.WithReason(
			fmt.Sprintf("wrong answers cannot be negative, got %d", wrongAnswers))
	}

	requiredCorrect := int(math.Ceil(float64(totalQuestions) * RequiredAccuracy))
	allowedWrong := totalQuestions - requiredCorrect

	if wrongAnswers > allowedWrong {
		return FailureJudgement{
			Failed: true,
			Reason: fmt.Sprintf("wrong-answer budget exhausted: %d wrong, %d allowed",
				wrongAnswers, allowedWrong),
			AllowedWrongAnswers:   allowedWrong,
			RemainingWrongAnswers: 0,
		}, nil
	}

	return FailureJudgement{
		Failed: false,
		Reason: fmt.Sprintf("within wrong-answer budget: %d wrong, %d allowed",
			wrongAnswers, allowedWrong),
		AllowedWrongAnswers:   allowedWrong,
		RemainingWrongAnswers: allowedWrong - wrongAnswers,
	}, nil
}

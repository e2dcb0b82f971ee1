// Package judgement decides mission outcomes from learning progress.
// It holds two pure policies - success and early failure - and a thin
// service that composes them. Progress numbers are supplied by the
// learning-record subsystem on every call; they are never stored here
// or on the mission aggregate.
package judgement

// QuizzesPerKeyword is the number of quizzes a learner must solve for
// each keyword in the mission's category.
const QuizzesPerKeyword = 3

// RequiredAccuracy is the minimum quiz accuracy for mission success, and
// the ratio from which the wrong-answer budget is derived.
const RequiredAccuracy = 0.80

// ProgressSnapshot is a point-in-time summary of a learner's keyword and
// quiz completion, computed externally and handed in per judgement call.
type ProgressSnapshot struct {
	// TotalKeywords is the number of keywords the mission covers.
	TotalKeywords int

	// LearnedKeywords is how many of those the child has studied.
	LearnedKeywords int

	// RequiredQuizCount is the total number of quizzes the mission asks for.
	RequiredQuizCount int

	// SolvedQuizCount is how many quizzes the child has answered so far.
	SolvedQuizCount int

	// CorrectQuizCount is how many of the answered quizzes were correct.
	CorrectQuizCount int
}

// Accuracy returns the fraction of solved quizzes answered correctly,
// 0 when nothing has been solved yet.
func (s ProgressSnapshot) Accuracy() float64 {
	if s.SolvedQuizCount == 0 {
		return 0
	}
	return float64(s.CorrectQuizCount) / float64(s.SolvedQuizCount)
}

// WrongAnswers returns how many solved quizzes were answered incorrectly.
func (s ProgressSnapshot) WrongAnswers() int {
	return s.SolvedQuizCount - s.CorrectQuizCount
}

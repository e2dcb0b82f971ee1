package judgement

// Judge is the single interface the status changer consumes. It composes
// the success and early-failure policies behind one seam so orchestration
// code can be tested with a stub verdict.
type Judge interface {
	// JudgeSuccess evaluates the success policy over a snapshot.
	JudgeSuccess(snapshot ProgressSnapshot) SuccessJudgement

	// JudgeFailure evaluates the early-failure policy over a snapshot.
	JudgeFailure(snapshot ProgressSnapshot) (FailureJudgement, error)
}

// Service is the stateless production implementation of Judge.
type Service struct{}

// NewService creates a judgement service.
func NewService() *Service {
	return &Service{}
}

// JudgeSuccess delegates to EvaluateSuccess.
func (s *Service) JudgeSuccess(snapshot ProgressSnapshot) SuccessJudgement {
	return EvaluateSuccess(snapshot)
}

// JudgeFailure derives the failure-policy inputs from the snapshot:
// the question total is the mission's required quiz count, and wrong
// answers are solved minus correct.
func (s *Service) JudgeFailure(snapshot ProgressSnapshot) (FailureJudgement, error) {
	return EvaluateFailure(snapshot.RequiredQuizCount, snapshot.WrongAnswers())
}

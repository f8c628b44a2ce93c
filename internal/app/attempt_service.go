package app

import (
	"context"
	"time"

	"quiz-attempt-service/internal/domain"
	"quiz-attempt-service/internal/session"
)

// QuizRepository loads quiz content (from cache/backing store).
type QuizRepository interface {
	GetQuiz(ctx context.Context, quizID string) (domain.Quiz, error)
}

// UserStore applies the per-submit stat and point increments.
type UserStore interface {
	IncrementStats(ctx context.Context, userID string, attempts, correct, incorrect int) error
	IncrementPoints(ctx context.Context, userID string, points int) error
}

// ResultStore persists grading results.
type ResultStore interface {
	SaveResult(ctx context.Context, result domain.GradingResult) error
}

// AttemptTracker is the slice of session.Tracker the service uses.
type AttemptTracker interface {
	Start(ownerKey, quizID string, timeLimit time.Duration) (session.Attempt, error)
	Stop(ownerKey string) error
	Peek(ownerKey string) (session.Attempt, bool)
	SubmitAndClear(ownerKey string) (session.Attempt, error)
}

// AttemptService orchestrates the exclusive-attempt state machine: start and
// stop transitions, automatic expiry, and grading on submit.
type AttemptService struct {
	quizzes QuizRepository
	tracker AttemptTracker
	users   UserStore
	results ResultStore
	now     func() time.Time
}

func NewAttemptService(quizzes QuizRepository, tracker AttemptTracker, users UserStore, results ResultStore) *AttemptService {
	return NewAttemptServiceWithClock(quizzes, tracker, users, results, time.Now)
}

// NewAttemptServiceWithClock allows deterministic timestamps in tests.
func NewAttemptServiceWithClock(quizzes QuizRepository, tracker AttemptTracker, users UserStore, results ResultStore, now func() time.Time) *AttemptService {
	return &AttemptService{quizzes: quizzes, tracker: tracker, users: users, results: results, now: now}
}

// StartedAttempt is returned from Start: the deadline plus the quiz's
// questions with correct answers stripped.
type StartedAttempt struct {
	QuizID    string                `json:"quizId"`
	Deadline  time.Time             `json:"deadline"`
	TimeLimit int                   `json:"timeLimitMinutes"`
	Questions []domain.QuestionView `json:"questions"`
}

// Start begins a timed attempt at quizID for ownerKey. It fails with
// ErrAttemptActive while an unexpired attempt exists and ErrQuizNotFound for
// unknown quizzes. A failed start installs nothing.
func (s *AttemptService) Start(ctx context.Context, quizID, ownerKey string) (StartedAttempt, error) {
	// Cheap guard so the common restart mistake does not cost a quiz load.
	// The tracker's atomic check below is the one that counts.
	if _, active := s.tracker.Peek(ownerKey); active {
		return StartedAttempt{}, domain.ErrAttemptActive
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return StartedAttempt{}, err
	}

	limit := quiz.TimeLimitMinutes()
	attempt, err := s.tracker.Start(ownerKey, quizID, time.Duration(limit)*time.Minute)
	if err != nil {
		return StartedAttempt{}, err
	}

	return StartedAttempt{
		QuizID:    quizID,
		Deadline:  attempt.Deadline,
		TimeLimit: limit,
		Questions: sanitizeQuestions(quiz),
	}, nil
}

// Stop abandons the live attempt without grading. It fails with
// ErrQuizNotFound for unknown quizzes and ErrNoActiveAttempt when there is
// nothing live to stop.
func (s *AttemptService) Stop(ctx context.Context, quizID, ownerKey string) error {
	if _, err := s.quizzes.GetQuiz(ctx, quizID); err != nil {
		return err
	}
	return s.tracker.Stop(ownerKey)
}

// Questions returns the sanitized question list without touching attempt state.
func (s *AttemptService) Questions(ctx context.Context, quizID string) ([]domain.QuestionView, error) {
	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return nil, err
	}
	return sanitizeQuestions(quiz), nil
}

// Submit grades the answers against the live attempt's quiz and finishes the
// attempt. Grading failures leave the attempt intact so the user can retry
// before the deadline; external stores are written exactly once, only after
// grading succeeds and the attempt has been atomically consumed.
func (s *AttemptService) Submit(ctx context.Context, quizID, ownerKey string, answers []domain.Answer) (domain.GradingResult, error) {
	submittedAt := s.now()

	attempt, active := s.tracker.Peek(ownerKey)
	if !active || attempt.QuizID != quizID {
		return domain.GradingResult{}, domain.ErrNoActiveAttempt
	}

	quiz, err := s.quizzes.GetQuiz(ctx, quizID)
	if err != nil {
		return domain.GradingResult{}, err
	}

	graded, err := gradeQuiz(quiz, answers)
	if err != nil {
		return domain.GradingResult{}, err
	}

	// Consume the attempt atomically; a concurrent stop, submit, or deadline
	// crossing makes this the single place the race is decided. Timing comes
	// from the consumed attempt, not the earlier peek.
	attempt, err = s.tracker.SubmitAndClear(ownerKey)
	if err != nil {
		return domain.GradingResult{}, err
	}

	result := domain.GradingResult{
		QuizID:           quizID,
		UserID:           ownerKey,
		SubmittedAt:      submittedAt,
		ObtainedPoints:   graded.obtainedPoints,
		TimeTakenSeconds: int(submittedAt.Sub(attempt.StartedAt()) / time.Second),
		Content:          graded.content,
	}

	if err := s.users.IncrementStats(ctx, ownerKey, 1, graded.countCorrect, graded.countIncorrect); err != nil {
		return domain.GradingResult{}, err
	}
	if err := s.users.IncrementPoints(ctx, ownerKey, graded.obtainedPoints); err != nil {
		return domain.GradingResult{}, err
	}
	if err := s.results.SaveResult(ctx, result); err != nil {
		return domain.GradingResult{}, err
	}
	return result, nil
}

func sanitizeQuestions(quiz domain.Quiz) []domain.QuestionView {
	views := make([]domain.QuestionView, 0, len(quiz.Questions))
	for _, question := range quiz.Questions {
		views = append(views, question.View())
	}
	return views
}

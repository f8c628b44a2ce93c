package domain

import "time"

// Difficulty tiers recognised by the grader. Anything else scores as easy.
const (
	DifficultyEasy   = "EASY"
	DifficultyMedium = "MEDIUM"
	DifficultyHard   = "HARD"
)

// Quiz is the full quiz content as loaded from the backing store. It is
// read-only to the attempt core; correct answers must be stripped via
// QuestionView before leaving the service.
type Quiz struct {
	ID           string     `json:"id"`
	Name         string     `json:"name"`
	Description  string     `json:"description,omitempty"`
	Difficulty   string     `json:"difficulty"`
	Tags         []string   `json:"tags,omitempty"`
	TimeLimit    int        `json:"timeLimit"` // minutes, defaults to 10 if zero
	Questions    []Question `json:"questions"`
	Rules        string     `json:"rules,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
}

// TimeLimitMinutes returns the quiz time limit with the default applied.
func (q Quiz) TimeLimitMinutes() int {
	if q.TimeLimit <= 0 {
		return 10
	}
	return q.TimeLimit
}

// Answer is one submitted answer. Exactly one payload field is meaningful,
// matching the variant of the question at the same position.
type Answer struct {
	QuestionID      string `json:"questionId"`
	SelectedOption  *int   `json:"selectedOption,omitempty"`
	AnswerText      string `json:"answerText,omitempty"`
	SelectedOptions []int  `json:"selectedOptions,omitempty"`
}

// QuestionResult records per-question correctness inside a grading result.
type QuestionResult struct {
	QuestionID string `json:"questionId"`
	Correct    bool   `json:"correct"`
}

// GradingResult is the immutable outcome of a successful submit.
type GradingResult struct {
	QuizID           string           `json:"quizId"`
	UserID           string           `json:"userId"`
	SubmittedAt      time.Time        `json:"submittedAt"`
	ObtainedPoints   int              `json:"obtainedPoints"`
	TimeTakenSeconds int              `json:"timeTakenSeconds"`
	Content          []QuestionResult `json:"content"`
}

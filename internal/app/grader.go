package app

import (
	"quiz-attempt-service/internal/domain"
)

// Base points awarded per difficulty tier, split across a quiz's questions.
const (
	hardTierPoints   = 45
	mediumTierPoints = 30
	easyTierPoints   = 20
)

// gradedQuiz is the raw grading outcome before attempt timing is attached.
type gradedQuiz struct {
	content        []domain.QuestionResult
	obtainedPoints int
	countCorrect   int
	countIncorrect int
}

// gradeQuiz scores submitted answers against the quiz. It is pure: no I/O and
// no shared state, so it is safe under arbitrary concurrency.
//
// Answers must align positionally with the quiz's questions; any length or
// question-id mismatch fails with ErrAnswerMismatch. Each correct answer adds
// pointsPerQuestion and each incorrect one subtracts it; the total is clamped
// to zero once at the end, never per question (inherited scoring behavior).
func gradeQuiz(quiz domain.Quiz, answers []domain.Answer) (gradedQuiz, error) {
	if len(answers) != len(quiz.Questions) {
		return gradedQuiz{}, domain.ErrAnswerMismatch
	}
	if len(quiz.Questions) == 0 {
		return gradedQuiz{}, nil
	}

	pointsPerQuestion := pointsPerQuestion(quiz)

	graded := gradedQuiz{content: make([]domain.QuestionResult, 0, len(quiz.Questions))}
	for i, question := range quiz.Questions {
		answer := answers[i]
		if question.ID != answer.QuestionID {
			return gradedQuiz{}, domain.ErrAnswerMismatch
		}

		correct := isCorrect(question.Content, answer)
		graded.content = append(graded.content, domain.QuestionResult{
			QuestionID: question.ID,
			Correct:    correct,
		})
		if correct {
			graded.obtainedPoints += pointsPerQuestion
			graded.countCorrect++
		} else {
			graded.obtainedPoints -= pointsPerQuestion
			graded.countIncorrect++
		}
	}

	if graded.obtainedPoints < 0 {
		graded.obtainedPoints = 0
	}
	return graded, nil
}

func pointsPerQuestion(quiz domain.Quiz) int {
	base := easyTierPoints
	switch quiz.Difficulty {
	case domain.DifficultyHard:
		base = hardTierPoints
	case domain.DifficultyMedium:
		base = mediumTierPoints
	}
	return base / len(quiz.Questions)
}

func isCorrect(content domain.QuestionContent, answer domain.Answer) bool {
	switch c := content.(type) {
	case domain.MultipleChoice:
		return answer.SelectedOption != nil && *answer.SelectedOption == c.CorrectOption
	case domain.FillInTheBlank:
		// Exact match, case-sensitive, no normalization.
		return answer.AnswerText == c.CorrectAnswer
	case domain.MultipleSelect:
		return sameOptionSet(answer.SelectedOptions, c.CorrectOptions)
	default:
		return false
	}
}

// sameOptionSet compares selections as sets: order-independent, duplicates
// collapse.
func sameOptionSet(selected, correct []int) bool {
	selectedSet := make(map[int]struct{}, len(selected))
	for _, option := range selected {
		selectedSet[option] = struct{}{}
	}
	correctSet := make(map[int]struct{}, len(correct))
	for _, option := range correct {
		correctSet[option] = struct{}{}
	}
	if len(selectedSet) != len(correctSet) {
		return false
	}
	for option := range correctSet {
		if _, ok := selectedSet[option]; !ok {
			return false
		}
	}
	return true
}

package domain

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestQuestionJSONRoundTrip(t *testing.T) {
	quiz := Quiz{
		ID:         "quiz-1",
		Name:       "Capitals",
		Difficulty: DifficultyMedium,
		TimeLimit:  15,
		Questions: []Question{
			{ID: "q1", Content: MultipleChoice{Prompt: "Capital of France?", Options: []string{"Lyon", "Paris"}, CorrectOption: 1}},
			{ID: "q2", Content: FillInTheBlank{Prompt: "Capital of Italy?", CorrectAnswer: "Rome"}},
			{ID: "q3", Content: MultipleSelect{Prompt: "Cities in Spain?", Options: []string{"Madrid", "Porto", "Seville"}, CorrectOptions: []int{0, 2}}},
		},
	}

	data, err := json.Marshal(quiz)
	if err != nil {
		t.Fatalf("marshal quiz: %v", err)
	}
	if !strings.Contains(string(data), `"type":"FILL_IN_THE_BLANK"`) {
		t.Fatalf("expected type discriminator in payload: %s", data)
	}

	var decoded Quiz
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal quiz: %v", err)
	}

	mc, ok := decoded.Questions[0].Content.(MultipleChoice)
	if !ok || mc.CorrectOption != 1 {
		t.Fatalf("expected multiple choice with correct option 1, got %#v", decoded.Questions[0].Content)
	}
	fib, ok := decoded.Questions[1].Content.(FillInTheBlank)
	if !ok || fib.CorrectAnswer != "Rome" {
		t.Fatalf("expected fill-in-the-blank, got %#v", decoded.Questions[1].Content)
	}
	ms, ok := decoded.Questions[2].Content.(MultipleSelect)
	if !ok || len(ms.CorrectOptions) != 2 {
		t.Fatalf("expected multiple select, got %#v", decoded.Questions[2].Content)
	}
}

func TestQuestionUnknownType(t *testing.T) {
	var q Question
	err := json.Unmarshal([]byte(`{"id":"q1","type":"TRUE_FALSE","content":{}}`), &q)
	if err == nil {
		t.Fatalf("expected error for unknown question type")
	}
}

func TestQuestionViewStripsAnswers(t *testing.T) {
	q := Question{ID: "q1", Content: MultipleChoice{Prompt: "Pick one", Options: []string{"a", "b"}, CorrectOption: 0}}
	view := q.View()
	if view.Type != TypeMultipleChoice || view.Prompt != "Pick one" || len(view.Options) != 2 {
		t.Fatalf("unexpected view %#v", view)
	}

	data, err := json.Marshal(view)
	if err != nil {
		t.Fatalf("marshal view: %v", err)
	}
	if strings.Contains(string(data), "correct") {
		t.Fatalf("view leaked correct answer: %s", data)
	}
}

package domain

import (
	"encoding/json"
	"fmt"
)

// Wire discriminator values for question content.
const (
	TypeMultipleChoice = "MULTIPLE_CHOICE"
	TypeFillInTheBlank = "FILL_IN_THE_BLANK"
	TypeMultipleSelect = "MULTIPLE_SELECT"
)

// Question pairs an ID with one of the three content variants.
type Question struct {
	ID      string
	Content QuestionContent
}

// QuestionContent is a sealed union over the three question variants. Consumers
// switch exhaustively on the concrete type; there are no cross-variant
// accessors.
type QuestionContent interface {
	Type() string
	PromptText() string
	isQuestionContent()
}

// MultipleChoice has a single correct option index.
type MultipleChoice struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectOption int      `json:"correctOption"`
}

// FillInTheBlank is graded by exact, case-sensitive string equality.
type FillInTheBlank struct {
	Prompt        string `json:"question"`
	CorrectAnswer string `json:"correctAnswer"`
}

// MultipleSelect has a set of correct option indices; order and duplicates in
// the submitted selection are irrelevant.
type MultipleSelect struct {
	Prompt         string   `json:"question"`
	Options        []string `json:"options"`
	CorrectOptions []int    `json:"correctOptions"`
}

func (MultipleChoice) Type() string { return TypeMultipleChoice }
func (FillInTheBlank) Type() string { return TypeFillInTheBlank }
func (MultipleSelect) Type() string { return TypeMultipleSelect }

func (c MultipleChoice) PromptText() string { return c.Prompt }
func (c FillInTheBlank) PromptText() string { return c.Prompt }
func (c MultipleSelect) PromptText() string { return c.Prompt }

func (MultipleChoice) isQuestionContent() {}
func (FillInTheBlank) isQuestionContent() {}
func (MultipleSelect) isQuestionContent() {}

type questionEnvelope struct {
	ID      string          `json:"id"`
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

// MarshalJSON writes the question with a "type" discriminator so the variant
// survives round-trips through JSONB columns and caches.
func (q Question) MarshalJSON() ([]byte, error) {
	if q.Content == nil {
		return nil, fmt.Errorf("question %s has no content", q.ID)
	}
	raw, err := json.Marshal(q.Content)
	if err != nil {
		return nil, err
	}
	return json.Marshal(questionEnvelope{ID: q.ID, Type: q.Content.Type(), Content: raw})
}

// UnmarshalJSON reads the discriminated form produced by MarshalJSON.
func (q *Question) UnmarshalJSON(data []byte) error {
	var env questionEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return err
	}
	q.ID = env.ID
	switch env.Type {
	case TypeMultipleChoice:
		var c MultipleChoice
		if err := json.Unmarshal(env.Content, &c); err != nil {
			return err
		}
		q.Content = c
	case TypeFillInTheBlank:
		var c FillInTheBlank
		if err := json.Unmarshal(env.Content, &c); err != nil {
			return err
		}
		q.Content = c
	case TypeMultipleSelect:
		var c MultipleSelect
		if err := json.Unmarshal(env.Content, &c); err != nil {
			return err
		}
		q.Content = c
	default:
		return fmt.Errorf("unknown question type %q", env.Type)
	}
	return nil
}

// QuestionView is a question with the correct answer stripped, safe to hand to
// a quiz taker.
type QuestionView struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Prompt  string   `json:"question"`
	Options []string `json:"options,omitempty"`
}

// View sanitizes the question for delivery to clients.
func (q Question) View() QuestionView {
	view := QuestionView{ID: q.ID}
	switch c := q.Content.(type) {
	case MultipleChoice:
		view.Type = c.Type()
		view.Prompt = c.Prompt
		view.Options = c.Options
	case FillInTheBlank:
		view.Type = c.Type()
		view.Prompt = c.Prompt
	case MultipleSelect:
		view.Type = c.Type()
		view.Prompt = c.Prompt
		view.Options = c.Options
	}
	return view
}

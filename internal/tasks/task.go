// Package tasks implements the question types a session can ask. A task
// renders a question for a card and scores the user's answer to it.
package tasks

import (
	"context"

	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/repository"
)

// Input tells the caller how an answer to a task is collected.
type Input string

const (
	// Selection answers arrive as one of the rendered option values.
	Selection Input = "selection"
	// FreeText answers arrive as a typed message.
	FreeText Input = "free_text"
)

// Store is the slice of the repository store tasks read and write.
type Store interface {
	Cards() repository.CardRepository
	Questions() repository.QuestionRepository
}

// Option is one selectable answer of a choice question.
type Option struct {
	Value string `json:"value"`
	Text  string `json:"text"`
}

// Prompt is everything a front end needs to show a question.
type Prompt struct {
	Type        models.TaskType `json:"type"`
	Phrase      string          `json:"phrase"`
	Hint        string          `json:"hint,omitempty"`
	Instruction string          `json:"instruction"`
	Options     []Option        `json:"options,omitempty"`
	DontKnow    string          `json:"dont_know"`
}

// Answer carries the user's response. Selection tasks read Selection,
// free text tasks read Text.
type Answer struct {
	Selection string
	Text      string
}

// Task is a question type.
type Task interface {
	Type() models.TaskType
	Input() Input
	// Generate renders q for card, persisting whatever the question needs to
	// be asked again identically.
	Generate(ctx context.Context, st Store, q models.Question, card models.Card) (Prompt, error)
	// Check scores an answer. Malformed answers return a validation error.
	Check(ctx context.Context, st Store, q models.Question, card models.Card, a Answer) (bool, error)
	// Reveal returns the correct answer shown after a miss.
	Reveal(card models.Card) string
}

func basePrompt(t models.TaskType, card models.Card, instruction, dontKnow string) Prompt {
	return Prompt{
		Type:        t,
		Phrase:      card.Phrase,
		Hint:        card.HintText(),
		Instruction: instruction,
		DontKnow:    dontKnow,
	}
}

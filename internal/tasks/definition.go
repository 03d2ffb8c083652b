package tasks

import (
	"context"
	"strings"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/models"
	"github.com/vytor/vocabflash/internal/textmatch"
)

// DefinitionTask asks the user to type the card's definition. Typos are
// tolerated; see textmatch.AnyAcceptable.
type DefinitionTask struct{}

func NewDefinitionTask() *DefinitionTask { return &DefinitionTask{} }

func (t *DefinitionTask) Type() models.TaskType { return models.TaskDefinition }

func (t *DefinitionTask) Input() Input { return FreeText }

func (t *DefinitionTask) Generate(ctx context.Context, st Store, q models.Question, card models.Card) (Prompt, error) {
	return basePrompt(models.TaskDefinition, card, "Type the definition:", "I don't remember"), nil
}

func (t *DefinitionTask) Check(ctx context.Context, st Store, q models.Question, card models.Card, a Answer) (bool, error) {
	if strings.TrimSpace(a.Text) == "" {
		return false, errors.NewValidationError("text", "is required")
	}
	return textmatch.AnyAcceptable(card.Definition, a.Text), nil
}

func (t *DefinitionTask) Reveal(card models.Card) string {
	return card.Definition
}

package tasks

import (
	"context"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/vytor/vocabflash/internal/errors"
	"github.com/vytor/vocabflash/internal/logger"
	"github.com/vytor/vocabflash/internal/models"
)

const (
	// MaxDistractors is the number of wrong options drawn for a choice question.
	MaxDistractors = 3
	// FakeSelection is an option value that never matches a card.
	FakeSelection = "fake"
)

// ChoiceTask asks the user to pick the card's definition among definitions
// of other cards from the same module.
type ChoiceTask struct {
	shuffle func(n int, swap func(i, j int))
}

// NewChoiceTask creates a ChoiceTask. A nil shuffle uses rand.Shuffle.
func NewChoiceTask(shuffle func(n int, swap func(i, j int))) *ChoiceTask {
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	return &ChoiceTask{shuffle: shuffle}
}

func (t *ChoiceTask) Type() models.TaskType { return models.TaskChoice }

func (t *ChoiceTask) Input() Input { return Selection }

func (t *ChoiceTask) Generate(ctx context.Context, st Store, q models.Question, card models.Card) (Prompt, error) {
	log := logger.FromContext(ctx).WithPrefix("choice_task")
	prompt := basePrompt(models.TaskChoice, card, "Choose the correct definition:", "I don't know")

	options, err := st.Questions().Options(ctx, q.ID)
	if err != nil {
		return Prompt{}, err
	}
	if len(options) == 0 {
		log.Debug("building options: question_id=%d, card_id=%d", q.ID, card.ID)
		options, err = t.buildOptions(ctx, st, card)
		if err != nil {
			return Prompt{}, err
		}
		if err := st.Questions().InsertOptions(ctx, q.ID, options); err != nil {
			return Prompt{}, err
		}
	} else {
		log.Debug("reusing %d options: question_id=%d", len(options), q.ID)
	}

	for _, o := range options {
		prompt.Options = append(prompt.Options, Option{Value: o.Value, Text: o.Text})
	}
	return prompt, nil
}

func (t *ChoiceTask) buildOptions(ctx context.Context, st Store, card models.Card) ([]models.QuestionOption, error) {
	siblings, err := st.Cards().ListByModule(ctx, card.ModuleID)
	if err != nil {
		return nil, err
	}

	others := make([]models.Card, 0, len(siblings))
	for _, c := range siblings {
		if c.ID != card.ID {
			others = append(others, c)
		}
	}
	t.shuffle(len(others), func(i, j int) { others[i], others[j] = others[j], others[i] })
	if len(others) > MaxDistractors {
		others = others[:MaxDistractors]
	}

	options := []models.QuestionOption{optionFor(card, true)}
	for _, c := range others {
		options = append(options, optionFor(c, false))
	}
	t.shuffle(len(options), func(i, j int) { options[i], options[j] = options[j], options[i] })
	return options, nil
}

func optionFor(c models.Card, correct bool) models.QuestionOption {
	return models.QuestionOption{
		Text:      c.Definition,
		Value:     strconv.FormatInt(c.ID, 10),
		IsCorrect: correct,
	}
}

func (t *ChoiceTask) Check(ctx context.Context, st Store, q models.Question, card models.Card, a Answer) (bool, error) {
	sel := strings.TrimSpace(a.Selection)
	if sel == "" {
		return false, errors.NewValidationError("selection", "is required")
	}
	if sel == FakeSelection {
		return false, nil
	}
	id, err := strconv.ParseInt(sel, 10, 64)
	if err != nil {
		return false, errors.NewValidationError("selection", "must be an option value")
	}
	return id == card.ID, nil
}

func (t *ChoiceTask) Reveal(card models.Card) string {
	return card.Definition
}

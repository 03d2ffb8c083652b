package models

import "time"

type Card struct {
	ID         int64              `json:"id"`
	ModuleID   int64              `json:"module_id"`
	Phrase     string             `json:"phrase"`
	Definition string             `json:"definition"` // comma-separated variants
	Hint       *string            `json:"hint"`
	Fields     []CustomFieldValue `json:"fields,omitempty"`
	CreatedAt  time.Time          `json:"created_at"`
}

type CustomFieldValue struct {
	FieldID int64  `json:"field_id"`
	Name    string `json:"name"`
	Value   string `json:"value"`
}

// HintText returns the hint or an empty string.
func (c Card) HintText() string {
	if c.Hint == nil {
		return ""
	}
	return *c.Hint
}

// CardPage is one page of a module's cards.
type CardPage struct {
	Cards    []Card `json:"cards"`
	Page     int    `json:"page"`
	PageSize int    `json:"page_size"`
	Total    int    `json:"total"`
}

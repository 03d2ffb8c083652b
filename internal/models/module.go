package models

import "time"

type Module struct {
	ID           int64         `json:"id"`
	UserID       int64         `json:"user_id"`
	Name         string        `json:"name"`
	Description  string        `json:"description"`
	CustomFields []CustomField `json:"custom_fields"`
	CreatedAt    time.Time     `json:"created_at"`
}

type CustomField struct {
	ID       int64  `json:"id"`
	ModuleID int64  `json:"module_id"`
	Name     string `json:"name"`
	Position int    `json:"position"`
}

// ModuleSummary is a module listing row with its card count.
type ModuleSummary struct {
	Module
	CardCount int `json:"card_count"`
}

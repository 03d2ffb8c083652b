package models

type Stats struct {
	TotalCards        int           `json:"total_cards"`
	CompletedSessions int           `json:"completed_sessions"`
	DueToday          int           `json:"due_today"`
	Modules           []ModuleStats `json:"modules"`
}

// ModuleStats counts reviewed cards of a module and those considered learned.
type ModuleStats struct {
	ModuleID int64  `json:"module_id"`
	Name     string `json:"name"`
	Reviewed int    `json:"reviewed"`
	Learned  int    `json:"learned"`
	Percent  int    `json:"percent"`
}

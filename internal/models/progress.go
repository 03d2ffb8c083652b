package models

import "time"

// Progress is the memory state of one card for one user.
type Progress struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"user_id"`
	CardID       int64      `json:"card_id"`
	Repetitions  int        `json:"repetitions"`
	EaseFactor   float64    `json:"ease_factor"`
	IntervalDays int        `json:"interval_days"`
	NextReview   time.Time  `json:"next_review"`
	LastReviewed *time.Time `json:"last_reviewed"`
}

// PastDue reports whether the card was due strictly before now.
func (p Progress) PastDue(now time.Time) bool {
	return p.NextReview.Before(now)
}

package srs

import (
	"math"
	"time"
)

const (
	// MinEaseFactor is the floor the ease factor never drops below.
	MinEaseFactor = 1.3
	// DefaultEaseFactor is used for progress rows created lazily on first grading.
	DefaultEaseFactor = 2.1
	// MaxIntervalDays caps the review interval.
	MaxIntervalDays = 30
	// IntervalDamping slows interval growth compared to textbook SM-2.
	IntervalDamping = 0.7

	MinDifficulty = 0
	MaxDifficulty = 5
)

// State is the memory estimate of a card for one user.
type State struct {
	Repetitions int
	Interval    int
	EaseFactor  float64
}

// NextState computes the next review state using an SM-2 variant.
// difficulty: 0 (forgot) .. 5 (trivial).
//
// A grade below 3 resets repetitions and interval but keeps the ease factor.
func NextState(repetitions int, easeFactor float64, difficulty int, currentInterval int) State {
	if difficulty < 3 {
		return State{Repetitions: 0, Interval: 1, EaseFactor: easeFactor}
	}

	q := float64(5 - difficulty)
	ef := easeFactor + (0.1 - q*(0.08+q*0.02))
	if ef < MinEaseFactor {
		ef = MinEaseFactor
	}

	repetitions++
	var interval int
	switch repetitions {
	case 1:
		interval = 1
	case 2:
		interval = 3
	default:
		interval = int(math.Round(float64(currentInterval) * ef * IntervalDamping))
		if interval > MaxIntervalDays {
			interval = MaxIntervalDays
		}
	}

	return State{Repetitions: repetitions, Interval: interval, EaseFactor: ef}
}

// NextReview returns the due time for an interval measured in days.
func NextReview(now time.Time, intervalDays int) time.Time {
	return now.AddDate(0, 0, intervalDays)
}

// ValidDifficulty reports whether d is a grade NextState accepts.
func ValidDifficulty(d int) bool {
	return d >= MinDifficulty && d <= MaxDifficulty
}

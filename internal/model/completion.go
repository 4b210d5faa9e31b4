package model

import (
	"fmt"
	"time"
)

type CompletionStatus string

const (
	CompletionDone    CompletionStatus = "completed"
	CompletionSkipped CompletionStatus = "skipped"
	CompletionMissed  CompletionStatus = "missed"
)

func (s CompletionStatus) IsValid() bool {
	switch s {
	case CompletionDone, CompletionSkipped, CompletionMissed:
		return true
	default:
		return false
	}
}

// Completion is one logged period slot for a habit. LogDate carries the
// calendar date the slot is attributed to, not the wall-clock instant.
// HabitName and Periodicity are denormalized copies for display; queries key
// on HabitID. At most one Completion may exist per (HabitID, LogDate).
type Completion struct {
	ID                int64
	HabitID           int64
	HabitName         string
	LogDate           time.Time
	Periodicity       Period
	StreakAtLogging   int
	Status            CompletionStatus
	Notes             string
	Mood              *int
	CompletionMinutes *int
}

func (c Completion) Validate() error {
	if c.HabitID <= 0 {
		return &ValidationError{Field: "habit_id", Reason: "must reference a stored habit"}
	}
	if c.LogDate.IsZero() {
		return &ValidationError{Field: "log_date", Reason: "must be set"}
	}
	if !c.Periodicity.IsValid() {
		return &ValidationError{Field: "periodicity", Reason: fmt.Sprintf("unknown value %q", c.Periodicity)}
	}
	if !c.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", c.Status)}
	}
	if c.StreakAtLogging < 0 {
		return &ValidationError{Field: "streak", Reason: "must not be negative"}
	}
	if c.Mood != nil && (*c.Mood < 1 || *c.Mood > 5) {
		return &ValidationError{Field: "mood", Reason: "must be between 1 and 5"}
	}
	return nil
}

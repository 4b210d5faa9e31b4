package model

import (
	"fmt"
	"strings"
	"time"
)

type Period string

const (
	PeriodDaily  Period = "daily"
	PeriodWeekly Period = "weekly"
)

func (p Period) IsValid() bool {
	switch p {
	case PeriodDaily, PeriodWeekly:
		return true
	default:
		return false
	}
}

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

func (d Difficulty) IsValid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	default:
		return false
	}
}

type HabitStatus string

const (
	StatusActive   HabitStatus = "active"
	StatusInactive HabitStatus = "inactive"
	StatusArchived HabitStatus = "archived"
)

func (s HabitStatus) IsValid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusArchived:
		return true
	default:
		return false
	}
}

// ValidationError reports a field that failed entity validation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("model: invalid %s: %s", e.Field, e.Reason)
}

// MinTargetDays and MaxTargetDays bound the weekly completion target. Values
// outside the range are clamped, not rejected.
const (
	MinTargetDays = 1
	MaxTargetDays = 7
)

func ClampTargetDays(v int) int {
	if v < MinTargetDays {
		return MinTargetDays
	}
	if v > MaxTargetDays {
		return MaxTargetDays
	}
	return v
}

// Habit is one trackable habit plus its mutable progress state. ID is zero
// until the store assigns one.
type Habit struct {
	ID            int64
	Name          string
	Description   string
	Period        Period
	Difficulty    Difficulty
	Status        HabitStatus
	TargetDays    int
	ReminderTime  string
	CreationDate  time.Time
	LastCompleted *time.Time
	Streak        int
	BestStreak    int
	Points        int
}

// NewHabit builds a validated active habit with zeroed progress state.
func NewHabit(name string, period Period, now time.Time) (Habit, error) {
	h := Habit{
		Name:         strings.TrimSpace(name),
		Period:       period,
		Difficulty:   DifficultyMedium,
		Status:       StatusActive,
		TargetDays:   MaxTargetDays,
		CreationDate: now,
	}
	if err := h.Validate(); err != nil {
		return Habit{}, err
	}
	return h, nil
}

func (h Habit) Validate() error {
	if strings.TrimSpace(h.Name) == "" {
		return &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if !h.Period.IsValid() {
		return &ValidationError{Field: "period", Reason: fmt.Sprintf("must be %q or %q, got %q", PeriodDaily, PeriodWeekly, h.Period)}
	}
	if !h.Difficulty.IsValid() {
		return &ValidationError{Field: "difficulty", Reason: fmt.Sprintf("unknown value %q", h.Difficulty)}
	}
	if !h.Status.IsValid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", h.Status)}
	}
	if h.CreationDate.IsZero() {
		return &ValidationError{Field: "creation_date", Reason: "must be set"}
	}
	if h.Streak < 0 || h.BestStreak < h.Streak {
		return &ValidationError{Field: "streak", Reason: "requires best_streak >= streak >= 0"}
	}
	if h.Points < 0 {
		return &ValidationError{Field: "points", Reason: "must not be negative"}
	}
	return nil
}

// CalculatePoints scores one completion at the habit's current streak: base
// points by difficulty, +2 when the completion took under five minutes, plus
// a streak bonus of one point per full week capped at five.
func (h Habit) CalculatePoints(completionMinutes *int) int {
	base := 5
	switch h.Difficulty {
	case DifficultyMedium:
		base = 10
	case DifficultyHard:
		base = 15
	}
	bonus := 0
	if completionMinutes != nil && *completionMinutes > 0 && *completionMinutes < 5 {
		bonus = 2
	}
	streakBonus := h.Streak / 7
	if streakBonus > 5 {
		streakBonus = 5
	}
	return base + bonus + streakBonus
}

// UpdateStreak is the canonical streak transition: a completion increments
// the streak, raises the best streak when exceeded, and awards points; a
// miss resets the streak to zero and leaves points and best streak alone.
func (h *Habit) UpdateStreak(completed bool) {
	h.applyCompletion(completed, nil)
}

// RecordCompletion applies a completion with a known duration and returns
// the points awarded.
func (h *Habit) RecordCompletion(completionMinutes *int) int {
	return h.applyCompletion(true, completionMinutes)
}

func (h *Habit) applyCompletion(completed bool, completionMinutes *int) int {
	if !completed {
		h.Streak = 0
		return 0
	}
	h.Streak++
	if h.Streak > h.BestStreak {
		h.BestStreak = h.Streak
	}
	earned := h.CalculatePoints(completionMinutes)
	h.Points += earned
	return earned
}

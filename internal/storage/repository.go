package storage

import (
	"context"
	"errors"
	"time"

	"habitd/internal/model"
)

var (
	ErrNotFound = errors.New("storage: not found")
	// ErrConflict surfaces a violated uniqueness constraint, e.g. a second
	// completion row for the same (habit, log date) slot.
	ErrConflict = errors.New("storage: conflict")
)

type HabitFilter struct {
	Status model.HabitStatus
	Period model.Period
	Limit  int
	Offset int
}

type CompletionFilter struct {
	HabitID int64
	Status  model.CompletionStatus
	// From/To bound log_date inclusively when non-nil.
	From   *time.Time
	To     *time.Time
	Limit  int
	Offset int
}

// StatusCount is one row of a per-habit completion-status aggregation,
// ordered by descending count with habit id as the tie-break.
type StatusCount struct {
	HabitID   int64
	HabitName string
	Count     int
}

type Repository interface {
	CreateHabit(ctx context.Context, in model.Habit) (int64, error)
	GetHabit(ctx context.Context, id int64) (model.Habit, error)
	GetHabitByName(ctx context.Context, name string) (model.Habit, error)
	UpdateHabit(ctx context.Context, in model.Habit) error
	DeleteHabit(ctx context.Context, id int64) error
	ListHabits(ctx context.Context, filter HabitFilter) ([]model.Habit, error)

	CreateCompletion(ctx context.Context, in model.Completion) (int64, error)
	ListCompletions(ctx context.Context, filter CompletionFilter) ([]model.Completion, error)
	CountCompletionsByStatus(ctx context.Context, status model.CompletionStatus) ([]StatusCount, error)

	// InTx runs fn against a repository whose operations all join one
	// transaction, committed when fn returns nil and rolled back otherwise.
	// Calls on an already transactional repository join the open transaction.
	InTx(ctx context.Context, fn func(Repository) error) error
}

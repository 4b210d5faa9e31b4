package tracker

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"habitd/internal/logger"
	"habitd/internal/model"
	"habitd/internal/storage"
)

// Outcome classifies what a recorder operation did. Period-idempotent
// outcomes are results, not errors, so callers branch without string
// matching.
type Outcome string

const (
	OutcomeCompleted     Outcome = "completed"
	OutcomeSkipped       Outcome = "skipped"
	OutcomeAlreadyLogged Outcome = "already_logged"
	OutcomeUpdated       Outcome = "updated"
	OutcomeNoChanges     Outcome = "no_changes"
	OutcomeDeactivated   Outcome = "deactivated"
)

type Result struct {
	Outcome      Outcome
	Habit        model.Habit
	PointsEarned int
}

// AddOptions carries the optional habit attributes beyond name and period.
type AddOptions struct {
	Description  string
	Difficulty   model.Difficulty
	TargetDays   int
	ReminderTime string
}

// MarkOptions carries optional metadata attached to a logged slot.
type MarkOptions struct {
	Notes             string
	Mood              *int
	CompletionMinutes *int
}

// EditRequest is a partial habit update; nil fields are left untouched.
// Streak, best streak and points are never editable.
type EditRequest struct {
	Name   *string
	Period *model.Period
}

// Recorder owns all habit and completion mutations. Reads for analytics go
// straight to storage; writes go through here.
type Recorder struct {
	repo storage.Repository
}

func NewRecorder(repo storage.Repository) *Recorder {
	return &Recorder{repo: repo}
}

// AddHabit validates and persists a new active habit with zeroed progress.
func (r *Recorder) AddHabit(ctx context.Context, name string, period model.Period, now time.Time, opts AddOptions) (model.Habit, error) {
	habit, err := model.NewHabit(name, period, now)
	if err != nil {
		return model.Habit{}, err
	}
	habit.Description = opts.Description
	habit.ReminderTime = opts.ReminderTime
	if opts.Difficulty != "" {
		habit.Difficulty = opts.Difficulty
	}
	if opts.TargetDays != 0 {
		habit.TargetDays = model.ClampTargetDays(opts.TargetDays)
	}
	if err := habit.Validate(); err != nil {
		return model.Habit{}, err
	}

	if _, err := r.repo.GetHabitByName(ctx, habit.Name); err == nil {
		return model.Habit{}, &model.ValidationError{Field: "name", Reason: fmt.Sprintf("habit %q already exists", habit.Name)}
	} else if !errors.Is(err, storage.ErrNotFound) {
		return model.Habit{}, err
	}

	id, err := r.repo.CreateHabit(ctx, habit)
	if err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return model.Habit{}, &model.ValidationError{Field: "name", Reason: fmt.Sprintf("habit %q already exists", habit.Name)}
		}
		return model.Habit{}, err
	}
	habit.ID = id
	logger.Info("habit added", "id", id, "name", habit.Name, "period", habit.Period)
	return habit, nil
}

// MarkCompleted logs a completion for the period slot containing now. The
// slot check, the completion insert and the habit update run in one
// transaction. A filled slot yields OutcomeAlreadyLogged with no mutation.
//
// Streak resets are lazy: a gap since the last completed period resets the
// streak to zero before this completion counts, so the new streak is 1.
func (r *Recorder) MarkCompleted(ctx context.Context, habitID int64, now time.Time, opts MarkOptions) (Result, error) {
	var result Result
	err := r.repo.InTx(ctx, func(repo storage.Repository) error {
		habit, err := r.activeHabit(ctx, repo, habitID)
		if err != nil {
			return err
		}

		filled, err := slotFilled(ctx, repo, habit, now)
		if err != nil {
			return err
		}
		if filled {
			result = Result{Outcome: OutcomeAlreadyLogged, Habit: habit}
			return nil
		}

		if streakBroken(habit, now) {
			habit.UpdateStreak(false)
		}
		earned := habit.RecordCompletion(opts.CompletionMinutes)

		today := model.DateOnly(now)
		completion := model.Completion{
			HabitID:           habit.ID,
			HabitName:         habit.Name,
			LogDate:           today,
			Periodicity:       habit.Period,
			StreakAtLogging:   habit.Streak,
			Status:            model.CompletionDone,
			Notes:             opts.Notes,
			Mood:              opts.Mood,
			CompletionMinutes: opts.CompletionMinutes,
		}
		if err := completion.Validate(); err != nil {
			return err
		}
		if _, err := repo.CreateCompletion(ctx, completion); err != nil {
			return err
		}

		habit.LastCompleted = &today
		if err := repo.UpdateHabit(ctx, habit); err != nil {
			return err
		}

		result = Result{Outcome: OutcomeCompleted, Habit: habit, PointsEarned: earned}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	if result.Outcome == OutcomeCompleted {
		logger.Info("completion recorded", "habit", result.Habit.Name, "streak", result.Habit.Streak, "points", result.PointsEarned)
	}
	return result, nil
}

// MarkSkipped records an intentional skip for the period slot containing
// now. The slot fills like a completion, but streak, points and
// last-completed stay untouched.
func (r *Recorder) MarkSkipped(ctx context.Context, habitID int64, now time.Time, opts MarkOptions) (Result, error) {
	var result Result
	err := r.repo.InTx(ctx, func(repo storage.Repository) error {
		habit, err := r.activeHabit(ctx, repo, habitID)
		if err != nil {
			return err
		}

		filled, err := slotFilled(ctx, repo, habit, now)
		if err != nil {
			return err
		}
		if filled {
			result = Result{Outcome: OutcomeAlreadyLogged, Habit: habit}
			return nil
		}

		completion := model.Completion{
			HabitID:         habit.ID,
			HabitName:       habit.Name,
			LogDate:         model.DateOnly(now),
			Periodicity:     habit.Period,
			StreakAtLogging: habit.Streak,
			Status:          model.CompletionSkipped,
			Notes:           opts.Notes,
			Mood:            opts.Mood,
		}
		if err := completion.Validate(); err != nil {
			return err
		}
		if _, err := repo.CreateCompletion(ctx, completion); err != nil {
			return err
		}

		result = Result{Outcome: OutcomeSkipped, Habit: habit}
		return nil
	})
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

// EditHabit applies a partial name/period update. Progress state survives
// every edit.
func (r *Recorder) EditHabit(ctx context.Context, habitID int64, edit EditRequest) (Result, error) {
	habit, err := r.repo.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, ErrHabitNotFound
		}
		return Result{}, err
	}

	if edit.Name == nil && edit.Period == nil {
		return Result{Outcome: OutcomeNoChanges, Habit: habit}, nil
	}

	if edit.Name != nil {
		name := strings.TrimSpace(*edit.Name)
		if name == "" {
			return Result{}, &model.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		if other, err := r.repo.GetHabitByName(ctx, name); err == nil && other.ID != habitID {
			return Result{}, &model.ValidationError{Field: "name", Reason: fmt.Sprintf("habit %q already exists", name)}
		} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return Result{}, err
		}
		habit.Name = name
	}
	if edit.Period != nil {
		if !edit.Period.IsValid() {
			return Result{}, &model.ValidationError{Field: "period", Reason: fmt.Sprintf("must be %q or %q, got %q", model.PeriodDaily, model.PeriodWeekly, *edit.Period)}
		}
		habit.Period = *edit.Period
	}

	if err := r.repo.UpdateHabit(ctx, habit); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return Result{}, &model.ValidationError{Field: "name", Reason: fmt.Sprintf("habit %q already exists", habit.Name)}
		}
		return Result{}, err
	}
	logger.Info("habit edited", "id", habitID, "name", habit.Name, "period", habit.Period)
	return Result{Outcome: OutcomeUpdated, Habit: habit}, nil
}

// Deactivate moves a habit to inactive. Repeat calls keep it inactive
// without error.
func (r *Recorder) Deactivate(ctx context.Context, habitID int64) (Result, error) {
	habit, err := r.repo.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Result{}, ErrHabitNotFound
		}
		return Result{}, err
	}
	if habit.Status == model.StatusInactive {
		return Result{Outcome: OutcomeDeactivated, Habit: habit}, nil
	}
	habit.Status = model.StatusInactive
	if err := r.repo.UpdateHabit(ctx, habit); err != nil {
		return Result{}, err
	}
	logger.Info("habit deactivated", "id", habitID, "name", habit.Name)
	return Result{Outcome: OutcomeDeactivated, Habit: habit}, nil
}

func (r *Recorder) activeHabit(ctx context.Context, repo storage.Repository, habitID int64) (model.Habit, error) {
	habit, err := repo.GetHabit(ctx, habitID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Habit{}, ErrHabitNotFound
		}
		return model.Habit{}, err
	}
	if habit.Status != model.StatusActive {
		return model.Habit{}, ErrHabitInactive
	}
	return habit, nil
}

// slotFilled reports whether any row already occupies the habit's period
// slot containing now.
func slotFilled(ctx context.Context, repo storage.Repository, habit model.Habit, now time.Time) (bool, error) {
	start, end := model.PeriodWindow(now, habit.Period)
	rows, err := repo.ListCompletions(ctx, storage.CompletionFilter{
		HabitID: habit.ID,
		From:    &start,
		To:      &end,
		Limit:   1,
	})
	if err != nil {
		return false, err
	}
	return len(rows) > 0, nil
}

// streakBroken reports whether the habit's last completion is too old for
// the streak to continue into the slot containing now.
func streakBroken(habit model.Habit, now time.Time) bool {
	if habit.LastCompleted == nil {
		return false
	}
	last := model.KeyFor(*habit.LastCompleted, habit.Period)
	if last == model.KeyFor(now, habit.Period) {
		return false
	}
	return last != model.PreviousKeyFor(now, habit.Period)
}

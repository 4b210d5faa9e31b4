package tracker

import (
	"context"
	"time"

	"habitd/internal/model"
	"habitd/internal/storage"
)

// Task is an open period slot: an active habit with nothing logged for
// the period containing now.
type Task struct {
	Habit model.Habit
	Key   model.PeriodKey
}

// PendingTasks lists the active habits still waiting on a completion or
// skip for the current period, id ascending.
func (r *Recorder) PendingTasks(ctx context.Context, now time.Time) ([]Task, error) {
	habits, err := r.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive})
	if err != nil {
		return nil, err
	}
	out := make([]Task, 0, len(habits))
	for _, habit := range habits {
		filled, err := slotFilled(ctx, r.repo, habit, now)
		if err != nil {
			return nil, err
		}
		if filled {
			continue
		}
		out = append(out, Task{Habit: habit, Key: model.KeyFor(now, habit.Period)})
	}
	return out, nil
}

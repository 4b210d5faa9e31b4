package analytics

import (
	"context"
	"errors"
	"time"

	"habitd/internal/model"
	"habitd/internal/storage"
)

// lookbackDays bounds every adherence window; habitual expectations are
// measured over a trailing month.
const lookbackDays = 30

// maxWeeklyInterval caps the struggling threshold for weekly habits at four
// expected completions.
const maxWeeklyInterval = 4

// Analyzer derives adherence figures from stored habits and completions. It
// never mutates anything.
type Analyzer struct {
	repo storage.Repository
}

func NewAnalyzer(repo storage.Repository) *Analyzer {
	return &Analyzer{repo: repo}
}

// Adherence is the tracked-versus-completed unit pair for one habit over a
// window. Missed() cannot go negative: the per-slot uniqueness constraint
// caps completed units at the number of slots the window spans.
type Adherence struct {
	TrackedUnits   int
	CompletedUnits int
}

func (a Adherence) Missed() int {
	return a.TrackedUnits - a.CompletedUnits
}

// MissedCounts measures the habit over the trailing 30 days, clamped so the
// window never starts before the habit existed. Daily habits count calendar
// days; weekly habits count ISO week slots.
func (a *Analyzer) MissedCounts(ctx context.Context, habit model.Habit, now time.Time) (Adherence, error) {
	start := now.AddDate(0, 0, -lookbackDays)
	if start.Before(habit.CreationDate) {
		start = habit.CreationDate
	}

	var tracked int
	if habit.Period == model.PeriodWeekly {
		tracked = model.WeekSpan(start, now)
	} else {
		tracked = model.DaysBetween(start, now) + 1
	}

	completed, err := a.completedUnits(ctx, habit, start, now)
	if err != nil {
		return Adherence{}, err
	}
	return Adherence{TrackedUnits: tracked, CompletedUnits: completed}, nil
}

// completedUnits counts distinct period slots with a completed row between
// start and now.
func (a *Analyzer) completedUnits(ctx context.Context, habit model.Habit, start, now time.Time) (int, error) {
	from := model.DateOnly(start)
	to := model.DateOnly(now)
	rows, err := a.repo.ListCompletions(ctx, storage.CompletionFilter{
		HabitID: habit.ID,
		Status:  model.CompletionDone,
		From:    &from,
		To:      &to,
	})
	if err != nil {
		return 0, err
	}
	seen := make(map[model.PeriodKey]struct{}, len(rows))
	for _, row := range rows {
		seen[model.KeyFor(row.LogDate, habit.Period)] = struct{}{}
	}
	return len(seen), nil
}

// StrugglingHabit flags a habit completing less than expected. Expected is
// the creation-bounded interval that triggered the flag; Missed is the
// trailing-window tracked/completed difference. The two bases differ on
// purpose and the asymmetry is kept.
type StrugglingHabit struct {
	Habit    model.Habit
	Missed   int
	Expected int
}

// StrugglingHabits reports every active habit whose completed units over the
// trailing window fall short of the units its age says it should have.
func (a *Analyzer) StrugglingHabits(ctx context.Context, now time.Time) ([]StrugglingHabit, error) {
	habits, err := a.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive})
	if err != nil {
		return nil, err
	}

	out := make([]StrugglingHabit, 0)
	for _, habit := range habits {
		var interval int
		if habit.Period == model.PeriodWeekly {
			interval = model.WeekSpan(habit.CreationDate, now)
			if interval > maxWeeklyInterval {
				interval = maxWeeklyInterval
			}
		} else {
			interval = model.DaysBetween(habit.CreationDate, now)
			if interval > lookbackDays {
				interval = lookbackDays
			}
		}

		adherence, err := a.MissedCounts(ctx, habit, now)
		if err != nil {
			return nil, err
		}
		if adherence.CompletedUnits < interval {
			out = append(out, StrugglingHabit{Habit: habit, Missed: adherence.Missed(), Expected: interval})
		}
	}
	return out, nil
}

// MissedHabit is one habit with completions missing from its window.
type MissedHabit struct {
	Habit  model.Habit
	Missed int
}

// MissedSinceCreation reports, per active habit, the completions missing
// from the trailing 30-day window. For habits older than 30 days this
// undercounts true since-creation misses; the fixed lookback is a known
// limitation carried forward deliberately.
func (a *Analyzer) MissedSinceCreation(ctx context.Context, now time.Time) ([]MissedHabit, error) {
	habits, err := a.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive})
	if err != nil {
		return nil, err
	}

	out := make([]MissedHabit, 0)
	for _, habit := range habits {
		adherence, err := a.MissedCounts(ctx, habit, now)
		if err != nil {
			return nil, err
		}
		if adherence.CompletedUnits < adherence.TrackedUnits {
			out = append(out, MissedHabit{Habit: habit, Missed: adherence.Missed()})
		}
	}
	return out, nil
}

// LongestStreak returns the active habit with the highest current streak,
// or false when no active habits exist. Equal streaks resolve to the lowest
// habit id.
func (a *Analyzer) LongestStreak(ctx context.Context) (model.Habit, bool, error) {
	habits, err := a.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive})
	if err != nil {
		return model.Habit{}, false, err
	}
	if len(habits) == 0 {
		return model.Habit{}, false, nil
	}
	best := habits[0]
	for _, habit := range habits[1:] {
		if habit.Streak > best.Streak {
			best = habit
		}
	}
	return best, true, nil
}

// LongestStreakForHabit returns the current streak of the named active
// habit, or zero when it does not exist or is not active.
func (a *Analyzer) LongestStreakForHabit(ctx context.Context, name string) (int, error) {
	habit, err := a.repo.GetHabitByName(ctx, name)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	if habit.Status != model.StatusActive {
		return 0, nil
	}
	return habit.Streak, nil
}

// ActiveHabitsByPeriod lists active habits of one periodicity, id order.
func (a *Analyzer) ActiveHabitsByPeriod(ctx context.Context, period model.Period) ([]model.Habit, error) {
	return a.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive, Period: period})
}

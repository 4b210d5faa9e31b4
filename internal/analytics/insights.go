package analytics

import (
	"context"
	"math"
	"sort"
	"time"

	"habitd/internal/model"
	"habitd/internal/storage"
)

// focusSuggestionCount is how many low-streak habits a focus suggestion
// names.
const focusSuggestionCount = 3

// MostMissed is one entry of the missed-completions ranking.
type MostMissed struct {
	HabitID int64
	Name    string
	Count   int
}

// MostMissedHabits ranks habits by their count of missed rows, highest
// first, habit id ascending on ties.
func (a *Analyzer) MostMissedHabits(ctx context.Context, topN int) ([]MostMissed, error) {
	if topN <= 0 {
		return []MostMissed{}, nil
	}
	counts, err := a.repo.CountCompletionsByStatus(ctx, model.CompletionMissed)
	if err != nil {
		return nil, err
	}
	if len(counts) > topN {
		counts = counts[:topN]
	}
	out := make([]MostMissed, 0, len(counts))
	for _, row := range counts {
		out = append(out, MostMissed{HabitID: row.HabitID, Name: row.HabitName, Count: row.Count})
	}
	return out, nil
}

// HabitPair keys a correlation by the two habit ids with the lower one
// first, so each unordered pair appears exactly once.
type HabitPair struct {
	LowID  int64
	HighID int64
}

// CompletionCorrelation estimates how strongly each pair of habits is
// completed on the same days: the Jaccard similarity of their completion
// date sets, rounded to two decimals. Pairs that never share a day are
// absent from the result.
func (a *Analyzer) CompletionCorrelation(ctx context.Context) (map[HabitPair]float64, error) {
	rows, err := a.repo.ListCompletions(ctx, storage.CompletionFilter{Status: model.CompletionDone})
	if err != nil {
		return nil, err
	}

	dateHabits := make(map[time.Time]map[int64]struct{})
	habitDays := make(map[int64]int)
	for _, row := range rows {
		day := model.DateOnly(row.LogDate)
		if dateHabits[day] == nil {
			dateHabits[day] = make(map[int64]struct{})
		}
		if _, dup := dateHabits[day][row.HabitID]; !dup {
			dateHabits[day][row.HabitID] = struct{}{}
			habitDays[row.HabitID]++
		}
	}

	pairDays := make(map[HabitPair]int)
	for _, habits := range dateHabits {
		for h1 := range habits {
			for h2 := range habits {
				if h1 < h2 {
					pairDays[HabitPair{LowID: h1, HighID: h2}]++
				}
			}
		}
	}

	out := make(map[HabitPair]float64, len(pairDays))
	for pair, shared := range pairDays {
		union := habitDays[pair.LowID] + habitDays[pair.HighID] - shared
		if union == 0 {
			out[pair] = 0.0
			continue
		}
		out[pair] = math.Round(float64(shared)/float64(union)*100) / 100
	}
	return out, nil
}

// SuggestFocusHabits names the three active habits with the lowest current
// streaks, habit id breaking ties.
func (a *Analyzer) SuggestFocusHabits(ctx context.Context) ([]string, error) {
	habits, err := a.repo.ListHabits(ctx, storage.HabitFilter{Status: model.StatusActive})
	if err != nil {
		return nil, err
	}
	// ListHabits orders by id; a stable sort keeps that as the tie-break.
	sort.SliceStable(habits, func(i, j int) bool {
		return habits[i].Streak < habits[j].Streak
	})
	if len(habits) > focusSuggestionCount {
		habits = habits[:focusSuggestionCount]
	}
	out := make([]string, 0, len(habits))
	for _, habit := range habits {
		out = append(out, habit.Name)
	}
	return out, nil
}

// Summary is the assembled analytics dashboard.
type Summary struct {
	Longest      *model.Habit
	DailyHabits  []model.Habit
	WeeklyHabits []model.Habit
	Struggling   []StrugglingHabit
	Missed       []MissedHabit
	Focus        []string
}

func (a *Analyzer) Summarize(ctx context.Context, now time.Time) (Summary, error) {
	var out Summary

	longest, ok, err := a.LongestStreak(ctx)
	if err != nil {
		return Summary{}, err
	}
	if ok {
		out.Longest = &longest
	}

	if out.DailyHabits, err = a.ActiveHabitsByPeriod(ctx, model.PeriodDaily); err != nil {
		return Summary{}, err
	}
	if out.WeeklyHabits, err = a.ActiveHabitsByPeriod(ctx, model.PeriodWeekly); err != nil {
		return Summary{}, err
	}
	if out.Struggling, err = a.StrugglingHabits(ctx, now); err != nil {
		return Summary{}, err
	}
	if out.Missed, err = a.MissedSinceCreation(ctx, now); err != nil {
		return Summary{}, err
	}
	if out.Focus, err = a.SuggestFocusHabits(ctx); err != nil {
		return Summary{}, err
	}
	return out, nil
}

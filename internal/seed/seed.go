// Package seed populates a fresh database with four weeks of realistic
// sample data so the analytics screens have something to show.
package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"habitd/internal/model"
	"habitd/internal/storage"
	"habitd/internal/tracker"
)

// seedDays is how far back the generated history reaches.
const seedDays = 28

// randSeed pins the generator so repeated seeding of fresh databases
// produces identical histories.
const randSeed = 42

type habitSpec struct {
	name       string
	period     model.Period
	difficulty model.Difficulty
	rate       float64
}

var specs = []habitSpec{
	{"Drink Water", model.PeriodDaily, model.DifficultyEasy, 0.90},
	{"Morning Exercise", model.PeriodDaily, model.DifficultyHard, 0.75},
	{"Read 20 Pages", model.PeriodDaily, model.DifficultyMedium, 0.85},
	{"Weekly Review", model.PeriodWeekly, model.DifficultyMedium, 0.90},
	{"Call Family", model.PeriodWeekly, model.DifficultyEasy, 0.90},
}

// Stats summarizes what Seed wrote.
type Stats struct {
	Habits      int
	Completions int
	Missed      int
}

// Seed creates the sample habits and replays their four-week history
// through the recorder, so streaks and points come out of the real
// completion path. A few explicitly missed rows feed the most-missed
// ranking.
func Seed(ctx context.Context, repo storage.Repository, now time.Time) (Stats, error) {
	rec := tracker.NewRecorder(repo)
	rng := rand.New(rand.NewSource(randSeed))
	start := model.DateOnly(now).AddDate(0, 0, -(seedDays - 1))

	var stats Stats
	for _, spec := range specs {
		habit, err := rec.AddHabit(ctx, spec.name, spec.period, start, tracker.AddOptions{
			Difficulty: spec.difficulty,
		})
		if err != nil {
			return Stats{}, fmt.Errorf("seed habit %s: %w", spec.name, err)
		}
		stats.Habits++

		done, missed, err := replayHistory(ctx, rec, repo, rng, habit, spec.rate, start, now)
		if err != nil {
			return Stats{}, err
		}
		stats.Completions += done
		stats.Missed += missed
	}
	return stats, nil
}

func replayHistory(ctx context.Context, rec *tracker.Recorder, repo storage.Repository, rng *rand.Rand, habit model.Habit, rate float64, start, now time.Time) (done, missed int, err error) {
	step := 1
	if habit.Period == model.PeriodWeekly {
		step = 7
	}
	for offset := 0; offset < seedDays; offset += step {
		day := start.AddDate(0, 0, offset)
		if habit.Period == model.PeriodWeekly {
			// Land on a varying weekday inside the slot.
			day = day.AddDate(0, 0, rng.Intn(step))
		}
		if day.After(now) {
			break
		}
		at := day.Add(time.Duration(8+rng.Intn(12)) * time.Hour)

		if rng.Float64() < rate {
			opts := tracker.MarkOptions{}
			if rng.Float64() < 0.6 {
				mood := 3 + rng.Intn(3)
				opts.Mood = &mood
			}
			if rng.Float64() < 0.4 {
				minutes := 3 + rng.Intn(30)
				opts.CompletionMinutes = &minutes
			}
			res, err := rec.MarkCompleted(ctx, habit.ID, at, opts)
			if err != nil {
				return 0, 0, fmt.Errorf("seed completion for %s on %s: %w", habit.Name, day.Format(model.DateLayout), err)
			}
			if res.Outcome == tracker.OutcomeCompleted {
				done++
			}
			continue
		}

		// Half the gaps become recorded misses, the rest stay silent.
		if rng.Float64() < 0.5 {
			_, err := repo.CreateCompletion(ctx, model.Completion{
				HabitID:     habit.ID,
				HabitName:   habit.Name,
				LogDate:     model.DateOnly(day),
				Periodicity: habit.Period,
				Status:      model.CompletionMissed,
			})
			if err != nil {
				return 0, 0, fmt.Errorf("seed miss for %s on %s: %w", habit.Name, day.Format(model.DateLayout), err)
			}
			missed++
		}
	}
	return done, missed, nil
}

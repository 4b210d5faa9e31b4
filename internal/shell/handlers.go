package shell

import (
	"context"
	"fmt"
	"time"

	"habitd/internal/analytics"
	"habitd/internal/model"
	"habitd/internal/report"
	"habitd/internal/storage"
	"habitd/internal/tracker"
)

const helpText = `# habitd

| command | what it does |
|---|---|
| add <name> [period:daily|weekly] [diff:easy|medium|hard] [target:N] [remind:HH:MM] | create a habit |
| done <id> [mood:1-5] [min:N] [notes...] | log the current period as completed |
| skip <id> [notes...] | fill the current period without progress |
| edit <id> [period:daily|weekly] [new name...] | rename or re-period a habit |
| deactivate <id> | stop tracking a habit |
| list [active|inactive|all] | show habits |
| tasks | show open period slots |
| analytics | show the analytics summary |
| quit | leave the shell |
`

// NewHandlers wires the shell commands to the recorder and analyzer. The
// clock is injected so tests can pin time.
func NewHandlers(rec *tracker.Recorder, an *analytics.Analyzer, repo storage.Repository, clock func() time.Time) Handlers {
	ctx := context.Background()
	return Handlers{
		Add: func(args AddArgs) (Result, error) {
			habit, err := rec.AddHabit(ctx, args.Name, args.Period, clock(), tracker.AddOptions{
				Difficulty:   args.Difficulty,
				TargetDays:   args.TargetDays,
				ReminderTime: args.ReminderTime,
			})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: fmt.Sprintf("added %q with id %d", habit.Name, habit.ID)}, nil
		},
		Done: func(args DoneArgs) (Result, error) {
			res, err := rec.MarkCompleted(ctx, args.ID, clock(), tracker.MarkOptions{
				Notes:             args.Notes,
				Mood:              args.Mood,
				CompletionMinutes: args.Minutes,
			})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderResult(res)}, nil
		},
		Skip: func(args SkipArgs) (Result, error) {
			res, err := rec.MarkSkipped(ctx, args.ID, clock(), tracker.MarkOptions{Notes: args.Notes})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderResult(res)}, nil
		},
		Edit: func(args EditArgs) (Result, error) {
			res, err := rec.EditHabit(ctx, args.ID, tracker.EditRequest{Name: args.Name, Period: args.Period})
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderResult(res)}, nil
		},
		Deactivate: func(args DeactivateArgs) (Result, error) {
			res, err := rec.Deactivate(ctx, args.ID)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderResult(res)}, nil
		},
		List: func(args ListArgs) (Result, error) {
			filter := storage.HabitFilter{}
			switch args.Scope {
			case "active":
				filter.Status = model.StatusActive
			case "inactive":
				filter.Status = model.StatusInactive
			}
			habits, err := repo.ListHabits(ctx, filter)
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderHabits(habits)}, nil
		},
		Tasks: func() (Result, error) {
			tasks, err := rec.PendingTasks(ctx, clock())
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderTasks(tasks)}, nil
		},
		Analytics: func() (Result, error) {
			summary, err := an.Summarize(ctx, clock())
			if err != nil {
				return Result{}, err
			}
			return Result{Message: report.RenderSummary(summary)}, nil
		},
		Help: func() (Result, error) {
			return Result{Message: report.RenderMarkdown(helpText)}, nil
		},
	}
}

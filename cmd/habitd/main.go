package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/alecthomas/kong"

	"habitd/internal/analytics"
	"habitd/internal/logger"
	"habitd/internal/model"
	"habitd/internal/report"
	"habitd/internal/seed"
	"habitd/internal/shell"
	"habitd/internal/storage"
	"habitd/internal/tracker"
)

type appContext struct {
	ctx      context.Context
	repo     *storage.SQLiteRepository
	recorder *tracker.Recorder
	analyzer *analytics.Analyzer
	now      func() time.Time
}

type initCmd struct{}

func (c *initCmd) Run(app *appContext, cli *cliRoot) error {
	fmt.Printf("initialized habit storage at %s\n", cli.DB)
	return nil
}

type addCmd struct {
	Name       string `arg:"" help:"Habit name."`
	Period     string `short:"p" help:"Period (daily|weekly)." default:"daily"`
	Difficulty string `short:"d" help:"Difficulty (easy|medium|hard)." default:"medium"`
	Target     int    `short:"t" help:"Target days per week (1-7)." default:"7"`
	Remind     string `short:"r" help:"Reminder time (HH:MM), informational only."`
	Describe   string `help:"Free-form description."`
}

func (c *addCmd) Run(app *appContext) error {
	habit, err := app.recorder.AddHabit(app.ctx, c.Name, model.Period(c.Period), app.now(), tracker.AddOptions{
		Description:  c.Describe,
		Difficulty:   model.Difficulty(c.Difficulty),
		TargetDays:   c.Target,
		ReminderTime: c.Remind,
	})
	if err != nil {
		return err
	}
	fmt.Printf("added %q with id %d\n", habit.Name, habit.ID)
	return nil
}

type doneCmd struct {
	ID      int64  `arg:"" help:"Habit id."`
	Mood    *int   `short:"m" help:"Mood rating (1-5)."`
	Minutes *int   `help:"Minutes spent; under 5 earns a bonus."`
	Notes   string `short:"n" help:"Notes for this completion."`
}

func (c *doneCmd) Run(app *appContext) error {
	res, err := app.recorder.MarkCompleted(app.ctx, c.ID, app.now(), tracker.MarkOptions{
		Notes:             c.Notes,
		Mood:              c.Mood,
		CompletionMinutes: c.Minutes,
	})
	if err != nil {
		return err
	}
	fmt.Println(report.RenderResult(res))
	return nil
}

type skipCmd struct {
	ID    int64  `arg:"" help:"Habit id."`
	Notes string `short:"n" help:"Notes for this skip."`
}

func (c *skipCmd) Run(app *appContext) error {
	res, err := app.recorder.MarkSkipped(app.ctx, c.ID, app.now(), tracker.MarkOptions{Notes: c.Notes})
	if err != nil {
		return err
	}
	fmt.Println(report.RenderResult(res))
	return nil
}

type editCmd struct {
	ID     int64   `arg:"" help:"Habit id."`
	Name   *string `help:"New habit name."`
	Period *string `help:"New period (daily|weekly)."`
}

func (c *editCmd) Run(app *appContext) error {
	edit := tracker.EditRequest{Name: c.Name}
	if c.Period != nil {
		period := model.Period(*c.Period)
		edit.Period = &period
	}
	res, err := app.recorder.EditHabit(app.ctx, c.ID, edit)
	if err != nil {
		return err
	}
	fmt.Println(report.RenderResult(res))
	return nil
}

type deactivateCmd struct {
	ID int64 `arg:"" help:"Habit id."`
}

func (c *deactivateCmd) Run(app *appContext) error {
	res, err := app.recorder.Deactivate(app.ctx, c.ID)
	if err != nil {
		return err
	}
	fmt.Println(report.RenderResult(res))
	return nil
}

type listCmd struct {
	All      bool `help:"Include inactive and archived habits."`
	Inactive bool `help:"Show only inactive habits."`
}

func (c *listCmd) Run(app *appContext) error {
	filter := storage.HabitFilter{Status: model.StatusActive}
	if c.All {
		filter.Status = ""
	}
	if c.Inactive {
		filter.Status = model.StatusInactive
	}
	habits, err := app.repo.ListHabits(app.ctx, filter)
	if err != nil {
		return err
	}
	fmt.Println(report.RenderHabits(habits))
	return nil
}

type tasksCmd struct{}

func (c *tasksCmd) Run(app *appContext) error {
	tasks, err := app.recorder.PendingTasks(app.ctx, app.now())
	if err != nil {
		return err
	}
	fmt.Println(report.RenderTasks(tasks))
	return nil
}

type analyticsCmd struct {
	Missed      bool `help:"Show the most-missed ranking instead of the summary."`
	Correlation bool `help:"Show which habits are completed together."`
	Top         int  `help:"Rows in the most-missed ranking." default:"3"`
}

func (c *analyticsCmd) Run(app *appContext) error {
	switch {
	case c.Missed:
		rows, err := app.analyzer.MostMissedHabits(app.ctx, c.Top)
		if err != nil {
			return err
		}
		fmt.Println(report.RenderMostMissed(rows))
	case c.Correlation:
		pairs, err := app.analyzer.CompletionCorrelation(app.ctx)
		if err != nil {
			return err
		}
		habits, err := app.repo.ListHabits(app.ctx, storage.HabitFilter{})
		if err != nil {
			return err
		}
		fmt.Println(report.RenderCorrelations(pairs, habits))
	default:
		summary, err := app.analyzer.Summarize(app.ctx, app.now())
		if err != nil {
			return err
		}
		fmt.Println(report.RenderSummary(summary))
	}
	return nil
}

type seedCmd struct{}

func (c *seedCmd) Run(app *appContext) error {
	stats, err := seed.Seed(app.ctx, app.repo, app.now())
	if err != nil {
		return err
	}
	fmt.Printf("seeded %d habits, %d completions, %d recorded misses\n", stats.Habits, stats.Completions, stats.Missed)
	return nil
}

type shellCmd struct{}

func (c *shellCmd) Run(app *appContext) error {
	handlers := shell.NewHandlers(app.recorder, app.analyzer, app.repo, app.now)
	return shell.Run(handlers)
}

type cliRoot struct {
	DB    string `help:"SQLite database path." type:"path" default:"~/.config/habitd/habitd.db"`
	Debug bool   `help:"Log to stderr as well as the log file."`

	Init       initCmd       `cmd:"" help:"Create the database and schema."`
	Add        addCmd        `cmd:"" help:"Create a habit."`
	Done       doneCmd       `cmd:"" help:"Log the current period as completed."`
	Skip       skipCmd       `cmd:"" help:"Fill the current period without streak progress."`
	Edit       editCmd       `cmd:"" help:"Rename or re-period a habit."`
	Deactivate deactivateCmd `cmd:"" help:"Stop tracking a habit."`
	List       listCmd       `cmd:"" help:"Show habits."`
	Tasks      tasksCmd      `cmd:"" help:"Show open period slots."`
	Analytics  analyticsCmd  `cmd:"" help:"Show streak and adherence analytics."`
	Seed       seedCmd       `cmd:"" help:"Populate sample data."`
	Shell      shellCmd      `cmd:"" help:"Start the interactive shell." default:"1"`
}

func main() {
	var cli cliRoot
	parsed := kong.Parse(&cli,
		kong.Name("habitd"),
		kong.Description("Habit tracker with streaks and adherence analytics"),
		kong.UsageOnError(),
	)

	dataDir := filepath.Dir(cli.DB)
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(logger.Config{Debug: cli.Debug, DataDir: dataDir}); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	db, err := sql.Open("sqlite3", cli.DB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := storage.MigrateUp(db); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := &appContext{
		ctx:      context.Background(),
		repo:     repo,
		recorder: tracker.NewRecorder(repo),
		analyzer: analytics.NewAnalyzer(repo),
		now:      time.Now,
	}
	if err := parsed.Run(app, &cli); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

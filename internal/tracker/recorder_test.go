package tracker

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"habitd/internal/model"
	"habitd/internal/storage"
)

func setupRecorder(t *testing.T) (*Recorder, *storage.SQLiteRepository) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "tracker-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	repo, err := storage.NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return NewRecorder(repo), repo
}

func at(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func mustAdd(t *testing.T, rec *Recorder, name string, period model.Period, now time.Time) model.Habit {
	t.Helper()
	habit, err := rec.AddHabit(context.Background(), name, period, now, AddOptions{})
	if err != nil {
		t.Fatalf("add habit %s: %v", name, err)
	}
	return habit
}

func TestAddHabitValidation(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	now := at(2025, 6, 1)

	var verr *model.ValidationError
	if _, err := rec.AddHabit(ctx, "   ", model.PeriodDaily, now, AddOptions{}); !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("expected name validation error, got: %v", err)
	}
	if _, err := rec.AddHabit(ctx, "Read", model.Period("yearly"), now, AddOptions{}); !errors.As(err, &verr) || verr.Field != "period" {
		t.Fatalf("expected period validation error, got: %v", err)
	}

	habit, err := rec.AddHabit(ctx, "Read", model.PeriodDaily, now, AddOptions{Difficulty: model.DifficultyHard, TargetDays: 12})
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}
	if habit.ID == 0 {
		t.Fatal("stored habit must carry an assigned id")
	}
	if habit.TargetDays != 7 {
		t.Fatalf("target days must clamp to 7, got %d", habit.TargetDays)
	}

	if _, err := rec.AddHabit(ctx, "Read", model.PeriodWeekly, now, AddOptions{}); !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("duplicate name must fail validation, got: %v", err)
	}
}

func TestMarkCompletedIdempotentPerDay(t *testing.T) {
	rec, repo := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Exercise", model.PeriodDaily, at(2025, 6, 1))

	first, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 16), MarkOptions{})
	if err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	if first.Outcome != OutcomeCompleted || first.Habit.Streak != 1 {
		t.Fatalf("unexpected first result: %#v", first)
	}
	if first.PointsEarned != 10 {
		t.Fatalf("expected 10 points for a medium habit, got %d", first.PointsEarned)
	}

	second, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 16).Add(6*time.Hour), MarkOptions{})
	if err != nil {
		t.Fatalf("second mark: %v", err)
	}
	if second.Outcome != OutcomeAlreadyLogged {
		t.Fatalf("expected already-logged outcome, got %s", second.Outcome)
	}

	stored, err := repo.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if stored.Streak != 1 || stored.Points != 10 {
		t.Fatalf("repeat mark must not mutate: %#v", stored)
	}
	rows, err := repo.ListCompletions(ctx, storage.CompletionFilter{HabitID: habit.ID})
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected exactly one row, got %d", len(rows))
	}
}

func TestMarkCompletedConsecutiveDays(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Water", model.PeriodDaily, at(2025, 6, 1))

	for day := 16; day <= 18; day++ {
		res, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, day), MarkOptions{})
		if err != nil {
			t.Fatalf("mark day %d: %v", day, err)
		}
		if res.Habit.Streak != day-15 {
			t.Fatalf("expected streak %d on day %d, got %d", day-15, day, res.Habit.Streak)
		}
	}
}

func TestMarkCompletedGapResetsStreak(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Journal", model.PeriodDaily, at(2025, 6, 1))

	// D and D+1 completed, D+2 skipped over, D+3 completed.
	if _, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 10), MarkOptions{}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	res, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 11), MarkOptions{})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.Habit.Streak != 2 {
		t.Fatalf("expected streak 2, got %d", res.Habit.Streak)
	}

	res, err = rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 13), MarkOptions{})
	if err != nil {
		t.Fatalf("mark after gap: %v", err)
	}
	if res.Habit.Streak != 1 {
		t.Fatalf("gap must reset streak to 1, got %d", res.Habit.Streak)
	}
	if res.Habit.BestStreak != 2 {
		t.Fatalf("best streak must survive the reset, got %d", res.Habit.BestStreak)
	}
}

func TestMarkCompletedWeeklyWindow(t *testing.T) {
	rec, repo := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Call Family", model.PeriodWeekly, at(2025, 6, 1))

	// Monday 2025-06-16.
	res, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 16), MarkOptions{})
	if err != nil {
		t.Fatalf("mark Monday: %v", err)
	}
	if res.Outcome != OutcomeCompleted || res.Habit.Streak != 1 {
		t.Fatalf("unexpected Monday result: %#v", res)
	}

	// Sunday of the same ISO week is the same slot.
	res, err = rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 22), MarkOptions{})
	if err != nil {
		t.Fatalf("mark Sunday: %v", err)
	}
	if res.Outcome != OutcomeAlreadyLogged {
		t.Fatalf("Sunday of the same week must be a no-op, got %s", res.Outcome)
	}

	// The following Monday starts a new slot and extends the streak.
	res, err = rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 23), MarkOptions{})
	if err != nil {
		t.Fatalf("mark next Monday: %v", err)
	}
	if res.Outcome != OutcomeCompleted || res.Habit.Streak != 2 {
		t.Fatalf("next week must increment streak: %#v", res)
	}

	rows, err := repo.ListCompletions(ctx, storage.CompletionFilter{HabitID: habit.ID})
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected two rows, got %d", len(rows))
	}
}

func TestMarkCompletedWeeklyGapReset(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Clean Room", model.PeriodWeekly, at(2025, 5, 1))

	if _, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 2), MarkOptions{}); err != nil {
		t.Fatalf("mark: %v", err)
	}
	// Skip the week of June 9; complete in the week of June 16.
	res, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 18), MarkOptions{})
	if err != nil {
		t.Fatalf("mark after gap week: %v", err)
	}
	if res.Habit.Streak != 1 {
		t.Fatalf("missed week must reset weekly streak to 1, got %d", res.Habit.Streak)
	}
}

func TestMarkCompletedTimeBonus(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Stretch", model.PeriodDaily, at(2025, 6, 1))

	quick := 3
	res, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 16), MarkOptions{CompletionMinutes: &quick})
	if err != nil {
		t.Fatalf("mark: %v", err)
	}
	if res.PointsEarned != 12 {
		t.Fatalf("medium base 10 + time bonus 2 expected, got %d", res.PointsEarned)
	}
}

func TestMarkCompletedErrors(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	now := at(2025, 6, 16)

	if _, err := rec.MarkCompleted(ctx, 9999, now, MarkOptions{}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got: %v", err)
	}

	habit := mustAdd(t, rec, "Nap", model.PeriodDaily, now)
	if _, err := rec.Deactivate(ctx, habit.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := rec.MarkCompleted(ctx, habit.ID, now, MarkOptions{}); !errors.Is(err, ErrHabitInactive) {
		t.Fatalf("expected ErrHabitInactive, got: %v", err)
	}
}

func TestMarkSkippedFillsSlotWithoutProgress(t *testing.T) {
	rec, repo := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Run", model.PeriodDaily, at(2025, 6, 1))

	res, err := rec.MarkSkipped(ctx, habit.ID, at(2025, 6, 16), MarkOptions{Notes: "rest day"})
	if err != nil {
		t.Fatalf("mark skipped: %v", err)
	}
	if res.Outcome != OutcomeSkipped {
		t.Fatalf("unexpected outcome: %s", res.Outcome)
	}

	stored, err := repo.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if stored.Streak != 0 || stored.Points != 0 || stored.LastCompleted != nil {
		t.Fatalf("skip must not touch progress: %#v", stored)
	}

	// The skipped slot blocks a later completion the same day.
	again, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, 16), MarkOptions{})
	if err != nil {
		t.Fatalf("mark after skip: %v", err)
	}
	if again.Outcome != OutcomeAlreadyLogged {
		t.Fatalf("skipped slot must read as filled, got %s", again.Outcome)
	}
}

func TestEditHabitPreservesProgress(t *testing.T) {
	rec, repo := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Exercise", model.PeriodDaily, at(2025, 6, 1))

	for day := 10; day <= 12; day++ {
		if _, err := rec.MarkCompleted(ctx, habit.ID, at(2025, 6, day), MarkOptions{}); err != nil {
			t.Fatalf("mark day %d: %v", day, err)
		}
	}
	before, err := repo.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}

	name := "Morning Exercise"
	period := model.PeriodWeekly
	res, err := rec.EditHabit(ctx, habit.ID, EditRequest{Name: &name, Period: &period})
	if err != nil {
		t.Fatalf("edit: %v", err)
	}
	if res.Outcome != OutcomeUpdated || res.Habit.Name != name || res.Habit.Period != period {
		t.Fatalf("unexpected edit result: %#v", res)
	}
	if res.Habit.Streak != before.Streak || res.Habit.BestStreak != before.BestStreak || res.Habit.Points != before.Points {
		t.Fatalf("edit must never touch progress: before %#v after %#v", before, res.Habit)
	}
}

func TestEditHabitValidation(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	now := at(2025, 6, 1)
	a := mustAdd(t, rec, "A", model.PeriodDaily, now)
	mustAdd(t, rec, "B", model.PeriodDaily, now)

	res, err := rec.EditHabit(ctx, a.ID, EditRequest{})
	if err != nil {
		t.Fatalf("empty edit: %v", err)
	}
	if res.Outcome != OutcomeNoChanges {
		t.Fatalf("expected no-changes outcome, got %s", res.Outcome)
	}

	var verr *model.ValidationError
	blank := "   "
	if _, err := rec.EditHabit(ctx, a.ID, EditRequest{Name: &blank}); !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("expected name validation error, got: %v", err)
	}
	taken := "B"
	if _, err := rec.EditHabit(ctx, a.ID, EditRequest{Name: &taken}); !errors.As(err, &verr) || verr.Field != "name" {
		t.Fatalf("expected duplicate-name validation error, got: %v", err)
	}
	bad := model.Period("monthly")
	if _, err := rec.EditHabit(ctx, a.ID, EditRequest{Period: &bad}); !errors.As(err, &verr) || verr.Field != "period" {
		t.Fatalf("expected period validation error, got: %v", err)
	}
	name := "A"
	if _, err := rec.EditHabit(ctx, 9999, EditRequest{Name: &name}); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got: %v", err)
	}
}

func TestDeactivateIdempotent(t *testing.T) {
	rec, repo := setupRecorder(t)
	ctx := context.Background()
	habit := mustAdd(t, rec, "Piano", model.PeriodDaily, at(2025, 6, 1))

	if _, err := rec.Deactivate(ctx, habit.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	res, err := rec.Deactivate(ctx, habit.ID)
	if err != nil {
		t.Fatalf("repeat deactivate: %v", err)
	}
	if res.Habit.Status != model.StatusInactive {
		t.Fatalf("unexpected status: %s", res.Habit.Status)
	}
	stored, err := repo.GetHabit(ctx, habit.ID)
	if err != nil {
		t.Fatalf("get habit: %v", err)
	}
	if stored.Status != model.StatusInactive {
		t.Fatalf("status must stay inactive: %s", stored.Status)
	}

	if _, err := rec.Deactivate(ctx, 9999); !errors.Is(err, ErrHabitNotFound) {
		t.Fatalf("expected ErrHabitNotFound, got: %v", err)
	}
}

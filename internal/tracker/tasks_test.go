package tracker

import (
	"context"
	"testing"
	"time"

	"habitd/internal/model"
)

func TestPendingTasks(t *testing.T) {
	rec, _ := setupRecorder(t)
	ctx := context.Background()
	now := time.Date(2025, 6, 16, 10, 30, 0, 0, time.UTC)

	water, err := rec.AddHabit(ctx, "Water", model.PeriodDaily, now.AddDate(0, 0, -3), AddOptions{})
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}
	review, err := rec.AddHabit(ctx, "Weekly Review", model.PeriodWeekly, now.AddDate(0, 0, -10), AddOptions{})
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}
	paused, err := rec.AddHabit(ctx, "Paused", model.PeriodDaily, now.AddDate(0, 0, -3), AddOptions{})
	if err != nil {
		t.Fatalf("add habit: %v", err)
	}
	if _, err := rec.Deactivate(ctx, paused.ID); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	tasks, err := rec.PendingTasks(ctx, now)
	if err != nil {
		t.Fatalf("pending tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(tasks))
	}
	if tasks[0].Habit.ID != water.ID || tasks[1].Habit.ID != review.ID {
		t.Fatalf("unexpected order: %#v", tasks)
	}
	if tasks[0].Key != model.PeriodKey("2025-06-16") {
		t.Fatalf("daily key = %s", tasks[0].Key)
	}
	if tasks[1].Key != model.PeriodKey("2025-W25") {
		t.Fatalf("weekly key = %s", tasks[1].Key)
	}

	if _, err := rec.MarkCompleted(ctx, water.ID, now, MarkOptions{}); err != nil {
		t.Fatalf("mark completed: %v", err)
	}
	// A skip fills the weekly slot just like a completion.
	if _, err := rec.MarkSkipped(ctx, review.ID, now, MarkOptions{}); err != nil {
		t.Fatalf("mark skipped: %v", err)
	}

	tasks, err = rec.PendingTasks(ctx, now)
	if err != nil {
		t.Fatalf("pending tasks: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected no pending tasks, got %#v", tasks)
	}
}

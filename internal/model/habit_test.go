package model

import (
	"errors"
	"testing"
	"time"
)

func TestNewHabitDefaults(t *testing.T) {
	now := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	h, err := NewHabit("  Exercise ", PeriodDaily, now)
	if err != nil {
		t.Fatalf("expected valid habit, got: %v", err)
	}
	if h.Name != "Exercise" {
		t.Fatalf("name should be trimmed, got %q", h.Name)
	}
	if h.Status != StatusActive || h.Difficulty != DifficultyMedium {
		t.Fatalf("unexpected defaults: %#v", h)
	}
	if h.Streak != 0 || h.BestStreak != 0 || h.Points != 0 {
		t.Fatalf("progress state must start zeroed: %#v", h)
	}
}

func TestHabitValidateRejectsBadFields(t *testing.T) {
	now := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)

	if _, err := NewHabit("   ", PeriodDaily, now); err == nil {
		t.Fatal("blank name must fail validation")
	}

	_, err := NewHabit("Read", Period("monthly"), now)
	var verr *ValidationError
	if !errors.As(err, &verr) || verr.Field != "period" {
		t.Fatalf("expected period validation error, got: %v", err)
	}

	h, err := NewHabit("Read", PeriodWeekly, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	h.Difficulty = Difficulty("brutal")
	if err := h.Validate(); !errors.As(err, &verr) || verr.Field != "difficulty" {
		t.Fatalf("expected difficulty validation error, got: %v", err)
	}
	h.Difficulty = DifficultyEasy
	h.Status = HabitStatus("paused")
	if err := h.Validate(); !errors.As(err, &verr) || verr.Field != "status" {
		t.Fatalf("expected status validation error, got: %v", err)
	}
}

func TestClampTargetDays(t *testing.T) {
	if got := ClampTargetDays(0); got != 1 {
		t.Fatalf("expected clamp to 1, got %d", got)
	}
	if got := ClampTargetDays(12); got != 7 {
		t.Fatalf("expected clamp to 7, got %d", got)
	}
	if got := ClampTargetDays(4); got != 4 {
		t.Fatalf("in-range value must pass through, got %d", got)
	}
}

func TestCalculatePoints(t *testing.T) {
	h := Habit{Difficulty: DifficultyEasy}
	if got := h.CalculatePoints(nil); got != 5 {
		t.Fatalf("easy base should be 5, got %d", got)
	}
	h.Difficulty = DifficultyMedium
	if got := h.CalculatePoints(nil); got != 10 {
		t.Fatalf("medium base should be 10, got %d", got)
	}
	h.Difficulty = DifficultyHard
	if got := h.CalculatePoints(nil); got != 15 {
		t.Fatalf("hard base should be 15, got %d", got)
	}

	quick := 3
	slow := 20
	h.Difficulty = DifficultyEasy
	if got := h.CalculatePoints(&quick); got != 7 {
		t.Fatalf("sub-five-minute completion should add 2, got %d", got)
	}
	if got := h.CalculatePoints(&slow); got != 5 {
		t.Fatalf("slow completion gets no time bonus, got %d", got)
	}

	h.Streak = 14
	if got := h.CalculatePoints(nil); got != 7 {
		t.Fatalf("two full weeks should add 2, got %d", got)
	}
	h.Streak = 70
	if got := h.CalculatePoints(nil); got != 10 {
		t.Fatalf("streak bonus caps at 5, got %d", got)
	}
}

func TestUpdateStreak(t *testing.T) {
	h := Habit{Difficulty: DifficultyMedium}

	h.UpdateStreak(true)
	if h.Streak != 1 || h.BestStreak != 1 {
		t.Fatalf("unexpected streak state: %#v", h)
	}
	if h.Points != 10 {
		t.Fatalf("expected 10 points after first completion, got %d", h.Points)
	}

	h.UpdateStreak(true)
	h.UpdateStreak(true)
	if h.Streak != 3 || h.BestStreak != 3 {
		t.Fatalf("unexpected streak state: %#v", h)
	}

	h.UpdateStreak(false)
	if h.Streak != 0 {
		t.Fatalf("miss must reset streak, got %d", h.Streak)
	}
	if h.BestStreak != 3 {
		t.Fatalf("miss must not touch best streak, got %d", h.BestStreak)
	}
	points := h.Points

	h.UpdateStreak(true)
	if h.Streak != 1 || h.BestStreak != 3 {
		t.Fatalf("restart after reset must count from 1: %#v", h)
	}
	if h.Points <= points {
		t.Fatal("completion after reset must still award points")
	}
}

func TestRecordCompletionReturnsPointsEarned(t *testing.T) {
	h := Habit{Difficulty: DifficultyHard, Streak: 7, BestStreak: 7}
	quick := 2
	earned := h.RecordCompletion(&quick)
	// 15 base + 2 time bonus + 1 for the eighth consecutive slot.
	if earned != 18 {
		t.Fatalf("expected 18 points earned, got %d", earned)
	}
	if h.Points != 18 || h.Streak != 8 || h.BestStreak != 8 {
		t.Fatalf("unexpected state after completion: %#v", h)
	}
}

func TestHabitInvariantBestStreakAtLeastStreak(t *testing.T) {
	now := time.Date(2025, 6, 16, 9, 0, 0, 0, time.UTC)
	h, err := NewHabit("Meditate", PeriodDaily, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 20; i++ {
		h.UpdateStreak(i%5 != 4)
		if h.BestStreak < h.Streak || h.Streak < 0 {
			t.Fatalf("invariant broken at step %d: %#v", i, h)
		}
	}
}

package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"habitd/internal/analytics"
	"habitd/internal/model"
	"habitd/internal/tracker"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	panelStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// RenderHabits lays the habits out as a fixed-width table.
func RenderHabits(habits []model.Habit) string {
	if len(habits) == 0 {
		return dimStyle.Render("(no habits)")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render(fmt.Sprintf("%-4s %-24s %-7s %-7s %-7s %-7s %7s", "ID", "NAME", "PERIOD", "DIFF", "STATUS", "STREAK", "POINTS")))
	b.WriteString("\n")
	for _, habit := range habits {
		line := fmt.Sprintf("%-4d %-24s %-7s %-7s %-7s %-7d %7d",
			habit.ID, truncate(habit.Name, 24), habit.Period, habit.Difficulty, habit.Status, habit.Streak, habit.Points)
		if habit.Status != model.StatusActive {
			line = dimStyle.Render(line)
		}
		b.WriteString(line + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderTasks lists the open period slots.
func RenderTasks(tasks []tracker.Task) string {
	if len(tasks) == 0 {
		return successStyle.Render("all caught up, nothing pending")
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render("pending:") + "\n")
	for _, task := range tasks {
		b.WriteString(fmt.Sprintf("  [%d] %s (%s, %s)\n", task.Habit.ID, task.Habit.Name, task.Habit.Period, task.Key))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderResult turns a recorder result into a one-line status message.
func RenderResult(res tracker.Result) string {
	switch res.Outcome {
	case tracker.OutcomeCompleted:
		msg := fmt.Sprintf("completed %q, streak %d, +%d points", res.Habit.Name, res.Habit.Streak, res.PointsEarned)
		return successStyle.Render(msg)
	case tracker.OutcomeSkipped:
		return warnStyle.Render(fmt.Sprintf("skipped %q for this %s slot", res.Habit.Name, res.Habit.Period))
	case tracker.OutcomeAlreadyLogged:
		return warnStyle.Render(fmt.Sprintf("%q is already logged for this period", res.Habit.Name))
	case tracker.OutcomeUpdated:
		return successStyle.Render(fmt.Sprintf("updated %q", res.Habit.Name))
	case tracker.OutcomeNoChanges:
		return dimStyle.Render("nothing to change")
	case tracker.OutcomeDeactivated:
		return warnStyle.Render(fmt.Sprintf("deactivated %q", res.Habit.Name))
	default:
		return string(res.Outcome)
	}
}

// RenderError formats an error for the status line.
func RenderError(err error) string {
	return errorStyle.Render("error: " + err.Error())
}

// RenderSummary draws the analytics dashboard.
func RenderSummary(s analytics.Summary) string {
	var sections []string

	if s.Longest != nil {
		sections = append(sections, fmt.Sprintf("%s %s (%d periods, best %d)",
			headerStyle.Render("longest streak:"), s.Longest.Name, s.Longest.Streak, s.Longest.BestStreak))
	} else {
		sections = append(sections, dimStyle.Render("no active habits yet"))
	}

	sections = append(sections, renderHabitNames("daily habits:", s.DailyHabits))
	sections = append(sections, renderHabitNames("weekly habits:", s.WeeklyHabits))

	if len(s.Struggling) > 0 {
		var b strings.Builder
		b.WriteString(headerStyle.Render("struggling:") + "\n")
		for _, row := range s.Struggling {
			b.WriteString(fmt.Sprintf("  %s: %d missed of %d expected\n", row.Habit.Name, row.Missed, row.Expected))
		}
		sections = append(sections, strings.TrimSuffix(b.String(), "\n"))
	}

	if len(s.Missed) > 0 {
		var b strings.Builder
		b.WriteString(headerStyle.Render("missed since creation:") + "\n")
		for _, row := range s.Missed {
			b.WriteString(fmt.Sprintf("  %s: %d\n", row.Habit.Name, row.Missed))
		}
		sections = append(sections, strings.TrimSuffix(b.String(), "\n"))
	}

	if len(s.Focus) > 0 {
		sections = append(sections, headerStyle.Render("focus on:")+" "+strings.Join(s.Focus, ", "))
	}

	return panelStyle.Render(strings.Join(sections, "\n"))
}

// RenderMostMissed draws the missed-completions ranking.
func RenderMostMissed(rows []analytics.MostMissed) string {
	if len(rows) == 0 {
		return dimStyle.Render("(no missed completions)")
	}
	var b strings.Builder
	b.WriteString(headerStyle.Render("most missed:") + "\n")
	for i, row := range rows {
		b.WriteString(fmt.Sprintf("  %d. %s (%d)\n", i+1, row.Name, row.Count))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// RenderCorrelations draws the habit-pair correlation table. Names are
// resolved from the habit list; pairs with a missing habit are skipped.
func RenderCorrelations(pairs map[analytics.HabitPair]float64, habits []model.Habit) string {
	if len(pairs) == 0 {
		return dimStyle.Render("(not enough shared completions)")
	}
	names := make(map[int64]string, len(habits))
	for _, habit := range habits {
		names[habit.ID] = habit.Name
	}
	var lines []string
	for pair, v := range pairs {
		low, okLow := names[pair.LowID]
		high, okHigh := names[pair.HighID]
		if !okLow || !okHigh {
			continue
		}
		lines = append(lines, fmt.Sprintf("  %s + %s: %.2f", low, high, v))
	}
	if len(lines) == 0 {
		return dimStyle.Render("(not enough shared completions)")
	}
	sort.Strings(lines)
	return headerStyle.Render("completed together:") + "\n" + strings.Join(lines, "\n")
}

// RenderMarkdown renders help text through glamour, falling back to the
// raw markdown when the terminal renderer fails.
func RenderMarkdown(md string) string {
	if strings.TrimSpace(md) == "" {
		return ""
	}
	out, err := glamour.Render(md, "dark")
	if err != nil {
		return md
	}
	return strings.TrimSpace(out)
}

func renderHabitNames(title string, habits []model.Habit) string {
	if len(habits) == 0 {
		return headerStyle.Render(title) + " " + dimStyle.Render("(none)")
	}
	names := make([]string, 0, len(habits))
	for _, habit := range habits {
		names = append(names, habit.Name)
	}
	return headerStyle.Render(title) + " " + strings.Join(names, ", ")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}

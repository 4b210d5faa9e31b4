package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"habitd/internal/model"
)

const sqliteTimeLayout = time.RFC3339Nano

// dbtx is the subset of database/sql shared by *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type SQLiteRepository struct {
	db   dbtx
	root *sql.DB // nil when this repository is transaction-backed
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db, root: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	if r.root == nil {
		return errors.New("storage: close inside transaction")
	}
	return r.root.Close()
}

func (r *SQLiteRepository) InTx(ctx context.Context, fn func(Repository) error) error {
	if r.root == nil {
		// Already transactional; join the open transaction.
		return fn(r)
	}
	tx, err := r.root.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txRepo := &SQLiteRepository{db: tx}
	if err := fn(txRepo); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) CreateHabit(ctx context.Context, in model.Habit) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO habits (name, description, period, difficulty, status, target_days, reminder_time, creation_date, last_completed, streak, best_streak, points)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.Name, in.Description, in.Period, in.Difficulty, in.Status, in.TargetDays, in.ReminderTime,
		mustTime(in.CreationDate), nullDate(in.LastCompleted), in.Streak, in.BestStreak, in.Points,
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

const habitColumns = `id, name, description, period, difficulty, status, target_days, reminder_time, creation_date, last_completed, streak, best_streak, points`

func (r *SQLiteRepository) GetHabit(ctx context.Context, id int64) (model.Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE id = ?`, id)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, ErrNotFound
		}
		return model.Habit{}, err
	}
	return habit, nil
}

func (r *SQLiteRepository) GetHabitByName(ctx context.Context, name string) (model.Habit, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+habitColumns+` FROM habits WHERE name = ?`, name)
	habit, err := scanHabit(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Habit{}, ErrNotFound
		}
		return model.Habit{}, err
	}
	return habit, nil
}

func (r *SQLiteRepository) UpdateHabit(ctx context.Context, in model.Habit) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE habits
		SET name = ?, description = ?, period = ?, difficulty = ?, status = ?, target_days = ?, reminder_time = ?, last_completed = ?, streak = ?, best_streak = ?, points = ?
		WHERE id = ?`,
		in.Name, in.Description, in.Period, in.Difficulty, in.Status, in.TargetDays, in.ReminderTime,
		nullDate(in.LastCompleted), in.Streak, in.BestStreak, in.Points, in.ID,
	)
	if err != nil {
		return mapConstraint(err)
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) DeleteHabit(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM habits WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkRowsAffected(res)
}

func (r *SQLiteRepository) ListHabits(ctx context.Context, filter HabitFilter) ([]model.Habit, error) {
	query := `SELECT ` + habitColumns + ` FROM habits`
	clauses := make([]string, 0, 2)
	args := make([]any, 0, 4)
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.Period != "" {
		clauses = append(clauses, "period = ?")
		args = append(args, filter.Period)
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Habit, 0)
	for rows.Next() {
		habit, scanErr := scanHabit(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, habit)
	}
	return out, rows.Err()
}

const completionColumns = `id, habit_id, habit_name, log_date, periodicity, streak, status, notes, mood, completion_minutes`

func (r *SQLiteRepository) CreateCompletion(ctx context.Context, in model.Completion) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (habit_id, habit_name, log_date, periodicity, streak, status, notes, mood, completion_minutes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		in.HabitID, in.HabitName, in.LogDate.Format(model.DateLayout), in.Periodicity,
		in.StreakAtLogging, in.Status, in.Notes, nullInt(in.Mood), nullInt(in.CompletionMinutes),
	)
	if err != nil {
		return 0, mapConstraint(err)
	}
	return res.LastInsertId()
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionFilter) ([]model.Completion, error) {
	query := `SELECT ` + completionColumns + ` FROM completions`
	clauses := make([]string, 0, 4)
	args := make([]any, 0, 6)
	if filter.HabitID != 0 {
		clauses = append(clauses, "habit_id = ?")
		args = append(args, filter.HabitID)
	}
	if filter.Status != "" {
		clauses = append(clauses, "status = ?")
		args = append(args, filter.Status)
	}
	if filter.From != nil {
		clauses = append(clauses, "log_date >= ?")
		args = append(args, filter.From.Format(model.DateLayout))
	}
	if filter.To != nil {
		clauses = append(clauses, "log_date <= ?")
		args = append(args, filter.To.Format(model.DateLayout))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += ` ORDER BY log_date ASC, id ASC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]model.Completion, 0)
	for rows.Next() {
		item, scanErr := scanCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// CountCompletionsByStatus aggregates rows of the given status per habit.
// The habit name comes from the habits table, not the denormalized row copy,
// so renames are reflected.
func (r *SQLiteRepository) CountCompletionsByStatus(ctx context.Context, status model.CompletionStatus) ([]StatusCount, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT c.habit_id, h.name, COUNT(*) AS status_count
		FROM completions c
		JOIN habits h ON h.id = c.habit_id
		WHERE c.status = ?
		GROUP BY c.habit_id, h.name
		ORDER BY status_count DESC, c.habit_id ASC`, status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]StatusCount, 0)
	for rows.Next() {
		var item StatusCount
		if err := rows.Scan(&item.HabitID, &item.HabitName, &item.Count); err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func mapConstraint(err error) error {
	var serr sqlite3.Error
	if errors.As(err, &serr) && serr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%w: %v", ErrConflict, err)
	}
	return err
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func nullDate(v *time.Time) any {
	if v == nil {
		return nil
	}
	return v.Format(model.DateLayout)
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

func parseNullableDate(v sql.NullString) (*time.Time, error) {
	if !v.Valid || v.String == "" {
		return nil, nil
	}
	tm, err := time.Parse(model.DateLayout, v.String)
	if err != nil {
		return nil, err
	}
	tm = tm.UTC()
	return &tm, nil
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}

type scanner interface {
	Scan(dest ...any) error
}

func scanHabit(s scanner) (model.Habit, error) {
	var out model.Habit
	var created string
	var lastCompleted sql.NullString
	if err := s.Scan(&out.ID, &out.Name, &out.Description, &out.Period, &out.Difficulty, &out.Status,
		&out.TargetDays, &out.ReminderTime, &created, &lastCompleted, &out.Streak, &out.BestStreak, &out.Points); err != nil {
		return model.Habit{}, err
	}
	createdAt, err := time.Parse(sqliteTimeLayout, created)
	if err != nil {
		return model.Habit{}, err
	}
	last, err := parseNullableDate(lastCompleted)
	if err != nil {
		return model.Habit{}, err
	}
	out.CreationDate = createdAt
	out.LastCompleted = last
	return out, nil
}

func scanCompletion(s scanner) (model.Completion, error) {
	var out model.Completion
	var logDate string
	var mood sql.NullInt64
	var minutes sql.NullInt64
	if err := s.Scan(&out.ID, &out.HabitID, &out.HabitName, &logDate, &out.Periodicity,
		&out.StreakAtLogging, &out.Status, &out.Notes, &mood, &minutes); err != nil {
		return model.Completion{}, err
	}
	day, err := time.Parse(model.DateLayout, logDate)
	if err != nil {
		return model.Completion{}, err
	}
	out.LogDate = day.UTC()
	if mood.Valid {
		v := int(mood.Int64)
		out.Mood = &v
	}
	if minutes.Valid {
		v := int(minutes.Int64)
		out.CompletionMinutes = &v
	}
	return out, nil
}

func checkRowsAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

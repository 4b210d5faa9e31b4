package tracker

import "errors"

var (
	// ErrHabitNotFound reports a habit id with no stored habit behind it.
	ErrHabitNotFound = errors.New("tracker: habit not found")
	// ErrHabitInactive reports a completion attempt on a habit that is not
	// active. Distinct from the already-logged outcome so callers can
	// message the two cases differently.
	ErrHabitInactive = errors.New("tracker: habit is not active")
)

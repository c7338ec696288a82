package store

import "errors"

var (
	ErrWorkoutNotActive = errors.New("workout is not in progress")
	ErrInvalidWorkout   = errors.New("end time must be set exactly when a workout is finished")
)

package store

import "time"

// ExerciseType is the closed set of exercise kinds. Each kind decides which
// set fields are meaningful.
type ExerciseType string

const (
	TypeWeight          ExerciseType = "weight"
	TypeCardio          ExerciseType = "cardio"
	TypeBodyweight      ExerciseType = "bodyweight"
	TypeBodyweightTimer ExerciseType = "bodyweight_timer"
)

// ExerciseTypes lists every exercise type in display order.
var ExerciseTypes = []ExerciseType{TypeWeight, TypeCardio, TypeBodyweight, TypeBodyweightTimer}

// Fields describes which set values apply to an exercise type.
type Fields struct {
	Weight   bool
	Reps     bool
	Distance bool
	Duration bool
}

var typeFields = map[ExerciseType]Fields{
	TypeWeight:          {Weight: true, Reps: true},
	TypeCardio:          {Distance: true, Duration: true},
	TypeBodyweight:      {Reps: true},
	TypeBodyweightTimer: {Duration: true},
}

// Fields returns the applicable set fields. Unknown types behave like weight.
func (t ExerciseType) Fields() Fields {
	if f, ok := typeFields[t]; ok {
		return f
	}
	return typeFields[TypeWeight]
}

func (t ExerciseType) Valid() bool {
	_, ok := typeFields[t]
	return ok
}

// ParseExerciseType maps a stored string to a type, falling back to weight.
func ParseExerciseType(s string) ExerciseType {
	t := ExerciseType(s)
	if t.Valid() {
		return t
	}
	return TypeWeight
}

type Exercise struct {
	ID          int64
	Name        string
	Type        ExerciseType
	MuscleGroup *string
	PhotoURI    *string
	Position    int
}

type WorkoutStatus string

const (
	StatusInProgress WorkoutStatus = "in_progress"
	StatusFinished   WorkoutStatus = "finished"
)

type Workout struct {
	ID        int64
	Date      string // YYYY-MM-DD
	StartTime time.Time
	EndTime   *time.Time
	Status    WorkoutStatus
	Note      *string
}

// Duration is the session length, or zero while the workout is running.
func (w Workout) Duration() time.Duration {
	if w.EndTime == nil {
		return 0
	}
	return w.EndTime.Sub(w.StartTime)
}

// SubSet is a supplementary reading attached to a set, e.g. a drop set.
type SubSet struct {
	Weight *float64 `json:"weight,omitempty"`
	Reps   *int     `json:"reps,omitempty"`
}

// SetData carries the value fields of a set. Nil means "not recorded".
type SetData struct {
	Weight   *float64
	Reps     *int
	Distance *float64
	Duration *float64 // minutes
	RPE      *int
	SubSets  []SubSet
}

type Set struct {
	ID           int64
	WorkoutID    int64
	ExerciseID   int64
	ExerciseName string
	ExerciseType ExerciseType
	SetData
	Position  int
	CreatedAt time.Time
}

// Position pairs a set (or exercise) id with its new position.
type Position struct {
	ID       int64
	Position int
}

// HistoryPoint is the best value logged for an exercise on one day.
type HistoryPoint struct {
	Date        string
	MaxWeight   *float64
	MaxReps     *int
	MaxDistance *float64
	MaxDuration *float64
}

// MonthSummary aggregates finished workouts for one YYYY-MM month.
type MonthSummary struct {
	Month       string
	Count       int
	AvgDuration float64 // minutes
}

type Setting struct {
	Key   string
	Value string
}

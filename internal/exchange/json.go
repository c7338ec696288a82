package exchange

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sadopc/liftlog/internal/store"
)

// WorkoutSource is the read side of the store used by the backup.
type WorkoutSource interface {
	ListWorkouts() ([]store.Workout, error)
	ListSets(workoutID int64) ([]store.Set, error)
}

type jsonBackup struct {
	ExportedAt string        `json:"exported_at"`
	Count      int           `json:"count"`
	Workouts   []jsonWorkout `json:"workouts"`
}

type jsonWorkout struct {
	ID          int64     `json:"id"`
	Date        string    `json:"date"`
	StartTime   string    `json:"start_time"`
	EndTime     string    `json:"end_time,omitempty"`
	Status      string    `json:"status"`
	DurationMin float64   `json:"duration_minutes"`
	Duration    string    `json:"duration"`
	Note        string    `json:"note,omitempty"`
	Sets        []jsonSet `json:"sets"`
}

type jsonSet struct {
	ID       int64          `json:"id"`
	Exercise string         `json:"exercise"`
	Type     string         `json:"type"`
	Position int            `json:"position"`
	Weight   *float64       `json:"weight,omitempty"`
	Reps     *int           `json:"reps,omitempty"`
	Distance *float64       `json:"distance,omitempty"`
	Duration *float64       `json:"duration,omitempty"`
	RPE      *int           `json:"rpe,omitempty"`
	SubSets  []store.SubSet `json:"sub_sets,omitempty"`
}

// WriteWorkoutsJSON writes every workout, newest first, with its sets in
// display order.
func WriteWorkoutsJSON(w io.Writer, src WorkoutSource) error {
	workouts, err := src.ListWorkouts()
	if err != nil {
		return fmt.Errorf("list workouts: %w", err)
	}

	backup := jsonBackup{
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Count:      len(workouts),
		Workouts:   []jsonWorkout{},
	}
	for _, wo := range workouts {
		sets, err := src.ListSets(wo.ID)
		if err != nil {
			return fmt.Errorf("list sets of workout %d: %w", wo.ID, err)
		}
		backup.Workouts = append(backup.Workouts, toJSONWorkout(wo, sets))
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(backup); err != nil {
		return fmt.Errorf("marshal json: %w", err)
	}
	return nil
}

func WorkoutsToJSON(src WorkoutSource, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create json file: %w", err)
	}
	defer f.Close()

	if err := WriteWorkoutsJSON(f, src); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("write json file: %w", err)
	}
	return nil
}

func toJSONWorkout(w store.Workout, sets []store.Set) jsonWorkout {
	endStr := ""
	if w.EndTime != nil {
		endStr = w.EndTime.Local().Format(time.RFC3339)
	}
	note := ""
	if w.Note != nil {
		note = *w.Note
	}
	out := jsonWorkout{
		ID:          w.ID,
		Date:        w.Date,
		StartTime:   w.StartTime.Local().Format(time.RFC3339),
		EndTime:     endStr,
		Status:      string(w.Status),
		DurationMin: w.Duration().Minutes(),
		Duration:    FormatDuration(w.Duration()),
		Note:        note,
		Sets:        []jsonSet{},
	}
	for _, s := range sets {
		out.Sets = append(out.Sets, jsonSet{
			ID:       s.ID,
			Exercise: s.ExerciseName,
			Type:     string(s.ExerciseType),
			Position: s.Position,
			Weight:   s.Weight,
			Reps:     s.Reps,
			Distance: s.Distance,
			Duration: s.Duration,
			RPE:      s.RPE,
			SubSets:  s.SubSets,
		})
	}
	return out
}

// FormatDuration renders d as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	secs := int64(d.Seconds())
	h := secs / 3600
	m := (secs % 3600) / 60
	s := secs % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

package store

import (
	"database/sql"
	"fmt"
	"time"
)

const workoutColumns = `id, date, start_time, end_time, status, note`

// StartWorkout opens a new in-progress session beginning at start.
func (s *Store) StartWorkout(start time.Time) (*Workout, error) {
	return s.CreateWorkout(Workout{
		Date:      start.Format("2006-01-02"),
		StartTime: start,
		Status:    StatusInProgress,
	})
}

// CreateWorkout inserts a workout record as given. It is used for sessions
// logged after the fact and by StartWorkout.
func (s *Store) CreateWorkout(w Workout) (*Workout, error) {
	if w.Status == "" {
		w.Status = StatusInProgress
	}
	if (w.Status == StatusFinished) != (w.EndTime != nil) {
		return nil, ErrInvalidWorkout
	}
	if w.Date == "" {
		w.Date = w.StartTime.Format("2006-01-02")
	}
	var end *string
	if w.EndTime != nil {
		e := w.EndTime.UTC().Format(time.RFC3339)
		end = &e
	}
	res, err := s.db.Exec(
		`INSERT INTO workouts (date, start_time, end_time, status, note) VALUES (?, ?, ?, ?, ?)`,
		w.Date, w.StartTime.UTC().Format(time.RFC3339), end, string(w.Status), w.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("insert workout: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetWorkout(id)
}

// FinishWorkout stamps the end time on an in-progress workout. A workout can
// be finished only once.
func (s *Store) FinishWorkout(id int64, end time.Time) (*Workout, error) {
	res, err := s.db.Exec(
		`UPDATE workouts SET status = ?, end_time = ? WHERE id = ? AND status = ?`,
		string(StatusFinished), end.UTC().Format(time.RFC3339), id, string(StatusInProgress),
	)
	if err != nil {
		return nil, fmt.Errorf("finish workout %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("finish workout %d: %w", id, ErrWorkoutNotActive)
	}
	return s.GetWorkout(id)
}

func (s *Store) UpdateWorkoutNote(id int64, note *string) error {
	_, err := s.db.Exec(`UPDATE workouts SET note = ? WHERE id = ?`, note, id)
	if err != nil {
		return fmt.Errorf("update workout note %d: %w", id, err)
	}
	return nil
}

// DeleteWorkout removes the workout and, by cascade, its sets.
func (s *Store) DeleteWorkout(id int64) error {
	_, err := s.db.Exec(`DELETE FROM workouts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete workout %d: %w", id, err)
	}
	return nil
}

// GetWorkout returns nil when no workout has the given id.
func (s *Store) GetWorkout(id int64) (*Workout, error) {
	w, err := scanWorkout(s.db.QueryRow(
		`SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get workout %d: %w", id, err)
	}
	return w, nil
}

// GetActiveWorkout returns the most recent in-progress workout, or nil.
func (s *Store) GetActiveWorkout() (*Workout, error) {
	w, err := scanWorkout(s.db.QueryRow(
		`SELECT `+workoutColumns+` FROM workouts WHERE status = ? ORDER BY id DESC LIMIT 1`,
		string(StatusInProgress),
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active workout: %w", err)
	}
	return w, nil
}

// ListWorkouts returns every workout, newest first.
func (s *Store) ListWorkouts() ([]Workout, error) {
	return s.queryWorkouts(`SELECT ` + workoutColumns + ` FROM workouts ORDER BY date DESC, start_time DESC, id DESC`)
}

func (s *Store) ListWorkoutsByDate(date string) ([]Workout, error) {
	return s.queryWorkouts(
		`SELECT `+workoutColumns+` FROM workouts WHERE date = ? ORDER BY start_time, id`, date,
	)
}

// ListWorkoutsByPeriod returns workouts whose date lies in [from, to], both
// YYYY-MM-DD, oldest first.
func (s *Store) ListWorkoutsByPeriod(from, to string) ([]Workout, error) {
	return s.queryWorkouts(
		`SELECT `+workoutColumns+` FROM workouts WHERE date >= ? AND date <= ? ORDER BY date, start_time, id`,
		from, to,
	)
}

func (s *Store) ListRecentWorkouts(limit int) ([]Workout, error) {
	query := `SELECT ` + workoutColumns + ` FROM workouts ORDER BY date DESC, start_time DESC, id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}
	return s.queryWorkouts(query)
}

func (s *Store) queryWorkouts(query string, args ...any) ([]Workout, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	defer rows.Close()

	var workouts []Workout
	for rows.Next() {
		w, err := scanWorkout(rows)
		if err != nil {
			return nil, err
		}
		workouts = append(workouts, *w)
	}
	return workouts, rows.Err()
}

func scanWorkout(r rowScanner) (*Workout, error) {
	w := &Workout{}
	var startTime, status string
	var endTime, note sql.NullString
	if err := r.Scan(&w.ID, &w.Date, &startTime, &endTime, &status, &note); err != nil {
		return nil, err
	}
	w.Status = WorkoutStatus(status)
	w.StartTime, _ = time.Parse(time.RFC3339, startTime)
	if endTime.Valid {
		t, _ := time.Parse(time.RFC3339, endTime.String)
		w.EndTime = &t
	}
	if note.Valid {
		w.Note = &note.String
	}
	return w, nil
}

package store

import (
	"database/sql"
	"fmt"
)

// ExerciseHistory returns, for every date with a finished workout containing
// the exercise, the best weight/reps/distance/duration logged that day.
func (s *Store) ExerciseHistory(exerciseID int64) ([]HistoryPoint, error) {
	rows, err := s.db.Query(`
		SELECT w.date, MAX(s.weight), MAX(s.reps), MAX(s.distance), MAX(s.duration)
		FROM sets s
		JOIN workouts w ON w.id = s.workout_id
		WHERE s.exercise_id = ? AND w.status = ?
		GROUP BY w.date
		ORDER BY w.date ASC`,
		exerciseID, string(StatusFinished),
	)
	if err != nil {
		return nil, fmt.Errorf("exercise history: %w", err)
	}
	defer rows.Close()

	var points []HistoryPoint
	for rows.Next() {
		var p HistoryPoint
		var weight, distance, duration sql.NullFloat64
		var reps sql.NullInt64
		if err := rows.Scan(&p.Date, &weight, &reps, &distance, &duration); err != nil {
			return nil, err
		}
		p.MaxWeight = nullFloat(weight)
		p.MaxReps = nullInt(reps)
		p.MaxDistance = nullFloat(distance)
		p.MaxDuration = nullFloat(duration)
		points = append(points, p)
	}
	return points, rows.Err()
}

// WorkoutCountForMonth counts finished workouts dated in month (YYYY-MM).
func (s *Store) WorkoutCountForMonth(month string) (int, error) {
	var count int
	err := s.db.QueryRow(`
		SELECT COUNT(*) FROM workouts
		WHERE date LIKE ? || '%' AND status = ?`,
		month, string(StatusFinished),
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("workout count for %s: %w", month, err)
	}
	return count, nil
}

// AvgWorkoutDuration is the mean length in minutes of finished workouts in
// month (YYYY-MM) that have an end time. Zero when there are none.
func (s *Store) AvgWorkoutDuration(month string) (float64, error) {
	var avg float64
	err := s.db.QueryRow(`
		SELECT COALESCE(AVG((strftime('%s', end_time) - strftime('%s', start_time)) / 60.0), 0)
		FROM workouts
		WHERE date LIKE ? || '%' AND status = ? AND end_time IS NOT NULL`,
		month, string(StatusFinished),
	).Scan(&avg)
	if err != nil {
		return 0, fmt.Errorf("average workout duration for %s: %w", month, err)
	}
	return avg, nil
}

// MonthlySummaries returns count and average duration for each month given.
func (s *Store) MonthlySummaries(months []string) ([]MonthSummary, error) {
	summaries := make([]MonthSummary, 0, len(months))
	for _, m := range months {
		count, err := s.WorkoutCountForMonth(m)
		if err != nil {
			return nil, err
		}
		avg, err := s.AvgWorkoutDuration(m)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, MonthSummary{Month: m, Count: count, AvgDuration: avg})
	}
	return summaries, nil
}

// PreviousSets returns the sets logged for an exercise in its most recent
// finished workout other than excludeWorkoutID, in display order.
func (s *Store) PreviousSets(exerciseID, excludeWorkoutID int64) ([]Set, error) {
	rows, err := s.db.Query(`
		WITH latest AS (
			SELECT w.id FROM workouts w
			JOIN sets s ON s.workout_id = w.id
			WHERE s.exercise_id = ? AND w.status = ? AND w.id != ?
			ORDER BY w.date DESC, w.start_time DESC, w.id DESC
			LIMIT 1
		)
		SELECT `+setColumns+`
		FROM sets s JOIN exercises e ON e.id = s.exercise_id
		WHERE s.exercise_id = ? AND s.workout_id = (SELECT id FROM latest)
		ORDER BY s.position ASC, s.id ASC`,
		exerciseID, string(StatusFinished), excludeWorkoutID, exerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("previous sets: %w", err)
	}
	defer rows.Close()

	var sets []Set
	for rows.Next() {
		set, err := scanSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, *set)
	}
	return sets, rows.Err()
}

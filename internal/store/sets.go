package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const setColumns = `s.id, s.workout_id, s.exercise_id, e.name, e.type,
	s.weight, s.reps, s.distance, s.duration, s.rpe, s.position, s.sub_sets, s.created_at`

// AddSet appends a set to the end of its workout. The next position is
// computed by the insert itself, so concurrent adds never share a position.
func (s *Store) AddSet(workoutID, exerciseID int64, data SetData) (*Set, error) {
	subSets, err := encodeSubSets(data.SubSets)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.Exec(
		`INSERT INTO sets (workout_id, exercise_id, weight, reps, distance, duration, rpe, sub_sets, position, created_at)
		 SELECT ?, ?, ?, ?, ?, ?, ?, ?, COALESCE(MAX(position) + 1, 0), ?
		 FROM sets WHERE workout_id = ?`,
		workoutID, exerciseID, data.Weight, data.Reps, data.Distance, data.Duration, data.RPE, subSets,
		time.Now().UTC().Format(time.RFC3339), workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("insert set: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transaction: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetSet(id)
}

// UpdateSet rewrites the value fields only; the position is untouched.
func (s *Store) UpdateSet(id int64, data SetData) error {
	subSets, err := encodeSubSets(data.SubSets)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`UPDATE sets SET weight = ?, reps = ?, distance = ?, duration = ?, rpe = ?, sub_sets = ? WHERE id = ?`,
		data.Weight, data.Reps, data.Distance, data.Duration, data.RPE, subSets, id,
	)
	if err != nil {
		return fmt.Errorf("update set %d: %w", id, err)
	}
	return nil
}

// DeleteSet removes one set. Sibling positions are left as they are.
func (s *Store) DeleteSet(id int64) error {
	_, err := s.db.Exec(`DELETE FROM sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete set %d: %w", id, err)
	}
	return nil
}

// UpdateSetPosition overwrites a single position without looking at siblings.
func (s *Store) UpdateSetPosition(id int64, position int) error {
	_, err := s.db.Exec(`UPDATE sets SET position = ? WHERE id = ?`, position, id)
	if err != nil {
		return fmt.Errorf("update set position %d: %w", id, err)
	}
	return nil
}

// UpdateSetPositions writes all given positions in one transaction.
func (s *Store) UpdateSetPositions(positions []Position) error {
	return s.updatePositions("sets", positions)
}

// GetSet returns nil when no set has the given id.
func (s *Store) GetSet(id int64) (*Set, error) {
	set, err := scanSet(s.db.QueryRow(
		`SELECT `+setColumns+` FROM sets s JOIN exercises e ON e.id = s.exercise_id WHERE s.id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get set %d: %w", id, err)
	}
	return set, nil
}

// ListSets returns the sets of a workout in display order: position, then id.
func (s *Store) ListSets(workoutID int64) ([]Set, error) {
	rows, err := s.db.Query(
		`SELECT `+setColumns+`
		 FROM sets s JOIN exercises e ON e.id = s.exercise_id
		 WHERE s.workout_id = ?
		 ORDER BY s.position ASC, s.id ASC`, workoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("list sets: %w", err)
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

func scanSet(r rowScanner) (*Set, error) {
	set := &Set{}
	var typ, createdAt string
	var weight, distance, duration sql.NullFloat64
	var reps, rpe sql.NullInt64
	var subSets sql.NullString
	err := r.Scan(&set.ID, &set.WorkoutID, &set.ExerciseID, &set.ExerciseName, &typ,
		&weight, &reps, &distance, &duration, &rpe, &set.Position, &subSets, &createdAt)
	if err != nil {
		return nil, err
	}
	set.ExerciseType = ParseExerciseType(typ)
	set.Weight = nullFloat(weight)
	set.Reps = nullInt(reps)
	set.Distance = nullFloat(distance)
	set.Duration = nullFloat(duration)
	set.RPE = nullInt(rpe)
	if subSets.Valid && subSets.String != "" {
		if err := json.Unmarshal([]byte(subSets.String), &set.SubSets); err != nil {
			return nil, fmt.Errorf("decode sub sets of set %d: %w", set.ID, err)
		}
	}
	set.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return set, nil
}

func encodeSubSets(subSets []SubSet) (*string, error) {
	if len(subSets) == 0 {
		return nil, nil
	}
	b, err := json.Marshal(subSets)
	if err != nil {
		return nil, fmt.Errorf("encode sub sets: %w", err)
	}
	s := string(b)
	return &s, nil
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	i := int(v.Int64)
	return &i
}

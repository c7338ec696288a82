package store

import (
	"database/sql"
	"fmt"
)

const exerciseColumns = `id, name, type, muscle_group, photo_uri, position`

// CreateExercise appends a new exercise to the end of the exercise list.
// The name is stored as given; callers validate it.
func (s *Store) CreateExercise(name string, typ ExerciseType, muscleGroup *string) (*Exercise, error) {
	if typ == "" {
		typ = TypeWeight
	}
	res, err := s.db.Exec(
		`INSERT INTO exercises (name, type, muscle_group, position)
		 SELECT ?, ?, ?, COALESCE(MAX(position) + 1, 0) FROM exercises`,
		name, string(typ), muscleGroup,
	)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}
	id, _ := res.LastInsertId()
	return s.GetExercise(id)
}

// GetExercise returns nil when no exercise has the given id.
func (s *Store) GetExercise(id int64) (*Exercise, error) {
	e, err := scanExercise(s.db.QueryRow(
		`SELECT `+exerciseColumns+` FROM exercises WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get exercise %d: %w", id, err)
	}
	return e, nil
}

func (s *Store) ListExercises() ([]Exercise, error) {
	rows, err := s.db.Query(`SELECT ` + exerciseColumns + ` FROM exercises ORDER BY position, id`)
	if err != nil {
		return nil, fmt.Errorf("list exercises: %w", err)
	}
	defer rows.Close()

	var exercises []Exercise
	for rows.Next() {
		e, err := scanExercise(rows)
		if err != nil {
			return nil, err
		}
		exercises = append(exercises, *e)
	}
	return exercises, rows.Err()
}

// UpdateExercise rewrites name, type, muscle group and photo. Position is
// changed only through UpdateExercisePositions.
func (s *Store) UpdateExercise(e Exercise) error {
	_, err := s.db.Exec(
		`UPDATE exercises SET name = ?, type = ?, muscle_group = ?, photo_uri = ? WHERE id = ?`,
		e.Name, string(e.Type), e.MuscleGroup, e.PhotoURI, e.ID,
	)
	if err != nil {
		return fmt.Errorf("update exercise %d: %w", e.ID, err)
	}
	return nil
}

// DeleteExercise removes the exercise and, by cascade, every set logged for it.
func (s *Store) DeleteExercise(id int64) error {
	_, err := s.db.Exec(`DELETE FROM exercises WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete exercise %d: %w", id, err)
	}
	return nil
}

// UpdateExercisePositions writes all given positions in one transaction.
func (s *Store) UpdateExercisePositions(positions []Position) error {
	return s.updatePositions("exercises", positions)
}

func (s *Store) updatePositions(table string, positions []Position) error {
	if len(positions) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(fmt.Sprintf(`UPDATE %s SET position = ? WHERE id = ?`, table))
	if err != nil {
		return fmt.Errorf("prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, p := range positions {
		if _, err := stmt.Exec(p.Position, p.ID); err != nil {
			return fmt.Errorf("update %s position %d: %w", table, p.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanExercise(r rowScanner) (*Exercise, error) {
	e := &Exercise{}
	var typ string
	var muscle, photo sql.NullString
	if err := r.Scan(&e.ID, &e.Name, &typ, &muscle, &photo, &e.Position); err != nil {
		return nil, err
	}
	e.Type = ParseExerciseType(typ)
	if muscle.Valid {
		e.MuscleGroup = &muscle.String
	}
	if photo.Valid {
		e.PhotoURI = &photo.String
	}
	return e, nil
}

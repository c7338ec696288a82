package exchange

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/liftlog/internal/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func strPtr(s string) *string { return &s }

// ============================================================
// CSV export
// ============================================================

func TestWriteExercisesCSV(t *testing.T) {
	exercises := []store.Exercise{
		{ID: 1, Name: "Bench Press", Type: store.TypeWeight, MuscleGroup: strPtr("Chest"), Position: 0},
		{ID: 2, Name: "Run", Type: store.TypeCardio, Position: 1},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteExercisesCSV(&buf, exercises))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "name,type,muscle_group,position", lines[0])
	assert.Equal(t, `"Bench Press","weight","Chest","0"`, lines[1])
	assert.Equal(t, `"Run","cardio","","1"`, lines[2])
}

func TestWriteExercisesCSVNoEscaping(t *testing.T) {
	var buf bytes.Buffer
	exercises := []store.Exercise{{Name: `Curl "EZ"`, Type: store.TypeWeight}}
	require.NoError(t, WriteExercisesCSV(&buf, exercises))
	assert.Contains(t, buf.String(), `"Curl "EZ"","weight"`)
}

func TestWriteExercisesCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExercisesCSV(&buf, nil))
	assert.Equal(t, csvHeader+"\n", buf.String())
}

func TestExercisesToCSVBadPath(t *testing.T) {
	assert.Error(t, ExercisesToCSV(nil, "/nonexistent/dir/file.csv"))
}

// ============================================================
// CSV import
// ============================================================

func TestParseExercisesCSV(t *testing.T) {
	input := strings.Join([]string{
		"name,type,muscle_group,position",
		`"Bench Press","weight","Chest","0"`,
		`"Farmer walk, heavy","cardio","","1"`,
		`Plank,bodyweight_timer`,
		`"lonely"`,
		``,
		`"Mystery","unknown"`,
	}, "\r\n")

	rows, err := ParseExercisesCSV(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, rows, 4)

	assert.Equal(t, "Bench Press", rows[0].Name)
	require.NotNil(t, rows[0].MuscleGroup)
	assert.Equal(t, "Chest", *rows[0].MuscleGroup)

	assert.Equal(t, "Farmer walk, heavy", rows[1].Name, "quoted commas stay in the token")
	assert.Equal(t, store.TypeCardio, rows[1].Type)
	assert.Nil(t, rows[1].MuscleGroup)

	assert.Equal(t, "Plank", rows[2].Name)
	assert.Equal(t, store.TypeBodyweightTimer, rows[2].Type)

	assert.Equal(t, store.TypeWeight, rows[3].Type, "unknown types fall back to weight")
}

func TestParseExercisesCSVSpaceAfterComma(t *testing.T) {
	rows, err := ParseExercisesCSV(strings.NewReader(`"Rowing", "cardio", "Back"`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Rowing", rows[0].Name)
	assert.Equal(t, store.TypeCardio, rows[0].Type)
	require.NotNil(t, rows[0].MuscleGroup)
	assert.Equal(t, "Back", *rows[0].MuscleGroup)
}

func TestParseExercisesCSVWithoutHeader(t *testing.T) {
	rows, err := ParseExercisesCSV(strings.NewReader(`"Squat","weight"`))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Squat", rows[0].Name)
}

func TestImportCreatesNewRows(t *testing.T) {
	s := newTestStore(t)
	_, err := s.CreateExercise("Squat", store.TypeWeight, nil)
	require.NoError(t, err)

	n, err := ImportExercises(strings.NewReader(`"Squat","weight"`+"\n"+`"Row","weight","Back"`), s)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	exercises, err := s.ListExercises()
	require.NoError(t, err)
	require.Len(t, exercises, 3, "duplicates are not merged")
	assert.Equal(t, "Squat", exercises[1].Name)
	assert.Equal(t, 2, exercises[2].Position, "imported rows are appended")
}

func TestCSVRoundTrip(t *testing.T) {
	src := newTestStore(t)
	src.CreateExercise("Bench", store.TypeWeight, strPtr("Chest"))
	src.CreateExercise("Bike", store.TypeCardio, nil)
	src.CreateExercise("Plank", store.TypeBodyweightTimer, strPtr("Core"))
	exported, err := src.ListExercises()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "exercises.csv")
	require.NoError(t, ExercisesToCSV(exported, path))

	dst := newTestStore(t)
	n, err := ImportExercisesCSV(path, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	imported, err := dst.ListExercises()
	require.NoError(t, err)
	require.Len(t, imported, len(exported))
	for i := range exported {
		assert.Equal(t, exported[i].Name, imported[i].Name)
		assert.Equal(t, exported[i].Type, imported[i].Type)
		assert.Equal(t, exported[i].MuscleGroup, imported[i].MuscleGroup)
	}
}

type failingCreator struct{ after int }

func (f *failingCreator) CreateExercise(name string, typ store.ExerciseType, mg *string) (*store.Exercise, error) {
	if f.after == 0 {
		return nil, errors.New("locked")
	}
	f.after--
	return &store.Exercise{Name: name, Type: typ}, nil
}

func TestImportStopsOnStoreError(t *testing.T) {
	input := "\"A\",\"weight\"\n\"B\",\"weight\"\n\"C\",\"weight\""
	n, err := ImportExercises(strings.NewReader(input), &failingCreator{after: 1})
	assert.Error(t, err)
	assert.Equal(t, 1, n)
}

func TestImportMissingFile(t *testing.T) {
	_, err := ImportExercisesCSV(filepath.Join(t.TempDir(), "missing.csv"), newTestStore(t))
	assert.Error(t, err)
}

// ============================================================
// JSON backup
// ============================================================

func TestWorkoutsToJSON(t *testing.T) {
	s := newTestStore(t)
	bench, _ := s.CreateExercise("Bench", store.TypeWeight, nil)
	start := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	w, err := s.CreateWorkout(store.Workout{StartTime: start, EndTime: &end, Status: store.StatusFinished, Note: strPtr("push")})
	require.NoError(t, err)
	weight, reps := 80.0, 5
	_, err = s.AddSet(w.ID, bench.ID, store.SetData{
		Weight:  &weight,
		Reps:    &reps,
		SubSets: []store.SubSet{{Weight: &weight, Reps: &reps}},
	})
	require.NoError(t, err)
	s.StartWorkout(start.Add(48 * time.Hour))

	path := filepath.Join(t.TempDir(), "backup.json")
	require.NoError(t, WorkoutsToJSON(s, path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var got jsonBackup
	require.NoError(t, json.Unmarshal(data, &got))

	assert.Equal(t, 2, got.Count)
	require.Len(t, got.Workouts, 2)
	running, done := got.Workouts[0], got.Workouts[1]
	assert.Equal(t, "in_progress", running.Status)
	assert.Empty(t, running.EndTime)
	assert.Empty(t, running.Sets)

	assert.Equal(t, "01:00:00", done.Duration)
	assert.Equal(t, 60.0, done.DurationMin)
	assert.Equal(t, "push", done.Note)
	require.Len(t, done.Sets, 1)
	assert.Equal(t, "Bench", done.Sets[0].Exercise)
	assert.Equal(t, 80.0, *done.Sets[0].Weight)
	assert.Len(t, done.Sets[0].SubSets, 1)
}

func TestWorkoutsToJSONEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteWorkoutsJSON(&buf, newTestStore(t)))
	assert.Contains(t, buf.String(), `"workouts": []`)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatDuration(0))
	assert.Equal(t, "01:01:01", FormatDuration(time.Hour+time.Minute+time.Second))
	assert.Equal(t, "26:00:00", FormatDuration(26*time.Hour))
}

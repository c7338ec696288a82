package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/liftlog/internal/store"
)

type env struct {
	dir    string
	dbPath string
}

// newEnv points config, database and log at a temp dir.
func newEnv(t *testing.T) env {
	t.Helper()
	color.NoColor = true
	dir := t.TempDir()
	e := env{dir: dir, dbPath: filepath.Join(dir, "liftlog.db")}
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("LIFTLOG_CONFIG_PATH", filepath.Join(dir, "missing.yaml"))
	t.Setenv("LIFTLOG_DB_PATH", e.dbPath)
	t.Setenv("LIFTLOG_LOG_FILE", filepath.Join(dir, "liftlog.log"))
	t.Setenv("LIFTLOG_LOG_LEVEL", "")
	t.Setenv("LIFTLOG_REORDER_SCOPE", "")
	t.Setenv("LIFTLOG_ROW_HEIGHT", "")
	t.Setenv("LIFTLOG_LOG_JSON", "")
	return e
}

// seed opens the database directly; the returned store must be closed
// before running a command.
func (e env) seed(t *testing.T, fn func(s *store.Store)) {
	t.Helper()
	s, err := store.New(e.dbPath)
	require.NoError(t, err)
	fn(s)
	require.NoError(t, s.Close())
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	err := run(args, strings.NewReader(stdin), &out, &errOut)
	return out.String(), err
}

func ptrS(s string) *string { return &s }

func TestExercisesListEmpty(t *testing.T) {
	newEnv(t)
	out, err := execute(t, "", "exercises", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No exercises yet.")
}

func TestExercisesList(t *testing.T) {
	e := newEnv(t)
	e.seed(t, func(s *store.Store) {
		_, err := s.CreateExercise("Bench Press", store.TypeWeight, ptrS("Chest"))
		require.NoError(t, err)
		_, err = s.CreateExercise("Run", store.TypeCardio, nil)
		require.NoError(t, err)
	})

	out, err := execute(t, "", "ex", "ls")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "Bench Press")
	assert.Contains(t, lines[0], "Chest")
	assert.Contains(t, lines[1], "cardio")
}

func TestExercisesExportImport(t *testing.T) {
	e := newEnv(t)
	e.seed(t, func(s *store.Store) {
		_, err := s.CreateExercise("Squat", store.TypeWeight, ptrS("Legs"))
		require.NoError(t, err)
	})

	out, err := execute(t, "", "exercises", "export", "-")
	require.NoError(t, err)
	assert.Equal(t, "name,type,muscle_group,position\n\"Squat\",\"weight\",\"Legs\",\"0\"\n", out)

	path := filepath.Join(e.dir, "ex.csv")
	out, err = execute(t, "", "exercises", "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported 1 exercises")

	out, err = execute(t, "", "exercises", "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 exercises")

	e.seed(t, func(s *store.Store) {
		exercises, err := s.ListExercises()
		require.NoError(t, err)
		assert.Len(t, exercises, 2, "import never deduplicates")
	})
}

func TestExercisesImportStdin(t *testing.T) {
	e := newEnv(t)
	csv := "name,type,muscle_group,position\n\"Pull Up\",\"bodyweight\",\"Back\",\"0\"\nbad\n"
	out, err := execute(t, csv, "exercises", "import", "-")
	require.NoError(t, err)
	assert.Contains(t, out, "Imported 1 exercises")

	e.seed(t, func(s *store.Store) {
		exercises, err := s.ListExercises()
		require.NoError(t, err)
		require.Len(t, exercises, 1)
		assert.Equal(t, store.TypeBodyweight, exercises[0].Type)
	})
}

func TestExercisesImportMissingFile(t *testing.T) {
	e := newEnv(t)
	_, err := execute(t, "", "exercises", "import", filepath.Join(e.dir, "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "import stopped after 0 exercises")
}

func TestWorkoutsListAndExport(t *testing.T) {
	e := newEnv(t)
	start := time.Date(2024, 3, 5, 18, 0, 0, 0, time.Local)
	e.seed(t, func(s *store.Store) {
		bench, err := s.CreateExercise("Bench", store.TypeWeight, nil)
		require.NoError(t, err)
		w, err := s.StartWorkout(start)
		require.NoError(t, err)
		weight, reps := 100.0, 5
		_, err = s.AddSet(w.ID, bench.ID, store.SetData{Weight: &weight, Reps: &reps})
		require.NoError(t, err)
		_, err = s.FinishWorkout(w.ID, start.Add(time.Hour))
		require.NoError(t, err)
	})

	out, err := execute(t, "", "workouts", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03-05")
	assert.Contains(t, out, "01:00:00")
	assert.Contains(t, out, "finished")

	out, err = execute(t, "", "workouts", "export", "-")
	require.NoError(t, err)
	var backup map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &backup))

	path := filepath.Join(e.dir, "backup.json")
	_, err = execute(t, "", "workouts", "export", path)
	require.NoError(t, err)
	_, err = os.Stat(path)
	require.NoError(t, err)
}

func TestStats(t *testing.T) {
	e := newEnv(t)
	e.seed(t, func(s *store.Store) {
		for _, minutes := range []int{30, 50} {
			start := time.Date(2024, 3, 5, 18, 0, 0, 0, time.Local)
			w, err := s.StartWorkout(start)
			require.NoError(t, err)
			_, err = s.FinishWorkout(w.ID, start.Add(time.Duration(minutes)*time.Minute))
			require.NoError(t, err)
		}
	})

	out, err := execute(t, "", "stats", "--month", "2024-03")
	require.NoError(t, err)
	assert.Contains(t, out, "2024-03")
	assert.Regexp(t, `Workouts\s+2`, out)
	assert.Regexp(t, `Avg duration\s+40 min`, out)

	out, err = execute(t, "", "stats", "-m", "2024-04")
	require.NoError(t, err)
	assert.Regexp(t, `Workouts\s+0`, out)
	assert.Contains(t, out, "—")
}

func TestStatsInvalidMonth(t *testing.T) {
	newEnv(t)
	_, err := execute(t, "", "stats", "--month", "March")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "YYYY-MM")
}

func TestHistory(t *testing.T) {
	e := newEnv(t)
	var id int64
	e.seed(t, func(s *store.Store) {
		bench, err := s.CreateExercise("Bench", store.TypeWeight, nil)
		require.NoError(t, err)
		id = bench.ID
		start := time.Date(2024, 3, 5, 18, 0, 0, 0, time.Local)
		w, err := s.StartWorkout(start)
		require.NoError(t, err)
		for _, kg := range []float64{80, 100} {
			reps := 5
			_, err = s.AddSet(w.ID, bench.ID, store.SetData{Weight: &kg, Reps: &reps})
			require.NoError(t, err)
		}
		_, err = s.FinishWorkout(w.ID, start.Add(time.Hour))
		require.NoError(t, err)
	})

	out, err := execute(t, "", "history", "1")
	require.NoError(t, err)
	require.Equal(t, int64(1), id)
	assert.Contains(t, out, "Bench")
	assert.Contains(t, out, "2024-03-05  weight 100  reps 5")
}

func TestHistoryErrors(t *testing.T) {
	newEnv(t)
	_, err := execute(t, "", "history", "abc")
	require.Error(t, err)

	_, err = execute(t, "", "history", "42")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exercise 42 not found")
}

func TestConfigShow(t *testing.T) {
	e := newEnv(t)
	out, err := execute(t, "", "config", "show")
	require.NoError(t, err)
	assert.Contains(t, out, e.dbPath)
	assert.Contains(t, out, "scope: group")
	_, err = os.Stat(e.dbPath)
	assert.True(t, os.IsNotExist(err), "config show must not create the database")
}

func TestDBFlagOverridesConfig(t *testing.T) {
	e := newEnv(t)
	other := filepath.Join(e.dir, "other.db")
	_, err := execute(t, "", "--db", other, "exercises", "list")
	require.NoError(t, err)
	_, err = os.Stat(other)
	assert.NoError(t, err)
}

func TestConfigFlagMissingFile(t *testing.T) {
	e := newEnv(t)
	_, err := execute(t, "", "--config", filepath.Join(e.dir, "nope.yaml"), "exercises", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "load config")
}

func TestFormatPoint(t *testing.T) {
	d, m := 5.0, 25.0
	p := store.HistoryPoint{MaxDistance: &d, MaxDuration: &m}
	assert.Equal(t, "distance 5  duration 25 min", formatPoint(p, store.TypeCardio.Fields()))
	assert.Equal(t, "—", formatPoint(p, store.TypeWeight.Fields()))
}

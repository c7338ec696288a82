package ordering

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/liftlog/internal/store"
)

type fixture struct {
	store   *store.Store
	workout *store.Workout
	squat   *store.Exercise
	bench   *store.Exercise
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	s, err := store.NewMemory()
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	squat, err := s.CreateExercise("Squat", store.TypeWeight, nil)
	require.NoError(t, err)
	bench, err := s.CreateExercise("Bench", store.TypeWeight, nil)
	require.NoError(t, err)
	w, err := s.StartWorkout(time.Now())
	require.NoError(t, err)
	return fixture{store: s, workout: w, squat: squat, bench: bench}
}

func reps(n int) store.SetData { return store.SetData{Reps: &n} }

func ids(sets []store.Set) []int64 {
	out := make([]int64, len(sets))
	for i, s := range sets {
		out[i] = s.ID
	}
	return out
}

func TestReorderMovesLastToFirst(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, ScopeGroup)
	require.NoError(t, e.Load(f.workout.ID))

	a, err := e.Append(f.squat.ID, reps(1))
	require.NoError(t, err)
	b, err := e.Append(f.squat.ID, reps(2))
	require.NoError(t, err)
	c, err := e.Append(f.squat.ID, reps(3))
	require.NoError(t, err)

	require.NoError(t, e.Reorder("Squat", 2, 0))

	g, ok := e.Group("Squat")
	require.True(t, ok)
	assert.Equal(t, []int64{c.ID, a.ID, b.ID}, ids(g.Sets))
	for i, s := range g.Sets {
		assert.Equal(t, i, s.Position)
	}
}

func TestReorderGroupScopeLeavesOtherGroups(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, ScopeGroup)
	require.NoError(t, e.Load(f.workout.ID))

	s1, _ := e.Append(f.squat.ID, reps(5))
	b1, _ := e.Append(f.bench.ID, reps(5))
	s2, _ := e.Append(f.squat.ID, reps(5))

	require.NoError(t, e.Reorder("Squat", 1, 0))

	assert.Equal(t, []int64{s2.ID, s1.ID, b1.ID}, ids(e.Flat()))
	bench, err := f.store.GetSet(b1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, bench.Position, "untouched group keeps its stored position")
}

func TestReorderWorkoutScopeRewritesEverything(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, ScopeWorkout)
	require.NoError(t, e.Load(f.workout.ID))

	s1, _ := e.Append(f.squat.ID, reps(5))
	b1, _ := e.Append(f.bench.ID, reps(5))
	s2, _ := e.Append(f.squat.ID, reps(5))

	require.NoError(t, e.Reorder("Squat", 1, 0))

	flat := e.Flat()
	assert.Equal(t, []int64{s2.ID, s1.ID, b1.ID}, ids(flat))
	for i, s := range flat {
		assert.Equal(t, i, s.Position)
	}
}

func TestReorderErrors(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, "")
	assert.Equal(t, ScopeGroup, e.Scope())

	assert.ErrorIs(t, e.Reorder("Squat", 0, 1), ErrNoWorkoutLoaded)

	require.NoError(t, e.Load(f.workout.ID))
	e.Append(f.squat.ID, reps(1))
	e.Append(f.squat.ID, reps(2))

	assert.ErrorIs(t, e.Reorder("Deadlift", 0, 1), ErrUnknownGroup)
	assert.ErrorIs(t, e.Reorder("Squat", 5, 0), ErrIndexOutOfRange)
	assert.NoError(t, e.Reorder("Squat", 0, 0))
	// A target past the end lands on the last slot.
	assert.NoError(t, e.Reorder("Squat", 0, 99))
	g, _ := e.Group("Squat")
	assert.Equal(t, 1, *g.Sets[1].Reps)
}

func TestAppendAndDelete(t *testing.T) {
	f := newFixture(t)
	e := New(f.store, ScopeGroup)

	_, err := e.Append(f.squat.ID, reps(1))
	assert.ErrorIs(t, err, ErrNoWorkoutLoaded)

	require.NoError(t, e.Load(f.workout.ID))
	first, _ := e.Append(f.squat.ID, reps(1))
	mid, _ := e.Append(f.squat.ID, reps(2))
	last, _ := e.Append(f.squat.ID, reps(3))
	assert.Len(t, e.Flat(), 3)

	require.NoError(t, e.Delete(mid.ID))
	flat := e.Flat()
	require.Len(t, flat, 2)
	assert.Equal(t, []int64{first.ID, last.ID}, ids(flat))
	assert.Equal(t, 2, flat[1].Position, "delete leaves a gap")

	next, _ := e.Append(f.squat.ID, reps(4))
	assert.Equal(t, 3, next.Position)
}

// ============================================================
// Pure helpers
// ============================================================

func set(id int64, exercise string) store.Set {
	return store.Set{ID: id, ExerciseName: exercise}
}

func TestGroupSetsEncounterOrder(t *testing.T) {
	flat := []store.Set{set(1, "Bench"), set(2, "Squat"), set(3, "Bench"), set(4, "Row")}
	groups := GroupSets(flat)

	require.Len(t, groups, 3)
	assert.Equal(t, "Bench", groups[0].Exercise)
	assert.Equal(t, []int64{1, 3}, ids(groups[0].Sets))
	assert.Equal(t, "Squat", groups[1].Exercise)
	assert.Equal(t, "Row", groups[2].Exercise)
}

func TestGroupFlattenContiguous(t *testing.T) {
	flat := []store.Set{set(1, "A"), set(2, "A"), set(3, "B"), set(4, "C"), set(5, "C")}
	assert.Equal(t, flat, Flatten(GroupSets(flat)))
}

func TestGroupSetsEmpty(t *testing.T) {
	assert.Empty(t, GroupSets(nil))
	assert.Empty(t, Flatten(nil))
}

func TestPositions(t *testing.T) {
	groups := []Group{
		{Exercise: "A", Sets: []store.Set{set(10, "A"), set(11, "A")}},
		{Exercise: "B", Sets: []store.Set{set(20, "B")}},
	}
	assert.Equal(t, []store.Position{{ID: 20, Position: 2}}, Positions(groups, ScopeGroup, "B"))
	assert.Equal(t, []store.Position{
		{ID: 10, Position: 0}, {ID: 11, Position: 1}, {ID: 20, Position: 2},
	}, Positions(groups, ScopeWorkout, "B"))
}

func TestMove(t *testing.T) {
	tests := []struct {
		name     string
		from, to int
		want     []string
	}{
		{"last to first", 2, 0, []string{"C", "A", "B"}},
		{"first to last", 0, 2, []string{"B", "C", "A"}},
		{"adjacent", 1, 2, []string{"A", "C", "B"}},
		{"same", 1, 1, []string{"A", "B", "C"}},
		{"out of range", 3, 0, []string{"A", "B", "C"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := []string{"A", "B", "C"}
			assert.Equal(t, tt.want, Move(in, tt.from, tt.to))
			assert.Equal(t, []string{"A", "B", "C"}, in, "input must not change")
		})
	}
}

func TestParseScope(t *testing.T) {
	s, err := ParseScope("workout")
	require.NoError(t, err)
	assert.Equal(t, ScopeWorkout, s)

	s, err = ParseScope("")
	require.NoError(t, err)
	assert.Equal(t, ScopeGroup, s)

	_, err = ParseScope("global")
	assert.ErrorIs(t, err, ErrUnknownScope)
}

// ============================================================
// Failure propagation
// ============================================================

type failingRepo struct {
	sets []store.Set
	err  error
}

func (r *failingRepo) ListSets(int64) ([]store.Set, error) { return r.sets, nil }
func (r *failingRepo) AddSet(int64, int64, store.SetData) (*store.Set, error) {
	return nil, r.err
}
func (r *failingRepo) DeleteSet(int64) error { return r.err }
func (r *failingRepo) UpdateSetPositions([]store.Position) error { return r.err }

func TestRepositoryErrorsSurface(t *testing.T) {
	boom := errors.New("disk full")
	repo := &failingRepo{sets: []store.Set{set(1, "A"), set(2, "A")}, err: boom}
	e := New(repo, ScopeGroup)
	require.NoError(t, e.Load(1))

	assert.ErrorIs(t, e.Reorder("A", 0, 1), boom)
	assert.ErrorIs(t, e.Delete(1), boom)
	_, err := e.Append(1, store.SetData{})
	assert.ErrorIs(t, err, boom)

	// The projection is untouched by a failed write.
	assert.Equal(t, []int64{1, 2}, ids(e.Flat()))
}

package tui

import (
	"time"

	"github.com/sadopc/liftlog/internal/store"
)

// sessionModel tracks the active workout and its running clock.
type sessionModel struct {
	store *store.Store
	now   func() time.Time

	workout *store.Workout
	elapsed time.Duration
}

func newSessionModel(s *store.Store) sessionModel {
	return sessionModel{store: s, now: time.Now}
}

// restore attaches to a workout that was left in progress.
func (t *sessionModel) restore(w *store.Workout) {
	t.workout = w
	t.tick()
}

func (t *sessionModel) start() error {
	w, err := t.store.StartWorkout(t.now())
	if err != nil {
		return err
	}
	t.workout = w
	t.elapsed = 0
	return nil
}

// finish stamps the end time. A stopped session returns nil.
func (t *sessionModel) finish() (*store.Workout, error) {
	if t.workout == nil {
		return nil, nil
	}
	w, err := t.store.FinishWorkout(t.workout.ID, t.now())
	if err != nil {
		return nil, err
	}
	t.workout = nil
	t.elapsed = 0
	return w, nil
}

// clear drops a session whose workout no longer exists.
func (t *sessionModel) clear() {
	t.workout = nil
	t.elapsed = 0
}

func (t *sessionModel) tick() {
	if t.workout != nil {
		t.elapsed = t.now().Sub(t.workout.StartTime)
	}
}

func (t sessionModel) running() bool {
	return t.workout != nil
}

func (t sessionModel) workoutID() int64 {
	if t.workout == nil {
		return 0
	}
	return t.workout.ID
}

func (t sessionModel) currentElapsed() time.Duration {
	if t.workout == nil {
		return 0
	}
	return t.now().Sub(t.workout.StartTime)
}

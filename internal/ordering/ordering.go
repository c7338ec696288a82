// Package ordering keeps the sets of one workout in a single flat order while
// presenting them grouped by exercise.
package ordering

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/sadopc/liftlog/internal/store"
)

var (
	ErrUnknownGroup    = errors.New("no such exercise group")
	ErrIndexOutOfRange = errors.New("set index out of range")
	ErrNoWorkoutLoaded = errors.New("no workout loaded")
	ErrUnknownScope    = errors.New("unknown reorder scope")
)

// Repository is the slice of the store the engine needs.
type Repository interface {
	ListSets(workoutID int64) ([]store.Set, error)
	AddSet(workoutID, exerciseID int64, data store.SetData) (*store.Set, error)
	DeleteSet(id int64) error
	UpdateSetPositions(positions []store.Position) error
}

// Scope selects which rows a reorder writes back.
type Scope string

const (
	// ScopeGroup persists only the sets of the reordered group. Sets in other
	// groups keep their stored positions even if the flattened index differs.
	ScopeGroup Scope = "group"
	// ScopeWorkout persists the flattened index of every set in the workout.
	ScopeWorkout Scope = "workout"
)

func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGroup, "":
		return ScopeGroup, nil
	case ScopeWorkout:
		return ScopeWorkout, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownScope, s)
}

// Group is the contiguous run of sets belonging to one exercise name.
type Group struct {
	Exercise string
	Sets     []store.Set
}

// Engine is a screen-local projection of one workout's sets. It never caches
// across mutations: every change is followed by a full reload.
type Engine struct {
	repo      Repository
	scope     Scope
	workoutID int64
	loaded    bool
	flat      []store.Set
	groups    []Group
}

func New(repo Repository, scope Scope) *Engine {
	if scope == "" {
		scope = ScopeGroup
	}
	return &Engine{repo: repo, scope: scope}
}

func (e *Engine) Scope() Scope { return e.scope }
func (e *Engine) WorkoutID() int64 { return e.workoutID }
func (e *Engine) Flat() []store.Set { return e.flat }
func (e *Engine) Groups() []Group { return e.groups }

// Load fetches the workout's sets and rebuilds the grouped view.
func (e *Engine) Load(workoutID int64) error {
	sets, err := e.repo.ListSets(workoutID)
	if err != nil {
		return err
	}
	e.workoutID = workoutID
	e.loaded = true
	e.flat = sets
	e.groups = GroupSets(sets)
	return nil
}

func (e *Engine) reload() error {
	return e.Load(e.workoutID)
}

// Group returns the group for an exercise name.
func (e *Engine) Group(exercise string) (Group, bool) {
	for _, g := range e.groups {
		if g.Exercise == exercise {
			return g, true
		}
	}
	return Group{}, false
}

// Append logs a new set at the end of the workout and reloads.
func (e *Engine) Append(exerciseID int64, data store.SetData) (*store.Set, error) {
	if !e.loaded {
		return nil, ErrNoWorkoutLoaded
	}
	set, err := e.repo.AddSet(e.workoutID, exerciseID, data)
	if err != nil {
		return nil, err
	}
	return set, e.reload()
}

// Delete removes a set and reloads. Remaining positions are not renumbered.
func (e *Engine) Delete(setID int64) error {
	if !e.loaded {
		return ErrNoWorkoutLoaded
	}
	if err := e.repo.DeleteSet(setID); err != nil {
		return err
	}
	return e.reload()
}

// Reorder moves the set at index from to index to within the exercise's
// group, assigns every set its index in the rebuilt flat order and persists
// according to the engine's scope. A target past the end is clamped.
func (e *Engine) Reorder(exercise string, from, to int) error {
	if !e.loaded {
		return ErrNoWorkoutLoaded
	}
	gi := -1
	for i, g := range e.groups {
		if g.Exercise == exercise {
			gi = i
			break
		}
	}
	if gi < 0 {
		return fmt.Errorf("reorder %q: %w", exercise, ErrUnknownGroup)
	}
	n := len(e.groups[gi].Sets)
	if from < 0 || from >= n {
		return fmt.Errorf("reorder %q from %d: %w", exercise, from, ErrIndexOutOfRange)
	}
	to = clamp(to, 0, n-1)
	if from == to {
		return nil
	}

	groups := make([]Group, len(e.groups))
	copy(groups, e.groups)
	groups[gi] = Group{Exercise: exercise, Sets: Move(e.groups[gi].Sets, from, to)}

	positions := Positions(groups, e.scope, exercise)
	log.Debugf("reorder %q %d->%d: writing %d positions (scope %s)", exercise, from, to, len(positions), e.scope)
	if err := e.repo.UpdateSetPositions(positions); err != nil {
		return err
	}
	return e.reload()
}

// GroupSets derives groups from a flat ordered list in one pass. Groups
// appear in the order their exercise is first encountered and each keeps
// its sets in flat order.
func GroupSets(sets []store.Set) []Group {
	var groups []Group
	index := make(map[string]int)
	for _, s := range sets {
		i, ok := index[s.ExerciseName]
		if !ok {
			i = len(groups)
			index[s.ExerciseName] = i
			groups = append(groups, Group{Exercise: s.ExerciseName})
		}
		groups[i].Sets = append(groups[i].Sets, s)
	}
	return groups
}

// Flatten concatenates groups in order.
func Flatten(groups []Group) []store.Set {
	var flat []store.Set
	for _, g := range groups {
		flat = append(flat, g.Sets...)
	}
	return flat
}

// Positions assigns each set its 0-based index in the flattened groups and
// returns the updates to persist. With ScopeGroup only the sets of the named
// exercise are included.
func Positions(groups []Group, scope Scope, exercise string) []store.Position {
	var positions []store.Position
	idx := 0
	for _, g := range groups {
		for _, s := range g.Sets {
			if scope == ScopeWorkout || g.Exercise == exercise {
				positions = append(positions, store.Position{ID: s.ID, Position: idx})
			}
			idx++
		}
	}
	return positions
}

// Move returns a copy of items with the element at from moved to index to and
// the elements in between shifted by one slot. Out of range indexes return an
// unchanged copy.
func Move[T any](items []T, from, to int) []T {
	out := make([]T, len(items))
	copy(out, items)
	if from < 0 || from >= len(items) || to < 0 || to >= len(items) || from == to {
		return out
	}
	moved := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = moved
	return out
}

package tui

import (
	"time"

	"github.com/sadopc/liftlog/internal/store"
)

type restPhase int

const (
	restIdle restPhase = iota
	restRunning
	restDone
)

const restExtension = 30 * time.Second

// restModel counts down the pause between sets.
type restModel struct {
	store *store.Store
	now   func() time.Time

	phase     restPhase
	duration  time.Duration
	remaining time.Duration
	end       time.Time
}

func newRestModel(s *store.Store) restModel {
	m := restModel{store: s, now: time.Now}
	m.loadSettings()
	return m
}

func (r *restModel) loadSettings() {
	secs := r.store.SettingInt(store.SettingRestSeconds, 90)
	r.duration = time.Duration(secs) * time.Second
}

// start begins a countdown with the configured rest. Zero disables it.
func (r *restModel) start() {
	r.loadSettings()
	if r.duration <= 0 {
		r.phase = restIdle
		return
	}
	r.phase = restRunning
	r.remaining = r.duration
	r.end = r.now().Add(r.duration)
}

// tick advances the countdown and reports whether it just ran out.
func (r *restModel) tick() bool {
	if r.phase != restRunning {
		return false
	}
	r.remaining = r.end.Sub(r.now())
	if r.remaining <= 0 {
		r.remaining = 0
		r.phase = restDone
		return true
	}
	return false
}

func (r *restModel) extend() {
	if r.phase != restRunning {
		return
	}
	r.end = r.end.Add(restExtension)
	r.remaining = r.end.Sub(r.now())
}

func (r *restModel) skip() {
	r.phase = restIdle
	r.remaining = 0
}

func (r restModel) active() bool {
	return r.phase == restRunning
}

// progress is the elapsed fraction of the rest, 0 to 1.
func (r restModel) progress() float64 {
	if r.phase != restRunning || r.duration <= 0 {
		return 0
	}
	p := 1 - float64(r.remaining)/float64(r.duration)
	if p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

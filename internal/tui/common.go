package tui

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/liftlog/internal/store"
)

// viewState represents the currently active view.
type viewState int

const (
	viewWorkout viewState = iota
	viewExercises
	viewHistory
	viewStats
	viewSettings
)

var viewNames = []string{"Workout", "Exercises", "History", "Stats", "Settings"}

// --- Messages ---

type statusMsg struct {
	text    string
	isError bool
}

type tickMsg time.Time

type exportDoneMsg struct {
	path string
}

type importDoneMsg struct {
	path  string
	count int
	err   error
}

type workoutFinishedMsg struct {
	workout *store.Workout
}

// exercisesChangedMsg tells views holding an exercise list to reload it.
type exercisesChangedMsg struct{}

type settingsChangedMsg struct{}

type workoutDeletedMsg struct {
	id int64
}

// --- Helpers ---

// failed logs err and returns a command showing a short, generic toast.
func failed(action string, err error) tea.Cmd {
	log.Errorf("%s: %s", action, err)
	return func() tea.Msg {
		return statusMsg{text: "Could not " + action, isError: true}
	}
}

func status(text string) tea.Cmd {
	return func() tea.Msg { return statusMsg{text: text} }
}

func formatDuration(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// formatClock renders a countdown as MM:SS.
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type units struct {
	weight   string
	distance string
}

// formatSet renders the fields that apply to the set's exercise type.
func formatSet(s store.Set, u units) string {
	f := s.ExerciseType.Fields()
	var parts []string
	if f.Weight && f.Reps && s.Weight != nil && s.Reps != nil {
		parts = append(parts, fmt.Sprintf("%s %s × %d", formatNumber(*s.Weight), u.weight, *s.Reps))
	} else {
		if f.Weight && s.Weight != nil {
			parts = append(parts, formatNumber(*s.Weight)+" "+u.weight)
		}
		if f.Reps && s.Reps != nil {
			parts = append(parts, fmt.Sprintf("%d reps", *s.Reps))
		}
	}
	if f.Distance && s.Distance != nil {
		parts = append(parts, formatNumber(*s.Distance)+" "+u.distance)
	}
	if f.Duration && s.Duration != nil {
		parts = append(parts, formatNumber(*s.Duration)+" min")
	}
	if len(parts) == 0 {
		return "—"
	}
	return strings.Join(parts, "  ")
}

func formatSubSet(ss store.SubSet, u units) string {
	switch {
	case ss.Weight != nil && ss.Reps != nil:
		return fmt.Sprintf("%s %s × %d", formatNumber(*ss.Weight), u.weight, *ss.Reps)
	case ss.Weight != nil:
		return formatNumber(*ss.Weight) + " " + u.weight
	case ss.Reps != nil:
		return fmt.Sprintf("%d reps", *ss.Reps)
	}
	return "—"
}

// parseSubSets reads drop sets written as "60x8, 50x6" or "8, 6".
func parseSubSets(s string) ([]store.SubSet, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	var out []store.SubSet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		var ss store.SubSet
		weight, reps, hasWeight := strings.Cut(part, "x")
		if !hasWeight {
			reps, weight = weight, ""
		}
		if weight != "" {
			w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
			if err != nil || w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
				return nil, fmt.Errorf("bad weight in %q", part)
			}
			ss.Weight = &w
		}
		r, err := strconv.Atoi(strings.TrimSpace(reps))
		if err != nil || r < 0 {
			return nil, fmt.Errorf("bad reps in %q", part)
		}
		ss.Reps = &r
		out = append(out, ss)
	}
	return out, nil
}

func formatSubSets(subSets []store.SubSet) string {
	var parts []string
	for _, ss := range subSets {
		switch {
		case ss.Weight != nil && ss.Reps != nil:
			parts = append(parts, fmt.Sprintf("%sx%d", formatNumber(*ss.Weight), *ss.Reps))
		case ss.Reps != nil:
			parts = append(parts, strconv.Itoa(*ss.Reps))
		}
	}
	return strings.Join(parts, ", ")
}

// parseOptionalFloat returns nil for blank input.
func parseOptionalFloat(s string) (*float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, fmt.Errorf("enter a positive number")
	}
	return &v, nil
}

func parseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return nil, fmt.Errorf("enter a whole number")
	}
	return &v, nil
}

func floatString(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

func intString(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}

package tui

import (
	"fmt"
	"strings"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/exchange"
	"github.com/sadopc/liftlog/internal/ordering"
	"github.com/sadopc/liftlog/internal/store"
)

const historyLimit = 30

type historyMode int

const (
	historyList historyMode = iota
	historyDetail
	historyProgress
)

type historyModel struct {
	store  *store.Store
	width  int
	height int

	mode     historyMode
	workouts []store.Workout
	cursor   int
	groups   []ordering.Group
	units    units

	exercises []store.Exercise
	exCursor  int
	points    []store.HistoryPoint
	chart     barchart.Model

	formActive  bool
	form        *huh.Form
	formConfirm *bool
}

func newHistoryModel(s *store.Store) historyModel {
	confirm := false
	return historyModel{
		store:       s,
		units:       units{weight: "kg", distance: "km"},
		chart:       barchart.New(60, 10),
		formConfirm: &confirm,
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

type historyDataMsg struct {
	workouts  []store.Workout
	exercises []store.Exercise
	units     units
	err       error
}

type historyDetailMsg struct {
	sets []store.Set
	err  error
}

type historyProgressMsg struct {
	points []store.HistoryPoint
	err    error
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		workouts, err := h.store.ListRecentWorkouts(historyLimit)
		if err != nil {
			return historyDataMsg{err: err}
		}
		exercises, err := h.store.ListExercises()
		if err != nil {
			return historyDataMsg{err: err}
		}
		return historyDataMsg{
			workouts:  workouts,
			exercises: exercises,
			units: units{
				weight:   h.store.SettingOr(store.SettingWeightUnit, "kg"),
				distance: h.store.SettingOr(store.SettingDistanceUnit, "km"),
			},
		}
	}
}

func (h historyModel) loadDetail() tea.Cmd {
	if h.cursor >= len(h.workouts) {
		return nil
	}
	id := h.workouts[h.cursor].ID
	return func() tea.Msg {
		sets, err := h.store.ListSets(id)
		return historyDetailMsg{sets: sets, err: err}
	}
}

func (h historyModel) loadProgress() tea.Cmd {
	if h.exCursor >= len(h.exercises) {
		return nil
	}
	id := h.exercises[h.exCursor].ID
	return func() tea.Msg {
		points, err := h.store.ExerciseHistory(id)
		return historyProgressMsg{points: points, err: err}
	}
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	if h.formActive && h.form != nil {
		return h.updateForm(msg)
	}

	switch msg := msg.(type) {
	case historyDataMsg:
		if msg.err != nil {
			return h, failed("load history", msg.err)
		}
		h.workouts = msg.workouts
		h.exercises = msg.exercises
		h.units = msg.units
		if h.cursor >= len(h.workouts) {
			h.cursor = max(0, len(h.workouts)-1)
		}
		if h.exCursor >= len(h.exercises) {
			h.exCursor = max(0, len(h.exercises)-1)
		}
		switch h.mode {
		case historyDetail:
			return h, h.loadDetail()
		case historyProgress:
			return h, h.loadProgress()
		}
		return h, nil

	case historyDetailMsg:
		if msg.err != nil {
			return h, failed("load workout sets", msg.err)
		}
		h.groups = ordering.GroupSets(msg.sets)
		return h, nil

	case historyProgressMsg:
		if msg.err != nil {
			return h, failed("load exercise progress", msg.err)
		}
		h.points = msg.points
		h.buildChart()
		return h, nil

	case exercisesChangedMsg, settingsChangedMsg, workoutFinishedMsg, workoutDeletedMsg:
		return h, h.refresh()

	case tea.KeyMsg:
		switch h.mode {
		case historyDetail:
			if key.Matches(msg, keys.Back) {
				h.mode = historyList
			}
			return h, nil
		case historyProgress:
			return h.updateProgress(msg)
		}
		return h.updateList(msg)
	}
	return h, nil
}

func (h historyModel) updateList(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if h.cursor > 0 {
			h.cursor--
		}
	case key.Matches(msg, keys.Down):
		if h.cursor < len(h.workouts)-1 {
			h.cursor++
		}
	case key.Matches(msg, keys.Enter):
		if len(h.workouts) > 0 {
			h.mode = historyDetail
			h.groups = nil
			return h, h.loadDetail()
		}
	case key.Matches(msg, keys.Delete):
		if len(h.workouts) > 0 {
			return h.showDeleteConfirm()
		}
	case key.Matches(msg, keys.Progress):
		if len(h.exercises) == 0 {
			return h, status("No exercises yet")
		}
		h.mode = historyProgress
		return h, h.loadProgress()
	}
	return h, nil
}

func (h historyModel) updateProgress(msg tea.KeyMsg) (historyModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Left):
		if h.exCursor > 0 {
			h.exCursor--
			return h, h.loadProgress()
		}
	case key.Matches(msg, keys.Right):
		if h.exCursor < len(h.exercises)-1 {
			h.exCursor++
			return h, h.loadProgress()
		}
	case key.Matches(msg, keys.Back), key.Matches(msg, keys.Progress):
		h.mode = historyList
	}
	return h, nil
}

func (h historyModel) showDeleteConfirm() (historyModel, tea.Cmd) {
	w := h.workouts[h.cursor]
	*h.formConfirm = false
	h.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete the workout of %s?", w.Date)).
				Description("Its sets are deleted too.").
				Affirmative("Delete").
				Negative("Keep").
				Value(h.formConfirm),
		),
	).WithShowHelp(true)
	h.formActive = true
	return h, h.form.Init()
}

func (h historyModel) updateForm(msg tea.Msg) (historyModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			h.formActive = false
			h.form = nil
			return h, nil
		}
	}

	form, cmd := h.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		h.form = f
	}

	if h.form.State == huh.StateCompleted {
		h.formActive = false
		if !*h.formConfirm || h.cursor >= len(h.workouts) {
			return h, nil
		}
		w := h.workouts[h.cursor]
		if err := h.store.DeleteWorkout(w.ID); err != nil {
			return h, tea.Batch(failed("delete workout", err), h.refresh())
		}
		deleted := func() tea.Msg { return workoutDeletedMsg{id: w.ID} }
		return h, tea.Batch(deleted, status("Workout deleted"))
	}
	return h, cmd
}

// metric picks the value charted for an exercise type.
func metric(t store.ExerciseType, p store.HistoryPoint) (float64, string) {
	switch t {
	case store.TypeCardio:
		if p.MaxDistance != nil {
			return *p.MaxDistance, "distance"
		}
		return 0, "distance"
	case store.TypeBodyweight:
		if p.MaxReps != nil {
			return float64(*p.MaxReps), "reps"
		}
		return 0, "reps"
	case store.TypeBodyweightTimer:
		if p.MaxDuration != nil {
			return *p.MaxDuration, "minutes"
		}
		return 0, "minutes"
	}
	if p.MaxWeight != nil {
		return *p.MaxWeight, "weight"
	}
	return 0, "weight"
}

func (h *historyModel) buildChart() {
	chartWidth := max(20, h.width-8)
	chartHeight := 10
	if h.height > 30 {
		chartHeight = 14
	}
	h.chart = barchart.New(chartWidth, chartHeight)
	if h.exCursor >= len(h.exercises) {
		return
	}
	ex := h.exercises[h.exCursor]
	style := typeStyle(string(ex.Type))

	points := h.points
	// Keep the most recent dates that fit, about six columns per bar.
	if fit := chartWidth / 6; fit > 0 && len(points) > fit {
		points = points[len(points)-fit:]
	}
	var bars []barchart.BarData
	for _, p := range points {
		v, name := metric(ex.Type, p)
		bars = append(bars, barchart.BarData{
			Label:  p.Date[5:],
			Values: []barchart.BarValue{{Name: name, Value: v, Style: style}},
		})
	}
	h.chart.PushAll(bars)
	h.chart.Draw()
}

func (h historyModel) view() string {
	w := h.width - 4
	if h.formActive && h.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("History"), "", h.form.View()),
		)
	}
	switch h.mode {
	case historyDetail:
		return h.renderDetail(w)
	case historyProgress:
		return h.renderProgress(w)
	}
	return h.renderList(w)
}

func (h historyModel) renderList(w int) string {
	title := titleStyle.Render("History")
	if len(h.workouts) == 0 {
		return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, "", mutedStyle.Render("No workouts yet"),
		))
	}

	var rows []string
	rows = append(rows, title, "")
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-12s %-7s %-10s %-12s %s", "Date", "Start", "Duration", "Status", "Note")))
	for i, wo := range h.workouts {
		cursor := "  "
		style := normalItemStyle
		if i == h.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dur := exchange.FormatDuration(wo.Duration())
		state := successStyle.Render("✓ finished")
		if wo.Status == store.StatusInProgress {
			dur = "—"
			state = warningStyle.Render("● running ")
		}
		note := ""
		if wo.Note != nil {
			note = truncate(*wo.Note, max(10, w-54))
		}
		line := style.Render(fmt.Sprintf("%s%-12s %-7s %-10s ", cursor, wo.Date, wo.StartTime.Local().Format("15:04"), dur))
		rows = append(rows, line+state+"  "+mutedStyle.Render(note))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: details  d: delete  p: exercise progress"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (h historyModel) renderDetail(w int) string {
	if h.cursor >= len(h.workouts) {
		return ""
	}
	wo := h.workouts[h.cursor]
	title := titleStyle.Render(fmt.Sprintf("Workout %s", wo.Date))
	sub := subtitleStyle.Render(fmt.Sprintf("%s  %s", wo.StartTime.Local().Format("15:04"), exchange.FormatDuration(wo.Duration())))

	rows := []string{title, sub}
	if wo.Note != nil {
		rows = append(rows, mutedStyle.Render(*wo.Note))
	}
	if len(h.groups) == 0 {
		rows = append(rows, "", mutedStyle.Render("No sets logged"))
	}
	for _, g := range h.groups {
		rows = append(rows, "", groupHeaderStyle.Render(g.Exercise))
		for i, s := range g.Sets {
			rows = append(rows, fmt.Sprintf("  %2d. %s", i+1, formatSet(s, h.units)))
			for _, ss := range s.SubSets {
				rows = append(rows, mutedStyle.Render("       ↳ "+formatSubSet(ss, h.units)))
			}
		}
	}
	rows = append(rows, "", mutedStyle.Render("  esc: back"))
	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

func (h historyModel) renderProgress(w int) string {
	if h.exCursor >= len(h.exercises) {
		return ""
	}
	ex := h.exercises[h.exCursor]
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Progress"), "  ",
		typeStyle(string(ex.Type)).Render(ex.Name),
		mutedStyle.Render(fmt.Sprintf("  (%d/%d)", h.exCursor+1, len(h.exercises))),
	)

	var body string
	if len(h.points) == 0 {
		body = mutedStyle.Render("  No finished workouts with this exercise")
	} else {
		last := h.points[len(h.points)-1]
		v, name := metric(ex.Type, last)
		best := 0.0
		for _, p := range h.points {
			if pv, _ := metric(ex.Type, p); pv > best {
				best = pv
			}
		}
		summary := mutedStyle.Render(fmt.Sprintf("  latest %s %s on %s   best %s", name, formatNumber(v), last.Date, formatNumber(best)))
		body = lipgloss.JoinVertical(lipgloss.Left, h.chart.View(), "", summary)
	}

	nav := mutedStyle.Render("  ←/→: exercise  esc: back")
	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, header, "", body, "", nav))
}

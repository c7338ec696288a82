package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/ordering"
	"github.com/sadopc/liftlog/internal/store"
)

const (
	formLogSet  = "log"
	formEditSet = "edit"
	formNote    = "note"
)

type workoutModel struct {
	store     *store.Store
	scope     ordering.Scope
	engine    *ordering.Engine
	session   sessionModel
	rest      restModel
	restBar   progress.Model
	rowHeight int
	width     int
	height    int

	exercises []store.Exercise
	units     units
	cursor    int

	// Exercise picker state
	picking      bool
	pickerCursor int

	// Move mode: the set at moveFrom of moveGroup is being dragged by
	// moveOffset lines.
	moving     bool
	moveGroup  string
	moveFrom   int
	moveOffset int

	formActive   bool
	form         *huh.Form
	formKind     string
	formExercise store.Exercise
	editingID    int64
	previous     []store.Set

	// Form field pointers (survive value copies)
	formWeight   *string
	formReps     *string
	formDistance *string
	formDuration *string
	formSubSets  *string
	formNote     *string
}

func newWorkoutModel(s *store.Store, scope ordering.Scope, rowHeight int) workoutModel {
	weight, reps, distance, duration, subSets, note := "", "", "", "", "", ""
	if rowHeight < 1 {
		rowHeight = 1
	}
	return workoutModel{
		store:        s,
		scope:        scope,
		engine:       ordering.New(s, scope),
		session:      newSessionModel(s),
		rest:         newRestModel(s),
		restBar:      progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage()),
		rowHeight:    rowHeight,
		units:        units{weight: "kg", distance: "km"},
		formWeight:   &weight,
		formReps:     &reps,
		formDistance: &distance,
		formDuration: &duration,
		formSubSets:  &subSets,
		formNote:     &note,
	}
}

func (w workoutModel) Init() tea.Cmd {
	return w.loadData()
}

func (w *workoutModel) setSize(width, height int) {
	w.width = width
	w.height = height
	w.restBar.Width = max(10, width-16)
}

func (w workoutModel) isRunning() bool { return w.session.running() }
func (w workoutModel) isResting() bool { return w.rest.active() }

type workoutDataMsg struct {
	active    *store.Workout
	exercises []store.Exercise
	units     units
	err       error
}

func (w workoutModel) loadData() tea.Cmd {
	return func() tea.Msg {
		active, err := w.store.GetActiveWorkout()
		if err != nil {
			return workoutDataMsg{err: err}
		}
		exercises, err := w.store.ListExercises()
		if err != nil {
			return workoutDataMsg{err: err}
		}
		return workoutDataMsg{
			active:    active,
			exercises: exercises,
			units: units{
				weight:   w.store.SettingOr(store.SettingWeightUnit, "kg"),
				distance: w.store.SettingOr(store.SettingDistanceUnit, "km"),
			},
		}
	}
}

// rows is the display order: groups in encounter order, each group's sets
// contiguous.
func (w workoutModel) rows() []store.Set {
	if !w.session.running() {
		return nil
	}
	return ordering.Flatten(w.engine.Groups())
}

// locate maps a display row to its group name and index within the group.
func (w workoutModel) locate(row int) (string, int, bool) {
	for _, g := range w.engine.Groups() {
		if row < len(g.Sets) {
			return g.Exercise, row, true
		}
		row -= len(g.Sets)
	}
	return "", 0, false
}

func (w workoutModel) selected() (store.Set, bool) {
	rows := w.rows()
	if w.cursor < 0 || w.cursor >= len(rows) {
		return store.Set{}, false
	}
	return rows[w.cursor], true
}

func (w *workoutModel) focusSet(id int64) {
	for i, s := range w.rows() {
		if s.ID == id {
			w.cursor = i
			return
		}
	}
	w.clampCursor()
}

func (w *workoutModel) clampCursor() {
	n := len(w.rows())
	if w.cursor >= n {
		w.cursor = max(0, n-1)
	}
	if w.cursor < 0 {
		w.cursor = 0
	}
}

func (w workoutModel) reload() (workoutModel, tea.Cmd) {
	if !w.session.running() {
		return w, nil
	}
	if err := w.engine.Load(w.session.workoutID()); err != nil {
		return w, failed("load sets", err)
	}
	w.clampCursor()
	return w, nil
}

func (w workoutModel) update(msg tea.Msg) (workoutModel, tea.Cmd) {
	if w.formActive && w.form != nil {
		return w.updateForm(msg)
	}

	switch msg := msg.(type) {
	case workoutDataMsg:
		if msg.err != nil {
			return w, failed("load workout", msg.err)
		}
		w.exercises = msg.exercises
		w.units = msg.units
		switch {
		case msg.active != nil:
			w.session.restore(msg.active)
		case w.session.running():
			w.session.clear()
			w.rest.skip()
			w.engine = ordering.New(w.store, w.scope)
			w.cursor = 0
			w.moving = false
			w.picking = false
		}
		return w.reload()

	case exercisesChangedMsg, settingsChangedMsg, workoutDeletedMsg:
		return w, w.loadData()

	case tickMsg:
		w.session.tick()
		if w.rest.tick() {
			return w, status("Rest is over \a")
		}
		return w, nil

	case tea.KeyMsg:
		if w.picking {
			return w.updatePicker(msg)
		}
		if w.moving {
			return w.updateMove(msg)
		}
		return w.updateList(msg)
	}
	return w, nil
}

func (w workoutModel) updateList(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Start):
		if w.session.running() {
			return w, status("A workout is already in progress")
		}
		if err := w.session.start(); err != nil {
			return w, failed("start workout", err)
		}
		w.engine = ordering.New(w.store, w.scope)
		w.cursor = 0
		var cmd tea.Cmd
		w, cmd = w.reload()
		return w, tea.Batch(cmd, status("Workout started"))

	case key.Matches(msg, keys.Finish):
		if !w.session.running() {
			return w, status("No workout in progress")
		}
		done, err := w.session.finish()
		if err != nil {
			return w, failed("finish workout", err)
		}
		w.rest.skip()
		w.engine = ordering.New(w.store, w.scope)
		w.cursor = 0
		return w, func() tea.Msg { return workoutFinishedMsg{workout: done} }

	case key.Matches(msg, keys.New):
		if !w.session.running() {
			return w, status("Press s to start a workout first")
		}
		if len(w.exercises) == 0 {
			return w, status("No exercises yet. Press 2 to add one.")
		}
		if len(w.exercises) == 1 {
			return w.showSetForm(w.exercises[0], nil)
		}
		w.picking = true
		w.pickerCursor = 0
		return w, nil

	case key.Matches(msg, keys.Up):
		if w.cursor > 0 {
			w.cursor--
		}
	case key.Matches(msg, keys.Down):
		if w.cursor < len(w.rows())-1 {
			w.cursor++
		}

	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		set, ok := w.selected()
		if !ok {
			return w, nil
		}
		ex := store.Exercise{ID: set.ExerciseID, Name: set.ExerciseName, Type: set.ExerciseType}
		return w.showSetForm(ex, &set)

	case key.Matches(msg, keys.Delete):
		set, ok := w.selected()
		if !ok {
			return w, nil
		}
		if err := w.engine.Delete(set.ID); err != nil {
			w, _ = w.reload()
			return w, failed("delete set", err)
		}
		w.clampCursor()
		return w, status("Set deleted")

	case key.Matches(msg, keys.Move):
		group, idx, ok := w.locate(w.cursor)
		if !ok {
			return w, nil
		}
		if g, _ := w.engine.Group(group); len(g.Sets) < 2 {
			return w, status("Nothing to reorder in " + group)
		}
		w.moving = true
		w.moveGroup = group
		w.moveFrom = idx
		w.moveOffset = 0
		return w, nil

	case key.Matches(msg, keys.Note):
		if !w.session.running() {
			return w, nil
		}
		return w.showNoteForm()

	case key.Matches(msg, keys.Skip):
		w.rest.skip()
	case key.Matches(msg, keys.Right):
		w.rest.extend()
	}
	return w, nil
}

func (w workoutModel) updatePicker(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if w.pickerCursor > 0 {
			w.pickerCursor--
		}
	case key.Matches(msg, keys.Down):
		if w.pickerCursor < len(w.exercises)-1 {
			w.pickerCursor++
		}
	case key.Matches(msg, keys.Enter):
		w.picking = false
		if w.pickerCursor < len(w.exercises) {
			return w.showSetForm(w.exercises[w.pickerCursor], nil)
		}
	case key.Matches(msg, keys.Back):
		w.picking = false
	}
	return w, nil
}

// moveTarget is where the dragged set would land right now.
func (w workoutModel) moveTarget() int {
	g, _ := w.engine.Group(w.moveGroup)
	return ordering.DropTarget(w.moveFrom, float64(w.moveOffset), float64(w.rowHeight), len(g.Sets))
}

func (w workoutModel) updateMove(msg tea.KeyMsg) (workoutModel, tea.Cmd) {
	g, _ := w.engine.Group(w.moveGroup)
	switch {
	case key.Matches(msg, keys.Up):
		if w.moveTarget() > 0 || w.moveOffset > 0 {
			w.moveOffset--
		}
	case key.Matches(msg, keys.Down):
		if w.moveTarget() < len(g.Sets)-1 || w.moveOffset < 0 {
			w.moveOffset++
		}
	case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Move):
		w.moving = false
		to := w.moveTarget()
		if to == w.moveFrom || w.moveFrom >= len(g.Sets) {
			return w, nil
		}
		movedID := g.Sets[w.moveFrom].ID
		if err := w.engine.Reorder(w.moveGroup, w.moveFrom, to); err != nil {
			w, _ = w.reload()
			return w, failed("reorder sets", err)
		}
		w.focusSet(movedID)
		return w, nil
	case key.Matches(msg, keys.Back):
		w.moving = false
	}
	return w, nil
}

func (w workoutModel) showSetForm(ex store.Exercise, existing *store.Set) (workoutModel, tea.Cmd) {
	w.formExercise = ex
	w.formKind = formLogSet
	w.editingID = 0
	*w.formWeight, *w.formReps, *w.formDistance, *w.formDuration, *w.formSubSets = "", "", "", "", ""
	if existing != nil {
		w.formKind = formEditSet
		w.editingID = existing.ID
		*w.formWeight = floatString(existing.Weight)
		*w.formReps = intString(existing.Reps)
		*w.formDistance = floatString(existing.Distance)
		*w.formDuration = floatString(existing.Duration)
		*w.formSubSets = formatSubSets(existing.SubSets)
	}

	prev, err := w.store.PreviousSets(ex.ID, w.session.workoutID())
	if err != nil {
		return w, failed("load previous sets", err)
	}
	w.previous = prev

	floatCheck := func(s string) error { _, err := parseOptionalFloat(s); return err }
	intCheck := func(s string) error { _, err := parseOptionalInt(s); return err }

	f := ex.Type.Fields()
	var fields []huh.Field
	if f.Weight {
		fields = append(fields, huh.NewInput().Title("Weight ("+w.units.weight+")").Value(w.formWeight).Validate(floatCheck))
	}
	if f.Reps {
		fields = append(fields, huh.NewInput().Title("Reps").Value(w.formReps).Validate(intCheck))
	}
	if f.Distance {
		fields = append(fields, huh.NewInput().Title("Distance ("+w.units.distance+")").Value(w.formDistance).Validate(floatCheck))
	}
	if f.Duration {
		fields = append(fields, huh.NewInput().Title("Duration (min)").Value(w.formDuration).Validate(floatCheck))
	}
	if f.Reps {
		fields = append(fields, huh.NewInput().
			Title("Drop sets").
			Description("optional, e.g. 60x8, 50x6").
			Value(w.formSubSets).
			Validate(func(s string) error { _, err := parseSubSets(s); return err }))
	}

	group := huh.NewGroup(fields...).Title(ex.Name)
	if len(prev) > 0 {
		var parts []string
		for _, p := range prev {
			parts = append(parts, formatSet(p, w.units))
		}
		group = group.Description("Last time: " + strings.Join(parts, ", "))
	}

	w.form = huh.NewForm(group).WithShowHelp(true).WithShowErrors(true)
	w.formActive = true
	return w, w.form.Init()
}

func (w workoutModel) showNoteForm() (workoutModel, tea.Cmd) {
	w.formKind = formNote
	*w.formNote = ""
	if w.session.workout != nil && w.session.workout.Note != nil {
		*w.formNote = *w.session.workout.Note
	}
	w.form = huh.NewForm(
		huh.NewGroup(
			huh.NewText().Title("Workout note").Value(w.formNote),
		),
	).WithShowHelp(true).WithShowErrors(true)
	w.formActive = true
	return w, w.form.Init()
}

var errEmptySet = errors.New("enter at least one value")

// setData converts the form fields into set values.
func (w workoutModel) setData() (store.SetData, error) {
	f := w.formExercise.Type.Fields()
	var data store.SetData
	var err error
	if f.Weight {
		if data.Weight, err = parseOptionalFloat(*w.formWeight); err != nil {
			return data, err
		}
	}
	if f.Reps {
		if data.Reps, err = parseOptionalInt(*w.formReps); err != nil {
			return data, err
		}
		if data.SubSets, err = parseSubSets(*w.formSubSets); err != nil {
			return data, err
		}
	}
	if f.Distance {
		if data.Distance, err = parseOptionalFloat(*w.formDistance); err != nil {
			return data, err
		}
	}
	if f.Duration {
		if data.Duration, err = parseOptionalFloat(*w.formDuration); err != nil {
			return data, err
		}
	}
	if data.Weight == nil && data.Reps == nil && data.Distance == nil && data.Duration == nil {
		return data, errEmptySet
	}
	return data, nil
}

func (w workoutModel) updateForm(msg tea.Msg) (workoutModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			w.formActive = false
			w.form = nil
			return w, nil
		}
	}

	form, cmd := w.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		w.form = f
	}

	if w.form.State == huh.StateCompleted {
		w.formActive = false
		return w.submitForm()
	}
	return w, cmd
}

func (w workoutModel) submitForm() (workoutModel, tea.Cmd) {
	switch w.formKind {
	case formNote:
		var note *string
		if n := strings.TrimSpace(*w.formNote); n != "" {
			note = &n
		}
		id := w.session.workoutID()
		if err := w.store.UpdateWorkoutNote(id, note); err != nil {
			return w, failed("save note", err)
		}
		if w.session.workout != nil {
			w.session.workout.Note = note
		}
		return w, status("Note saved")

	case formLogSet, formEditSet:
		data, err := w.setData()
		if err != nil {
			return w, func() tea.Msg { return statusMsg{text: err.Error(), isError: true} }
		}
		if w.formKind == formEditSet {
			if err := w.store.UpdateSet(w.editingID, data); err != nil {
				w, _ = w.reload()
				return w, failed("update set", err)
			}
			var cmd tea.Cmd
			w, cmd = w.reload()
			return w, tea.Batch(cmd, status("Set updated"))
		}
		set, err := w.engine.Append(w.formExercise.ID, data)
		if err != nil {
			w, _ = w.reload()
			return w, failed("log set", err)
		}
		w.focusSet(set.ID)
		w.rest.start()
		return w, status(fmt.Sprintf("Logged %s", w.formExercise.Name))
	}
	return w, nil
}

func (w workoutModel) view() string {
	if w.width < 20 {
		return "Terminal too small"
	}
	contentWidth := w.width - 4

	if w.formActive && w.form != nil {
		title := titleStyle.Render("Log Set")
		switch w.formKind {
		case formEditSet:
			title = titleStyle.Render("Edit Set")
		case formNote:
			title = titleStyle.Render("Workout Note")
		}
		return panelStyle.Width(contentWidth).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", w.form.View()),
		)
	}

	clock := w.renderClockPanel(contentWidth)
	var bottom string
	if w.picking {
		bottom = w.renderPicker(contentWidth)
	} else {
		bottom = w.renderSets(contentWidth)
	}
	return lipgloss.JoinVertical(lipgloss.Left, clock, bottom)
}

func (w workoutModel) renderClockPanel(width int) string {
	if !w.session.running() {
		content := lipgloss.JoinVertical(lipgloss.Center,
			clockStyle.Width(width-6).Render("00:00:00"),
			mutedStyle.Render("■  NO WORKOUT"),
			mutedStyle.Render("Press s to start a workout"),
		)
		return panelStyle.Width(width).Render(content)
	}

	lines := []string{
		clockRunningStyle.Width(width - 6).Render(formatDuration(w.session.currentElapsed())),
		successStyle.Render("●  IN PROGRESS") + mutedStyle.Render("  since "+w.session.workout.StartTime.Local().Format("15:04")),
	}
	if w.rest.active() {
		lines = append(lines,
			"",
			restStyle.Render("Rest "+formatClock(w.rest.remaining))+"  "+w.restBar.ViewAs(w.rest.progress()),
		)
	}
	if w.session.workout.Note != nil {
		lines = append(lines, mutedStyle.Render(truncate(*w.session.workout.Note, width-8)))
	}
	return activePanelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Center, lines...))
}

func (w workoutModel) renderSets(width int) string {
	title := titleStyle.Render("Sets")
	if !w.session.running() {
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No active workout"),
		))
	}
	groups := w.engine.Groups()
	if len(groups) == 0 {
		return panelStyle.Width(width).Render(lipgloss.JoinVertical(lipgloss.Left,
			title, mutedStyle.Render("No sets yet. Press n to log one."),
		))
	}

	var rows []string
	rows = append(rows, title)
	row := 0
	for _, g := range groups {
		rows = append(rows, "", groupHeaderStyle.Render(g.Exercise)+mutedStyle.Render(fmt.Sprintf("  %d sets", len(g.Sets))))

		sets := g.Sets
		dragging := w.moving && g.Exercise == w.moveGroup
		target := 0
		var draggedID int64
		original := make(map[int64]int, len(sets))
		if dragging {
			target = w.moveTarget()
			draggedID = sets[w.moveFrom].ID
			for i, s := range sets {
				original[s.ID] = i
			}
			sets = ordering.Move(sets, w.moveFrom, target)
		}

		for i, s := range sets {
			cursor := "  "
			style := normalItemStyle
			if !w.moving && row == w.cursor {
				cursor = "> "
				style = selectedItemStyle
			}
			marker := " "
			if dragging {
				switch {
				case s.ID == draggedID:
					cursor = "≡ "
					style = draggingStyle
				case ordering.Displacement(original[s.ID], w.moveFrom, target) < 0:
					marker = "↑"
				case ordering.Displacement(original[s.ID], w.moveFrom, target) > 0:
					marker = "↓"
				}
			}
			line := style.Render(fmt.Sprintf("%s%2d. %s", cursor, i+1, formatSet(s, w.units)))
			rows = append(rows, line+" "+mutedStyle.Render(marker))
			for _, ss := range s.SubSets {
				rows = append(rows, mutedStyle.Render("       ↳ "+formatSubSet(ss, w.units)))
			}
			row++
		}
	}

	rows = append(rows, "")
	if w.moving {
		rows = append(rows, mutedStyle.Render("  ↑/↓: drag  enter: drop  esc: cancel"))
	} else {
		rows = append(rows, mutedStyle.Render("  n: log set  e: edit  d: delete  m: move  o: note  f: finish"))
	}
	return panelStyle.Width(width).Render(strings.Join(rows, "\n"))
}

func (w workoutModel) renderPicker(width int) string {
	var rows []string
	rows = append(rows, titleStyle.Render("Select Exercise"))
	for i, ex := range w.exercises {
		cursor := "  "
		style := normalItemStyle
		if i == w.pickerCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		dot := typeStyle(string(ex.Type)).Render("●")
		rows = append(rows, style.Render(fmt.Sprintf("%s%s %s", cursor, dot, ex.Name)))
	}
	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  enter: select  esc: cancel"))
	return activePanelStyle.Width(width).Render(strings.Join(rows, "\n"))
}

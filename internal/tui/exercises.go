package tui

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/ordering"
	"github.com/sadopc/liftlog/internal/store"
)

var typeLabels = map[store.ExerciseType]string{
	store.TypeWeight:          "Weight",
	store.TypeCardio:          "Cardio",
	store.TypeBodyweight:      "Bodyweight",
	store.TypeBodyweightTimer: "Bodyweight (timed)",
}

var muscleGroups = []string{"", "Chest", "Back", "Shoulders", "Arms", "Legs", "Core", "Full body"}

type exercisesModel struct {
	store  *store.Store
	width  int
	height int

	exercises []store.Exercise
	cursor    int

	formActive bool
	form       *huh.Form
	formType   string // "new", "edit", "delete"

	// Form field pointers (survive value copies)
	formName    *string
	formKind    *string
	formMuscle  *string
	formPhoto   *string
	formConfirm *bool

	editingID int64
}

func newExercisesModel(s *store.Store) exercisesModel {
	name, kind, muscle, photo, confirm := "", string(store.TypeWeight), "", "", false
	return exercisesModel{
		store:       s,
		formName:    &name,
		formKind:    &kind,
		formMuscle:  &muscle,
		formPhoto:   &photo,
		formConfirm: &confirm,
	}
}

func (e *exercisesModel) setSize(w, h int) {
	e.width = w
	e.height = h
}

type exercisesDataMsg struct {
	exercises []store.Exercise
	err       error
}

func (e exercisesModel) refresh() tea.Cmd {
	return func() tea.Msg {
		exercises, err := e.store.ListExercises()
		return exercisesDataMsg{exercises: exercises, err: err}
	}
}

// changed tells every view, this one included, to reload exercises.
func (e exercisesModel) changed() tea.Cmd {
	return func() tea.Msg { return exercisesChangedMsg{} }
}

func (e exercisesModel) update(msg tea.Msg) (exercisesModel, tea.Cmd) {
	if e.formActive && e.form != nil {
		return e.updateForm(msg)
	}

	switch msg := msg.(type) {
	case exercisesDataMsg:
		if msg.err != nil {
			return e, failed("load exercises", msg.err)
		}
		e.exercises = msg.exercises
		if e.cursor >= len(e.exercises) {
			e.cursor = max(0, len(e.exercises)-1)
		}
		return e, nil

	case exercisesChangedMsg:
		return e, e.refresh()

	case tea.KeyMsg:
		return e.updateList(msg)
	}
	return e, nil
}

func (e exercisesModel) updateList(msg tea.KeyMsg) (exercisesModel, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if e.cursor > 0 {
			e.cursor--
		}
	case key.Matches(msg, keys.Down):
		if e.cursor < len(e.exercises)-1 {
			e.cursor++
		}
	case key.Matches(msg, keys.New):
		return e.showForm(nil)
	case key.Matches(msg, keys.Edit), key.Matches(msg, keys.Enter):
		if len(e.exercises) > 0 {
			ex := e.exercises[e.cursor]
			return e.showForm(&ex)
		}
	case key.Matches(msg, keys.Delete):
		if len(e.exercises) > 0 {
			return e.showDeleteConfirm()
		}
	case key.Matches(msg, keys.MoveUp):
		return e.move(-1)
	case key.Matches(msg, keys.MoveDown):
		return e.move(1)
	}
	return e, nil
}

// move shifts the selected exercise one slot and persists the whole order.
func (e exercisesModel) move(delta int) (exercisesModel, tea.Cmd) {
	to := e.cursor + delta
	if len(e.exercises) < 2 || to < 0 || to >= len(e.exercises) {
		return e, nil
	}
	reordered := ordering.Move(e.exercises, e.cursor, to)
	positions := make([]store.Position, len(reordered))
	for i, ex := range reordered {
		positions[i] = store.Position{ID: ex.ID, Position: i}
		reordered[i].Position = i
	}
	if err := e.store.UpdateExercisePositions(positions); err != nil {
		return e, tea.Batch(failed("reorder exercises", err), e.refresh())
	}
	e.exercises = reordered
	e.cursor = to
	return e, func() tea.Msg { return exercisesChangedMsg{} }
}

func validateName(s string) error {
	if strings.TrimSpace(s) == "" {
		return errors.New("name is required")
	}
	return nil
}

func (e exercisesModel) showForm(existing *store.Exercise) (exercisesModel, tea.Cmd) {
	*e.formName = ""
	*e.formKind = string(store.TypeWeight)
	*e.formMuscle = ""
	*e.formPhoto = ""
	e.formType = "new"
	e.editingID = 0
	if existing != nil {
		e.formType = "edit"
		e.editingID = existing.ID
		*e.formName = existing.Name
		*e.formKind = string(existing.Type)
		if existing.MuscleGroup != nil {
			*e.formMuscle = *existing.MuscleGroup
		}
		if existing.PhotoURI != nil {
			*e.formPhoto = *existing.PhotoURI
		}
	}

	kindOptions := make([]huh.Option[string], len(store.ExerciseTypes))
	for i, t := range store.ExerciseTypes {
		kindOptions[i] = huh.NewOption(typeLabels[t], string(t))
	}
	muscleOptions := make([]huh.Option[string], 0, len(muscleGroups)+1)
	for _, m := range muscleGroups {
		label := m
		if m == "" {
			label = "None"
		}
		muscleOptions = append(muscleOptions, huh.NewOption(label, m))
	}
	if !slices.Contains(muscleGroups, *e.formMuscle) {
		muscleOptions = append(muscleOptions, huh.NewOption(*e.formMuscle, *e.formMuscle))
	}

	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Exercise Name").Value(e.formName).Validate(validateName),
			huh.NewSelect[string]().Title("Type").Options(kindOptions...).Value(e.formKind),
			huh.NewSelect[string]().Title("Muscle Group").Options(muscleOptions...).Value(e.formMuscle),
			huh.NewInput().Title("Photo").Description("optional path or URL").Value(e.formPhoto),
		),
	).WithShowHelp(true).WithShowErrors(true)

	e.formActive = true
	return e, e.form.Init()
}

func (e exercisesModel) showDeleteConfirm() (exercisesModel, tea.Cmd) {
	ex := e.exercises[e.cursor]
	*e.formConfirm = false
	e.formType = "delete"
	e.editingID = ex.ID
	e.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %s?", ex.Name)).
				Description("Every set logged for it is deleted too.").
				Affirmative("Delete").
				Negative("Keep").
				Value(e.formConfirm),
		),
	).WithShowHelp(true)
	e.formActive = true
	return e, e.form.Init()
}

func (e exercisesModel) updateForm(msg tea.Msg) (exercisesModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			e.formActive = false
			e.form = nil
			return e, nil
		}
	}

	form, cmd := e.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		e.form = f
	}

	if e.form.State == huh.StateCompleted {
		e.formActive = false
		return e.submitForm()
	}
	return e, cmd
}

func (e exercisesModel) submitForm() (exercisesModel, tea.Cmd) {
	var muscle, photo *string
	if m := strings.TrimSpace(*e.formMuscle); m != "" {
		muscle = &m
	}
	if p := strings.TrimSpace(*e.formPhoto); p != "" {
		photo = &p
	}
	name := strings.TrimSpace(*e.formName)
	kind := store.ParseExerciseType(*e.formKind)

	switch e.formType {
	case "new":
		if validateName(name) != nil {
			return e, nil
		}
		ex, err := e.store.CreateExercise(name, kind, muscle)
		if err != nil {
			return e, failed("create exercise", err)
		}
		if photo != nil {
			ex.PhotoURI = photo
			if err := e.store.UpdateExercise(*ex); err != nil {
				return e, failed("save photo", err)
			}
		}
		e.cursor = len(e.exercises)
		return e, tea.Batch(e.changed(), status("Added "+name))

	case "edit":
		if validateName(name) != nil {
			return e, nil
		}
		ex := store.Exercise{ID: e.editingID, Name: name, Type: kind, MuscleGroup: muscle, PhotoURI: photo}
		if err := e.store.UpdateExercise(ex); err != nil {
			return e, failed("update exercise", err)
		}
		return e, e.changed()

	case "delete":
		if !*e.formConfirm {
			return e, nil
		}
		if err := e.store.DeleteExercise(e.editingID); err != nil {
			return e, failed("delete exercise", err)
		}
		return e, tea.Batch(e.changed(), status("Exercise deleted"))
	}
	return e, nil
}

func (e exercisesModel) view() string {
	w := e.width - 4
	if e.formActive && e.form != nil {
		title := titleStyle.Render("New Exercise")
		switch e.formType {
		case "edit":
			title = titleStyle.Render("Edit Exercise")
		case "delete":
			title = titleStyle.Render("Delete Exercise")
		}
		content := lipgloss.JoinVertical(lipgloss.Left, title, "", e.form.View())
		return panelStyle.Width(w).Render(content)
	}
	return e.renderList()
}

func (e exercisesModel) renderList() string {
	w := e.width - 4
	title := titleStyle.Render("Exercises")

	if len(e.exercises) == 0 {
		content := lipgloss.JoinVertical(lipgloss.Left,
			title,
			"",
			mutedStyle.Render("No exercises yet. Press n to create one."),
		)
		return panelStyle.Width(w).Render(content)
	}

	var rows []string
	rows = append(rows, title)
	rows = append(rows, "")

	header := mutedStyle.Render(fmt.Sprintf("  %-3s %-28s %-20s %-12s", "", "Name", "Type", "Muscle"))
	rows = append(rows, header)

	for i, ex := range e.exercises {
		dot := typeStyle(string(ex.Type)).Render("●")
		cursor := "  "
		style := normalItemStyle
		if i == e.cursor {
			cursor = "> "
			style = selectedItemStyle
		}
		muscle := ""
		if ex.MuscleGroup != nil {
			muscle = *ex.MuscleGroup
		}
		photo := ""
		if ex.PhotoURI != nil {
			photo = mutedStyle.Render(" ▣")
		}
		row := style.Render(fmt.Sprintf("%s%s %-28s %-20s %-12s", cursor, dot, truncate(ex.Name, 28), typeLabels[ex.Type], muscle))
		rows = append(rows, row+photo)
	}

	rows = append(rows, "")
	rows = append(rows, mutedStyle.Render("  n: new  e: edit  d: delete  K/J: move up/down"))

	return panelStyle.Width(w).Render(strings.Join(rows, "\n"))
}

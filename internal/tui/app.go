package tui

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	log "github.com/sirupsen/logrus"

	"github.com/sadopc/liftlog/internal/config"
	"github.com/sadopc/liftlog/internal/exchange"
	"github.com/sadopc/liftlog/internal/ordering"
	"github.com/sadopc/liftlog/internal/store"
)

// statusTTL is how long a status toast stays in the footer.
const statusTTL = 4 * time.Second

// Options tunes the workout screen.
type Options struct {
	Scope     ordering.Scope
	RowHeight int
	// ExportDir is where exports land; empty means the home directory.
	ExportDir string
}

type exchangeAction int

const (
	exchangeExportCSV exchangeAction = iota
	exchangeImportCSV
	exchangeBackupJSON
)

var exchangeLabels = []string{
	"Export exercises (CSV)",
	"Import exercises (CSV)",
	"Back up workouts (JSON)",
}

// App is the root Bubble Tea model.
type App struct {
	store  *store.Store
	opts   Options
	width  int
	height int

	activeView     viewState
	showHelp       bool
	exchangePicker bool
	exchangeCursor int

	importForm *huh.Form
	importPath *string

	workout   workoutModel
	exercises exercisesModel
	history   historyModel
	stats     statsModel
	settings  settingsModel

	help        help.Model
	status      string
	statusError bool
	statusAt    time.Time
}

func NewApp(s *store.Store, opts Options) App {
	h := help.New()
	h.ShowAll = false
	if opts.RowHeight < 1 {
		opts.RowHeight = 1
	}
	path := ""

	return App{
		store:      s,
		opts:       opts,
		activeView: viewWorkout,
		importPath: &path,
		workout:    newWorkoutModel(s, opts.Scope, opts.RowHeight),
		exercises:  newExercisesModel(s),
		history:    newHistoryModel(s),
		stats:      newStatsModel(s),
		settings:   newSettingsModel(s),
		help:       h,
	}
}

func (a App) Init() tea.Cmd {
	return tea.Batch(
		a.workout.Init(),
		tickCmd(),
	)
}

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.help.Width = msg.Width
		contentHeight := a.height - 4 // header + footer
		a.workout.setSize(a.width, contentHeight)
		a.exercises.setSize(a.width, contentHeight)
		a.history.setSize(a.width, contentHeight)
		a.stats.setSize(a.width, contentHeight)
		a.settings.setSize(a.width, contentHeight)
		return a, nil

	case tea.KeyMsg:
		if a.importForm != nil {
			return a.updateImportForm(msg)
		}
		if a.exchangePicker {
			return a.updateExchangePicker(msg)
		}

		// If a child view is capturing input (e.g. form), delegate first.
		if a.isFormActive() {
			return a.updateActiveView(msg)
		}

		switch {
		case key.Matches(msg, keys.Exchange):
			a.exchangePicker = true
			a.exchangeCursor = 0
			return a, nil
		case key.Matches(msg, keys.Quit):
			return a, tea.Quit
		case key.Matches(msg, keys.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		case key.Matches(msg, keys.Tab1):
			return a.switchTo(viewWorkout)
		case key.Matches(msg, keys.Tab2):
			return a.switchTo(viewExercises)
		case key.Matches(msg, keys.Tab3):
			return a.switchTo(viewHistory)
		case key.Matches(msg, keys.Tab4):
			return a.switchTo(viewStats)
		case key.Matches(msg, keys.Tab5):
			return a.switchTo(viewSettings)
		case key.Matches(msg, keys.Tab) && a.activeView != viewStats:
			return a.switchTo((a.activeView + 1) % viewState(len(viewNames)))
		}

	case tickMsg:
		cmds = append(cmds, tickCmd())
		// The session clock and rest countdown run on every tab.
		var cmd tea.Cmd
		a.workout, cmd = a.workout.update(msg)
		if cmd != nil {
			cmds = append(cmds, cmd)
		}
		if a.status != "" && time.Time(msg).Sub(a.statusAt) > statusTTL {
			a.status = ""
		}
		return a, tea.Batch(cmds...)

	case statusMsg:
		a.status = msg.text
		a.statusError = msg.isError
		a.statusAt = time.Now()
		return a, nil

	case exportDoneMsg:
		a.exchangePicker = false
		return a.Update(statusMsg{text: "Exported to " + msg.path})

	case importDoneMsg:
		a.exchangePicker = false
		text := fmt.Sprintf("Imported %d exercises from %s", msg.count, filepath.Base(msg.path))
		if msg.err != nil {
			log.Errorf("import exercises from %s: %s", msg.path, msg.err)
			text = fmt.Sprintf("Import stopped after %d exercises", msg.count)
		}
		next, cmd := a.Update(statusMsg{text: text, isError: msg.err != nil})
		if msg.count == 0 {
			return next, cmd
		}
		// Rows before a failure are already saved.
		return next, tea.Batch(cmd, func() tea.Msg { return exercisesChangedMsg{} })

	case exercisesChangedMsg, settingsChangedMsg, workoutFinishedMsg, workoutDeletedMsg:
		return a.broadcast(msg)
	}

	if a.importForm != nil {
		return a.updateImportForm(msg)
	}
	return a.updateActiveView(msg)
}

func (a App) switchTo(v viewState) (tea.Model, tea.Cmd) {
	a.activeView = v
	return a, a.refreshCurrentView()
}

// broadcast delivers a change notification to every view.
func (a App) broadcast(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd
	a.workout, cmd = a.workout.update(msg)
	cmds = append(cmds, cmd)
	a.exercises, cmd = a.exercises.update(msg)
	cmds = append(cmds, cmd)
	a.history, cmd = a.history.update(msg)
	cmds = append(cmds, cmd)
	a.stats, cmd = a.stats.update(msg)
	cmds = append(cmds, cmd)
	return a, tea.Batch(cmds...)
}

func (a App) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.activeView {
	case viewWorkout:
		a.workout, cmd = a.workout.update(msg)
	case viewExercises:
		a.exercises, cmd = a.exercises.update(msg)
	case viewHistory:
		a.history, cmd = a.history.update(msg)
	case viewStats:
		a.stats, cmd = a.stats.update(msg)
	case viewSettings:
		a.settings, cmd = a.settings.update(msg)
	}
	return a, cmd
}

// isFormActive reports whether the active view owns the keyboard.
func (a App) isFormActive() bool {
	switch a.activeView {
	case viewWorkout:
		return a.workout.formActive || a.workout.picking || a.workout.moving
	case viewExercises:
		return a.exercises.formActive
	case viewHistory:
		return a.history.formActive
	case viewSettings:
		return a.settings.formActive
	}
	return false
}

func (a App) refreshCurrentView() tea.Cmd {
	switch a.activeView {
	case viewWorkout:
		return a.workout.loadData()
	case viewExercises:
		return a.exercises.refresh()
	case viewHistory:
		return a.history.refresh()
	case viewStats:
		return a.stats.refresh()
	case viewSettings:
		return a.settings.refresh()
	}
	return nil
}

func (a App) View() string {
	if a.width == 0 {
		return "Loading..."
	}

	header := a.renderHeader()
	footer := a.renderFooter()

	var content string
	switch a.activeView {
	case viewWorkout:
		content = a.workout.view()
	case viewExercises:
		content = a.exercises.view()
	case viewHistory:
		content = a.history.view()
	case viewStats:
		content = a.stats.view()
	case viewSettings:
		content = a.settings.view()
	}

	headerHeight := lipgloss.Height(header)
	footerHeight := lipgloss.Height(footer)
	contentHeight := max(1, a.height-headerHeight-footerHeight)

	switch {
	case a.importForm != nil:
		content = a.renderImportForm()
	case a.exchangePicker:
		content = a.renderExchangePicker()
	}

	content = lipgloss.NewStyle().
		Width(a.width).
		Height(contentHeight).
		Render(content)

	return lipgloss.JoinVertical(lipgloss.Left, header, content, footer)
}

func (a App) renderHeader() string {
	var tabs []string
	for i, name := range viewNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if viewState(i) == a.activeView {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}

	tabRow := lipgloss.JoinHorizontal(lipgloss.Bottom, tabs...)

	title := lipgloss.NewStyle().Bold(true).Foreground(colorPrimary).Render("liftlog")
	gap := max(1, a.width-lipgloss.Width(title)-lipgloss.Width(tabRow)-4)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return headerStyle.Render(
		lipgloss.JoinHorizontal(lipgloss.Bottom, title, spacer, tabRow),
	)
}

func (a App) renderFooter() string {
	helpView := a.help.View(keys)

	status := ""
	if a.status != "" {
		if a.statusError {
			status = errorStyle.Render(" " + a.status)
		} else {
			status = mutedStyle.Render(" " + a.status)
		}
	}

	sessionInfo := ""
	if a.workout.isRunning() {
		sessionInfo = successStyle.Render(" ● " + formatDuration(a.workout.session.currentElapsed()))
	}
	if a.workout.isResting() {
		sessionInfo += restStyle.Render(" rest " + formatClock(a.workout.rest.remaining))
	}

	left := footerStyle.Render(helpView)
	right := sessionInfo + status

	gap := max(1, a.width-lipgloss.Width(left)-lipgloss.Width(right)-2)
	spacer := lipgloss.NewStyle().Width(gap).Render("")

	return lipgloss.JoinHorizontal(lipgloss.Bottom, left, spacer, right)
}

func (a App) renderExchangePicker() string {
	var rows []string
	rows = append(rows, titleStyle.Render("Import / Export"), "")
	for i, label := range exchangeLabels {
		cursor := "  "
		style := normalItemStyle
		if i == a.exchangeCursor {
			cursor = "> "
			style = selectedItemStyle
		}
		rows = append(rows, style.Render(cursor+label))
	}
	rows = append(rows, "", mutedStyle.Render("  enter: select  esc: cancel"))

	w := a.width - 4
	return activePanelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func (a App) updateExchangePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Up):
		if a.exchangeCursor > 0 {
			a.exchangeCursor--
		}
	case key.Matches(msg, keys.Down):
		if a.exchangeCursor < len(exchangeLabels)-1 {
			a.exchangeCursor++
		}
	case key.Matches(msg, keys.Enter):
		a.exchangePicker = false
		if exchangeAction(a.exchangeCursor) == exchangeImportCSV {
			return a.showImportForm()
		}
		return a, a.doExport(exchangeAction(a.exchangeCursor))
	case key.Matches(msg, keys.Back):
		a.exchangePicker = false
	}
	return a, nil
}

func (a App) exportDir() string {
	if a.opts.ExportDir != "" {
		return config.ExpandPath(a.opts.ExportDir)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	return home
}

func (a App) doExport(action exchangeAction) tea.Cmd {
	dir := a.exportDir()
	dateStr := time.Now().Format("2006-01-02")
	return func() tea.Msg {
		switch action {
		case exchangeBackupJSON:
			path := filepath.Join(dir, fmt.Sprintf("liftlog-workouts-%s.json", dateStr))
			if err := exchange.WorkoutsToJSON(a.store, path); err != nil {
				return failed("back up workouts", err)()
			}
			return exportDoneMsg{path: path}
		default:
			exercises, err := a.store.ListExercises()
			if err != nil {
				return failed("export exercises", err)()
			}
			path := filepath.Join(dir, fmt.Sprintf("liftlog-exercises-%s.csv", dateStr))
			if err := exchange.ExercisesToCSV(exercises, path); err != nil {
				return failed("export exercises", err)()
			}
			return exportDoneMsg{path: path}
		}
	}
}

func validateImportPath(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return errors.New("enter a file path")
	}
	info, err := os.Stat(config.ExpandPath(p))
	if err != nil {
		return errors.New("file not found")
	}
	if info.IsDir() {
		return errors.New("path is a directory")
	}
	return nil
}

func (a App) showImportForm() (tea.Model, tea.Cmd) {
	*a.importPath = ""
	a.importForm = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("CSV file to import").
				Description("Rows are added as new exercises").
				Placeholder("~/liftlog-exercises.csv").
				Validate(validateImportPath).
				Value(a.importPath),
		),
	).WithShowHelp(true).WithShowErrors(true)
	return a, a.importForm.Init()
}

func (a App) updateImportForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok && msg.String() == "esc" {
		a.importForm = nil
		return a, nil
	}

	form, cmd := a.importForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.importForm = f
	}

	if a.importForm.State == huh.StateCompleted {
		a.importForm = nil
		path := config.ExpandPath(strings.TrimSpace(*a.importPath))
		return a, func() tea.Msg {
			n, err := exchange.ImportExercisesCSV(path, a.store)
			return importDoneMsg{path: path, count: n, err: err}
		}
	}
	return a, cmd
}

func (a App) renderImportForm() string {
	w := a.width - 4
	return activePanelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render("Import exercises"), "", a.importForm.View()),
	)
}

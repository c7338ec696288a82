package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/multierr"

	"github.com/sadopc/liftlog/internal/store"
)

const maxRestSeconds = 3600

type settingsModel struct {
	store  *store.Store
	width  int
	height int

	settings   []store.Setting
	formActive bool
	form       *huh.Form

	// Form values as pointers (survive value copies)
	weightUnit   *string
	distanceUnit *string
	restSeconds  *string
}

func newSettingsModel(s *store.Store) settingsModel {
	wu, du, rs := "", "", ""
	return settingsModel{
		store:        s,
		weightUnit:   &wu,
		distanceUnit: &du,
		restSeconds:  &rs,
	}
}

func (s *settingsModel) setSize(w, h int) {
	s.width = w
	s.height = h
}

type settingsDataMsg struct {
	settings []store.Setting
	err      error
}

func (s settingsModel) refresh() tea.Cmd {
	return func() tea.Msg {
		settings, err := s.store.GetAllSettings()
		return settingsDataMsg{settings: settings, err: err}
	}
}

func (s settingsModel) update(msg tea.Msg) (settingsModel, tea.Cmd) {
	if s.formActive && s.form != nil {
		return s.updateForm(msg)
	}

	switch msg := msg.(type) {
	case settingsDataMsg:
		if msg.err != nil {
			return s, failed("load settings", msg.err)
		}
		s.settings = msg.settings
		return s, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Enter), key.Matches(msg, keys.Edit):
			return s.showForm()
		}
	}
	return s, nil
}

func validateRestSeconds(v string) error {
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return errors.New("enter whole seconds")
	}
	if n < 0 || n > maxRestSeconds {
		return fmt.Errorf("must be between 0 and %d", maxRestSeconds)
	}
	return nil
}

func (s settingsModel) showForm() (settingsModel, tea.Cmd) {
	*s.weightUnit = s.store.SettingOr(store.SettingWeightUnit, "kg")
	*s.distanceUnit = s.store.SettingOr(store.SettingDistanceUnit, "km")
	*s.restSeconds = strconv.Itoa(s.store.SettingInt(store.SettingRestSeconds, 90))

	s.form = huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().Title("Weight unit").
				Options(
					huh.NewOption("Kilograms (kg)", "kg"),
					huh.NewOption("Pounds (lb)", "lb"),
				).Value(s.weightUnit),
			huh.NewSelect[string]().Title("Distance unit").
				Options(
					huh.NewOption("Kilometres (km)", "km"),
					huh.NewOption("Miles (mi)", "mi"),
				).Value(s.distanceUnit),
		).Title("Units"),
		huh.NewGroup(
			huh.NewInput().Title("Rest between sets (seconds)").
				Description("0 turns the rest countdown off").
				Validate(validateRestSeconds).
				Value(s.restSeconds),
		).Title("Rest"),
	).WithShowHelp(true).WithShowErrors(true)

	s.formActive = true
	return s, s.form.Init()
}

func (s settingsModel) updateForm(msg tea.Msg) (settingsModel, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if msg.String() == "esc" {
			s.formActive = false
			s.form = nil
			return s, nil
		}
	}

	form, cmd := s.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		s.form = f
	}

	if s.form.State == huh.StateCompleted {
		s.formActive = false
		if err := s.saveSettings(); err != nil {
			return s, tea.Batch(failed("save settings", err), s.refresh())
		}
		return s, tea.Batch(s.refresh(), status("Settings saved"), func() tea.Msg { return settingsChangedMsg{} })
	}

	return s, cmd
}

func (s settingsModel) saveSettings() error {
	rest := strings.TrimSpace(*s.restSeconds)
	return multierr.Combine(
		s.store.SetSetting(store.SettingWeightUnit, *s.weightUnit),
		s.store.SetSetting(store.SettingDistanceUnit, *s.distanceUnit),
		s.store.SetSetting(store.SettingRestSeconds, rest),
	)
}

func (s settingsModel) view() string {
	w := s.width - 4
	title := titleStyle.Render("Settings")

	if s.formActive && s.form != nil {
		return panelStyle.Width(w).Render(
			lipgloss.JoinVertical(lipgloss.Left, title, "", s.form.View()),
		)
	}

	var rows []string
	rows = append(rows, title, "")
	for _, setting := range s.settings {
		label := lipgloss.NewStyle().Width(24).Render(settingLabel(setting.Key))
		value := highlightStyle.Render(formatSettingValue(setting.Key, setting.Value))
		rows = append(rows, fmt.Sprintf("  %s %s", label, value))
	}
	rows = append(rows, "", mutedStyle.Render("Press enter to edit settings"))

	return panelStyle.Width(w).Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func settingLabel(k string) string {
	switch k {
	case store.SettingWeightUnit:
		return "Weight unit"
	case store.SettingDistanceUnit:
		return "Distance unit"
	case store.SettingRestSeconds:
		return "Rest between sets"
	}
	return k
}

func formatSettingValue(k, v string) string {
	if k == store.SettingRestSeconds {
		if secs, err := strconv.Atoi(v); err == nil {
			if secs == 0 {
				return "off"
			}
			return formatClock(time.Duration(secs) * time.Second)
		}
	}
	return v
}

package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/liftlog/internal/store"
)

const statsMonths = 6

type statsMetric int

const (
	statsCount statsMetric = iota
	statsDuration
)

type statsModel struct {
	store  *store.Store
	now    func() time.Time
	width  int
	height int

	metric    statsMetric
	offset    int // months back from the current one
	summaries []store.MonthSummary

	chart barchart.Model
}

func newStatsModel(s *store.Store) statsModel {
	return statsModel{
		store: s,
		now:   time.Now,
		chart: barchart.New(60, 12),
	}
}

func (m *statsModel) setSize(w, h int) {
	m.width = w
	m.height = h
}

type statsDataMsg struct {
	summaries []store.MonthSummary
	err       error
}

// monthRange lists statsMonths YYYY-MM keys, oldest first, ending offset
// months before now.
func monthRange(now time.Time, offset int) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	last := first.AddDate(0, -offset, 0)
	months := make([]string, 0, statsMonths)
	for i := statsMonths - 1; i >= 0; i-- {
		months = append(months, last.AddDate(0, -i, 0).Format("2006-01"))
	}
	return months
}

func (m statsModel) refresh() tea.Cmd {
	months := monthRange(m.now(), m.offset)
	return func() tea.Msg {
		summaries, err := m.store.MonthlySummaries(months)
		return statsDataMsg{summaries: summaries, err: err}
	}
}

func (m statsModel) update(msg tea.Msg) (statsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case statsDataMsg:
		if msg.err != nil {
			return m, failed("load stats", msg.err)
		}
		m.summaries = msg.summaries
		m.buildChart()
		return m, nil

	case workoutFinishedMsg, workoutDeletedMsg:
		return m, m.refresh()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			m.offset++
			return m, m.refresh()
		case key.Matches(msg, keys.Right):
			if m.offset > 0 {
				m.offset--
			}
			return m, m.refresh()
		case key.Matches(msg, keys.Tab):
			if m.metric == statsCount {
				m.metric = statsDuration
			} else {
				m.metric = statsCount
			}
			m.buildChart()
			return m, nil
		}
	}
	return m, nil
}

func (m *statsModel) buildChart() {
	chartWidth := max(20, m.width-8)
	chartHeight := 12
	if m.height > 30 {
		chartHeight = 16
	}
	m.chart = barchart.New(chartWidth, chartHeight)

	style := lipgloss.NewStyle().Foreground(colorPrimary)
	name := "workouts"
	if m.metric == statsDuration {
		style = lipgloss.NewStyle().Foreground(colorSecondary)
		name = "minutes"
	}

	var bars []barchart.BarData
	for _, s := range m.summaries {
		v := float64(s.Count)
		if m.metric == statsDuration {
			v = s.AvgDuration
		}
		label := s.Month
		if t, err := time.Parse("2006-01", s.Month); err == nil {
			label = t.Format("Jan 06")
		}
		bars = append(bars, barchart.BarData{
			Label:  label,
			Values: []barchart.BarValue{{Name: name, Value: v, Style: style}},
		})
	}

	m.chart.PushAll(bars)
	m.chart.Draw()
}

func (m statsModel) view() string {
	w := m.width - 4

	countTab := inactiveTabStyle.Render("Workouts")
	durTab := inactiveTabStyle.Render("Avg duration")
	if m.metric == statsCount {
		countTab = activeTabStyle.Render("Workouts")
	} else {
		durTab = activeTabStyle.Render("Avg duration")
	}
	modeTabs := lipgloss.JoinHorizontal(lipgloss.Bottom, countTab, durTab)

	var rangeLabel string
	if len(m.summaries) > 0 {
		rangeLabel = mutedStyle.Render(fmt.Sprintf("%s to %s", m.summaries[0].Month, m.summaries[len(m.summaries)-1].Month))
	}

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("Stats"), "  ", modeTabs, "  ", rangeLabel,
	)

	nav := mutedStyle.Render("  ←/→: navigate  tab: switch metric")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", m.chart.View(), "", m.renderTable(w), "", nav,
		),
	)
}

func (m statsModel) renderTable(w int) string {
	total := 0
	for _, s := range m.summaries {
		total += s.Count
	}
	if total == 0 {
		return mutedStyle.Render("  No finished workouts in this period")
	}

	var rows []string
	rows = append(rows, mutedStyle.Render(fmt.Sprintf("  %-10s %10s %14s", "Month", "Workouts", "Avg duration")))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(w-6, 36))))
	for _, s := range m.summaries {
		avg := "—"
		if s.Count > 0 {
			avg = formatDuration(time.Duration(s.AvgDuration * float64(time.Minute)))
		}
		rows = append(rows, fmt.Sprintf("  %-10s %10d %14s", s.Month, s.Count, avg))
	}
	return strings.Join(rows, "\n")
}

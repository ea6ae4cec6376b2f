package plugins

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	plugindto "bookplus/internal/modules/plugin/dto"
	"bookplus/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Port is the minimal interface this view needs from the plugin use-case.
type Port interface {
	List(ctx context.Context) ([]plugindto.PluginInfo, error)
	Doctor(ctx context.Context) ([]plugindto.DoctorResult, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

type ListedMsg struct {
	Plugins []plugindto.PluginInfo
	Err     error
}

type DoctorDoneMsg struct {
	Results []plugindto.DoctorResult
	Err     error
}

// ─── list item ───────────────────────────────────────────────────────────────

type pluginItem struct{ info plugindto.PluginInfo }

func (i pluginItem) Title() string { return i.info.Name + " " + i.info.Version }
func (i pluginItem) Description() string {
	state := "disabled"
	if i.info.Enabled {
		state = "enabled"
	}
	return state + "  " + strings.Join(i.info.Capabilities, ", ")
}
func (i pluginItem) FilterValue() string { return i.info.Name }

// ─── model ───────────────────────────────────────────────────────────────────

// Model lists installed analyzer plugins and shows doctor reports.
type Model struct {
	port    Port
	list    list.Model
	output  viewport.Model
	spinner spinner.Model
	results []plugindto.DoctorResult
	loading bool
	width   int
	height  int
}

func New(port Port) Model {
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = delegate.Styles.SelectedTitle.
		Foreground(theme.Lavender).BorderForeground(theme.Lavender)
	delegate.Styles.SelectedDesc = delegate.Styles.SelectedDesc.
		Foreground(theme.Sapphire).BorderForeground(theme.Lavender)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Plugins"
	l.Styles.Title = theme.Title
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(false)

	vp := viewport.New(0, 0)
	vp.Style = lipgloss.NewStyle().
		Background(theme.Mantle).
		Foreground(theme.Text).
		Padding(1)
	vp.SetContent(theme.Muted.Render("d: run doctor"))

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)

	return Model{port: port, list: l, output: vp, spinner: sp}
}

func (m Model) Init() tea.Cmd {
	if m.port == nil {
		return nil
	}
	return m.listCmd()
}

// Filtering reports whether the list's search filter is active.
func (m Model) Filtering() bool {
	return m.list.FilterState() == list.Filtering
}

// RunDoctor checks every manifest and its plugin process.
func (m *Model) RunDoctor() tea.Cmd {
	if m.port == nil {
		return nil
	}
	m.loading = true
	port := m.port
	return tea.Batch(func() tea.Msg {
		results, err := port.Doctor(context.Background())
		return DoctorDoneMsg{Results: results, Err: err}
	}, m.spinner.Tick)
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(m.width*4/10, m.height)
		m.output.Width = m.width - m.width*4/10 - 4
		m.output.Height = m.height - 4

	case ListedMsg:
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error loading plugins: " + msg.Err.Error()))
			return m, nil
		}
		items := make([]list.Item, len(msg.Plugins))
		for i, p := range msg.Plugins {
			items[i] = pluginItem{info: p}
		}
		cmds = append(cmds, m.list.SetItems(items))

	case DoctorDoneMsg:
		m.loading = false
		if msg.Err != nil {
			m.output.SetContent(theme.Hot.Render("Error: " + msg.Err.Error()))
			return m, nil
		}
		m.results = msg.Results
		m.output.SetContent(m.renderResults())
		m.output.GotoTop()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
		return m, tea.Batch(cmds...)

	case tea.KeyMsg:
		if msg.String() == "d" && !m.Filtering() {
			cmd := m.RunDoctor()
			return m, cmd
		}
	}

	var lCmd, vCmd tea.Cmd
	m.list, lCmd = m.list.Update(msg)
	m.output, vCmd = m.output.Update(msg)
	cmds = append(cmds, lCmd, vCmd)
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	listW := m.width * 4 / 10
	listPane := lipgloss.NewStyle().Width(listW).Height(m.height).Render(m.list.View())
	body := m.output.View()
	if m.loading {
		body = m.spinner.View() + " Checking plugins…"
	}
	detailPane := lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).BorderForeground(theme.Surface1).
		Background(theme.Mantle).Width(max(m.width-listW-2, 1)).Height(max(m.height-2, 1)).
		Render(body)
	return lipgloss.JoinHorizontal(lipgloss.Top, listPane, detailPane)
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m Model) renderResults() string {
	if len(m.results) == 0 {
		return theme.Muted.Render("No plugins installed.")
	}
	var sb strings.Builder
	for _, r := range m.results {
		sb.WriteString(theme.Title.Render(r.Name) + "\n")
		sb.WriteString(fmt.Sprintf("  checksum %s  binary %s  lifecycle %s\n",
			mark(r.ChecksumValid), mark(r.BinaryReachable), mark(r.LifecycleOK)))
		if r.Error != "" {
			sb.WriteString(theme.Hot.Render("  "+r.Error) + "\n")
		}
	}
	return sb.String()
}

func mark(ok bool) string {
	if ok {
		return "ok"
	}
	return "FAIL"
}

func (m Model) listCmd() tea.Cmd {
	port := m.port
	return func() tea.Msg {
		plugins, err := port.List(context.Background())
		return ListedMsg{Plugins: plugins, Err: err}
	}
}

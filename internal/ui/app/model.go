package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bookplus/internal/modules/library/dto"
	plugindto "bookplus/internal/modules/plugin/dto"
	profiledto "bookplus/internal/modules/profile/dto"
	"bookplus/internal/modules/reading/domain"
	readingin "bookplus/internal/modules/reading/port/in"
	"bookplus/internal/platform/config"
	"bookplus/internal/ui/components"
	"bookplus/internal/ui/theme"
	libraryview "bookplus/internal/ui/views/library"
	pluginsview "bookplus/internal/ui/views/plugins"
	readerview "bookplus/internal/ui/views/reader"
)

// ─── ports ───────────────────────────────────────────────────────────────────
// Each port is the minimal interface that this orchestration layer requires.
// Sub-view ports are defined in their own packages and narrowed further.

type libraryPort interface {
	ListBooks(ctx context.Context) ([]dto.BookOutput, error)
	GetBook(ctx context.Context, id string) (dto.BookOutput, error)
}

type readingPort interface {
	Open(ctx context.Context, bookID, bookTitle string) (readingin.Surface, error)
}

type profilePort interface {
	Baseline(ctx context.Context, userKey string) (profiledto.BaselineOutput, error)
	Learn(ctx context.Context, userKey string) (profiledto.LearnOutput, error)
}

type pluginPort interface {
	List(ctx context.Context) ([]plugindto.PluginInfo, error)
	Doctor(ctx context.Context) ([]plugindto.DoctorResult, error)
}

// ─── tab index ───────────────────────────────────────────────────────────────

type tabID int

const (
	tabLibrary tabID = iota
	tabReader
	tabPlugins
	tabCount
)

var tabLabels = [tabCount]string{
	"Library", "Reader", "Plugins",
}

// ─── async messages ───────────────────────────────────────────────────────────

type baselineLoadedMsg struct {
	baseline profiledto.BaselineOutput
	err      error
}

type baselineLearnedMsg struct {
	out profiledto.LearnOutput
	err error
}

// ─── key bindings ─────────────────────────────────────────────────────────────

type keyMap struct {
	Tab     key.Binding
	Help    key.Binding
	Palette key.Binding
	Quit    key.Binding
	Enter   key.Binding
	Version key.Binding
	Pin     key.Binding
	Retry   key.Binding
	Refresh key.Binding
	Export  key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Tab:     key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next tab")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Palette: key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "palette")),
		Quit:    key.NewBinding(key.WithKeys("ctrl+c", "q"), key.WithHelp("q", "quit")),
		Enter:   key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "read book")),
		Version: key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "full/condensed/summary/auto")),
		Pin:     key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "pin full text")),
		Retry:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry failed")),
		Refresh: key.NewBinding(key.WithKeys("u"), key.WithHelp("u", "refresh variants")),
		Export:  key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export report")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Help, k.Palette, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.Enter},
		{k.Version, k.Pin, k.Retry, k.Refresh, k.Export},
		{k.Help, k.Palette, k.Quit},
	}
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model is the root Bubble Tea model. It owns tab routing, the help overlay
// and the command palette; reading state lives in the reader view.
type Model struct {
	userKey string

	profile profilePort

	libView    libraryview.Model
	readView   readerview.Model
	pluginView pluginsview.Model

	activeTab tabID
	keys      keyMap
	help      help.Model
	showHelp  bool
	palette   components.Palette
	baseline  profiledto.BaselineOutput
	startCmd  tea.Cmd
	quitting  bool
	status    string
	width     int
	height    int
}

// ─── constructor ─────────────────────────────────────────────────────────────

func NewModel(cfg config.Config, library libraryPort, reading readingPort, profile profilePort, plugin pluginPort) Model {
	return Model{
		userKey:    cfg.UserKey,
		profile:    profile,
		libView:    libraryview.New(library),
		readView:   readerview.New(reading),
		pluginView: pluginsview.New(plugin),
		activeTab:  tabLibrary,
		keys:       defaultKeys(),
		help:       help.New(),
		palette:    components.NewPalette(),
		status:     "ready",
	}
}

// OpenOnStart makes the program open bookID in the Reader tab as it starts.
func (m Model) OpenOnStart(bookID, title string) Model {
	m.startCmd = m.readView.Open(bookID, title)
	m.activeTab = tabReader
	return m
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.libView.Init(),
		m.pluginView.Init(),
		m.loadBaselineCmd(),
		m.startCmd,
	)
}

// ─── update ───────────────────────────────────────────────────────────────────

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	// The palette intercepts all input while open.
	if m.palette.Visible() {
		if _, ok := msg.(tea.KeyMsg); ok {
			var cmd tea.Cmd
			m.palette, cmd = m.palette.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.palette.SetWidth(min(m.width-4, 80))
		m.help.Width = m.width
		m.propagateSize()
		return m, nil

	case baselineLoadedMsg:
		if msg.err != nil {
			m.status = "baseline: " + msg.err.Error()
		} else {
			m.baseline = msg.baseline
		}
		return m, nil

	case baselineLearnedMsg:
		if msg.err != nil {
			m.status = "learn baseline: " + msg.err.Error()
			return m, nil
		}
		m.baseline = msg.out.Baseline
		if msg.out.Learned {
			m.status = fmt.Sprintf("baseline learned from %d patterns", msg.out.Samples)
		} else {
			m.status = fmt.Sprintf("not enough patterns to learn a baseline (%d)", msg.out.Samples)
		}
		return m, nil

	case components.PaletteSubmitMsg:
		return m.executePalette(msg.Input)

	case components.PaletteCancelMsg:
		m.status = "ready"
		return m, nil

	// Reader messages arrive from background commands and must reach the
	// reader view whichever tab is active.
	case readerview.OpenedMsg:
		if msg.Err != nil {
			m.status = "reader: " + msg.Err.Error()
		} else {
			m.status = "reading " + msg.Title
			m.activeTab = tabReader
		}
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		return m, cmd

	case readerview.ClosedMsg:
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		if m.quitting {
			return m, tea.Quit
		}
		return m, tea.Batch(cmd, m.libView.Reload(), m.loadBaselineCmd())

	case readerview.UnitLoadedMsg, readerview.VersionChangedMsg, readerview.AutosaveTickMsg,
		readerview.AutosavedMsg, readerview.ExportedMsg, readerview.RefreshedMsg:
		var cmd tea.Cmd
		m.readView, cmd = m.readView.Update(msg)
		return m, cmd

	case libraryview.BooksLoadedMsg, libraryview.DetailLoadedMsg:
		var cmd tea.Cmd
		m.libView, cmd = m.libView.Update(msg)
		return m, cmd

	case pluginsview.ListedMsg, pluginsview.DoctorDoneMsg:
		var cmd tea.Cmd
		m.pluginView, cmd = m.pluginView.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.showHelp {
			if msg.String() == "?" || msg.String() == "esc" {
				m.showHelp = false
			}
			return m, nil
		}

		// Yield to sub-view when its search filter is active.
		if m.subViewFiltering() {
			break
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m.quit()
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab + tabCount - 1) % tabCount
			return m, nil
		case "?":
			m.showHelp = !m.showHelp
			return m, nil
		case ":":
			cmd := m.palette.Open()
			return m, cmd
		case "enter":
			if m.activeTab == tabLibrary {
				if book, ok := m.libView.SelectedBook(); ok {
					cmd := m.readView.Open(book.ID, book.Title)
					return m, cmd
				}
			}
		}
	}

	// Propagate the message to the active tab's sub-view.
	var tabCmd tea.Cmd
	switch m.activeTab {
	case tabLibrary:
		m.libView, tabCmd = m.libView.Update(msg)
	case tabReader:
		m.readView, tabCmd = m.readView.Update(msg)
	case tabPlugins:
		m.pluginView, tabCmd = m.pluginView.Update(msg)
	}
	cmds = append(cmds, tabCmd)

	return m, tea.Batch(cmds...)
}

// quit closes an open reading session first so the final snapshot, report
// and session note are written before the program exits.
func (m Model) quit() (tea.Model, tea.Cmd) {
	if !m.readView.Active() {
		return m, tea.Quit
	}
	m.quitting = true
	m.status = "closing session…"
	cmd := m.readView.Close()
	return m, cmd
}

// ─── view ────────────────────────────────────────────────────────────────────

func (m Model) View() string {
	tabBar := m.renderTabBar()
	statusBar := m.renderStatusBar()
	tabBarH := lipgloss.Height(tabBar)
	statusBarH := lipgloss.Height(statusBar)

	contentH := m.height - tabBarH - statusBarH
	if contentH < 1 {
		contentH = 1
	}

	var content string
	switch {
	case m.showHelp:
		content = lipgloss.NewStyle().Width(m.width).Height(contentH).
			Render(m.help.View(m.keys))
	case m.palette.Visible():
		content = lipgloss.Place(m.width, contentH,
			lipgloss.Center, lipgloss.Center, m.palette.View())
	default:
		content = m.activeView()
	}

	return lipgloss.JoinVertical(lipgloss.Left, tabBar, content, statusBar)
}

func (m Model) activeView() string {
	switch m.activeTab {
	case tabLibrary:
		return m.libView.View()
	case tabReader:
		return m.readView.View()
	case tabPlugins:
		return m.pluginView.View()
	}
	return ""
}

func (m Model) renderTabBar() string {
	parts := make([]string, tabCount)
	for i := tabID(0); i < tabCount; i++ {
		label := tabLabels[i]
		if i == m.activeTab {
			parts[i] = theme.Hot.Render(" " + label + " ")
		} else {
			parts[i] = theme.Muted.Render(" " + label + " ")
		}
	}
	sep := theme.Muted.Render(" │ ")
	bar := "bookplus  " + strings.Join(parts, sep)
	return lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar) + "\n"
}

func (m Model) renderStatusBar() string {
	left := m.status
	if m.readView.Active() {
		left = theme.Hot.Render("● "+m.readView.SessionID()) + "  " + left
	}
	right := theme.Muted.Render(baselineLabel(m.baseline) + "  ?:help  tab:switch  :::palette  q:quit")
	gap := m.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}
	bar := left + strings.Repeat(" ", gap) + right
	return "\n" + lipgloss.NewStyle().Background(theme.Mantle).Width(m.width).Render(bar)
}

func baselineLabel(b profiledto.BaselineOutput) string {
	if b.NormalWPM == nil || b.SkimWPM == nil {
		return "baseline: default"
	}
	return fmt.Sprintf("baseline: %.0f/%.0f wpm", *b.NormalWPM, *b.SkimWPM)
}

// ─── palette execution ────────────────────────────────────────────────────────

func (m Model) executePalette(input string) (tea.Model, tea.Cmd) {
	if strings.TrimSpace(input) == "" {
		return m, nil
	}
	parts := strings.Fields(input)

	switch parts[0] {
	case "read":
		book, ok := m.libView.SelectedBook()
		if !ok {
			m.status = "no book selected"
			return m, nil
		}
		cmd := m.readView.Open(book.ID, book.Title)
		return m, cmd

	case "version":
		if len(parts) < 2 {
			m.status = "usage: version <full|condensed|summary|auto>"
			return m, nil
		}
		v, err := domain.ParseContentVersion(parts[1])
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		cmd := m.readView.SetVersion(v)
		return m, cmd

	case "pin":
		m.readView.PinTop()
		return m, nil

	case "retry":
		cmd := m.readView.RetryFailed()
		return m, cmd

	case "refresh":
		cmd := m.readView.Refresh()
		return m, cmd

	case "export":
		return m, m.readView.Export()

	case "close":
		cmd := m.readView.Close()
		return m, cmd

	case "baseline:learn":
		return m, m.learnBaselineCmd()

	case "plugin:doctor":
		m.activeTab = tabPlugins
		cmd := m.pluginView.RunDoctor()
		return m, cmd

	default:
		m.status = "unknown command: " + parts[0]
	}
	return m, nil
}

// ─── helpers ─────────────────────────────────────────────────────────────────

// subViewFiltering reports whether the active tab's list filter is open,
// in which case global key bindings must yield to allow free typing.
func (m Model) subViewFiltering() bool {
	switch m.activeTab {
	case tabLibrary:
		return m.libView.Filtering()
	case tabPlugins:
		return m.pluginView.Filtering()
	}
	return false
}

func (m *Model) propagateSize() {
	sz := tea.WindowSizeMsg{Width: m.width, Height: m.height - 3}
	m.libView, _ = m.libView.Update(sz)
	m.readView, _ = m.readView.Update(sz)
	m.pluginView, _ = m.pluginView.Update(sz)
}

// ─── async commands ───────────────────────────────────────────────────────────

func (m Model) loadBaselineCmd() tea.Cmd {
	if m.profile == nil {
		return nil
	}
	profile, user := m.profile, m.userKey
	return func() tea.Msg {
		baseline, err := profile.Baseline(context.Background(), user)
		return baselineLoadedMsg{baseline: baseline, err: err}
	}
}

func (m Model) learnBaselineCmd() tea.Cmd {
	if m.profile == nil {
		return nil
	}
	profile, user := m.profile, m.userKey
	return func() tea.Msg {
		out, err := profile.Learn(context.Background(), user)
		return baselineLearnedMsg{out: out, err: err}
	}
}

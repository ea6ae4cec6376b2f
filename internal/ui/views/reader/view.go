package reader

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bookplus/internal/modules/reading/domain"
	readingdto "bookplus/internal/modules/reading/dto"
	readingin "bookplus/internal/modules/reading/port/in"
	"bookplus/internal/ui/theme"
)

// ─── port ────────────────────────────────────────────────────────────────────

// Opener starts a reading session over a book.
type Opener interface {
	Open(ctx context.Context, bookID, bookTitle string) (readingin.Surface, error)
}

// ─── messages ────────────────────────────────────────────────────────────────

// OpenedMsg is sent once a surface is open and its unit count is known.
type OpenedMsg struct {
	Surface readingin.Surface
	Title   string
	Err     error
}

// UnitLoadedMsg reports the end of one unit load or retry.
type UnitLoadedMsg struct {
	SessionID string
	Index     int
	Err       error
}

type VersionChangedMsg struct {
	Version domain.ContentVersion
	Err     error
}

type RefreshedMsg struct{ Err error }

type AutosaveTickMsg struct{ SessionID string }

type AutosavedMsg struct {
	SessionID string
	Written   bool
	Err       error
}

type ExportedMsg struct {
	Out readingdto.ExportOutput
	Err error
}

// ClosedMsg is sent after the surface wrote its final snapshot and report.
type ClosedMsg struct {
	Out readingdto.CloseOutput
	Err error
}

var versionKeys = map[string]domain.ContentVersion{
	"1": domain.VersionFull,
	"2": domain.VersionCondensed,
	"3": domain.VersionSummary,
	"4": domain.VersionAuto,
}

// ─── model ───────────────────────────────────────────────────────────────────

// Model hosts one reading surface. It renders loaded units into a viewport and
// reports unit regions, the visible window and scroll positions back to the
// surface.
type Model struct {
	opener   Opener
	surface  readingin.Surface
	title    string
	viewport viewport.Model
	spinner  spinner.Model
	regions  []domain.Region
	// lastOffset is the scroll position last reported to the surface.
	lastOffset int
	status     string
	loading    bool
	width      int
	height     int
}

func New(opener Opener) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Lavender)
	return Model{
		opener:   opener,
		viewport: viewport.New(0, 0),
		spinner:  sp,
	}
}

// Init is a no-op: the reader is idle until Open is called.
func (m Model) Init() tea.Cmd { return nil }

// Active reports whether a session is open.
func (m Model) Active() bool { return m.surface != nil }

func (m Model) SessionID() string {
	if m.surface == nil {
		return ""
	}
	return m.surface.SessionID()
}

// Open closes the current session, if any, and starts one over bookID.
func (m *Model) Open(bookID, title string) tea.Cmd {
	m.loading = true
	m.status = ""
	previous := m.surface
	m.surface = nil
	m.regions = nil
	m.lastOffset = 0
	opener := m.opener
	open := func() tea.Msg {
		ctx := context.Background()
		if previous != nil {
			if _, err := previous.Close(ctx); err != nil {
				return OpenedMsg{Err: fmt.Errorf("close previous session: %w", err)}
			}
		}
		surface, err := opener.Open(ctx, bookID, title)
		if err != nil {
			return OpenedMsg{Err: err}
		}
		if err := surface.Init(ctx); err != nil {
			_, _ = surface.Close(ctx)
			return OpenedMsg{Err: err}
		}
		return OpenedMsg{Surface: surface, Title: title}
	}
	return tea.Batch(open, m.spinner.Tick)
}

// Close ends the session. The returned Cmd produces a ClosedMsg, or nil when
// nothing is open.
func (m *Model) Close() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	surface := m.surface
	m.surface = nil
	return func() tea.Msg {
		out, err := surface.Close(context.Background())
		return ClosedMsg{Out: out, Err: err}
	}
}

// SetVersion switches the global content version.
func (m *Model) SetVersion(v domain.ContentVersion) tea.Cmd {
	if m.surface == nil {
		return nil
	}
	surface := m.surface
	m.status = "switching to " + v.String() + "…"
	return func() tea.Msg {
		err := surface.SetVersion(context.Background(), v)
		return VersionChangedMsg{Version: v, Err: err}
	}
}

// Refresh re-fetches the variants of every unpinned loaded unit.
func (m *Model) Refresh() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	surface := m.surface
	m.status = "refreshing variants…"
	return func() tea.Msg {
		return RefreshedMsg{Err: surface.Refresh(context.Background())}
	}
}

// PinTop pins the unit at the top of the viewport to its full text.
func (m *Model) PinTop() {
	if m.surface == nil {
		return
	}
	index, ok := m.topUnit()
	if !ok {
		return
	}
	if err := m.surface.PinFull(index); err != nil {
		m.status = "pin: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("pinned ¶%d", index+1)
	m.render()
}

// RetryFailed re-runs the first failed unit.
func (m *Model) RetryFailed() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	for _, unit := range m.surface.Units() {
		if unit.Status == domain.UnitFailed {
			surface, index := m.surface, unit.Index
			m.status = fmt.Sprintf("retrying ¶%d…", index+1)
			return func() tea.Msg {
				err := surface.Retry(context.Background(), index)
				return UnitLoadedMsg{SessionID: surface.SessionID(), Index: index, Err: err}
			}
		}
	}
	m.status = "no failed paragraphs"
	return nil
}

func (m *Model) Export() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	surface := m.surface
	return func() tea.Msg {
		out, err := surface.Export(context.Background())
		return ExportedMsg{Out: out, Err: err}
	}
}

func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.render()
		cmd := m.track()
		return m, cmd

	case OpenedMsg:
		m.loading = false
		if msg.Err != nil {
			m.status = "open: " + msg.Err.Error()
			return m, nil
		}
		m.surface = msg.Surface
		m.title = msg.Title
		m.viewport.GotoTop()
		m.lastOffset = 0
		m.render()
		cmds = append(cmds, m.loadNext(), m.scheduleAutosave())
		return m, tea.Batch(cmds...)

	case UnitLoadedMsg:
		if m.surface == nil || msg.SessionID != m.surface.SessionID() {
			return m, nil
		}
		if msg.Err != nil {
			m.status = fmt.Sprintf("¶%d failed: %v (r: retry)", msg.Index+1, msg.Err)
		}
		m.render()
		cmd := m.track()
		return m, cmd

	case VersionChangedMsg:
		if msg.Err != nil {
			m.status = "version: " + msg.Err.Error()
		} else {
			m.status = "version " + msg.Version.String()
		}
		m.render()
		return m, nil

	case RefreshedMsg:
		if msg.Err != nil {
			m.status = "refresh: " + msg.Err.Error()
		} else {
			m.status = "variants refreshed"
		}
		m.render()
		return m, nil

	case AutosaveTickMsg:
		if m.surface == nil || msg.SessionID != m.surface.SessionID() {
			return m, nil
		}
		surface := m.surface
		return m, func() tea.Msg {
			written, err := surface.Autosave(context.Background())
			return AutosavedMsg{SessionID: surface.SessionID(), Written: written, Err: err}
		}

	case AutosavedMsg:
		if m.surface == nil || msg.SessionID != m.surface.SessionID() {
			return m, nil
		}
		if msg.Err != nil {
			m.status = "autosave: " + msg.Err.Error()
		}
		return m, m.scheduleAutosave()

	case ExportedMsg:
		if msg.Err != nil {
			m.status = "export: " + msg.Err.Error()
		} else {
			m.status = "report written to " + msg.Out.Path
		}
		return m, nil

	case ClosedMsg:
		if msg.Err != nil {
			m.status = "close: " + msg.Err.Error()
		} else {
			m.status = fmt.Sprintf("session %s closed: %d sections, %.0f wpm",
				msg.Out.SessionID, msg.Out.Summary.TotalSections, msg.Out.Summary.AvgWPM)
		}
		m.render()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		if m.surface == nil {
			return m, nil
		}
		if v, ok := versionKeys[msg.String()]; ok {
			cmd := m.SetVersion(v)
			return m, cmd
		}
		switch msg.String() {
		case "f":
			m.PinTop()
			return m, nil
		case "r":
			cmd := m.RetryFailed()
			return m, cmd
		case "u":
			cmd := m.Refresh()
			return m, cmd
		case "e":
			return m, m.Export()
		}
	}

	var vCmd tea.Cmd
	m.viewport, vCmd = m.viewport.Update(msg)
	cmds = append(cmds, vCmd)
	if _, ok := msg.(tea.KeyMsg); ok {
		cmds = append(cmds, m.track())
	}
	if _, ok := msg.(tea.MouseMsg); ok {
		cmds = append(cmds, m.track())
	}
	return m, tea.Batch(cmds...)
}

func (m Model) View() string {
	header := m.renderHeader()
	if m.loading {
		body := lipgloss.Place(m.width, max(m.height-lipgloss.Height(header), 1), lipgloss.Center, lipgloss.Center,
			m.spinner.View()+" Opening book…")
		return lipgloss.JoinVertical(lipgloss.Left, header, body)
	}
	return lipgloss.JoinVertical(lipgloss.Left, header, m.viewport.View(), m.renderFooter())
}

// ─── private ─────────────────────────────────────────────────────────────────

func (m *Model) resize() {
	m.viewport.Width = m.width
	// header 2 lines, footer 1 line
	m.viewport.Height = max(m.height-3, 1)
}

// render lays out every unit, records its line region and hands the regions
// to the surface.
func (m *Model) render() {
	if m.surface == nil {
		m.regions = nil
		m.viewport.SetContent(theme.Muted.Render("Open a book from the Library tab (enter)"))
		return
	}
	width := max(m.viewport.Width-2, 20)
	units := m.surface.Units()
	regions := make([]domain.Region, len(units))
	blocks := make([]string, 0, len(units))
	line := 0
	for i, unit := range units {
		block := renderUnit(unit, width)
		h := lipgloss.Height(block)
		regions[i] = domain.Region{Top: line, Height: h}
		blocks = append(blocks, block)
		line += h + 1
	}
	for i := len(units); i < len(m.regions); i++ {
		m.surface.Unobserve(i)
	}
	// Only loaded text accrues dwell time.
	for i, region := range regions {
		if units[i].Status == domain.UnitLoaded {
			m.surface.Observe(i, region)
		} else {
			m.surface.Unobserve(i)
		}
	}
	m.regions = regions
	m.viewport.SetContent(strings.Join(blocks, "\n\n"))
}

// track reports the visible window, records a scroll sample when the offset
// moved, and starts the next load when the reader nears the end of the loaded
// units.
func (m *Model) track() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	m.surface.Evaluate(domain.Viewport{Offset: m.viewport.YOffset, Height: m.viewport.Height})
	contentHeight := m.viewport.TotalLineCount()
	if contentHeight == 0 || contentHeight <= m.viewport.Height {
		// Content shorter than the window never scrolls; keep filling it.
		return m.loadNext()
	}
	top, height, client := float64(m.viewport.YOffset), float64(contentHeight), float64(m.viewport.Height)
	var paginate bool
	if m.viewport.YOffset != m.lastOffset {
		m.lastOffset = m.viewport.YOffset
		paginate = m.surface.Scroll(top, height, client)
	} else {
		paginate = m.surface.Paginate(top, height, client)
	}
	if paginate {
		return m.loadNext()
	}
	return nil
}

func (m *Model) loadNext() tea.Cmd {
	index, ok := m.surface.Reserve()
	if !ok {
		return nil
	}
	m.render()
	surface := m.surface
	return func() tea.Msg {
		err := surface.Resolve(context.Background(), index)
		return UnitLoadedMsg{SessionID: surface.SessionID(), Index: index, Err: err}
	}
}

func (m Model) scheduleAutosave() tea.Cmd {
	if m.surface == nil {
		return nil
	}
	sessionID := m.surface.SessionID()
	return tea.Tick(m.surface.AutosaveInterval(), func(time.Time) tea.Msg {
		return AutosaveTickMsg{SessionID: sessionID}
	})
}

func (m Model) topUnit() (int, bool) {
	offset := m.viewport.YOffset
	for i, region := range m.regions {
		if offset < region.Top+region.Height {
			return i, true
		}
	}
	return 0, false
}

func (m Model) renderHeader() string {
	if m.surface == nil {
		return theme.Title.Render("Reader") + theme.Muted.Render("  no open session") + "\n"
	}
	loaded := len(m.surface.Units())
	total, _ := m.surface.Total()
	parts := []string{
		theme.Title.Render(m.title),
		theme.Muted.Render(fmt.Sprintf("[%s]", m.surface.Version())),
		theme.Muted.Render(fmt.Sprintf("%d/%d ¶", loaded, total)),
	}
	nav := theme.Muted.Render("  1-4: version  f: pin  r: retry  u: refresh  e: export")
	return strings.Join(parts, "  ") + nav + "\n"
}

func (m Model) renderFooter() string {
	if m.status != "" {
		return theme.Muted.Render(m.status)
	}
	if m.surface == nil {
		return ""
	}
	snap := m.surface.Snapshot()
	return theme.Muted.Render(fmt.Sprintf("%3.0f%%  %d sections  %.1fs dwell  %.0f wpm",
		m.viewport.ScrollPercent()*100, snap.TotalSections, snap.AvgDwellTime/1000, snap.AvgWPM))
}

func renderUnit(unit domain.Unit, width int) string {
	body := lipgloss.NewStyle().Width(width)
	switch unit.Status {
	case domain.UnitPending:
		return theme.Muted.Render(fmt.Sprintf("¶%d loading…", unit.Index+1))
	case domain.UnitFailed:
		return theme.Hot.Render(fmt.Sprintf("¶%d failed: %s", unit.Index+1, unit.Err))
	}
	label := fmt.Sprintf("¶%d · %s", unit.Index+1, unit.PrimaryType)
	if unit.Adaptive != nil {
		label += " · " + unit.Adaptive.Variant.String()
		if unit.Adaptive.Pinned {
			label += " · pinned"
		}
	}
	if unit.Speed != nil {
		label += " · " + unit.Speed.String()
	}
	return theme.Muted.Render(label) + "\n" + body.Render(unit.DisplayText())
}

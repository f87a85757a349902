package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/1broseidon/wlshell/internal/ipc"
)

// snapshot is one poll of the daemon.
type snapshot struct {
	status  ipc.StatusData
	outputs []ipc.OutputInfo
	windows []ipc.WindowInfo
}

type snapshotMsg struct {
	snap snapshot
	err  error
}

type tickMsg time.Time

// statusMsg is sent after an action completes.
type statusMsg struct {
	text string
}

type clearStatusMsg struct{}

// outputItem implements list.Item for the output sidebar.
type outputItem struct {
	info    ipc.OutputInfo
	windows int
}

func (i outputItem) Title() string { return i.info.Name }
func (i outputItem) Description() string {
	g := i.info.Geometry
	return fmt.Sprintf("%dx%d+%d+%d  %d windows", g.Width, g.Height, g.X, g.Y, i.windows)
}
func (i outputItem) FilterValue() string { return i.info.Name }

// model is the root bubbletea model for the live view.
type model struct {
	src     Source
	refresh time.Duration

	activeTab Tab
	outputs   list.Model
	snap      snapshot
	connected bool
	lastError string

	statusText string

	width  int
	height int
}

func newModel(src Source, refresh time.Duration) model {
	delegate := list.NewDefaultDelegate()
	delegate.SetSpacing(0)

	l := list.New(nil, delegate, 0, 0)
	l.Title = "Outputs"
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.DisableQuitKeybindings()

	return model{
		src:       src,
		refresh:   refresh,
		activeTab: TabOutputs,
		outputs:   l,
	}
}

func (m model) poll() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		return fetchSnapshot(src)
	}
}

func fetchSnapshot(src Source) snapshotMsg {
	var snap snapshot
	status, err := src.GetStatus()
	if err != nil {
		return snapshotMsg{err: err}
	}
	snap.status = *status

	outputs, err := src.GetOutputs()
	if err != nil {
		return snapshotMsg{err: err}
	}
	snap.outputs = outputs.Outputs

	windows, err := src.GetWindows()
	if err != nil {
		return snapshotMsg{err: err}
	}
	snap.windows = windows.Windows
	return snapshotMsg{snap: snap}
}

func (m model) tick() tea.Cmd {
	return tea.Tick(m.refresh, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) fixup() tea.Cmd {
	src := m.src
	return func() tea.Msg {
		data, err := src.Fixup()
		if err != nil {
			return statusMsg{text: "fixup failed: " + err.Error()}
		}
		return statusMsg{text: fmt.Sprintf("re-placed %d windows", len(data.Moved))}
	}
}

// Init implements tea.Model.
func (m model) Init() tea.Cmd {
	return tea.Batch(m.poll(), m.tick())
}

// Update implements tea.Model.
func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "tab":
			m.activeTab = (m.activeTab + 1) % tabCount
			return m, nil
		case "shift+tab":
			m.activeTab = (m.activeTab - 1 + tabCount) % tabCount
			return m, nil
		case "1":
			m.activeTab = TabOutputs
			return m, nil
		case "2":
			m.activeTab = TabWindows
			return m, nil
		case "r":
			return m, m.poll()
		case "f":
			return m, m.fixup()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateListSize()
		return m, nil

	case tickMsg:
		return m, tea.Batch(m.poll(), m.tick())

	case snapshotMsg:
		if msg.err != nil {
			m.connected = false
			m.lastError = msg.err.Error()
			return m, nil
		}
		m.connected = true
		m.lastError = ""
		m.snap = msg.snap
		m.rebuildItems()
		return m, nil

	case statusMsg:
		m.statusText = msg.text
		return m, tea.Batch(m.poll(), tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearStatusMsg{}
		}))

	case clearStatusMsg:
		m.statusText = ""
		return m, nil
	}

	if m.activeTab == TabOutputs {
		var cmd tea.Cmd
		m.outputs, cmd = m.outputs.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *model) rebuildItems() {
	counts := make(map[string]int)
	for _, w := range m.snap.windows {
		for _, o := range w.Outputs {
			counts[o]++
		}
	}

	items := make([]list.Item, 0, len(m.snap.outputs))
	for _, o := range m.snap.outputs {
		items = append(items, outputItem{info: o, windows: counts[o.Name]})
	}
	idx := m.outputs.Index()
	m.outputs.SetItems(items)
	if idx >= len(items) {
		idx = len(items) - 1
	}
	if idx >= 0 {
		m.outputs.Select(idx)
	}
}

func (m *model) updateListSize() {
	h := m.contentHeight() - 1
	if h < 1 {
		h = 1
	}
	m.outputs.SetSize(m.sidebarWidth(), h)
}

func (m model) sidebarWidth() int {
	sw := m.width * 35 / 100
	if sw < 20 {
		sw = 20
	}
	if sw > 40 {
		sw = 40
	}
	return sw
}

// contentHeight returns the height available for tab content.
func (m model) contentHeight() int {
	// status bar (1) + tab bar (2 with margin) + help bar (1)
	h := m.height - 4
	if h < 1 {
		h = 1
	}
	return h
}

func (m model) selectedOutput() string {
	item, ok := m.outputs.SelectedItem().(outputItem)
	if !ok {
		return ""
	}
	return item.info.Name
}

// View implements tea.Model.
func (m model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	statusBar := renderStatusBar(m.connected, m.snap.status, m.lastError, m.width)
	tabBar := renderTabBar(m.activeTab, m.width)
	helpBar := renderHelpBar(m.statusText, m.width)

	usedHeight := lipgloss.Height(statusBar) + lipgloss.Height(tabBar) + lipgloss.Height(helpBar)
	contentHeight := m.height - usedHeight
	if contentHeight < 1 {
		contentHeight = 1
	}

	var content string
	switch m.activeTab {
	case TabOutputs:
		content = m.viewOutputs(contentHeight)
	case TabWindows:
		content = renderWindowTable(m.snap.windows, m.width, contentHeight)
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		statusBar,
		tabBar,
		content,
		helpBar,
	)
}

func (m model) viewOutputs(height int) string {
	sidebar := m.outputs.View()

	previewWidth := m.width - m.sidebarWidth() - 2
	if previewWidth < 10 {
		return sidebar
	}
	lines := renderLayout(m.snap.outputs, m.snap.windows, m.selectedOutput(), previewWidth, height)
	preview := lipgloss.NewStyle().PaddingLeft(2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))

	return lipgloss.JoinHorizontal(lipgloss.Top, sidebar, preview)
}

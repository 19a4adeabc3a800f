package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textarea"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"seqview/internal/config"
	"seqview/internal/format"
	"seqview/internal/loader"
	"seqview/internal/logging"
	"seqview/internal/render"
	"seqview/internal/section"
)

// Colors for modern design
var (
	primaryColor   = lipgloss.Color("#7C3AED") // Purple
	secondaryColor = lipgloss.Color("#10B981") // Green
	accentColor    = lipgloss.Color("#F59E0B") // Amber
	surfaceColor   = lipgloss.Color("#1F2937") // Dark gray
	textColor      = lipgloss.Color("#F3F4F6") // Light gray
	mutedColor     = lipgloss.Color("#9CA3AF") // Muted gray
	borderColor    = lipgloss.Color("#374151") // Border gray
)

// Styles
var (
	containerStyle = lipgloss.NewStyle().
			Padding(0, 1).
			Border(lipgloss.RoundedBorder()).
			BorderForeground(borderColor)

	focusedStyle = containerStyle.
			BorderForeground(primaryColor)

	titleStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(textColor).
			Background(surfaceColor).
			Padding(0, 1)

	errorStyle = lipgloss.NewStyle().Foreground(accentColor).Bold(true)

	kindStyles = map[format.Kind]lipgloss.Style{
		format.FASTA:   lipgloss.NewStyle().Foreground(secondaryColor).Bold(true),
		format.GenBank: lipgloss.NewStyle().Foreground(accentColor).Bold(true),
		format.Raw:     lipgloss.NewStyle().Foreground(mutedColor),
	}
)

type listItem struct {
	index   int
	section section.Section
}

func (i listItem) FilterValue() string { return i.section.Description }

func (i listItem) Title() string {
	if i.section.Description == "" {
		return "(untitled)"
	}
	return i.section.Description
}

func (i listItem) Description() string {
	if i.section.IsLines() {
		return fmt.Sprintf("%d lines", len(i.section.Lines))
	}
	return fmt.Sprintf("%d chars", len(i.section.Data))
}

// sectionsMsg replaces everything on screen with a new set of sections.
type sectionsMsg struct {
	sections []section.Section
}

type loadedMsg struct {
	name string
	kind format.Kind
}

type errMsg struct{ err error }

// programRenderer forwards sections into a running program.
type programRenderer struct {
	p *tea.Program
}

func (r *programRenderer) Render(secs []section.Section) error {
	if r.p == nil {
		return fmt.Errorf("tui: program not started")
	}
	r.p.Send(sectionsMsg{sections: secs})
	return nil
}

func loadCmd(ld *loader.Loader, path string, out render.Renderer) tea.Cmd {
	return func() tea.Msg {
		ctx := context.Background()
		res, err := ld.LoadFile(ctx, path)
		if err != nil {
			return errMsg{err}
		}
		if err := ld.Render(ctx, out, res); err != nil {
			return errMsg{err}
		}
		return loadedMsg{name: res.Name, kind: res.Kind}
	}
}

type model struct {
	list     list.Model
	editor   textarea.Model
	sections []section.Section
	// edits hold unsaved editor contents by section index; they are dropped
	// whenever a new file is rendered.
	edits    map[int]string
	current  int
	name     string
	kind     format.Kind
	err      error
	showHelp bool
	width    int
	height   int

	load tea.Cmd
}

func initialModel(load tea.Cmd) model {
	l := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	l.Title = "Sections"
	l.SetShowStatusBar(false)
	l.SetShowPagination(true)
	l.SetFilteringEnabled(true)

	ta := textarea.New()
	ta.CharLimit = 0
	ta.MaxHeight = 0
	ta.ShowLineNumbers = false
	ta.Placeholder = "No section selected"

	return model{
		list:    l,
		editor:  ta,
		edits:   map[int]string{},
		current: -1,
		kind:    format.Raw,
		load:    load,
	}
}

func (m model) Init() tea.Cmd {
	return m.load
}

// textFor returns the edited text for section i, or its parsed text.
func (m model) textFor(i int) string {
	if v, ok := m.edits[i]; ok {
		return v
	}
	return m.sections[i].Text()
}

// stash keeps the editor contents if they differ from the parsed text.
func (m *model) stash() {
	if m.current < 0 || m.current >= len(m.sections) {
		return
	}
	v := m.editor.Value()
	if v == m.sections[m.current].Text() {
		delete(m.edits, m.current)
		return
	}
	m.edits[m.current] = v
}

// syncSelection loads the selected section into the editor.
func (m *model) syncSelection() {
	item, ok := m.list.SelectedItem().(listItem)
	if !ok {
		m.current = -1
		m.editor.SetValue("")
		return
	}
	if item.index == m.current {
		return
	}
	m.stash()
	m.current = item.index
	m.editor.SetValue(m.textFor(item.index))
}

func (m *model) setSections(secs []section.Section) tea.Cmd {
	m.sections = secs
	m.edits = map[int]string{}
	m.current = -1
	m.err = nil
	m.editor.Blur()
	items := make([]list.Item, len(secs))
	for i, s := range secs {
		items[i] = listItem{index: i, section: s}
	}
	cmd := m.list.SetItems(items)
	m.list.ResetSelected()
	m.syncSelection()
	return cmd
}

func (m *model) resize() {
	listWidth := m.width / 3
	bodyHeight := m.height - 4
	m.list.SetSize(listWidth-2, bodyHeight)
	m.editor.SetWidth(m.width - listWidth - 6)
	m.editor.SetHeight(bodyHeight - 3)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case sectionsMsg:
		return m, m.setSections(msg.sections)

	case loadedMsg:
		m.name = msg.name
		m.kind = msg.kind
		return m, nil

	case errMsg:
		m.err = msg.err
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editor.Focused() {
			switch msg.String() {
			case "tab", "esc":
				m.stash()
				m.editor.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.editor, cmd = m.editor.Update(msg)
			return m, cmd
		}
		if m.list.FilterState() != list.Filtering {
			switch msg.String() {
			case "q":
				return m, tea.Quit
			case "h":
				m.showHelp = !m.showHelp
				return m, nil
			case "r":
				return m, m.load
			case "tab", "enter":
				if m.current < 0 {
					return m, nil
				}
				return m, m.editor.Focus()
			}
		}
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	cmds = append(cmds, cmd)
	m.syncSelection()
	if m.editor.Focused() {
		// cursor blink and other editor-internal messages
		m.editor, cmd = m.editor.Update(msg)
		cmds = append(cmds, cmd)
	}
	return m, tea.Batch(cmds...)
}

func (m model) View() string {
	if m.width == 0 {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelpModal()
	}
	main := lipgloss.JoinHorizontal(lipgloss.Top, m.renderLeftPanel(), m.renderRightPanel())
	return lipgloss.JoinVertical(lipgloss.Left, main, m.renderStatusBar())
}

func (m model) renderLeftPanel() string {
	style := containerStyle
	if !m.editor.Focused() {
		style = focusedStyle
	}
	return style.Width(m.width/3 - 2).Height(m.height - 4).Render(m.list.View())
}

func (m model) renderRightPanel() string {
	rightWidth := m.width - m.width/3
	style := containerStyle
	if m.editor.Focused() {
		style = focusedStyle
	}
	style = style.Width(rightWidth - 2).Height(m.height - 4)

	if m.err != nil {
		return style.Render(errorStyle.Render("Error: " + m.err.Error()))
	}
	if len(m.sections) == 0 {
		return style.Render("No sections available")
	}
	if m.current < 0 {
		return style.Render("No item selected")
	}

	title := titleStyle.Render(m.list.SelectedItem().(listItem).Title())
	if _, edited := m.edits[m.current]; edited {
		title += lipgloss.NewStyle().Foreground(mutedColor).Render(" (edited)")
	}
	return style.Render(lipgloss.JoinVertical(lipgloss.Left, title, "", m.editor.View()))
}

func (m model) renderStatusBar() string {
	name := m.name
	if name == "" {
		name = "-"
	}
	leftInfo := fmt.Sprintf("%s  %d sections", name, len(m.sections))
	kindStyle, ok := kindStyles[m.kind]
	if !ok {
		kindStyle = kindStyles[format.Raw]
	}
	centerInfo := "Format: " + kindStyle.Render(string(m.kind))
	rightInfo := "'h' help • 'q' quit"

	spacing := m.width - lipgloss.Width(leftInfo) - lipgloss.Width(centerInfo) - lipgloss.Width(rightInfo) - 2
	var statusContent string
	if spacing > 1 {
		statusContent = leftInfo + strings.Repeat(" ", spacing/2) + centerInfo + strings.Repeat(" ", spacing-spacing/2) + rightInfo
	} else {
		// Fallback for narrow terminals
		statusContent = leftInfo + " | " + centerInfo
	}
	return statusBarStyle.Width(m.width).Render(statusContent)
}

func (m model) renderHelpModal() string {
	helpContent := `seqview - Help

Navigation:
  ↑/↓, j/k     Navigate sections
  /            Filter sections
  Tab, Enter   Edit selected section

Editor:
  Tab, Esc     Back to the list (keeps edits)

General:
  r            Reload file (drops edits)
  h            Toggle this help
  q, Ctrl+C    Quit application

Sections: ` + fmt.Sprintf("%d", len(m.sections)) + `
`
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(primaryColor).
		Padding(1, 2).
		Background(surfaceColor).
		Foreground(textColor).
		Width(60).
		Render(helpContent)

	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
}

func main() {
	configPath := flag.String("config", "", "path to config.json or config.yaml (optional)")
	foldCase := flag.Bool("fold-case", false, "match file extensions case-insensitively")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: seqview-tui [flags] <file>")
		os.Exit(2)
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	// the terminal belongs to the UI; logs only go to the configured file
	logger := log.New(io.Discard)
	if cfg.LogFile != "" {
		l, closeLog := logging.New(logging.Options{Prefix: "seqview-tui", Level: cfg.LogLevel, LogFile: cfg.LogFile, Out: io.Discard})
		defer closeLog()
		logger = l
	}

	ld := loader.New(loader.Options{
		Logger:   logger,
		FoldCase: *foldCase || cfg.FoldExtensionCase,
		MaxBytes: cfg.MaxUploadBytes,
	})
	out := &programRenderer{}
	p := tea.NewProgram(initialModel(loadCmd(ld, flag.Arg(0), out)), tea.WithAltScreen())
	out.p = p
	if _, err := p.Run(); err != nil {
		fmt.Printf("Error: %v", err)
		os.Exit(1)
	}
}

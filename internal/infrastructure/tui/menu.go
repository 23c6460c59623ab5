// Package tui is the interactive category menu.
//
// The model never mutates a selection in place: every key press replaces
// m.sel with a new policy.Selection and the table and preview are rebuilt
// from it.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/felixgeelhaar/zerobrave/pkg/domain/policy"
)

// Action is what the user chose when the menu closed.
type Action int

const (
	ActionQuit Action = iota
	ActionApply
)

// Result is returned when the program exits.
type Result struct {
	Action    Action
	Selection policy.Selection
	Changes   int
}

// Options configure a menu session.
type Options struct {
	DryRun bool
	// Notice is shown under the status bar, e.g. the outcome of the last apply.
	Notice string
	// Changes carries the change counter across sessions.
	Changes int
}

type screen int

const (
	screenMenu screen = iota
	screenPreview
	screenHelp
)

// Model is the bubbletea model of the menu.
type Model struct {
	sel     policy.Selection
	opts    Options
	changes int
	screen  screen
	action  Action

	table    table.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap
	cats     []policy.Category
	err      error
}

// New builds the menu for an initial selection.
func New(sel policy.Selection, opts Options) Model {
	cats := policy.Categories()

	columns := []table.Column{
		{Title: "#", Width: 3},
		{Title: "Tag", Width: 8},
		{Title: "Status", Width: 7},
		{Title: "Category", Width: 20},
		{Title: "Details", Width: 36},
	}
	t := table.New(
		table.WithColumns(columns),
		table.WithFocused(true),
		table.WithHeight(len(cats)+1),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229")).
		Background(lipgloss.Color("57"))
	t.SetStyles(s)

	m := Model{
		sel:      sel,
		opts:     opts,
		changes:  opts.Changes,
		table:    t,
		viewport: viewport.New(80, 20),
		help:     help.New(),
		keys:     defaultKeyMap(),
		cats:     cats,
	}
	m.refresh()
	return m
}

// Selection returns the current snapshot.
func (m Model) Selection() policy.Selection { return m.sel }

// Result reports the user's decision.
func (m Model) Result() Result {
	return Result{Action: m.action, Selection: m.sel, Changes: m.changes}
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.viewport.Width = msg.Width
		m.viewport.Height = max(msg.Height-4, 5)
		m.help.Width = msg.Width
		return m, nil
	case tea.KeyMsg:
		switch m.screen {
		case screenPreview, screenHelp:
			return m.updateOverlay(msg)
		default:
			return m.updateMenu(msg)
		}
	}
	return m, nil
}

func (m Model) updateOverlay(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) || msg.String() == "enter" {
		m.screen = screenMenu
		return m, nil
	}
	if msg.String() == "ctrl+c" {
		m.action = ActionQuit
		return m, tea.Quit
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m Model) updateMenu(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.action = ActionQuit
		return m, tea.Quit
	case key.Matches(msg, m.keys.Apply):
		m.action = ActionApply
		return m, tea.Quit
	case key.Matches(msg, m.keys.Toggle):
		idx := m.table.Cursor()
		if n, err := strconv.Atoi(msg.String()); err == nil {
			idx = n - 1
		}
		if idx >= 0 && idx < len(m.cats) {
			m.setSelection(m.sel.Toggle(m.cats[idx].ID))
		}
		return m, nil
	case key.Matches(msg, m.keys.Strict):
		return m.applyProfile(policy.ProfileStrict), nil
	case key.Matches(msg, m.keys.Balanced):
		return m.applyProfile(policy.ProfileBalanced), nil
	case key.Matches(msg, m.keys.Minimal):
		return m.applyProfile(policy.ProfileMinimal), nil
	case key.Matches(msg, m.keys.All):
		m.setSelection(m.sel.ToggleAll())
		return m, nil
	case key.Matches(msg, m.keys.Preview):
		m.screen = screenPreview
		m.viewport.SetContent(m.previewContent())
		m.viewport.GotoTop()
		return m, nil
	case key.Matches(msg, m.keys.Help):
		m.screen = screenHelp
		m.viewport.SetContent(m.helpContent())
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) applyProfile(name policy.ProfileName) Model {
	p, err := policy.LookupProfile(string(name))
	if err != nil {
		m.err = err
		return m
	}
	m.setSelection(policy.SelectionFor(p))
	return m
}

// setSelection counts a change only when the selection actually differs.
func (m *Model) setSelection(next policy.Selection) {
	if next != m.sel {
		m.changes++
	}
	m.sel = next
	m.refresh()
}

func (m *Model) refresh() {
	rows := make([]table.Row, 0, len(m.cats))
	for i, c := range m.cats {
		status := "-- OFF"
		if m.sel.Enabled(c.ID) {
			status = "++ ON"
		}
		rows = append(rows, table.Row{strconv.Itoa(i + 1), c.Tag, status, c.Name, c.Summary})
	}
	m.table.SetRows(rows)
}

func (m Model) previewContent() string {
	doc := policy.Build(m.sel)
	data, err := doc.Encode()
	if err != nil {
		return fmt.Sprintf("Error: %v", err)
	}
	header := subtitleStyle.Render(fmt.Sprintf("<< %d Policies >>", len(doc)))
	return header + "\n\n" + string(data) + "\n" + dimStyle.Render("esc: back  ↑/↓: scroll")
}

func (m Model) helpContent() string {
	var b strings.Builder
	b.WriteString(subtitleStyle.Render("ZeroBrave - Help") + "\n\n")
	b.WriteString("  space, 1-8  Toggle a category ON/OFF\n")
	b.WriteString("  s / b / m   Strict, Balanced or Minimal profile\n")
	b.WriteString("  a           Toggle ALL categories\n")
	b.WriteString("  p           Preview the JSON policies\n")
	b.WriteString("  enter       Apply policies to Brave\n")
	b.WriteString("  q           Quit without applying\n\n")

	b.WriteString(subtitleStyle.Render("Profiles") + "\n")
	for _, p := range policy.Profiles() {
		fmt.Fprintf(&b, "  %-9s %s (%d categories)\n", p.Title, p.Description, len(p.Categories))
	}

	if idx := m.table.Cursor(); idx >= 0 && idx < len(m.cats) {
		c := m.cats[idx]
		b.WriteString("\n" + subtitleStyle.Render(c.Tag+" "+c.Name) + "\n")
		b.WriteString("  " + c.Help + "\n")
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Policies (%d):", len(c.Policies))) + "\n")
		for _, k := range policy.Document(c.Policies).Keys() {
			b.WriteString("    • " + k + "\n")
		}
	}

	b.WriteString("\n" + dimStyle.Render("Changes require restarting Brave. Policies are enforced and cannot be changed from the browser."))
	return b.String()
}

func (m Model) statusBar() string {
	parts := []string{
		"Profile: " + profileTitle(m.sel.Profile()),
		fmt.Sprintf("Categories: %d/%d", m.sel.Len(), len(m.cats)),
		fmt.Sprintf("Policies: %d", len(policy.Build(m.sel))),
	}
	if m.changes > 0 {
		parts = append(parts, fmt.Sprintf("Changes: %d", m.changes))
	}
	bar := strings.Join(parts, " | ")
	if m.opts.DryRun {
		bar = dryRunStyle.Render(">> DRY-RUN <<") + " | " + bar
	}
	return bar
}

func (m Model) profileBar() string {
	current := m.sel.Profile()
	items := make([]string, 0, 3)
	for _, p := range policy.Profiles() {
		label := fmt.Sprintf("[%s] %s", strings.ToUpper(string(p.Name[:1])), p.Title)
		if p.Name == current {
			items = append(items, activeProfile.Render(label))
		} else {
			items = append(items, dimStyle.Render(label))
		}
	}
	return "Profiles: " + strings.Join(items, "  ")
}

func (m Model) View() string {
	switch m.screen {
	case screenPreview, screenHelp:
		return m.viewport.View()
	}

	header := titleStyle.Render("ZEROBRAVE") + " " + subtitleStyle.Render("Privacy-First Brave Configuration")

	sections := []string{header, "", m.statusBar(), m.profileBar(), ""}
	if m.opts.Notice != "" {
		sections = append(sections, noticeStyle.Render(m.opts.Notice), "")
	}
	if m.err != nil {
		sections = append(sections, statusOff.Render(m.err.Error()), "")
	}
	sections = append(sections, m.styledTable(), "", m.help.View(m.keys))

	return baseStyle.Render(lipgloss.JoinVertical(lipgloss.Left, sections...)) + "\n"
}

// styledTable colours the status column after the table has been rendered.
func (m Model) styledTable() string {
	out := m.table.View()
	out = strings.ReplaceAll(out, "++ ON", statusOn.Render("++ ON"))
	out = strings.ReplaceAll(out, "-- OFF", statusOff.Render("-- OFF"))
	return out
}

func profileTitle(name policy.ProfileName) string {
	if p, err := policy.LookupProfile(string(name)); err == nil {
		return p.Title
	}
	return "Custom"
}

// Run shows the menu until the user applies or quits.
func Run(ctx context.Context, sel policy.Selection, opts Options) (Result, error) {
	p := tea.NewProgram(New(sel, opts), tea.WithContext(ctx), tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return Result{Action: ActionQuit, Selection: sel}, fmt.Errorf("menu run failed: %w", err)
	}
	m, ok := final.(Model)
	if !ok {
		return Result{Action: ActionQuit, Selection: sel}, nil
	}
	return m.Result(), nil
}

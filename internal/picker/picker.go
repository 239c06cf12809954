// Package picker renders a terminal choice list for selecting one of several
// declarations.
package picker

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Item is one entry in the list.
type Item struct {
	Label       string
	Description string
}

type keyMap struct {
	Up     key.Binding
	Down   key.Binding
	Choose key.Binding
	Cancel key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k", "shift+tab"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j", "tab"),
		key.WithHelp("↓/j", "down"),
	),
	Choose: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "choose"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc", "q", "ctrl+c"),
		key.WithHelp("esc", "cancel"),
	),
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("7"))
	placeholderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	cursorStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	descStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	helpStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type model struct {
	title       string
	placeholder string
	items       []Item
	cursor      int
	chosen      int
	done        bool
	width       int
}

func newModel(title, placeholder string, items []Item) *model {
	return &model{
		title:       title,
		placeholder: placeholder,
		items:       items,
		chosen:      -1,
		width:       80,
	}
}

func (m *model) Init() tea.Cmd {
	return nil
}

func (m *model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Choose):
			m.chosen = m.cursor
			m.done = true
			return m, tea.Quit
		case key.Matches(msg, keys.Cancel):
			m.done = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	}
	return m, nil
}

func (m *model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n")
	if m.placeholder != "" {
		b.WriteString(placeholderStyle.Render(m.placeholder))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	labelWidth := 0
	for _, it := range m.items {
		labelWidth = max(labelWidth, runewidth.StringWidth(it.Label))
	}
	descWidth := max(m.width-labelWidth-6, 20)

	for i, it := range m.items {
		pointer := "  "
		label := runewidth.FillRight(it.Label, labelWidth)
		if i == m.cursor {
			pointer = cursorStyle.Render("> ")
			label = cursorStyle.Render(label)
		}
		fmt.Fprintf(&b, "%s%s  %s\n", pointer, label, descStyle.Render(truncate(it.Description, descWidth)))
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render(helpLine(keys.Up, keys.Down, keys.Choose, keys.Cancel)))
	b.WriteString("\n")
	return b.String()
}

func helpLine(bindings ...key.Binding) string {
	parts := make([]string, 0, len(bindings))
	for _, kb := range bindings {
		h := kb.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return strings.Join(parts, " • ")
}

func truncate(value string, width int) string {
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width-3, "...")
}

// Run shows items and blocks until the user chooses one or cancels. ok is
// false on cancel.
func Run(title, placeholder string, items []Item, in io.Reader, out io.Writer) (index int, ok bool, err error) {
	if len(items) == 0 {
		return 0, false, nil
	}
	m := newModel(title, placeholder, items)
	program := tea.NewProgram(m, tea.WithInput(in), tea.WithOutput(out))
	final, err := program.Run()
	if err != nil {
		return 0, false, fmt.Errorf("picker: %w", err)
	}
	fm := final.(*model)
	if fm.chosen < 0 {
		return 0, false, nil
	}
	return fm.chosen, true, nil
}

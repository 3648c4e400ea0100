package interactive

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"
	"github.com/trebuchet-org/treb-upgrades/internal/domain/models"
)

// MultiSelectItem is one row of a multi-select
type MultiSelectItem struct {
	ID     models.ContractID
	Detail string
}

type multiSelectModel struct {
	title     string
	items     []MultiSelectItem
	cursor    int
	selected  map[int]bool
	confirmed bool
	quit      bool
}

func newMultiSelectModel(items []MultiSelectItem, title string) multiSelectModel {
	return multiSelectModel{title: title, items: items, selected: make(map[int]bool)}
}

func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "ctrl+c", "q", "esc":
		m.quit = true
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case " ":
		m.selected[m.cursor] = !m.selected[m.cursor]
	case "a":
		all := len(m.chosen()) < len(m.items)
		for i := range m.items {
			m.selected[i] = all
		}
	case "enter":
		if len(m.chosen()) > 0 {
			m.confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m multiSelectModel) View() string {
	if m.confirmed || m.quit {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))
	for i, item := range m.items {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}
		checkbox := color.New(color.FgWhite).Sprint("○")
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		}
		fmt.Fprintf(&b, "%s %s %s %s\n", cursor, checkbox, item.ID, color.New(color.FgYellow).Sprintf("(%s)", item.Detail))
	}
	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))
	return b.String()
}

// chosen returns the selected items in display order
func (m multiSelectModel) chosen() []models.ContractID {
	var out []models.ContractID
	for i, item := range m.items {
		if m.selected[i] {
			out = append(out, item.ID)
		}
	}
	return out
}

// SelectMany lets the operator tick several contracts. A single item is
// returned without prompting.
func (p *Prompter) SelectMany(items []MultiSelectItem, title string) ([]models.ContractID, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("nothing to select")
	}
	if len(items) == 1 {
		return []models.ContractID{items[0].ID}, nil
	}
	if p.nonInteractive {
		return nil, ErrNonInteractive
	}

	final, err := tea.NewProgram(newMultiSelectModel(items, title)).Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}
	m := final.(multiSelectModel)
	if !m.confirmed {
		return nil, fmt.Errorf("selection cancelled")
	}
	return m.chosen(), nil
}

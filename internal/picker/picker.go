// Package picker is an interactive terminal folder chooser.
package picker

import (
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nikbrunner/bmc/internal/model"
	"github.com/nikbrunner/bmc/internal/search"
)

const (
	maxVisible    = 10
	titleMaxWidth = 48
)

var (
	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true)

	normalStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("252"))

	suggestionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244")).
			Italic(true)

	matchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	headerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("99")).
			Bold(true).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// Choice is the picker outcome. Create is set when the typed name matched
// no folder and should be created.
type Choice struct {
	Title  string
	ID     string
	Create bool
}

// Picker lets the user filter folders and pick one.
type Picker struct {
	folders   []model.FolderDescriptor
	matches   []search.Match
	input     textinput.Model
	cursor    int
	choice    *Choice
	cancelled bool
}

// New creates a Picker over folders.
func New(folders []model.FolderDescriptor) Picker {
	input := textinput.New()
	input.Placeholder = "Filter or name a new folder..."
	input.CharLimit = 200
	input.Width = 40
	input.Focus()

	return Picker{
		folders: folders,
		matches: search.FilterFolders(folders, ""),
		input:   input,
	}
}

// Init implements tea.Model.
func (p Picker) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.Type {
		case tea.KeyEsc, tea.KeyCtrlC:
			p.cancelled = true
			return p, tea.Quit

		case tea.KeyEnter:
			if c := p.current(); c != nil {
				p.choice = c
				return p, tea.Quit
			}
			return p, nil

		case tea.KeyDown, tea.KeyCtrlN, tea.KeyTab:
			if p.cursor < p.rows()-1 {
				p.cursor++
			}
			return p, nil

		case tea.KeyUp, tea.KeyCtrlP, tea.KeyShiftTab:
			if p.cursor > 0 {
				p.cursor--
			}
			return p, nil
		}
	}

	var cmd tea.Cmd
	before := p.input.Value()
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.matches = search.FilterFolders(p.folders, strings.TrimSpace(p.input.Value()))
		p.cursor = 0
	}
	return p, cmd
}

// offersCreate reports whether the typed name is not an existing title.
func (p Picker) offersCreate() bool {
	name := strings.TrimSpace(p.input.Value())
	if name == "" {
		return false
	}
	_, ok := search.Exact(p.folders, name)
	return !ok
}

// rows counts the selectable lines: matches plus an optional create row.
func (p Picker) rows() int {
	n := len(p.matches)
	if p.offersCreate() {
		n++
	}
	return n
}

func (p Picker) current() *Choice {
	if p.cursor < len(p.matches) {
		f := p.matches[p.cursor].Folder
		if f.IsSuggestion {
			return &Choice{Title: f.Title, Create: true}
		}
		return &Choice{Title: f.Title, ID: f.ID}
	}
	if p.offersCreate() {
		return &Choice{Title: strings.TrimSpace(p.input.Value()), Create: true}
	}
	return nil
}

// View implements tea.Model.
func (p Picker) View() string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("Choose a folder"))
	b.WriteString("\n")
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	start, end := visibleRange(maxVisible, p.cursor, len(p.matches))
	for i := start; i < end; i++ {
		m := p.matches[i]
		cursor := "  "
		style := normalStyle
		if m.Folder.IsSuggestion {
			style = suggestionStyle
		}
		if i == p.cursor {
			cursor = "> "
			style = selectedStyle
		}

		line := highlight(truncate(m.Folder.Title, titleMaxWidth), m.MatchedIndexes, style)
		if m.Folder.IsSuggestion {
			line += suggestionStyle.Render("  (new)")
		} else {
			line += helpStyle.Render(fmt.Sprintf("  %d", m.Folder.BookmarkCount))
		}
		b.WriteString(cursor + line + "\n")
	}

	if p.offersCreate() {
		cursor := "  "
		style := suggestionStyle
		if p.cursor == len(p.matches) {
			cursor = "> "
			style = selectedStyle
		}
		b.WriteString(cursor + style.Render(fmt.Sprintf("+ Create %q", strings.TrimSpace(p.input.Value()))) + "\n")
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓: move  Enter: choose  Esc: cancel"))

	return b.String()
}

// Choice returns the picked folder, or nil if cancelled.
func (p Picker) Choice() *Choice {
	if p.cancelled {
		return nil
	}
	return p.choice
}

// Cancelled returns true if the user cancelled the selection.
func (p Picker) Cancelled() bool {
	return p.cancelled
}

// Run shows the picker on stderr and blocks until the user decides.
func Run(folders []model.FolderDescriptor) (*Choice, error) {
	prog := tea.NewProgram(New(folders), tea.WithOutput(os.Stderr))
	final, err := prog.Run()
	if err != nil {
		return nil, err
	}
	return final.(Picker).Choice(), nil
}

func highlight(title string, indexes []int, base lipgloss.Style) string {
	if len(indexes) == 0 {
		return base.Render(title)
	}
	marked := make(map[int]bool, len(indexes))
	for _, i := range indexes {
		marked[i] = true
	}

	var b strings.Builder
	for i, r := range title {
		if marked[i] {
			b.WriteString(matchStyle.Render(string(r)))
		} else {
			b.WriteString(base.Render(string(r)))
		}
	}
	return b.String()
}

// visibleRange returns the window [start, end) of a scrolled list that keeps
// selected in view.
func visibleRange(size, selected, total int) (start, end int) {
	if total <= size {
		return 0, total
	}
	if selected >= size {
		start = selected - size + 1
	}
	end = start + size
	if end > total {
		end = total
		start = end - size
	}
	return start, end
}

func truncate(s string, width int) string {
	if utf8.RuneCountInString(s) <= width {
		return s
	}
	runes := []rune(s)
	return string(runes[:width-1]) + "…"
}

package wizard

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/reloquent/modelts/internal/schema"
	"github.com/reloquent/modelts/internal/typemap"
)

// TypeMapModel is the bubbletea model for reviewing how storage types map
// to TypeScript.
type TypeMapModel struct {
	typeMap   *typemap.TypeMap
	types     []string // storage types actually in use, sorted
	cursor    int
	editing   bool
	input     textinput.Model
	done      bool
	cancelled bool
	width     int
	height    int
}

// NewTypeMapModel creates a type mapping review model over the storage
// types used by the snapshot's tables. existing, when non-nil, carries
// previously saved overrides.
func NewTypeMapModel(s *schema.Schema, dbType string, existing *typemap.TypeMap) TypeMapModel {
	tm := existing
	if tm == nil {
		tm = typemap.ForDatabase(dbType)
	}

	input := textinput.New()
	input.Placeholder = "Record<string, unknown>"
	input.CharLimit = 200

	return TypeMapModel{
		typeMap: tm,
		types:   s.StorageTypes(),
		input:   input,
		width:   100,
		height:  24,
	}
}

func (m TypeMapModel) Init() tea.Cmd {
	return nil
}

func (m TypeMapModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		if m.editing {
			return m.updateCustom(msg)
		}

		switch msg.String() {
		case "q", "esc", "ctrl+c":
			m.done = true
			m.cancelled = true
			return m, tea.Quit

		case "enter", "f":
			m.done = true
			return m, tea.Quit
		}

		if len(m.types) == 0 {
			return m, nil
		}
		storageType := m.types[m.cursor]

		switch msg.String() {
		case "j", "down":
			if m.cursor < len(m.types)-1 {
				m.cursor++
			}

		case "k", "up":
			if m.cursor > 0 {
				m.cursor--
			}

		case "e": // cycle through the basic TypeScript types
			m.typeMap.Override(storageType, nextTSType(m.typeMap.Resolve(storageType)))

		case "c": // custom type expression
			m.editing = true
			m.input.SetValue("")
			if ts, ok := m.typeMap.Lookup(storageType); ok {
				m.input.SetValue(ts)
			}
			return m, m.input.Focus()

		case "d":
			m.typeMap.RestoreDefault(storageType)
		}
	}

	return m, nil
}

func (m TypeMapModel) updateCustom(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+c":
		m.editing = false
		m.input.Blur()
		return m, nil

	case "enter":
		m.editing = false
		m.input.Blur()
		if v := strings.TrimSpace(m.input.Value()); v != "" {
			m.typeMap.Override(m.types[m.cursor], v)
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m TypeMapModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Type Mapping Review") + "\n\n")

	if len(m.types) == 0 {
		b.WriteString("  No columns found in model tables.\n\n")
		b.WriteString(dimStyle.Render("  Press enter to confirm • q to cancel\n"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("  %-30s %-24s %s\n", "Storage Type", "TypeScript", "Status"))
	b.WriteString("  " + strings.Repeat("─", 66) + "\n")

	maxVisible := m.height - 10
	if maxVisible < 5 {
		maxVisible = 5
	}
	start := 0
	if m.cursor >= maxVisible {
		start = m.cursor - maxVisible + 1
	}
	end := min(start+maxVisible, len(m.types))

	for i := start; i < end; i++ {
		storageType := m.types[i]
		ts := m.typeMap.Resolve(storageType)

		cursor := "  "
		if i == m.cursor {
			cursor = highlightStyle.Render("> ")
		}

		status := dimStyle.Render("default")
		switch {
		case m.typeMap.IsOverridden(storageType):
			status = successStyle.Render("override ★")
		case typemap.IsUnknown(ts):
			status = warnStyle.Render("unmapped")
		}

		b.WriteString(fmt.Sprintf("%s%-30s %-24s %s\n", cursor, storageType, ts, status))
	}

	b.WriteString("\n")
	if m.editing {
		b.WriteString("  Custom type for " + highlightStyle.Render(m.types[m.cursor]) + ": " + m.input.View() + "\n")
		b.WriteString(dimStyle.Render("  enter apply • esc discard\n"))
		return b.String()
	}
	b.WriteString(dimStyle.Render("  e cycle • c custom • d restore default • enter save • q cancel\n"))

	return b.String()
}

// Result returns the edited type map, or nil if the review was cancelled.
func (m TypeMapModel) Result() *typemap.TypeMap {
	if m.cancelled {
		return nil
	}
	return m.typeMap
}

// Done returns true if the model has finished.
func (m TypeMapModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user cancelled.
func (m TypeMapModel) Cancelled() bool {
	return m.done && m.cancelled
}

// nextTSType returns the next TypeScript type in the cycle. Custom and
// unknown expressions restart the cycle.
func nextTSType(current typemap.TSType) typemap.TSType {
	types := typemap.AllTSTypes
	for i, t := range types {
		if t == current {
			return types[(i+1)%len(types)]
		}
	}
	return types[0]
}

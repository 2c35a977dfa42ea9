package wizard

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/reloquent/modelts/internal/config"
	"github.com/reloquent/modelts/internal/discovery"
)

// field indexes
const (
	fieldHost = iota
	fieldPort
	fieldDatabase
	fieldUsername
	fieldPassword
	fieldPath
	fieldCount
)

var fieldLabels = [fieldCount]string{"Host", "Port", "Database", "Username", "Password", "File"}

// ConnectFunc checks that a source configuration can be reached.
type ConnectFunc func(ctx context.Context, cfg *config.SourceConfig) error

// CheckConnection opens and closes a discoverer for cfg.
func CheckConnection(ctx context.Context, cfg *config.SourceConfig) error {
	d, err := discovery.New(cfg)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Connect(ctx)
}

// SourceModel is the bubbletea model for the source connection form.
type SourceModel struct {
	inputs    []textinput.Model
	focused   int
	dbTypeIdx int
	connect   ConnectFunc
	err       error
	checking  bool
	spinner   spinner.Model
	result    *config.SourceConfig
	done      bool
	cancelled bool
	statusMsg string
	width     int
}

type connectDoneMsg struct {
	cfg *config.SourceConfig
	err error
}

// NewSourceModel returns the connection form. connect defaults to
// CheckConnection when nil.
func NewSourceModel(connect ConnectFunc) SourceModel {
	if connect == nil {
		connect = CheckConnection
	}

	inputs := make([]textinput.Model, fieldCount)
	for i := range inputs {
		inputs[i] = textinput.New()
		inputs[i].CharLimit = 256
	}
	inputs[fieldPort].CharLimit = 5
	inputs[fieldPassword].EchoMode = textinput.EchoPassword
	inputs[fieldPassword].EchoCharacter = '*'
	inputs[fieldHost].Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	m := SourceModel{
		inputs:  inputs,
		connect: connect,
		spinner: s,
		width:   80,
	}
	m.applyPlaceholders()
	return m
}

func (m SourceModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m SourceModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if m.checking {
			return m, nil // ignore input while connecting
		}

		switch msg.String() {
		case "ctrl+c", "esc":
			m.done = true
			m.cancelled = true
			return m, tea.Quit

		case "tab", "down":
			m.focused = m.step(1)
			return m, m.updateFocus()

		case "shift+tab", "up":
			m.focused = m.step(-1)
			return m, m.updateFocus()

		case "ctrl+t":
			m.dbTypeIdx = (m.dbTypeIdx + 1) % len(config.SourceTypes)
			m.applyPlaceholders()
			m.focused = m.visible()[0]
			return m, m.updateFocus()

		case "enter":
			fields := m.visible()
			if m.focused == fields[len(fields)-1] {
				return m, m.startCheck()
			}
			m.focused = m.step(1)
			return m, m.updateFocus()
		}

	case connectDoneMsg:
		m.checking = false
		if msg.err != nil {
			m.err = msg.err
			m.statusMsg = fmt.Sprintf("Connection failed: %v", msg.err)
			return m, nil
		}
		m.result = msg.cfg
		m.done = true
		return m, tea.Quit

	case spinner.TickMsg:
		if m.checking {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if !m.checking {
		var cmd tea.Cmd
		m.inputs[m.focused], cmd = m.inputs[m.focused].Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m SourceModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Source Connection") + "\n\n")

	var choices []string
	for i, t := range config.SourceTypes {
		mark := "○ "
		if i == m.dbTypeIdx {
			mark = "● "
		}
		choices = append(choices, mark+t)
	}
	b.WriteString(fmt.Sprintf("  Database type: %s  (ctrl+t to change)\n\n", strings.Join(choices, "  ")))

	for _, i := range m.visible() {
		label := fmt.Sprintf("  %-10s ", fieldLabels[i])
		cursor := "  "
		if i == m.focused {
			cursor = highlightStyle.Render("> ")
		}
		b.WriteString(cursor + dimStyle.Render(label) + m.inputs[i].View() + "\n")
	}

	b.WriteString("\n")

	switch {
	case m.checking:
		b.WriteString(fmt.Sprintf("  %s Connecting...\n", m.spinner.View()))
	case m.err != nil:
		b.WriteString(errStyle.Render("  "+m.statusMsg) + "\n")
		b.WriteString(dimStyle.Render("  Fix the issue and press Enter to retry\n"))
	default:
		b.WriteString(dimStyle.Render("  Enter on the last field connects • tab/shift-tab to navigate • esc to cancel\n"))
	}

	return b.String()
}

// Result returns the tested source configuration, or nil if not completed.
func (m SourceModel) Result() *config.SourceConfig {
	return m.result
}

// Done returns true if the model has finished (success or cancelled).
func (m SourceModel) Done() bool {
	return m.done
}

// Cancelled returns true if the user cancelled.
func (m SourceModel) Cancelled() bool {
	return m.done && m.cancelled
}

func (m SourceModel) dbType() string {
	return config.SourceTypes[m.dbTypeIdx]
}

// visible returns the form fields used by the selected database type.
func (m SourceModel) visible() []int {
	switch m.dbType() {
	case "sqlite", "fixture":
		return []int{fieldPath}
	default:
		return []int{fieldHost, fieldPort, fieldDatabase, fieldUsername, fieldPassword}
	}
}

func (m SourceModel) step(delta int) int {
	fields := m.visible()
	for i, f := range fields {
		if f == m.focused {
			return fields[(i+delta+len(fields))%len(fields)]
		}
	}
	return fields[0]
}

func (m *SourceModel) applyPlaceholders() {
	dbType := m.dbType()
	m.inputs[fieldHost].Placeholder = "localhost"
	m.inputs[fieldPort].Placeholder = ""
	if port := config.DefaultPort(dbType); port != 0 {
		m.inputs[fieldPort].Placeholder = strconv.Itoa(port)
	}
	m.inputs[fieldDatabase].Placeholder = "app"
	m.inputs[fieldUsername].Placeholder = ""
	switch dbType {
	case "postgresql":
		m.inputs[fieldUsername].Placeholder = "postgres"
	case "mysql":
		m.inputs[fieldUsername].Placeholder = "root"
	case "mongodb":
		m.inputs[fieldPort].Placeholder = "27017"
	}
	m.inputs[fieldPath].Placeholder = "database/database.sqlite"
	if dbType == "fixture" {
		m.inputs[fieldPath].Placeholder = "schema.yaml"
	}
}

func (m *SourceModel) updateFocus() tea.Cmd {
	cmds := make([]tea.Cmd, fieldCount)
	for i := range m.inputs {
		if i == m.focused {
			cmds[i] = m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
	return tea.Batch(cmds...)
}

func (m *SourceModel) startCheck() tea.Cmd {
	m.checking = true
	m.err = nil
	m.statusMsg = ""

	cfg := m.buildConfig()
	connect := m.connect

	return tea.Batch(
		m.spinner.Tick,
		func() tea.Msg {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			return connectDoneMsg{cfg: cfg, err: connect(ctx, cfg)}
		},
	)
}

func (m *SourceModel) buildConfig() *config.SourceConfig {
	cfg := &config.SourceConfig{Type: m.dbType()}

	switch cfg.Type {
	case "sqlite", "fixture":
		cfg.Path = m.inputs[fieldPath].Value()
		if cfg.Path == "" {
			cfg.Path = m.inputs[fieldPath].Placeholder
		}
		return cfg
	}

	cfg.Host = m.inputs[fieldHost].Value()
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	cfg.Port = config.DefaultPort(cfg.Type)
	if p, err := strconv.Atoi(m.inputs[fieldPort].Value()); err == nil {
		cfg.Port = p
	}
	cfg.Database = m.inputs[fieldDatabase].Value()
	cfg.Username = m.inputs[fieldUsername].Value()
	cfg.Password = m.inputs[fieldPassword].Value()
	return cfg
}

package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nibzard/karen-go/internal/task"
)

// Handler runs one command line and returns the framed reply and whether
// the session should end.
type Handler func(ctx context.Context, line string) (reply string, exit bool)

// Lister returns the current tasks for the side panel.
type Lister func() []*task.Task

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	doneStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true)
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	panelStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// RunTUI starts the interactive terminal interface on stdout.
func RunTUI(ctx context.Context, intro string, handle Handler, list Lister) error {
	if !IsTTY(os.Stdout) {
		return fmt.Errorf("tui requires a TTY")
	}
	model := newTUIModel(ctx, intro, handle, list)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := program.Run()
	return err
}

type tuiModel struct {
	ctx     context.Context
	handle  Handler
	list    Lister
	tasks   []*task.Task
	input   []rune
	reply   string
	history []string
	recall  int
	busy    bool
	done    bool
}

// replyMsg carries the outcome of a submitted line back to the event loop.
type replyMsg struct {
	reply string
	exit  bool
	tasks []*task.Task
}

func newTUIModel(ctx context.Context, intro string, handle Handler, list Lister) *tuiModel {
	return &tuiModel{
		ctx:    ctx,
		handle: handle,
		list:   list,
		tasks:  list(),
		reply:  intro,
	}
}

func (m *tuiModel) Init() tea.Cmd {
	return nil
}

func (m *tuiModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if r, ok := msg.(replyMsg); ok {
		m.busy = false
		m.reply = r.reply
		m.tasks = r.tasks
		if r.exit {
			m.done = true
			return m, tea.Quit
		}
		return m, nil
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeyUp:
		if m.recall > 0 {
			m.recall--
			m.input = []rune(m.history[m.recall])
		}
	case tea.KeyDown:
		if m.recall < len(m.history)-1 {
			m.recall++
			m.input = []rune(m.history[m.recall])
		} else {
			m.recall = len(m.history)
			m.input = nil
		}
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, key.Runes...)
	}
	return m, nil
}

// submit runs the line off the event loop since the handler may block on
// storage. Enter is ignored until the reply arrives.
func (m *tuiModel) submit() (tea.Model, tea.Cmd) {
	if m.busy {
		return m, nil
	}
	line := string(m.input)
	m.input = nil
	if line != "" {
		m.history = append(m.history, line)
	}
	m.recall = len(m.history)
	m.busy = true

	ctx, handle, list := m.ctx, m.handle, m.list
	return m, func() tea.Msg {
		reply, exit := handle(ctx, line)
		return replyMsg{reply: reply, exit: exit, tasks: list()}
	}
}

func (m *tuiModel) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Karen") + "\n\n")
	b.WriteString(m.reply + "\n\n")
	if m.done {
		return b.String()
	}

	b.WriteString(panelStyle.Render(renderTasks(m.tasks)) + "\n\n")
	b.WriteString(promptStyle.Render("> ") + string(m.input) + "█\n\n")
	b.WriteString(helpStyle.Render("enter submit | up/down history | ctrl+u clear | esc quit") + "\n")
	return b.String()
}

func renderTasks(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return "No tasks yet."
	}
	lines := make([]string, 0, len(tasks))
	for i, t := range tasks {
		line := fmt.Sprintf("%d. %s", i+1, t)
		if t.Done {
			line = doneStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

// IsTTY returns true if w is a terminal.
func IsTTY(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

// Package dispatch routes command lines to the task list and renders the
// assistant's replies.
package dispatch

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/nibzard/karen-go/internal/logging"
	"github.com/nibzard/karen-go/internal/metrics"
	"github.com/nibzard/karen-go/internal/parser"
	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/task"
	"github.com/nibzard/karen-go/internal/ui"
)

// Command keywords.
const (
	CmdList     = "list"
	CmdMark     = "mark"
	CmdUnmark   = "unmark"
	CmdDelete   = "delete"
	CmdTodo     = "todo"
	CmdDeadline = "deadline"
	CmdEvent    = "event"
	CmdFind     = "find"
	CmdUpdate   = "update"
	CmdClear    = "clear"
	CmdBye      = "bye"
)

// Labels used for lines that carry no known keyword.
const (
	labelUnknown = "unknown"
	labelEmpty   = "empty"
)

const (
	msgNoSuchTask   = "That task doesn't even exist dummy!"
	msgTodoHasNoDay = "A todo has no date to update dummy!"
	msgEmptyTask    = "Description cannot be empty dummy!"
)

// Result is the outcome of one command.
type Result struct {
	// Output is the framed reply.
	Output string
	// Exit is set by bye.
	Exit bool
	// Err is the command error, if the command was rejected.
	Err error
	// SaveErr is set when the list changed but could not be persisted.
	SaveErr error
}

// Dispatcher owns the task list for one session.
type Dispatcher struct {
	list    *task.List
	store   storage.Store
	format  ui.Formatter
	logger  *log.Logger
	session *logging.SessionLogger
	metrics *metrics.Metrics
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithLogger sets the console logger.
func WithLogger(l *log.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithSessionLog records every command in s.
func WithSessionLog(s *logging.SessionLogger) Option {
	return func(d *Dispatcher) {
		d.session = s
	}
}

// WithMetrics counts commands in m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) {
		d.metrics = m
	}
}

// New returns a dispatcher over list. A nil store disables persistence.
func New(list *task.List, store storage.Store, opts ...Option) *Dispatcher {
	if list == nil {
		list = task.NewList()
	}
	d := &Dispatcher{
		list:   list,
		store:  store,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(d)
	}
	d.metrics.SetTasks(list.Len())
	return d
}

// Tasks returns a snapshot of the list.
func (d *Dispatcher) Tasks() []*task.Task {
	return d.list.Tasks()
}

// Formatter returns the reply formatter.
func (d *Dispatcher) Formatter() ui.Formatter {
	return d.format
}

// Load replaces the list with the stored tasks. On error the list is left
// empty and the error is returned so the caller can report it.
func (d *Dispatcher) Load(ctx context.Context) error {
	if d.store == nil {
		return nil
	}
	tasks, err := d.store.Load(ctx)
	if err != nil {
		d.list.Clear()
		d.metrics.SetTasks(0)
		d.logger.Error("load tasks", "err", err)
		return fmt.Errorf("load tasks: %w", err)
	}
	d.list.Replace(tasks)
	d.metrics.SetTasks(d.list.Len())
	d.logger.Debug("loaded tasks", "count", d.list.Len())
	return nil
}

// Execute runs one command line.
func (d *Dispatcher) Execute(ctx context.Context, line string) Result {
	start := time.Now()
	p := parser.New(line)

	label := labelEmpty
	var res Result
	var mutated bool

	keyword, err := p.FirstToken()
	if err == nil {
		label = keyword
		if !isKnown(keyword) {
			label = labelUnknown
		}
		res.Output, mutated, res.Exit, err = d.run(keyword, p)
	}
	if err != nil {
		res.Err = err
		res.Output = d.format.Error(errors.New(UserMessage(err)))
	}

	if mutated {
		if saveErr := d.save(ctx); saveErr != nil {
			res.SaveErr = saveErr
			res.Output += "\n" + d.format.SaveError(saveErr)
		}
	}

	d.record(line, label, res, time.Since(start))
	return res
}

func (d *Dispatcher) run(keyword string, p *parser.Parser) (string, bool, bool, error) {
	switch keyword {
	case CmdList:
		return d.format.List(d.list.Tasks()), false, false, nil
	case CmdMark:
		t, err := d.atNumber(p, d.list.MarkDone)
		if err != nil {
			return "", false, false, err
		}
		return d.format.Mark(t), true, false, nil
	case CmdUnmark:
		t, err := d.atNumber(p, d.list.MarkNotDone)
		if err != nil {
			return "", false, false, err
		}
		return d.format.Unmark(t), true, false, nil
	case CmdDelete:
		t, err := d.atNumber(p, d.list.Remove)
		if err != nil {
			return "", false, false, err
		}
		return d.format.Delete(t, d.list.Len()), true, false, nil
	case CmdTodo, CmdDeadline, CmdEvent:
		t, err := newTask(keyword, p)
		if err != nil {
			return "", false, false, err
		}
		d.list.Add(t)
		return d.format.Add(t, d.list.Len()), true, false, nil
	case CmdFind:
		kw, err := p.Keyword()
		if err != nil {
			return "", false, false, err
		}
		return d.format.Find(d.list.Find(kw)), false, false, nil
	case CmdUpdate:
		t, changed, err := d.update(p)
		if err != nil {
			return "", false, false, err
		}
		if !changed {
			return d.format.Unchanged(t), false, false, nil
		}
		return d.format.Update(t), true, false, nil
	case CmdClear:
		d.list.Clear()
		return d.format.Clear(), true, false, nil
	case CmdBye:
		return d.format.Bye(), false, true, nil
	default:
		return d.format.Unknown(), false, false, nil
	}
}

// atNumber resolves the 1-based task number on the line and applies op.
func (d *Dispatcher) atNumber(p *parser.Parser, op func(int) (*task.Task, error)) (*task.Task, error) {
	n, err := p.TaskNumber()
	if err != nil {
		return nil, err
	}
	i, err := d.list.Position(n)
	if err != nil {
		return nil, err
	}
	return op(i)
}

func newTask(keyword string, p *parser.Parser) (*task.Task, error) {
	switch keyword {
	case CmdTodo:
		desc, err := p.TodoDescription()
		if err != nil {
			return nil, err
		}
		return task.NewTodo(desc)
	case CmdDeadline:
		desc, err := p.DeadlineDescription()
		if err != nil {
			return nil, err
		}
		by, err := p.DeadlineDate()
		if err != nil {
			return nil, err
		}
		return task.NewDeadline(desc, by)
	default:
		desc, err := p.EventDescription()
		if err != nil {
			return nil, err
		}
		at, err := p.EventDate()
		if err != nil {
			return nil, err
		}
		return task.NewEvent(desc, at)
	}
}

// update validates every part of the line before touching the task.
func (d *Dispatcher) update(p *parser.Parser) (*task.Task, bool, error) {
	n, err := p.TaskNumber()
	if err != nil {
		return nil, false, err
	}
	i, err := d.list.Position(n)
	if err != nil {
		return nil, false, err
	}
	t, err := d.list.Get(i)
	if err != nil {
		return nil, false, err
	}

	hasDesc, err := p.HasUpdateDescClause()
	if err != nil {
		return nil, false, err
	}
	next := t.Clone()
	changed := false

	if hasDesc {
		desc, err := p.UpdatedDescription()
		if err != nil {
			return nil, false, err
		}
		if err := next.SetDescription(desc); err != nil {
			return nil, false, err
		}
		changed = true
	}

	if p.HasUpdateDateClause() {
		var date time.Time
		switch t.Kind {
		case task.KindDeadline:
			date, err = p.DeadlineDate()
		case task.KindEvent:
			date, err = p.EventDate()
		default:
			err = task.ErrNoDate
		}
		if err != nil {
			return nil, false, err
		}
		if err := next.SetDate(date); err != nil {
			return nil, false, err
		}
		changed = true
	}

	*t = *next
	return t, changed, nil
}

func (d *Dispatcher) save(ctx context.Context) error {
	d.metrics.SetTasks(d.list.Len())
	if d.store == nil {
		return nil
	}
	if err := d.store.Save(ctx, d.list.Tasks()); err != nil {
		d.logger.Error("save tasks", "err", err)
		return fmt.Errorf("save tasks: %w", err)
	}
	return nil
}

func (d *Dispatcher) record(line, label string, res Result, elapsed time.Duration) {
	err := res.Err
	if err == nil {
		err = res.SaveErr
	}
	d.metrics.ObserveCommand(label, err, elapsed)

	event := logging.Event{
		Command:  line,
		Keyword:  label,
		OK:       err == nil,
		Tasks:    d.list.Len(),
		Duration: float64(elapsed.Microseconds()) / 1000,
	}
	if err != nil {
		event.Error = UserMessage(err)
		d.logger.Debug("command rejected", "command", label, "err", err)
	} else {
		d.logger.Debug("command", "command", label, "tasks", event.Tasks)
	}
	if logErr := d.session.Record(event); logErr != nil {
		d.logger.Warn("session log", "err", logErr)
	}
}

// Serve greets the user and runs commands read from r until bye, EOF or
// ctx is cancelled.
func (d *Dispatcher) Serve(ctx context.Context, r io.Reader, w io.Writer) error {
	if err := ui.Print(w, d.format.Intro()); err != nil {
		return err
	}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSuffix(scanner.Text(), "\r")
		res := d.Execute(ctx, line)
		if err := ui.Print(w, res.Output); err != nil {
			return err
		}
		if res.Exit {
			return nil
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}

// UserMessage returns the text shown to the user for a command error.
func UserMessage(err error) string {
	var pe *parser.Error
	switch {
	case errors.As(err, &pe):
		return pe.Message
	case errors.Is(err, task.ErrIndexOutOfRange):
		return msgNoSuchTask
	case errors.Is(err, task.ErrNoDate):
		return msgTodoHasNoDay
	case errors.Is(err, task.ErrEmptyDescription):
		return msgEmptyTask
	default:
		return err.Error()
	}
}

func isKnown(keyword string) bool {
	switch keyword {
	case CmdList, CmdMark, CmdUnmark, CmdDelete, CmdTodo, CmdDeadline,
		CmdEvent, CmdFind, CmdUpdate, CmdClear, CmdBye:
		return true
	}
	return false
}

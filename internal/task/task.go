// Package task holds task records and the ordered task list.
package task

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Kind identifies a task variant.
type Kind string

const (
	KindTodo     Kind = "T"
	KindDeadline Kind = "D"
	KindEvent    Kind = "E"
)

// DisplayLayout is the date format used when rendering tasks.
const DisplayLayout = "Jan 2 2006"

var (
	ErrEmptyDescription = errors.New("task description is empty")
	ErrNoDate           = errors.New("task has no date")
	ErrUnknownKind      = errors.New("unknown task kind")
	ErrIndexOutOfRange  = errors.New("task index out of range")
)

// Task is a single todo, deadline or event.
type Task struct {
	Kind        Kind
	Description string
	Done        bool
	// Date is the deadline (by) or event (at) day. Zero for todos.
	Date time.Time
}

// NewTodo returns a todo with the given description.
func NewTodo(description string) (*Task, error) {
	return newTask(KindTodo, description, time.Time{})
}

// NewDeadline returns a deadline due on by.
func NewDeadline(description string, by time.Time) (*Task, error) {
	return newTask(KindDeadline, description, by)
}

// NewEvent returns an event happening at at.
func NewEvent(description string, at time.Time) (*Task, error) {
	return newTask(KindEvent, description, at)
}

// New builds a task of any kind. It is used when restoring stored tasks.
func New(kind Kind, description string, done bool, date time.Time) (*Task, error) {
	t, err := newTask(kind, description, date)
	if err != nil {
		return nil, err
	}
	t.Done = done
	return t, nil
}

func newTask(kind Kind, description string, date time.Time) (*Task, error) {
	if err := kind.Validate(); err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, ErrEmptyDescription
	}
	t := &Task{Kind: kind, Description: description}
	if kind != KindTodo {
		t.Date = truncateDay(date)
	}
	return t, nil
}

// Validate returns ErrUnknownKind if k is not a known variant.
func (k Kind) Validate() error {
	switch k {
	case KindTodo, KindDeadline, KindEvent:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, string(k))
	}
}

// HasDate reports whether the task carries a date.
func (t *Task) HasDate() bool {
	return t.Kind == KindDeadline || t.Kind == KindEvent
}

// DateLabel returns "by" for deadlines, "at" for events and "" for todos.
func (t *Task) DateLabel() string {
	switch t.Kind {
	case KindDeadline:
		return "by"
	case KindEvent:
		return "at"
	default:
		return ""
	}
}

// MarkDone marks the task as done.
func (t *Task) MarkDone() {
	t.Done = true
}

// MarkNotDone marks the task as not done.
func (t *Task) MarkNotDone() {
	t.Done = false
}

// SetDescription replaces the description.
func (t *Task) SetDescription(description string) error {
	if strings.TrimSpace(description) == "" {
		return ErrEmptyDescription
	}
	t.Description = description
	return nil
}

// SetDate replaces the date of a deadline or event.
func (t *Task) SetDate(date time.Time) error {
	if !t.HasDate() {
		return ErrNoDate
	}
	t.Date = truncateDay(date)
	return nil
}

// StatusIcon returns "X" for done tasks and " " otherwise.
func (t *Task) StatusIcon() string {
	if t.Done {
		return "X"
	}
	return " "
}

// String renders the task as shown to the user, e.g.
// "[D][ ] submit report (by: May 1 2024)".
func (t *Task) String() string {
	s := fmt.Sprintf("[%s][%s] %s", string(t.Kind), t.StatusIcon(), t.Description)
	if t.HasDate() {
		s += fmt.Sprintf(" (%s: %s)", t.DateLabel(), t.Date.Format(DisplayLayout))
	}
	return s
}

// Clone returns a copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	return &c
}

func truncateDay(d time.Time) time.Time {
	if d.IsZero() {
		return d
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

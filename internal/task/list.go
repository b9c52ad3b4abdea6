package task

import (
	"fmt"
	"strings"
)

// List is an ordered collection of tasks. Indexes are 0-based; users see
// 1-based numbers, converted with Position.
//
// List is not safe for concurrent use.
type List struct {
	tasks []*Task
}

// Match is a search hit: the task and its 0-based index in the list.
type Match struct {
	Index int
	Task  *Task
}

// NewList returns a list holding tasks in order.
func NewList(tasks ...*Task) *List {
	l := &List{tasks: make([]*Task, 0, len(tasks))}
	l.tasks = append(l.tasks, tasks...)
	return l
}

// Len returns the number of tasks.
func (l *List) Len() int {
	return len(l.tasks)
}

// Position converts a 1-based task number to a 0-based index.
func (l *List) Position(n int) (int, error) {
	i := n - 1
	if err := l.check(i); err != nil {
		return 0, err
	}
	return i, nil
}

// Get returns the task at index i.
func (l *List) Get(i int) (*Task, error) {
	if err := l.check(i); err != nil {
		return nil, err
	}
	return l.tasks[i], nil
}

// Add appends t.
func (l *List) Add(t *Task) {
	l.tasks = append(l.tasks, t)
}

// Remove deletes the task at index i and returns it. Later tasks move down
// by one.
func (l *List) Remove(i int) (*Task, error) {
	if err := l.check(i); err != nil {
		return nil, err
	}
	removed := l.tasks[i]
	copy(l.tasks[i:], l.tasks[i+1:])
	l.tasks[len(l.tasks)-1] = nil
	l.tasks = l.tasks[:len(l.tasks)-1]
	return removed, nil
}

// MarkDone marks the task at index i as done.
func (l *List) MarkDone(i int) (*Task, error) {
	t, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	t.MarkDone()
	return t, nil
}

// MarkNotDone marks the task at index i as not done.
func (l *List) MarkNotDone(i int) (*Task, error) {
	t, err := l.Get(i)
	if err != nil {
		return nil, err
	}
	t.MarkNotDone()
	return t, nil
}

// Clear removes every task.
func (l *List) Clear() {
	for i := range l.tasks {
		l.tasks[i] = nil
	}
	l.tasks = l.tasks[:0]
}

// Find returns the tasks whose description contains keyword, in list order.
// Matching is case-sensitive.
func (l *List) Find(keyword string) []Match {
	var matches []Match
	for i, t := range l.tasks {
		if strings.Contains(t.Description, keyword) {
			matches = append(matches, Match{Index: i, Task: t})
		}
	}
	return matches
}

// Tasks returns the tasks in order. The slice is a copy; the tasks are not.
func (l *List) Tasks() []*Task {
	out := make([]*Task, len(l.tasks))
	copy(out, l.tasks)
	return out
}

// Replace swaps the whole content of the list for tasks.
func (l *List) Replace(tasks []*Task) {
	l.Clear()
	l.tasks = append(l.tasks, tasks...)
}

func (l *List) check(i int) error {
	if i < 0 || i >= len(l.tasks) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, len(l.tasks))
	}
	return nil
}

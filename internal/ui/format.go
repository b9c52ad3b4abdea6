// Package ui renders assistant responses and provides the optional terminal
// interface.
package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/nibzard/karen-go/internal/task"
)

// Rule frames every response.
const Rule = "______________________________________"

// Formatter builds the assistant's replies. The zero value is ready to use.
type Formatter struct{}

// Frame wraps s between two rules.
func (Formatter) Frame(s string) string {
	return Rule + "\n" + s + "\n" + Rule
}

// Print writes framed text followed by a blank line.
func Print(w io.Writer, framed string) error {
	_, err := fmt.Fprintf(w, "%s\n\n", framed)
	return err
}

// Intro greets the user at the start of a session.
func (f Formatter) Intro() string {
	return f.Frame("hi... I'm Karen\nWhat do you want this time?")
}

// Bye is the farewell sent in reply to bye.
func (f Formatter) Bye() string {
	return f.Frame("K finally, good riddance!")
}

// List renders tasks numbered from 1.
func (f Formatter) List(tasks []*task.Task) string {
	if len(tasks) == 0 {
		return f.Frame("pff there is nothing in your list")
	}
	var b strings.Builder
	b.WriteString("Here are your dumb tasks in your list:")
	for i, t := range tasks {
		fmt.Fprintf(&b, "\n%d. %s", i+1, t)
	}
	return f.Frame(b.String())
}

// Mark confirms a task was marked done.
func (f Formatter) Mark(t *task.Task) string {
	return f.Frame("Took you long enough to complete this task:\n" + t.String())
}

// Unmark confirms a task was marked not done.
func (f Formatter) Unmark(t *task.Task) string {
	return f.Frame("Another task marked as not done?? Slow indeed\n" + t.String())
}

// Add confirms a new task and reports the list size.
func (f Formatter) Add(t *task.Task, size int) string {
	return f.Frame(fmt.Sprintf("Fine, I'll add this task:\n\t%s\nNow you have %d tasks in the list...", t, size))
}

// Delete confirms a removal and reports the remaining size.
func (f Formatter) Delete(t *task.Task, size int) string {
	return f.Frame(fmt.Sprintf("Ughh I'll remove this task:\n\t%s\nNow you have %d tasks in the list...", t, size))
}

// Update shows a task after an edit.
func (f Formatter) Update(t *task.Task) string {
	return f.Frame("Changed it, happy now?\n\t" + t.String())
}

// Unchanged answers an update that named a date marker without a date.
func (f Formatter) Unchanged(t *task.Task) string {
	return f.Frame("You didn't actually change anything, genius\n\t" + t.String())
}

// Find renders matches with their 1-based list numbers.
func (f Formatter) Find(matches []task.Match) string {
	if len(matches) == 0 {
		return f.Frame("Nothing in your list matches that, obviously")
	}
	var b strings.Builder
	b.WriteString("Here are the matching tasks in your list:")
	for _, m := range matches {
		fmt.Fprintf(&b, "\n%d. %s", m.Index+1, m.Task)
	}
	return f.Frame(b.String())
}

// Clear confirms the list was emptied.
func (f Formatter) Clear() string {
	return f.Frame("Wiped your whole list. Don't come crying to me")
}

// Unknown answers a line with no recognized command.
func (f Formatter) Unknown() string {
	return f.Frame("What are you saying??? Try again")
}

// Error frames the error's message verbatim.
func (f Formatter) Error(err error) string {
	return f.Frame(err.Error())
}

// LoadingError reports that stored tasks could not be read.
func (f Formatter) LoadingError() string {
	return f.Frame("Error loading data from file")
}

// SaveError reports a failed write; the in-memory change is kept.
func (f Formatter) SaveError(err error) string {
	return f.Frame("I couldn't save your list, not my fault: " + err.Error())
}

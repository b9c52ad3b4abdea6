// Package storage defines how the task list is persisted.
//
// Every backend stores the whole list: Save replaces whatever was stored
// before with the given tasks, in order. There is no incremental update.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/nibzard/karen-go/internal/task"
)

// Driver names accepted in configuration.
const (
	DriverJSON     = "json"
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// RecordDateLayout is the on-disk date format.
const RecordDateLayout = "2006-01-02"

// Store loads and saves the task list.
type Store interface {
	// Load returns the stored tasks in order. A store that holds nothing
	// yet returns an empty slice and no error.
	Load(ctx context.Context) ([]*task.Task, error)
	// Save replaces the stored list with tasks.
	Save(ctx context.Context, tasks []*task.Task) error
	Close() error
}

// Record is the serialized form of a task shared by all backends.
type Record struct {
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Done        bool   `json:"done"`
	Date        string `json:"date,omitempty"`
}

// ToRecord converts a task to its serialized form.
func ToRecord(t *task.Task) Record {
	r := Record{
		Kind:        string(t.Kind),
		Description: t.Description,
		Done:        t.Done,
	}
	if t.HasDate() {
		r.Date = t.Date.Format(RecordDateLayout)
	}
	return r
}

// ToTask converts a record back into a task.
func (r Record) ToTask() (*task.Task, error) {
	kind := task.Kind(r.Kind)
	var date time.Time
	if kind == task.KindDeadline || kind == task.KindEvent {
		d, err := time.Parse(RecordDateLayout, r.Date)
		if err != nil {
			return nil, fmt.Errorf("parse date %q: %w", r.Date, err)
		}
		date = d
	}
	return task.New(kind, r.Description, r.Done, date)
}

// ToRecords converts tasks in order.
func ToRecords(tasks []*task.Task) []Record {
	records := make([]Record, 0, len(tasks))
	for _, t := range tasks {
		records = append(records, ToRecord(t))
	}
	return records
}

// ToTasks converts records in order. The first bad record aborts the
// conversion.
func ToTasks(records []Record) ([]*task.Task, error) {
	tasks := make([]*task.Task, 0, len(records))
	for i, r := range records {
		t, err := r.ToTask()
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

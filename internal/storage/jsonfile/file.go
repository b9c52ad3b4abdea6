// Package jsonfile stores the task list in a JSON file.
//
// The file format is:
//
//	{
//	  "schema_version": 1,
//	  "tasks": [
//	    {"kind": "T", "description": "buy milk", "done": false},
//	    {"kind": "D", "description": "submit report", "done": true, "date": "2024-05-01"}
//	  ]
//	}
//
// Files are written with 2-space indentation and a trailing newline, through
// a temporary file renamed into place.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/task"
)

// SchemaVersion is the only supported file version.
const SchemaVersion = 1

// File is the on-disk document.
type File struct {
	SchemaVersion int              `json:"schema_version"`
	Tasks         []storage.Record `json:"tasks"`
}

// Load reads and parses a task file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read task file: %w", err)
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse task file: %w", err)
	}

	return &f, nil
}

// Save writes the file to path.
func (f *File) Save(path string) error {
	if f.Tasks == nil {
		f.Tasks = []storage.Record{}
	}
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal task file: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create task file dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write task file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("write task file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("replace task file: %w", err)
	}
	return nil
}

// Store is a storage.Store backed by a JSON file.
type Store struct {
	path string
	opts ValidationOptions
}

// New returns a store for the file at path. The file is created on the first
// Save.
func New(path string, opts ValidationOptions) *Store {
	return &Store{path: path, opts: opts}
}

// Path returns the file path.
func (s *Store) Path() string {
	return s.path
}

// Load implements storage.Store. A missing file yields an empty list.
func (s *Store) Load(ctx context.Context) ([]*task.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := Load(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []*task.Task{}, nil
		}
		return nil, err
	}
	result := f.Validate(s.opts)
	if !result.Valid {
		return nil, fmt.Errorf("invalid task file %s: %w", s.path, errors.Join(result.Errors...))
	}
	return storage.ToTasks(f.Tasks)
}

// Save implements storage.Store.
func (s *Store) Save(ctx context.Context, tasks []*task.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	f := &File{
		SchemaVersion: SchemaVersion,
		Tasks:         storage.ToRecords(tasks),
	}
	return f.Save(s.path)
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return nil
}

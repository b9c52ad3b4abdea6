// Package sqlite stores the task list in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/task"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	position    INTEGER PRIMARY KEY,
	kind        TEXT    NOT NULL,
	description TEXT    NOT NULL,
	done        BOOLEAN NOT NULL DEFAULT FALSE,
	date        TEXT
)`

// Store is a storage.Store backed by SQLite.
type Store struct {
	db *sql.DB
}

// New opens (and creates if needed) the database at path.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	// One writer; avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect sqlite %s: %w", path, err)
	}
	if _, err := db.ExecContext(ctx, createTasksTable); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tasks table: %w", err)
	}
	return &Store{db: db}, nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, description, done, date
		FROM tasks
		ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("query tasks: %w", err)
	}
	defer rows.Close()

	var records []storage.Record
	for rows.Next() {
		var (
			r    storage.Record
			date sql.NullString
		)
		if err := rows.Scan(&r.Kind, &r.Description, &r.Done, &date); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		r.Date = date.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return storage.ToTasks(records)
}

// Save implements storage.Store. The table is rewritten in one transaction.
func (s *Store) Save(ctx context.Context, tasks []*task.Task) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (position, kind, description, done, date)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range storage.ToRecords(tasks) {
		var date sql.NullString
		if r.Date != "" {
			date = sql.NullString{String: r.Date, Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, i+1, r.Kind, r.Description, r.Done, date); err != nil {
			return fmt.Errorf("insert task %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	return s.db.Close()
}

// Package postgres stores the task list in PostgreSQL.
package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nibzard/karen-go/internal/storage"
	"github.com/nibzard/karen-go/internal/task"
)

const createTasksTable = `
CREATE TABLE IF NOT EXISTS tasks (
	position    INTEGER PRIMARY KEY,
	kind        TEXT    NOT NULL,
	description TEXT    NOT NULL,
	done        BOOLEAN NOT NULL DEFAULT FALSE,
	date        DATE
)`

// Store is a storage.Store backed by a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
}

// New connects to the database named by dsn and creates the tasks table if
// it does not exist.
func New(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, createTasksTable); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create tasks table: %w", err)
	}
	return &Store{pool: pool}, nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, `
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
			date *time.Time
		)
		if err := rows.Scan(&r.Kind, &r.Description, &r.Done, &date); err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		if date != nil {
			r.Date = date.Format(storage.RecordDateLayout)
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read tasks: %w", err)
	}
	return storage.ToTasks(records)
}

// Save implements storage.Store. The table is rewritten in one transaction
// using a single batch of inserts.
func (s *Store) Save(ctx context.Context, tasks []*task.Task) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM tasks`); err != nil {
		return fmt.Errorf("clear tasks: %w", err)
	}

	batch := &pgx.Batch{}
	for i, t := range tasks {
		var date *time.Time
		if t.HasDate() {
			d := t.Date
			date = &d
		}
		batch.Queue(`
			INSERT INTO tasks (position, kind, description, done, date)
			VALUES ($1, $2, $3, $4, $5)`,
			i+1, string(t.Kind), t.Description, t.Done, date)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert tasks: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements storage.Store.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

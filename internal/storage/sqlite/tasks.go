package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/storage/query"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*models.Task, error) {
	task := &models.Task{}
	var (
		description          sql.NullString
		dueDate              sql.NullInt64
		createdAt, updatedAt int64
	)
	err := row.Scan(
		&task.ID,
		&task.Name,
		&description,
		&task.Status,
		&dueDate,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		task.Description = &description.String
	}
	task.DueDate = timePtr(dueDate)
	task.CreatedAt = fromMillis(createdAt)
	task.UpdatedAt = fromMillis(updatedAt)
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, filter storage.TaskFilter) (*storage.Page[models.Task], error) {
	filter = filter.Normalize()

	countStmt, err := query.CountTasks(query.SQLite, filter)
	if err != nil {
		return nil, err
	}
	var total int64
	err = s.db.QueryRowContext(ctx, countStmt.SQL, countStmt.Args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	listStmt, err := query.ListTasks(query.SQLite, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, listStmt.SQL, listStmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]models.Task, 0, filter.PerPage)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, *task)
	}
	err = rows.Err()
	if err != nil {
		return nil, fmt.Errorf("failed to iterate over rows: %w", err)
	}

	s.logger.Debug().
		Int("count", len(tasks)).
		Int64("total", total).
		Msg("selected tasks")
	return &storage.Page[models.Task]{
		Items:   tasks,
		Total:   total,
		Page:    filter.Page,
		PerPage: filter.PerPage,
	}, nil
}

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	ts := now()
	task.CreatedAt, task.UpdatedAt = ts, ts

	const insertTaskQuery = `
INSERT INTO tasks (name, description, status, due_date, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?)
`
	res, err := s.db.ExecContext(
		ctx,
		insertTaskQuery,
		task.Name,
		nullString(task.Description),
		task.Status,
		nullMillis(task.DueDate),
		toMillis(task.CreatedAt),
		toMillis(task.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}

	task.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read task id: %w", err)
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id, name, description, status, due_date, created_at, updated_at
FROM tasks
WHERE id = ?
`
	task, err := scanTask(s.db.QueryRowContext(ctx, selectTaskByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select task by id: %w", err)
	}
	return task, nil
}

func (s *Store) UpdateTask(ctx context.Context, task *models.Task) error {
	updatedAt := now()

	const updateTaskQuery = `
UPDATE tasks
SET name = ?,
    description = ?,
    status = ?,
    due_date = ?,
    updated_at = ?
WHERE id = ?
`
	res, err := s.db.ExecContext(
		ctx,
		updateTaskQuery,
		task.Name,
		nullString(task.Description),
		task.Status,
		nullMillis(task.DueDate),
		toMillis(updatedAt),
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	task.UpdatedAt = updatedAt
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

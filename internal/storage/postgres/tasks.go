package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/storage/query"
)

func scanTask(row pgx.Row) (*models.Task, error) {
	task := &models.Task{}
	err := row.Scan(
		&task.ID,
		&task.Name,
		&task.Description,
		&task.Status,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (s *Store) ListTasks(ctx context.Context, filter storage.TaskFilter) (*storage.Page[models.Task], error) {
	filter = filter.Normalize()

	countStmt, err := query.CountTasks(query.Postgres, filter)
	if err != nil {
		return nil, err
	}
	var total int64
	err = s.pgPool.QueryRow(ctx, countStmt.SQL, countStmt.Args...).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("failed to count tasks: %w", err)
	}

	listStmt, err := query.ListTasks(query.Postgres, filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.pgPool.Query(ctx, listStmt.SQL, listStmt.Args...)
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
INSERT INTO tasks (name,
                   description,
                   status,
                   due_date,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id
`
	err := s.pgPool.QueryRow(
		ctx,
		insertTaskQuery,
		task.Name,
		task.Description,
		task.Status,
		task.DueDate,
		task.CreatedAt,
		task.UpdatedAt,
	).Scan(&task.ID)
	if err != nil {
		return fmt.Errorf("failed to insert task: %w", err)
	}
	s.logger.Debug().
		Int64("task_id", task.ID).
		Msg("inserted task")
	return nil
}

func (s *Store) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	const selectTaskByIDQuery = `
SELECT id,
       name,
       description,
       status,
       due_date,
       created_at,
       updated_at
FROM tasks
WHERE id = $1
`
	task, err := scanTask(s.pgPool.QueryRow(ctx, selectTaskByIDQuery, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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
SET name = $1,
    description = $2,
    status = $3,
    due_date = $4,
    updated_at = $5
WHERE id = $6
`
	tag, err := s.pgPool.Exec(
		ctx,
		updateTaskQuery,
		task.Name,
		task.Description,
		task.Status,
		task.DueDate,
		updatedAt,
		task.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	task.UpdatedAt = updatedAt
	return nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	const deleteTaskQuery = `
DELETE FROM tasks
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteTaskQuery, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

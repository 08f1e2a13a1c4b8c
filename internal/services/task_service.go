package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

type taskServiceImpl struct {
	logger    zerolog.Logger
	tasks     storage.TaskRepository
	validator *validation.Validator
}

func NewTaskService(
	logger zerolog.Logger,
	tasks storage.TaskRepository,
	validator *validation.Validator,
) TaskService {
	return &taskServiceImpl{
		logger:    logger,
		tasks:     tasks,
		validator: validator,
	}
}

func (s *taskServiceImpl) ListTasks(ctx context.Context, filter storage.TaskFilter) (*storage.Page[models.Task], error) {
	filter = filter.Normalize()

	page, err := s.tasks.ListTasks(ctx, filter)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to select tasks")
		return nil, err
	}
	return page, nil
}

func (s *taskServiceImpl) CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error) {
	params.Name = strings.TrimSpace(params.Name)
	if errs := s.validator.Struct(params); errs != nil {
		return nil, errs
	}

	task := &models.Task{
		Name:        params.Name,
		Description: params.Description,
		Status:      models.StatusToDo,
	}
	if params.Status != nil {
		task.Status = *params.Status
	}
	if params.DueDate != nil {
		task.DueDate = parseDueDate(*params.DueDate)
	}

	err := s.tasks.CreateTask(ctx, task)
	if err != nil {
		s.logger.Error().
			Err(err).
			Msg("failed to insert task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("created task")
	return task, nil
}

func (s *taskServiceImpl) GetTaskByID(ctx context.Context, id int64) (*models.Task, error) {
	task, err := s.tasks.GetTaskByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to select task")
		return nil, err
	}
	return task, nil
}

// updateTaskInput holds the present fields of an update. A nil pointer
// means the field was omitted.
type updateTaskInput struct {
	Name    *string `json:"name" validate:"omitnil,required,max=255"`
	Status  *string `json:"status" validate:"omitnil,required,task_status"`
	DueDate *string `json:"due_date" validate:"omitnil,task_date"`
}

func (s *taskServiceImpl) UpdateTask(ctx context.Context, task *models.Task, params UpdateTaskParams) (*models.Task, error) {
	var input updateTaskInput
	if params.Name.Set {
		name := strings.TrimSpace(params.Name.Value)
		input.Name = &name
	}
	if params.Status.Set {
		input.Status = &params.Status.Value
	}
	if params.DueDate.Set && !params.DueDate.Null {
		input.DueDate = &params.DueDate.Value
	}
	if errs := s.validator.Struct(input); errs != nil {
		return nil, errs
	}

	updated := *task
	if input.Name != nil {
		updated.Name = *input.Name
	}
	if input.Status != nil {
		updated.Status = *input.Status
	}
	if params.Description.Set {
		updated.Description = params.Description.Ptr()
	}
	if params.DueDate.Set {
		updated.DueDate = nil
		if input.DueDate != nil {
			updated.DueDate = parseDueDate(*input.DueDate)
		}
	}

	err := s.tasks.UpdateTask(ctx, &updated)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to update task")
		return nil, err
	}

	s.logger.Info().
		Int64("task_id", updated.ID).
		Msg("updated task")
	return &updated, nil
}

func (s *taskServiceImpl) DeleteTask(ctx context.Context, task *models.Task) error {
	err := s.tasks.DeleteTask(ctx, task.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return ErrTaskNotFound
		}

		s.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to delete task")
		return err
	}

	s.logger.Info().
		Int64("task_id", task.ID).
		Msg("deleted task")
	return nil
}

// parseDueDate expects a value that already passed the task_date rule.
func parseDueDate(value string) *time.Time {
	t, _, ok := models.ParseDate(value)
	if !ok {
		return nil
	}
	return &t
}

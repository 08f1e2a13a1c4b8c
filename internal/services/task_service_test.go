package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

func TestCreateTaskDefaultsStatus(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))

	task, err := svc.CreateTask(context.Background(), CreateTaskParams{Name: "  Write docs  "})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected generated id")
	}
	if task.Name != "Write docs" {
		t.Fatalf("name = %q", task.Name)
	}
	if task.Status != models.StatusToDo {
		t.Fatalf("status = %q, want %q", task.Status, models.StatusToDo)
	}
	if task.Description != nil || task.DueDate != nil {
		t.Fatalf("expected empty optional fields, got %+v", task)
	}
}

func TestCreateTaskWithAllFields(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))

	task, err := svc.CreateTask(context.Background(), CreateTaskParams{
		Name:        "Ship release",
		Description: strPtr("v1.2"),
		Status:      strPtr(models.StatusInProgress),
		DueDate:     strPtr("2025-05-01 12:30:00"),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	want := time.Date(2025, time.May, 1, 12, 30, 0, 0, time.UTC)
	if task.DueDate == nil || !task.DueDate.Equal(want) {
		t.Fatalf("due_date = %v, want %v", task.DueDate, want)
	}
	if task.Status != models.StatusInProgress || *task.Description != "v1.2" {
		t.Fatalf("unexpected task %+v", task)
	}
}

func TestCreateTaskValidation(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}

	tests := []struct {
		name   string
		params CreateTaskParams
		fields []string
	}{
		{name: "missing name", params: CreateTaskParams{}, fields: []string{"name"}},
		{name: "blank name", params: CreateTaskParams{Name: "   "}, fields: []string{"name"}},
		{name: "name too long", params: CreateTaskParams{Name: string(long)}, fields: []string{"name"}},
		{
			name:   "unknown status",
			params: CreateTaskParams{Name: "x", Status: strPtr("Blocked")},
			fields: []string{"status"},
		},
		{
			name:   "bad date and empty status",
			params: CreateTaskParams{Name: "x", Status: strPtr(""), DueDate: strPtr("tomorrow")},
			fields: []string{"status", "due_date"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateTask(context.Background(), tt.params)

			var errs validation.Errors
			if !errors.As(err, &errs) {
				t.Fatalf("expected validation errors, got %v", err)
			}
			for _, field := range tt.fields {
				if !errs.Has(field) {
					t.Fatalf("expected error on %q, got %v", field, errs)
				}
			}
		})
	}
}

func TestUpdateTaskPartial(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskParams{
		Name:        "Draft",
		Description: strPtr("notes"),
		DueDate:     strPtr("2025-05-01"),
	})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	updated, err := svc.UpdateTask(ctx, task, UpdateTaskParams{Status: models.Some(models.StatusDone)})
	if err != nil {
		t.Fatalf("update status: %v", err)
	}
	if updated.Status != models.StatusDone || updated.Name != "Draft" {
		t.Fatalf("unexpected task %+v", updated)
	}
	if updated.Description == nil || updated.DueDate == nil {
		t.Fatal("omitted fields must be kept")
	}

	cleared, err := svc.UpdateTask(ctx, updated, UpdateTaskParams{
		Description: models.Null[string](),
		DueDate:     models.Null[string](),
	})
	if err != nil {
		t.Fatalf("clear fields: %v", err)
	}
	if cleared.Description != nil || cleared.DueDate != nil {
		t.Fatalf("expected cleared fields, got %+v", cleared)
	}

	got, err := svc.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Status != models.StatusDone || got.Description != nil || got.DueDate != nil {
		t.Fatalf("stored task %+v", got)
	}
}

func TestUpdateTaskValidation(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))
	ctx := context.Background()

	task, err := svc.CreateTask(ctx, CreateTaskParams{Name: "Draft"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}

	tests := []struct {
		name   string
		params UpdateTaskParams
		field  string
	}{
		{name: "null name", params: UpdateTaskParams{Name: models.Null[string]()}, field: "name"},
		{name: "empty name", params: UpdateTaskParams{Name: models.Some("")}, field: "name"},
		{name: "null status", params: UpdateTaskParams{Status: models.Null[string]()}, field: "status"},
		{name: "unknown status", params: UpdateTaskParams{Status: models.Some("Later")}, field: "status"},
		{name: "bad date", params: UpdateTaskParams{DueDate: models.Some("31/12/2025")}, field: "due_date"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdateTask(ctx, task, tt.params)

			var errs validation.Errors
			if !errors.As(err, &errs) || !errs.Has(tt.field) {
				t.Fatalf("expected error on %q, got %v", tt.field, err)
			}
		})
	}

	got, err := svc.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != "Draft" || got.Status != models.StatusToDo {
		t.Fatalf("rejected update changed the task: %+v", got)
	}
}

func TestTaskNotFound(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))
	ctx := context.Background()

	if _, err := svc.GetTaskByID(ctx, 42); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("get: got %v", err)
	}

	task, err := svc.CreateTask(ctx, CreateTaskParams{Name: "Short lived"})
	if err != nil {
		t.Fatalf("create task: %v", err)
	}
	if err := svc.DeleteTask(ctx, task); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if err := svc.DeleteTask(ctx, task); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("second delete: got %v", err)
	}
	if _, err := svc.UpdateTask(ctx, task, UpdateTaskParams{Name: models.Some("x")}); !errors.Is(err, ErrTaskNotFound) {
		t.Fatalf("update deleted: got %v", err)
	}
}

func TestListTasksNormalizesFilter(t *testing.T) {
	svc := newTestTaskService(t, openTestStore(t))
	ctx := context.Background()

	for _, name := range []string{"a", "b", "c"} {
		if _, err := svc.CreateTask(ctx, CreateTaskParams{Name: name}); err != nil {
			t.Fatalf("create task: %v", err)
		}
	}

	page, err := svc.ListTasks(ctx, storage.TaskFilter{SortBy: "password", SortDirection: "sideways", PerPage: 1000})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.PerPage != storage.MaxPerPage || page.Page != 1 {
		t.Fatalf("page = %d, per_page = %d", page.Page, page.PerPage)
	}
	if page.Total != 3 || len(page.Items) != 3 {
		t.Fatalf("total = %d, items = %d", page.Total, len(page.Items))
	}
}

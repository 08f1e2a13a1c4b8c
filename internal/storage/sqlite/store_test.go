package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

func openTempStore(t *testing.T) *Store {
	t.Helper()

	store, err := Open(context.Background(), zerolog.Nop(), filepath.Join(t.TempDir(), "tasks.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func strPtr(s string) *string { return &s }

func timeAt(day, hour int) *time.Time {
	t := time.Date(2025, time.March, day, hour, 0, 0, 0, time.UTC)
	return &t
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open(context.Background(), zerolog.Nop(), " "); err == nil {
		t.Fatal("expected empty path error")
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.db")
	for i := 0; i < 2; i++ {
		store, err := Open(context.Background(), zerolog.Nop(), path)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		if err := store.Close(); err != nil {
			t.Fatalf("close #%d: %v", i, err)
		}
	}
}

func TestCreateGetTaskRoundTrip(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	task := &models.Task{
		Name:        "Write report",
		Description: strPtr("quarterly numbers"),
		Status:      models.StatusInProgress,
		DueDate:     timeAt(20, 9),
	}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}
	if task.ID == 0 {
		t.Fatal("expected generated id")
	}
	if task.CreatedAt.IsZero() || !task.CreatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("unexpected timestamps %v %v", task.CreatedAt, task.UpdatedAt)
	}

	got, err := store.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != task.Name || got.Status != task.Status {
		t.Fatalf("got %+v, want %+v", got, task)
	}
	if got.Description == nil || *got.Description != "quarterly numbers" {
		t.Fatalf("description = %v", got.Description)
	}
	if got.DueDate == nil || !got.DueDate.Equal(*task.DueDate) {
		t.Fatalf("due_date = %v, want %v", got.DueDate, task.DueDate)
	}
	if !got.CreatedAt.Equal(task.CreatedAt) || !got.UpdatedAt.Equal(task.UpdatedAt) {
		t.Fatalf("timestamps = %v/%v, want %v/%v", got.CreatedAt, got.UpdatedAt, task.CreatedAt, task.UpdatedAt)
	}
}

func TestCreateTaskRejectsUnknownStatus(t *testing.T) {
	store := openTempStore(t)

	err := store.CreateTask(context.Background(), &models.Task{Name: "x", Status: "Blocked"})
	if err == nil {
		t.Fatal("expected check constraint error")
	}
}

func TestUpdateAndDeleteTask(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	task := &models.Task{Name: "Draft", Description: strPtr("notes"), Status: models.StatusToDo, DueDate: timeAt(2, 0)}
	if err := store.CreateTask(ctx, task); err != nil {
		t.Fatalf("create task: %v", err)
	}

	task.Name = "Final"
	task.Status = models.StatusDone
	task.Description = nil
	task.DueDate = nil
	if err := store.UpdateTask(ctx, task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	got, err := store.GetTaskByID(ctx, task.ID)
	if err != nil {
		t.Fatalf("get task: %v", err)
	}
	if got.Name != "Final" || got.Status != models.StatusDone || got.Description != nil || got.DueDate != nil {
		t.Fatalf("unexpected task after update: %+v", got)
	}

	if err := store.DeleteTask(ctx, task.ID); err != nil {
		t.Fatalf("delete task: %v", err)
	}
	if _, err := store.GetTaskByID(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.DeleteTask(ctx, task.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if err := store.UpdateTask(ctx, task); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on update of deleted task, got %v", err)
	}
}

func seedTasks(t *testing.T, store *Store) []*models.Task {
	t.Helper()

	tasks := []*models.Task{
		{Name: "Buy groceries", Description: strPtr("milk, FOOd and bread"), Status: models.StatusToDo, DueDate: timeAt(5, 10)},
		{Name: "Food delivery app", Description: nil, Status: models.StatusDone, DueDate: timeAt(10, 0)},
		{Name: "Fix bug", Description: strPtr("null pointer"), Status: models.StatusDone, DueDate: timeAt(15, 23)},
		{Name: "Plan trip", Description: strPtr("100% fun"), Status: models.StatusInProgress, DueDate: nil},
		{Name: "Refactor", Description: strPtr("foobar module"), Status: models.StatusDone, DueDate: timeAt(20, 12)},
	}
	for _, task := range tasks {
		if err := store.CreateTask(context.Background(), task); err != nil {
			t.Fatalf("create task %q: %v", task.Name, err)
		}
	}
	return tasks
}

func names(page *storage.Page[models.Task]) []string {
	out := make([]string, 0, len(page.Items))
	for _, task := range page.Items {
		out = append(out, task.Name)
	}
	return out
}

func equalNames(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestListTasksFilters(t *testing.T) {
	store := openTempStore(t)
	seedTasks(t, store)

	tests := []struct {
		name   string
		filter storage.TaskFilter
		want   []string
		total  int64
	}{
		{
			name:   "status",
			filter: storage.TaskFilter{Status: models.StatusDone, SortBy: "id", SortDirection: "asc"},
			want:   []string{"Food delivery app", "Fix bug", "Refactor"},
			total:  3,
		},
		{
			name:   "search name or description case insensitive",
			filter: storage.TaskFilter{Search: "foo", SortBy: "id", SortDirection: "asc"},
			want:   []string{"Buy groceries", "Food delivery app", "Refactor"},
			total:  3,
		},
		{
			name:   "search combined with status",
			filter: storage.TaskFilter{Search: "FOO", Status: models.StatusDone, SortBy: "id", SortDirection: "asc"},
			want:   []string{"Food delivery app", "Refactor"},
			total:  2,
		},
		{
			name:   "search wildcard is literal",
			filter: storage.TaskFilter{Search: "100%"},
			want:   []string{"Plan trip"},
			total:  1,
		},
		{
			name:   "due date range inclusive",
			filter: storage.TaskFilter{DueDateFrom: timeAt(10, 0), DueDateTo: timeAt(15, 23), SortBy: "due_date", SortDirection: "asc"},
			want:   []string{"Food delivery app", "Fix bug"},
			total:  2,
		},
		{
			name:   "due date from only",
			filter: storage.TaskFilter{DueDateFrom: timeAt(16, 0)},
			want:   []string{"Refactor"},
			total:  1,
		},
		{
			name:   "sort by name desc",
			filter: storage.TaskFilter{SortBy: "name", SortDirection: "desc"},
			want:   []string{"Refactor", "Plan trip", "Food delivery app", "Fix bug", "Buy groceries"},
			total:  5,
		},
		{
			name:   "ties broken by id",
			filter: storage.TaskFilter{SortBy: "status", SortDirection: "asc"},
			want:   []string{"Food delivery app", "Fix bug", "Refactor", "Plan trip", "Buy groceries"},
			total:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := store.ListTasks(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("list tasks: %v", err)
			}
			if page.Total != tt.total {
				t.Fatalf("total = %d, want %d", page.Total, tt.total)
			}
			if got := names(page); !equalNames(got, tt.want) {
				t.Fatalf("names = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestListTasksSearchFoldsUnicode(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	for _, task := range []*models.Task{
		{Name: "Äpfel kaufen", Status: models.StatusToDo},
		{Name: "Über alles", Status: models.StatusToDo},
		{Name: "Read", Description: strPtr("ÉTUDE No. 3"), Status: models.StatusDone},
	} {
		if err := store.CreateTask(ctx, task); err != nil {
			t.Fatalf("create task %q: %v", task.Name, err)
		}
	}

	tests := []struct {
		search string
		want   []string
	}{
		{search: "Äpfel", want: []string{"Äpfel kaufen"}},
		{search: "äpfel", want: []string{"Äpfel kaufen"}},
		{search: "über", want: []string{"Über alles"}},
		{search: "ÜBER", want: []string{"Über alles"}},
		{search: "étude", want: []string{"Read"}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			page, err := store.ListTasks(ctx, storage.TaskFilter{Search: tt.search, SortBy: "id", SortDirection: "asc"})
			if err != nil {
				t.Fatalf("list tasks: %v", err)
			}
			if got := names(page); !equalNames(got, tt.want) || page.Total != int64(len(tt.want)) {
				t.Fatalf("names = %v (total %d), want %v", got, page.Total, tt.want)
			}
		})
	}
}

func TestListTasksPagination(t *testing.T) {
	store := openTempStore(t)
	seedTasks(t, store)
	ctx := context.Background()

	page, err := store.ListTasks(ctx, storage.TaskFilter{SortBy: "id", SortDirection: "asc", PerPage: 2, Page: 3})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if page.Total != 5 || page.LastPage() != 3 || page.Page != 3 || page.PerPage != 2 {
		t.Fatalf("unexpected page meta %+v last=%d", page, page.LastPage())
	}
	if got := names(page); !equalNames(got, []string{"Refactor"}) {
		t.Fatalf("names = %v", got)
	}

	page, err = store.ListTasks(ctx, storage.TaskFilter{PerPage: 2, Page: 9})
	if err != nil {
		t.Fatalf("list tasks: %v", err)
	}
	if len(page.Items) != 0 || page.Total != 5 {
		t.Fatalf("expected empty page past the end, got %d items total %d", len(page.Items), page.Total)
	}
}

func TestCreateUserAndTokens(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()

	user := &models.User{ID: "user-1", Name: "A", Email: "a@x.com", Password: "hash"}
	first := &models.Token{ID: "token-1", UserID: user.ID, Name: models.DefaultTokenName}
	if err := store.CreateUser(ctx, user, first); err != nil {
		t.Fatalf("create user: %v", err)
	}

	exists, err := store.EmailExists(ctx, "a@x.com")
	if err != nil || !exists {
		t.Fatalf("EmailExists = %v, %v", exists, err)
	}

	dup := &models.User{ID: "user-2", Name: "B", Email: "a@x.com", Password: "hash"}
	if err := store.CreateUser(ctx, dup, &models.Token{ID: "token-x", UserID: dup.ID, Name: "t"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if _, _, err := store.GetTokenWithUser(ctx, "token-x"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("token of rejected user must not exist, got %v", err)
	}

	token, gotUser, err := store.GetTokenWithUser(ctx, "token-1")
	if err != nil {
		t.Fatalf("get token: %v", err)
	}
	if token.UserID != user.ID || gotUser.Email != "a@x.com" || token.LastUsedAt != nil {
		t.Fatalf("unexpected token %+v user %+v", token, gotUser)
	}

	usedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := store.TouchToken(ctx, "token-1", usedAt); err != nil {
		t.Fatalf("touch token: %v", err)
	}
	token, _, err = store.GetTokenWithUser(ctx, "token-1")
	if err != nil || token.LastUsedAt == nil || !token.LastUsedAt.Equal(usedAt) {
		t.Fatalf("last_used_at = %v, %v", token.LastUsedAt, err)
	}

	second := &models.Token{ID: "token-2", UserID: user.ID, Name: models.DefaultTokenName}
	if err := store.ReplaceUserTokens(ctx, second); err != nil {
		t.Fatalf("replace tokens: %v", err)
	}
	if _, _, err := store.GetTokenWithUser(ctx, "token-1"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected old token revoked, got %v", err)
	}

	if err := store.DeleteToken(ctx, "token-2"); err != nil {
		t.Fatalf("delete token: %v", err)
	}
	if err := store.DeleteToken(ctx, "token-2"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestGetUserByEmailNotFound(t *testing.T) {
	store := openTempStore(t)

	if _, err := store.GetUserByEmail(context.Background(), "nobody@x.com"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

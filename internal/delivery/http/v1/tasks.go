package v1

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/services"
	"github.com/adanyl0v/task-manager-api/internal/storage"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

type taskPageResponse struct {
	CurrentPage  int            `json:"current_page"`
	Data         []taskResponse `json:"data"`
	FirstPageURL string         `json:"first_page_url"`
	From         *int           `json:"from"`
	LastPage     int            `json:"last_page"`
	LastPageURL  string         `json:"last_page_url"`
	NextPageURL  *string        `json:"next_page_url"`
	Path         string         `json:"path"`
	PerPage      int            `json:"per_page"`
	PrevPageURL  *string        `json:"prev_page_url"`
	To           *int           `json:"to"`
	Total        int64          `json:"total"`
}

func newTaskPageResponse(c *gin.Context, page *storage.Page[models.Task]) taskPageResponse {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	path := scheme + "://" + c.Request.Host + c.Request.URL.Path
	pageURL := func(n int) string {
		return path + "?page=" + strconv.Itoa(n)
	}

	data := make([]taskResponse, 0, len(page.Items))
	for i := range page.Items {
		data = append(data, newTaskResponse(&page.Items[i]))
	}

	lastPage := page.LastPage()
	resp := taskPageResponse{
		CurrentPage:  page.Page,
		Data:         data,
		FirstPageURL: pageURL(1),
		LastPage:     lastPage,
		LastPageURL:  pageURL(lastPage),
		Path:         path,
		PerPage:      page.PerPage,
		Total:        page.Total,
	}
	if len(data) > 0 {
		from, to := page.From(), page.To()
		resp.From = &from
		resp.To = &to
	}
	if page.Page < lastPage {
		next := pageURL(page.Page + 1)
		resp.NextPageURL = &next
	}
	if page.Page > 1 {
		prev := pageURL(page.Page - 1)
		resp.PrevPageURL = &prev
	}
	return resp
}

// parseTaskFilter reads the recognized listing keys. Values that do not
// parse are treated as absent.
func parseTaskFilter(c *gin.Context) storage.TaskFilter {
	filter := storage.TaskFilter{
		Status:        c.Query("status"),
		Search:        c.Query("search"),
		SortBy:        c.Query("sort_by"),
		SortDirection: c.Query("sort_direction"),
	}
	filter.PerPage = queryInt(c, "per_page")
	filter.Page = queryInt(c, "page")

	if from, _, ok := models.ParseDate(c.Query("due_date_from")); ok {
		filter.DueDateFrom = &from
	}
	if to, dateOnly, ok := models.ParseDate(c.Query("due_date_to")); ok {
		if dateOnly {
			to = to.AddDate(0, 0, 1).Add(-time.Microsecond)
		}
		filter.DueDateTo = &to
	}
	return filter
}

// queryInt returns 0 for a missing or unparseable value, including one out
// of the int range.
func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}

func (h *handlerImpl) HandleListTasks(c *gin.Context) {
	page, err := h.tasks.ListTasks(c, parseTaskFilter(c))
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to list tasks")
		abort(c, newInternalError(err))
		return
	}

	respond(c, http.StatusOK, "", newTaskPageResponse(c, page))
}

func (h *handlerImpl) HandleCreateTask(c *gin.Context) {
	var req services.CreateTaskParams
	if !h.bindJSON(c, &req) {
		return
	}

	task, err := h.tasks.CreateTask(c, req)
	if err != nil {
		var errs validation.Errors
		if errors.As(err, &errs) {
			abort(c, newValidationError(errs))
			return
		}

		h.logger.Error().
			Err(err).
			Msg("failed to create task")
		abort(c, newInternalError(err))
		return
	}

	respond(c, http.StatusCreated, "Task created successfully", newTaskResponse(task))
}

func (h *handlerImpl) HandleGetTask(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	respond(c, http.StatusOK, "", newTaskResponse(task))
}

func (h *handlerImpl) HandleUpdateTask(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	var req services.UpdateTaskParams
	if !h.bindJSON(c, &req) {
		return
	}

	updated, err := h.tasks.UpdateTask(c, task, req)
	if err != nil {
		var errs validation.Errors
		switch {
		case errors.As(err, &errs):
			abort(c, newValidationError(errs))
		case errors.Is(err, services.ErrTaskNotFound):
			abort(c, newNotFoundError(msgTaskNotFound))
		default:
			h.logger.Error().
				Err(err).
				Int64("task_id", task.ID).
				Msg("failed to update task")
			abort(c, newInternalError(err))
		}
		return
	}

	respond(c, http.StatusOK, "Task updated successfully", newTaskResponse(updated))
}

func (h *handlerImpl) HandleDeleteTask(c *gin.Context) {
	task, ok := h.loadTask(c)
	if !ok {
		return
	}

	err := h.tasks.DeleteTask(c, task)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(msgTaskNotFound))
			return
		}

		h.logger.Error().
			Err(err).
			Int64("task_id", task.ID).
			Msg("failed to delete task")
		abort(c, newInternalError(err))
		return
	}

	respond(c, http.StatusOK, "Task deleted successfully", nil)
}

// loadTask resolves the :id path parameter. An id that is not a positive
// integer cannot name a task and is reported as not found.
func (h *handlerImpl) loadTask(c *gin.Context) (*models.Task, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		abort(c, newNotFoundError(msgTaskNotFound))
		return nil, false
	}

	task, err := h.tasks.GetTaskByID(c, id)
	if err != nil {
		if errors.Is(err, services.ErrTaskNotFound) {
			abort(c, newNotFoundError(msgTaskNotFound))
			return nil, false
		}

		h.logger.Error().
			Err(err).
			Int64("task_id", id).
			Msg("failed to get task")
		abort(c, newInternalError(err))
		return nil, false
	}
	return task, true
}

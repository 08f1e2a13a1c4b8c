package v1

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/validation"
)

// envelope wraps every response body.
type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Data    any               `json:"data,omitempty"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func respond(c *gin.Context, status int, message string, data any) {
	c.JSON(status, envelope{
		Success: true,
		Message: message,
		Data:    data,
	})
}

type userResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newUserResponse(user *models.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

type taskResponse struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	Description *string    `json:"description"`
	Status      string     `json:"status"`
	DueDate     *time.Time `json:"due_date"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func newTaskResponse(task *models.Task) taskResponse {
	return taskResponse{
		ID:          task.ID,
		Name:        task.Name,
		Description: task.Description,
		Status:      task.Status,
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

func (h *handlerImpl) HandleHealth(c *gin.Context) {
	err := h.pinger.Ping(c)
	if err != nil {
		h.logger.Error().
			Err(err).
			Msg("failed to ping store")
		abort(c, newAPIError(http.StatusServiceUnavailable, http.StatusText(http.StatusServiceUnavailable)))
		return
	}
	respond(c, http.StatusOK, "OK", nil)
}

func (h *handlerImpl) HandleNotFound(c *gin.Context) {
	abort(c, newNotFoundError(msgEndpointNotFound))
}

func (h *handlerImpl) HandleMethodNotAllowed(c *gin.Context) {
	abort(c, newAPIError(http.StatusMethodNotAllowed, msgMethodNotAllowed))
}

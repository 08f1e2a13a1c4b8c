package services

import (
	"context"
	"errors"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

var (
	ErrInvalidCredentials = errors.New("invalid login credentials")
	ErrUnauthenticated    = errors.New("unauthenticated")
	ErrTaskNotFound       = errors.New("task not found")
)

// TokenType is the scheme clients must use in the Authorization header.
const TokenType = "Bearer"

type AuthService interface {
	// Register validates the params, creates the user and issues its
	// first token in one transaction.
	//
	// It returns validation.Errors when any field is invalid, including
	// an email that is already taken.
	Register(ctx context.Context, params RegisterParams) (*AuthResult, error)

	// Login authenticates the user by email and password.
	//
	// It revokes every token the user holds and issues a new one. It
	// returns ErrInvalidCredentials for both an unknown email and a wrong
	// password.
	Login(ctx context.Context, params LoginParams) (*AuthResult, error)

	// Authenticate resolves a bearer token to its token record and owner.
	//
	// It returns ErrUnauthenticated if the token is malformed, forged,
	// expired or revoked.
	Authenticate(ctx context.Context, accessToken string) (*models.Token, *models.User, error)

	// Logout revokes exactly the given token. It returns
	// ErrUnauthenticated if the token was already revoked.
	Logout(ctx context.Context, tokenID string) error
}

type TaskService interface {
	ListTasks(ctx context.Context, filter storage.TaskFilter) (*storage.Page[models.Task], error)

	// CreateTask validates the params and persists a new task. It returns
	// validation.Errors on invalid input.
	CreateTask(ctx context.Context, params CreateTaskParams) (*models.Task, error)

	// GetTaskByID returns ErrTaskNotFound if the task doesn't exist.
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)

	// UpdateTask applies only the fields set in params. It returns
	// validation.Errors on invalid input and ErrTaskNotFound if the task
	// was deleted meanwhile.
	UpdateTask(ctx context.Context, task *models.Task, params UpdateTaskParams) (*models.Task, error)

	// DeleteTask permanently removes the task. It returns ErrTaskNotFound
	// if the task was already deleted.
	DeleteTask(ctx context.Context, task *models.Task) error
}

type RegisterParams struct {
	Name                 string `json:"name" validate:"required,max=255"`
	Email                string `json:"email" validate:"required,email,max=255"`
	Password             string `json:"password" validate:"required,min=8,max=255,eqfield=PasswordConfirmation"`
	PasswordConfirmation string `json:"password_confirmation"`
}

type LoginParams struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResult struct {
	User        *models.User
	Token       *models.Token
	AccessToken string
	TokenType   string
}

type CreateTaskParams struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Description *string `json:"description"`
	Status      *string `json:"status" validate:"omitnil,task_status"`
	DueDate     *string `json:"due_date" validate:"omitnil,task_date"`
}

// UpdateTaskParams carries a partial update. Unset fields are left as
// they are; an explicit null clears description and due_date.
type UpdateTaskParams struct {
	Name        models.Optional[string] `json:"name"`
	Description models.Optional[string] `json:"description"`
	Status      models.Optional[string] `json:"status"`
	DueDate     models.Optional[string] `json:"due_date"`
}

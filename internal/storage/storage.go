// Package storage declares the persistence contracts shared by the Postgres
// and SQLite backends.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/adanyl0v/task-manager-api/internal/models"
)

var (
	ErrNotFound      = errors.New("record not found")
	ErrAlreadyExists = errors.New("record already exists")
)

type UserRepository interface {
	// CreateUser inserts the user and, when token is not nil, its first
	// token in a single transaction. It returns ErrAlreadyExists when the
	// email is taken.
	CreateUser(ctx context.Context, user *models.User, token *models.Token) error

	// GetUserByEmail returns ErrNotFound when no user has the email.
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)

	EmailExists(ctx context.Context, email string) (bool, error)
}

type TokenRepository interface {
	// ReplaceUserTokens deletes every token of token.UserID and inserts
	// token, atomically.
	ReplaceUserTokens(ctx context.Context, token *models.Token) error

	// GetTokenWithUser returns ErrNotFound for revoked or unknown tokens.
	GetTokenWithUser(ctx context.Context, tokenID string) (*models.Token, *models.User, error)

	TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error

	// DeleteToken returns ErrNotFound when the token was already revoked.
	DeleteToken(ctx context.Context, tokenID string) error
}

type TaskRepository interface {
	ListTasks(ctx context.Context, filter TaskFilter) (*Page[models.Task], error)

	// CreateTask fills in the generated ID and timestamps.
	CreateTask(ctx context.Context, task *models.Task) error

	// GetTaskByID returns ErrNotFound when the task does not exist.
	GetTaskByID(ctx context.Context, id int64) (*models.Task, error)

	// UpdateTask writes every mutable column and refreshes UpdatedAt.
	UpdateTask(ctx context.Context, task *models.Task) error

	// DeleteTask returns ErrNotFound when nothing was deleted.
	DeleteTask(ctx context.Context, id int64) error
}

type Store interface {
	UserRepository
	TokenRepository
	TaskRepository

	Ping(ctx context.Context) error
	Close() error
}

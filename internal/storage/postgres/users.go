package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

func (s *Store) CreateUser(ctx context.Context, user *models.User, token *models.Token) error {
	ts := now()
	user.CreatedAt, user.UpdatedAt = ts, ts

	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const insertUserQuery = `
INSERT INTO users (id,
                   name,
                   email,
                   password,
                   created_at,
                   updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
`
	_, err = tx.Exec(
		ctx,
		insertUserQuery,
		user.ID,
		user.Name,
		user.Email,
		user.Password,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	s.logger.Debug().
		Str("user_id", user.ID).
		Msg("inserted user")

	if token != nil {
		err = insertToken(ctx, tx, token)
		if err != nil {
			return err
		}
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	const selectUserByEmailQuery = `
SELECT id,
       name,
       email,
       password,
       created_at,
       updated_at
FROM users
WHERE LOWER(email) = LOWER($1)
`
	user := &models.User{}
	err := s.pgPool.QueryRow(
		ctx,
		selectUserByEmailQuery,
		email,
	).Scan(
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("failed to select user by email: %w", err)
	}
	return user, nil
}

func (s *Store) EmailExists(ctx context.Context, email string) (bool, error) {
	const selectEmailExistsQuery = `
SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))
`
	var exists bool
	err := s.pgPool.QueryRow(ctx, selectEmailExistsQuery, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check email: %w", err)
	}
	return exists, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

func insertToken(ctx context.Context, tx pgx.Tx, token *models.Token) error {
	token.CreatedAt = now()

	const insertTokenQuery = `
INSERT INTO personal_access_tokens (id,
                                    user_id,
                                    name,
                                    created_at)
VALUES ($1, $2, $3, $4)
`
	_, err := tx.Exec(
		ctx,
		insertTokenQuery,
		token.ID,
		token.UserID,
		token.Name,
		token.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (s *Store) ReplaceUserTokens(ctx context.Context, token *models.Token) error {
	tx, err := s.pgPool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	const deleteTokensByUserIDQuery = `
DELETE FROM personal_access_tokens
       WHERE user_id = $1
`
	tag, err := tx.Exec(
		ctx,
		deleteTokensByUserIDQuery,
		token.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tokens by user id: %w", err)
	}
	s.logger.Debug().
		Str("user_id", token.UserID).
		Int64("affected", tag.RowsAffected()).
		Msg("deleted tokens by user id")

	err = insertToken(ctx, tx, token)
	if err != nil {
		return err
	}

	err = tx.Commit(ctx)
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *Store) GetTokenWithUser(ctx context.Context, tokenID string) (*models.Token, *models.User, error) {
	const selectTokenWithUserQuery = `
SELECT t.id,
       t.user_id,
       t.name,
       t.last_used_at,
       t.created_at,
       u.id,
       u.name,
       u.email,
       u.password,
       u.created_at,
       u.updated_at
FROM personal_access_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.id = $1
`
	token := &models.Token{}
	user := &models.User{}
	err := s.pgPool.QueryRow(
		ctx,
		selectTokenWithUserQuery,
		tokenID,
	).Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&token.LastUsedAt,
		&token.CreatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil, storage.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to select token: %w", err)
	}
	return token, user, nil
}

func (s *Store) TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	const updateTokenLastUsedQuery = `
UPDATE personal_access_tokens
SET last_used_at = $1
WHERE id = $2
`
	_, err := s.pgPool.Exec(ctx, updateTokenLastUsedQuery, usedAt, tokenID)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID string) error {
	const deleteTokenQuery = `
DELETE FROM personal_access_tokens
WHERE id = $1
`
	tag, err := s.pgPool.Exec(ctx, deleteTokenQuery, tokenID)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/adanyl0v/task-manager-api/internal/models"
	"github.com/adanyl0v/task-manager-api/internal/storage"
)

func insertToken(ctx context.Context, tx *sql.Tx, token *models.Token) error {
	token.CreatedAt = now()

	const insertTokenQuery = `
INSERT INTO personal_access_tokens (id, user_id, name, created_at)
VALUES (?, ?, ?, ?)
`
	_, err := tx.ExecContext(
		ctx,
		insertTokenQuery,
		token.ID,
		token.UserID,
		token.Name,
		toMillis(token.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to insert token: %w", err)
	}
	return nil
}

func (s *Store) ReplaceUserTokens(ctx context.Context, token *models.Token) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(
		ctx,
		`DELETE FROM personal_access_tokens WHERE user_id = ?`,
		token.UserID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete tokens by user id: %w", err)
	}
	affected, _ := res.RowsAffected()

	err = insertToken(ctx, tx, token)
	if err != nil {
		return err
	}

	err = tx.Commit()
	if err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	s.logger.Debug().
		Str("user_id", token.UserID).
		Int64("revoked", affected).
		Msg("replaced user tokens")
	return nil
}

func (s *Store) GetTokenWithUser(ctx context.Context, tokenID string) (*models.Token, *models.User, error) {
	const selectTokenWithUserQuery = `
SELECT t.id, t.user_id, t.name, t.last_used_at, t.created_at,
       u.id, u.name, u.email, u.password, u.created_at, u.updated_at
FROM personal_access_tokens t
JOIN users u ON u.id = t.user_id
WHERE t.id = ?
`
	token := &models.Token{}
	user := &models.User{}
	var (
		lastUsedAt                                 sql.NullInt64
		tokenCreatedAt, userCreatedAt, userUpdated int64
	)
	err := s.db.QueryRowContext(ctx, selectTokenWithUserQuery, tokenID).Scan(
		&token.ID,
		&token.UserID,
		&token.Name,
		&lastUsedAt,
		&tokenCreatedAt,
		&user.ID,
		&user.Name,
		&user.Email,
		&user.Password,
		&userCreatedAt,
		&userUpdated,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, storage.ErrNotFound
		}
		return nil, nil, fmt.Errorf("failed to select token: %w", err)
	}

	token.LastUsedAt = timePtr(lastUsedAt)
	token.CreatedAt = fromMillis(tokenCreatedAt)
	user.CreatedAt = fromMillis(userCreatedAt)
	user.UpdatedAt = fromMillis(userUpdated)
	return token, user, nil
}

func (s *Store) TouchToken(ctx context.Context, tokenID string, usedAt time.Time) error {
	_, err := s.db.ExecContext(
		ctx,
		`UPDATE personal_access_tokens SET last_used_at = ? WHERE id = ?`,
		toMillis(usedAt),
		tokenID,
	)
	if err != nil {
		return fmt.Errorf("failed to touch token: %w", err)
	}
	return nil
}

func (s *Store) DeleteToken(ctx context.Context, tokenID string) error {
	res, err := s.db.ExecContext(
		ctx,
		`DELETE FROM personal_access_tokens WHERE id = ?`,
		tokenID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}
	return nil
}

package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// CreateUser вставляет нового пользователя портала.
func (s *Storage) CreateUser(ctx context.Context, user models.User) error {
	const op = "storage.CreateUser"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	roles, err := marshalStrings(user.Roles)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	query := `INSERT INTO users (id, tenant_id, user_id, email, display_name, roles, status, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err = s.DB.ExecContext(ctx, query,
		user.ID, user.TenantID, user.UserID, user.Email, user.DisplayName, roles, user.Status, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// FindUser возвращает пользователя по его идентификатору из токена.
// Возвращает ErrNotFound, если пользователь ещё не создан.
func (s *Storage) FindUser(ctx context.Context, userID string) (*models.User, error) {
	const op = "storage.FindUser"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_id, user_id, email, display_name, roles, status, created_at
			  FROM users WHERE user_id = $1`
	row := s.DB.QueryRowContext(ctx, query, userID)

	var result models.User
	var roles []byte
	err := row.Scan(&result.ID, &result.TenantID, &result.UserID, &result.Email,
		&result.DisplayName, &roles, &result.Status, &result.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := unmarshalStrings(roles, &result.Roles); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

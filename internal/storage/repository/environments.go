package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

const selectEnvironmentColumns = `id, tenant_id, subscription_id, tier_id, name,
	resource_group_name, region, status, created_at, expires_at, soft_deleted`

func scanEnvironment(row interface{ Scan(...any) error }) (*models.Environment, error) {
	var result models.Environment
	err := row.Scan(&result.ID, &result.TenantID, &result.SubscriptionID, &result.TierID,
		&result.Name, &result.ResourceGroupName, &result.Region, &result.Status,
		&result.CreatedAt, &result.ExpiresAt, &result.SoftDeleted)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// CreateEnvironment вставляет новое окружение, предварительно проверив квоту
// тарифа в той же транзакции. Учитываются только неудалённые окружения
// подписки. Возвращает ErrQuotaExceeded при превышении.
func (s *Storage) CreateEnvironment(ctx context.Context, env models.Environment, maxEnvironments int) error {
	const op = "storage.CreateEnvironment"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer tx.Rollback() //nolint:errcheck

	countQuery := `SELECT COUNT(*) FROM environments
			  WHERE tenant_id = $1 AND subscription_id = $2
				AND status != 'Deleted' AND soft_deleted = false`
	var count int
	if err := tx.QueryRowContext(ctx, countQuery, env.TenantID, env.SubscriptionID).Scan(&count); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count >= maxEnvironments {
		return fmt.Errorf("%s: %w", op, ErrQuotaExceeded)
	}

	insertQuery := `INSERT INTO environments (id, tenant_id, subscription_id, tier_id, name,
				  resource_group_name, region, status, created_at, expires_at, soft_deleted)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
	_, err = tx.ExecContext(ctx, insertQuery,
		env.ID, env.TenantID, env.SubscriptionID, env.TierID, env.Name,
		env.ResourceGroupName, env.Region, env.Status, env.CreatedAt, env.ExpiresAt, env.SoftDeleted)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadEnvironment возвращает окружение по ID в пределах арендатора,
// включая мягко удалённые. Фильтрацию по SoftDeleted делает вызывающий.
func (s *Storage) ReadEnvironment(ctx context.Context, tenantID, id string) (*models.Environment, error) {
	const op = "storage.ReadEnvironment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + selectEnvironmentColumns + `
			  FROM environments WHERE id = $1 AND tenant_id = $2`
	result, err := scanEnvironment(s.DB.QueryRowContext(ctx, query, id, tenantID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListEnvironments возвращает все неудалённые окружения арендатора.
func (s *Storage) ListEnvironments(ctx context.Context, tenantID string) ([]*models.Environment, error) {
	const op = "storage.ListEnvironments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + selectEnvironmentColumns + `
			  FROM environments
			  WHERE tenant_id = $1 AND soft_deleted = false
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Environment
	for rows.Next() {
		item, err := scanEnvironment(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// SetEnvironmentStatus обновляет статус окружения и возвращает количество
// изменённых строк.
func (s *Storage) SetEnvironmentStatus(ctx context.Context, tenantID, id string, status models.EnvironmentStatus) (int, error) {
	const op = "storage.SetEnvironmentStatus"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE environments SET status = $1 WHERE id = $2 AND tenant_id = $3`
	result, err := s.DB.ExecContext(ctx, query, status, id, tenantID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

// SoftDeleteEnvironment помечает окружение удалённым, не трогая саму строку.
func (s *Storage) SoftDeleteEnvironment(ctx context.Context, tenantID, id string) (int, error) {
	const op = "storage.SoftDeleteEnvironment"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE environments SET status = 'Deleted', soft_deleted = true
			  WHERE id = $1 AND tenant_id = $2 AND soft_deleted = false`
	result, err := s.DB.ExecContext(ctx, query, id, tenantID)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return int(rowsAffected), nil
}

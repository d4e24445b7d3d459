package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// CreateSubscription вставляет новую подписку.
func (s *Storage) CreateSubscription(ctx context.Context, sub models.Subscription) error {
	const op = "storage.CreateSubscription"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO subscriptions (id, tenant_id, user_id, tier_id, status,
				  prepaid_credits, credits_remaining, created_at, expires_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		sub.ID, sub.TenantID, sub.UserID, sub.TierID, sub.Status,
		sub.PrepaidCredits, sub.CreditsRemaining, sub.CreatedAt, sub.ExpiresAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ReadSubscription возвращает подписку по ID в пределах арендатора.
func (s *Storage) ReadSubscription(ctx context.Context, tenantID, id string) (*models.Subscription, error) {
	const op = "storage.ReadSubscription"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_id, user_id, tier_id, status, prepaid_credits,
				credits_remaining, created_at, expires_at
			  FROM subscriptions WHERE id = $1 AND tenant_id = $2`
	row := s.DB.QueryRowContext(ctx, query, id, tenantID)

	var result models.Subscription
	err := row.Scan(&result.ID, &result.TenantID, &result.UserID, &result.TierID, &result.Status,
		&result.PrepaidCredits, &result.CreditsRemaining, &result.CreatedAt, &result.ExpiresAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

// ListSubscriptions возвращает подписки пользователя в пределах арендатора.
func (s *Storage) ListSubscriptions(ctx context.Context, tenantID, userID string) ([]*models.Subscription, error) {
	const op = "storage.ListSubscriptions"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_id, user_id, tier_id, status, prepaid_credits,
				credits_remaining, created_at, expires_at
			  FROM subscriptions
			  WHERE tenant_id = $1 AND user_id = $2
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.Subscription
	for rows.Next() {
		var item models.Subscription
		if err := rows.Scan(&item.ID, &item.TenantID, &item.UserID, &item.TierID, &item.Status,
			&item.PrepaidCredits, &item.CreditsRemaining, &item.CreatedAt, &item.ExpiresAt); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// ListCreditSummaries возвращает сводку кредитов по всем подпискам арендатора.
func (s *Storage) ListCreditSummaries(ctx context.Context, tenantID string) ([]*models.CreditSummary, error) {
	const op = "storage.ListCreditSummaries"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tier_id, credits_remaining, prepaid_credits
			  FROM subscriptions
			  WHERE tenant_id = $1
			  ORDER BY created_at`
	rows, err := s.DB.QueryContext(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.CreditSummary
	for rows.Next() {
		var item models.CreditSummary
		if err := rows.Scan(&item.ID, &item.TierID, &item.CreditsRemaining, &item.PrepaidCredits); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, &item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// DebitCredits уменьшает остаток кредитов подписки одним условным UPDATE,
// остаток никогда не опускается ниже нуля даже при конкурентных списаниях.
// Возвращает новый остаток.
func (s *Storage) DebitCredits(ctx context.Context, tenantID, id string, credits int) (int, error) {
	const op = "storage.DebitCredits"
	select {
	case <-ctx.Done():
		return 0, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `UPDATE subscriptions
			  SET credits_remaining = GREATEST(credits_remaining - $1, 0)
			  WHERE id = $2 AND tenant_id = $3
			  RETURNING credits_remaining`
	var remaining int
	err := s.DB.QueryRowContext(ctx, query, credits, id, tenantID).Scan(&remaining)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return remaining, nil
}

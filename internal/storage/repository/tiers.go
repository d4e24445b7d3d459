package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// ListTiers возвращает весь каталог тарифов.
func (s *Storage) ListTiers(ctx context.Context) ([]*models.TierDefinition, error) {
	const op = "storage.ListTiers"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, default_credits, max_environments,
				max_tokens_per_day, max_concurrent_calls, lab_expiry_days, allowed_services
			  FROM tier_definitions
			  ORDER BY default_credits`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.TierDefinition
	for rows.Next() {
		var item models.TierDefinition
		var services []byte
		if err := rows.Scan(&item.ID, &item.Name, &item.Description, &item.DefaultCredits,
			&item.Limits.MaxEnvironments, &item.Limits.MaxTokensPerDay,
			&item.Limits.MaxConcurrentCalls, &item.Limits.LabExpiryDays, &services); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if err := unmarshalStrings(services, &item.AllowedServices); err != nil {
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

// ReadTier возвращает тариф по идентификатору.
func (s *Storage) ReadTier(ctx context.Context, id string) (*models.TierDefinition, error) {
	const op = "storage.ReadTier"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, name, description, default_credits, max_environments,
				max_tokens_per_day, max_concurrent_calls, lab_expiry_days, allowed_services
			  FROM tier_definitions WHERE id = $1`
	row := s.DB.QueryRowContext(ctx, query, id)

	var result models.TierDefinition
	var services []byte
	err := row.Scan(&result.ID, &result.Name, &result.Description, &result.DefaultCredits,
		&result.Limits.MaxEnvironments, &result.Limits.MaxTokensPerDay,
		&result.Limits.MaxConcurrentCalls, &result.Limits.LabExpiryDays, &services)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := unmarshalStrings(services, &result.AllowedServices); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &result, nil
}

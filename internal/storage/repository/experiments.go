package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

const selectExperimentColumns = `id, title, tier_ids, description, system_prompt,
	max_tokens_per_call, max_daily_tokens_per_user, sample_prompts`

func scanExperiment(row interface{ Scan(...any) error }) (*models.AIExperiment, error) {
	var result models.AIExperiment
	var tierIDs, samplePrompts []byte
	err := row.Scan(&result.ID, &result.Title, &tierIDs, &result.Description,
		&result.SystemPrompt, &result.MaxTokensPerCall, &result.MaxDailyTokensPerUser, &samplePrompts)
	if err != nil {
		return nil, err
	}
	if err := unmarshalStrings(tierIDs, &result.TierIDs); err != nil {
		return nil, err
	}
	if err := unmarshalStrings(samplePrompts, &result.SamplePrompts); err != nil {
		return nil, err
	}
	return &result, nil
}

// ListExperiments возвращает весь каталог экспериментов.
func (s *Storage) ListExperiments(ctx context.Context) ([]*models.AIExperiment, error) {
	const op = "storage.ListExperiments"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + selectExperimentColumns + ` FROM ai_experiments ORDER BY id`
	return s.queryExperiments(ctx, op, query)
}

// ListExperimentsByTier возвращает эксперименты, доступные тарифу.
// Оператор ? на jsonb-массиве — проверка вхождения строки.
func (s *Storage) ListExperimentsByTier(ctx context.Context, tierID string) ([]*models.AIExperiment, error) {
	const op = "storage.ListExperimentsByTier"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + selectExperimentColumns + `
			  FROM ai_experiments WHERE tier_ids ? $1 ORDER BY id`
	return s.queryExperiments(ctx, op, query, tierID)
}

func (s *Storage) queryExperiments(ctx context.Context, op, query string, args ...any) ([]*models.AIExperiment, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.AIExperiment
	for rows.Next() {
		item, err := scanExperiment(rows)
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

// ReadExperiment возвращает эксперимент по идентификатору.
func (s *Storage) ReadExperiment(ctx context.Context, id string) (*models.AIExperiment, error) {
	const op = "storage.ReadExperiment"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT ` + selectExperimentColumns + ` FROM ai_experiments WHERE id = $1`
	result, err := scanExperiment(s.DB.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

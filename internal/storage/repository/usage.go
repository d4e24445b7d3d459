package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// CreateUsageSnapshot вставляет неизменяемую запись потребления.
// Записи никогда не обновляются и не удаляются.
func (s *Storage) CreateUsageSnapshot(ctx context.Context, snap models.UsageSnapshot) error {
	const op = "storage.CreateUsageSnapshot"
	select {
	case <-ctx.Done():
		return fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `INSERT INTO usage_snapshots (id, tenant_id, subscription_id, environment_id,
				  ts, tokens_used, credits_consumed, operation, experiment_id)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := s.DB.ExecContext(ctx, query,
		snap.ID, snap.TenantID, snap.SubscriptionID, nullableString(snap.EnvironmentID),
		snap.Timestamp, snap.TokensUsed, snap.CreditsConsumed, snap.Operation,
		nullableString(snap.ExperimentID))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// ListUsageSnapshots возвращает последние записи потребления арендатора,
// самые свежие первыми.
func (s *Storage) ListUsageSnapshots(ctx context.Context, tenantID string, top int) ([]*models.UsageSnapshot, error) {
	const op = "storage.ListUsageSnapshots"
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%s: %w", op, ctx.Err())
	default:
	}

	query := `SELECT id, tenant_id, subscription_id, environment_id, ts,
				tokens_used, credits_consumed, operation, experiment_id
			  FROM usage_snapshots
			  WHERE tenant_id = $1
			  ORDER BY ts DESC
			  LIMIT $2`
	rows, err := s.DB.QueryContext(ctx, query, tenantID, top)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var result []*models.UsageSnapshot
	for rows.Next() {
		var item models.UsageSnapshot
		var environmentID, experimentID sql.NullString
		if err := rows.Scan(&item.ID, &item.TenantID, &item.SubscriptionID, &environmentID,
			&item.Timestamp, &item.TokensUsed, &item.CreditsConsumed, &item.Operation,
			&experimentID); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		item.EnvironmentID = environmentID.String
		item.ExperimentID = experimentID.String
		result = append(result, &item)
	}
	err = rows.Close()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

func nullableString(v string) sql.NullString {
	return sql.NullString{String: v, Valid: v != ""}
}

// Package usage содержит бизнес-логику учёта потребления: конвертацию
// токенов в кредиты и ведение неизменяемого журнала операций.
package usage

import (
	"context"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// Курс конвертации: 1 токен = 0.1 кредита, итог округляется вверх.
const tokensToCreditsRatio = 0.1

// TokensToCredits конвертирует потраченные токены в кредиты.
func TokensToCredits(tokens int) int {
	return int(math.Ceil(float64(tokens) * tokensToCreditsRatio))
}

// Repository определяет методы хранилища для журнала потребления.
type Repository interface {
	// CreateUsageSnapshot добавляет запись потребления.
	CreateUsageSnapshot(ctx context.Context, snap models.UsageSnapshot) error
	// ListUsageSnapshots возвращает последние записи арендатора.
	ListUsageSnapshots(ctx context.Context, tenantID string, top int) ([]*models.UsageSnapshot, error)
	// ListCreditSummaries возвращает сводку кредитов по подпискам арендатора.
	ListCreditSummaries(ctx context.Context, tenantID string) ([]*models.CreditSummary, error)
}

// Service реализует учёт потребления.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// RecordParams — параметры одной метрируемой операции.
type RecordParams struct {
	TenantID       string
	SubscriptionID string
	EnvironmentID  string
	ExperimentID   string
	Operation      string
	TokensUsed     int
}

// Record добавляет запись потребления и возвращает её.
// Списание кредитов с подписки выполняет вызывающий по CreditsConsumed.
func (s *Service) Record(ctx context.Context, params RecordParams) (*models.UsageSnapshot, error) {
	snapshot := models.UsageSnapshot{
		ID:              uuid.New().String(),
		TenantID:        params.TenantID,
		SubscriptionID:  params.SubscriptionID,
		EnvironmentID:   params.EnvironmentID,
		Timestamp:       time.Now().UTC(),
		TokensUsed:      params.TokensUsed,
		CreditsConsumed: TokensToCredits(params.TokensUsed),
		Operation:       params.Operation,
		ExperimentID:    params.ExperimentID,
	}

	if err := s.repo.CreateUsageSnapshot(ctx, snapshot); err != nil {
		return nil, err
	}

	s.log.Info("recorded usage",
		slog.String("subscription_id", params.SubscriptionID),
		slog.Int("tokens_used", params.TokensUsed),
		slog.Int("credits_consumed", snapshot.CreditsConsumed))

	return &snapshot, nil
}

// Credits возвращает сводку кредитов по всем подпискам арендатора.
func (s *Service) Credits(ctx context.Context, tenantID string) ([]*models.CreditSummary, error) {
	return s.repo.ListCreditSummaries(ctx, tenantID)
}

// History возвращает последние top записей потребления арендатора.
func (s *Service) History(ctx context.Context, tenantID string, top int) ([]*models.UsageSnapshot, error) {
	return s.repo.ListUsageSnapshots(ctx, tenantID, top)
}

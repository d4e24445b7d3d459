// Package subscription содержит бизнес-логику покупки и чтения подписок.
package subscription

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

// ErrTierNotFound возвращается, когда запрошенный тариф не существует.
var ErrTierNotFound = errors.New("tier not found")

// Repository определяет методы хранилища для подписок.
type Repository interface {
	// ReadTier возвращает тариф по идентификатору.
	ReadTier(ctx context.Context, id string) (*models.TierDefinition, error)
	// CreateSubscription добавляет новую подписку.
	CreateSubscription(ctx context.Context, sub models.Subscription) error
	// ListSubscriptions возвращает подписки пользователя в пределах арендатора.
	ListSubscriptions(ctx context.Context, tenantID, userID string) ([]*models.Subscription, error)
}

// Service реализует бизнес-логику подписок.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Create создаёт новую активную подписку арендатора на тариф.
// Стартовые кредиты: явное значение из запроса, иначе значение тарифа,
// иначе запасное значение по умолчанию.
func (s *Service) Create(ctx context.Context, auth *token.AuthContext, req models.CreateSubscriptionRequest) (*models.Subscription, error) {
	tier, err := s.repo.ReadTier(ctx, req.TierID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, err
	}

	expiryDays := tier.Limits.LabExpiryDays
	if expiryDays == 0 {
		expiryDays = models.DefaultLabExpiryDays
	}

	prepaid := models.DefaultPrepaidCredits
	if tier.DefaultCredits > 0 {
		prepaid = tier.DefaultCredits
	}
	if req.PrepaidCredits != nil {
		prepaid = *req.PrepaidCredits
	}

	now := time.Now().UTC()
	sub := models.Subscription{
		ID:               uuid.New().String(),
		TenantID:         auth.TenantID,
		UserID:           auth.UserID,
		TierID:           tier.ID,
		Status:           models.SubscriptionStatusActive,
		PrepaidCredits:   prepaid,
		CreditsRemaining: prepaid,
		CreatedAt:        now,
		ExpiresAt:        now.AddDate(0, 0, expiryDays),
	}

	if err := s.repo.CreateSubscription(ctx, sub); err != nil {
		return nil, err
	}

	s.log.Info("created new subscription",
		slog.String("id", sub.ID),
		slog.String("tier_id", sub.TierID),
		slog.Int("prepaid_credits", prepaid))

	return &sub, nil
}

// List возвращает подписки текущего пользователя.
func (s *Service) List(ctx context.Context, auth *token.AuthContext) ([]*models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, auth.TenantID, auth.UserID)
}

// Package environment содержит бизнес-логику лабораторных окружений.
//
// Реального развёртывания инфраструктуры нет: создание синхронно переводит
// окружение из Provisioning в Active, а события жизненного цикла уходят
// в очередь — внешний воркер оркестрации сможет забрать их, когда
// настоящее развёртывание появится.
package environment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/rabbitmq"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

// Ошибки бизнес-правил создания и чтения окружений.
var (
	ErrSubscriptionNotActive = errors.New("subscription not found or not active")
	ErrTierNotFound          = errors.New("tier not found")
	ErrQuotaExceeded         = errors.New("max environments reached for this tier")
	ErrNotFound              = errors.New("environment not found")
	ErrTenantMismatch        = errors.New("environment belongs to another tenant")
)

// Repository определяет методы хранилища для окружений.
type Repository interface {
	// ReadSubscription возвращает подписку по ID в пределах арендатора.
	ReadSubscription(ctx context.Context, tenantID, id string) (*models.Subscription, error)
	// ReadTier возвращает тариф по идентификатору.
	ReadTier(ctx context.Context, id string) (*models.TierDefinition, error)
	// CreateEnvironment вставляет окружение с проверкой квоты тарифа.
	CreateEnvironment(ctx context.Context, env models.Environment, maxEnvironments int) error
	// ReadEnvironment возвращает окружение по ID в пределах арендатора.
	ReadEnvironment(ctx context.Context, tenantID, id string) (*models.Environment, error)
	// ListEnvironments возвращает неудалённые окружения арендатора.
	ListEnvironments(ctx context.Context, tenantID string) ([]*models.Environment, error)
	// SetEnvironmentStatus обновляет статус окружения.
	SetEnvironmentStatus(ctx context.Context, tenantID, id string, status models.EnvironmentStatus) (int, error)
	// SoftDeleteEnvironment помечает окружение удалённым.
	SoftDeleteEnvironment(ctx context.Context, tenantID, id string) (int, error)
}

// EventPublisher описывает публикацию событий жизненного цикла.
type EventPublisher interface {
	Publish(event rabbitmq.EnvironmentEvent) error
}

// Service реализует бизнес-логику окружений.
// events может быть nil — тогда события не публикуются.
type Service struct {
	repo          Repository
	events        EventPublisher
	log           *slog.Logger
	defaultRegion string
	rgPrefix      string
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, events EventPublisher, log *slog.Logger, defaultRegion, rgPrefix string) *Service {
	return &Service{
		repo:          repo,
		events:        events,
		log:           log,
		defaultRegion: defaultRegion,
		rgPrefix:      rgPrefix,
	}
}

func (s *Service) resourceGroupName(tenantID, envID string) string {
	return strings.ToLower(fmt.Sprintf("%s-%s-%s", s.rgPrefix, tenantID, envID))
}

func (s *Service) publish(env *models.Environment) {
	if s.events == nil {
		return
	}
	err := s.events.Publish(rabbitmq.EnvironmentEvent{
		EnvironmentID:  env.ID,
		TenantID:       env.TenantID,
		SubscriptionID: env.SubscriptionID,
		Status:         env.Status,
		OccurredAt:     time.Now().UTC(),
	})
	if err != nil {
		s.log.Warn("failed to publish environment event", sl.Err(err))
	}
}

// Create создаёт окружение: проверяет подписку, тариф и квоту,
// вставляет запись в статусе Provisioning и сразу активирует её.
func (s *Service) Create(ctx context.Context, auth *token.AuthContext, req models.CreateEnvironmentRequest) (*models.Environment, error) {
	sub, err := s.repo.ReadSubscription(ctx, auth.TenantID, req.SubscriptionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubscriptionNotActive
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return nil, ErrSubscriptionNotActive
	}

	tierID := req.TierID
	if tierID == "" {
		tierID = sub.TierID
	}
	tier, err := s.repo.ReadTier(ctx, tierID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTierNotFound
	}
	if err != nil {
		return nil, err
	}

	region := req.Region
	if region == "" {
		region = s.defaultRegion
	}
	expiryDays := tier.Limits.LabExpiryDays
	if expiryDays == 0 {
		expiryDays = models.DefaultLabExpiryDays
	}

	now := time.Now().UTC()
	env := models.Environment{
		ID:             uuid.New().String(),
		TenantID:       auth.TenantID,
		SubscriptionID: sub.ID,
		TierID:         tierID,
		Name:           req.Name,
		Region:         region,
		Status:         models.EnvironmentStatusProvisioning,
		CreatedAt:      now,
		ExpiresAt:      now.AddDate(0, 0, expiryDays),
	}
	env.ResourceGroupName = s.resourceGroupName(auth.TenantID, env.ID)

	err = s.repo.CreateEnvironment(ctx, env, tier.Limits.MaxEnvironments)
	if errors.Is(err, repository.ErrQuotaExceeded) {
		return nil, ErrQuotaExceeded
	}
	if err != nil {
		return nil, err
	}
	s.publish(&env)

	// Синхронная активация вместо асинхронного развёртывания.
	next := models.EnvironmentStatusActive
	if !env.Status.CanTransition(next) {
		return nil, fmt.Errorf("invalid status transition %s -> %s", env.Status, next)
	}
	if _, err := s.repo.SetEnvironmentStatus(ctx, auth.TenantID, env.ID, next); err != nil {
		return nil, err
	}
	env.Status = next
	s.publish(&env)

	s.log.Info("created environment",
		slog.String("id", env.ID),
		slog.String("tenant_id", env.TenantID),
		slog.String("resource_group", env.ResourceGroupName))

	return &env, nil
}

// List возвращает неудалённые окружения арендатора.
func (s *Service) List(ctx context.Context, auth *token.AuthContext) ([]*models.Environment, error) {
	return s.repo.ListEnvironments(ctx, auth.TenantID)
}

// Read возвращает окружение по ID. Мягко удалённые и чужие окружения
// не возвращаются: проверка принадлежности выполняется ещё раз после
// tenant-зависимой выборки.
func (s *Service) Read(ctx context.Context, auth *token.AuthContext, id string) (*models.Environment, error) {
	env, err := s.repo.ReadEnvironment(ctx, auth.TenantID, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if env.SoftDeleted {
		return nil, ErrNotFound
	}
	if env.TenantID != auth.TenantID {
		return nil, ErrTenantMismatch
	}
	return env, nil
}

// Remove мягко удаляет окружение: статус Deleted, строка остаётся.
// Повторное удаление возвращает ErrNotFound.
func (s *Service) Remove(ctx context.Context, auth *token.AuthContext, id string) error {
	env, err := s.Read(ctx, auth, id)
	if err != nil {
		return err
	}

	count, err := s.repo.SoftDeleteEnvironment(ctx, auth.TenantID, id)
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotFound
	}

	env.Status = models.EnvironmentStatusDeleted
	env.SoftDeleted = true
	s.publish(env)

	s.log.Info("soft-deleted environment",
		slog.String("id", env.ID),
		slog.String("tenant_id", env.TenantID))
	return nil
}

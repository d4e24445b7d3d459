// Package experiment содержит бизнес-логику каталога и выполнения
// чат-экспериментов, включая проверки подписки и кредитов.
package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/openai"
	"github.com/magabrotheeeer/ailab-portal/internal/services/usage"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

// Ошибки бизнес-правил выполнения эксперимента.
var (
	ErrExperimentNotFound    = errors.New("experiment not found")
	ErrEnvironmentNotFound   = errors.New("environment not found")
	ErrSubscriptionNotActive = errors.New("subscription not active")
	ErrNoCredits             = errors.New("no credits remaining")
)

// Repository определяет методы хранилища для экспериментов.
type Repository interface {
	// ListExperiments возвращает весь каталог экспериментов.
	ListExperiments(ctx context.Context) ([]*models.AIExperiment, error)
	// ListExperimentsByTier возвращает эксперименты, доступные тарифу.
	ListExperimentsByTier(ctx context.Context, tierID string) ([]*models.AIExperiment, error)
	// ReadExperiment возвращает эксперимент по идентификатору.
	ReadExperiment(ctx context.Context, id string) (*models.AIExperiment, error)
	// ReadEnvironment возвращает окружение по ID в пределах арендатора.
	ReadEnvironment(ctx context.Context, tenantID, id string) (*models.Environment, error)
	// ReadSubscription возвращает подписку по ID в пределах арендатора.
	ReadSubscription(ctx context.Context, tenantID, id string) (*models.Subscription, error)
	// DebitCredits списывает кредиты с подписки, остаток не уходит ниже нуля.
	DebitCredits(ctx context.Context, tenantID, id string, credits int) (int, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
}

// ChatClient описывает chat-completion вызов внешнего провайдера.
type ChatClient interface {
	Complete(ctx context.Context, messages []openai.Message, maxTokens int) (*openai.Completion, error)
}

// UsageRecorder описывает запись потребления в журнал.
type UsageRecorder interface {
	Record(ctx context.Context, params usage.RecordParams) (*models.UsageSnapshot, error)
}

// Service реализует бизнес-логику экспериментов.
type Service struct {
	repo  Repository
	cache Cache
	chat  ChatClient
	usage UsageRecorder
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, chat ChatClient, usageRecorder UsageRecorder, log *slog.Logger) *Service {
	return &Service{
		repo:  repo,
		cache: cache,
		chat:  chat,
		usage: usageRecorder,
		log:   log,
	}
}

// List возвращает каталог экспериментов, при непустом tierID — только
// доступные этому тарифу.
func (s *Service) List(ctx context.Context, tierID string) ([]*models.AIExperiment, error) {
	cacheKey := "experiments:catalog"
	if tierID != "" {
		cacheKey = fmt.Sprintf("experiments:tier:%s", tierID)
	}

	var result []*models.AIExperiment
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read experiments from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	if tierID != "" {
		result, err = s.repo.ListExperimentsByTier(ctx, tierID)
	} else {
		result, err = s.repo.ListExperiments(ctx)
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache experiments", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Read возвращает эксперимент по идентификатору, используя кеш.
func (s *Service) Read(ctx context.Context, id string) (*models.AIExperiment, error) {
	var result *models.AIExperiment
	cacheKey := fmt.Sprintf("experiment:%s", id)
	found, err := s.cache.Get(cacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read experiment from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ReadExperiment(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrExperimentNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(cacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache experiment", slog.String("key", cacheKey), slog.Any("err", err))
	}
	return result, nil
}

// Run выполняет один чат-ход эксперимента: проверяет окружение, подписку
// и кредиты, добавляет системный промпт, вызывает провайдера, пишет запись
// потребления и списывает кредиты.
//
// Запись потребления и списание не атомарны: при падении списания после
// записи остаётся журнал, по которому расхождение можно выверить.
func (s *Service) Run(ctx context.Context, auth *token.AuthContext, experimentID string, req models.RunExperimentRequest) (*models.RunExperimentResult, error) {
	experiment, err := s.Read(ctx, experimentID)
	if err != nil {
		return nil, err
	}

	env, err := s.repo.ReadEnvironment(ctx, auth.TenantID, req.EnvironmentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrEnvironmentNotFound
	}
	if err != nil {
		return nil, err
	}
	if env.TenantID != auth.TenantID {
		return nil, ErrEnvironmentNotFound
	}

	sub, err := s.repo.ReadSubscription(ctx, auth.TenantID, env.SubscriptionID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrSubscriptionNotActive
	}
	if err != nil {
		return nil, err
	}
	if sub.Status != models.SubscriptionStatusActive {
		return nil, ErrSubscriptionNotActive
	}
	if sub.CreditsRemaining <= 0 {
		return nil, ErrNoCredits
	}

	messages := make([]openai.Message, 0, len(req.Messages)+1)
	messages = append(messages, openai.Message{Role: "system", Content: experiment.SystemPrompt})
	for _, m := range req.Messages {
		messages = append(messages, openai.Message{Role: m.Role, Content: m.Content})
	}

	completion, err := s.chat.Complete(ctx, messages, experiment.MaxTokensPerCall)
	if err != nil {
		return nil, err
	}

	snapshot, err := s.usage.Record(ctx, usage.RecordParams{
		TenantID:       auth.TenantID,
		SubscriptionID: sub.ID,
		EnvironmentID:  env.ID,
		ExperimentID:   experimentID,
		Operation:      models.OperationOpenAIChat,
		TokensUsed:     completion.TokensUsed,
	})
	if err != nil {
		return nil, err
	}

	remaining, err := s.repo.DebitCredits(ctx, auth.TenantID, sub.ID, snapshot.CreditsConsumed)
	if err != nil {
		return nil, err
	}

	s.log.Info("executed experiment",
		slog.String("experiment_id", experimentID),
		slog.String("subscription_id", sub.ID),
		slog.Int("tokens_used", completion.TokensUsed),
		slog.Int("credits_remaining", remaining))

	return &models.RunExperimentResult{
		Reply:            completion.Reply,
		ApproxTokensUsed: completion.TokensUsed,
		CreditsRemaining: remaining,
	}, nil
}

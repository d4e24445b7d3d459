// Package tier содержит бизнес-логику каталога тарифов с кешированием.
// Каталог меняется только миграциями, поэтому кеш живёт по TTL.
package tier

import (
	"context"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

const catalogCacheKey = "tiers:catalog"

// Repository определяет методы хранилища для каталога тарифов.
type Repository interface {
	// ListTiers возвращает весь каталог тарифов.
	ListTiers(ctx context.Context) ([]*models.TierDefinition, error)
}

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни.
	Set(key string, value any, expiration time.Duration) error
}

// Service реализует бизнес-логику каталога тарифов.
type Service struct {
	repo  Repository
	cache Cache
	log   *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, cache Cache, log *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, log: log}
}

// List возвращает каталог тарифов, используя кеш или репозиторий.
func (s *Service) List(ctx context.Context) ([]*models.TierDefinition, error) {
	var result []*models.TierDefinition
	found, err := s.cache.Get(catalogCacheKey, &result)
	if err != nil {
		s.log.Warn("failed to read tier catalog from cache", slog.Any("err", err))
	}
	if found {
		return result, nil
	}

	result, err = s.repo.ListTiers(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(catalogCacheKey, result, time.Hour); err != nil {
		s.log.Warn("failed to cache tier catalog", slog.Any("err", err))
	}
	return result, nil
}

// Package ailab собирает приложение портала: хранилище, миграции, кеш,
// очередь событий, клиент чат-модели, сервисы и HTTP-сервер.
package ailab

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"

	"github.com/magabrotheeeer/ailab-portal/internal/cache"
	"github.com/magabrotheeeer/ailab-portal/internal/config"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/migrations"
	"github.com/magabrotheeeer/ailab-portal/internal/openai"
	"github.com/magabrotheeeer/ailab-portal/internal/rabbitmq"
	environmentservice "github.com/magabrotheeeer/ailab-portal/internal/services/environment"
	experimentservice "github.com/magabrotheeeer/ailab-portal/internal/services/experiment"
	profileservice "github.com/magabrotheeeer/ailab-portal/internal/services/profile"
	subscriptionservice "github.com/magabrotheeeer/ailab-portal/internal/services/subscription"
	tierservice "github.com/magabrotheeeer/ailab-portal/internal/services/tier"
	usageservice "github.com/magabrotheeeer/ailab-portal/internal/services/usage"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

// App агрегирует зависимости приложения и HTTP-сервер.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	events *rabbitmq.Publisher
}

// New инициализирует все зависимости приложения.
// RabbitMQ необязателен: при пустом rabbitmq_url события жизненного цикла
// окружений не публикуются.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		return nil, err
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		return nil, err
	}

	var events *rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		conn, err := rabbitmq.Connect(cfg.RabbitMQURL, 5, 2*time.Second)
		if err != nil {
			return nil, err
		}
		events, err = rabbitmq.NewPublisher(conn)
		if err != nil {
			return nil, err
		}
	} else {
		logger.Warn("rabbitmq url is empty, environment events are disabled")
	}

	tokenMaker := token.NewMaker(cfg.AuthToken.SecretKey, cfg.AuthToken.Audience, cfg.AuthToken.TokenTTL)
	chatClient := openai.New(cfg.OpenAI, logger)

	usageService := usageservice.NewService(db, logger)
	profileService := profileservice.NewService(db, logger)
	tierService := tierservice.NewService(db, cacheRedis, logger)
	subscriptionService := subscriptionservice.NewService(db, logger)
	environmentService := environmentservice.NewService(db, eventPublisher(events), logger, cfg.DefaultRegion, cfg.ResourceGroupPrefix)
	experimentService := experimentservice.NewService(db, cacheRedis, chatClient, usageService, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, tokenMaker, &Services{
		Profile:      profileService,
		Tier:         tierService,
		Subscription: subscriptionService,
		Environment:  environmentService,
		Experiment:   experimentService,
		Usage:        usageService,
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		events: events,
	}, nil
}

// eventPublisher оборачивает nil *Publisher в nil-интерфейс,
// чтобы проверка events == nil в сервисе работала.
func eventPublisher(p *rabbitmq.Publisher) environmentservice.EventPublisher {
	if p == nil {
		return nil
	}
	return p
}

// Run запускает HTTP-сервер и останавливает его при отмене контекста.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		if a.events != nil {
			if closeErr := a.events.Close(); closeErr != nil {
				a.logger.Warn("failed to close rabbitmq publisher", sl.Err(closeErr))
			}
		}
		if dbErr := a.db.DB.Close(); dbErr != nil {
			a.logger.Warn("failed to close database", sl.Err(dbErr))
		}
		return err
	}
}

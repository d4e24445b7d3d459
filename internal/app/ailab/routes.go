package ailab

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpSwagger "github.com/swaggo/http-swagger"

	environmentcreate "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/environment/create"
	environmentlist "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/environment/list"
	environmentread "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/environment/read"
	environmentremove "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/environment/remove"
	experimentlist "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/experiment/list"
	experimentread "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/experiment/read"
	experimentrun "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/experiment/run"
	"github.com/magabrotheeeer/ailab-portal/internal/http/handlers/profile/me"
	subscriptioncreate "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/subscription/create"
	subscriptionlist "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/subscription/list"
	tierlist "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/tier/list"
	usagecredits "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/usage/credits"
	usagehistory "github.com/magabrotheeeer/ailab-portal/internal/http/handlers/usage/history"
	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	environmentservice "github.com/magabrotheeeer/ailab-portal/internal/services/environment"
	experimentservice "github.com/magabrotheeeer/ailab-portal/internal/services/experiment"
	profileservice "github.com/magabrotheeeer/ailab-portal/internal/services/profile"
	subscriptionservice "github.com/magabrotheeeer/ailab-portal/internal/services/subscription"
	tierservice "github.com/magabrotheeeer/ailab-portal/internal/services/tier"
	usageservice "github.com/magabrotheeeer/ailab-portal/internal/services/usage"
)

// Services — сервисы бизнес-логики, которыми пользуются обработчики.
type Services struct {
	Profile      *profileservice.Service
	Tier         *tierservice.Service
	Subscription *subscriptionservice.Service
	Environment  *environmentservice.Service
	Experiment   *experimentservice.Service
	Usage        *usageservice.Service
}

// RegisterRoutes регистрирует все маршруты приложения.
// Каталоги тарифов и экспериментов открыты, остальные маршруты
// требуют bearer-токен.
func RegisterRoutes(r chi.Router, logger *slog.Logger, parser middlewarectx.TokenParser, services *Services) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	r.Route("/api/v1", func(r chi.Router) {
		// Открытые конечные точки: справочные каталоги
		r.Get("/tiers", tierlist.New(logger, services.Tier).ServeHTTP)
		r.Get("/experiments", experimentlist.New(logger, services.Experiment).ServeHTTP)
		r.Get("/experiments/{id}", experimentread.New(logger, services.Experiment).ServeHTTP)

		// Группа с проверкой bearer-токена
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.AuthMiddleware(parser, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger))
			r.Get("/me", me.New(logger, services.Profile).ServeHTTP)
			r.Post("/subscriptions", subscriptioncreate.New(logger, services.Subscription).ServeHTTP)
			r.Get("/subscriptions", subscriptionlist.New(logger, services.Subscription).ServeHTTP)
			r.Post("/environments", environmentcreate.New(logger, services.Environment).ServeHTTP)
			r.Get("/environments", environmentlist.New(logger, services.Environment).ServeHTTP)
			r.Get("/environments/{id}", environmentread.New(logger, services.Environment).ServeHTTP)
			r.Delete("/environments/{id}", environmentremove.New(logger, services.Environment).ServeHTTP)
			r.Post("/experiments/{id}/run", experimentrun.New(logger, services.Experiment).ServeHTTP)
			r.Get("/usage/credits", usagecredits.New(logger, services.Usage).ServeHTTP)
			r.Get("/usage/history", usagehistory.New(logger, services.Usage).ServeHTTP)
		})
	})

	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}

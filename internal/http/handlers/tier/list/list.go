// Package list реализует HTTP-обработчик каталога тарифов.
// Каталог публичный: авторизация не требуется.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// Handler обрабатывает запросы каталога тарифов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога тарифов.
type Service interface {
	List(ctx context.Context) ([]*models.TierDefinition, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог тарифов
// @Description Возвращает список всех доступных тарифов с лимитами.
// @Tags Tiers
// @Produce json
// @Success 200 {object} response.Response "Список тарифов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /tiers [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.tier.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tiers, err := h.service.List(r.Context())
	if err != nil {
		log.Error("failed to list tiers", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list tiers"))
		return
	}

	log.Info("success to list tiers", slog.Int("count", len(tiers)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"tiers": tiers,
	}))
}

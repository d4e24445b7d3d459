// Package list реализует HTTP-обработчик каталога AI-экспериментов.
// Каталог публичный; необязательный query-параметр tierId фильтрует
// эксперименты, доступные на указанном тарифе.
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

// Handler обрабатывает запросы каталога экспериментов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики каталога экспериментов.
type Service interface {
	List(ctx context.Context, tierID string) ([]*models.AIExperiment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Каталог AI-экспериментов
// @Description Возвращает список экспериментов, опционально отфильтрованный по тарифу.
// @Tags Experiments
// @Produce json
// @Param tierId query string false "Фильтр по идентификатору тарифа"
// @Success 200 {object} response.Response "Список экспериментов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /experiments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.experiment.list"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	tierID := r.URL.Query().Get("tierId")

	experiments, err := h.service.List(r.Context(), tierID)
	if err != nil {
		log.Error("failed to list experiments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list experiments"))
		return
	}

	log.Info("success to list experiments", slog.Int("count", len(experiments)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"experiments": experiments,
	}))
}

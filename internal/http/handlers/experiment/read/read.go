// Package read реализует HTTP-обработчик получения эксперимента по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/experiment"
)

// Handler обрабатывает запросы на получение эксперимента по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения эксперимента.
type Service interface {
	Read(ctx context.Context, id string) (*models.AIExperiment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить эксперимент по ID
// @Description Возвращает описание эксперимента с системным промптом и лимитами токенов.
// @Tags Experiments
// @Produce json
// @Param id path string true "ID эксперимента"
// @Success 200 {object} response.Response "Эксперимент"
// @Failure 404 {object} response.ErrorResponse "Эксперимент не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /experiments/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.experiment.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id := chi.URLParam(r, "id")

	exp, err := h.service.Read(r.Context(), id)
	if errors.Is(err, experiment.ErrExperimentNotFound) {
		log.Error("experiment not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("experiment not found"))
		return
	}
	if err != nil {
		log.Error("failed to read experiment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read experiment"))
		return
	}

	log.Info("success to read experiment", slog.String("id", exp.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"experiment": exp,
	}))
}

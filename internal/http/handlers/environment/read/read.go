// Package read реализует HTTP-обработчик получения окружения по ID.
//
// Мягко удалённые окружения считаются отсутствующими. Несовпадение
// арендатора после tenant-зависимой выборки трактуется как запрет доступа.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
)

// Handler обрабатывает запросы на получение окружения по идентификатору.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения окружения.
type Service interface {
	Read(ctx context.Context, auth *token.AuthContext, id string) (*models.Environment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить окружение по ID
// @Description Возвращает окружение текущего арендатора. Мягко удалённые окружения не возвращаются.
// @Tags Environments
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID окружения"
// @Success 200 {object} response.Response "Окружение"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Окружение принадлежит другому арендатору"
// @Failure 404 {object} response.ErrorResponse "Окружение не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /environments/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.environment.read"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	auth, ok := middlewarectx.AuthFromContext(r.Context())
	if !ok {
		log.Error("auth context not found in request")
		w.WriteHeader(http.StatusUnauthorized)
		render.JSON(w, r, response.Error("unauthorized"))
		return
	}

	id := chi.URLParam(r, "id")

	env, err := h.service.Read(r.Context(), auth, id)
	switch {
	case errors.Is(err, environment.ErrNotFound):
		log.Error("environment not found", slog.String("id", id))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("environment not found"))
		return
	case errors.Is(err, environment.ErrTenantMismatch):
		log.Error("environment belongs to another tenant", slog.String("id", id))
		w.WriteHeader(http.StatusForbidden)
		render.JSON(w, r, response.Error("forbidden"))
		return
	case err != nil:
		log.Error("failed to read environment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read environment"))
		return
	}

	log.Info("success to read environment", slog.String("id", env.ID))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"environment": env,
	}))
}

// Package remove реализует HTTP-обработчик мягкого удаления окружения.
package remove

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
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
)

// Handler обрабатывает запросы мягкого удаления окружения.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики удаления окружения.
type Service interface {
	Remove(ctx context.Context, auth *token.AuthContext, id string) error
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить окружение
// @Description Мягко удаляет окружение: статус Deleted, запись остаётся. Повторное удаление возвращает 404.
// @Tags Environments
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID окружения"
// @Success 200 {object} response.Response "Удаление выполнено"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Окружение принадлежит другому арендатору"
// @Failure 404 {object} response.ErrorResponse "Окружение не найдено"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /environments/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.environment.remove"

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

	err := h.service.Remove(r.Context(), auth, id)
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
		log.Error("failed to delete environment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not delete environment"))
		return
	}

	log.Info("success to delete environment", slog.String("id", id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"success": true,
	}))
}

// Package list реализует HTTP-обработчик списка окружений арендатора.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// Handler обрабатывает запросы списка окружений.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики чтения окружений.
type Service interface {
	List(ctx context.Context, auth *token.AuthContext) ([]*models.Environment, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список окружений арендатора
// @Description Возвращает неудалённые окружения текущего арендатора.
// @Tags Environments
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Список окружений"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /environments [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.environment.list"

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

	envs, err := h.service.List(r.Context(), auth)
	if err != nil {
		log.Error("failed to list environments", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list environments"))
		return
	}

	log.Info("success to list environments", slog.Int("count", len(envs)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"environments": envs,
	}))
}

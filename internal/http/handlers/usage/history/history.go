// Package history реализует HTTP-обработчик истории потребления арендатора.
// Query-параметр top ограничивает число записей, по умолчанию 50.
package history

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

const defaultTop = 50

// Handler обрабатывает запросы истории потребления.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики учёта потребления.
type Service interface {
	History(ctx context.Context, tenantID string, top int) ([]*models.UsageSnapshot, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary История потребления
// @Description Возвращает последние записи потребления арендатора, новые первыми.
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Param top query int false "Максимум записей (по умолчанию 50)"
// @Success 200 {object} response.Response "Записи потребления"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /usage/history [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.history"

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

	top := defaultTop
	if raw := r.URL.Query().Get("top"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			log.Error("invalid top parameter", slog.String("top", raw))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("invalid top parameter"))
			return
		}
		top = parsed
	}

	snapshots, err := h.service.History(r.Context(), auth.TenantID, top)
	if err != nil {
		log.Error("failed to read usage history", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read usage history"))
		return
	}

	log.Info("success to read usage history", slog.Int("count", len(snapshots)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"usage": snapshots,
	}))
}

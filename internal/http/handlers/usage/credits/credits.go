// Package credits реализует HTTP-обработчик сводки кредитов по подпискам арендатора.
package credits

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
)

// Handler обрабатывает запросы сводки кредитов.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает интерфейс бизнес-логики учёта потребления.
type Service interface {
	Credits(ctx context.Context, tenantID string) ([]*models.CreditSummary, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Сводка кредитов по подпискам
// @Description Возвращает предоплаченные и оставшиеся кредиты по каждой подписке арендатора.
// @Tags Usage
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response "Сводка кредитов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /usage/credits [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.usage.credits"

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

	summaries, err := h.service.Credits(r.Context(), auth.TenantID)
	if err != nil {
		log.Error("failed to read credit summaries", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read credit summaries"))
		return
	}

	log.Info("success to read credit summaries", slog.Int("count", len(summaries)))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"credits": summaries,
	}))
}

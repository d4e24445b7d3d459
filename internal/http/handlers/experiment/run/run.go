// Package run реализует HTTP-обработчик выполнения AI-эксперимента.
//
// Handler валидирует диалог, извлекает AuthContext, запускает чат-вызов
// через сервис и возвращает ответ модели вместе с остатком кредитов.
// Ошибки бизнес-правил (неактивная подписка, нулевой баланс) отдаются
// как 400, отсутствующие ресурсы — как 404.
package run

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/experiment"
)

// Handler управляет HTTP-запросами на выполнение экспериментов.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики экспериментов
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики выполнения эксперимента.
type Service interface {
	Run(ctx context.Context, auth *token.AuthContext, experimentID string, req models.RunExperimentRequest) (*models.RunExperimentResult, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Выполнить AI-эксперимент
// @Description Выполняет один чат-вызов в рамках эксперимента, списывает кредиты и пишет запись потребления.
// @Tags Experiments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "ID эксперимента"
// @Param request body models.RunExperimentRequest true "Окружение и реплики диалога"
// @Success 200 {object} response.Response "Ответ модели и остаток кредитов"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос, неактивная подписка или нет кредитов"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Эксперимент или окружение не найдены"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера или провайдера"
// @Router /experiments/{id}/run [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.experiment.run"

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

	experimentID := chi.URLParam(r, "id")

	var req models.RunExperimentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	result, err := h.service.Run(r.Context(), auth, experimentID, req)
	switch {
	case errors.Is(err, experiment.ErrExperimentNotFound):
		log.Error("experiment not found", slog.String("id", experimentID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("experiment not found"))
		return
	case errors.Is(err, experiment.ErrEnvironmentNotFound):
		log.Error("environment not found", slog.String("environment_id", req.EnvironmentID))
		w.WriteHeader(http.StatusNotFound)
		render.JSON(w, r, response.Error("environment not found"))
		return
	case errors.Is(err, experiment.ErrSubscriptionNotActive):
		log.Error("subscription not active")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("subscription not active"))
		return
	case errors.Is(err, experiment.ErrNoCredits):
		log.Error("no credits remaining")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("no credits remaining"))
		return
	case err != nil:
		log.Error("failed to run experiment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not run experiment"))
		return
	}

	log.Info("success to run experiment",
		slog.String("id", experimentID),
		slog.Int("approx_tokens_used", result.ApproxTokensUsed))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"result": result,
	}))
}

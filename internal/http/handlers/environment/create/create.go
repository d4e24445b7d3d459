// Package create реализует HTTP-обработчик создания лабораторного окружения.
//
// Handler валидирует запрос, проверяет подписку и квоту тарифа через сервис
// и возвращает созданное окружение со статусом Active и кодом 201.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/ailab-portal/internal/http/middlewarectx"
	"github.com/magabrotheeeer/ailab-portal/internal/http/response"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/sl"
	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
)

// Handler управляет HTTP-запросами на создание окружений.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики окружений
	validate *validator.Validate // Валидатор структуры входящих данных
}

// Service описывает интерфейс бизнес-логики создания окружения.
type Service interface {
	Create(ctx context.Context, auth *token.AuthContext, req models.CreateEnvironmentRequest) (*models.Environment, error)
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
// @Summary Создать лабораторное окружение
// @Description Создает окружение по активной подписке с проверкой квоты тарифа.
// @Tags Environments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateEnvironmentRequest true "Данные нового окружения"
// @Success 201 {object} response.Response "Созданное окружение"
// @Failure 400 {object} response.ErrorResponse "Некорректный запрос, неактивная подписка или превышена квота"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /environments [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.environment.create"

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

	var req models.CreateEnvironmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}
	log.Info("request body decoded", slog.Any("request", req))

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	env, err := h.service.Create(r.Context(), auth, req)
	switch {
	case errors.Is(err, environment.ErrSubscriptionNotActive):
		log.Error("subscription not found or not active", slog.String("subscription_id", req.SubscriptionID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("subscription not found or not active"))
		return
	case errors.Is(err, environment.ErrTierNotFound):
		log.Error("tier not found")
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("tier not found"))
		return
	case errors.Is(err, environment.ErrQuotaExceeded):
		log.Error("environment quota exceeded", slog.String("subscription_id", req.SubscriptionID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("max environments reached for this tier"))
		return
	case err != nil:
		log.Error("failed to create environment", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create environment"))
		return
	}

	log.Info("success to create environment", slog.String("id", env.ID))
	w.WriteHeader(http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"environment": env,
	}))
}

// Package profile содержит бизнес-логику профиля пользователя.
// Пользователь создаётся лениво при первом обращении к /me
// на основании данных bearer-токена.
package profile

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

// Repository определяет методы хранилища для профиля.
type Repository interface {
	// FindUser возвращает пользователя по идентификатору из токена.
	FindUser(ctx context.Context, userID string) (*models.User, error)
	// CreateUser добавляет нового пользователя.
	CreateUser(ctx context.Context, user models.User) error
	// ListSubscriptions возвращает подписки пользователя в пределах арендатора.
	ListSubscriptions(ctx context.Context, tenantID, userID string) ([]*models.Subscription, error)
}

// Service реализует бизнес-логику профиля.
type Service struct {
	repo Repository
	log  *slog.Logger
}

// NewService создает новый экземпляр Service.
func NewService(repo Repository, log *slog.Logger) *Service {
	return &Service{repo: repo, log: log}
}

// Me возвращает профиль текущего пользователя и его подписки,
// создавая пользователя при первом обращении.
func (s *Service) Me(ctx context.Context, auth *token.AuthContext) (*models.Profile, error) {
	user, err := s.repo.FindUser(ctx, auth.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		roles := auth.Roles
		if len(roles) == 0 {
			roles = []string{models.DefaultRole}
		}
		newUser := models.User{
			ID:          auth.UserID,
			TenantID:    auth.TenantID,
			UserID:      auth.UserID,
			Email:       auth.Email,
			DisplayName: auth.Name,
			Roles:       roles,
			Status:      "Active",
			CreatedAt:   time.Now().UTC(),
		}
		if err := s.repo.CreateUser(ctx, newUser); err != nil {
			return nil, err
		}
		s.log.Info("created user on first profile fetch", slog.String("user_id", auth.UserID))
		user = &newUser
	} else if err != nil {
		return nil, err
	}

	subs, err := s.repo.ListSubscriptions(ctx, auth.TenantID, auth.UserID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		UserID:        user.UserID,
		TenantID:      user.TenantID,
		DisplayName:   user.DisplayName,
		Roles:         user.Roles,
		Subscriptions: subs,
	}, nil
}

package environment_test

import (
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/ailab-portal/internal/lib/token"
	"github.com/magabrotheeeer/ailab-portal/internal/models"
	"github.com/magabrotheeeer/ailab-portal/internal/rabbitmq"
	"github.com/magabrotheeeer/ailab-portal/internal/services/environment"
	"github.com/magabrotheeeer/ailab-portal/internal/storage/repository"
)

type mockRepo struct {
	ReadSubscriptionFunc      func(ctx context.Context, tenantID, id string) (*models.Subscription, error)
	ReadTierFunc              func(ctx context.Context, id string) (*models.TierDefinition, error)
	CreateEnvironmentFunc     func(ctx context.Context, env models.Environment, maxEnvironments int) error
	ReadEnvironmentFunc       func(ctx context.Context, tenantID, id string) (*models.Environment, error)
	SetEnvironmentStatusFunc  func(ctx context.Context, tenantID, id string, status models.EnvironmentStatus) (int, error)
	SoftDeleteEnvironmentFunc func(ctx context.Context, tenantID, id string) (int, error)
}

func (m *mockRepo) ReadSubscription(ctx context.Context, tenantID, id string) (*models.Subscription, error) {
	return m.ReadSubscriptionFunc(ctx, tenantID, id)
}

func (m *mockRepo) ReadTier(ctx context.Context, id string) (*models.TierDefinition, error) {
	return m.ReadTierFunc(ctx, id)
}

func (m *mockRepo) CreateEnvironment(ctx context.Context, env models.Environment, maxEnvironments int) error {
	return m.CreateEnvironmentFunc(ctx, env, maxEnvironments)
}

func (m *mockRepo) ReadEnvironment(ctx context.Context, tenantID, id string) (*models.Environment, error) {
	return m.ReadEnvironmentFunc(ctx, tenantID, id)
}

func (m *mockRepo) ListEnvironments(context.Context, string) ([]*models.Environment, error) {
	return nil, nil
}

func (m *mockRepo) SetEnvironmentStatus(ctx context.Context, tenantID, id string, status models.EnvironmentStatus) (int, error) {
	return m.SetEnvironmentStatusFunc(ctx, tenantID, id, status)
}

func (m *mockRepo) SoftDeleteEnvironment(ctx context.Context, tenantID, id string) (int, error) {
	return m.SoftDeleteEnvironmentFunc(ctx, tenantID, id)
}

type mockEvents struct {
	events []rabbitmq.EnvironmentEvent
}

func (m *mockEvents) Publish(event rabbitmq.EnvironmentEvent) error {
	m.events = append(m.events, event)
	return nil
}

type discardHandler struct{}

func (discardHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (discardHandler) Handle(context.Context, slog.Record) error { return nil }
func (discardHandler) WithAttrs([]slog.Attr) slog.Handler        { return discardHandler{} }
func (discardHandler) WithGroup(string) slog.Handler             { return discardHandler{} }

func makeLogger() *slog.Logger {
	return slog.New(discardHandler{})
}

func studentTier() *models.TierDefinition {
	return &models.TierDefinition{
		ID:             "student",
		Name:           "Student",
		DefaultCredits: 1000,
		Limits: models.TierLimits{
			MaxEnvironments: 1,
			LabExpiryDays:   14,
		},
	}
}

func activeSubscription() *models.Subscription {
	return &models.Subscription{
		ID:       "sub-1",
		TenantID: "tenant-a",
		UserID:   "user-1",
		TierID:   "student",
		Status:   models.SubscriptionStatusActive,
	}
}

func TestCreate_Success(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "Tenant-A"}

	var inserted models.Environment
	repo := &mockRepo{
		ReadSubscriptionFunc: func(_ context.Context, tenantID, id string) (*models.Subscription, error) {
			require.Equal(t, "Tenant-A", tenantID)
			sub := activeSubscription()
			sub.TenantID = "Tenant-A"
			return sub, nil
		},
		ReadTierFunc: func(_ context.Context, id string) (*models.TierDefinition, error) {
			require.Equal(t, "student", id)
			return studentTier(), nil
		},
		CreateEnvironmentFunc: func(_ context.Context, env models.Environment, maxEnvironments int) error {
			require.Equal(t, 1, maxEnvironments)
			require.Equal(t, models.EnvironmentStatusProvisioning, env.Status)
			inserted = env
			return nil
		},
		SetEnvironmentStatusFunc: func(_ context.Context, _, id string, status models.EnvironmentStatus) (int, error) {
			require.Equal(t, inserted.ID, id)
			require.Equal(t, models.EnvironmentStatusActive, status)
			return 1, nil
		},
	}
	events := &mockEvents{}

	service := environment.NewService(repo, events, makeLogger(), "southindia", "rg-ailab")
	env, err := service.Create(context.Background(), auth, models.CreateEnvironmentRequest{
		SubscriptionID: "sub-1",
		Name:           "coursework lab",
	})

	require.NoError(t, err)
	assert.Equal(t, models.EnvironmentStatusActive, env.Status)
	assert.Equal(t, "southindia", env.Region)
	// имя ресурс-группы приводится к нижнему регистру
	assert.Equal(t, strings.ToLower("rg-ailab-Tenant-A-"+env.ID), env.ResourceGroupName)
	assert.WithinDuration(t, time.Now().UTC().AddDate(0, 0, 14), env.ExpiresAt, time.Minute)

	// события provisioning и active опубликованы по порядку
	require.Len(t, events.events, 2)
	assert.Equal(t, models.EnvironmentStatusProvisioning, events.events[0].Status)
	assert.Equal(t, models.EnvironmentStatusActive, events.events[1].Status)
}

func TestCreate_QuotaExceeded(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	repo := &mockRepo{
		ReadSubscriptionFunc: func(_ context.Context, _, _ string) (*models.Subscription, error) {
			return activeSubscription(), nil
		},
		ReadTierFunc: func(_ context.Context, _ string) (*models.TierDefinition, error) {
			return studentTier(), nil
		},
		CreateEnvironmentFunc: func(_ context.Context, _ models.Environment, _ int) error {
			return repository.ErrQuotaExceeded
		},
		SetEnvironmentStatusFunc: func(_ context.Context, _, _ string, _ models.EnvironmentStatus) (int, error) {
			t.Fatal("status should not change after quota failure")
			return 0, nil
		},
	}

	service := environment.NewService(repo, nil, makeLogger(), "southindia", "rg-ailab")
	env, err := service.Create(context.Background(), auth, models.CreateEnvironmentRequest{
		SubscriptionID: "sub-1",
		Name:           "second lab",
	})

	assert.ErrorIs(t, err, environment.ErrQuotaExceeded)
	assert.Nil(t, env)
}

func TestCreate_SubscriptionNotActive(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	tests := []struct {
		name string
		read func(ctx context.Context, tenantID, id string) (*models.Subscription, error)
	}{
		{
			name: "subscription missing",
			read: func(_ context.Context, _, _ string) (*models.Subscription, error) {
				return nil, repository.ErrNotFound
			},
		},
		{
			name: "subscription cancelled",
			read: func(_ context.Context, _, _ string) (*models.Subscription, error) {
				sub := activeSubscription()
				sub.Status = models.SubscriptionStatusCancelled
				return sub, nil
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{
				ReadSubscriptionFunc: tt.read,
				ReadTierFunc: func(_ context.Context, _ string) (*models.TierDefinition, error) {
					t.Fatal("tier should not be read")
					return nil, nil
				},
			}

			service := environment.NewService(repo, nil, makeLogger(), "southindia", "rg-ailab")
			_, err := service.Create(context.Background(), auth, models.CreateEnvironmentRequest{
				SubscriptionID: "sub-1",
				Name:           "lab",
			})

			assert.ErrorIs(t, err, environment.ErrSubscriptionNotActive)
		})
	}
}

func TestRead_SoftDeletedIsNotFound(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	repo := &mockRepo{
		ReadEnvironmentFunc: func(_ context.Context, _, _ string) (*models.Environment, error) {
			return &models.Environment{
				ID:          "env-1",
				TenantID:    "tenant-a",
				Status:      models.EnvironmentStatusDeleted,
				SoftDeleted: true,
			}, nil
		},
	}

	service := environment.NewService(repo, nil, makeLogger(), "southindia", "rg-ailab")
	_, err := service.Read(context.Background(), auth, "env-1")

	assert.ErrorIs(t, err, environment.ErrNotFound)
}

func TestRead_TenantMismatch(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	repo := &mockRepo{
		ReadEnvironmentFunc: func(_ context.Context, _, _ string) (*models.Environment, error) {
			return &models.Environment{
				ID:       "env-1",
				TenantID: "tenant-b",
				Status:   models.EnvironmentStatusActive,
			}, nil
		},
	}

	service := environment.NewService(repo, nil, makeLogger(), "southindia", "rg-ailab")
	_, err := service.Read(context.Background(), auth, "env-1")

	assert.ErrorIs(t, err, environment.ErrTenantMismatch)
}

func TestRemove_SecondCallNotFound(t *testing.T) {
	auth := &token.AuthContext{UserID: "user-1", TenantID: "tenant-a"}

	deleted := false
	repo := &mockRepo{
		ReadEnvironmentFunc: func(_ context.Context, _, _ string) (*models.Environment, error) {
			env := &models.Environment{
				ID:       "env-1",
				TenantID: "tenant-a",
				Status:   models.EnvironmentStatusActive,
			}
			if deleted {
				env.Status = models.EnvironmentStatusDeleted
				env.SoftDeleted = true
			}
			return env, nil
		},
		SoftDeleteEnvironmentFunc: func(_ context.Context, _, _ string) (int, error) {
			deleted = true
			return 1, nil
		},
	}
	events := &mockEvents{}

	service := environment.NewService(repo, events, makeLogger(), "southindia", "rg-ailab")

	require.NoError(t, service.Remove(context.Background(), auth, "env-1"))
	require.Len(t, events.events, 1)
	assert.Equal(t, models.EnvironmentStatusDeleted, events.events[0].Status)

	err := service.Remove(context.Background(), auth, "env-1")
	assert.ErrorIs(t, err, environment.ErrNotFound)
}

package models

import "time"

// EnvironmentStatus — состояние жизненного цикла окружения.
type EnvironmentStatus string

// Допустимые состояния окружения. Реальная оркестрация инфраструктуры
// отсутствует: создание переводит окружение из Provisioning в Active
// синхронно, внешний воркер в будущем будет делать это через события.
const (
	EnvironmentStatusProvisioning EnvironmentStatus = "Provisioning"
	EnvironmentStatusActive       EnvironmentStatus = "Active"
	EnvironmentStatusDeleting     EnvironmentStatus = "Deleting"
	EnvironmentStatusDeleted      EnvironmentStatus = "Deleted"
	EnvironmentStatusError        EnvironmentStatus = "Error"
)

// CanTransition сообщает, допустим ли переход из s в next.
func (s EnvironmentStatus) CanTransition(next EnvironmentStatus) bool {
	switch s {
	case EnvironmentStatusProvisioning:
		return next == EnvironmentStatusActive || next == EnvironmentStatusError
	case EnvironmentStatusActive:
		return next == EnvironmentStatusDeleting || next == EnvironmentStatusDeleted
	case EnvironmentStatusDeleting:
		return next == EnvironmentStatusDeleted || next == EnvironmentStatusError
	default:
		return false
	}
}

// Environment — логическое лабораторное окружение арендатора.
// Удаление мягкое: документ остаётся со статусом Deleted и флагом SoftDeleted.
type Environment struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenantId"`
	SubscriptionID    string            `json:"subscriptionId"`
	TierID            string            `json:"tierId"`
	Name              string            `json:"name"`
	ResourceGroupName string            `json:"resourceGroupName"`
	Region            string            `json:"region"`
	Status            EnvironmentStatus `json:"status"`
	CreatedAt         time.Time         `json:"createdAt"`
	ExpiresAt         time.Time         `json:"expiresAt"`
	SoftDeleted       bool              `json:"softDeleted,omitempty"`
}

// CreateEnvironmentRequest — тело запроса на создание окружения.
// TierID и Region опциональны: по умолчанию берутся тариф подписки
// и регион из конфигурации.
type CreateEnvironmentRequest struct {
	SubscriptionID string `json:"subscriptionId" validate:"required,uuid"`
	Name           string `json:"name" validate:"required"`
	TierID         string `json:"tierId,omitempty"`
	Region         string `json:"region,omitempty"`
}

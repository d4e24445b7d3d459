// Package models содержит доменные структуры портала: пользователи,
// тарифы, подписки, окружения, записи потребления и эксперименты.
// Все tenant-зависимые структуры несут TenantID — по нему выполняется
// партиционирование и проверка принадлежности.
package models

import "time"

// User представляет пользователя портала. Создаётся лениво при первом
// обращении к профилю на основании данных из bearer-токена.
type User struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	Roles       []string  `json:"roles"`
	Status      string    `json:"status"` // Active или Inactive
	CreatedAt   time.Time `json:"createdAt"`
}

// DefaultRole назначается пользователю, если токен не содержит ролей.
const DefaultRole = "Student"

// Profile — ответ /me: данные пользователя вместе с его подписками.
type Profile struct {
	UserID        string          `json:"userId"`
	TenantID      string          `json:"tenantId"`
	DisplayName   string          `json:"displayName"`
	Roles         []string        `json:"roles"`
	Subscriptions []*Subscription `json:"subscriptions"`
}

package models

// TierLimits описывает числовые ограничения тарифа.
type TierLimits struct {
	MaxEnvironments    int `json:"maxEnvironments"`
	MaxTokensPerDay    int `json:"maxTokensPerDay"`
	MaxConcurrentCalls int `json:"maxConcurrentCalls"`
	LabExpiryDays      int `json:"labExpiryDays"`
}

// TierDefinition — тариф с лимитами и стартовым количеством кредитов.
// Справочные данные, заполняются миграциями и не меняются обработчиками.
type TierDefinition struct {
	ID              string     `json:"id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	DefaultCredits  int        `json:"defaultCredits"`
	Limits          TierLimits `json:"limits"`
	AllowedServices []string   `json:"allowedServices"`
}

// DefaultLabExpiryDays используется, когда тариф не задаёт срок жизни окружения.
const DefaultLabExpiryDays = 14

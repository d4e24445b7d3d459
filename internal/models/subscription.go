package models

import "time"

// Статусы подписки.
const (
	SubscriptionStatusActive    = "Active"
	SubscriptionStatusExpired   = "Expired"
	SubscriptionStatusCancelled = "Cancelled"
)

// DefaultPrepaidCredits — запасное значение кредитов, если его не задали
// ни запрос, ни тариф.
const DefaultPrepaidCredits = 2000

// Subscription — предоплаченная подписка арендатора на тариф.
// CreditsRemaining уменьшается по мере выполнения экспериментов
// и никогда не опускается ниже нуля.
type Subscription struct {
	ID               string    `json:"id"`
	TenantID         string    `json:"tenantId"`
	UserID           string    `json:"userId"`
	TierID           string    `json:"tierId"`
	Status           string    `json:"status"`
	PrepaidCredits   int       `json:"prepaidCredits"`
	CreditsRemaining int       `json:"creditsRemaining"`
	CreatedAt        time.Time `json:"createdAt"`
	ExpiresAt        time.Time `json:"expiresAt"`
}

// CreateSubscriptionRequest — тело запроса на покупку подписки.
// PrepaidCredits позволяет переопределить стартовые кредиты тарифа.
type CreateSubscriptionRequest struct {
	TierID         string `json:"tierId" validate:"required"`
	PrepaidCredits *int   `json:"prepaidCredits,omitempty" validate:"omitempty,gt=0"`
}

// CreditSummary — сводка кредитов по одной подписке для /usage/credits.
type CreditSummary struct {
	ID               string `json:"id"`
	TierID           string `json:"tierId"`
	CreditsRemaining int    `json:"creditsRemaining"`
	PrepaidCredits   int    `json:"prepaidCredits"`
}

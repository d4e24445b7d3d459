package models

import "time"

// OperationOpenAIChat — тег операции для записей потребления чата.
const OperationOpenAIChat = "OpenAIChat"

// UsageSnapshot — неизменяемая запись одной метрируемой операции.
// Записи только добавляются, никогда не обновляются и не удаляются.
type UsageSnapshot struct {
	ID              string    `json:"id"`
	TenantID        string    `json:"tenantId"`
	SubscriptionID  string    `json:"subscriptionId"`
	EnvironmentID   string    `json:"environmentId,omitempty"`
	Timestamp       time.Time `json:"timestamp"`
	TokensUsed      int       `json:"tokensUsed"`
	CreditsConsumed int       `json:"creditsConsumed"`
	Operation       string    `json:"operation"`
	ExperimentID    string    `json:"experimentId,omitempty"`
}

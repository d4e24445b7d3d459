package models

// AIExperiment — сценарий чат-эксперимента из каталога.
// Справочные данные с фиксированным системным промптом и потолками токенов.
type AIExperiment struct {
	ID                    string   `json:"id"`
	Title                 string   `json:"title"`
	TierIDs               []string `json:"tierIds"`
	Description           string   `json:"description"`
	SystemPrompt          string   `json:"systemPrompt"`
	MaxTokensPerCall      int      `json:"maxTokensPerCall"`
	MaxDailyTokensPerUser int      `json:"maxDailyTokensPerUser"`
	SamplePrompts         []string `json:"samplePrompts"`
}

// ChatTurn — одна реплика диалога, присланная клиентом.
type ChatTurn struct {
	Role    string `json:"role" validate:"required,oneof=user assistant"`
	Content string `json:"content" validate:"required"`
}

// RunExperimentRequest — тело запроса на выполнение эксперимента.
type RunExperimentRequest struct {
	EnvironmentID string     `json:"environmentId" validate:"required,uuid"`
	Messages      []ChatTurn `json:"messages" validate:"required,dive"`
}

// RunExperimentResult — результат одного чат-вызова.
type RunExperimentResult struct {
	Reply            string `json:"reply"`
	ApproxTokensUsed int    `json:"approxTokensUsed"`
	CreditsRemaining int    `json:"creditsRemaining"`
}

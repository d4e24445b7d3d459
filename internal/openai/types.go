package openai

// Message — одна реплика диалога в формате чат-провайдера.
type Message struct {
	Role    string `json:"role"` // system, user или assistant
	Content string `json:"content"`
}

// Completion — результат одного чат-вызова.
type Completion struct {
	Reply      string
	TokensUsed int
}

type chatRequest struct {
	Messages  []Message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

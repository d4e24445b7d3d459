// Package openai реализует клиент размещённого chat-completion API.
// Один исходящий вызов на запрос; соблюдение лимитов тарифа и кредитов —
// обязанность вызывающего.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"

	"github.com/magabrotheeeer/ailab-portal/internal/config"
)

const apiVersion = "2024-02-01"

// ErrNotConfigured возвращается, когда настройки провайдера не заданы.
var ErrNotConfigured = errors.New("chat provider is not configured")

// Client — клиент chat-completion API.
type Client struct {
	endpoint       string
	apiKey         string
	deploymentName string
	httpClient     *http.Client
}

// New создаёт клиент из конфигурации. Отсутствие настроек не фатально:
// пишется предупреждение, а вызовы Complete вернут ErrNotConfigured.
func New(cfg config.OpenAI, log *slog.Logger) *Client {
	if cfg.Endpoint == "" || cfg.APIKey == "" || cfg.DeploymentName == "" {
		log.Warn("missing openai settings (endpoint, api_key, deployment_name)")
	}
	return &Client{
		endpoint:       cfg.Endpoint,
		apiKey:         cfg.APIKey,
		deploymentName: cfg.DeploymentName,
		httpClient:     &http.Client{Timeout: cfg.TimeoutOpenAI},
	}
}

// Complete выполняет один chat-completion вызов с потолком токенов maxTokens.
// Если провайдер не вернул блок usage, количество токенов оценивается
// как длина ответа, делённая на четыре.
func (c *Client) Complete(ctx context.Context, messages []Message, maxTokens int) (*Completion, error) {
	const op = "openai.Complete"

	if c.endpoint == "" || c.apiKey == "" || c.deploymentName == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNotConfigured)
	}

	url := fmt.Sprintf("%s/openai/deployments/%s/chat/completions?api-version=%s",
		c.endpoint, c.deploymentName, apiVersion)

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(chatRequest{
		Messages:  messages,
		MaxTokens: maxTokens,
	}); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("api-key", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: unexpected status: %s", op, resp.Status)
	}

	var body chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var reply string
	if len(body.Choices) > 0 {
		reply = body.Choices[0].Message.Content
	}

	tokensUsed := body.Usage.PromptTokens + body.Usage.CompletionTokens
	if tokensUsed == 0 {
		tokensUsed = int(math.Round(float64(len(reply)) / 4))
	}

	return &Completion{
		Reply:      reply,
		TokensUsed: tokensUsed,
	}, nil
}

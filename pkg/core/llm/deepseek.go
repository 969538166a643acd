package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ChatCompletionsProvider talks to any OpenAI-compatible /chat/completions
// endpoint. DeepSeek and Qwen (DashScope compatible mode) both use it.
type ChatCompletionsProvider struct {
	Name         string
	URL          string
	DefaultModel string
	APIKeyEnv    string
	APIKey       string
	HTTPClient   *http.Client
}

var _ Provider = (*ChatCompletionsProvider)(nil)

// NewDeepSeek returns a provider for the DeepSeek chat API.
func NewDeepSeek() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:         "deepseek",
		URL:          "https://api.deepseek.com/chat/completions",
		DefaultModel: "deepseek-chat",
		APIKeyEnv:    "DEEPSEEK_API_KEY",
	}
}

// NewQwen returns a provider for Qwen through DashScope's compatible mode.
func NewQwen() *ChatCompletionsProvider {
	return &ChatCompletionsProvider{
		Name:         "qwen",
		URL:          "https://dashscope.aliyuncs.com/compatible-mode/v1/chat/completions",
		DefaultModel: "qwen-max",
		APIKeyEnv:    "DASHSCOPE_API_KEY",
	}
}

// ChatRequest is the request body of a chat completion.
type ChatRequest struct {
	Messages       []Message       `json:"messages"`
	Model          string          `json:"model"`
	MaxTokens      int             `json:"max_tokens"`
	ResponseFormat *ResponseFormat `json:"response_format,omitempty"`
	Stream         bool            `json:"stream"`
	Temperature    float64         `json:"temperature"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

// ChatResponse is the subset of the completion response we read.
type ChatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *ChatCompletionsProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey
	if v := stringOpt(options, OptAPIKey); v != "" {
		apiKey = v
	}
	if apiKey == "" && p.APIKeyEnv != "" {
		apiKey = os.Getenv(p.APIKeyEnv)
	}
	if apiKey == "" {
		return "", fmt.Errorf("%s: %w (set %s)", p.Name, ErrMissingAPIKey, p.APIKeyEnv)
	}

	model := p.DefaultModel
	if v := stringOpt(options, OptModel); v != "" {
		model = v
	}

	reqBody := ChatRequest{
		Model:       model,
		MaxTokens:   4096,
		Temperature: floatOpt(options, OptTemperature, 0.2),
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, Message{Content: systemPrompt, Role: "system"})
	}
	reqBody.Messages = append(reqBody.Messages, Message{Content: prompt, Role: "user"})
	if boolOpt(options, OptJSON) {
		reqBody.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("%s: marshal request: %w", p.Name, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("%s: create request: %w", p.Name, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := p.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 120 * time.Second}
	}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: API call: %w", p.Name, err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", p.Name, err)
	}
	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%s: API error: status=%d body=%s", p.Name, res.StatusCode, string(body))
	}

	var response ChatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("%s: unmarshal response: %w", p.Name, err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices in response", p.Name)
	}
	return response.Choices[0].Message.Content, nil
}

func (p *ChatCompletionsProvider) AdaptInstructions(raw string) string {
	return raw
}

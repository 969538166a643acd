package research

import (
	"context"
	"fmt"
	"os"
	"strings"

	"dealdesk/pkg/core/llm"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultChatModel is used when GeminiChat.Model is empty.
const DefaultChatModel = "gemini-1.5-flash"

// GeminiChat is a ChatClient on the Gemini chat session API.
type GeminiChat struct {
	Model       string
	APIKey      string // falls back to GEMINI_API_KEY
	Temperature float32
}

// Send replays history into a fresh chat session and sends message.
func (g *GeminiChat) Send(ctx context.Context, history []Turn, message string) (string, error) {
	apiKey := g.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("gemini chat: %w (set GEMINI_API_KEY)", llm.ErrMissingAPIKey)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", fmt.Errorf("failed to create Gemini client: %w", err)
	}
	defer client.Close()

	name := g.Model
	if name == "" {
		name = DefaultChatModel
	}
	model := client.GenerativeModel(name)
	if g.Temperature > 0 {
		model.SetTemperature(g.Temperature)
	}

	var replay []*genai.Content
	for _, t := range history {
		switch t.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(t.Content)}}
		case RoleUser, RoleModel:
			replay = append(replay, &genai.Content{Role: t.Role, Parts: []genai.Part{genai.Text(t.Content)}})
		}
	}

	cs := model.StartChat()
	cs.History = replay

	resp, err := cs.SendMessage(ctx, genai.Text(message))
	if err != nil {
		return "", err
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("gemini chat: empty response")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}
	return sb.String(), nil
}

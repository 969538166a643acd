package llm

import (
	"context"
	"fmt"
	"os"
	"strings"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when neither the provider nor the call names one.
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiProvider implements the Provider interface for Google's Gemini models.
type GeminiProvider struct {
	Model  string // e.g. "gemini-2.0-flash"
	APIKey string // falls back to GEMINI_API_KEY
}

// Ensure interface compliance
var _ Provider = (*GeminiProvider)(nil)

// GenerateResponse sends a generateContent request through the GenAI SDK.
func (p *GeminiProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey := p.APIKey
	if v := stringOpt(options, OptAPIKey); v != "" {
		apiKey = v
	}
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return "", fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", ErrMissingAPIKey)
	}

	model := p.Model
	if v := stringOpt(options, OptModel); v != "" {
		model = v
	}
	if model == "" {
		model = DefaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(floatOpt(options, OptTemperature, 0.1))),
	}
	if boolOpt(options, OptJSON) {
		config.ResponseMIMEType = "application/json"
		schema, err := schemaOpt(options)
		if err != nil {
			return "", err
		}
		if schema != nil {
			config.ResponseJsonSchema = schema
		}
	}
	if systemPrompt != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: systemPrompt}},
		}
	}
	// Search grounding and JSON mode are mutually exclusive in the API
	if boolOpt(options, OptSearch) && config.ResponseMIMEType == "" {
		config.Tools = []*genai.Tool{{GoogleSearch: &genai.GoogleSearch{}}}
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("gemini generation failed: %w", err)
	}

	text := result.Text()
	if citations := groundingCitations(result); len(citations) > 0 {
		text = fmt.Sprintf("%s\n\n**Sources:**\n%s", text, strings.Join(citations, "\n"))
	}
	return text, nil
}

func groundingCitations(result *genai.GenerateContentResponse) []string {
	if len(result.Candidates) == 0 || result.Candidates[0].GroundingMetadata == nil {
		return nil
	}
	var citations []string
	for _, chunk := range result.Candidates[0].GroundingMetadata.GroundingChunks {
		if chunk.Web != nil {
			citations = append(citations, fmt.Sprintf("- [%s](%s)", chunk.Web.Title, chunk.Web.URI))
		}
	}
	return citations
}

func (p *GeminiProvider) AdaptInstructions(raw string) string {
	return raw
}

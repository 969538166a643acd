// Package llm wraps the hosted language models used for offering-memorandum
// extraction and market research.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrMissingAPIKey is returned when a provider has no credentials configured.
var ErrMissingAPIKey = errors.New("llm: API key not configured")

// Provider is the interface for all LLM providers.
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// Options keys understood by the providers.
const (
	OptModel       = "model"
	OptAPIKey      = "api_key"
	OptJSON        = "json"
	OptTemperature = "temperature"
	OptSearch      = "google_search"
	OptSchema      = "response_schema" // JSON Schema, as a string or a decoded map
)

func stringOpt(options map[string]interface{}, key string) string {
	if v, ok := options[key].(string); ok {
		return v
	}
	return ""
}

func boolOpt(options map[string]interface{}, key string) bool {
	v, _ := options[key].(bool)
	return v
}

func floatOpt(options map[string]interface{}, key string, def float64) float64 {
	switch v := options[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	}
	return def
}

// schemaOpt decodes the OptSchema option. It returns nil when none is set.
func schemaOpt(options map[string]interface{}) (map[string]interface{}, error) {
	switch v := options[OptSchema].(type) {
	case map[string]interface{}:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		var schema map[string]interface{}
		if err := json.Unmarshal([]byte(v), &schema); err != nil {
			return nil, fmt.Errorf("invalid response schema: %w", err)
		}
		return schema, nil
	}
	return nil, nil
}

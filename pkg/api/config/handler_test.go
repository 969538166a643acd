package config

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealdesk/pkg/core/agent"
	"dealdesk/pkg/core/prompt"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigAndSwitch(t *testing.T) {
	h := NewHandler(agent.NewManager(agent.Config{ActiveProvider: "gemini"}))

	rec := httptest.NewRecorder()
	h.HandleConfig(rec, httptest.NewRequest(http.MethodGet, "/api/config", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, "gemini", resp.ActiveProvider)
	assert.Equal(t, []string{"deepseek", "gemini", "qwen"}, resp.Available)
	assert.Contains(t, resp.Prompts, prompt.DealExtractionID)
	assert.Contains(t, resp.Prompts, prompt.MarketResearchID)

	rec = httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", bytes.NewBufferString(`{"provider": "qwen"}`)))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "qwen", h.AgentMgr.GetActiveProvider())

	rec = httptest.NewRecorder()
	h.HandleSwitch(rec, httptest.NewRequest(http.MethodPost, "/api/config/switch", bytes.NewBufferString(`{"provider": "openai"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

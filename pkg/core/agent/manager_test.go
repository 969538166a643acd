package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProvider struct {
	name    string
	options map[string]interface{}
}

func (s *stubProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	s.options = options
	return s.name + ":" + prompt, nil
}

func (s *stubProvider) AdaptInstructions(raw string) string { return raw }

func TestManagerRouting(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "a",
		Agents: map[string]AgentConfig{
			DealExtraction: {Provider: "b", Model: "big-model"},
			MarketResearch: {Provider: "missing"},
		},
	})
	a, b := &stubProvider{name: "a"}, &stubProvider{name: "b"}
	m.Register("a", a)
	m.Register("b", b)

	out, err := m.ExecutePrompt(context.Background(), DealExtraction, "om", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "b:om", out)
	assert.Equal(t, "big-model", b.options["model"])

	// Unknown override falls back to the global provider
	out, err = m.ExecutePrompt(context.Background(), MarketResearch, "q", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "a:q", out)

	name, model := m.ProviderFor(DealExtraction)
	assert.Equal(t, "b", name)
	assert.Equal(t, "big-model", model)
	name, model = m.ProviderFor(MarketResearch)
	assert.Equal(t, "a", name)
	assert.Empty(t, model)
}

func TestManagerSetGlobalProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "gemini"})
	require.NoError(t, m.SetGlobalProvider("deepseek"))
	assert.Equal(t, "deepseek", m.GetActiveProvider())
	assert.Error(t, m.SetGlobalProvider("openai"))
	assert.Contains(t, m.Providers(), "qwen")
}

func TestManagerNoProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "none"})
	_, err := m.ExecutePrompt(context.Background(), DealExtraction, "x", "", nil)
	assert.Error(t, err)
}

func TestAgentProviderFollowsSwitch(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "a",
		Agents:         map[string]AgentConfig{DealExtraction: {Model: "m1"}},
	})
	a, b := &stubProvider{name: "a"}, &stubProvider{name: "b"}
	m.Register("a", a)
	m.Register("b", b)

	p := m.AgentProvider(DealExtraction)
	out, err := p.GenerateResponse(context.Background(), "doc", "sys", map[string]interface{}{"json": true})
	require.NoError(t, err)
	assert.Equal(t, "a:doc", out)
	assert.Equal(t, "m1", a.options["model"])
	assert.Equal(t, true, a.options["json"])

	require.NoError(t, m.SetGlobalProvider("b"))
	out, err = p.GenerateResponse(context.Background(), "doc", "sys", nil)
	require.NoError(t, err)
	assert.Equal(t, "b:doc", out)
}

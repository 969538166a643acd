// Package agent routes each agent type (deal extraction, market research)
// to the configured LLM provider.
package agent

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"go.uber.org/zap"

	"dealdesk/pkg/core/llm"
	"dealdesk/pkg/core/logging"
)

// Agent types.
const (
	DealExtraction = "deal_extraction"
	MarketResearch = "market_research"
)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider" json:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents" json:"agents"`
}

type AgentConfig struct {
	Provider    string `yaml:"provider" json:"provider"` // Optional override
	Model       string `yaml:"model" json:"model"`
	Description string `yaml:"description" json:"description"`
}

type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider
	log       *zap.SugaredLogger
}

// NewManager registers the built-in providers.
func NewManager(config Config) *Manager {
	return &Manager{
		config: config,
		providers: map[string]llm.Provider{
			"gemini":   &llm.GeminiProvider{},
			"deepseek": llm.NewDeepSeek(),
			"qwen":     llm.NewQwen(),
		},
		log: logging.Named("agent"),
	}
}

// Register adds or replaces a provider.
func (m *Manager) Register(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

// ProviderFor resolves the provider name and model override for an agent
// type: agent override, then the global provider.
func (m *Manager) ProviderFor(agentType string) (name, model string) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providerNameLocked(agentType), m.config.Agents[agentType].Model
}

func (m *Manager) providerNameLocked(agentType string) string {
	if ac, ok := m.config.Agents[agentType]; ok && ac.Provider != "" {
		if _, ok := m.providers[ac.Provider]; ok {
			return ac.Provider
		}
	}
	return m.config.ActiveProvider
}

// ExecutePrompt adapts the system prompt for the resolved provider and runs it.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	m.mu.RLock()
	name := m.providerNameLocked(agentType)
	provider := m.providers[name]
	model := m.config.Agents[agentType].Model
	m.mu.RUnlock()

	if provider == nil {
		return "", fmt.Errorf("agent %s: no provider registered as %q", agentType, name)
	}

	if model != "" {
		if options == nil {
			options = map[string]interface{}{}
		}
		if _, set := options[llm.OptModel]; !set {
			options[llm.OptModel] = model
		}
	}

	m.log.Debugw("execute prompt", "agent", agentType, "provider", name)
	return provider.GenerateResponse(ctx, rawPrompt, provider.AdaptInstructions(rawSystemPrompt), options)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	m.log.Infow("global provider set", "provider", newProvider)
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// Providers lists the registered provider names.
func (m *Manager) Providers() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for n := range m.providers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// AgentProvider returns an llm.Provider bound to one agent type, so callers
// that take a Provider still get per-agent routing and model overrides.
func (m *Manager) AgentProvider(agentType string) llm.Provider {
	return &boundProvider{mgr: m, agentType: agentType}
}

type boundProvider struct {
	mgr       *Manager
	agentType string
}

func (b *boundProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	return b.mgr.ExecutePrompt(ctx, b.agentType, prompt, systemPrompt, options)
}

// AdaptInstructions is a pass-through; ExecutePrompt adapts for the
// resolved provider.
func (b *boundProvider) AdaptInstructions(raw string) string {
	return raw
}

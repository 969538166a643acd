package research

import (
	"context"
	"strings"

	"dealdesk/pkg/core/agent"
	"dealdesk/pkg/core/llm"
)

// ProviderChat adapts a single-shot llm.Provider to ChatClient by folding
// the history into the prompt.
type ProviderChat struct {
	Provider llm.Provider
}

func (p *ProviderChat) Send(ctx context.Context, history []Turn, message string) (string, error) {
	var system string
	var b strings.Builder
	for _, t := range history {
		switch t.Role {
		case RoleSystem:
			system = t.Content
		case RoleUser:
			b.WriteString("User: " + t.Content + "\n\n")
		case RoleModel:
			b.WriteString("Analyst: " + t.Content + "\n\n")
		}
	}
	if b.Len() > 0 {
		b.WriteString("User: ")
	}
	b.WriteString(message)

	return p.Provider.GenerateResponse(ctx, b.String(), p.Provider.AdaptInstructions(system), nil)
}

// RoutedChat resolves the market-research provider on every Send, so a
// provider switch applies from the next turn. Gemini keeps a real chat
// session; other providers get the folded history.
type RoutedChat struct {
	Manager *agent.Manager
	Gemini  ChatClient // nil uses GeminiChat with the agent's model
}

func (c *RoutedChat) Send(ctx context.Context, history []Turn, message string) (string, error) {
	name, model := c.Manager.ProviderFor(agent.MarketResearch)
	if name == "gemini" {
		g := c.Gemini
		if g == nil {
			g = &GeminiChat{Model: model}
		}
		return g.Send(ctx, history, message)
	}
	chat := &ProviderChat{Provider: c.Manager.AgentProvider(agent.MarketResearch)}
	return chat.Send(ctx, history, message)
}

package config

import (
	"os"
	"path/filepath"
	"testing"

	"dealdesk/pkg/core/agent"
	"dealdesk/pkg/core/market"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DEALDESK_ADDR", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DEALDESK_PROVIDER", "")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "gemini", cfg.LLM.ActiveProvider)
	assert.Equal(t, market.DefaultWeights(), cfg.MarketWeights())
}

func TestLoadFileAndEnv(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9000"
llm:
  active_provider: deepseek
  agents:
    market_research:
      provider: qwen
      model: qwen-max
market:
  weights:
    job_growth: 40
`)
	t.Setenv("DEALDESK_ADDR", "")
	t.Setenv("DATABASE_URL", "postgres://u:p@db:5432/deals")
	t.Setenv("DEALDESK_PROVIDER", "")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)
	assert.Equal(t, "postgres://u:p@db:5432/deals", cfg.Database.URL)
	assert.Equal(t, "deepseek", cfg.LLM.ActiveProvider)
	assert.Equal(t, "qwen", cfg.LLM.Agents[agent.MarketResearch].Provider)
	// Defaults for other agents survive the merge.
	assert.Contains(t, cfg.LLM.Agents, agent.DealExtraction)

	w := cfg.MarketWeights()
	assert.Equal(t, 40.0, w[market.FactorJobGrowth])
	assert.Equal(t, 15.0, w[market.FactorRentGrowth])
}

func TestEnvOverridesAddr(t *testing.T) {
	t.Setenv("DEALDESK_ADDR", ":7070")
	cfg, err := Load(writeConfig(t, "server:\n  addr: \":9000\"\n"))
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Server.Addr)
}

func TestLoadRejectsUnknownFactor(t *testing.T) {
	t.Setenv("DEALDESK_ADDR", "")
	_, err := Load(writeConfig(t, "market:\n  weights:\n    crime_rate: 10\n"))
	assert.ErrorContains(t, err, "crime_rate")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	_, err := Load(writeConfig(t, "server: [unclosed"))
	assert.Error(t, err)
}

package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestBuiltinsRegistered(t *testing.T) {
	r := NewRegistry()

	if _, err := r.GetPrompt(DealExtractionID); err != nil {
		t.Fatalf("extraction prompt missing: %v", err)
	}
	if _, err := r.GetSchema(DealDraftSchema); err != nil {
		t.Fatalf("draft schema missing: %v", err)
	}
	ids := r.ListPrompts()
	if len(ids) != 2 || ids[0] != DealExtractionID || ids[1] != MarketResearchID {
		t.Errorf("Expected sorted built-in IDs, got %v", ids)
	}
}

func TestRender(t *testing.T) {
	r := NewRegistry()

	sys, user, err := r.Render(MarketResearchID, NewContext().Set("Question", "Is Boise overbuilt?"))
	if err != nil {
		t.Fatalf("render failed: %v", err)
	}
	if !strings.Contains(sys, "market research analyst") {
		t.Errorf("Unexpected system prompt: %s", sys)
	}
	if user != "Is Boise overbuilt?" {
		t.Errorf("Expected bare question without context, got %q", user)
	}

	_, user, _ = r.Render(MarketResearchID, NewContext().
		Set("Question", "Q").
		Set("MarketContext", "Score 72 (B)"))
	if !strings.HasPrefix(user, "Market context:\nScore 72 (B)") {
		t.Errorf("Context block missing: %q", user)
	}

	if _, _, err := r.Render("nope", NewContext()); err == nil {
		t.Error("Expected error for unknown prompt")
	}
}

func TestLoadDirectoryOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	promptDir := filepath.Join(dir, "prompts", "extraction")
	if err := os.MkdirAll(promptDir, 0o755); err != nil {
		t.Fatal(err)
	}
	hj := `{
  # comments are allowed
  system_prompt: Custom OM extractor.
  user_prompt_template: "{{.Content}}"
}`
	if err := os.WriteFile(filepath.Join(promptDir, "offering_memorandum.hjson"), []byte(hj), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(promptDir, "rent_roll.json"), []byte(`{"system_prompt":"rr"}`), 0o644); err != nil {
		t.Fatal(err)
	}

	r := NewRegistry()
	if err := r.LoadDirectory(dir); err != nil {
		t.Fatalf("load failed: %v", err)
	}

	pt, err := r.GetPrompt(DealExtractionID)
	if err != nil {
		t.Fatal(err)
	}
	if pt.SystemPrompt != "Custom OM extractor." || pt.Category != "extraction" {
		t.Errorf("Override not applied: %+v", pt)
	}
	if _, err := r.GetPrompt("extraction.rent_roll"); err != nil {
		t.Errorf("JSON prompt not loaded: %v", err)
	}
}

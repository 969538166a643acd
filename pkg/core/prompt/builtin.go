package prompt

// Built-in prompt IDs.
const (
	DealExtractionID = "extraction.offering_memorandum"
	MarketResearchID = "research.market_analyst"
	DealDraftSchema  = "deal_draft"
)

const dealExtractionSystem = `You are a commercial real estate acquisitions analyst.
Extract underwriting inputs from the offering memorandum text you are given.

Return ONLY a JSON object with these keys. Use null for anything the document does not state.
Do not estimate or infer values that are not in the text.

{
  "name": string,
  "property_type": "multifamily" | "office" | "retail" | "industrial" | "mixed_use" | "single_family",
  "address": string,
  "market": string,                  // metro or city, e.g. "Austin, TX"
  "units": number,
  "square_feet": number,
  "year_built": number,
  "purchase_price": number,          // asking price, dollars
  "gross_potential_rent": number,    // annual, dollars
  "other_income": number,            // annual, dollars
  "vacancy_rate": number,            // decimal, 0.05 = 5%
  "operating_expenses": number,      // annual total excluding debt service
  "noi": number,                     // stated in-place NOI
  "cap_rate": number,                // stated cap rate, decimal
  "loan_amount": number,
  "interest_rate": number,           // decimal
  "amortization_years": number,
  "term_years": number
}

Amounts may be written as "$1.25M" or "850K"; percentages as "6.5%".`

const dealExtractionUser = `Document: {{.DocumentName}}

{{.Content}}`

const marketResearchSystem = `You are a real estate market research analyst helping an investor evaluate a market.
Answer concisely in Markdown. Cite figures only when they come from the provided market
context or from sources you can name. Call out risks as clearly as opportunities.
Never present the heuristic market score as a forecast.`

const marketResearchUser = `{{if .MarketContext}}Market context:
{{.MarketContext}}

{{end}}{{.Question}}`

const dealDraftJSONSchema = `{
  "type": "object",
  "properties": {
    "name": {"type": ["string", "null"]},
    "property_type": {"type": ["string", "null"]},
    "units": {"type": ["number", "string", "null"]},
    "purchase_price": {"type": ["number", "string", "null"]},
    "gross_potential_rent": {"type": ["number", "string", "null"]},
    "vacancy_rate": {"type": ["number", "string", "null"]},
    "operating_expenses": {"type": ["number", "string", "null"]},
    "loan_amount": {"type": ["number", "string", "null"]},
    "interest_rate": {"type": ["number", "string", "null"]}
  }
}`

func builtins() []PromptTemplate {
	return []PromptTemplate{
		{
			ID:               DealExtractionID,
			Name:             "Offering memorandum extraction",
			Category:         "extraction",
			Description:      "Pulls underwriting inputs out of OM text",
			SystemPrompt:     dealExtractionSystem,
			UserPromptTmpl:   dealExtractionUser,
			ResponseSchemaID: DealDraftSchema,
			Variables: []PromptVariable{
				{Name: "DocumentName", Type: "string", Required: false},
				{Name: "Content", Type: "string", Description: "Flattened OM text", Required: true},
			},
			Version: "1",
		},
		{
			ID:             MarketResearchID,
			Name:           "Market research analyst",
			Category:       "research",
			Description:    "Chat persona for market questions",
			SystemPrompt:   marketResearchSystem,
			UserPromptTmpl: marketResearchUser,
			Variables: []PromptVariable{
				{Name: "MarketContext", Type: "string"},
				{Name: "Question", Type: "string", Required: true},
			},
			Version: "1",
		},
	}
}

func builtinSchemas() []ResponseSchema {
	return []ResponseSchema{
		{ID: DealDraftSchema, Name: "Deal draft", Description: "Extracted deal fields", JSONSchema: dealDraftJSONSchema},
	}
}

// Render looks up a template and renders its user prompt.
func (r *Registry) Render(id string, ctx *PromptExecutionContext) (system, user string, err error) {
	pt, err := r.GetPrompt(id)
	if err != nil {
		return "", "", err
	}
	user, err = RenderUserPrompt(pt, ctx)
	if err != nil {
		return "", "", err
	}
	return pt.SystemPrompt, user, nil
}

package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/llm"
	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/prompt"
	"dealdesk/pkg/core/utils"

	"github.com/go-playground/validator/v10"
)

// ErrEmptyDocument is returned when a document has no extractable text.
var ErrEmptyDocument = errors.New("document has no text")

// MaxContentChars caps the text sent to the model.
const MaxContentChars = 120000

// Document is an offering memorandum already converted to text or HTML.
type Document struct {
	Name        string `json:"name"`
	Content     string `json:"content"`
	ContentType string `json:"content_type"` // text/html, text/plain, text/markdown
}

// Extractor pulls a deal draft out of a document with an LLM.
type Extractor struct {
	Provider llm.Provider
	Prompts  *prompt.Registry // nil uses the global registry
}

// Text returns the document text the model will see.
func (doc Document) Text() (string, error) {
	text := doc.Content
	if strings.Contains(strings.ToLower(doc.ContentType), "html") {
		flat, err := FlattenHTML(doc.Content)
		if err != nil {
			return "", err
		}
		text = flat
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyDocument
	}
	if len(text) > MaxContentChars {
		cut := MaxContentChars
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return text, nil
}

// Extract runs the extraction prompt and normalizes the model's answer.
func (e *Extractor) Extract(ctx context.Context, doc Document) (*deal.Draft, error) {
	log := logging.Named("extract")

	text, err := doc.Text()
	if err != nil {
		return nil, err
	}

	reg := e.Prompts
	if reg == nil {
		reg = prompt.Get()
	}
	system, user, err := reg.Render(prompt.DealExtractionID, prompt.NewContext().
		Set("DocumentName", doc.Name).
		Set("Content", text))
	if err != nil {
		return nil, fmt.Errorf("render extraction prompt: %w", err)
	}

	opts := map[string]interface{}{llm.OptJSON: true}
	if schema := responseSchema(reg, prompt.DealExtractionID); schema != "" {
		opts[llm.OptSchema] = schema
	}
	resp, err := e.Provider.GenerateResponse(ctx, user, e.Provider.AdaptInstructions(system), opts)
	if err != nil {
		return nil, fmt.Errorf("extraction call failed: %w", err)
	}

	var raw map[string]interface{}
	if _, err := utils.SmartParse(resp, &raw); err != nil {
		return nil, fmt.Errorf("model returned unusable JSON: %w", err)
	}

	dropped := checkText(raw)
	draft, skipped := Normalize(raw)
	skipped = append(dropped, skipped...)
	log.Infow("deal extracted", "document", doc.Name, "missing", draft.Missing(), "skipped", skipped)
	return draft, nil
}

func responseSchema(reg *prompt.Registry, promptID string) string {
	pt, err := reg.GetPrompt(promptID)
	if err != nil || pt.ResponseSchemaID == "" {
		return ""
	}
	schema, err := reg.GetSchema(pt.ResponseSchemaID)
	if err != nil {
		return ""
	}
	return schema.JSONSchema
}

// extractionText holds the free-text fields of the model's answer. Numbers
// stay loosely typed and are parsed by Normalize.
type extractionText struct {
	Name         *string `json:"name" validate:"omitempty,max=200"`
	PropertyType *string `json:"property_type" validate:"omitempty,max=40"`
	Address      *string `json:"address" validate:"omitempty,max=300"`
	Market       *string `json:"market" validate:"omitempty,max=120"`
}

// checkText removes text fields that are not strings or are implausibly
// long, and returns their keys.
func checkText(raw map[string]interface{}) []string {
	var dropped []string
	for i := 0; i < 4; i++ {
		b, err := json.Marshal(raw)
		if err != nil {
			return dropped
		}
		err = utils.ValidateJSON(string(b), &extractionText{})
		if err == nil {
			return dropped
		}
		keys := failedKeys(err)
		if len(keys) == 0 {
			return dropped
		}
		for _, k := range keys {
			delete(raw, k)
		}
		dropped = append(dropped, keys...)
	}
	return dropped
}

func failedKeys(err error) []string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		keys := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			keys = append(keys, fe.Field())
		}
		return keys
	}
	var terr *json.UnmarshalTypeError
	if errors.As(err, &terr) && terr.Field != "" {
		return []string{terr.Field}
	}
	return nil
}

var percentKeys = map[string]bool{"vacancy_rate": true, "cap_rate": true, "interest_rate": true}

// Normalize converts loosely typed model output into a Draft. Values that
// cannot be parsed are left nil and their keys returned.
func Normalize(raw map[string]interface{}) (*deal.Draft, []string) {
	d := &deal.Draft{}
	var skipped []string

	str := func(key string) *string {
		if s, ok := raw[key].(string); ok && strings.TrimSpace(s) != "" {
			s = strings.TrimSpace(s)
			return &s
		}
		return nil
	}
	num := func(key string) *float64 {
		v, ok := raw[key]
		if !ok || v == nil {
			return nil
		}
		var f float64
		var err error
		switch t := v.(type) {
		case float64:
			f = t
			if percentKeys[key] && f > 1 {
				f /= 100
			}
		case string:
			if strings.TrimSpace(t) == "" {
				return nil
			}
			if percentKeys[key] {
				f, err = ParsePercent(t)
			} else {
				f, err = ParseAmount(t)
			}
		default:
			err = ErrUnparseable
		}
		if err != nil {
			skipped = append(skipped, key)
			return nil
		}
		return &f
	}
	integer := func(key string) *int {
		f := num(key)
		if f == nil {
			return nil
		}
		i := int(math.Round(*f))
		return &i
	}

	d.Name = str("name")
	d.PropertyType = propertyType(str("property_type"))
	d.Address = str("address")
	d.Market = str("market")
	d.Units = integer("units")
	d.SquareFeet = num("square_feet")
	d.YearBuilt = integer("year_built")
	d.PurchasePrice = num("purchase_price")
	d.GrossPotentialRent = num("gross_potential_rent")
	d.OtherIncome = num("other_income")
	d.VacancyRate = num("vacancy_rate")
	d.OperatingExpenses = num("operating_expenses")
	d.NOI = num("noi")
	d.CapRate = num("cap_rate")
	d.LoanAmount = num("loan_amount")
	d.InterestRate = num("interest_rate")
	d.AmortizationYears = integer("amortization_years")
	d.TermYears = integer("term_years")
	return d, skipped
}

func propertyType(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.ToLower(strings.TrimSpace(*s))
	t = strings.NewReplacer("-", "_", " ", "_").Replace(t)
	switch t {
	case "apartment", "apartments", "multi_family":
		t = "multifamily"
	case "sfr", "single_family_rental":
		t = "single_family"
	case "mixed":
		t = "mixed_use"
	}
	return &t
}

package extract

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"dealdesk/pkg/core/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlattenHTML(t *testing.T) {
	html := `<html><head><style>p{}</style><script>var x=1</script></head><body>
<nav>Home | Listings</nav>
<h1>Elm Court  Apartments</h1>
<p>A 24-unit value-add
opportunity.</p>
<ul><li><p>Built 1986</p></li></ul>
<table>
  <tr><th>Asking Price</th><td>$3,200,000</td></tr>
  <tr><th>Cap Rate</th><td>5.9%</td></tr>
</table>
</body></html>`

	out, err := FlattenHTML(html)
	require.NoError(t, err)
	assert.Equal(t, strings.Join([]string{
		"Elm Court Apartments",
		"A 24-unit value-add opportunity.",
		"Built 1986",
		"Asking Price | $3,200,000",
		"Cap Rate | 5.9%",
	}, "\n"), out)
}

func TestParseAmount(t *testing.T) {
	tests := map[string]float64{
		"$3,200,000":         3200000,
		"$1.25M":             1250000,
		"850K":               850000,
		"2.1 million":        2100000,
		"$4.5MM":             4500000,
		"(5,000)":            -5000,
		"24":                 24,
		"1.1 bn":             1100000000,
		"120 beds":           120,
		"5 buildings":        5,
		"$2,500,000 minimum": 2500000,
		"3 months":           3,
		"850 kw":             850,
	}
	for in, want := range tests {
		got, err := ParseAmount(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-6, in)
	}

	_, err := ParseAmount("n/a")
	assert.True(t, errors.Is(err, ErrUnparseable))
}

func TestParsePercent(t *testing.T) {
	tests := map[string]float64{
		"6.5%":       0.065,
		"5 percent":  0.05,
		"0.055":      0.055,
		"7.25":       0.0725,
		" 10.0 % ":   0.10,
	}
	for in, want := range tests {
		got, err := ParsePercent(in)
		require.NoError(t, err, in)
		assert.InDelta(t, want, got, 1e-12, in)
	}
}

func TestNormalize(t *testing.T) {
	d, skipped := Normalize(map[string]interface{}{
		"name":                 "Elm Court",
		"property_type":        "Multi-Family",
		"units":                24.0,
		"purchase_price":       "$3.2M",
		"gross_potential_rent": 388800.0,
		"vacancy_rate":         "6%",
		"cap_rate":             5.9,
		"noi":                  "TBD",
		"loan_amount":          nil,
	})

	require.NotNil(t, d.Name)
	assert.Equal(t, "multifamily", *d.PropertyType)
	assert.Equal(t, 24, *d.Units)
	assert.InDelta(t, 3200000, *d.PurchasePrice, 1e-6)
	assert.InDelta(t, 0.06, *d.VacancyRate, 1e-12)
	assert.InDelta(t, 0.059, *d.CapRate, 1e-12)
	assert.Nil(t, d.NOI)
	assert.Nil(t, d.LoanAmount)
	assert.Equal(t, []string{"noi"}, skipped)

	d, _ = Normalize(map[string]interface{}{"units": "120 beds", "square_feet": "98,000 sf"})
	assert.Equal(t, 120, *d.Units)
	assert.InDelta(t, 98000, *d.SquareFeet, 1e-9)
}

type fakeProvider struct {
	resp    string
	system  string
	user    string
	options map[string]interface{}
}

func (f *fakeProvider) GenerateResponse(ctx context.Context, prompt, systemPrompt string, options map[string]interface{}) (string, error) {
	f.user, f.system, f.options = prompt, systemPrompt, options
	return f.resp, nil
}

func (f *fakeProvider) AdaptInstructions(raw string) string { return raw }

func TestExtractorExtract(t *testing.T) {
	fp := &fakeProvider{resp: "```json\n{\"name\": \"Elm Court\", \"purchase_price\": \"$3,200,000\", \"gross_potential_rent\": 388800, \"operating_expenses\": \"145.6K\",}\n```"}
	e := &Extractor{Provider: fp}

	d, err := e.Extract(context.Background(), Document{
		Name:        "elm-court-om.html",
		Content:     "<table><tr><td>Price</td><td>$3,200,000</td></tr></table>",
		ContentType: "text/html",
	})
	require.NoError(t, err)

	assert.Contains(t, fp.user, "Price | $3,200,000")
	assert.Contains(t, fp.user, "elm-court-om.html")
	assert.Contains(t, fp.system, "acquisitions analyst")
	assert.InDelta(t, 145600, *d.OperatingExpenses, 1e-6)
	assert.Empty(t, d.Missing())

	assert.Equal(t, true, fp.options[llm.OptJSON])
	schema, ok := fp.options[llm.OptSchema].(string)
	require.True(t, ok, "extraction should send the draft schema")
	assert.Contains(t, schema, "purchase_price")
}

func TestExtractorDropsMalformedText(t *testing.T) {
	fp := &fakeProvider{resp: `{"name": "` + strings.Repeat("x", 250) + `", "address": {"street": "1 Elm"}, "market": "Austin, TX", "units": 24}`}
	e := &Extractor{Provider: fp}

	d, err := e.Extract(context.Background(), Document{Content: "Elm Court, 24 units"})
	require.NoError(t, err)
	assert.Nil(t, d.Name)
	assert.Nil(t, d.Address)
	require.NotNil(t, d.Market)
	assert.Equal(t, "Austin, TX", *d.Market)
	assert.Equal(t, 24, *d.Units)
}

func TestCheckText(t *testing.T) {
	raw := map[string]interface{}{
		"name":          strings.Repeat("x", 201),
		"property_type": 7.0,
		"address":       "1 Elm St",
	}
	dropped := checkText(raw)
	assert.ElementsMatch(t, []string{"name", "property_type"}, dropped)
	assert.Equal(t, map[string]interface{}{"address": "1 Elm St"}, raw)

	assert.Empty(t, checkText(map[string]interface{}{"name": "Elm Court", "units": "24"}))
}

func TestDocumentTextTruncatesOnRuneBoundary(t *testing.T) {
	// One ASCII byte shifts the two-byte runes so the cap lands mid-rune
	doc := Document{Content: "a" + strings.Repeat("é", MaxContentChars)}
	text, err := doc.Text()
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(text))
	assert.LessOrEqual(t, len(text), MaxContentChars)
	assert.GreaterOrEqual(t, len(text), MaxContentChars-utf8.UTFMax)
}

func TestExtractorEmptyDocument(t *testing.T) {
	e := &Extractor{Provider: &fakeProvider{}}
	_, err := e.Extract(context.Background(), Document{Content: "  "})
	assert.ErrorIs(t, err, ErrEmptyDocument)
}

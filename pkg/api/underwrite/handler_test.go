package underwrite

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sync"
	"testing"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/sensitivity"
	core "dealdesk/pkg/core/underwrite"
	"dealdesk/pkg/core/waterfall"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	mu      sync.Mutex
	reports map[string]*core.Report
}

var errMissing = fmt.Errorf("missing")

func newMemStore() *memStore { return &memStore{reports: map[string]*core.Report{}} }

func (m *memStore) Save(_ context.Context, rep *core.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reports[rep.ID] = rep
	return nil
}

func (m *memStore) Load(_ context.Context, id string) (*core.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, errMissing
	}
	return rep, nil
}

func (m *memStore) List(_ context.Context, _ int) ([]core.Summary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []core.Summary{}
	for _, rep := range m.reports {
		out = append(out, rep.Summarize())
	}
	return out, nil
}

const flatDealJSON = `{
  "name": "Flat Test",
  "property": {"type": "office", "units": 10},
  "acquisition": {"purchase_price": 1000000, "closing_costs": 0},
  "operations": {"gross_potential_rent": 100000, "vacancy_rate": 0, "expense_ratio": 0.4},
  "growth": {"rent_growth": 0, "expense_growth": 0},
  "exit": {"hold_years": 5, "exit_cap_rate": 0.06, "selling_cost_rate": 0}
}`

func serve(h *Handler) *httptest.Server {
	mux := http.NewServeMux()
	h.Register(mux)
	return httptest.NewServer(mux)
}

func post(t *testing.T, url, contentType, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, contentType, bytes.NewBufferString(body))
	require.NoError(t, err)
	return resp
}

func TestHandleUnderwriteAndSave(t *testing.T) {
	store := newMemStore()
	srv := serve(NewHandler(nil, store))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/underwrite?save=true", "application/json", flatDealJSON)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep core.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.InDelta(t, 60000, rep.Statement.NOI, 1e-6)
	assert.InDelta(t, 0.06, rep.Metrics.CapRate, 1e-12)
	assert.Contains(t, store.reports, rep.ID)

	get, err := http.Get(srv.URL + "/api/underwrite/report?id=" + rep.ID)
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	list, err := http.Get(srv.URL + "/api/underwrite/report")
	require.NoError(t, err)
	defer list.Body.Close()
	var summaries []core.Summary
	require.NoError(t, json.NewDecoder(list.Body).Decode(&summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "Flat Test", summaries[0].Name)
}

func TestHandleUnderwriteYAML(t *testing.T) {
	data, err := os.ReadFile("../../core/deal/testdata/elm_court.yaml")
	require.NoError(t, err)

	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/underwrite", "application/yaml", string(data))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var rep core.Report
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&rep))
	assert.NotNil(t, rep.Market)
	assert.NotNil(t, rep.Waterfall)
}

func TestHandleUnderwriteInvalidDeal(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/underwrite", "application/json",
		`{"name": "Bad", "property": {"type": "castle"}, "acquisition": {"purchase_price": 0}}`)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body struct {
		Error  string `json:"error"`
		Fields []struct {
			Field string `json:"field"`
		} `json:"fields"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.NotEmpty(t, body.Fields)
}

func TestHandleUnderwriteSaveWithoutStore(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/underwrite?save=true", "application/json", flatDealJSON)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHandleUnderwriteMethodAndPreflight(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/underwrite")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/underwrite", nil)
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestHandleAmortize(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	resp := post(t, srv.URL+"/api/amortize", "application/json",
		`{"principal": 100000, "annual_rate": 0.06, "amortization_years": 30, "term_years": 30}`)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var sched debt.Schedule
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&sched))
	assert.Len(t, sched.Periods, 360)
	assert.InDelta(t, 599.55, sched.AmortizingPayment, 0.01)

	bad := post(t, srv.URL+"/api/amortize", "application/json", `{"principal": -5}`)
	defer bad.Body.Close()
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestHandleWaterfall(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	body, _ := json.Marshal(WaterfallRequest{
		Structure: waterfall.Structure{LPEquity: 90, GPEquity: 10, PreferredReturn: 0.08},
		CashFlows: []float64{8, 8, 120},
	})
	resp := post(t, srv.URL+"/api/waterfall", "application/json", string(body))
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var res waterfall.Result
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
	assert.InDelta(t, 136, res.Summary.LPTotal+res.Summary.GPTotal, 1e-6)

	bad, _ := json.Marshal(WaterfallRequest{Structure: waterfall.Structure{}, CashFlows: []float64{1}})
	resp2 := post(t, srv.URL+"/api/waterfall", "application/json", string(bad))
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

func TestHandleSensitivity(t *testing.T) {
	srv := serve(NewHandler(nil, nil))
	defer srv.Close()

	body := fmt.Sprintf(`{"deal": %s, "rows": {"field": %q, "values": [0.055, 0.06]}, "cols": {"field": %q, "values": [0, 0.02, 0.04]}}`,
		flatDealJSON, sensitivity.ExitCapRate, sensitivity.RentGrowth)
	resp := post(t, srv.URL+"/api/sensitivity", "application/json", body)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var grid sensitivity.Grid
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&grid))
	require.Len(t, grid.Cells, 2)
	assert.Len(t, grid.Cells[0], 3)

	bad := fmt.Sprintf(`{"deal": %s, "rows": {"field": "moon_phase", "values": [1]}, "cols": {"field": %q, "values": [0]}}`,
		flatDealJSON, sensitivity.RentGrowth)
	resp2 := post(t, srv.URL+"/api/sensitivity", "application/json", bad)
	defer resp2.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp2.StatusCode)
}

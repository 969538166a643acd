package respond

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/llm"
	"dealdesk/pkg/core/research"
	"dealdesk/pkg/core/store"
	"dealdesk/pkg/core/waterfall"

	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, StatusFor(fmt.Errorf("wrap: %w", waterfall.ErrInvalidStructure)))
	assert.Equal(t, http.StatusBadRequest, StatusFor(&deal.ValidationError{}))
	assert.Equal(t, http.StatusNotFound, StatusFor(fmt.Errorf("%w: x", store.ErrNotFound)))
	assert.Equal(t, http.StatusServiceUnavailable, StatusFor(llm.ErrMissingAPIKey))
	assert.Equal(t, http.StatusBadGateway, StatusFor(research.ErrEmptyAnswer))
	assert.Equal(t, http.StatusInternalServerError, StatusFor(fmt.Errorf("disk on fire")))
}

func TestErrorIncludesFields(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, &deal.ValidationError{Fields: []deal.FieldError{{Field: "name", Message: "required"}}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error": `+fmt.Sprintf("%q", (&deal.ValidationError{Fields: []deal.FieldError{{Field: "name", Message: "required"}}}).Error())+`, "fields": [{"field": "name", "message": "required"}]}`, rec.Body.String())
}

func TestPreflight(t *testing.T) {
	cases := []struct {
		method string
		ok     bool
		code   int
	}{
		{http.MethodGet, true, http.StatusOK},
		{http.MethodDelete, true, http.StatusOK},
		{http.MethodOptions, false, http.StatusOK},
		{http.MethodPost, false, http.StatusMethodNotAllowed},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		ok := Preflight(rec, httptest.NewRequest(tc.method, "/x", nil), http.MethodGet, http.MethodDelete)
		assert.Equal(t, tc.ok, ok, tc.method)
		assert.Equal(t, tc.code, rec.Code, tc.method)
		assert.Equal(t, "GET, DELETE, OPTIONS", rec.Header().Get("Access-Control-Allow-Methods"))
	}
}

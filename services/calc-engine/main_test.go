package main

import (
	"testing"

	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/underwrite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const flatDeal = `{
  "name": "Flat",
  "property": {"type": "office"},
  "acquisition": {"purchase_price": 1000000},
  "operations": {"gross_potential_rent": 100000, "expense_ratio": 0.4},
  "exit": {"hold_years": 5, "exit_cap_rate": 0.06}
}`

func TestRunCalculate(t *testing.T) {
	out, err := run("calculate", []byte(flatDeal))
	require.NoError(t, err)
	rep, ok := out.(*underwrite.Report)
	require.True(t, ok)
	assert.InDelta(t, 60000, rep.Statement.NOI, 1e-6)
}

func TestRunCheck(t *testing.T) {
	out, err := run("check", []byte(flatDeal))
	require.NoError(t, err)
	assert.True(t, out.(checkResult).Valid)

	out, err = run("check", []byte(`{"name": "", "property": {"type": "office"}}`))
	require.NoError(t, err)
	res := out.(checkResult)
	assert.False(t, res.Valid)
	assert.NotEmpty(t, res.Fields)
}

func TestRunAmortize(t *testing.T) {
	out, err := run("amortize", []byte(`{"principal": 1200, "annual_rate": 0, "amortization_years": 1, "term_years": 1}`))
	require.NoError(t, err)
	sched := out.(debt.Schedule)
	assert.InDelta(t, 100, sched.AmortizingPayment, 1e-9)
}

func TestRunUnknownMode(t *testing.T) {
	_, err := run("explode", []byte(`{}`))
	assert.Error(t, err)
	_, err = run("calculate", []byte(`not json`))
	assert.Error(t, err)
}

package market

import (
	"net/http"

	"dealdesk/pkg/api/respond"
	core "dealdesk/pkg/core/market"
)

// ScoreRequest is a market snapshot with optional deal signals.
type ScoreRequest struct {
	Market  core.Data          `json:"market"`
	Deal    *core.DealSignals  `json:"deal,omitempty"`
	Weights map[string]float64 `json:"weights,omitempty"` // per-request overrides
}

type ScoreResponse struct {
	Market     core.MarketScore     `json:"market"`
	Investment core.InvestmentScore `json:"investment"`
}

type Handler struct {
	Weights core.Weights
}

func NewHandler(weights core.Weights) *Handler {
	if weights == nil {
		weights = core.DefaultWeights()
	}
	return &Handler{Weights: weights}
}

// HandleScore scores a market and, with deal signals, the investment.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	var req ScoreRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}
	weights := h.Weights
	if len(req.Weights) > 0 {
		known := core.DefaultWeights()
		for name := range req.Weights {
			if _, ok := known[name]; !ok {
				respond.BadRequest(w, "unknown market factor: "+name)
				return
			}
		}
		weights = weights.Merge(req.Weights)
	}

	ms := core.ScoreMarket(req.Market, weights)
	respond.JSON(w, http.StatusOK, ScoreResponse{
		Market:     ms,
		Investment: core.CalculateInvestmentScore(ms, req.Deal),
	})
}

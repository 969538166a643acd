// Package underwrite exposes the calculators over HTTP.
package underwrite

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"dealdesk/pkg/api/respond"
	"dealdesk/pkg/core/debt"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/logging"
	"dealdesk/pkg/core/sensitivity"
	core "dealdesk/pkg/core/underwrite"
	"dealdesk/pkg/core/waterfall"
)

// ErrNoStore is returned when persistence is requested but not configured.
var ErrNoStore = errors.New("report storage not configured")

// ReportStore persists reports.
type ReportStore interface {
	Save(ctx context.Context, rep *core.Report) error
	Load(ctx context.Context, id string) (*core.Report, error)
	List(ctx context.Context, limit int) ([]core.Summary, error)
}

// Handler holds dependencies for the underwriting endpoints.
type Handler struct {
	Engine  *core.Engine
	Reports ReportStore // optional
}

// NewHandler creates a handler. reports may be nil.
func NewHandler(engine *core.Engine, reports ReportStore) *Handler {
	if engine == nil {
		engine = core.NewEngine()
	}
	return &Handler{Engine: engine, Reports: reports}
}

// Register mounts the endpoints on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/underwrite", h.HandleUnderwrite)
	mux.HandleFunc("/api/underwrite/report", h.HandleReport)
	mux.HandleFunc("/api/amortize", h.HandleAmortize)
	mux.HandleFunc("/api/debt/size", h.HandleSizeLoan)
	mux.HandleFunc("/api/waterfall", h.HandleWaterfall)
	mux.HandleFunc("/api/sensitivity", h.HandleSensitivity)
}

// HandleUnderwrite runs a deal. The body is JSON, or YAML when the
// Content-Type says so. ?save=true persists the report.
func (h *Handler) HandleUnderwrite(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	d, err := decodeDeal(w, r)
	if err != nil {
		respond.Error(w, err)
		return
	}

	rep, err := h.Engine.Run(d)
	if err != nil {
		respond.Error(w, err)
		return
	}

	if save, _ := strconv.ParseBool(r.URL.Query().Get("save")); save {
		if h.Reports == nil {
			respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: ErrNoStore.Error()})
			return
		}
		if err := h.Reports.Save(r.Context(), rep); err != nil {
			respond.Error(w, err)
			return
		}
		logging.Named("api").Infow("report saved", "id", rep.ID, "deal", d.Name)
	}

	respond.JSON(w, http.StatusOK, rep)
}

func decodeDeal(w http.ResponseWriter, r *http.Request) (deal.Deal, error) {
	if strings.Contains(r.Header.Get("Content-Type"), "yaml") {
		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, respond.MaxBodyBytes))
		if err != nil {
			return deal.Deal{}, fmt.Errorf("%w: %v", deal.ErrInvalidDeal, err)
		}
		return deal.Parse(body)
	}
	var d deal.Deal
	if err := respond.Decode(w, r, &d); err != nil {
		return deal.Deal{}, fmt.Errorf("%w: %v", deal.ErrInvalidDeal, err)
	}
	return d, nil
}

// HandleReport returns one stored report by ?id=, or the newest summaries
// when no id is given.
func (h *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodGet) {
		return
	}
	if h.Reports == nil {
		respond.JSON(w, http.StatusServiceUnavailable, respond.ErrorBody{Error: ErrNoStore.Error()})
		return
	}

	id := r.URL.Query().Get("id")
	if id == "" {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := h.Reports.List(r.Context(), limit)
		if err != nil {
			respond.Error(w, err)
			return
		}
		respond.JSON(w, http.StatusOK, list)
		return
	}

	rep, err := h.Reports.Load(r.Context(), id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, rep)
}

// HandleAmortize returns the monthly schedule for a loan.
func (h *Handler) HandleAmortize(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}
	var loan debt.Loan
	if err := respond.Decode(w, r, &loan); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}
	sched, err := debt.Amortize(loan)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sched)
}

// HandleSizeLoan returns the maximum loan under LTV, DSCR and debt-yield
// constraints.
func (h *Handler) HandleSizeLoan(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}
	var in debt.SizingInput
	if err := respond.Decode(w, r, &in); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}
	res, err := debt.SizeLoan(in)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// WaterfallRequest is a structure plus the periodic cash to distribute.
type WaterfallRequest struct {
	Structure waterfall.Structure `json:"structure"`
	CashFlows []float64           `json:"cash_flows"`
}

// HandleWaterfall distributes cash through a partnership structure.
func (h *Handler) HandleWaterfall(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}
	var req WaterfallRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}
	res, err := waterfall.Distribute(req.Structure, req.CashFlows)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, res)
}

// SensitivityRequest flexes two inputs of a deal.
type SensitivityRequest struct {
	Deal deal.Deal        `json:"deal"`
	Rows sensitivity.Axis `json:"rows"`
	Cols sensitivity.Axis `json:"cols"`
}

// HandleSensitivity returns the return grid for two axes.
func (h *Handler) HandleSensitivity(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}
	var req SensitivityRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}
	if err := deal.Validate(req.Deal); err != nil {
		respond.Error(w, err)
		return
	}
	grid, err := sensitivity.Run(r.Context(), req.Deal, req.Rows, req.Cols)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, grid)
}

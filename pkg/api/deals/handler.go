// Package deals serves the extract and verify steps that turn an offering
// memorandum into an underwritable deal.
package deals

import (
	"net/http"

	"dealdesk/pkg/api/respond"
	"dealdesk/pkg/core/deal"
	"dealdesk/pkg/core/extract"
	"dealdesk/pkg/core/underwrite"
)

type ExtractResponse struct {
	Draft   *deal.Draft `json:"draft"`
	Missing []string    `json:"missing"`
}

type VerifyRequest struct {
	Draft        deal.Draft        `json:"draft"`
	Verification deal.Verification `json:"verification"`
	Underwrite   bool              `json:"underwrite,omitempty"` // also run the report
}

type VerifyResponse struct {
	Deal   deal.Deal          `json:"deal"`
	Report *underwrite.Report `json:"report,omitempty"`
}

type Handler struct {
	Extractor *extract.Extractor
	Engine    *underwrite.Engine
}

func NewHandler(ex *extract.Extractor, engine *underwrite.Engine) *Handler {
	if engine == nil {
		engine = underwrite.NewEngine()
	}
	return &Handler{Extractor: ex, Engine: engine}
}

// HandleExtract reads a document and returns the draft deal.
func (h *Handler) HandleExtract(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	var doc extract.Document
	if err := respond.Decode(w, r, &doc); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	draft, err := h.Extractor.Extract(r.Context(), doc)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ExtractResponse{Draft: draft, Missing: draft.Missing()})
}

// HandleVerify applies the user's edits and assumptions to a draft.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	var req VerifyRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	d, err := req.Draft.Apply(req.Verification)
	if err != nil {
		respond.Error(w, err)
		return
	}

	resp := VerifyResponse{Deal: d}
	if req.Underwrite {
		rep, err := h.Engine.Run(d)
		if err != nil {
			respond.Error(w, err)
			return
		}
		resp.Report = rep
	}
	respond.JSON(w, http.StatusOK, resp)
}

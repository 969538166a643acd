package research

import (
	"net/http"

	"dealdesk/pkg/api/respond"
	"dealdesk/pkg/core/market"
	core "dealdesk/pkg/core/research"
)

type ChatRequest struct {
	SessionID string       `json:"session_id,omitempty"`
	Message   string       `json:"message"`
	Market    *market.Data `json:"market,omitempty"`
}

// Handler serves the market-research chat.
type Handler struct {
	Service *core.Service
}

func NewHandler(svc *core.Service) *Handler {
	return &Handler{Service: svc}
}

// HandleChat runs one chat turn. Omit session_id to start a session.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	var req ChatRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	ans, err := h.Service.Ask(r.Context(), req.SessionID, req.Message, req.Market)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, ans)
}

// HandleSession returns a session transcript by ?id=, or drops it on DELETE.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodGet, http.MethodDelete) {
		return
	}
	id := r.URL.Query().Get("id")
	if r.Method == http.MethodDelete {
		if err := h.Service.Reset(id); err != nil {
			respond.Error(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	sess, err := h.Service.Session(id)
	if err != nil {
		respond.Error(w, err)
		return
	}
	respond.JSON(w, http.StatusOK, sess)
}

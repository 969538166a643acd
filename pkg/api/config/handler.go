package config

import (
	"net/http"

	"dealdesk/pkg/api/respond"
	"dealdesk/pkg/core/agent"
	"dealdesk/pkg/core/prompt"
)

type Response struct {
	ActiveProvider string   `json:"active_provider"`
	Available      []string `json:"available"`
	Prompts        []string `json:"prompts"`
}

type SwitchRequest struct {
	Provider string `json:"provider"`
}

// Handler holds dependencies for config endpoints
type Handler struct {
	AgentMgr *agent.Manager
	Prompts  *prompt.Registry // nil uses the global registry
}

// NewHandler creates a new config handler
func NewHandler(agentMgr *agent.Manager) *Handler {
	return &Handler{
		AgentMgr: agentMgr,
	}
}

func (h *Handler) HandleConfig(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodGet) {
		return
	}
	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) HandleSwitch(w http.ResponseWriter, r *http.Request) {
	if !respond.Preflight(w, r, http.MethodPost) {
		return
	}

	var req SwitchRequest
	if err := respond.Decode(w, r, &req); err != nil {
		respond.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.AgentMgr.SetGlobalProvider(req.Provider); err != nil {
		respond.BadRequest(w, err.Error())
		return
	}
	respond.JSON(w, http.StatusOK, h.current())
}

func (h *Handler) current() Response {
	reg := h.Prompts
	if reg == nil {
		reg = prompt.Get()
	}
	return Response{
		ActiveProvider: h.AgentMgr.GetActiveProvider(),
		Available:      h.AgentMgr.Providers(),
		Prompts:        reg.ListPrompts(),
	}
}

package handler

import (
	"casepilot/internal/service"
	"net/http"

	"github.com/gorilla/mux"
)

// CaseHandler handles the consultant dashboard's case endpoints
type CaseHandler struct {
	caseSvc *service.CaseService
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(caseSvc *service.CaseService) *CaseHandler {
	return &CaseHandler{caseSvc: caseSvc}
}

// List handles GET /v1/cases
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	cases, err := h.caseSvc.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"cases": cases})
}

// Get handles GET /v1/cases/{caseId}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["caseId"]

	bc, err := h.caseSvc.Get(r.Context(), caseID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bc)
}

// Resend handles POST /v1/cases/{caseId}/resend
func (h *CaseHandler) Resend(w http.ResponseWriter, r *http.Request) {
	caseID := mux.Vars(r)["caseId"]

	messageID, err := h.caseSvc.Resend(r.Context(), caseID)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"messageId": messageID})
}

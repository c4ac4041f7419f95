package handler

import (
	"casepilot/internal/model"
	"casepilot/internal/service"
	"encoding/json"
	"net/http"
)

// EvaluateHandler handles synchronous answer-quality evaluation
type EvaluateHandler struct {
	evalSvc *service.EvaluatorService
}

// NewEvaluateHandler creates a new evaluate handler
func NewEvaluateHandler(evalSvc *service.EvaluatorService) *EvaluateHandler {
	return &EvaluateHandler{evalSvc: evalSvc}
}

// Evaluate handles POST /v1/evaluate. It never fails on the AI path; the
// worst case is a baseline-only result.
func (h *EvaluateHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var req model.EvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Field == "" && req.MinChars <= 0 {
		writeError(w, http.StatusBadRequest, "field or minChars required")
		return
	}

	result := h.evalSvc.Evaluate(r.Context(), &req)
	writeJSON(w, http.StatusOK, result)
}

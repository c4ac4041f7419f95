package handler

import (
	"casepilot/internal/model"
	"casepilot/internal/service"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
)

// DraftHandler handles the intake draft endpoints
type DraftHandler struct {
	draftSvc *service.DraftService
}

// NewDraftHandler creates a new draft handler
func NewDraftHandler(draftSvc *service.DraftService) *DraftHandler {
	return &DraftHandler{draftSvc: draftSvc}
}

// Create handles POST /v1/draft/create
func (h *DraftHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftSvc.Create(r.Context(), req.Name, req.Email, req.Data)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, model.CreateDraftResponse{
		ID:          draft.ID,
		ResumeToken: draft.ResumeToken,
	})
}

// Save handles PUT /v1/draft/save
func (h *DraftHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req model.SaveDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	draft, err := h.draftSvc.Save(r.Context(), req.DraftID, req.Step, req.Data)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"draft": draft})
}

// Resume handles GET /v1/draft/resume/{token}
func (h *DraftHandler) Resume(w http.ResponseWriter, r *http.Request) {
	token := mux.Vars(r)["token"]

	draft, err := h.draftSvc.Resume(r.Context(), token)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"draft": draft})
}

// SendResumeLink handles POST /v1/draft/send-resume-link
func (h *DraftHandler) SendResumeLink(w http.ResponseWriter, r *http.Request) {
	var req model.SendResumeLinkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	messageID, err := h.draftSvc.SendResumeLink(r.Context(), req.DraftID, req.Email)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"messageId": messageID})
}

// Finalize handles POST /v1/draft/finalize
func (h *DraftHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	var req model.FinalizeDraftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	bc, err := h.draftSvc.Finalize(r.Context(), req.DraftID, req.Data)
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"case": bc})
}

// Abandon handles DELETE /v1/draft/{draftId}
func (h *DraftHandler) Abandon(w http.ResponseWriter, r *http.Request) {
	draftID := mux.Vars(r)["draftId"]

	if err := h.draftSvc.Abandon(r.Context(), draftID); err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// ListOpen handles GET /v1/drafts (consultant only)
func (h *DraftHandler) ListOpen(w http.ResponseWriter, r *http.Request) {
	drafts, err := h.draftSvc.ListOpen(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"drafts": drafts})
}

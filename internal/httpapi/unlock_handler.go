package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"unlockpro/internal/unlock"
)

type UnlockHandler struct {
	unlock UnlockService
	forms  FormService
	logger *zap.Logger
}

func NewUnlockHandler(unlockService UnlockService, forms FormService, logger *zap.Logger) *UnlockHandler {
	return &UnlockHandler{
		unlock: unlockService,
		forms:  forms,
		logger: logger,
	}
}

type unlockRequest struct {
	Model   string `json:"model"`
	Service string `json:"service"`
	IMEI    string `json:"imei"`
	Email   string `json:"email"`
}

type restartResponse struct {
	Flow unlock.Snapshot `json:"flow"`
	// RestartForm tells the page to reset the unlock form.
	RestartForm bool `json:"restart_form"`
}

func (h *UnlockHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req unlockRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFormBytes)).Decode(&req); err != nil {
		writeBadRequest(w, "invalid json body")
		return
	}

	snap, errs, err := h.unlock.Start(r.Context(), unlock.Request{
		Model:   req.Model,
		Service: req.Service,
		IMEI:    req.IMEI,
		Email:   req.Email,
		Channel: unlock.ChannelWeb,
	})
	if err != nil {
		h.writeFlowError(w, "", err)
		return
	}
	if !errs.Empty() {
		writeValidation(w, errs)
		return
	}

	if h.forms != nil {
		h.forms.RecordUnlock(r.Context(), snap)
	}

	Write(w, http.StatusAccepted, snap)
}

func (h *UnlockHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.unlock.Get(id)
	if err != nil {
		h.writeFlowError(w, id, err)
		return
	}
	Write(w, http.StatusOK, snap)
}

func (h *UnlockHandler) Check(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.unlock.Check(id)
	if err != nil {
		h.writeFlowError(w, id, err)
		return
	}
	Write(w, http.StatusOK, snap)
}

func (h *UnlockHandler) Restart(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.unlock.Restart(id)
	if err != nil {
		h.writeFlowError(w, id, err)
		return
	}
	Write(w, http.StatusOK, restartResponse{Flow: snap, RestartForm: true})
}

func (h *UnlockHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	snap, err := h.unlock.Cancel(id)
	if err != nil {
		h.writeFlowError(w, id, err)
		return
	}
	Write(w, http.StatusOK, snap)
}

func (h *UnlockHandler) writeFlowError(w http.ResponseWriter, id string, err error) {
	switch {
	case errors.Is(err, unlock.ErrNotFound):
		Write(w, http.StatusNotFound, APIError{
			Code:    "FLOW_NOT_FOUND",
			Message: "unlock session not found or already closed",
		})
	case errors.Is(err, unlock.ErrInvalidStage):
		Write(w, http.StatusConflict, APIError{
			Code:    "INVALID_STAGE",
			Message: "this action is not available right now",
		})
	default:
		h.logger.Error("Unlock flow request failed",
			zap.String("flow_id", id),
			zap.Error(err))
		Write(w, http.StatusInternalServerError, APIError{
			Code:    "INTERNAL",
			Message: "internal error",
		})
	}
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/hcardin/mesada/internal/store"
	"github.com/hcardin/mesada/internal/websocket"
)

type ConversionHandler struct {
	conversions *store.ConversionStore
	hub         *websocket.Hub
	logger      *slog.Logger
}

func NewConversionHandler(cs *store.ConversionStore, hub *websocket.Hub, logger *slog.Logger) *ConversionHandler {
	return &ConversionHandler{conversions: cs, hub: hub, logger: logger}
}

func (h *ConversionHandler) Get(w http.ResponseWriter, r *http.Request) {
	conv, err := h.conversions.Get()
	if err != nil {
		h.logger.Error("get conversion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to get conversion")
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

type setConversionRequest struct {
	MoneyPerPoint float64 `json:"money_per_point"`
	HoursPerPoint float64 `json:"hours_per_point"`
}

func (h *ConversionHandler) Set(w http.ResponseWriter, r *http.Request) {
	var req setConversionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if req.MoneyPerPoint <= 0 || req.HoursPerPoint <= 0 {
		writeError(w, http.StatusBadRequest, "conversion factors must be positive")
		return
	}

	conv, err := h.conversions.Set(req.MoneyPerPoint, req.HoursPerPoint)
	if err != nil {
		h.logger.Error("set conversion", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to set conversion")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("conversion", "updated", conv.ID))
	writeJSON(w, http.StatusOK, conv)
}

package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/ledger"
	"github.com/hcardin/mesada/internal/model"
	"github.com/hcardin/mesada/internal/policy"
	"github.com/hcardin/mesada/internal/store"
	"github.com/hcardin/mesada/internal/websocket"
)

type DebitHandler struct {
	debits *store.DebitStore
	users  *store.UserStore
	calc   *ledger.Calculator
	hub    *websocket.Hub
	logger *slog.Logger

	// clampDebits rejects debits that would push a balance below zero.
	clampDebits bool
}

func NewDebitHandler(ds *store.DebitStore, us *store.UserStore, calc *ledger.Calculator, hub *websocket.Hub, logger *slog.Logger, clampDebits bool) *DebitHandler {
	return &DebitHandler{debits: ds, users: us, calc: calc, hub: hub, logger: logger, clampDebits: clampDebits}
}

type createDebitRequest struct {
	UserID      int64    `json:"user_id"`
	Points      int      `json:"points_deducted"`
	MoneyAmount *float64 `json:"money_amount"`
	HoursAmount *float64 `json:"hours_amount"`
	Reason      string   `json:"reason"`
}

// Create records a spend against a user's balance. Validators may debit
// anyone; children only themselves. A reason is always required.
func (h *DebitHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createDebitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}

	req.Reason = strings.TrimSpace(req.Reason)
	if req.Reason == "" {
		writeError(w, http.StatusBadRequest, "reason is required")
		return
	}
	if req.Points < 0 {
		writeError(w, http.StatusBadRequest, "points_deducted cannot be negative")
		return
	}
	if req.MoneyAmount != nil && *req.MoneyAmount < 0 {
		writeError(w, http.StatusBadRequest, "money_amount cannot be negative")
		return
	}
	if req.HoursAmount != nil && *req.HoursAmount < 0 {
		writeError(w, http.StatusBadRequest, "hours_amount cannot be negative")
		return
	}
	if req.Points == 0 && req.MoneyAmount == nil && req.HoursAmount == nil {
		writeError(w, http.StatusBadRequest, "debit must deduct points, money or hours")
		return
	}

	ac, _ := auth.FromContext(r.Context())
	if !policy.CanDebit(ac.Roles, ac.UserID, req.UserID) {
		writeError(w, http.StatusForbidden, "cannot debit another user")
		return
	}

	target, err := h.users.GetByID(req.UserID)
	if err != nil {
		h.logger.Error("get debit target", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create debit")
		return
	}
	if target == nil {
		writeError(w, http.StatusBadRequest, "user not found")
		return
	}

	if h.clampDebits {
		balance, err := h.calc.Balance(req.UserID)
		if err != nil {
			h.logger.Error("check balance", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to create debit")
			return
		}
		if req.MoneyAmount != nil && *req.MoneyAmount > balance.BalanceMoney {
			writeError(w, http.StatusUnprocessableEntity, "debit exceeds available money balance")
			return
		}
		if req.HoursAmount != nil && *req.HoursAmount > balance.BalanceHours {
			writeError(w, http.StatusUnprocessableEntity, "debit exceeds available hours balance")
			return
		}
	}

	debit, err := h.debits.Create(req.UserID, req.Points, req.MoneyAmount, req.HoursAmount, req.Reason, ac.UserID)
	if err != nil {
		h.logger.Error("create debit", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to create debit")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("debit", "created", debit.ID))
	writeJSON(w, http.StatusCreated, debit)
}

// List returns debits newest first, with an optional ?user_id filter. Users
// without the validator role only see their own.
func (h *DebitHandler) List(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	var userID *int64
	if !ac.Roles.Has(model.RoleValidator) {
		userID = &ac.UserID
	} else if raw := r.URL.Query().Get("user_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid user_id")
			return
		}
		userID = &id
	}

	debits, err := h.debits.List(userID)
	if err != nil {
		h.logger.Error("list debits", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to list debits")
		return
	}
	if debits == nil {
		debits = []model.Debit{}
	}
	writeJSON(w, http.StatusOK, debits)
}

func (h *DebitHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid debit id")
		return
	}

	deleted, err := h.debits.Delete(id)
	if err != nil {
		h.logger.Error("delete debit", "error", err, "debit_id", id)
		writeError(w, http.StatusInternalServerError, "failed to delete debit")
		return
	}
	if !deleted {
		writeError(w, http.StatusNotFound, "debit not found")
		return
	}

	h.hub.Broadcast(websocket.EntityChange("debit", "deleted", id))
	w.WriteHeader(http.StatusNoContent)
}

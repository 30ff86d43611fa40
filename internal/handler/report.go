package handler

import (
	"log/slog"
	"net/http"

	"github.com/hcardin/mesada/internal/auth"
	"github.com/hcardin/mesada/internal/ledger"
	"github.com/hcardin/mesada/internal/model"
)

type ReportHandler struct {
	calc   *ledger.Calculator
	logger *slog.Logger
}

func NewReportHandler(calc *ledger.Calculator, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{calc: calc, logger: logger}
}

// Get returns balance rows. Validators see every user; everyone else gets a
// single row for their own balance.
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	ac, _ := auth.FromContext(r.Context())

	if !ac.Roles.Has(model.RoleValidator) {
		row, err := h.calc.Balance(ac.UserID)
		if err != nil {
			h.logger.Error("balance", "error", err)
			writeError(w, http.StatusInternalServerError, "failed to build report")
			return
		}
		if row == nil {
			writeError(w, http.StatusNotFound, "user not found")
			return
		}
		writeJSON(w, http.StatusOK, []model.BalanceReport{*row})
		return
	}

	report, err := h.calc.Report()
	if err != nil {
		h.logger.Error("report", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}
	if report == nil {
		report = []model.BalanceReport{}
	}
	writeJSON(w, http.StatusOK, report)
}

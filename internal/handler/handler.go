package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/lending-office/backoffice/internal/engine"
	"github.com/lending-office/backoffice/internal/service"
)

type Handler struct {
	svc *service.Service
}

func NewHandler(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// NPAReport serves the portfolio asset-classification report
func (h *Handler) NPAReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, h.svc.NPAReport)
}

// ExposureReport serves the product-wise exposure report
func (h *Handler) ExposureReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, h.svc.ExposureReport)
}

// LiquidityReport serves the liquidity gap statement
func (h *Handler) LiquidityReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, h.svc.LiquidityReport)
}

// RebalancingReport serves the collateral rebalancing report
func (h *Handler) RebalancingReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, h.svc.RebalancingReport)
}

// ForecastReport serves the collections forecast
func (h *Handler) ForecastReport(w http.ResponseWriter, r *http.Request) {
	h.serveReport(w, h.svc.ForecastReport)
}

// LoanSchedule serves one loan's amortization schedule
func (h *Handler) LoanSchedule(w http.ResponseWriter, r *http.Request) {
	loanID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid loan id", http.StatusBadRequest)
		return
	}
	report, err := h.svc.LoanScheduleReport(time.Now(), loanID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func (h *Handler) serveReport(w http.ResponseWriter, run func(time.Time) (*engine.Report, error)) {
	report, err := run(time.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, report)
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, engine.ErrInvalidLoanTerms) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}

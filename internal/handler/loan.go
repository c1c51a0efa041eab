package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/ysekkat/payroll-engine/internal/domain"
	"github.com/ysekkat/payroll-engine/internal/service"
	"github.com/ysekkat/payroll-engine/pkg/response"
)

type LoanHandler struct {
	service   *service.LoanService
	validator *validator.Validate
}

func NewLoanHandler(loanService *service.LoanService) *LoanHandler {
	return &LoanHandler{
		service:   loanService,
		validator: validator.New(),
	}
}

// CreateLoan handles POST /api/v1/loans
func (h *LoanHandler) CreateLoan(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	loan, schedule, err := h.service.CreateLoan(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: loan, Schedule: schedule})
}

// CreateAdvance handles POST /api/v1/advances
func (h *LoanHandler) CreateAdvance(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateAdvanceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	advance, schedule, err := h.service.CreateAdvance(r.Context(), &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, domain.CreateLoanResponse{Loan: advance, Schedule: schedule})
}

// GetSchedule handles GET /api/v1/loans/{loanId}/schedule
func (h *LoanHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	schedule, err := h.service.GetSchedule(r.Context(), loanID)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, domain.ScheduleResponse{LoanID: loanID, Schedule: schedule})
}

// RecordPayment handles POST /api/v1/installments/{installmentId}/payment
func (h *LoanHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	installmentID := mux.Vars(r)["installmentId"]

	var req domain.RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	result, err := h.service.RecordPayment(r.Context(), installmentID, &req)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, result)
}

// GetProgress handles GET /api/v1/loans/{loanId}/progress, with an optional
// as_of=YYYY-MM-DD query parameter defaulting to today.
func (h *LoanHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	loanID := mux.Vars(r)["loanId"]

	asOf := time.Now().UTC()
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			response.BadRequest(w, "as_of must be formatted YYYY-MM-DD", err)
			return
		}
		asOf = parsed
	}

	progress, err := h.service.GetProgress(r.Context(), loanID, asOf)
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, progress)
}

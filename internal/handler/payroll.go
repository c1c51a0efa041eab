package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/ysekkat/payroll-engine/internal/domain"
	"github.com/ysekkat/payroll-engine/internal/service"
	"github.com/ysekkat/payroll-engine/pkg/response"
)

type PayrollHandler struct {
	service   *service.PayrollService
	validator *validator.Validate
}

func NewPayrollHandler(payrollService *service.PayrollService) *PayrollHandler {
	return &PayrollHandler{
		service:   payrollService,
		validator: validator.New(),
	}
}

type payslipRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Month      int    `json:"month" validate:"required,gte=1,lte=12"`
	Year       int    `json:"year" validate:"required,gte=2000"`
}

type runPayrollRequest struct {
	Month int `json:"month" validate:"required,gte=1,lte=12"`
	Year  int `json:"year" validate:"required,gte=2000"`
}

// ComputePayslip handles POST /api/v1/payslips/compute
func (h *PayrollHandler) ComputePayslip(w http.ResponseWriter, r *http.Request) {
	var req payslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	payslip, err := h.service.ComputePayslip(r.Context(), req.EmployeeID, domain.NewPeriod(req.Month, req.Year))
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payslip)
}

// CorrectPayslip handles POST /api/v1/payslips/correct
func (h *PayrollHandler) CorrectPayslip(w http.ResponseWriter, r *http.Request) {
	var req payslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	payslip, err := h.service.CorrectPayslip(r.Context(), req.EmployeeID, domain.NewPeriod(req.Month, req.Year))
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Created(w, payslip)
}

// FinalizePayslip handles POST /api/v1/payslips/finalize
func (h *PayrollHandler) FinalizePayslip(w http.ResponseWriter, r *http.Request) {
	var req payslipRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	payslip, err := h.service.FinalizePayslip(r.Context(), req.EmployeeID, domain.NewPeriod(req.Month, req.Year))
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, payslip)
}

// RunPayroll handles POST /api/v1/payroll/runs
func (h *PayrollHandler) RunPayroll(w http.ResponseWriter, r *http.Request) {
	var req runPayrollRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body", err)
		return
	}
	if err := h.validator.Struct(&req); err != nil {
		response.BadRequest(w, "invalid request", err)
		return
	}

	report, err := h.service.RunPayroll(r.Context(), domain.NewPeriod(req.Month, req.Year))
	if err != nil {
		response.BusinessError(w, err)
		return
	}

	response.Success(w, report)
}

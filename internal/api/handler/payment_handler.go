package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/response"
)

// PaymentHandler payment HTTP handlers
type PaymentHandler struct {
	paymentSvc service.PaymentService
}

// NewPaymentHandler creates a PaymentHandler
func NewPaymentHandler(paymentSvc service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// ListPayments
// GET /api/v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.paymentSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetPayment
// GET /api/v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

// CreatePayment
// POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.Created(c, payment)
}

// UpdatePayment
// PUT /api/v1/payments/:id
func (h *PaymentHandler) UpdatePayment(c *gin.Context) {
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	payment, err := h.paymentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

// DeletePayment
// DELETE /api/v1/payments/:id
func (h *PaymentHandler) DeletePayment(c *gin.Context) {
	if err := h.paymentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, nil)
}

// Act runs confirm, mark_paid, cancel, reset_draft or generate_invoice
// POST /api/v1/payments/:id/actions/:action
func (h *PaymentHandler) Act(c *gin.Context) {
	payment, err := h.paymentSvc.Act(c.Request.Context(), c.Param("id"), workflow.PaymentAction(c.Param("action")), callerID(c))
	if err != nil {
		h.handlePaymentError(c, err)
		return
	}

	response.OK(c, payment)
}

func (h *PaymentHandler) handlePaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentNotFound):
		response.NotFound(c, 17001, "payment not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 17002, "student not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 17003, "application not found")
	case errors.Is(err, service.ErrPaymentStudentMismatch):
		response.BadRequest(c, 17004, "the application belongs to a different student")
	case errors.Is(err, service.ErrNameTaken):
		response.BadRequest(c, 17005, "this number is already in use")
	case errors.Is(err, workflow.ErrInvoiceExists):
		response.Conflict(c, 17006, "Invoice already exists")
	case errors.Is(err, workflow.ErrUnknownAction):
		response.BadRequest(c, 17007, "unknown action")
	default:
		respondError(c, 17000, err)
	}
}

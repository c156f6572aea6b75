package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/response"
)

// InvoiceHandler invoice and invoice line HTTP handlers
type InvoiceHandler struct {
	invoiceSvc service.InvoiceService
}

// NewInvoiceHandler creates an InvoiceHandler
func NewInvoiceHandler(invoiceSvc service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoiceSvc: invoiceSvc}
}

// ListInvoices
// GET /api/v1/invoices
func (h *InvoiceHandler) ListInvoices(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.invoiceSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetInvoice returns the invoice with its lines
// GET /api/v1/invoices/:id
func (h *InvoiceHandler) GetInvoice(c *gin.Context) {
	inv, err := h.invoiceSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

// CreateInvoice
// POST /api/v1/invoices
func (h *InvoiceHandler) CreateInvoice(c *gin.Context) {
	var req dto.CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	inv, err := h.invoiceSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.Created(c, inv)
}

// UpdateInvoice header fields only; lines have their own endpoints
// PUT /api/v1/invoices/:id
func (h *InvoiceHandler) UpdateInvoice(c *gin.Context) {
	var req dto.UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	inv, err := h.invoiceSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

// DeleteInvoice unlinks any payment that referenced the invoice
// DELETE /api/v1/invoices/:id
func (h *InvoiceHandler) DeleteInvoice(c *gin.Context) {
	if err := h.invoiceSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── lines ──

// AddLine
// POST /api/v1/invoices/:id/lines
func (h *InvoiceHandler) AddLine(c *gin.Context) {
	var req dto.InvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	inv, err := h.invoiceSvc.AddLine(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

// UpdateLine
// PUT /api/v1/invoices/:id/lines/:line_id
func (h *InvoiceHandler) UpdateLine(c *gin.Context) {
	var req dto.InvoiceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	inv, err := h.invoiceSvc.UpdateLine(c.Request.Context(), c.Param("id"), c.Param("line_id"), &req, callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

// RemoveLine
// DELETE /api/v1/invoices/:id/lines/:line_id
func (h *InvoiceHandler) RemoveLine(c *gin.Context) {
	inv, err := h.invoiceSvc.RemoveLine(c.Request.Context(), c.Param("id"), c.Param("line_id"), callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

// Act runs send, mark_paid, cancel or reset_draft
// POST /api/v1/invoices/:id/actions/:action
func (h *InvoiceHandler) Act(c *gin.Context) {
	inv, err := h.invoiceSvc.Act(c.Request.Context(), c.Param("id"), workflow.InvoiceAction(c.Param("action")), callerID(c))
	if err != nil {
		h.handleInvoiceError(c, err)
		return
	}

	response.OK(c, inv)
}

func (h *InvoiceHandler) handleInvoiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		response.NotFound(c, 18001, "invoice not found")
	case errors.Is(err, service.ErrInvoiceLineNotFound):
		response.NotFound(c, 18002, "invoice line not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 18003, "student not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 18004, "application not found")
	case errors.Is(err, workflow.ErrInvoiceNotDraft):
		response.Conflict(c, 18005, "invoice lines can only be changed while the invoice is a draft")
	case errors.Is(err, workflow.ErrUnknownAction):
		response.BadRequest(c, 18006, "unknown action")
	default:
		respondError(c, 18000, err)
	}
}

package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/response"
)

// ConsultantHandler consultant HTTP handlers
type ConsultantHandler struct {
	consultantSvc service.ConsultantService
}

// NewConsultantHandler creates a ConsultantHandler
func NewConsultantHandler(consultantSvc service.ConsultantService) *ConsultantHandler {
	return &ConsultantHandler{consultantSvc: consultantSvc}
}

// ListConsultants
// GET /api/v1/consultants
func (h *ConsultantHandler) ListConsultants(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.consultantSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleConsultantError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetConsultant returns the consultant with their success rate
// GET /api/v1/consultants/:id
func (h *ConsultantHandler) GetConsultant(c *gin.Context) {
	consultant, err := h.consultantSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleConsultantError(c, err)
		return
	}

	response.OK(c, consultant)
}

// CreateConsultant
// POST /api/v1/consultants
func (h *ConsultantHandler) CreateConsultant(c *gin.Context) {
	var req dto.ConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	consultant, err := h.consultantSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleConsultantError(c, err)
		return
	}

	response.Created(c, consultant)
}

// UpdateConsultant
// PUT /api/v1/consultants/:id
func (h *ConsultantHandler) UpdateConsultant(c *gin.Context) {
	var req dto.ConsultantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	consultant, err := h.consultantSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleConsultantError(c, err)
		return
	}

	response.OK(c, consultant)
}

// DeleteConsultant
// DELETE /api/v1/consultants/:id
func (h *ConsultantHandler) DeleteConsultant(c *gin.Context) {
	if err := h.consultantSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleConsultantError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *ConsultantHandler) handleConsultantError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrConsultantNotFound):
		response.NotFound(c, 14001, "consultant not found")
	case errors.Is(err, service.ErrJoiningDateFuture):
		response.BadRequest(c, 14002, "joining date cannot be in the future")
	default:
		respondError(c, 14000, err)
	}
}

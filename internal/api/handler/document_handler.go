package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/response"
)

// DocumentHandler document HTTP handlers
type DocumentHandler struct {
	docSvc service.DocumentService
}

// NewDocumentHandler creates a DocumentHandler
func NewDocumentHandler(docSvc service.DocumentService) *DocumentHandler {
	return &DocumentHandler{docSvc: docSvc}
}

// ListDocuments
// GET /api/v1/documents
func (h *DocumentHandler) ListDocuments(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.docSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetDocument
// GET /api/v1/documents/:id
func (h *DocumentHandler) GetDocument(c *gin.Context) {
	doc, err := h.docSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

// CreateDocument
// POST /api/v1/documents
func (h *DocumentHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	doc, err := h.docSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.Created(c, doc)
}

// UpdateDocument
// PUT /api/v1/documents/:id
func (h *DocumentHandler) UpdateDocument(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	doc, err := h.docSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

// DeleteDocument
// DELETE /api/v1/documents/:id
func (h *DocumentHandler) DeleteDocument(c *gin.Context) {
	if err := h.docSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, nil)
}

// Act runs receive, verify, reject or reset
// POST /api/v1/documents/:id/actions/:action
func (h *DocumentHandler) Act(c *gin.Context) {
	doc, err := h.docSvc.Act(c.Request.Context(), c.Param("id"), workflow.DocumentAction(c.Param("action")), callerID(c))
	if err != nil {
		h.handleDocumentError(c, err)
		return
	}

	response.OK(c, doc)
}

func (h *DocumentHandler) handleDocumentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDocumentNotFound):
		response.NotFound(c, 16001, "document not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 16002, "student not found")
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 16003, "application not found")
	case errors.Is(err, service.ErrDocumentStudentMismatch):
		response.BadRequest(c, 16004, "the application belongs to a different student")
	case errors.Is(err, workflow.ErrUnknownAction):
		response.BadRequest(c, 16005, "unknown action")
	default:
		respondError(c, 16000, err)
	}
}

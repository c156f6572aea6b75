package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/response"
)

// ApplicationHandler application HTTP handlers, including lifecycle actions
type ApplicationHandler struct {
	appSvc service.ApplicationService
}

// NewApplicationHandler creates an ApplicationHandler
func NewApplicationHandler(appSvc service.ApplicationService) *ApplicationHandler {
	return &ApplicationHandler{appSvc: appSvc}
}

// ListApplications
// GET /api/v1/applications
func (h *ApplicationHandler) ListApplications(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.appSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetApplication
// GET /api/v1/applications/:id
func (h *ApplicationHandler) GetApplication(c *gin.Context) {
	app, err := h.appSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// CreateApplication draws the next application number unless one is supplied
// POST /api/v1/applications
func (h *ApplicationHandler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	app, err := h.appSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, app)
}

// UpdateApplication
// PUT /api/v1/applications/:id
func (h *ApplicationHandler) UpdateApplication(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	app, err := h.appSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

// DeleteApplication
// DELETE /api/v1/applications/:id
func (h *ApplicationHandler) DeleteApplication(c *gin.Context) {
	if err := h.appSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, nil)
}

// DuplicateApplication
// POST /api/v1/applications/:id/duplicate
func (h *ApplicationHandler) DuplicateApplication(c *gin.Context) {
	app, err := h.appSvc.Duplicate(c.Request.Context(), c.Param("id"), callerID(c))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.Created(c, app)
}

// Act runs one lifecycle action (submit, verify_documents, ..., set_draft)
// POST /api/v1/applications/:id/actions/:action
func (h *ApplicationHandler) Act(c *gin.Context) {
	app, err := h.appSvc.Act(c.Request.Context(), c.Param("id"), workflow.ApplicationAction(c.Param("action")), callerID(c))
	if err != nil {
		h.handleApplicationError(c, err)
		return
	}

	response.OK(c, app)
}

func (h *ApplicationHandler) handleApplicationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrApplicationNotFound):
		response.NotFound(c, 15001, "application not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 15002, "student not found")
	case errors.Is(err, service.ErrUniversityNotFound):
		response.NotFound(c, 15003, "university not found")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 15004, "course not found")
	case errors.Is(err, service.ErrConsultantNotFound):
		response.NotFound(c, 15005, "consultant not found")
	case errors.Is(err, service.ErrCourseMismatch):
		response.BadRequest(c, 15006, "course does not belong to the selected university")
	case errors.Is(err, service.ErrNameTaken):
		response.BadRequest(c, 15007, "this number is already in use")
	case errors.Is(err, workflow.ErrNoDocuments):
		response.Conflict(c, 15008, "add documents before submitting the application")
	case errors.Is(err, workflow.ErrDocumentsNotVerified):
		response.Conflict(c, 15009, "verify all documents before proceeding")
	case errors.Is(err, workflow.ErrUnknownAction):
		response.BadRequest(c, 15010, "unknown action")
	default:
		respondError(c, 15000, err)
	}
}

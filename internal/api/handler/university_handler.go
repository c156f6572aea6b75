package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/response"
)

// UniversityHandler university and course HTTP handlers
type UniversityHandler struct {
	uniSvc service.UniversityService
}

// NewUniversityHandler creates a UniversityHandler
func NewUniversityHandler(uniSvc service.UniversityService) *UniversityHandler {
	return &UniversityHandler{uniSvc: uniSvc}
}

// ListUniversities
// GET /api/v1/universities
func (h *UniversityHandler) ListUniversities(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.uniSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetUniversity
// GET /api/v1/universities/:id
func (h *UniversityHandler) GetUniversity(c *gin.Context) {
	uni, err := h.uniSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, uni)
}

// CreateUniversity
// POST /api/v1/universities
func (h *UniversityHandler) CreateUniversity(c *gin.Context) {
	var req dto.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	uni, err := h.uniSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.Created(c, uni)
}

// UpdateUniversity
// PUT /api/v1/universities/:id
func (h *UniversityHandler) UpdateUniversity(c *gin.Context) {
	var req dto.UniversityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	uni, err := h.uniSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, uni)
}

// DeleteUniversity refuses while applications still point at the university
// DELETE /api/v1/universities/:id
func (h *UniversityHandler) DeleteUniversity(c *gin.Context) {
	if err := h.uniSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, nil)
}

// ── courses ──

// ListCourses
// GET /api/v1/universities/:id/courses
func (h *UniversityHandler) ListCourses(c *gin.Context) {
	courses, err := h.uniSvc.ListCourses(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, gin.H{"list": courses})
}

// CreateCourse
// POST /api/v1/universities/:id/courses
func (h *UniversityHandler) CreateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	course, err := h.uniSvc.CreateCourse(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.Created(c, course)
}

// UpdateCourse
// PUT /api/v1/courses/:id
func (h *UniversityHandler) UpdateCourse(c *gin.Context) {
	var req dto.CourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	course, err := h.uniSvc.UpdateCourse(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, course)
}

// DeleteCourse
// DELETE /api/v1/courses/:id
func (h *UniversityHandler) DeleteCourse(c *gin.Context) {
	if err := h.uniSvc.DeleteCourse(c.Request.Context(), c.Param("id")); err != nil {
		h.handleUniversityError(c, err)
		return
	}

	response.OK(c, nil)
}

func (h *UniversityHandler) handleUniversityError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrUniversityNotFound):
		response.NotFound(c, 13001, "university not found")
	case errors.Is(err, service.ErrCourseNotFound):
		response.NotFound(c, 13002, "course not found")
	case errors.Is(err, service.ErrUniversityInUse):
		response.BadRequest(c, 13003, "university still has applications")
	case errors.Is(err, service.ErrTuitionRange):
		response.BadRequest(c, 13004, "minimum tuition fee exceeds the maximum")
	default:
		respondError(c, 13000, err)
	}
}

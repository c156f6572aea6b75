package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	"visa-consultancy/backend/pkg/response"
)

// StudentHandler student HTTP handlers
type StudentHandler struct {
	studentSvc service.StudentService
}

// NewStudentHandler creates a StudentHandler
func NewStudentHandler(studentSvc service.StudentService) *StudentHandler {
	return &StudentHandler{studentSvc: studentSvc}
}

// ListStudents
// GET /api/v1/students
func (h *StudentHandler) ListStudents(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), &q)
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetPageSize())
}

// GetStudent
// GET /api/v1/students/:id
func (h *StudentHandler) GetStudent(c *gin.Context) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent
// POST /api/v1/students
func (h *StudentHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent
// PUT /api/v1/students/:id
func (h *StudentHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), c.Param("id"), &req, callerID(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent removes the student with their applications, documents and payments
// DELETE /api/v1/students/:id
func (h *StudentHandler) DeleteStudent(c *gin.Context) {
	if err := h.studentSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, nil)
}

// Act runs set_registered, set_in_process or set_completed
// POST /api/v1/students/:id/actions/:action
func (h *StudentHandler) Act(c *gin.Context) {
	student, err := h.studentSvc.Act(c.Request.Context(), c.Param("id"), workflow.StudentAction(c.Param("action")), callerID(c))
	if err != nil {
		h.handleStudentError(c, err)
		return
	}

	response.OK(c, student)
}

func (h *StudentHandler) handleStudentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 12001, "student not found")
	case errors.Is(err, service.ErrStudentEmailInvalid):
		response.BadRequest(c, 12002, "please enter a valid email address")
	case errors.Is(err, service.ErrPassportExpired):
		response.BadRequest(c, 12003, "passport has expired, please renew it")
	case errors.Is(err, service.ErrStudentEmailTaken):
		response.BadRequest(c, 12004, "a student with this email already exists")
	case errors.Is(err, service.ErrPassportTaken):
		response.BadRequest(c, 12005, "a student with this passport number already exists")
	case errors.Is(err, service.ErrStudentDuplicate):
		response.BadRequest(c, 12006, "email or passport number already registered")
	case errors.Is(err, workflow.ErrUnknownAction):
		response.BadRequest(c, 12007, "unknown action")
	default:
		respondError(c, 12000, err)
	}
}

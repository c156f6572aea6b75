package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/jwt"
	"visa-consultancy/backend/pkg/response"
)

// PortalBase mount point of the self-service portal
const PortalBase = "/my/visa"

// Portal list names; also the redirect targets
const (
	portalStudents     = "students"
	portalApplications = "applications"
	portalDocuments    = "documents"
	portalPayments     = "payments"
)

// PortalHandler self-service gateway over students, applications, documents
// and payments. Lists are paged by dto.PortalPageSize. A student caller only
// reaches records of their own student id; anything else is access denied.
// Not found and access denied both redirect (303) to the entity list.
type PortalHandler struct {
	studentSvc   service.StudentService
	appSvc       service.ApplicationService
	docSvc       service.DocumentService
	paymentSvc   service.PaymentService
	dashboardSvc service.DashboardService
}

// NewPortalHandler creates a PortalHandler
func NewPortalHandler(
	studentSvc service.StudentService,
	appSvc service.ApplicationService,
	docSvc service.DocumentService,
	paymentSvc service.PaymentService,
	dashboardSvc service.DashboardService,
) *PortalHandler {
	return &PortalHandler{
		studentSvc:   studentSvc,
		appSvc:       appSvc,
		docSvc:       docSvc,
		paymentSvc:   paymentSvc,
		dashboardSvc: dashboardSvc,
	}
}

// Home record counters
// GET /my/visa
func (h *PortalHandler) Home(c *gin.Context) {
	home, err := h.dashboardSvc.PortalHome(c.Request.Context())
	if err != nil {
		respondError(c, 20000, err)
		return
	}

	response.OK(c, home)
}

// ── students ──

// ListStudents
// GET /my/visa/students
func (h *PortalHandler) ListStudents(c *gin.Context) {
	q, ok := bindPortalQuery(c)
	if !ok {
		return
	}

	if own, restricted := portalScope(c); restricted {
		student, err := h.studentSvc.GetByID(c.Request.Context(), own)
		if err != nil {
			respondError(c, 20001, err)
			return
		}
		response.OKPage(c, []dto.StudentResponse{*student}, 1, 1, dto.PortalPageSize)
		return
	}

	list, total, err := h.studentSvc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, 20001, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), dto.PortalPageSize)
}

// GetStudent
// GET /my/visa/students/:id
func (h *PortalHandler) GetStudent(c *gin.Context) {
	student, err := h.ownedStudent(c, c.Param("id"))
	if err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	response.OK(c, student)
}

// CreateStudent staff only; student callers already have their record
// POST /my/visa/students
func (h *PortalHandler) CreateStudent(c *gin.Context) {
	var req dto.CreateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	if _, restricted := portalScope(c); restricted {
		h.fail(c, portalStudents, pkgerrors.ErrAccessDenied)
		return
	}

	student, err := h.studentSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	response.Created(c, student)
}

// UpdateStudent
// PUT /my/visa/students/:id
func (h *PortalHandler) UpdateStudent(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	id := c.Param("id")
	if _, err := h.ownedStudent(c, id); err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	student, err := h.studentSvc.Update(c.Request.Context(), id, &req, callerID(c))
	if err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	response.OK(c, student)
}

// DeleteStudent
// DELETE /my/visa/students/:id
func (h *PortalHandler) DeleteStudent(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.ownedStudent(c, id); err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	if err := h.studentSvc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, portalStudents, err)
		return
	}

	response.OK(c, nil)
}

func (h *PortalHandler) ownedStudent(c *gin.Context, id string) (*dto.StudentResponse, error) {
	student, err := h.studentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, student.StudentID); err != nil {
		return nil, err
	}
	return student, nil
}

// ── applications ──

// ListApplications
// GET /my/visa/applications
func (h *PortalHandler) ListApplications(c *gin.Context) {
	q, ok := bindPortalQuery(c)
	if !ok {
		return
	}

	list, total, err := h.appSvc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, 20002, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), dto.PortalPageSize)
}

// GetApplication
// GET /my/visa/applications/:id
func (h *PortalHandler) GetApplication(c *gin.Context) {
	app, err := h.ownedApplication(c, c.Param("id"))
	if err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	response.OK(c, app)
}

// CreateApplication
// POST /my/visa/applications
func (h *PortalHandler) CreateApplication(c *gin.Context) {
	var req dto.CreateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	if err := authorizeOwner(c, req.StudentID); err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	app, err := h.appSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	response.Created(c, app)
}

// UpdateApplication
// PUT /my/visa/applications/:id
func (h *PortalHandler) UpdateApplication(c *gin.Context) {
	var req dto.UpdateApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	id := c.Param("id")
	if _, err := h.ownedApplication(c, id); err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	app, err := h.appSvc.Update(c.Request.Context(), id, &req, callerID(c))
	if err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	response.OK(c, app)
}

// DeleteApplication
// DELETE /my/visa/applications/:id
func (h *PortalHandler) DeleteApplication(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.ownedApplication(c, id); err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	if err := h.appSvc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, portalApplications, err)
		return
	}

	response.OK(c, nil)
}

func (h *PortalHandler) ownedApplication(c *gin.Context, id string) (*dto.ApplicationResponse, error) {
	app, err := h.appSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, app.StudentID); err != nil {
		return nil, err
	}
	return app, nil
}

// ── documents ──

// ListDocuments
// GET /my/visa/documents
func (h *PortalHandler) ListDocuments(c *gin.Context) {
	q, ok := bindPortalQuery(c)
	if !ok {
		return
	}

	list, total, err := h.docSvc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, 20003, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), dto.PortalPageSize)
}

// GetDocument
// GET /my/visa/documents/:id
func (h *PortalHandler) GetDocument(c *gin.Context) {
	doc, err := h.ownedDocument(c, c.Param("id"))
	if err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	response.OK(c, doc)
}

// CreateDocument
// POST /my/visa/documents
func (h *PortalHandler) CreateDocument(c *gin.Context) {
	var req dto.CreateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	if err := authorizeOwner(c, req.StudentID); err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	doc, err := h.docSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	response.Created(c, doc)
}

// UpdateDocument
// PUT /my/visa/documents/:id
func (h *PortalHandler) UpdateDocument(c *gin.Context) {
	var req dto.UpdateDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	id := c.Param("id")
	if _, err := h.ownedDocument(c, id); err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	doc, err := h.docSvc.Update(c.Request.Context(), id, &req, callerID(c))
	if err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	response.OK(c, doc)
}

// DeleteDocument
// DELETE /my/visa/documents/:id
func (h *PortalHandler) DeleteDocument(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.ownedDocument(c, id); err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	if err := h.docSvc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, portalDocuments, err)
		return
	}

	response.OK(c, nil)
}

func (h *PortalHandler) ownedDocument(c *gin.Context, id string) (*dto.DocumentResponse, error) {
	doc, err := h.docSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, doc.StudentID); err != nil {
		return nil, err
	}
	return doc, nil
}

// ── payments ──

// ListPayments
// GET /my/visa/payments
func (h *PortalHandler) ListPayments(c *gin.Context) {
	q, ok := bindPortalQuery(c)
	if !ok {
		return
	}

	list, total, err := h.paymentSvc.List(c.Request.Context(), q)
	if err != nil {
		respondError(c, 20004, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), dto.PortalPageSize)
}

// GetPayment
// GET /my/visa/payments/:id
func (h *PortalHandler) GetPayment(c *gin.Context) {
	payment, err := h.ownedPayment(c, c.Param("id"))
	if err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	response.OK(c, payment)
}

// CreatePayment
// POST /my/visa/payments
func (h *PortalHandler) CreatePayment(c *gin.Context) {
	var req dto.CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}
	if err := authorizeOwner(c, req.StudentID); err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	payment, err := h.paymentSvc.Create(c.Request.Context(), &req, callerID(c))
	if err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	response.Created(c, payment)
}

// UpdatePayment
// PUT /my/visa/payments/:id
func (h *PortalHandler) UpdatePayment(c *gin.Context) {
	var req dto.UpdatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, 10001, "invalid request body")
		return
	}

	id := c.Param("id")
	if _, err := h.ownedPayment(c, id); err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	payment, err := h.paymentSvc.Update(c.Request.Context(), id, &req, callerID(c))
	if err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	response.OK(c, payment)
}

// DeletePayment
// DELETE /my/visa/payments/:id
func (h *PortalHandler) DeletePayment(c *gin.Context) {
	id := c.Param("id")
	if _, err := h.ownedPayment(c, id); err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	if err := h.paymentSvc.Delete(c.Request.Context(), id); err != nil {
		h.fail(c, portalPayments, err)
		return
	}

	response.OK(c, nil)
}

func (h *PortalHandler) ownedPayment(c *gin.Context, id string) (*dto.PaymentResponse, error) {
	payment, err := h.paymentSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		return nil, err
	}
	if err := authorizeOwner(c, payment.StudentID); err != nil {
		return nil, err
	}
	return payment, nil
}

// ── shared ──

// fail redirects to the list on not found or access denied; other errors
// are written as JSON
func (h *PortalHandler) fail(c *gin.Context, list string, err error) {
	if errors.Is(err, pkgerrors.ErrNotFound) || errors.Is(err, pkgerrors.ErrAccessDenied) {
		c.Redirect(http.StatusSeeOther, PortalBase+"/"+list)
		return
	}
	respondError(c, 20000, err)
}

// portalScope the caller's own student id and whether they are limited to it
func portalScope(c *gin.Context) (string, bool) {
	if c.GetString(CtxRole) != jwt.RoleStudent {
		return "", false
	}
	return GetStudentID(c), true
}

// authorizeOwner denies a student caller access to another student's record
func authorizeOwner(c *gin.Context, studentID string) error {
	own, restricted := portalScope(c)
	if !restricted {
		return nil
	}
	if own == "" || own != studentID {
		return pkgerrors.ErrAccessDenied
	}
	return nil
}

// bindPortalQuery binds list parameters with the portal page size and the
// caller's scope applied
func bindPortalQuery(c *gin.Context) (*dto.ListQuery, bool) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return nil, false
	}
	q.PageSize = dto.PortalPageSize
	if own, restricted := portalScope(c); restricted {
		if own == "" {
			response.Forbidden(c, 10003, "access denied")
			return nil, false
		}
		q.StudentID = own
	}
	return &q, true
}

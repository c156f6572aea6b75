package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	apibinding "visa-consultancy/backend/internal/api/binding"
	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/model"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/internal/workflow"
	pkgerrors "visa-consultancy/backend/pkg/errors"
	"visa-consultancy/backend/pkg/jwt"
	"visa-consultancy/backend/pkg/response"
)

const (
	studentA = "6f1c2b8e-4d0a-4a57-9c1e-0a6b7f3d2e11"
	studentB = "9a7d3e21-5b4c-4f68-8d2a-1c9e0f4b3a22"
	uniID    = "2b5e8c14-7a3f-4d91-b6c0-3e8d1f2a4b33"
	appID    = "c4d9a1e7-2f6b-4c38-a05d-7b1e9f3c6d44"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := apibinding.Register(); err != nil {
		panic(err)
	}
}

// ═══════════════════════════════════════════════════════════
// Mock Services
// ═══════════════════════════════════════════════════════════

// ── Mock AuthService ──

type mockAuthService struct {
	revoked   bool
	err       error
	gotJTI    string
	gotExpiry time.Time
}

func (m *mockAuthService) Logout(_ context.Context, jti string, exp time.Time) (bool, error) {
	m.gotJTI, m.gotExpiry = jti, exp
	return m.revoked, m.err
}

// ── Mock StudentService ──

type mockStudentService struct {
	student  *dto.StudentResponse
	list     []dto.StudentResponse
	total    int64
	err      error
	gotQuery *dto.ListQuery
	deleted  string
}

func (m *mockStudentService) Create(_ context.Context, _ *dto.CreateStudentRequest, _ string) (*dto.StudentResponse, error) {
	return m.student, m.err
}
func (m *mockStudentService) GetByID(_ context.Context, _ string) (*dto.StudentResponse, error) {
	return m.student, m.err
}
func (m *mockStudentService) List(_ context.Context, q *dto.ListQuery) ([]dto.StudentResponse, int64, error) {
	m.gotQuery = q
	return m.list, m.total, m.err
}
func (m *mockStudentService) Update(_ context.Context, _ string, _ *dto.UpdateStudentRequest, _ string) (*dto.StudentResponse, error) {
	return m.student, m.err
}
func (m *mockStudentService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}
func (m *mockStudentService) Act(_ context.Context, _ string, _ workflow.StudentAction, _ string) (*dto.StudentResponse, error) {
	return m.student, m.err
}

// ── Mock ApplicationService ──

type mockApplicationService struct {
	app       *dto.ApplicationResponse
	list      []dto.ApplicationResponse
	total     int64
	err       error
	actErr    error
	gotAction workflow.ApplicationAction
	gotCaller string
	gotQuery  *dto.ListQuery
	deleted   string
}

func (m *mockApplicationService) Create(_ context.Context, _ *dto.CreateApplicationRequest, callerID string) (*dto.ApplicationResponse, error) {
	m.gotCaller = callerID
	return m.app, m.err
}
func (m *mockApplicationService) GetByID(_ context.Context, _ string) (*dto.ApplicationResponse, error) {
	return m.app, m.err
}
func (m *mockApplicationService) List(_ context.Context, q *dto.ListQuery) ([]dto.ApplicationResponse, int64, error) {
	m.gotQuery = q
	return m.list, m.total, m.err
}
func (m *mockApplicationService) Update(_ context.Context, _ string, _ *dto.UpdateApplicationRequest, _ string) (*dto.ApplicationResponse, error) {
	return m.app, m.err
}
func (m *mockApplicationService) Delete(_ context.Context, id string) error {
	m.deleted = id
	return m.err
}
func (m *mockApplicationService) Duplicate(_ context.Context, _ string, _ string) (*dto.ApplicationResponse, error) {
	return m.app, m.err
}
func (m *mockApplicationService) Act(_ context.Context, _ string, action workflow.ApplicationAction, callerID string) (*dto.ApplicationResponse, error) {
	m.gotAction, m.gotCaller = action, callerID
	return m.app, m.actErr
}

// ── Mock PaymentService ──

type mockPaymentService struct {
	payment *dto.PaymentResponse
	err     error
}

func (m *mockPaymentService) Create(_ context.Context, _ *dto.CreatePaymentRequest, _ string) (*dto.PaymentResponse, error) {
	return m.payment, m.err
}
func (m *mockPaymentService) GetByID(_ context.Context, _ string) (*dto.PaymentResponse, error) {
	return m.payment, m.err
}
func (m *mockPaymentService) List(_ context.Context, _ *dto.ListQuery) ([]dto.PaymentResponse, int64, error) {
	return nil, 0, m.err
}
func (m *mockPaymentService) Update(_ context.Context, _ string, _ *dto.UpdatePaymentRequest, _ string) (*dto.PaymentResponse, error) {
	return m.payment, m.err
}
func (m *mockPaymentService) Delete(_ context.Context, _ string) error { return m.err }
func (m *mockPaymentService) Act(_ context.Context, _ string, _ workflow.PaymentAction, _ string) (*dto.PaymentResponse, error) {
	return m.payment, m.err
}

// ── Mock ExportService / CalendarService ──

type mockExportService struct {
	buf      *bytes.Buffer
	filename string
	err      error
}

func (m *mockExportService) ExportApplications(_ context.Context, _ *dto.ListQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) ExportPayments(_ context.Context, _ *dto.ListQuery) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}
func (m *mockExportService) PrintInvoice(_ context.Context, _ string) (*bytes.Buffer, string, error) {
	return m.buf, m.filename, m.err
}

type mockCalendarService struct {
	cal string
	err error
}

func (m *mockCalendarService) StudentCalendar(_ context.Context, _ string) (string, error) {
	return m.cal, m.err
}

// ═══════════════════════════════════════════════════════════
// Test Helpers
// ═══════════════════════════════════════════════════════════

func setAuth(c *gin.Context) {
	c.Set(CtxUserID, "staff-user")
	c.Set(CtxRole, jwt.RoleStaff)
	c.Set(CtxTokenJTI, "test-jti")
	c.Set(CtxTokenExp, time.Now().Add(15*time.Minute))
}

func setStudentAuth(studentID string) func(c *gin.Context) {
	return func(c *gin.Context) {
		c.Set(CtxUserID, "portal-user")
		c.Set(CtxRole, jwt.RoleStudent)
		c.Set(CtxStudentID, studentID)
	}
}

func jsonBody(v interface{}) io.Reader {
	b, _ := json.Marshal(v)
	return bytes.NewReader(b)
}

func parseResponse(w *httptest.ResponseRecorder) response.Response {
	var resp response.Response
	json.Unmarshal(w.Body.Bytes(), &resp)
	return resp
}

// serve registers handler at method/route behind auth and runs req
func serve(method, route string, auth gin.HandlerFunc, h gin.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r := gin.New()
	if auth != nil {
		r.Handle(method, route, auth, h)
	} else {
		r.Handle(method, route, h)
	}
	r.ServeHTTP(w, req)
	return w
}

func draftApplication(studentID string) *dto.ApplicationResponse {
	return &dto.ApplicationResponse{Application: &model.Application{
		ApplicationID: appID,
		Name:          "APP00001",
		StudentID:     studentID,
		State:         model.ApplicationDraft,
	}}
}

// ═══════════════════════════════════════════════════════════
// ApplicationHandler Tests
// ═══════════════════════════════════════════════════════════

func TestApplicationHandler_Create_Success(t *testing.T) {
	mock := &mockApplicationService{app: draftApplication(studentA)}
	h := NewApplicationHandler(mock)

	req := httptest.NewRequest("POST", "/applications", jsonBody(dto.CreateApplicationRequest{
		StudentID:    studentA,
		UniversityID: uniID,
		Intake:       "september",
		IntakeYear:   "2024",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := serve("POST", "/applications", setAuth, h.CreateApplication, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if mock.gotCaller != "staff-user" {
		t.Errorf("expected caller staff-user, got %q", mock.gotCaller)
	}
}

func TestApplicationHandler_Create_UnknownIntake(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	req := httptest.NewRequest("POST", "/applications", jsonBody(dto.CreateApplicationRequest{
		StudentID:    studentA,
		UniversityID: uniID,
		Intake:       "spring",
		IntakeYear:   "2024",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := serve("POST", "/applications", setAuth, h.CreateApplication, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 10001 {
		t.Errorf("expected code 10001, got %d", resp.Code)
	}
}

func TestApplicationHandler_Create_BadJSON(t *testing.T) {
	h := NewApplicationHandler(&mockApplicationService{})

	req := httptest.NewRequest("POST", "/applications", bytes.NewReader([]byte("invalid json")))
	req.Header.Set("Content-Type", "application/json")

	w := serve("POST", "/applications", setAuth, h.CreateApplication, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
}

func TestApplicationHandler_Act_PassesAction(t *testing.T) {
	mock := &mockApplicationService{app: draftApplication(studentA)}
	h := NewApplicationHandler(mock)

	req := httptest.NewRequest("POST", "/applications/"+appID+"/actions/submit", nil)
	w := serve("POST", "/applications/:id/actions/:action", setAuth, h.Act, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotAction != workflow.ActionSubmit {
		t.Errorf("expected action submit, got %q", mock.gotAction)
	}
}

func TestApplicationHandler_Act_Errors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"no documents", workflow.ErrNoDocuments, http.StatusConflict, 15008},
		{"documents not verified", workflow.ErrDocumentsNotVerified, http.StatusConflict, 15009},
		{"unknown action", workflow.ErrUnknownAction, http.StatusBadRequest, 15010},
		{"not found", service.ErrApplicationNotFound, http.StatusNotFound, 15001},
		{"lost update", pkgerrors.ErrOptimisticLock, http.StatusConflict, 10006},
		{"infrastructure", errors.New("connection reset"), http.StatusInternalServerError, 50000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewApplicationHandler(&mockApplicationService{actErr: tt.err})

			req := httptest.NewRequest("POST", "/applications/"+appID+"/actions/submit", nil)
			w := serve("POST", "/applications/:id/actions/:action", setAuth, h.Act, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestApplicationHandler_List_Paginates(t *testing.T) {
	mock := &mockApplicationService{list: []dto.ApplicationResponse{*draftApplication(studentA)}, total: 41}
	h := NewApplicationHandler(mock)

	req := httptest.NewRequest("GET", "/applications?page=2&page_size=20&filterby=draft", nil)
	w := serve("GET", "/applications", setAuth, h.ListApplications, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotQuery.State() != "draft" {
		t.Errorf("expected the draft filter, got %q", mock.gotQuery.State())
	}

	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.TotalPages != 3 || body.Data.Pagination.Page != 2 {
		t.Errorf("unexpected pagination %+v", body.Data.Pagination)
	}
}

// ═══════════════════════════════════════════════════════════
// Student / Payment Handler Tests
// ═══════════════════════════════════════════════════════════

func TestStudentHandler_Create_ValidationError(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrPassportExpired})

	req := httptest.NewRequest("POST", "/students", jsonBody(dto.CreateStudentRequest{
		Name: "Asha", Email: "asha@example.com", Phone: "1",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := serve("POST", "/students", setAuth, h.CreateStudent, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Code != 12003 {
		t.Errorf("expected code 12003, got %d", resp.Code)
	}
}

func TestStudentHandler_Get_NotFound(t *testing.T) {
	h := NewStudentHandler(&mockStudentService{err: service.ErrStudentNotFound})

	req := httptest.NewRequest("GET", "/students/"+studentA, nil)
	w := serve("GET", "/students/:id", setAuth, h.GetStudent, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestPaymentHandler_Act_InvoiceExists(t *testing.T) {
	h := NewPaymentHandler(&mockPaymentService{err: workflow.ErrInvoiceExists})

	req := httptest.NewRequest("POST", "/payments/p1/actions/generate_invoice", nil)
	w := serve("POST", "/payments/:id/actions/:action", setAuth, h.Act, req)

	if w.Code != http.StatusConflict {
		t.Errorf("expected 409, got %d", w.Code)
	}
	if resp := parseResponse(w); resp.Message != "Invoice already exists" {
		t.Errorf("unexpected message %q", resp.Message)
	}
}

// ═══════════════════════════════════════════════════════════
// Export / Auth Handler Tests
// ═══════════════════════════════════════════════════════════

func TestExportHandler_PrintInvoice(t *testing.T) {
	mock := &mockExportService{buf: bytes.NewBufferString("xlsx-bytes"), filename: "invoice_INV00001.xlsx"}
	h := NewExportHandler(mock, &mockCalendarService{})

	req := httptest.NewRequest("GET", "/invoices/i1/print", nil)
	w := serve("GET", "/invoices/:id/print", setAuth, h.PrintInvoice, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %s", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); cd != "attachment; filename*=UTF-8''invoice_INV00001.xlsx" {
		t.Errorf("unexpected disposition %s", cd)
	}
	if w.Body.String() != "xlsx-bytes" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestExportHandler_PrintInvoice_NotFound(t *testing.T) {
	h := NewExportHandler(&mockExportService{err: service.ErrInvoiceNotFound}, &mockCalendarService{})

	req := httptest.NewRequest("GET", "/invoices/missing/print", nil)
	w := serve("GET", "/invoices/:id/print", setAuth, h.PrintInvoice, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}

func TestExportHandler_StudentCalendar(t *testing.T) {
	h := NewExportHandler(&mockExportService{}, &mockCalendarService{cal: "BEGIN:VCALENDAR\r\nEND:VCALENDAR\r\n"})

	req := httptest.NewRequest("GET", "/students/"+studentA+"/calendar.ics", nil)
	w := serve("GET", "/students/:id/calendar.ics", setAuth, h.StudentCalendar, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != icsContentType {
		t.Errorf("unexpected content type %s", ct)
	}
}

func TestAuthHandler_Logout(t *testing.T) {
	mock := &mockAuthService{revoked: true}
	h := NewAuthHandler(mock)

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	w := serve("POST", "/auth/logout", setAuth, h.Logout, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotJTI != "test-jti" || mock.gotExpiry.IsZero() {
		t.Errorf("expected the token jti and expiry to be passed, got %q %v", mock.gotJTI, mock.gotExpiry)
	}
}

func TestAuthHandler_Logout_Unauthenticated(t *testing.T) {
	h := NewAuthHandler(&mockAuthService{})

	req := httptest.NewRequest("POST", "/auth/logout", nil)
	w := serve("POST", "/auth/logout", nil, h.Logout, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", w.Code)
	}
}

// ═══════════════════════════════════════════════════════════
// PortalHandler Tests
// ═══════════════════════════════════════════════════════════

func newPortal(students *mockStudentService, apps *mockApplicationService) *PortalHandler {
	if students == nil {
		students = &mockStudentService{}
	}
	if apps == nil {
		apps = &mockApplicationService{}
	}
	return NewPortalHandler(students, apps, nil, &mockPaymentService{}, nil)
}

func TestPortalHandler_GetApplication_NotFoundRedirects(t *testing.T) {
	h := newPortal(nil, &mockApplicationService{err: service.ErrApplicationNotFound})

	req := httptest.NewRequest("GET", "/my/visa/applications/"+appID, nil)
	w := serve("GET", "/my/visa/applications/:id", setAuth, h.GetApplication, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/my/visa/applications" {
		t.Errorf("expected redirect to the list, got %s", loc)
	}
}

func TestPortalHandler_GetApplication_OtherStudentRedirects(t *testing.T) {
	h := newPortal(nil, &mockApplicationService{app: draftApplication(studentB)})

	req := httptest.NewRequest("GET", "/my/visa/applications/"+appID, nil)
	w := serve("GET", "/my/visa/applications/:id", setStudentAuth(studentA), h.GetApplication, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("another student's application should redirect, got %d", w.Code)
	}
}

func TestPortalHandler_GetApplication_Own(t *testing.T) {
	h := newPortal(nil, &mockApplicationService{app: draftApplication(studentA)})

	req := httptest.NewRequest("GET", "/my/visa/applications/"+appID, nil)
	w := serve("GET", "/my/visa/applications/:id", setStudentAuth(studentA), h.GetApplication, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
}

func TestPortalHandler_DeleteApplication_OtherStudentUntouched(t *testing.T) {
	mock := &mockApplicationService{app: draftApplication(studentB)}
	h := newPortal(nil, mock)

	req := httptest.NewRequest("DELETE", "/my/visa/applications/"+appID, nil)
	w := serve("DELETE", "/my/visa/applications/:id", setStudentAuth(studentA), h.DeleteApplication, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", w.Code)
	}
	if mock.deleted != "" {
		t.Error("a forbidden delete must not reach the service")
	}
}

func TestPortalHandler_ListApplications_ScopedToStudent(t *testing.T) {
	mock := &mockApplicationService{}
	h := newPortal(nil, mock)

	req := httptest.NewRequest("GET", "/my/visa/applications?page_size=100&search=APP", nil)
	w := serve("GET", "/my/visa/applications", setStudentAuth(studentA), h.ListApplications, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if mock.gotQuery.StudentID != studentA {
		t.Errorf("expected the list scoped to %s, got %q", studentA, mock.gotQuery.StudentID)
	}
	if mock.gotQuery.PageSize != dto.PortalPageSize {
		t.Errorf("expected page size %d, got %d", dto.PortalPageSize, mock.gotQuery.PageSize)
	}
	if mock.gotQuery.Search != "APP" {
		t.Errorf("expected search APP, got %q", mock.gotQuery.Search)
	}
}

func TestPortalHandler_ListApplications_StaffUnscoped(t *testing.T) {
	mock := &mockApplicationService{}
	h := newPortal(nil, mock)

	req := httptest.NewRequest("GET", "/my/visa/applications", nil)
	serve("GET", "/my/visa/applications", setAuth, h.ListApplications, req)

	if mock.gotQuery.StudentID != "" {
		t.Errorf("staff lists should not be scoped, got %q", mock.gotQuery.StudentID)
	}
}

func TestPortalHandler_CreateApplication_ForOtherStudent(t *testing.T) {
	mock := &mockApplicationService{app: draftApplication(studentB)}
	h := newPortal(nil, mock)

	req := httptest.NewRequest("POST", "/my/visa/applications", jsonBody(dto.CreateApplicationRequest{
		StudentID:    studentB,
		UniversityID: uniID,
		Intake:       "january",
		IntakeYear:   "2025",
	}))
	req.Header.Set("Content-Type", "application/json")

	w := serve("POST", "/my/visa/applications", setStudentAuth(studentA), h.CreateApplication, req)

	if w.Code != http.StatusSeeOther {
		t.Errorf("expected 303, got %d", w.Code)
	}
	if mock.gotCaller != "" {
		t.Error("the service must not be called")
	}
}

func TestPortalHandler_ListStudents_StudentSeesOnlySelf(t *testing.T) {
	students := &mockStudentService{student: &dto.StudentResponse{Student: &model.Student{StudentID: studentA, Name: "Asha"}}}
	h := newPortal(students, nil)

	req := httptest.NewRequest("GET", "/my/visa/students", nil)
	w := serve("GET", "/my/visa/students", setStudentAuth(studentA), h.ListStudents, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if students.gotQuery != nil {
		t.Error("a student caller should not list every student")
	}
	var body struct {
		Data response.PageData `json:"data"`
	}
	json.Unmarshal(w.Body.Bytes(), &body)
	if body.Data.Pagination.Total != 1 {
		t.Errorf("expected one student, got %d", body.Data.Pagination.Total)
	}
}

func TestPortalHandler_UpdateStudent_ValidationStaysJSON(t *testing.T) {
	students := &failingUpdateStudents{
		mockStudentService: &mockStudentService{student: &dto.StudentResponse{Student: &model.Student{StudentID: studentA}}},
		updateErr:          service.ErrStudentEmailInvalid,
	}
	h := NewPortalHandler(students, &mockApplicationService{}, nil, &mockPaymentService{}, nil)

	email := "not-an-email"
	req := httptest.NewRequest("PUT", "/my/visa/students/"+studentA, jsonBody(dto.UpdateStudentRequest{Email: &email}))
	req.Header.Set("Content-Type", "application/json")

	w := serve("PUT", "/my/visa/students/:id", setStudentAuth(studentA), h.UpdateStudent, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("a validation failure should not redirect, got %d", w.Code)
	}
}

// failingUpdateStudents finds the student but rejects the update
type failingUpdateStudents struct {
	*mockStudentService
	updateErr error
}

func (m *failingUpdateStudents) Update(_ context.Context, _ string, _ *dto.UpdateStudentRequest, _ string) (*dto.StudentResponse, error) {
	return nil, m.updateErr
}

package handler

import (
	"bytes"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"visa-consultancy/backend/internal/dto"
	"visa-consultancy/backend/internal/service"
	"visa-consultancy/backend/pkg/response"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	icsContentType  = "text/calendar; charset=utf-8"
)

// ExportHandler file downloads: spreadsheets and calendar feeds
type ExportHandler struct {
	exportSvc   service.ExportService
	calendarSvc service.CalendarService
}

// NewExportHandler creates an ExportHandler
func NewExportHandler(exportSvc service.ExportService, calendarSvc service.CalendarService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, calendarSvc: calendarSvc}
}

// ExportApplications applications matching the list filters as xlsx
// GET /api/v1/export/applications
func (h *ExportHandler) ExportApplications(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.ExportApplications(c.Request.Context(), &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, filename, xlsxContentType, buf)
}

// ExportPayments payments matching the list filters as xlsx
// GET /api/v1/export/payments
func (h *ExportHandler) ExportPayments(c *gin.Context) {
	var q dto.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "invalid query parameters")
		return
	}

	buf, filename, err := h.exportSvc.ExportPayments(c.Request.Context(), &q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, filename, xlsxContentType, buf)
}

// PrintInvoice
// GET /api/v1/invoices/:id/print
func (h *ExportHandler) PrintInvoice(c *gin.Context) {
	buf, filename, err := h.exportSvc.PrintInvoice(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, filename, xlsxContentType, buf)
}

// StudentCalendar
// GET /api/v1/students/:id/calendar.ics
func (h *ExportHandler) StudentCalendar(c *gin.Context) {
	studentID := c.Param("id")
	cal, err := h.calendarSvc.StudentCalendar(c.Request.Context(), studentID)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	sendFile(c, "student_"+studentID+".ics", icsContentType, bytes.NewBufferString(cal))
}

func sendFile(c *gin.Context, filename, contentType string, buf *bytes.Buffer) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvoiceNotFound):
		response.NotFound(c, 19101, "invoice not found")
	case errors.Is(err, service.ErrStudentNotFound):
		response.NotFound(c, 19102, "student not found")
	case errors.Is(err, service.ErrExportGenerateFail):
		_ = c.Error(err)
		response.InternalError(c)
	default:
		respondError(c, 19100, err)
	}
}

package handler

import "visa-consultancy/backend/internal/service"

// Handler aggregates every handler
type Handler struct {
	Auth        *AuthHandler
	Student     *StudentHandler
	University  *UniversityHandler
	Consultant  *ConsultantHandler
	Application *ApplicationHandler
	Document    *DocumentHandler
	Payment     *PaymentHandler
	Invoice     *InvoiceHandler
	Dashboard   *DashboardHandler
	Export      *ExportHandler
	Portal      *PortalHandler
}

// NewHandler wires handlers onto the services
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:        NewAuthHandler(svc.Auth),
		Student:     NewStudentHandler(svc.Student),
		University:  NewUniversityHandler(svc.University),
		Consultant:  NewConsultantHandler(svc.Consultant),
		Application: NewApplicationHandler(svc.Application),
		Document:    NewDocumentHandler(svc.Document),
		Payment:     NewPaymentHandler(svc.Payment),
		Invoice:     NewInvoiceHandler(svc.Invoice),
		Dashboard:   NewDashboardHandler(svc.Dashboard),
		Export:      NewExportHandler(svc.Export, svc.Calendar),
		Portal:      NewPortalHandler(svc.Student, svc.Application, svc.Document, svc.Payment, svc.Dashboard),
	}
}

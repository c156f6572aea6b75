package dto

import "visa-consultancy/backend/internal/model"

// ── application ──

// CreateApplicationRequest create an application. An empty name or "New" draws the next number.
type CreateApplicationRequest struct {
	Name            string  `json:"name"             binding:"omitempty,max=32"`
	StudentID       string  `json:"student_id"       binding:"required,uuid"`
	UniversityID    string  `json:"university_id"    binding:"required,uuid"`
	CourseID        *string `json:"course_id"        binding:"omitempty,uuid"`
	ConsultantID    *string `json:"consultant_id"    binding:"omitempty,uuid"`
	Intake          string  `json:"intake"           binding:"required,intake"`
	IntakeYear      string  `json:"intake_year"      binding:"required,len=4,numeric"`
	ApplicationDate string  `json:"application_date"`
	ServiceFee      float64 `json:"service_fee"      binding:"min=0"`
	UniversityFee   float64 `json:"university_fee"   binding:"min=0"`
	Priority        string  `json:"priority"         binding:"omitempty,oneof=0 1 2"`
	Notes           string  `json:"notes"`
}

// UpdateApplicationRequest partial update. The name never changes after creation.
type UpdateApplicationRequest struct {
	UniversityID    *string  `json:"university_id"    binding:"omitempty,uuid"`
	CourseID        *string  `json:"course_id"        binding:"omitempty,uuid"`
	ConsultantID    *string  `json:"consultant_id"    binding:"omitempty,uuid"`
	Intake          *string  `json:"intake"           binding:"omitempty,intake"`
	IntakeYear      *string  `json:"intake_year"      binding:"omitempty,len=4,numeric"`
	ApplicationDate *string  `json:"application_date"`
	ServiceFee      *float64 `json:"service_fee"      binding:"omitempty,min=0"`
	UniversityFee   *float64 `json:"university_fee"   binding:"omitempty,min=0"`
	Outcome         *string  `json:"outcome"          binding:"omitempty,oneof=pending accepted rejected waitlisted"`
	RejectionReason *string  `json:"rejection_reason"`
	Priority        *string  `json:"priority"         binding:"omitempty,oneof=0 1 2"`
	Notes           *string  `json:"notes"`
}

// ApplicationResponse application with derived counts
type ApplicationResponse struct {
	*model.Application
	DocumentCount int64 `json:"document_count"`
	PaymentCount  int64 `json:"payment_count"`
}

// ── document ──

// CreateDocumentRequest create a document
type CreateDocumentRequest struct {
	Name          string  `json:"name"           binding:"required,max=200"`
	StudentID     string  `json:"student_id"     binding:"required,uuid"`
	ApplicationID *string `json:"application_id" binding:"omitempty,uuid"`
	DocumentType  string  `json:"document_type"  binding:"required,document_type"`
	FileName      string  `json:"file_name"      binding:"omitempty,max=255"`
	ExpiryDate    string  `json:"expiry_date"`
	IsMandatory   *bool   `json:"is_mandatory"`
	Notes         string  `json:"notes"`
}

// UpdateDocumentRequest partial update; state only changes through actions
type UpdateDocumentRequest struct {
	Name            *string `json:"name"             binding:"omitempty,max=200"`
	ApplicationID   *string `json:"application_id"   binding:"omitempty,uuid"`
	DocumentType    *string `json:"document_type"    binding:"omitempty,document_type"`
	FileName        *string `json:"file_name"        binding:"omitempty,max=255"`
	ExpiryDate      *string `json:"expiry_date"`
	RejectionReason *string `json:"rejection_reason"`
	IsMandatory     *bool   `json:"is_mandatory"`
	Notes           *string `json:"notes"`
}

// DocumentResponse document with its expiry flag
type DocumentResponse struct {
	*model.Document
	IsExpired bool `json:"is_expired"`
}

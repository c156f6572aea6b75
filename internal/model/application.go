package model

import "time"

// ApplicationState procedural state of an application
type ApplicationState string

const (
	ApplicationDraft                ApplicationState = "draft"
	ApplicationDocumentCollection   ApplicationState = "document_collection"
	ApplicationDocumentVerification ApplicationState = "document_verification"
	ApplicationSubmitted            ApplicationState = "submitted"
	ApplicationInProgress           ApplicationState = "in_progress"
	ApplicationOfferReceived        ApplicationState = "offer_received"
	ApplicationOfferAccepted        ApplicationState = "offer_accepted"
	ApplicationVisaFiled            ApplicationState = "visa_filed"
	ApplicationVisaApproved         ApplicationState = "visa_approved"
	ApplicationRejected             ApplicationState = "rejected"
	ApplicationCancelled            ApplicationState = "cancelled"
)

// ApplicationStates every state in lifecycle order
var ApplicationStates = []ApplicationState{
	ApplicationDraft, ApplicationDocumentCollection, ApplicationDocumentVerification,
	ApplicationSubmitted, ApplicationInProgress, ApplicationOfferReceived,
	ApplicationOfferAccepted, ApplicationVisaFiled, ApplicationVisaApproved,
	ApplicationRejected, ApplicationCancelled,
}

// Valid reports whether s is a known state
func (s ApplicationState) Valid() bool {
	for _, v := range ApplicationStates {
		if v == s {
			return true
		}
	}
	return false
}

// ApplicationOutcome final disposition, orthogonal to the state
type ApplicationOutcome string

const (
	OutcomePending    ApplicationOutcome = "pending"
	OutcomeAccepted   ApplicationOutcome = "accepted"
	OutcomeRejected   ApplicationOutcome = "rejected"
	OutcomeWaitlisted ApplicationOutcome = "waitlisted"
)

// Application maps to the applications table
type Application struct {
	ApplicationID          string             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"application_id"`
	Name                   string             `gorm:"type:varchar(32);not null;uniqueIndex"          json:"name"`
	StudentID              string             `gorm:"type:uuid;not null;index"                       json:"student_id"`
	UniversityID           string             `gorm:"type:uuid;not null;index"                       json:"university_id"`
	CourseID               *string            `gorm:"type:uuid"                                      json:"course_id,omitempty"`
	ConsultantID           *string            `gorm:"type:uuid;index"                                json:"consultant_id,omitempty"`
	Intake                 Intake             `gorm:"type:varchar(12);not null"                      json:"intake"`
	IntakeYear             string             `gorm:"type:varchar(4);not null"                       json:"intake_year"`
	ApplicationDate        time.Time          `gorm:"type:date;not null"                             json:"application_date"`
	SubmissionDate         *time.Time         `gorm:"type:date"                                      json:"submission_date,omitempty"`
	UniversityResponseDate *time.Time         `gorm:"type:date"                                      json:"university_response_date,omitempty"`
	State                  ApplicationState   `gorm:"type:varchar(30);not null;default:'draft';index" json:"state"`
	ServiceFee             float64            `gorm:"type:numeric(12,2);not null;default:0"          json:"service_fee"`
	UniversityFee          float64            `gorm:"type:numeric(12,2);not null;default:0"          json:"university_fee"`
	TotalFee               float64            `gorm:"type:numeric(12,2);not null;default:0"          json:"total_fee"`
	Outcome                ApplicationOutcome `gorm:"type:varchar(12);not null;default:'pending'"    json:"outcome"`
	RejectionReason        string             `gorm:"type:text"                                      json:"rejection_reason,omitempty"`
	Priority               string             `gorm:"type:varchar(1);not null;default:'0'"           json:"priority"` // 0 normal | 1 high | 2 urgent
	Notes                  string             `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Student    *Student    `gorm:"foreignKey:StudentID;references:StudentID"       json:"student,omitempty"`
	University *University `gorm:"foreignKey:UniversityID;references:UniversityID" json:"university,omitempty"`
	Course     *Course     `gorm:"foreignKey:CourseID;references:CourseID"         json:"course,omitempty"`
	Consultant *Consultant `gorm:"foreignKey:ConsultantID;references:ConsultantID" json:"consultant,omitempty"`
}

func (Application) TableName() string { return "applications" }

// RecomputeTotalFee keeps total_fee equal to the sum of both fees.
// Called on every write that touches either fee.
func (a *Application) RecomputeTotalFee() {
	a.TotalFee = a.ServiceFee + a.UniversityFee
}

package model

import "time"

// DocumentState verification status of a document
type DocumentState string

const (
	DocumentPending  DocumentState = "pending"
	DocumentReceived DocumentState = "received"
	DocumentVerified DocumentState = "verified"
	DocumentRejected DocumentState = "rejected"
)

// DocumentType kind of supporting document
type DocumentType string

// DocumentTypes every accepted document kind
var DocumentTypes = []DocumentType{
	"passport", "photo", "10th_certificate", "12th_certificate",
	"bachelor_certificate", "bachelor_marksheet", "master_certificate", "master_marksheet",
	"english_test", "sop", "lor", "resume", "work_experience", "bank_statement",
	"affidavit", "police_clearance", "medical_certificate", "other",
}

// Valid reports whether t is a known document kind
func (t DocumentType) Valid() bool {
	for _, v := range DocumentTypes {
		if v == t {
			return true
		}
	}
	return false
}

// Document maps to the documents table
type Document struct {
	DocumentID       string        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"document_id"`
	Name             string        `gorm:"type:varchar(200);not null"                     json:"name"`
	StudentID        string        `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ApplicationID    *string       `gorm:"type:uuid;index"                                json:"application_id,omitempty"`
	DocumentType     DocumentType  `gorm:"type:varchar(30);not null"                      json:"document_type"`
	FileName         string        `gorm:"type:varchar(255)"                              json:"file_name,omitempty"`
	State            DocumentState `gorm:"type:varchar(12);not null;default:'pending';index" json:"state"`
	SubmissionDate   *time.Time    `gorm:"type:date"                                      json:"submission_date,omitempty"`
	VerificationDate *time.Time    `gorm:"type:date"                                      json:"verification_date,omitempty"`
	VerifiedBy       *string       `gorm:"type:varchar(64)"                               json:"verified_by,omitempty"`
	ExpiryDate       *time.Time    `gorm:"type:date"                                      json:"expiry_date,omitempty"`
	RejectionReason  string        `gorm:"type:text"                                      json:"rejection_reason,omitempty"`
	IsMandatory      bool          `gorm:"not null;default:true"                          json:"is_mandatory"`
	Notes            string        `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

func (Document) TableName() string { return "documents" }

// IsExpired true iff an expiry date is set and lies before today
func (d *Document) IsExpired(today time.Time) bool {
	return d.ExpiryDate != nil && d.ExpiryDate.Before(today)
}

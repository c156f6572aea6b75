package model

import (
	"time"

	"gorm.io/datatypes"
)

// Consultant maps to the consultants table
type Consultant struct {
	ConsultantID            string                      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"consultant_id"`
	Name                    string                      `gorm:"type:varchar(200);not null"                     json:"name"`
	UserID                  *string                     `gorm:"type:varchar(64)"                               json:"user_id,omitempty"`
	Email                   string                      `gorm:"type:varchar(200);not null"                     json:"email"`
	Phone                   string                      `gorm:"type:varchar(50);not null"                      json:"phone"`
	Mobile                  string                      `gorm:"type:varchar(50)"                               json:"mobile,omitempty"`
	EmployeeID              string                      `gorm:"type:varchar(50)"                               json:"employee_id,omitempty"`
	JoiningDate             *time.Time                  `gorm:"type:date"                                      json:"joining_date,omitempty"`
	Department              string                      `gorm:"type:varchar(100)"                              json:"department,omitempty"`
	SpecializationCountries datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"               json:"specialization_countries"`
	ExpertiseLevel          string                      `gorm:"type:varchar(10);not null;default:'junior'"     json:"expertise_level"` // junior | senior | expert
	Active                  bool                        `gorm:"not null;default:true"                          json:"active"`
	Notes                   string                      `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel
}

func (Consultant) TableName() string { return "consultants" }

// ConsultantMetrics counts derived from the consultant's students and applications
type ConsultantMetrics struct {
	TotalStudents        int64
	TotalApplications    int64
	ApprovedApplications int64
}

// SuccessRate approved share of all assigned applications, in percent.
func (m ConsultantMetrics) SuccessRate() float64 {
	if m.TotalApplications == 0 {
		return 0
	}
	return float64(m.ApprovedApplications) / float64(m.TotalApplications) * 100
}

package model

import "time"

// StudentState lifecycle of a student record
type StudentState string

const (
	StudentInquiry    StudentState = "inquiry"
	StudentRegistered StudentState = "registered"
	StudentInProcess  StudentState = "in_process"
	StudentCompleted  StudentState = "completed"
	StudentCancelled  StudentState = "cancelled"
)

// Student maps to the students table
type Student struct {
	StudentID            string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	Name                 string       `gorm:"type:varchar(200);not null"                     json:"name"`
	Email                string       `gorm:"type:varchar(200);not null;uniqueIndex"         json:"email"`
	Phone                string       `gorm:"type:varchar(50);not null"                      json:"phone"`
	Mobile               string       `gorm:"type:varchar(50)"                               json:"mobile,omitempty"`
	DateOfBirth          *time.Time   `gorm:"type:date"                                      json:"date_of_birth,omitempty"`
	Gender               string       `gorm:"type:varchar(10)"                               json:"gender,omitempty"` // male | female | other
	Street               string       `gorm:"type:varchar(200)"                              json:"street,omitempty"`
	Street2              string       `gorm:"type:varchar(200)"                              json:"street2,omitempty"`
	City                 string       `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	Province             string       `gorm:"type:varchar(100)"                              json:"province,omitempty"`
	Zip                  string       `gorm:"type:varchar(20)"                               json:"zip,omitempty"`
	Country              string       `gorm:"type:varchar(2)"                                json:"country,omitempty"`
	PassportNumber       *string      `gorm:"type:varchar(50);uniqueIndex"                   json:"passport_number,omitempty"`
	PassportIssueDate    *time.Time   `gorm:"type:date"                                      json:"passport_issue_date,omitempty"`
	PassportExpiryDate   *time.Time   `gorm:"type:date"                                      json:"passport_expiry_date,omitempty"`
	PassportCountry      string       `gorm:"type:varchar(2)"                                json:"passport_country,omitempty"`
	HighestQualification string       `gorm:"type:varchar(20)"                               json:"highest_qualification,omitempty"` // 10th | 12th | bachelor | master | phd
	Percentage           float64      `gorm:"type:numeric(5,2);not null;default:0"           json:"percentage"`
	YearOfPassing        string       `gorm:"type:varchar(4)"                                json:"year_of_passing,omitempty"`
	EnglishTest          string       `gorm:"type:varchar(20);not null;default:'none'"       json:"english_test"` // ielts | toefl | pte | duolingo | none
	OverallScore         float64      `gorm:"type:numeric(5,2);not null;default:0"           json:"overall_score"`
	TestDate             *time.Time   `gorm:"type:date"                                      json:"test_date,omitempty"`
	ConsultantID         *string      `gorm:"type:uuid;index"                                json:"consultant_id,omitempty"`
	State                StudentState `gorm:"type:varchar(20);not null;default:'inquiry'"    json:"state"`
	Notes                string       `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Consultant *Consultant `gorm:"foreignKey:ConsultantID;references:ConsultantID" json:"consultant,omitempty"`
}

func (Student) TableName() string { return "students" }

// Age in whole years on the given day; 0 without a birth date.
func (s *Student) Age(today time.Time) int {
	if s.DateOfBirth == nil {
		return 0
	}
	dob := *s.DateOfBirth
	age := today.Year() - dob.Year()
	if today.Month() < dob.Month() || (today.Month() == dob.Month() && today.Day() < dob.Day()) {
		age--
	}
	return age
}

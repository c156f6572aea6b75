package dto

import "visa-consultancy/backend/internal/model"

// ── student ──

// CreateStudentRequest create a student
type CreateStudentRequest struct {
	Name                 string  `json:"name"                  binding:"required,max=200"`
	Email                string  `json:"email"                 binding:"required,max=200"`
	Phone                string  `json:"phone"                 binding:"required,max=50"`
	Mobile               string  `json:"mobile"                binding:"omitempty,max=50"`
	DateOfBirth          string  `json:"date_of_birth"`
	Gender               string  `json:"gender"                binding:"omitempty,oneof=male female other"`
	Street               string  `json:"street"`
	Street2              string  `json:"street2"`
	City                 string  `json:"city"`
	Province             string  `json:"province"`
	Zip                  string  `json:"zip"`
	Country              string  `json:"country"               binding:"omitempty,len=2"`
	PassportNumber       string  `json:"passport_number"       binding:"omitempty,max=50"`
	PassportIssueDate    string  `json:"passport_issue_date"`
	PassportExpiryDate   string  `json:"passport_expiry_date"`
	PassportCountry      string  `json:"passport_country"      binding:"omitempty,len=2"`
	HighestQualification string  `json:"highest_qualification" binding:"omitempty,oneof=10th 12th bachelor master phd"`
	Percentage           float64 `json:"percentage"            binding:"min=0,max=100"`
	YearOfPassing        string  `json:"year_of_passing"       binding:"omitempty,len=4,numeric"`
	EnglishTest          string  `json:"english_test"          binding:"omitempty,oneof=ielts toefl pte duolingo none"`
	OverallScore         float64 `json:"overall_score"         binding:"min=0"`
	TestDate             string  `json:"test_date"`
	ConsultantID         *string `json:"consultant_id"         binding:"omitempty,uuid"`
	Notes                string  `json:"notes"`
}

// UpdateStudentRequest partial update; nil fields are left alone
type UpdateStudentRequest struct {
	Name                 *string  `json:"name"                  binding:"omitempty,max=200"`
	Email                *string  `json:"email"                 binding:"omitempty,max=200"`
	Phone                *string  `json:"phone"                 binding:"omitempty,max=50"`
	Mobile               *string  `json:"mobile"`
	DateOfBirth          *string  `json:"date_of_birth"`
	Gender               *string  `json:"gender"                binding:"omitempty,oneof=male female other"`
	Street               *string  `json:"street"`
	Street2              *string  `json:"street2"`
	City                 *string  `json:"city"`
	Province             *string  `json:"province"`
	Zip                  *string  `json:"zip"`
	Country              *string  `json:"country"               binding:"omitempty,len=2"`
	PassportNumber       *string  `json:"passport_number"       binding:"omitempty,max=50"`
	PassportIssueDate    *string  `json:"passport_issue_date"`
	PassportExpiryDate   *string  `json:"passport_expiry_date"`
	PassportCountry      *string  `json:"passport_country"      binding:"omitempty,len=2"`
	HighestQualification *string  `json:"highest_qualification" binding:"omitempty,oneof=10th 12th bachelor master phd"`
	Percentage           *float64 `json:"percentage"            binding:"omitempty,min=0,max=100"`
	YearOfPassing        *string  `json:"year_of_passing"`
	EnglishTest          *string  `json:"english_test"          binding:"omitempty,oneof=ielts toefl pte duolingo none"`
	OverallScore         *float64 `json:"overall_score"         binding:"omitempty,min=0"`
	TestDate             *string  `json:"test_date"`
	ConsultantID         *string  `json:"consultant_id"         binding:"omitempty,uuid"`
	Notes                *string  `json:"notes"`
}

// StudentResponse student with derived figures
type StudentResponse struct {
	*model.Student
	Age              int     `json:"age"`
	ApplicationCount int64   `json:"application_count"`
	DocumentCount    int64   `json:"document_count"`
	TotalPaid        float64 `json:"total_paid"`
}

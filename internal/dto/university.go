package dto

import "visa-consultancy/backend/internal/model"

// ── university ──

// UniversityRequest create or replace a university
type UniversityRequest struct {
	Name            string   `json:"name"             binding:"required,max=200"`
	Code            string   `json:"code"             binding:"omitempty,max=50"`
	Country         string   `json:"country"          binding:"required,len=2"`
	City            string   `json:"city"`
	Website         string   `json:"website"          binding:"omitempty,url"`
	Email           string   `json:"email"            binding:"omitempty,email"`
	Phone           string   `json:"phone"`
	Ranking         int      `json:"ranking"          binding:"min=0"`
	Type            string   `json:"type"             binding:"omitempty,oneof=public private"`
	EstablishedYear string   `json:"established_year" binding:"omitempty,len=4,numeric"`
	MinIELTS        float64  `json:"min_ielts"        binding:"min=0,max=9"`
	MinTOEFL        float64  `json:"min_toefl"        binding:"min=0,max=120"`
	MinPercentage   float64  `json:"min_percentage"   binding:"min=0,max=100"`
	ApplicationFee  float64  `json:"application_fee"  binding:"min=0"`
	TuitionFeeMin   float64  `json:"tuition_fee_min"  binding:"min=0"`
	TuitionFeeMax   float64  `json:"tuition_fee_max"  binding:"min=0"`
	Intakes         []string `json:"intakes"          binding:"dive,intake"`
	IsPartner       bool     `json:"is_partner"`
	Active          *bool    `json:"active"`
	Notes           string   `json:"notes"`
}

// UniversityResponse university with derived counts
type UniversityResponse struct {
	*model.University
	CourseCount      int64 `json:"course_count"`
	ApplicationCount int64 `json:"application_count"`
}

// CourseRequest create or replace a course
type CourseRequest struct {
	Name               string  `json:"name"                binding:"required,max=200"`
	Code               string  `json:"code"                binding:"omitempty,max=50"`
	Level              string  `json:"level"               binding:"required,oneof=diploma bachelor master phd"`
	Duration           string  `json:"duration"            binding:"omitempty,max=20"`
	Intake             string  `json:"intake"              binding:"omitempty,intake"`
	RequiredPercentage float64 `json:"required_percentage" binding:"min=0,max=100"`
	RequiredIELTS      float64 `json:"required_ielts"      binding:"min=0,max=9"`
	TuitionFee         float64 `json:"tuition_fee"         binding:"min=0"`
	Active             *bool   `json:"active"`
	Description        string  `json:"description"`
}

// ── consultant ──

// ConsultantRequest create or replace a consultant
type ConsultantRequest struct {
	Name                    string   `json:"name"                     binding:"required,max=200"`
	UserID                  *string  `json:"user_id"`
	Email                   string   `json:"email"                    binding:"required,email"`
	Phone                   string   `json:"phone"                    binding:"required,max=50"`
	Mobile                  string   `json:"mobile"`
	EmployeeID              string   `json:"employee_id"`
	JoiningDate             string   `json:"joining_date"`
	Department              string   `json:"department"`
	SpecializationCountries []string `json:"specialization_countries" binding:"dive,len=2"`
	ExpertiseLevel          string   `json:"expertise_level"          binding:"omitempty,oneof=junior senior expert"`
	Active                  *bool    `json:"active"`
	Notes                   string   `json:"notes"`
}

// ConsultantResponse consultant with derived metrics
type ConsultantResponse struct {
	*model.Consultant
	TotalStudents     int64   `json:"total_students"`
	TotalApplications int64   `json:"total_applications"`
	SuccessRate       float64 `json:"success_rate"`
}

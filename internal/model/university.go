package model

import "gorm.io/datatypes"

// University maps to the universities table
type University struct {
	UniversityID    string                     `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"university_id"`
	Name            string                     `gorm:"type:varchar(200);not null"                     json:"name"`
	Code            string                     `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	Country         string                     `gorm:"type:varchar(2);not null"                       json:"country"`
	City            string                     `gorm:"type:varchar(100)"                              json:"city,omitempty"`
	Website         string                     `gorm:"type:varchar(200)"                              json:"website,omitempty"`
	Email           string                     `gorm:"type:varchar(200)"                              json:"email,omitempty"`
	Phone           string                     `gorm:"type:varchar(50)"                               json:"phone,omitempty"`
	Ranking         int                        `gorm:"not null;default:0"                             json:"ranking"`
	Type            string                     `gorm:"type:varchar(10)"                               json:"type,omitempty"` // public | private
	EstablishedYear string                     `gorm:"type:varchar(4)"                                json:"established_year,omitempty"`
	MinIELTS        float64                    `gorm:"column:min_ielts;type:numeric(3,1);not null;default:0" json:"min_ielts"`
	MinTOEFL        float64                    `gorm:"column:min_toefl;type:numeric(5,1);not null;default:0" json:"min_toefl"`
	MinPercentage   float64                    `gorm:"type:numeric(5,2);not null;default:0"           json:"min_percentage"`
	ApplicationFee  float64                    `gorm:"type:numeric(12,2);not null;default:0"          json:"application_fee"`
	TuitionFeeMin   float64                    `gorm:"type:numeric(12,2);not null;default:0"          json:"tuition_fee_min"`
	TuitionFeeMax   float64                    `gorm:"type:numeric(12,2);not null;default:0"          json:"tuition_fee_max"`
	Intakes         datatypes.JSONSlice[string] `gorm:"type:jsonb;not null;default:'[]'"               json:"intakes"`
	IsPartner       bool                       `gorm:"not null;default:false"                         json:"is_partner"`
	Active          bool                       `gorm:"not null;default:true"                          json:"active"`
	Notes           string                     `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Courses []Course `gorm:"foreignKey:UniversityID" json:"courses,omitempty"`
}

func (University) TableName() string { return "universities" }

// Course maps to the courses table
type Course struct {
	CourseID           string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Name               string  `gorm:"type:varchar(200);not null"                     json:"name"`
	Code               string  `gorm:"type:varchar(50)"                               json:"code,omitempty"`
	UniversityID       string  `gorm:"type:uuid;not null;index"                       json:"university_id"`
	Level              string  `gorm:"type:varchar(10);not null"                      json:"level"` // diploma | bachelor | master | phd
	Duration           string  `gorm:"type:varchar(20)"                               json:"duration,omitempty"`
	Intake             Intake  `gorm:"type:varchar(12)"                               json:"intake,omitempty"`
	RequiredPercentage float64 `gorm:"type:numeric(5,2);not null;default:0"           json:"required_percentage"`
	RequiredIELTS      float64 `gorm:"column:required_ielts;type:numeric(3,1);not null;default:0" json:"required_ielts"`
	TuitionFee         float64 `gorm:"type:numeric(12,2);not null;default:0"          json:"tuition_fee"`
	Active             bool    `gorm:"not null;default:true"                          json:"active"`
	Description        string  `gorm:"type:text"                                      json:"description,omitempty"`
	VersionedModel

	University *University `gorm:"foreignKey:UniversityID;references:UniversityID" json:"university,omitempty"`
}

func (Course) TableName() string { return "courses" }

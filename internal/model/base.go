package model

import "time"

// BaseModel audit columns shared by every business table
type BaseModel struct {
	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	CreatedBy *string   `gorm:"type:varchar(64)"                   json:"created_by,omitempty"`
	UpdatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
	UpdatedBy *string   `gorm:"type:varchar(64)"                   json:"updated_by,omitempty"`
}

// VersionedModel adds the optimistic-lock counter
type VersionedModel struct {
	BaseModel
	Version int `gorm:"not null;default:1" json:"version"`
}

// Intake academic month a course admits students for
type Intake string

const (
	IntakeJanuary   Intake = "january"
	IntakeFebruary  Intake = "february"
	IntakeMarch     Intake = "march"
	IntakeApril     Intake = "april"
	IntakeMay       Intake = "may"
	IntakeJune      Intake = "june"
	IntakeJuly      Intake = "july"
	IntakeAugust    Intake = "august"
	IntakeSeptember Intake = "september"
	IntakeOctober   Intake = "october"
	IntakeNovember  Intake = "november"
	IntakeDecember  Intake = "december"
)

// Intakes in calendar order
var Intakes = []Intake{
	IntakeJanuary, IntakeFebruary, IntakeMarch, IntakeApril, IntakeMay, IntakeJune,
	IntakeJuly, IntakeAugust, IntakeSeptember, IntakeOctober, IntakeNovember, IntakeDecember,
}

// Month maps the intake onto time.Month; zero for an unknown value.
func (i Intake) Month() time.Month {
	for n, v := range Intakes {
		if v == i {
			return time.Month(n + 1)
		}
	}
	return 0
}

package model

import (
	"fmt"
	"time"
)

// Sequence namespaces
const (
	SequenceApplication = "visa.application"
	SequencePayment     = "visa.payment"
	SequenceInvoice     = "visa.invoice"
)

// NewNamePlaceholder is treated like an empty name on create
const NewNamePlaceholder = "New"

// Sequence maps to the sequences table: one monotonic counter per namespace
type Sequence struct {
	Code       string    `gorm:"type:varchar(64);primaryKey"         json:"code"`
	Prefix     string    `gorm:"type:varchar(16);not null"           json:"prefix"`
	Padding    int       `gorm:"not null;default:5"                  json:"padding"`
	NextNumber int64     `gorm:"not null;default:1"                  json:"next_number"`
	UpdatedAt  time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"  json:"updated_at"`
}

func (Sequence) TableName() string { return "sequences" }

// Format renders n with the sequence prefix and zero padding
func (s *Sequence) Format(n int64) string {
	return fmt.Sprintf("%s%0*d", s.Prefix, s.Padding, n)
}

// NeedsName reports whether a create must draw a fresh display name
func NeedsName(name string) bool {
	return name == "" || name == NewNamePlaceholder
}

package model

import (
	"math"
	"time"
)

// InvoiceState lifecycle of an invoice
type InvoiceState string

const (
	InvoiceDraft     InvoiceState = "draft"
	InvoiceSent      InvoiceState = "sent"
	InvoicePaid      InvoiceState = "paid"
	InvoiceCancelled InvoiceState = "cancelled"
)

// Invoice maps to the invoices table. Totals are derived from Lines.
type Invoice struct {
	InvoiceID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invoice_id"`
	Name          string       `gorm:"type:varchar(32);not null;uniqueIndex"          json:"name"`
	StudentID     string       `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ApplicationID *string      `gorm:"type:uuid"                                      json:"application_id,omitempty"`
	PaymentID     *string      `gorm:"type:uuid;index"                                json:"payment_id,omitempty"`
	InvoiceDate   time.Time    `gorm:"type:date;not null"                             json:"invoice_date"`
	DueDate       *time.Time   `gorm:"type:date"                                      json:"due_date,omitempty"`
	State         InvoiceState `gorm:"type:varchar(12);not null;default:'draft'"      json:"state"`
	Subtotal      float64      `gorm:"type:numeric(12,2);not null;default:0"          json:"subtotal"`
	TaxAmount     float64      `gorm:"type:numeric(12,2);not null;default:0"          json:"tax_amount"`
	TotalAmount   float64      `gorm:"type:numeric(12,2);not null;default:0"          json:"total_amount"`
	Notes         string       `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Student *Student      `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
	Lines   []InvoiceLine `gorm:"foreignKey:InvoiceID"                      json:"lines,omitempty"`
}

func (Invoice) TableName() string { return "invoices" }

// RecomputeTotals derives subtotal, tax and total from the lines. The
// header sums the already rounded line amounts.
func (inv *Invoice) RecomputeTotals() {
	var subtotal, tax float64
	for i := range inv.Lines {
		inv.Lines[i].Recompute()
		subtotal += inv.Lines[i].Subtotal
		tax += inv.Lines[i].TaxAmount
	}
	inv.Subtotal = RoundCents(subtotal)
	inv.TaxAmount = RoundCents(tax)
	inv.TotalAmount = RoundCents(inv.Subtotal + inv.TaxAmount)
}

// InvoiceLine maps to the invoice_lines table
type InvoiceLine struct {
	InvoiceLineID string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"invoice_line_id"`
	InvoiceID     string    `gorm:"type:uuid;not null;index"                       json:"invoice_id"`
	Sequence      int       `gorm:"not null;default:10"                            json:"sequence"`
	Description   string    `gorm:"type:varchar(255);not null"                     json:"description"`
	Quantity      float64   `gorm:"type:numeric(12,2);not null;default:1"          json:"quantity"`
	UnitPrice     float64   `gorm:"type:numeric(12,2);not null"                    json:"unit_price"`
	TaxPercentage float64   `gorm:"type:numeric(5,2);not null;default:0"           json:"tax_percentage"`
	Subtotal      float64   `gorm:"type:numeric(12,2);not null;default:0"          json:"subtotal"`
	TaxAmount     float64   `gorm:"type:numeric(12,2);not null;default:0"          json:"tax_amount"`
	Total         float64   `gorm:"type:numeric(12,2);not null;default:0"          json:"total"`
	CreatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"             json:"updated_at"`
}

func (InvoiceLine) TableName() string { return "invoice_lines" }

// Recompute derives subtotal, tax and total of the line, each rounded to cents
func (l *InvoiceLine) Recompute() {
	l.Subtotal = RoundCents(l.Quantity * l.UnitPrice)
	l.TaxAmount = RoundCents(l.Subtotal * l.TaxPercentage / 100)
	l.Total = RoundCents(l.Subtotal + l.TaxAmount)
}

// RoundCents rounds an amount to two decimals, halves away from zero
func RoundCents(v float64) float64 {
	return math.Round(v*100) / 100
}

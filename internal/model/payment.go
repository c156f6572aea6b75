package model

import "time"

// PaymentState lifecycle of a payment
type PaymentState string

const (
	PaymentDraft     PaymentState = "draft"
	PaymentPending   PaymentState = "pending"
	PaymentPaid      PaymentState = "paid"
	PaymentCancelled PaymentState = "cancelled"
)

// PaymentType what a payment is for
type PaymentType string

const (
	PaymentServiceFee    PaymentType = "service_fee"
	PaymentUniversityFee PaymentType = "university_fee"
	PaymentDocumentFee   PaymentType = "document_fee"
	PaymentVisaFee       PaymentType = "visa_fee"
	PaymentOther         PaymentType = "other"
)

var paymentTypeLabels = map[PaymentType]string{
	PaymentServiceFee:    "Service Fee",
	PaymentUniversityFee: "University Application Fee",
	PaymentDocumentFee:   "Document Fee",
	PaymentVisaFee:       "Visa Fee",
	PaymentOther:         "Other",
}

// Label human-readable description, used as the generated invoice line text
func (t PaymentType) Label() string {
	if l, ok := paymentTypeLabels[t]; ok {
		return l
	}
	return string(t)
}

// Valid reports whether t is a known payment type
func (t PaymentType) Valid() bool {
	_, ok := paymentTypeLabels[t]
	return ok
}

// PaymentMethods accepted payment methods
var PaymentMethods = []string{"cash", "bank_transfer", "card", "cheque", "online"}

// Payment maps to the payments table
type Payment struct {
	PaymentID     string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"payment_id"`
	Name          string       `gorm:"type:varchar(32);not null;uniqueIndex"          json:"name"`
	StudentID     string       `gorm:"type:uuid;not null;index"                       json:"student_id"`
	ApplicationID *string      `gorm:"type:uuid;index"                                json:"application_id,omitempty"`
	PaymentType   PaymentType  `gorm:"type:varchar(20);not null"                      json:"payment_type"`
	Amount        float64      `gorm:"type:numeric(12,2);not null"                    json:"amount"`
	PaymentMethod string       `gorm:"type:varchar(20);not null"                      json:"payment_method"`
	PaymentDate   time.Time    `gorm:"type:date;not null"                             json:"payment_date"`
	DueDate       *time.Time   `gorm:"type:date"                                      json:"due_date,omitempty"`
	State         PaymentState `gorm:"type:varchar(12);not null;default:'draft';index" json:"state"`
	BankName      string       `gorm:"type:varchar(100)"                              json:"bank_name,omitempty"`
	TransactionID string       `gorm:"type:varchar(100)"                              json:"transaction_id,omitempty"`
	ChequeNumber  string       `gorm:"type:varchar(50)"                               json:"cheque_number,omitempty"`
	InvoiceID     *string      `gorm:"type:uuid"                                      json:"invoice_id,omitempty"`
	Notes         string       `gorm:"type:text"                                      json:"notes,omitempty"`
	VersionedModel

	Student *Student `gorm:"foreignKey:StudentID;references:StudentID" json:"student,omitempty"`
}

func (Payment) TableName() string { return "payments" }

package dto

import "visa-consultancy/backend/internal/model"

// ── payment ──

// CreatePaymentRequest create a payment. An empty name or "New" draws the next number.
type CreatePaymentRequest struct {
	Name          string  `json:"name"           binding:"omitempty,max=32"`
	StudentID     string  `json:"student_id"     binding:"required,uuid"`
	ApplicationID *string `json:"application_id" binding:"omitempty,uuid"`
	PaymentType   string  `json:"payment_type"   binding:"omitempty,payment_type"`
	Amount        float64 `json:"amount"         binding:"required,gt=0"`
	PaymentMethod string  `json:"payment_method" binding:"required,payment_method"`
	PaymentDate   string  `json:"payment_date"`
	DueDate       string  `json:"due_date"`
	BankName      string  `json:"bank_name"`
	TransactionID string  `json:"transaction_id"`
	ChequeNumber  string  `json:"cheque_number"`
	Notes         string  `json:"notes"`
}

// UpdatePaymentRequest partial update; invoice link and state are not editable
type UpdatePaymentRequest struct {
	ApplicationID *string  `json:"application_id" binding:"omitempty,uuid"`
	PaymentType   *string  `json:"payment_type"   binding:"omitempty,payment_type"`
	Amount        *float64 `json:"amount"         binding:"omitempty,gt=0"`
	PaymentMethod *string  `json:"payment_method" binding:"omitempty,payment_method"`
	PaymentDate   *string  `json:"payment_date"`
	DueDate       *string  `json:"due_date"`
	BankName      *string  `json:"bank_name"`
	TransactionID *string  `json:"transaction_id"`
	ChequeNumber  *string  `json:"cheque_number"`
	Notes         *string  `json:"notes"`
}

// PaymentResponse payment with its type label
type PaymentResponse struct {
	*model.Payment
	PaymentTypeLabel string `json:"payment_type_label"`
}

// ── invoice ──

// InvoiceLineRequest one invoice line
type InvoiceLineRequest struct {
	Sequence      int     `json:"sequence"`
	Description   string  `json:"description"    binding:"required,max=255"`
	Quantity      float64 `json:"quantity"       binding:"omitempty,gt=0"`
	UnitPrice     float64 `json:"unit_price"     binding:"min=0"`
	TaxPercentage float64 `json:"tax_percentage" binding:"min=0,max=100"`
}

// CreateInvoiceRequest create a manual invoice. An empty name or "New" draws the next number.
type CreateInvoiceRequest struct {
	Name          string               `json:"name"           binding:"omitempty,max=32"`
	StudentID     string               `json:"student_id"     binding:"required,uuid"`
	ApplicationID *string              `json:"application_id" binding:"omitempty,uuid"`
	InvoiceDate   string               `json:"invoice_date"`
	DueDate       string               `json:"due_date"`
	Notes         string               `json:"notes"`
	Lines         []InvoiceLineRequest `json:"lines"          binding:"dive"`
}

// UpdateInvoiceRequest header update; totals are always derived from lines
type UpdateInvoiceRequest struct {
	InvoiceDate *string `json:"invoice_date"`
	DueDate     *string `json:"due_date"`
	Notes       *string `json:"notes"`
}

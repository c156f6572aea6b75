package workflow

import (
	"fmt"

	"visa-consultancy/backend/internal/model"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// PaymentAction operator action on a payment
type PaymentAction string

const (
	ActionConfirmPayment  PaymentAction = "confirm"
	ActionMarkPaymentPaid PaymentAction = "mark_paid"
	ActionCancelPayment   PaymentAction = "cancel"
	ActionResetPayment    PaymentAction = "reset_draft"
	ActionGenerateInvoice PaymentAction = "generate_invoice"
)

// ErrInvoiceExists manual invoice generation on a payment that already has one
var ErrInvoiceExists = fmt.Errorf("%w: Invoice already exists", pkgerrors.ErrGuardViolation)

var paymentStates = map[model.PaymentState]bool{
	model.PaymentDraft:     true,
	model.PaymentPending:   true,
	model.PaymentPaid:      true,
	model.PaymentCancelled: true,
}

// PaymentFacts what the payment actions look at
type PaymentFacts struct {
	HasInvoice bool
}

// PaymentTransition outcome of a payment action
type PaymentTransition struct {
	To                 model.PaymentState // empty leaves the state alone
	GenerateInvoice    bool
	CascadeInvoicePaid bool
}

// NextPayment decides what action does to a payment.
//
// confirm generates an invoice only when none is linked yet and never fails
// on that account; generate_invoice fails instead. mark_paid pushes the linked
// invoice to paid.
func NextPayment(from model.PaymentState, action PaymentAction, facts PaymentFacts) (PaymentTransition, error) {
	if !paymentStates[from] {
		return PaymentTransition{}, fmt.Errorf("%w: payment %q", ErrUnknownState, from)
	}

	switch action {
	case ActionConfirmPayment:
		return PaymentTransition{To: model.PaymentPending, GenerateInvoice: !facts.HasInvoice}, nil
	case ActionMarkPaymentPaid:
		return PaymentTransition{To: model.PaymentPaid, CascadeInvoicePaid: facts.HasInvoice}, nil
	case ActionCancelPayment:
		return PaymentTransition{To: model.PaymentCancelled}, nil
	case ActionResetPayment:
		return PaymentTransition{To: model.PaymentDraft}, nil
	case ActionGenerateInvoice:
		if facts.HasInvoice {
			return PaymentTransition{}, ErrInvoiceExists
		}
		return PaymentTransition{GenerateInvoice: true}, nil
	}
	return PaymentTransition{}, fmt.Errorf("%w: payment %q", ErrUnknownAction, action)
}

// Apply writes the state change onto p
func (t PaymentTransition) Apply(p *model.Payment) {
	if t.To != "" {
		p.State = t.To
	}
}

// InvoiceFromPayment synthesizes the draft invoice for p with its single line.
// The caller assigns the invoice name and links the result back onto p.
func InvoiceFromPayment(p *model.Payment) *model.Invoice {
	paymentID := p.PaymentID
	inv := &model.Invoice{
		StudentID:     p.StudentID,
		ApplicationID: p.ApplicationID,
		PaymentID:     &paymentID,
		InvoiceDate:   p.PaymentDate,
		State:         model.InvoiceDraft,
		Notes:         "Payment for: " + p.Name,
		Lines: []model.InvoiceLine{{
			Sequence:      10,
			Description:   p.PaymentType.Label(),
			Quantity:      1,
			UnitPrice:     p.Amount,
			TaxPercentage: 0,
		}},
	}
	inv.RecomputeTotals()
	return inv
}

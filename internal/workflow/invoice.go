package workflow

import (
	"fmt"

	"visa-consultancy/backend/internal/model"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// InvoiceAction operator action on an invoice
type InvoiceAction string

const (
	ActionSendInvoice     InvoiceAction = "send"
	ActionMarkInvoicePaid InvoiceAction = "mark_paid"
	ActionCancelInvoice   InvoiceAction = "cancel"
	ActionResetInvoice    InvoiceAction = "reset_draft"
)

// ErrInvoiceNotDraft line edits on an invoice that left draft
var ErrInvoiceNotDraft = fmt.Errorf("%w: invoice lines can only be changed while the invoice is a draft", pkgerrors.ErrGuardViolation)

var invoiceStates = map[model.InvoiceState]bool{
	model.InvoiceDraft:     true,
	model.InvoiceSent:      true,
	model.InvoicePaid:      true,
	model.InvoiceCancelled: true,
}

// NextInvoice decides the state an invoice action leads to.
// Paying an invoice never touches its payment.
func NextInvoice(from model.InvoiceState, action InvoiceAction) (model.InvoiceState, error) {
	if !invoiceStates[from] {
		return "", fmt.Errorf("%w: invoice %q", ErrUnknownState, from)
	}

	switch action {
	case ActionSendInvoice:
		return model.InvoiceSent, nil
	case ActionMarkInvoicePaid:
		return model.InvoicePaid, nil
	case ActionCancelInvoice:
		return model.InvoiceCancelled, nil
	case ActionResetInvoice:
		return model.InvoiceDraft, nil
	}
	return "", fmt.Errorf("%w: invoice %q", ErrUnknownAction, action)
}

// CheckLinesEditable guards line mutations
func CheckLinesEditable(state model.InvoiceState) error {
	if state != model.InvoiceDraft {
		return ErrInvoiceNotDraft
	}
	return nil
}

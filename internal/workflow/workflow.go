// Package workflow holds the per-entity state machines as pure functions.
// Nothing here touches storage; services load the facts a guard needs,
// ask for the transition, then persist it.
package workflow

import (
	"fmt"

	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// Entity labels used by callers for metrics and logs
const (
	EntityStudent     = "student"
	EntityApplication = "application"
	EntityDocument    = "document"
	EntityPayment     = "payment"
	EntityInvoice     = "invoice"
)

var (
	ErrUnknownAction = fmt.Errorf("%w: unknown action", pkgerrors.ErrValidation)
	ErrUnknownState  = fmt.Errorf("%w: unknown state", pkgerrors.ErrValidation)
)

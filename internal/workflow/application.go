package workflow

import (
	"fmt"
	"time"

	"visa-consultancy/backend/internal/model"
	pkgerrors "visa-consultancy/backend/pkg/errors"
)

// ApplicationAction operator action on an application
type ApplicationAction string

const (
	ActionSubmit             ApplicationAction = "submit"
	ActionVerifyDocuments    ApplicationAction = "verify_documents"
	ActionSubmitToUniversity ApplicationAction = "submit_to_university"
	ActionOfferReceived      ApplicationAction = "offer_received"
	ActionAcceptOffer        ApplicationAction = "accept_offer"
	ActionFileVisa           ApplicationAction = "file_visa"
	ActionApproveVisa        ApplicationAction = "approve_visa"
	ActionRejectApplication  ApplicationAction = "reject"
	ActionCancelApplication  ApplicationAction = "cancel"
	ActionSetDraft           ApplicationAction = "set_draft"
)

// ApplicationActions every action, in lifecycle order
var ApplicationActions = []ApplicationAction{
	ActionSubmit, ActionVerifyDocuments, ActionSubmitToUniversity, ActionOfferReceived,
	ActionAcceptOffer, ActionFileVisa, ActionApproveVisa, ActionRejectApplication,
	ActionCancelApplication, ActionSetDraft,
}

var (
	ErrNoDocuments          = fmt.Errorf("%w: add documents before submitting the application", pkgerrors.ErrGuardViolation)
	ErrDocumentsNotVerified = fmt.Errorf("%w: verify all documents before proceeding", pkgerrors.ErrGuardViolation)
)

// ApplicationFacts what the guards read about an application's surroundings
type ApplicationFacts struct {
	DocumentStates []model.DocumentState
}

// ApplicationTransition outcome of an allowed action
type ApplicationTransition struct {
	To              model.ApplicationState
	Outcome         model.ApplicationOutcome // empty keeps the current outcome
	StampSubmission bool
	StampResponse   bool
	CompleteStudent bool
}

// NextApplication decides what action does to an application in state from.
// Every action is reachable from every state; only submit and
// verify_documents are guarded, both on the application's documents.
func NextApplication(from model.ApplicationState, action ApplicationAction, facts ApplicationFacts) (ApplicationTransition, error) {
	if !from.Valid() {
		return ApplicationTransition{}, fmt.Errorf("%w: application %q", ErrUnknownState, from)
	}

	switch action {
	case ActionSubmit:
		if len(facts.DocumentStates) == 0 {
			return ApplicationTransition{}, ErrNoDocuments
		}
		return ApplicationTransition{To: model.ApplicationDocumentVerification, StampSubmission: true}, nil
	case ActionVerifyDocuments:
		for _, s := range facts.DocumentStates {
			if s != model.DocumentVerified {
				return ApplicationTransition{}, ErrDocumentsNotVerified
			}
		}
		return ApplicationTransition{To: model.ApplicationSubmitted}, nil
	case ActionSubmitToUniversity:
		return ApplicationTransition{To: model.ApplicationInProgress}, nil
	case ActionOfferReceived:
		return ApplicationTransition{To: model.ApplicationOfferReceived, StampResponse: true}, nil
	case ActionAcceptOffer:
		return ApplicationTransition{To: model.ApplicationOfferAccepted}, nil
	case ActionFileVisa:
		return ApplicationTransition{To: model.ApplicationVisaFiled}, nil
	case ActionApproveVisa:
		return ApplicationTransition{To: model.ApplicationVisaApproved, Outcome: model.OutcomeAccepted, CompleteStudent: true}, nil
	case ActionRejectApplication:
		return ApplicationTransition{To: model.ApplicationRejected, Outcome: model.OutcomeRejected}, nil
	case ActionCancelApplication:
		return ApplicationTransition{To: model.ApplicationCancelled}, nil
	case ActionSetDraft:
		// recorded dates are kept as they are
		return ApplicationTransition{To: model.ApplicationDraft}, nil
	}
	return ApplicationTransition{}, fmt.Errorf("%w: application %q", ErrUnknownAction, action)
}

// Apply writes the transition onto app, stamping dates with today
func (t ApplicationTransition) Apply(app *model.Application, today time.Time) {
	app.State = t.To
	if t.Outcome != "" {
		app.Outcome = t.Outcome
	}
	if t.StampSubmission {
		d := today
		app.SubmissionDate = &d
	}
	if t.StampResponse {
		d := today
		app.UniversityResponseDate = &d
	}
}

package workflow

import (
	"fmt"
	"time"

	"visa-consultancy/backend/internal/model"
)

// DocumentAction operator action on a document
type DocumentAction string

const (
	ActionReceiveDocument DocumentAction = "receive"
	ActionVerifyDocument  DocumentAction = "verify"
	ActionRejectDocument  DocumentAction = "reject"
	ActionResetDocument   DocumentAction = "reset"
)

var documentStates = map[model.DocumentState]bool{
	model.DocumentPending:  true,
	model.DocumentReceived: true,
	model.DocumentVerified: true,
	model.DocumentRejected: true,
}

// DocumentTransition outcome of a document action
type DocumentTransition struct {
	To                model.DocumentState
	StampSubmission   bool
	StampVerification bool
}

// NextDocument decides what action does to a document. Verification is a
// manual flip, so no action is guarded.
func NextDocument(from model.DocumentState, action DocumentAction) (DocumentTransition, error) {
	if !documentStates[from] {
		return DocumentTransition{}, fmt.Errorf("%w: document %q", ErrUnknownState, from)
	}

	switch action {
	case ActionReceiveDocument:
		return DocumentTransition{To: model.DocumentReceived, StampSubmission: true}, nil
	case ActionVerifyDocument:
		return DocumentTransition{To: model.DocumentVerified, StampVerification: true}, nil
	case ActionRejectDocument:
		return DocumentTransition{To: model.DocumentRejected}, nil
	case ActionResetDocument:
		return DocumentTransition{To: model.DocumentPending}, nil
	}
	return DocumentTransition{}, fmt.Errorf("%w: document %q", ErrUnknownAction, action)
}

// Apply writes the transition onto doc. actor is recorded as the verifier.
func (t DocumentTransition) Apply(doc *model.Document, today time.Time, actor string) {
	doc.State = t.To
	if t.StampSubmission {
		d := today
		doc.SubmissionDate = &d
	}
	if t.StampVerification {
		d := today
		doc.VerificationDate = &d
		if actor != "" {
			a := actor
			doc.VerifiedBy = &a
		}
	}
}

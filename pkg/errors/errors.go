package errors

import "errors"

// ErrOptimisticLock the record was changed by another writer since it was read
var ErrOptimisticLock = errors.New("record was modified by another operation, reload and retry")

// Error kinds. Services wrap one of these in their own sentinels
// (fmt.Errorf("%w: ...", ErrGuardViolation)) so callers can match either the
// exact failure or its kind.
var (
	// ErrValidation data-integrity violation caught at write time; nothing is persisted
	ErrValidation = errors.New("validation error")
	// ErrGuardViolation workflow precondition unmet; state is left unchanged
	ErrGuardViolation = errors.New("action not allowed")
	// ErrNotFound reference to a nonexistent record
	ErrNotFound = errors.New("not found")
	// ErrAccessDenied permission failure reported by the authorization layer
	ErrAccessDenied = errors.New("access denied")
)

// Kind returns the error kind wrapped by err, or nil when err carries none.
func Kind(err error) error {
	for _, k := range []error{ErrValidation, ErrGuardViolation, ErrNotFound, ErrAccessDenied, ErrOptimisticLock} {
		if errors.Is(err, k) {
			return k
		}
	}
	return nil
}

package workflow

import (
	"fmt"

	"visa-consultancy/backend/internal/model"
)

// StudentAction operator action on a student record
type StudentAction string

const (
	ActionSetRegistered StudentAction = "set_registered"
	ActionSetInProcess  StudentAction = "set_in_process"
	ActionSetCompleted  StudentAction = "set_completed"
)

var studentStates = map[model.StudentState]bool{
	model.StudentInquiry:    true,
	model.StudentRegistered: true,
	model.StudentInProcess:  true,
	model.StudentCompleted:  true,
	model.StudentCancelled:  true,
}

// NextStudent decides the state a student action leads to; none is guarded
func NextStudent(from model.StudentState, action StudentAction) (model.StudentState, error) {
	if !studentStates[from] {
		return "", fmt.Errorf("%w: student %q", ErrUnknownState, from)
	}

	switch action {
	case ActionSetRegistered:
		return model.StudentRegistered, nil
	case ActionSetInProcess:
		return model.StudentInProcess, nil
	case ActionSetCompleted:
		return model.StudentCompleted, nil
	}
	return "", fmt.Errorf("%w: student %q", ErrUnknownAction, action)
}

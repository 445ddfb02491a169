package workflows

// Project review statuses.
const (
	StatusUnderValidation = "UNDER_VALIDATION"
	StatusVerified        = "VERIFIED"
	StatusRejected        = "REJECTED"
)

// StateMachine enforces project review status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
}

// NewStateMachine creates a new state machine with allowed transitions.
// Both decision outcomes are terminal: a reviewed project is never re-opened,
// a superseding re-submission is a new project.
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			StatusUnderValidation: {StatusVerified, StatusRejected},
			StatusVerified:        {},
			StatusRejected:        {},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether a status permits no further transitions
func (sm *StateMachine) IsTerminal(status string) bool {
	return len(sm.allowedTransitions[status]) == 0
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

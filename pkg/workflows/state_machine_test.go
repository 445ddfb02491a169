package workflows

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	sm := NewStateMachine()

	assert.True(t, sm.CanTransition(StatusUnderValidation, StatusVerified))
	assert.True(t, sm.CanTransition(StatusUnderValidation, StatusRejected))

	// Decisions are terminal
	assert.False(t, sm.CanTransition(StatusVerified, StatusRejected))
	assert.False(t, sm.CanTransition(StatusVerified, StatusUnderValidation))
	assert.False(t, sm.CanTransition(StatusRejected, StatusVerified))

	// Unknown states are never valid sources
	assert.False(t, sm.CanTransition("DRAFT", StatusVerified))
}

func TestIsTerminal(t *testing.T) {
	sm := NewStateMachine()

	assert.False(t, sm.IsTerminal(StatusUnderValidation))
	assert.True(t, sm.IsTerminal(StatusVerified))
	assert.True(t, sm.IsTerminal(StatusRejected))
}

func TestGetAllowedTransitions(t *testing.T) {
	sm := NewStateMachine()

	assert.ElementsMatch(t, []string{StatusVerified, StatusRejected}, sm.GetAllowedTransitions(StatusUnderValidation))
	assert.Empty(t, sm.GetAllowedTransitions(StatusVerified))
	assert.Empty(t, sm.GetAllowedTransitions("UNKNOWN"))
}

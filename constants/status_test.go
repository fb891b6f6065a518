package constants

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusTransitions(t *testing.T) {
	assert.True(t, CanTransition(StatusUploaded, StatusProcessing))
	assert.True(t, CanTransition(StatusUploaded, StatusFailed))
	assert.True(t, CanTransition(StatusProcessing, StatusCompleted))
	assert.True(t, CanTransition(StatusProcessing, StatusFailed))

	// forward-only: nothing leaves a terminal state
	for _, terminal := range []ProcessingStatus{StatusCompleted, StatusFailed} {
		for _, to := range []ProcessingStatus{StatusUploaded, StatusProcessing, StatusCompleted, StatusFailed} {
			assert.False(t, CanTransition(terminal, to), "%s -> %s", terminal, to)
		}
	}

	assert.False(t, CanTransition(StatusUploaded, StatusCompleted))
	assert.False(t, CanTransition(StatusProcessing, StatusUploaded))
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusFailed.Terminal())
	assert.False(t, StatusUploaded.Terminal())
	assert.False(t, StatusProcessing.Terminal())
}

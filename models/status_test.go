package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from WorkStatus
		to   WorkStatus
		want bool
	}{
		{StatusWorkNotStarted, StatusWorkInProgress, true},
		{StatusWorkInProgress, StatusWorkCompleted, true},
		{StatusWorkInProgress, StatusWorkStopped, true},
		{StatusWorkStopped, StatusWorkInProgress, true},
		{StatusWorkInProgress, StatusWorkInProgress, true},
		{StatusTechnicalApprovalPending, StatusWorkCancelled, true},

		{StatusWorkCompleted, StatusWorkInProgress, false},
		{StatusWorkCancelled, StatusWorkNotStarted, false},
		{StatusWorkNotStarted, StatusWorkCompleted, false},
		{StatusTechnicalApprovalPending, StatusWorkInProgress, false},
		{StatusWorkOrderPending, StatusWorkNotStarted, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+" -> "+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestAllowedNextStatesForLegacyStatus(t *testing.T) {
	next := AllowedNextStates("Awaiting Site Visit")
	assert.ElementsMatch(t, []WorkStatus{StatusWorkNotStarted, StatusWorkCancelled}, next)
	assert.True(t, CanTransition("Awaiting Site Visit", StatusWorkNotStarted))
	assert.False(t, CanTransition("Awaiting Site Visit", StatusWorkCompleted))
}

func TestIsWorkStatus(t *testing.T) {
	for _, s := range WorkStatuses {
		assert.True(t, IsWorkStatus(s), s)
	}
	assert.False(t, IsWorkStatus(StatusTenderPending))
	assert.False(t, IsWorkStatus("Done"))
}

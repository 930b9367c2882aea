package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"

	ucBooking "github.com/consultahub/consulta-scheduler/internal/usecase/booking"
)

func TestOutcomeForStatus(t *testing.T) {
	tests := []struct {
		status   string
		outcome  string
		terminal bool
	}{
		{"approved", ucBooking.OutcomeSuccess, true},
		{"rejected", ucBooking.OutcomeFailure, true},
		{"cancelled", ucBooking.OutcomeFailure, true},
		{"refunded", ucBooking.OutcomeFailure, true},
		{"charged_back", ucBooking.OutcomeFailure, true},

		// Settling statuses must not touch the booking: acting on them would
		// tear down a booking whose approval is still on the way.
		{"pending", "", false},
		{"in_process", "", false},
		{"in_mediation", "", false},
		{"authorized", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			outcome, terminal := outcomeForStatus(tt.status)
			assert.Equal(t, tt.outcome, outcome)
			assert.Equal(t, tt.terminal, terminal)
		})
	}
}

package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStates = []ChargerState{StateIdle, StateCurrentConfigured, StateCharging, StateBidirectional}

// Every command yields the same transition from every state: the table is a
// total function with last-write-wins semantics.
func TestTransitionIsTotal(t *testing.T) {
	expectations := []struct {
		cmd    Command
		next   ChargerState
		status string
	}{
		{Command{Kind: SetCurrent, Amps: 32}, StateCurrentConfigured, StatusCurrentSet},
		{Command{Kind: StartCharge}, StateCharging, StatusChargingStarted},
		{Command{Kind: EnableBidirectional}, StateBidirectional, StatusV2GEnabled},
		{Command{Kind: Stop}, StateIdle, StatusChargingStopped},
	}
	for _, state := range allStates {
		for _, exp := range expectations {
			next, status := Transition(state, exp.cmd)
			assert.Equal(t, exp.next, next, "from %s with %s", state, exp.cmd.Kind)
			assert.Equal(t, exp.status, status, "from %s with %s", state, exp.cmd.Kind)
		}
	}
}

func TestStopAlwaysReturnsToIdle(t *testing.T) {
	for _, state := range allStates {
		next, status := Transition(state, Command{Kind: Stop})
		assert.Equal(t, StateIdle, next)
		assert.Equal(t, StatusChargingStopped, status)
	}
}

func TestNewStatusEvent(t *testing.T) {
	ev := NewStatusEvent(StatusChargingStarted)
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, StatusChargingStarted, ev.Message)
	assert.False(t, ev.Time.IsZero())

	other := NewStatusEvent(StatusChargingStarted)
	assert.NotEqual(t, ev.ID, other.ID)
}

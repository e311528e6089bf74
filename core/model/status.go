package model

import (
	"time"

	"github.com/google/uuid"
)

// StatusEvent is an observation emitted after a transition or heartbeat.
// Events are immutable once published; the channel may deliver them to zero
// or more observers.
type StatusEvent struct {
	ID      string
	Message string
	Time    time.Time
}

// NewStatusEvent stamps a status message with an identifier and the emission
// time.
func NewStatusEvent(message string) StatusEvent {
	return StatusEvent{ID: uuid.NewString(), Message: message, Time: time.Now()}
}

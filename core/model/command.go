package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CommandKind identifies a RAPI command understood by the charger.
type CommandKind int

const (
	SetCurrent CommandKind = iota
	StartCharge
	EnableBidirectional
	Stop
)

func (k CommandKind) String() string {
	switch k {
	case SetCurrent:
		return "set_current"
	case StartCharge:
		return "start_charge"
	case EnableBidirectional:
		return "enable_bidirectional"
	case Stop:
		return "stop"
	default:
		return "unknown"
	}
}

// Suffix returns the RAPI topic suffix the command travels under.
func (k CommandKind) Suffix() string {
	switch k {
	case SetCurrent:
		return "$SC"
	case StartCharge:
		return "$FE"
	case EnableBidirectional:
		return "$V2G"
	case Stop:
		return "$FS"
	default:
		return ""
	}
}

// Command is an immutable instruction sent to the charger. Amps carries the
// target current for SetCurrent; a negative value denotes export toward the
// grid. Other kinds ignore Amps.
type Command struct {
	Kind CommandKind
	Amps float64
}

// Payload returns the wire form of the command payload.
func (c Command) Payload() string {
	switch c.Kind {
	case SetCurrent:
		return strconv.FormatFloat(c.Amps, 'f', -1, 64)
	case EnableBidirectional:
		return "1"
	default:
		return ""
	}
}

// ErrMalformedCommand marks inbound messages on the command namespace that
// cannot be decoded. The charger drops them without touching its state.
var ErrMalformedCommand = errors.New("malformed command")

// DecodeCommand maps a RAPI topic suffix and payload to a tagged Command.
// Decoding happens once at the channel boundary; everything downstream
// dispatches on Kind instead of comparing topic strings.
func DecodeCommand(suffix, payload string) (Command, error) {
	switch suffix {
	case "$SC":
		amps, err := strconv.ParseFloat(strings.TrimSpace(payload), 64)
		if err != nil {
			return Command{}, fmt.Errorf("%w: bad $SC payload %q", ErrMalformedCommand, payload)
		}
		return Command{Kind: SetCurrent, Amps: amps}, nil
	case "$FE":
		return Command{Kind: StartCharge}, nil
	case "$V2G":
		return Command{Kind: EnableBidirectional}, nil
	case "$FS":
		return Command{Kind: Stop}, nil
	default:
		return Command{}, fmt.Errorf("%w: unknown suffix %q", ErrMalformedCommand, suffix)
	}
}

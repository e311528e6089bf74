package model

// ChargerState is the charger's authoritative operating mode. It is owned
// and mutated only by the charger engine; observers infer it from published
// status text.
type ChargerState int

const (
	StateIdle ChargerState = iota
	StateCurrentConfigured
	StateCharging
	StateBidirectional
)

func (s ChargerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateCurrentConfigured:
		return "current_configured"
	case StateCharging:
		return "charging"
	case StateBidirectional:
		return "bidirectional"
	default:
		return "unknown"
	}
}

// Status texts published by the charger. They match the OpenEVSE simulator
// wire format exactly and are what the controller keys its handshake on.
const (
	StatusCurrentSet      = "Charging current set"
	StatusChargingStarted = "Charging started"
	StatusV2GEnabled      = "V2G mode enabled"
	StatusChargingStopped = "Charging stopped"
	StatusIdleHeartbeat   = "Charger is idle"
)

// Transition applies cmd to state and returns the new state with the status
// text to publish. Every command is accepted from every state: the modeled
// charger treats commands as mode assignments, so the function is total and
// last-write-wins.
func Transition(state ChargerState, cmd Command) (ChargerState, string) {
	switch cmd.Kind {
	case SetCurrent:
		return StateCurrentConfigured, StatusCurrentSet
	case StartCharge:
		return StateCharging, StatusChargingStarted
	case EnableBidirectional:
		return StateBidirectional, StatusV2GEnabled
	case Stop:
		return StateIdle, StatusChargingStopped
	default:
		return state, ""
	}
}

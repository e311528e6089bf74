package charger

import (
	"math"
	"sync"
	"time"
)

// BatteryConfig describes the simulated pack attached to the charger.
type BatteryConfig struct {
	CapacityKWh     float64 `json:"capacity_kwh"`
	InitialSoC      float64 `json:"initial_soc"`
	ChargeRateKW    float64 `json:"charge_rate_kw"`
	DischargeRateKW float64 `json:"discharge_rate_kw"`
}

// Battery models the pack with charge and discharge rate caps. Positive
// power charges the pack from the grid, negative power exports stored
// energy.
type Battery struct {
	capacityKWh     float64
	chargeRateKW    float64
	dischargeRateKW float64

	mu  sync.Mutex
	soc float64 // [0,1]
}

// NewBattery builds a Battery from its configuration.
func NewBattery(cfg BatteryConfig) *Battery {
	return &Battery{
		capacityKWh:     cfg.CapacityKWh,
		chargeRateKW:    cfg.ChargeRateKW,
		dischargeRateKW: cfg.DischargeRateKW,
		soc:             cfg.InitialSoC,
	}
}

// ApplyPower integrates powerKW over dt and returns the power actually
// applied after rate and capacity limits.
func (b *Battery) ApplyPower(powerKW float64, dt time.Duration) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	hours := dt.Hours()
	if hours <= 0 || b.capacityKWh <= 0 {
		return 0
	}

	actual := powerKW
	if powerKW > 0 { // charge
		if actual > b.chargeRateKW {
			actual = b.chargeRateKW
		}
		room := (1 - b.soc) * b.capacityKWh
		energy := actual * hours
		if energy > room {
			energy = room
			actual = energy / hours
		}
		b.soc += energy / b.capacityKWh
	} else if powerKW < 0 { // export
		p := math.Abs(powerKW)
		if p > b.dischargeRateKW {
			p = b.dischargeRateKW
		}
		stored := b.soc * b.capacityKWh
		energy := p * hours
		if energy > stored {
			energy = stored
			p = energy / hours
		}
		b.soc -= energy / b.capacityKWh
		actual = -p
	}

	if b.soc < 0 {
		b.soc = 0
	}
	if b.soc > 1 {
		b.soc = 1
	}
	return actual
}

// StateOfCharge returns the current SoC in [0,1].
func (b *Battery) StateOfCharge() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.soc
}

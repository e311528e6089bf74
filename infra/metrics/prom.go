package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/kilianp07/evse-sim/core/metrics"
	"github.com/kilianp07/evse-sim/core/model"
)

// PromSink records charger activity in Prometheus metrics.
type PromSink struct {
	commands   *prometheus.CounterVec
	malformed  prometheus.Counter
	heartbeats prometheus.Counter
	state      *prometheus.GaugeVec
	amps       prometheus.Gauge
	volts      prometheus.Gauge
	wattHours  prometheus.Gauge
}

// NewPromSink registers charger metrics on the provided registerer. If reg
// is nil, the default registerer is used. Already registered collectors are
// reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "charger_commands_total",
			Help: "Total number of commands processed by the charger",
		}, []string{"kind"}),
		malformed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charger_malformed_messages_total",
			Help: "Total number of unparsable messages dropped at the command boundary",
		}),
		heartbeats: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "charger_heartbeats_total",
			Help: "Total number of idle heartbeats published",
		}),
		state: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "charger_state",
			Help: "Current charger operating mode (1 for the active state)",
		}, []string{"state"}),
		amps: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "charger_amps",
			Help: "Last published charging current in amperes (negative exports)",
		}),
		volts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "charger_volts",
			Help: "Nominal charging voltage",
		}),
		wattHours: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "charger_watt_hours",
			Help: "Accumulated energy transferred in watt hours",
		}),
	}

	if err := register(reg, &s.commands); err != nil {
		return nil, err
	}
	if err := register(reg, &s.malformed); err != nil {
		return nil, err
	}
	if err := register(reg, &s.heartbeats); err != nil {
		return nil, err
	}
	if err := register(reg, &s.state); err != nil {
		return nil, err
	}
	if err := register(reg, &s.amps); err != nil {
		return nil, err
	}
	if err := register(reg, &s.volts); err != nil {
		return nil, err
	}
	if err := register(reg, &s.wattHours); err != nil {
		return nil, err
	}
	return s, nil
}

// register registers *c, reusing the existing collector when one with the
// same descriptor is already present.
func register[C prometheus.Collector](reg prometheus.Registerer, c *C) error {
	if err := reg.Register(*c); err != nil {
		are, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return err
		}
		existing, ok := are.ExistingCollector.(C)
		if !ok {
			return err
		}
		*c = existing
	}
	return nil
}

// RecordCommand increments the command counter for the given kind.
func (s *PromSink) RecordCommand(kind string) {
	s.commands.WithLabelValues(kind).Inc()
}

// RecordMalformed counts a dropped message.
func (s *PromSink) RecordMalformed() {
	s.malformed.Inc()
}

// RecordHeartbeat counts an idle heartbeat.
func (s *PromSink) RecordHeartbeat() {
	s.heartbeats.Inc()
}

// RecordState marks the active state gauge, clearing the previous one.
func (s *PromSink) RecordState(state string) {
	for _, st := range []model.ChargerState{
		model.StateIdle, model.StateCurrentConfigured, model.StateCharging, model.StateBidirectional,
	} {
		s.state.WithLabelValues(st.String()).Set(0)
	}
	s.state.WithLabelValues(state).Set(1)
}

// RecordTelemetry updates the electrical gauges.
func (s *PromSink) RecordTelemetry(t coremetrics.Telemetry) error {
	s.amps.Set(t.Amps)
	s.volts.Set(t.Volts)
	s.wattHours.Set(t.WattHours)
	return nil
}

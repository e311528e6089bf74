package charger

import (
	"context"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/kilianp07/evse-sim/core/logger"
	"github.com/kilianp07/evse-sim/core/metrics"
	"github.com/kilianp07/evse-sim/core/model"
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
)

const (
	defaultHeartbeatPeriod = 5 * time.Second
	defaultTelemetryPeriod = 5 * time.Second
	defaultNominalVoltage  = 230
)

// Config holds the resolved runtime parameters of the charger engine.
type Config struct {
	Topics          coremqtt.Topics
	HeartbeatPeriod time.Duration
	TelemetryPeriod time.Duration
	NominalVoltage  float64
	Battery         BatteryConfig
}

// Charger is the protocol engine: it consumes RAPI commands from the
// channel, owns the single ChargerState, and emits status and telemetry.
type Charger struct {
	bus       coremqtt.PubSub
	topics    coremqtt.Topics
	log       logger.Logger
	sink      metrics.Sink
	battery   *Battery
	voltage   float64
	heartbeat time.Duration
	telemetry time.Duration

	mu    sync.Mutex
	state model.ChargerState
	amps  float64
	wh    float64
}

// New creates a Charger in the Idle state. It does not touch the channel
// until Start is called.
func New(bus coremqtt.PubSub, cfg Config, log logger.Logger, sink metrics.Sink) *Charger {
	if cfg.HeartbeatPeriod <= 0 {
		cfg.HeartbeatPeriod = defaultHeartbeatPeriod
	}
	if cfg.TelemetryPeriod <= 0 {
		cfg.TelemetryPeriod = defaultTelemetryPeriod
	}
	if cfg.NominalVoltage <= 0 {
		cfg.NominalVoltage = defaultNominalVoltage
	}
	if sink == nil {
		sink = metrics.NopSink{}
	}
	return &Charger{
		bus:       bus,
		topics:    cfg.Topics,
		log:       log,
		sink:      sink,
		battery:   NewBattery(cfg.Battery),
		voltage:   cfg.NominalVoltage,
		heartbeat: cfg.HeartbeatPeriod,
		telemetry: cfg.TelemetryPeriod,
		state:     model.StateIdle,
	}
}

// Start subscribes to the inbound command namespace.
func (c *Charger) Start() error {
	return c.bus.Subscribe(c.topics.CommandWildcard(), c.onCommand)
}

// Run drives the heartbeat and telemetry tickers until ctx is canceled.
// Command handling happens on the transport's callback goroutine; the two
// activities only meet at the state mutex, so neither delays the other
// beyond the critical section.
func (c *Charger) Run(ctx context.Context) error {
	hb := time.NewTicker(c.heartbeat)
	defer hb.Stop()
	tel := time.NewTicker(c.telemetry)
	defer tel.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hb.C:
			c.emitHeartbeat()
		case now := <-tel.C:
			c.emitTelemetry(now.Sub(last))
			last = now
		}
	}
}

// State returns a snapshot of the operating mode.
func (c *Charger) State() model.ChargerState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Battery exposes the simulated pack, mainly for observability.
func (c *Charger) Battery() *Battery { return c.battery }

func (c *Charger) onCommand(topic string, payload []byte) {
	suffix := c.topics.CommandSuffix(topic)
	cmd, err := model.DecodeCommand(suffix, string(payload))
	if err != nil {
		// Malformed input is contained here: no state change, no status.
		c.sink.RecordMalformed()
		c.log.Warnf("ignoring message on %s: %v", topic, err)
		return
	}
	c.apply(cmd)
}

// apply transitions the state and publishes the resulting status. The
// publish happens inside the critical section so the status hits the wire
// before the next command is accepted.
func (c *Charger) apply(cmd model.Command) {
	c.mu.Lock()
	next, status := model.Transition(c.state, cmd)
	c.state = next
	switch cmd.Kind {
	case model.SetCurrent:
		c.amps = cmd.Amps
	case model.Stop:
		c.amps = 0
	}
	if err := c.bus.Publish(c.topics.Status(), []byte(status)); err != nil {
		c.log.Errorf("publish status: %v", err)
	}
	c.mu.Unlock()

	c.log.Infof("%s -> %s (%s)", cmd.Kind, next, status)
	c.sink.RecordCommand(cmd.Kind.String())
	c.sink.RecordState(next.String())
}

func (c *Charger) emitHeartbeat() {
	if err := c.bus.Publish(c.topics.Status(), []byte(model.StatusIdleHeartbeat)); err != nil {
		c.log.Errorf("publish heartbeat: %v", err)
	}
	c.sink.RecordHeartbeat()
}

// emitTelemetry integrates the battery over the elapsed interval and
// publishes the amp, volt and Wh readings as plain decimal strings.
func (c *Charger) emitTelemetry(dt time.Duration) {
	c.mu.Lock()
	amps := 0.0
	if c.state == model.StateCharging || c.state == model.StateBidirectional {
		amps = c.amps
	}
	c.mu.Unlock()

	applied := c.battery.ApplyPower(amps*c.voltage/1000, dt)
	delta := math.Abs(applied) * dt.Hours() * 1000

	c.mu.Lock()
	c.wh += delta
	wh := c.wh
	c.mu.Unlock()

	for topic, value := range map[string]float64{
		c.topics.Amp():  amps,
		c.topics.Volt(): c.voltage,
		c.topics.Wh():   wh,
	} {
		if err := c.bus.Publish(topic, []byte(formatReading(value))); err != nil {
			c.log.Errorf("publish telemetry %s: %v", topic, err)
		}
	}

	if rec, ok := c.sink.(metrics.TelemetryRecorder); ok {
		sample := metrics.Telemetry{Amps: amps, Volts: c.voltage, WattHours: wh, Time: time.Now()}
		if err := rec.RecordTelemetry(sample); err != nil {
			c.log.Errorf("record telemetry: %v", err)
		}
	}
}

func formatReading(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

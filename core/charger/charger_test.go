package charger

import (
	"context"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evse-sim/core/model"
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
	"github.com/kilianp07/evse-sim/infra/logger"
	"github.com/kilianp07/evse-sim/internal/membus"
)

type recorder struct {
	mu       sync.Mutex
	messages []string
}

func (r *recorder) handle(_ string, payload []byte) {
	r.mu.Lock()
	r.messages = append(r.messages, string(payload))
	r.mu.Unlock()
}

func (r *recorder) all() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *recorder) count(msg string) int {
	n := 0
	for _, m := range r.all() {
		if m == msg {
			n++
		}
	}
	return n
}

func (r *recorder) reset() {
	r.mu.Lock()
	r.messages = nil
	r.mu.Unlock()
}

func testBattery() BatteryConfig {
	return BatteryConfig{CapacityKWh: 40, InitialSoC: 0.8, ChargeRateKW: 7, DischargeRateKW: 10}
}

func newTestCharger(t *testing.T, cfg Config) (*membus.Bus, *Charger, *recorder) {
	t.Helper()
	bus := membus.New()
	cfg.Topics = coremqtt.NewTopics("openevse")
	if cfg.Battery.CapacityKWh == 0 {
		cfg.Battery = testBattery()
	}
	ch := New(bus, cfg, logger.NopLogger{}, nil)

	rec := &recorder{}
	require.NoError(t, bus.Subscribe(cfg.Topics.Status(), rec.handle))
	require.NoError(t, ch.Start())
	return bus, ch, rec
}

func sendCommand(t *testing.T, bus *membus.Bus, suffix, payload string) {
	t.Helper()
	require.NoError(t, bus.Publish("openevse/rapi/in/"+suffix, []byte(payload)))
}

func TestChargingScenario(t *testing.T) {
	bus, ch, rec := newTestCharger(t, Config{})

	sendCommand(t, bus, "$SC", "32")
	sendCommand(t, bus, "$FE", "")

	assert.Equal(t, model.StateCharging, ch.State())
	assert.Equal(t, []string{model.StatusCurrentSet, model.StatusChargingStarted}, rec.all())
}

func TestBidirectionalScenario(t *testing.T) {
	bus, ch, rec := newTestCharger(t, Config{})

	sendCommand(t, bus, "$SC", "32")
	sendCommand(t, bus, "$FE", "")
	require.Equal(t, model.StateCharging, ch.State())
	rec.reset()

	sendCommand(t, bus, "$V2G", "1")
	sendCommand(t, bus, "$SC", "-20")

	// Last write wins: the trailing SetCurrent overwrites the bidirectional
	// mode, matching the unconditional transition table.
	assert.Equal(t, model.StateCurrentConfigured, ch.State())
	assert.Equal(t, []string{model.StatusV2GEnabled, model.StatusCurrentSet}, rec.all())
}

func TestStopFromAnyState(t *testing.T) {
	drive := map[string][]struct{ suffix, payload string }{
		"idle":          {},
		"configured":    {{"$SC", "32"}},
		"charging":      {{"$SC", "32"}, {"$FE", ""}},
		"bidirectional": {{"$V2G", "1"}},
	}
	for name, cmds := range drive {
		t.Run(name, func(t *testing.T) {
			bus, ch, rec := newTestCharger(t, Config{})
			for _, c := range cmds {
				sendCommand(t, bus, c.suffix, c.payload)
			}
			rec.reset()

			sendCommand(t, bus, "$FS", "")
			assert.Equal(t, model.StateIdle, ch.State())
			assert.Equal(t, []string{model.StatusChargingStopped}, rec.all())
		})
	}
}

func TestStopIsIdempotentButStillEmits(t *testing.T) {
	bus, ch, rec := newTestCharger(t, Config{})

	sendCommand(t, bus, "$FS", "")
	sendCommand(t, bus, "$FS", "")

	assert.Equal(t, model.StateIdle, ch.State())
	assert.Equal(t, []string{model.StatusChargingStopped, model.StatusChargingStopped}, rec.all())
}

func TestMalformedCommandsAreDropped(t *testing.T) {
	bus, ch, rec := newTestCharger(t, Config{})

	sendCommand(t, bus, "$UNKNOWN", "x")
	sendCommand(t, bus, "$SC", "not-a-number")

	assert.Equal(t, model.StateIdle, ch.State())
	assert.Empty(t, rec.all(), "malformed input must emit no status")
}

func TestHeartbeatIsPeriodicAndIndependent(t *testing.T) {
	bus, ch, rec := newTestCharger(t, Config{
		HeartbeatPeriod: 20 * time.Millisecond,
		TelemetryPeriod: time.Hour,
	})

	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = ch.Run(ctx)
	}()

	time.Sleep(50 * time.Millisecond)
	// A command mid-stream must not suppress the next scheduled heartbeat.
	sendCommand(t, bus, "$SC", "32")
	time.Sleep(60 * time.Millisecond)
	cancel()
	<-runDone

	assert.GreaterOrEqual(t, rec.count(model.StatusIdleHeartbeat), 3)
	assert.Equal(t, 1, rec.count(model.StatusCurrentSet))
}

func TestTelemetryPublication(t *testing.T) {
	bus := membus.New()
	topics := coremqtt.NewTopics("openevse")
	charger := New(bus, Config{
		Topics:          topics,
		HeartbeatPeriod: time.Hour,
		TelemetryPeriod: 10 * time.Millisecond,
		NominalVoltage:  230,
		Battery:         testBattery(),
	}, logger.NopLogger{}, nil)
	require.NoError(t, charger.Start())

	amps := &recorder{}
	volts := &recorder{}
	wh := &recorder{}
	require.NoError(t, bus.Subscribe(topics.Amp(), amps.handle))
	require.NoError(t, bus.Subscribe(topics.Volt(), volts.handle))
	require.NoError(t, bus.Subscribe(topics.Wh(), wh.handle))

	require.NoError(t, bus.Publish(topics.Command("$SC"), []byte("16")))
	require.NoError(t, bus.Publish(topics.Command("$FE"), nil))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = charger.Run(ctx)
	}()
	time.Sleep(80 * time.Millisecond)
	cancel()
	<-done

	ampVals := amps.all()
	require.NotEmpty(t, ampVals)
	assert.Equal(t, "16.0", ampVals[len(ampVals)-1])

	voltVals := volts.all()
	require.NotEmpty(t, voltVals)
	assert.Equal(t, "230.0", voltVals[len(voltVals)-1])

	whVals := wh.all()
	require.NotEmpty(t, whVals)
	last, err := strconv.ParseFloat(whVals[len(whVals)-1], 64)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, last, 0.0)

	// Charging for ~80ms at 16A/230V must have raised the SoC.
	assert.Greater(t, charger.Battery().StateOfCharge(), 0.8)
}

func TestTelemetryIdleReportsZeroAmps(t *testing.T) {
	bus := membus.New()
	topics := coremqtt.NewTopics("openevse")
	charger := New(bus, Config{
		Topics:          topics,
		HeartbeatPeriod: time.Hour,
		TelemetryPeriod: 10 * time.Millisecond,
		Battery:         testBattery(),
	}, logger.NopLogger{}, nil)
	require.NoError(t, charger.Start())

	amps := &recorder{}
	require.NoError(t, bus.Subscribe(topics.Amp(), amps.handle))

	// Configured but not started: no current flows yet.
	require.NoError(t, bus.Publish(topics.Command("$SC"), []byte("32")))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = charger.Run(ctx)
	}()
	time.Sleep(40 * time.Millisecond)
	cancel()
	<-done

	vals := amps.all()
	require.NotEmpty(t, vals)
	for _, v := range vals {
		assert.Equal(t, "0.0", v)
	}
}

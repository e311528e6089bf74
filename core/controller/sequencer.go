// Package controller drives a scripted, time-gated charging session against
// the charger. The sequencer is a pure producer: it observes status text for
// pacing and for in-process observers, but never asserts on it.
package controller

import (
	"context"
	"fmt"
	"time"

	"github.com/kilianp07/evse-sim/core/logger"
	"github.com/kilianp07/evse-sim/core/model"
	coremqtt "github.com/kilianp07/evse-sim/core/mqtt"
	"github.com/kilianp07/evse-sim/internal/eventbus"
)

const defaultAckTimeout = 2 * time.Second

// Step is one scripted action: publish Command, optionally await the
// expected status text, then hold for Delay before the next step.
type Step struct {
	Command model.Command
	Expect  string
	Delay   time.Duration
}

// Script is a full charging session.
type Script struct {
	Settle time.Duration
	Steps  []Step
}

// NewScript builds a session script: settle, charge at chargeAmps, switch to
// bidirectional export at exportAmps, stop.
func NewScript(settle, charge, export time.Duration, chargeAmps, exportAmps float64) Script {
	return Script{
		Settle: settle,
		Steps: []Step{
			{Command: model.Command{Kind: model.SetCurrent, Amps: chargeAmps}, Expect: model.StatusCurrentSet},
			{Command: model.Command{Kind: model.StartCharge}, Expect: model.StatusChargingStarted, Delay: charge},
			{Command: model.Command{Kind: model.EnableBidirectional}, Expect: model.StatusV2GEnabled},
			{Command: model.Command{Kind: model.SetCurrent, Amps: -exportAmps}, Expect: model.StatusCurrentSet, Delay: export},
			{Command: model.Command{Kind: model.Stop}, Expect: model.StatusChargingStopped},
		},
	}
}

// DefaultScript reproduces the reference session: settle 2s, charge at 32A
// for 5s, export at 20A for 10s, stop.
func DefaultScript() Script {
	return NewScript(2*time.Second, 5*time.Second, 10*time.Second, 32, 20)
}

// Config holds the sequencer settings.
type Config struct {
	Topics coremqtt.Topics
	// AwaitStatus enables the handshake: after each publish the sequencer
	// waits for the expected status text before moving on. The scripted
	// delay remains the pacing floor, so a charger that drops status
	// messages only slows the session down by AckTimeout per step.
	AwaitStatus bool
	AckTimeout  time.Duration
}

// Sequencer publishes the script's commands and forwards observed status
// events to an in-process bus.
type Sequencer struct {
	bus        coremqtt.PubSub
	topics     coremqtt.Topics
	log        logger.Logger
	await      bool
	ackTimeout time.Duration
	events     *eventbus.Bus[model.StatusEvent]
	status     chan string
}

// New creates a Sequencer.
func New(bus coremqtt.PubSub, cfg Config, log logger.Logger) *Sequencer {
	if cfg.AckTimeout <= 0 {
		cfg.AckTimeout = defaultAckTimeout
	}
	return &Sequencer{
		bus:        bus,
		topics:     cfg.Topics,
		log:        log,
		await:      cfg.AwaitStatus,
		ackTimeout: cfg.AckTimeout,
		events:     eventbus.New[model.StatusEvent](),
		status:     make(chan string, 16),
	}
}

// Events exposes the observed status stream.
func (s *Sequencer) Events() *eventbus.Bus[model.StatusEvent] { return s.events }

// Run executes the script. The context is checked before each step and
// during every wait, so a cancellation aborts the session mid-sequence.
// Publish failures surface as errors; retries happen in the transport.
func (s *Sequencer) Run(ctx context.Context, script Script) error {
	if err := s.bus.Subscribe(s.topics.Status(), s.onStatus); err != nil {
		return fmt.Errorf("subscribe status: %w", err)
	}
	defer func() {
		_ = s.bus.Unsubscribe(s.topics.Status())
	}()

	if err := wait(ctx, script.Settle); err != nil {
		return err
	}
	for _, step := range script.Steps {
		if err := ctx.Err(); err != nil {
			return err
		}
		topic := s.topics.Command(step.Command.Kind.Suffix())
		payload := step.Command.Payload()
		s.log.Infof("publishing %s -> %q", topic, payload)
		if err := s.bus.Publish(topic, []byte(payload)); err != nil {
			return fmt.Errorf("command %s: %w", step.Command.Kind, err)
		}
		if s.await && step.Expect != "" {
			s.awaitStatus(ctx, step.Expect)
		}
		if err := wait(ctx, step.Delay); err != nil {
			return err
		}
	}
	return nil
}

// awaitStatus waits for the expected status text up to the ack timeout.
// Timing out is not an error: the channel is best-effort and the scripted
// delays keep the session coherent on their own.
func (s *Sequencer) awaitStatus(ctx context.Context, expect string) {
	timer := time.NewTimer(s.ackTimeout)
	defer timer.Stop()
	for {
		select {
		case msg := <-s.status:
			if msg == expect {
				return
			}
		case <-timer.C:
			s.log.Warnf("no %q status within %s", expect, s.ackTimeout)
			return
		case <-ctx.Done():
			return
		}
	}
}

func (s *Sequencer) onStatus(_ string, payload []byte) {
	msg := string(payload)
	s.events.Publish(model.NewStatusEvent(msg))
	select {
	case s.status <- msg:
	default:
	}
}

func wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package metrics

import coremetrics "github.com/kilianp07/evse-sim/core/metrics"

// MultiSink fans records out to multiple sinks.
type MultiSink struct {
	Sinks []coremetrics.Sink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...coremetrics.Sink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

func (m *MultiSink) RecordCommand(kind string) {
	for _, s := range m.Sinks {
		s.RecordCommand(kind)
	}
}

func (m *MultiSink) RecordMalformed() {
	for _, s := range m.Sinks {
		s.RecordMalformed()
	}
}

func (m *MultiSink) RecordHeartbeat() {
	for _, s := range m.Sinks {
		s.RecordHeartbeat()
	}
}

func (m *MultiSink) RecordState(state string) {
	for _, s := range m.Sinks {
		s.RecordState(state)
	}
}

// RecordTelemetry forwards telemetry to sinks that support it, returning
// the first error encountered.
func (m *MultiSink) RecordTelemetry(t coremetrics.Telemetry) error {
	for _, s := range m.Sinks {
		if rec, ok := s.(coremetrics.TelemetryRecorder); ok {
			if err := rec.RecordTelemetry(t); err != nil {
				return err
			}
		}
	}
	return nil
}

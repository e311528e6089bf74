package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evse-sim/core/metrics"
	"github.com/kilianp07/evse-sim/infra/logger"
)

// InfluxSink writes charger events and telemetry to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and returns a
// NopSink if the health check fails, so a missing database never blocks the
// simulation.
func NewInfluxSinkWithFallback(cfg coremetrics.Config) coremetrics.Sink {
	sink := NewInfluxSink(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordCommand writes a command event point.
func (s *InfluxSink) RecordCommand(kind string) {
	s.writeEvent("command", kind)
}

// RecordMalformed writes a dropped-message event point.
func (s *InfluxSink) RecordMalformed() {
	s.writeEvent("malformed", "")
}

// RecordHeartbeat writes a heartbeat event point.
func (s *InfluxSink) RecordHeartbeat() {
	s.writeEvent("heartbeat", "")
}

// RecordState writes the new operating mode.
func (s *InfluxSink) RecordState(state string) {
	p := write.NewPointWithMeasurement("charger_state").
		AddTag("state", state).
		AddField("value", 1).
		SetTime(time.Now())
	s.write(p)
}

// RecordTelemetry writes one electrical sample.
func (s *InfluxSink) RecordTelemetry(t coremetrics.Telemetry) error {
	p := write.NewPointWithMeasurement("charger_telemetry").
		AddField("amps", t.Amps).
		AddField("volts", t.Volts).
		AddField("watt_hours", t.WattHours).
		SetTime(t.Time)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

func (s *InfluxSink) writeEvent(eventType, kind string) {
	p := write.NewPointWithMeasurement("charger_event").
		AddTag("type", eventType).
		AddField("count", 1).
		SetTime(time.Now())
	if kind != "" {
		p.AddTag("kind", kind)
	}
	s.write(p)
}

func (s *InfluxSink) write(p *write.Point) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.writeAPI.WritePoint(ctx, p); err != nil {
		s.log.Errorf("influx write: %v", err)
	}
}

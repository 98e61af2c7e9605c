package metrics

import (
	"context"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	corelogger "github.com/gridpool/autobid/core/logger"
	coremetrics "github.com/gridpool/autobid/core/metrics"
)

// InfluxSink writes bid, alert and market events to an InfluxDB instance
// using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      corelogger.Logger
}

// NewInfluxSink creates a sink for the given InfluxDB endpoint.
func NewInfluxSink(cfg coremetrics.Config, log corelogger.Logger) *InfluxSink {
	if log == nil {
		log = corelogger.Nop{}
	}
	base := strings.TrimSuffix(cfg.InfluxURL, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, cfg.InfluxToken,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(cfg.InfluxOrg, cfg.InfluxBucket),
		log:      log,
	}
}

// NewInfluxSinkWithFallback pings the InfluxDB instance and degrades to a
// NopSink when the health check fails, so a missing Influx never blocks the
// engine.
func NewInfluxSinkWithFallback(cfg coremetrics.Config, log corelogger.Logger) coremetrics.MetricsSink {
	sink := NewInfluxSink(cfg, log)
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if ok, err := sink.client.Ping(ctx); err != nil || !ok {
		sink.log.Warnf("influxdb unreachable, metrics disabled: %v", err)
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordBidResults writes one point per bid attempt.
func (s *InfluxSink) RecordBidResults(records []coremetrics.BidRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for _, r := range records {
		p := influxdb2.NewPointWithMeasurement("autobid_bid").
			AddTag("rule", r.RuleName).
			AddTag("strategy", string(r.Strategy)).
			AddTag("energy_type", r.EnergyType).
			AddField("price", r.Price).
			AddField("amount", r.Amount).
			AddField("success", r.Success).
			SetTime(r.PlacedAt)
		if err := s.writeAPI.WritePoint(ctx, p); err != nil {
			return err
		}
	}
	return nil
}

// RecordAlertFired writes one point per alert notification.
func (s *InfluxSink) RecordAlertFired(rec coremetrics.AlertRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	p := influxdb2.NewPointWithMeasurement("autobid_alert").
		AddTag("alert_type", string(rec.AlertType)).
		AddTag("energy_type", rec.EnergyType).
		AddField("energy_block_id", rec.EnergyBlockID).
		SetTime(rec.FiredAt)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordMarketSnapshot writes one point per energy-type analytics snapshot.
func (s *InfluxSink) RecordMarketSnapshot(rec coremetrics.MarketRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	snap := rec.Snapshot
	p := influxdb2.NewPointWithMeasurement("autobid_market").
		AddTag("energy_type", snap.EnergyType).
		AddTag("trend", string(snap.TrendDirection)).
		AddTag("competition", string(snap.CompetitionLevel)).
		AddField("average_price", snap.AveragePrice).
		AddField("price_min", snap.PriceRange.Min).
		AddField("price_max", snap.PriceRange.Max).
		AddField("volume_available", snap.VolumeAvailable).
		AddField("recommended_bid", snap.RecommendedBidPrice).
		SetTime(rec.At)
	return s.writeAPI.WritePoint(ctx, p)
}

// Close releases the underlying client.
func (s *InfluxSink) Close() {
	s.client.Close()
}

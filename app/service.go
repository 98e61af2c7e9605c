package app

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/gridpool/autobid/config"
	"github.com/gridpool/autobid/core/alert"
	"github.com/gridpool/autobid/core/analytics"
	"github.com/gridpool/autobid/core/clock"
	"github.com/gridpool/autobid/core/engine"
	coremetrics "github.com/gridpool/autobid/core/metrics"
	"github.com/gridpool/autobid/core/store"
	"github.com/gridpool/autobid/infra/feed"
	"github.com/gridpool/autobid/infra/kv"
	"github.com/gridpool/autobid/infra/logger"
	"github.com/gridpool/autobid/infra/metrics"
	"github.com/gridpool/autobid/infra/mqtt"
	"github.com/gridpool/autobid/infra/notify"
	"github.com/gridpool/autobid/internal/eventbus"
)

// Service wires the store, engine, alert dispatcher and market feed together
// and drives the evaluation loop on a cron schedule.
type Service struct {
	Engine *engine.Engine
	Store  *store.Store

	feed        feed.Supplier
	bridge      *mqtt.Bridge
	kvs         kv.Store
	log         logger.Logger
	cronSpec    string
	autoStart   bool
	promEnabled bool
	promPort    string
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")
	clk := clock.System{}

	kvs, err := kv.Open(cfg.Store)
	if err != nil {
		return nil, fmt.Errorf("open store backend: %w", err)
	}
	st, err := store.New(kvs, clk, logger.New("store"))
	if err != nil {
		return nil, fmt.Errorf("rule store: %w", err)
	}

	var sinks []coremetrics.MetricsSink
	promEnabled := cfg.Metrics.PrometheusEnabled
	promPort := cfg.Metrics.PrometheusPort
	if promEnabled {
		sink, err := metrics.NewPromSink(cfg.Metrics)
		if err != nil {
			return nil, fmt.Errorf("prom sink: %w", err)
		}
		sinks = append(sinks, sink)
	}
	if cfg.Metrics.InfluxEnabled {
		sink := metrics.NewInfluxSinkWithFallback(cfg.Metrics, logger.New("influx"))
		sinks = append(sinks, sink)
	}
	var sink coremetrics.MetricsSink = coremetrics.NopSink{}
	if len(sinks) == 1 {
		sink = sinks[0]
	} else if len(sinks) > 1 {
		sink = metrics.NewMultiSink(sinks...)
	}

	bus := eventbus.New()
	notifier := notify.Build(cfg.Notify, logger.New("notify"))
	dispatcher, err := alert.New(st, notifier, sink, bus, clk, logger.New("alerts"))
	if err != nil {
		return nil, fmt.Errorf("alert dispatcher: %w", err)
	}

	aggr := analytics.New()
	eng, err := engine.New(st, aggr, dispatcher, sink, bus, clk, logger.New("engine"))
	if err != nil {
		return nil, fmt.Errorf("bid engine: %w", err)
	}

	supplier, err := feed.New(cfg.Feed, logger.New("feed"))
	if err != nil {
		return nil, fmt.Errorf("market feed: %w", err)
	}

	var bridge *mqtt.Bridge
	if cfg.MQTT.Enabled {
		bridge, err = mqtt.NewBridge(cfg.MQTT, bus, logger.New("mqtt"))
		if err != nil {
			return nil, fmt.Errorf("mqtt bridge: %w", err)
		}
	}

	return &Service{
		Engine:      eng,
		Store:       st,
		feed:        supplier,
		bridge:      bridge,
		kvs:         kvs,
		log:         logg,
		cronSpec:    cfg.Scheduler.CronSpec,
		autoStart:   cfg.Engine.AutoStart,
		promEnabled: promEnabled,
		promPort:    promPort,
	}, nil
}

// Run starts the evaluation loop and blocks until the context is cancelled.
func (s *Service) Run(ctx context.Context) error {
	c := cron.New(
		cron.WithSeconds(),
		cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
	)
	if _, err := c.AddFunc(s.cronSpec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule evaluation: %w", err)
	}

	if runner, ok := s.feed.(interface{ Run(context.Context) }); ok {
		go runner.Run(ctx)
	}
	if s.bridge != nil {
		go s.bridge.Run(ctx)
	}
	if s.promEnabled {
		go func() {
			if err := metrics.StartPromServer(ctx, s.promPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.autoStart {
		s.Engine.Start()
	}

	c.Start()
	s.log.Infof("service running, evaluation schedule %q", s.cronSpec)
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}

// tick runs one evaluation cycle: fetch the market snapshot, refresh
// analytics, place bids and check price alerts.
func (s *Service) tick(ctx context.Context) {
	listings, err := s.feed.Fetch(ctx)
	if err != nil {
		s.log.Warnf("market fetch failed: %v", err)
		return
	}
	s.Engine.UpdateAnalytics(listings)
	results := s.Engine.EvaluateListings(listings)
	if len(results) > 0 {
		s.log.Infof("evaluation cycle placed %d bids over %d listings", len(results), len(listings))
	}
	s.Engine.CheckAlerts(listings)
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.Engine.Stop()
	if s.bridge != nil {
		s.bridge.Close()
	}
	return s.kvs.Close()
}

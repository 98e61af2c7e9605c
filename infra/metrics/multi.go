package metrics

import coremetrics "github.com/gridpool/autobid/core/metrics"

// MultiSink fans records out to multiple sinks, forwarding optional
// capabilities to the sinks that implement them.
type MultiSink struct {
	Sinks []coremetrics.MetricsSink
}

// NewMultiSink creates a MultiSink over the provided sinks.
func NewMultiSink(sinks ...coremetrics.MetricsSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordBidResults forwards to all sinks, returning the first error.
func (m *MultiSink) RecordBidResults(records []coremetrics.BidRecord) error {
	for _, s := range m.Sinks {
		if err := s.RecordBidResults(records); err != nil {
			return err
		}
	}
	return nil
}

// RecordAlertFired forwards alert events to capable sinks.
func (m *MultiSink) RecordAlertFired(rec coremetrics.AlertRecord) error {
	for _, s := range m.Sinks {
		if ar, ok := s.(coremetrics.AlertRecorder); ok {
			if err := ar.RecordAlertFired(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordMarketSnapshot forwards analytics snapshots to capable sinks.
func (m *MultiSink) RecordMarketSnapshot(rec coremetrics.MarketRecord) error {
	for _, s := range m.Sinks {
		if mr, ok := s.(coremetrics.MarketRecorder); ok {
			if err := mr.RecordMarketSnapshot(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

package feed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridpool/autobid/core/logger"
	"github.com/gridpool/autobid/core/model"
)

const (
	wsInitialBackoff = time.Second
	wsMaxBackoff     = 30 * time.Second
	wsReadTimeout    = 90 * time.Second
)

// WSFeed maintains a websocket connection to the marketplace and keeps the
// most recent listing snapshot in memory. Fetch returns that snapshot, so the
// evaluation loop never blocks on the network.
type WSFeed struct {
	url string
	log logger.Logger

	mu     sync.RWMutex
	latest []model.EnergyBlock
}

// NewWSFeed creates a feed for the given endpoint. Run must be started for
// the snapshot to populate.
func NewWSFeed(url string, log logger.Logger) *WSFeed {
	if log == nil {
		log = logger.Nop{}
	}
	return &WSFeed{url: url, log: log}
}

// Fetch returns the latest snapshot received from the marketplace.
func (f *WSFeed) Fetch(ctx context.Context) ([]model.EnergyBlock, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	return append([]model.EnergyBlock(nil), f.latest...), nil
}

// Run connects and reads listing frames until the context is canceled,
// reconnecting with exponential backoff.
func (f *WSFeed) Run(ctx context.Context) {
	backoff := wsInitialBackoff
	for {
		if ctx.Err() != nil {
			return
		}
		if err := f.readLoop(ctx); err != nil {
			f.log.Warnf("listing feed disconnected: %v", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff *= 2
		if backoff > wsMaxBackoff {
			backoff = wsMaxBackoff
		}
	}
}

func (f *WSFeed) readLoop(ctx context.Context) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, f.url, nil)
	if err != nil {
		return err
	}
	defer func() { _ = conn.Close() }()
	f.log.Infof("listing feed connected to %s", f.url)

	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		if err := conn.SetReadDeadline(time.Now().Add(wsReadTimeout)); err != nil {
			return err
		}
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return err
		}
		var listings []model.EnergyBlock
		if err := json.Unmarshal(payload, &listings); err != nil {
			f.log.Warnf("malformed listing frame dropped: %v", err)
			continue
		}
		f.mu.Lock()
		f.latest = listings
		f.mu.Unlock()
	}
}

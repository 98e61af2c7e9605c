package feed

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/gridpool/autobid/core/model"
)

func TestWSFeedSnapshot(t *testing.T) {
	batch := []model.EnergyBlock{
		{ID: "blk-1", Type: "Solar", Location: "Aragon, ES", Available: 12, Price: 0.022, Status: model.StatusAvailable},
		{ID: "blk-2", Type: "Wind", Location: "North Sea, NL", Available: 30, Price: 0.031, Status: model.StatusBidding},
	}
	frame, err := json.Marshal(batch)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		if err := conn.WriteMessage(websocket.TextMessage, frame); err != nil {
			return
		}
		// hold the connection open until the client goes away
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	feed := NewWSFeed("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	go feed.Run(ctx)

	deadline := time.Now().Add(3 * time.Second)
	for {
		got, err := feed.Fetch(ctx)
		if err != nil {
			t.Fatalf("fetch: %v", err)
		}
		if len(got) == 2 {
			if got[0].ID != "blk-1" || got[1].Type != "Wind" {
				t.Fatalf("snapshot content: %+v", got)
			}
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("snapshot never populated")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestWSFeedEmptyBeforeConnect(t *testing.T) {
	feed := NewWSFeed("ws://127.0.0.1:1/feed", nil)
	got, err := feed.Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty snapshot, got %+v", got)
	}
}

package main

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/server"
	"github.com/pairline/pairline/internal/signaling"
)

func startRelay(t *testing.T) *httptest.Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := signaling.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(server.NewRouter(&config.Server{Port: "0"}, hub, logger))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.Done()
	})
	return srv
}

func TestFetchStats(t *testing.T) {
	srv := startRelay(t)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"create_room"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	// The pairing code arrives after the room exists.
	if _, _, err := conn.ReadMessage(); err != nil {
		t.Fatalf("read: %v", err)
	}

	cfg := &config.Client{ServerURL: wsURL}
	stats, err := fetchStats(context.Background(), cfg.StatsURL())
	if err != nil {
		t.Fatalf("fetchStats: %v", err)
	}
	if stats.Rooms != 1 || stats.WaitingRooms != 1 || stats.Connections != 1 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestFetchStatsBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	if _, err := fetchStats(context.Background(), srv.URL+"/stats"); err == nil {
		t.Fatal("expected error for 404")
	}
}

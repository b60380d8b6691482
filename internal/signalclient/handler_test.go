package signalclient

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/server"
	"github.com/pairline/pairline/internal/signaling"
)

func startRelay(t *testing.T) string {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := signaling.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(server.NewRouter(&config.Server{Port: "0"}, hub, logger))
	t.Cleanup(func() {
		srv.Close()
		cancel()
	})
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
}

func connect(t *testing.T, url string) (*Client, *Handler) {
	t.Helper()
	c := NewClient(url)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	h := NewHandler(c)
	go h.Start()
	t.Cleanup(func() {
		h.Close()
		c.Close()
	})
	return c, h
}

func recv[T any](t *testing.T, ch <-chan T, what string) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for %s", what)
	}
	var zero T
	return zero
}

func TestHandlerRoutesEveryServerFrame(t *testing.T) {
	url := startRelay(t)
	a, ha := connect(t, url)
	b, hb := connect(t, url)

	a.SendMessage(CreateRoom())
	code := recv(t, ha.PairingCode, "pairing code")
	if len(code) != 6 {
		t.Fatalf("bad code %q", code)
	}

	b.SendMessage(JoinRoom(code))
	recv(t, ha.PeerJoined, "peer joined")

	offer, err := Offer(code, map[string]string{"type": "offer", "sdp": "v=0"})
	if err != nil {
		t.Fatalf("offer: %v", err)
	}
	a.SendMessage(offer)
	if got := recv(t, hb.Offer, "offer"); string(got) != `{"sdp":"v=0","type":"offer"}` {
		t.Fatalf("unexpected offer payload %s", got)
	}

	answer, _ := Answer(code, "answer-sdp")
	b.SendMessage(answer)
	if got := recv(t, ha.Answer, "answer"); string(got) != `"answer-sdp"` {
		t.Fatalf("unexpected answer payload %s", got)
	}

	cand, _ := Candidate(code, map[string]any{"candidate": "candidate:1", "sdpMLineIndex": 0})
	b.SendMessage(cand)
	if got := recv(t, ha.Candidate, "candidate"); !strings.Contains(string(got), "candidate:1") {
		t.Fatalf("unexpected candidate payload %s", got)
	}

	c, hc := connect(t, url)
	c.SendMessage(JoinRoom(code))
	if msg := recv(t, hc.Error, "error"); msg != signaling.ErrTextRoomFull {
		t.Fatalf("unexpected error %q", msg)
	}

	b.Close()
	recv(t, ha.PeerDisconnected, "peer disconnected")
	recv(t, hb.Done(), "handler shutdown")
}

func TestSendAfterCloseReportsFalse(t *testing.T) {
	url := startRelay(t)
	c, _ := connect(t, url)

	c.Close()
	if c.SendMessage(CreateRoom()) {
		t.Fatalf("send after close should report false")
	}
}

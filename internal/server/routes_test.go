package server

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/signaling"
)

func newTestServer(t *testing.T, cfg *config.Server) (*httptest.Server, *signaling.Hub) {
	t.Helper()
	if cfg == nil {
		cfg = &config.Server{Port: "0"}
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hub := signaling.NewHub(logger)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(NewRouter(cfg, hub, logger))
	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-hub.Done()
	})
	return srv, hub
}

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func write(t *testing.T, conn *websocket.Conn, frame string) {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func read(t *testing.T, conn *websocket.Conn) signaling.Message {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var msg signaling.Message
	if err := conn.ReadJSON(&msg); err != nil {
		t.Fatalf("read: %v", err)
	}
	return msg
}

// expectSilence fails if a frame arrives within a short window.
func expectSilence(t *testing.T, conn *websocket.Conn) {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(150 * time.Millisecond))
	var msg signaling.Message
	if err := conn.ReadJSON(&msg); err == nil {
		t.Fatalf("unexpected frame: %+v", msg)
	}
}

func TestSignalingSessionEndToEnd(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	a := dial(t, srv)
	b := dial(t, srv)

	write(t, a, `{"type":"create_room"}`)
	created := read(t, a)
	if created.Type != signaling.TypePairingCode || len(created.Code) != 6 {
		t.Fatalf("unexpected create reply: %+v", created)
	}
	code := created.Code

	write(t, b, `{"type":"join_room","code":"`+code+`"}`)
	if msg := read(t, a); msg.Type != signaling.TypePeerJoined {
		t.Fatalf("expected peer_joined, got %+v", msg)
	}

	write(t, a, `{"type":"offer","code":"`+code+`","sdp":{"type":"offer","sdp":"v=0"}}`)
	offer := read(t, b)
	if offer.Type != signaling.TypeOffer || string(offer.SDP) != `{"type":"offer","sdp":"v=0"}` {
		t.Fatalf("unexpected offer: %+v", offer)
	}

	write(t, b, `{"type":"answer","code":"`+code+`","sdp":"answer"}`)
	answer := read(t, a)
	if answer.Type != signaling.TypeAnswer || string(answer.SDP) != `"answer"` {
		t.Fatalf("unexpected answer: %+v", answer)
	}

	for _, c := range []string{"c1", "c2", "c3"} {
		write(t, a, `{"type":"ice_candidate","code":"`+code+`","candidate":"`+c+`"}`)
	}
	for _, c := range []string{"c1", "c2", "c3"} {
		msg := read(t, b)
		if msg.Type != signaling.TypeICECandidate || string(msg.Candidate) != `"`+c+`"` {
			t.Fatalf("expected candidate %s, got %+v", c, msg)
		}
	}

	c := dial(t, srv)
	write(t, c, `{"type":"join_room","code":"`+code+`"}`)
	if msg := read(t, c); msg.Type != signaling.TypeError || msg.Message != signaling.ErrTextRoomFull {
		t.Fatalf("expected room full, got %+v", msg)
	}

	b.Close()
	if msg := read(t, a); msg.Type != signaling.TypePeerDisconnected {
		t.Fatalf("expected peer_disconnected, got %+v", msg)
	}
	expectSilence(t, a)
}

func TestInvalidFrameGetsErrorOnly(t *testing.T) {
	srv, hub := newTestServer(t, nil)
	a := dial(t, srv)

	write(t, a, `definitely not json`)
	msg := read(t, a)
	if msg.Type != signaling.TypeError || msg.Message != signaling.ErrTextInvalidFormat {
		t.Fatalf("expected invalid format error, got %+v", msg)
	}

	s, err := hub.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if s.Rooms != 0 {
		t.Fatalf("malformed frame created state: %+v", s)
	}

	write(t, a, `{"type":"create_room"}`)
	if msg := read(t, a); msg.Type != signaling.TypePairingCode {
		t.Fatalf("connection unusable after error: %+v", msg)
	}
}

func TestJoinUnknownCodeOverWire(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	a := dial(t, srv)

	write(t, a, `{"type":"join_room","code":"000000"}`)
	if msg := read(t, a); msg.Type != signaling.TypeError || msg.Message != signaling.ErrTextRoomNotFound {
		t.Fatalf("expected room not found, got %+v", msg)
	}
}

func TestHealthAndStats(t *testing.T) {
	srv, _ := newTestServer(t, nil)
	a := dial(t, srv)
	write(t, a, `{"type":"create_room"}`)
	read(t, a)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("health: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status %d", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/stats")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	defer resp.Body.Close()
	var s signaling.Stats
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		t.Fatalf("decode stats: %v", err)
	}
	if s.Rooms != 1 || s.WaitingRooms != 1 || s.Connections != 1 {
		t.Fatalf("unexpected stats: %+v", s)
	}

	resp, err = http.Get(srv.URL + "/metrics")
	if err != nil {
		t.Fatalf("metrics: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if !strings.Contains(string(body), "pairline_rooms_created_total") {
		t.Fatalf("metrics missing hub counters")
	}
}

func TestOriginCheck(t *testing.T) {
	srv, _ := newTestServer(t, &config.Server{Port: "0", AllowedOrigins: []string{"https://app.example.com"}})
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	header := http.Header{"Origin": []string{"https://evil.example.com"}}
	if _, resp, err := websocket.DefaultDialer.Dial(url, header); err == nil {
		t.Fatalf("expected rejected origin")
	} else if resp == nil || resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", resp)
	}

	header = http.Header{"Origin": []string{"https://app.example.com"}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	if err != nil {
		t.Fatalf("allowed origin rejected: %v", err)
	}
	conn.Close()
}

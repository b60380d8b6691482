package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/pairline/pairline/internal/signaling"
)

func TestStatsView(t *testing.T) {
	out := StatsView("ws://localhost:8765/ws", signaling.Stats{Rooms: 3, WaitingRooms: 1, PairedRooms: 2, Connections: 5})

	for _, want := range []string{"Relay Status", "ws://localhost:8765/ws", "Waiting for peer", "Paired"} {
		if !strings.Contains(out, want) {
			t.Errorf("stats view missing %q:\n%s", want, out)
		}
	}
}

func TestSessionSummaryView(t *testing.T) {
	out := SessionSummaryView("Session", SessionSummary{
		Role:      "offerer",
		Code:      "123456",
		Peer:      "laptop",
		SetupTime: 1500 * time.Millisecond,
	})

	for _, want := range []string{"123456", "laptop", "n/a", "1.5s"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary view missing %q:\n%s", want, out)
		}
	}
}

func TestRoomInfoViewShowsCode(t *testing.T) {
	if out := RoomInfoView("654321", "ws://relay/ws"); !strings.Contains(out, "654321") {
		t.Fatalf("room box missing code:\n%s", out)
	}
}

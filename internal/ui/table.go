package ui

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/pairline/pairline/internal/signaling"
)

// RoomInfoView renders the box a room creator shares with the other peer.
func RoomInfoView(code, server string) string {
	content := fmt.Sprintf("%s Room Created!\n\n%s Pairing code:  %s\n%s Relay:         %s",
		IconSuccess,
		IconCopy, CodeStyle.Render(code),
		IconConnect, MutedStyle.Render(server),
	)
	return SuccessBoxStyle.Render(content)
}

func RenderRoomInfo(code, server string) {
	fmt.Println(RoomInfoView(code, server))
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title)
	t.SetStyle(table.StyleRounded)
	t.Style().Title.Align = text.AlignCenter
	t.Style().Color.Header = text.Colors{text.FgCyan, text.Bold}
	t.AppendHeader(table.Row{"Metric", "Value"})
	return t
}

// StatsView renders relay statistics as a table.
func StatsView(server string, s signaling.Stats) string {
	t := newTable("Relay Status")
	t.AppendRows([]table.Row{
		{"Server", server},
		{"Connections", s.Connections},
		{"Rooms", s.Rooms},
		{"Waiting for peer", s.WaitingRooms},
		{"Paired", s.PairedRooms},
	})
	return t.Render()
}

func RenderStats(server string, s signaling.Stats) {
	fmt.Println(StatsView(server, s))
}

// SessionSummary describes a verified peer-to-peer session.
type SessionSummary struct {
	Role      string
	Code      string
	Peer      string
	RTT       time.Duration
	SetupTime time.Duration
}

// SessionSummaryView renders a finished session as a table.
func SessionSummaryView(title string, s SessionSummary) string {
	t := newTable(title)
	rtt := "n/a"
	if s.RTT > 0 {
		rtt = s.RTT.Round(time.Microsecond).String()
	}
	t.AppendRows([]table.Row{
		{"Role", s.Role},
		{"Pairing code", s.Code},
		{"Peer", s.Peer},
		{"Round trip", rtt},
		{"Setup time", s.SetupTime.Round(time.Millisecond).String()},
	})
	return t.Render()
}

func RenderSessionSummary(title string, s SessionSummary) {
	fmt.Println(SessionSummaryView(title, s))
}

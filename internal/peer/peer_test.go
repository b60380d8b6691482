package peer

import (
	"encoding/json"
	"errors"
	"net"
	"testing"

	pion "github.com/pion/webrtc/v4"
)

func TestCandidateQueueHoldsUntilFlush(t *testing.T) {
	var q candidateQueue
	var applied []string
	apply := func(c pion.ICECandidateInit) error {
		applied = append(applied, c.Candidate)
		return nil
	}

	for _, c := range []string{"c1", "c2"} {
		if err := q.add(pion.ICECandidateInit{Candidate: c}, apply); err != nil {
			t.Fatalf("add: %v", err)
		}
	}
	if len(applied) != 0 {
		t.Fatalf("applied before remote description: %v", applied)
	}

	if err := q.flush(apply); err != nil {
		t.Fatalf("flush: %v", err)
	}
	q.add(pion.ICECandidateInit{Candidate: "c3"}, apply)

	want := []string{"c1", "c2", "c3"}
	if len(applied) != len(want) {
		t.Fatalf("got %v want %v", applied, want)
	}
	for i := range want {
		if applied[i] != want[i] {
			t.Fatalf("got %v want %v", applied, want)
		}
	}
}

func TestCandidateQueueFlushStopsOnError(t *testing.T) {
	var q candidateQueue
	q.add(pion.ICECandidateInit{Candidate: "bad"}, nil)
	q.add(pion.ICECandidateInit{Candidate: "never"}, nil)

	boom := errors.New("boom")
	calls := 0
	err := q.flush(func(pion.ICECandidateInit) error {
		calls++
		return boom
	})
	if !errors.Is(err, boom) || calls != 1 {
		t.Fatalf("expected first error to stop flush, err=%v calls=%d", err, calls)
	}
}

func TestDataChannelMessageCodec(t *testing.T) {
	msg, err := NewMessage(MessagePing, PingPayload{Seq: 7, SentAt: 42})
	if err != nil {
		t.Fatalf("new message: %v", err)
	}
	data, err := msg.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	decoded, err := DecodeMessage(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Type != MessagePing {
		t.Fatalf("type %q", decoded.Type)
	}
	var ping PingPayload
	if err := decoded.DecodePayload(&ping); err != nil {
		t.Fatalf("payload: %v", err)
	}
	if ping.Seq != 7 || ping.SentAt != 42 {
		t.Fatalf("unexpected payload %+v", ping)
	}

	if _, err := DecodeMessage([]byte{0xc1}); err == nil {
		t.Fatalf("expected garbage to fail decoding")
	}
}

func TestParseDescription(t *testing.T) {
	raw := json.RawMessage(`{"type":"offer","sdp":"v=0\r\n"}`)
	desc, err := ParseDescription(raw, pion.SDPTypeOffer)
	if err != nil {
		t.Fatalf("parse object: %v", err)
	}
	if desc.SDP != "v=0\r\n" {
		t.Fatalf("sdp %q", desc.SDP)
	}

	desc, err = ParseDescription(json.RawMessage(`"v=0\r\n"`), pion.SDPTypeAnswer)
	if err != nil {
		t.Fatalf("parse bare string: %v", err)
	}
	if desc.Type != pion.SDPTypeAnswer {
		t.Fatalf("bare string should take wanted type, got %s", desc.Type)
	}

	if _, err := ParseDescription(raw, pion.SDPTypeAnswer); !errors.Is(err, ErrUnexpectedSignal) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
	if _, err := ParseDescription(json.RawMessage(`42`), pion.SDPTypeOffer); !errors.Is(err, ErrUnexpectedSignal) {
		t.Fatalf("expected parse failure, got %v", err)
	}
}

func TestErrorWrapping(t *testing.T) {
	err := WrapError("negotiate", ErrSignaling, "Room not found")
	if !errors.Is(err, ErrSignaling) {
		t.Fatalf("errors.Is lost the sentinel")
	}
	if got := err.Error(); got != "negotiate: signaling server error (Room not found)" {
		t.Fatalf("unexpected message %q", got)
	}
}

func TestRestrictedInterface(t *testing.T) {
	tests := []struct {
		name string
		ips  []net.IP
		want bool
	}{
		{name: "eth0", ips: []net.IP{net.ParseIP("192.168.1.10")}, want: false},
		{name: "wg0", want: true},
		{name: "utun3", want: true},
		{name: "en0", ips: []net.IP{net.ParseIP("100.101.102.103")}, want: true},
		{name: "en0", ips: []net.IP{net.ParseIP("100.128.0.1")}, want: false},
	}

	for _, tt := range tests {
		if got := restrictedInterface(tt.name, tt.ips); got != tt.want {
			t.Errorf("restrictedInterface(%q, %v) = %v, want %v", tt.name, tt.ips, got, tt.want)
		}
	}
}

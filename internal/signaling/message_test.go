package signaling

import (
	"errors"
	"strconv"
	"testing"
)

func TestParseRequestVariants(t *testing.T) {
	tests := []struct {
		raw  string
		want Request
	}{
		{`{"type":"create_room"}`, CreateRoom{}},
		{` {"type":"join_room","code":"123456"} `, JoinRoom{Code: "123456"}},
		{`{"type":"join_room"}`, JoinRoom{}},
		{`{"type":"create_room","code":5}`, CreateRoom{}},
		{`{"type":"create_room","message":false}`, CreateRoom{}},
		{`{"type":"join_room","code":123456}`, JoinRoom{}},
	}

	for _, tt := range tests {
		got, err := ParseRequest([]byte(tt.raw))
		if err != nil {
			t.Fatalf("%s: unexpected error %v", tt.raw, err)
		}
		if got != tt.want {
			t.Fatalf("%s: got %#v want %#v", tt.raw, got, tt.want)
		}
	}
}

func TestParseRequestKeepsPayloadBytes(t *testing.T) {
	req, err := ParseRequest([]byte(`{"type":"ice_candidate","code":"654321","candidate":{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host","sdpMid":"0"}}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	cand, ok := req.(ICECandidate)
	if !ok {
		t.Fatalf("expected ICECandidate, got %T", req)
	}
	if cand.Code != "654321" {
		t.Fatalf("code: %q", cand.Code)
	}
	if want := `{"candidate":"candidate:1 1 udp 1 10.0.0.1 5000 typ host","sdpMid":"0"}`; string(cand.Candidate) != want {
		t.Fatalf("candidate bytes changed: %s", cand.Candidate)
	}
}

func TestParseRequestIgnoresUnusedFields(t *testing.T) {
	req, err := ParseRequest([]byte(`{"type":"offer","code":"123456","sdp":{"type":"offer","sdp":"v=0"},"message":1,"candidate":false}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	offer, ok := req.(Offer)
	if !ok {
		t.Fatalf("expected Offer, got %T", req)
	}
	if offer.Code != "123456" || string(offer.SDP) != `{"type":"offer","sdp":"v=0"}` {
		t.Fatalf("unexpected offer %+v", offer)
	}
}

func TestParseRequestErrors(t *testing.T) {
	malformed := []string{``, `   `, `null`, `"offer"`, `{"type":`, `{"type":"offer"`}
	for _, raw := range malformed {
		if _, err := ParseRequest([]byte(raw)); !errors.Is(err, ErrMalformedMessage) {
			t.Fatalf("%q: expected ErrMalformedMessage, got %v", raw, err)
		}
	}

	for _, raw := range []string{`{}`, `{"type":"pairing_code"}`, `{"type":"CREATE_ROOM"}`, `{"type":42}`, `{"type":true}`, `{"type":null}`} {
		_, err := ParseRequest([]byte(raw))
		var unknown *UnknownTypeError
		if !errors.As(err, &unknown) {
			t.Fatalf("%q: expected UnknownTypeError, got %v", raw, err)
		}
	}
}

func TestRandomCodeRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		code, err := RandomCode()
		if err != nil {
			t.Fatalf("random code: %v", err)
		}
		if len(code) != 6 {
			t.Fatalf("code %q is not 6 digits", code)
		}
		n, err := strconv.Atoi(code)
		if err != nil || n < minCode || n > maxCode {
			t.Fatalf("code %q out of range", code)
		}
	}
}

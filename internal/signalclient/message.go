package signalclient

import (
	"encoding/json"
	"fmt"

	"github.com/pairline/pairline/internal/signaling"
)

// Message is the relay's wire frame.
type Message = signaling.Message

// CreateRoom builds a create_room request.
func CreateRoom() *Message {
	return &Message{Type: signaling.TypeCreateRoom}
}

// JoinRoom builds a join_room request for code.
func JoinRoom(code string) *Message {
	return &Message{Type: signaling.TypeJoinRoom, Code: code}
}

// Offer builds an offer carrying sdp encoded as JSON.
func Offer(code string, sdp any) (*Message, error) {
	raw, err := encode(sdp)
	if err != nil {
		return nil, fmt.Errorf("encode offer: %w", err)
	}
	return &Message{Type: signaling.TypeOffer, Code: code, SDP: raw}, nil
}

// Answer builds an answer carrying sdp encoded as JSON.
func Answer(code string, sdp any) (*Message, error) {
	raw, err := encode(sdp)
	if err != nil {
		return nil, fmt.Errorf("encode answer: %w", err)
	}
	return &Message{Type: signaling.TypeAnswer, Code: code, SDP: raw}, nil
}

// Candidate builds an ice_candidate frame.
func Candidate(code string, candidate any) (*Message, error) {
	raw, err := encode(candidate)
	if err != nil {
		return nil, fmt.Errorf("encode candidate: %w", err)
	}
	return &Message{Type: signaling.TypeICECandidate, Code: code, Candidate: raw}, nil
}

func encode(v any) (json.RawMessage, error) {
	if raw, ok := v.(json.RawMessage); ok {
		return raw, nil
	}
	return json.Marshal(v)
}

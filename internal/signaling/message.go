package signaling

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// MessageType is the value of the "type" field carried by every frame.
type MessageType string

// Client to server.
const (
	TypeCreateRoom   MessageType = "create_room"
	TypeJoinRoom     MessageType = "join_room"
	TypeOffer        MessageType = "offer"
	TypeAnswer       MessageType = "answer"
	TypeICECandidate MessageType = "ice_candidate"
)

// Server to client.
const (
	TypePairingCode      MessageType = "pairing_code"
	TypePeerJoined       MessageType = "peer_joined"
	TypePeerDisconnected MessageType = "peer_disconnected"
	TypeError            MessageType = "error"
)

// Error texts sent back in "error" frames.
const (
	ErrTextInvalidFormat = "Invalid message format"
	ErrTextRoomNotFound  = "Room not found"
	ErrTextRoomFull      = "Room is full (maximum 2 participants)"
	ErrTextNoCode        = "Could not allocate a pairing code"
)

// Message is the wire form of every frame in both directions.
// SDP and Candidate are relayed verbatim and never inspected.
type Message struct {
	Type      MessageType     `json:"type"`
	Code      string          `json:"code,omitempty"`
	SDP       json.RawMessage `json:"sdp,omitempty"`
	Candidate json.RawMessage `json:"candidate,omitempty"`
	Message   string          `json:"message,omitempty"`
}

// ErrorMessage builds an "error" frame.
func ErrorMessage(text string) *Message {
	return &Message{Type: TypeError, Message: text}
}

// Request is one parsed client-to-server message.
type Request interface {
	Type() MessageType
}

// CreateRoom asks for a new room.
type CreateRoom struct{}

// JoinRoom asks to join the room identified by Code.
type JoinRoom struct {
	Code string
}

// Offer carries an opaque session description for the other participant.
type Offer struct {
	Code string
	SDP  json.RawMessage
}

// Answer carries an opaque session description for the room's offerer.
type Answer struct {
	Code string
	SDP  json.RawMessage
}

// ICECandidate carries an opaque network candidate for the other participant.
type ICECandidate struct {
	Code      string
	Candidate json.RawMessage
}

func (CreateRoom) Type() MessageType   { return TypeCreateRoom }
func (JoinRoom) Type() MessageType     { return TypeJoinRoom }
func (Offer) Type() MessageType        { return TypeOffer }
func (Answer) Type() MessageType       { return TypeAnswer }
func (ICECandidate) Type() MessageType { return TypeICECandidate }

// ErrMalformedMessage is returned for frames that are not a JSON object of the
// expected shape.
var ErrMalformedMessage = errors.New("malformed message")

// UnknownTypeError is returned for well-formed frames whose type is missing or
// not one the server accepts.
type UnknownTypeError struct {
	Type string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown message type %q", e.Type)
}

// ParseRequest decodes a raw text frame into a Request. Only the fields the
// request's type uses are looked at; anything else in the object is ignored.
func ParseRequest(data []byte) (Request, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, ErrMalformedMessage
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedMessage, err)
	}

	var typ string
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &typ); err != nil {
			return nil, &UnknownTypeError{Type: string(raw)}
		}
	}

	switch MessageType(typ) {
	case TypeCreateRoom:
		return CreateRoom{}, nil
	case TypeJoinRoom:
		return JoinRoom{Code: codeField(fields)}, nil
	case TypeOffer:
		return Offer{Code: codeField(fields), SDP: fields["sdp"]}, nil
	case TypeAnswer:
		return Answer{Code: codeField(fields), SDP: fields["sdp"]}, nil
	case TypeICECandidate:
		return ICECandidate{Code: codeField(fields), Candidate: fields["candidate"]}, nil
	default:
		return nil, &UnknownTypeError{Type: typ}
	}
}

// codeField returns the "code" string. A missing or non-string code yields "",
// which never names a room.
func codeField(fields map[string]json.RawMessage) string {
	var code string
	if raw, ok := fields["code"]; ok {
		if err := json.Unmarshal(raw, &code); err != nil {
			return ""
		}
	}
	return code
}

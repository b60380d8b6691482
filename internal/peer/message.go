package peer

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

// Data channel message types.
const (
	MessageHello = "hello"
	MessagePing  = "ping"
	MessagePong  = "pong"
	MessageBye   = "bye"
)

// Message represents all WebRTC data channel messages
type Message struct {
	Type    string             `msgpack:"type"`
	Payload msgpack.RawMessage `msgpack:"payload"`
}

// HelloPayload introduces a peer once the channel opens.
type HelloPayload struct {
	Name    string `msgpack:"name"`
	Version string `msgpack:"version"`
	Role    string `msgpack:"role"`
}

// PingPayload is echoed back unchanged in a pong.
type PingPayload struct {
	Seq    uint32 `msgpack:"seq"`
	SentAt int64  `msgpack:"sentAt"` // unix nanoseconds
}

// DecodePayload decodes the message payload into the provided struct
func (m Message) DecodePayload(v any) error {
	return msgpack.Unmarshal(m.Payload, v)
}

// NewMessage creates a new Message with the given type and payload
func NewMessage(t string, payload any) (Message, error) {
	b, err := msgpack.Marshal(payload)
	if err != nil {
		return Message{}, err
	}

	return Message{
		Type:    t,
		Payload: b,
	}, nil
}

// Encode serialises m for the data channel.
func (m Message) Encode() ([]byte, error) {
	return msgpack.Marshal(m)
}

// DecodeMessage parses a data channel frame.
func DecodeMessage(data []byte) (Message, error) {
	var m Message
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return Message{}, fmt.Errorf("decode data channel message: %w", err)
	}
	return m, nil
}

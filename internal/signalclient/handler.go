package signalclient

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/pairline/pairline/internal/signaling"
)

// Handler routes incoming signaling messages to appropriate channels.
type Handler struct {
	client *Client

	PairingCode      chan string
	PeerJoined       chan struct{}
	PeerDisconnected chan struct{}
	Offer            chan json.RawMessage
	Answer           chan json.RawMessage
	Candidate        chan json.RawMessage
	Error            chan string

	// done is closed when the server connection ends.
	done chan struct{}

	stop     chan struct{}
	stopOnce sync.Once
}

// NewHandler creates a new message handler.
func NewHandler(client *Client) *Handler {
	return &Handler{
		client:           client,
		PairingCode:      make(chan string, 1),
		PeerJoined:       make(chan struct{}, 1),
		PeerDisconnected: make(chan struct{}, 1),
		Offer:            make(chan json.RawMessage, 1),
		Answer:           make(chan json.RawMessage, 1),
		Candidate:        make(chan json.RawMessage, 32),
		Error:            make(chan string, 1),
		done:             make(chan struct{}),
		stop:             make(chan struct{}),
	}
}

// Start begins listening to incoming messages and routing them. It returns
// when the connection ends or Close is called.
func (h *Handler) Start() {
	defer close(h.done)

	for msg := range h.client.Incoming() {
		switch msg.Type {

		case signaling.TypePairingCode:
			deliver(h, h.PairingCode, msg.Code)

		case signaling.TypePeerJoined:
			deliver(h, h.PeerJoined, struct{}{})

		case signaling.TypePeerDisconnected:
			deliver(h, h.PeerDisconnected, struct{}{})

		case signaling.TypeOffer:
			deliver(h, h.Offer, msg.SDP)

		case signaling.TypeAnswer:
			deliver(h, h.Answer, msg.SDP)

		case signaling.TypeICECandidate:
			deliver(h, h.Candidate, msg.Candidate)

		case signaling.TypeError:
			deliver(h, h.Error, msg.Message)

		default:
			slog.Debug("ignoring unexpected message", "type", msg.Type)
		}

		select {
		case <-h.stop:
			return
		default:
		}
	}
}

// Done is closed once Start has returned.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Close stops routing; pending deliveries are abandoned.
func (h *Handler) Close() {
	h.stopOnce.Do(func() {
		close(h.stop)
	})
}

func deliver[T any](h *Handler, ch chan T, v T) {
	select {
	case ch <- v:
	case <-h.stop:
	}
}

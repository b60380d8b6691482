package signaling

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Conn is the hub's view of a connected peer. Send must never block and must
// be a no-op once the underlying channel is closed.
type Conn interface {
	ID() string
	Send(msg *Message)
}

// Inbound is one frame read from a connection, already parsed. Err is set
// instead of Request when parsing failed.
type Inbound struct {
	Conn    Conn
	Request Request
	Err     error
}

// Stats is a point-in-time view of the hub.
type Stats struct {
	Rooms        int `json:"rooms"`
	WaitingRooms int `json:"waiting_rooms"`
	PairedRooms  int `json:"paired_rooms"`
	Connections  int `json:"connections"`
}

// ErrHubStopped is returned by calls made after Run has exited.
var ErrHubStopped = errors.New("hub stopped")

// Hub is the central brain of the signaling server.
// It owns every room and is the only place room state is mutated.
type Hub struct {
	// rooms maps pairing codes to rooms.
	rooms map[string]*Room

	// members maps each registered connection to the code of the room it
	// is in, or "" when it is not in a room.
	members map[Conn]string

	register   chan Conn
	unregister chan Conn
	inbound    chan *Inbound
	stats      chan chan Stats

	// done is closed when Run returns.
	done chan struct{}

	newCode CodeGenerator
	logger  *slog.Logger
}

// NewHub creates a new Hub instance.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		rooms:      make(map[string]*Room),
		members:    make(map[Conn]string),
		register:   make(chan Conn),
		unregister: make(chan Conn),
		inbound:    make(chan *Inbound),
		stats:      make(chan chan Stats),
		done:       make(chan struct{}),
		newCode:    RandomCode,
		logger:     logger.With("component", "hub"),
	}
}

// Register announces a new connection.
func (h *Hub) Register(c Conn) {
	select {
	case h.register <- c:
	case <-h.done:
	}
}

// Unregister announces that a connection has closed.
func (h *Hub) Unregister(c Conn) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Deliver hands a parsed frame (or its parse error) to the hub.
func (h *Hub) Deliver(in *Inbound) {
	select {
	case h.inbound <- in:
	case <-h.done:
	}
}

// Stats returns a snapshot taken inside the hub loop.
func (h *Hub) Stats(ctx context.Context) (Stats, error) {
	reply := make(chan Stats, 1)
	select {
	case h.stats <- reply:
	case <-h.done:
		return Stats{}, ErrHubStopped
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
	select {
	case s := <-reply:
		return s, nil
	case <-ctx.Done():
		return Stats{}, ctx.Err()
	}
}

// Done is closed once Run has returned.
func (h *Hub) Done() <-chan struct{} {
	return h.done
}

// Run starts the hub's main processing loop. It is the single goroutine that
// touches rooms and memberships, and it returns when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.logger.Info("hub stopping", "rooms", len(h.rooms), "connections", len(h.members))
			return

		case c := <-h.register:
			h.members[c] = ""
			metricConnections.Inc()
			h.logger.Debug("client registered", "conn", c.ID())

		case c := <-h.unregister:
			h.disconnect(c)

		case in := <-h.inbound:
			h.dispatch(in)

		case reply := <-h.stats:
			reply <- h.snapshot()
		}
	}
}

func (h *Hub) dispatch(in *Inbound) {
	c := in.Conn

	if in.Err != nil {
		var unknown *UnknownTypeError
		if errors.As(in.Err, &unknown) {
			metricRejected.WithLabelValues("unknown_type").Inc()
			h.logger.Warn("unknown message type", "conn", c.ID(), "type", unknown.Type)
			return
		}
		metricRejected.WithLabelValues("malformed").Inc()
		h.logger.Warn("invalid message", "conn", c.ID(), "err", in.Err)
		c.Send(ErrorMessage(ErrTextInvalidFormat))
		return
	}

	metricInbound.WithLabelValues(string(in.Request.Type())).Inc()

	switch req := in.Request.(type) {
	case CreateRoom:
		h.createRoom(c)
	case JoinRoom:
		h.joinRoom(c, req.Code)
	case Offer:
		h.relayOffer(c, req)
	case Answer:
		h.relayAnswer(c, req)
	case ICECandidate:
		h.relayCandidate(c, req)
	default:
		h.logger.Warn("unhandled request", "conn", c.ID(), "type", in.Request.Type())
	}
}

func (h *Hub) createRoom(c Conn) {
	code, err := h.generateCode()
	if err != nil {
		metricRejected.WithLabelValues("no_code").Inc()
		h.logger.Error("room creation failed", "conn", c.ID(), "err", err)
		c.Send(ErrorMessage(ErrTextNoCode))
		return
	}

	h.leaveCurrent(c)

	h.rooms[code] = newRoom(code, c)
	h.members[c] = code
	metricRooms.Inc()
	metricRoomsCreated.Inc()

	h.logger.Info("room created", "code", code, "conn", c.ID())

	c.Send(&Message{Type: TypePairingCode, Code: code})
}

func (h *Hub) joinRoom(c Conn, code string) {
	room, ok := h.rooms[code]
	if !ok {
		metricRejected.WithLabelValues("room_not_found").Inc()
		h.logger.Info("join failed: room not found", "code", code, "conn", c.ID())
		c.Send(ErrorMessage(ErrTextRoomNotFound))
		return
	}

	if room.Has(c) {
		h.logger.Debug("join ignored: already in room", "code", code, "conn", c.ID())
		return
	}

	if room.Full() {
		metricRejected.WithLabelValues("room_full").Inc()
		h.logger.Info("join failed: room is full", "code", code, "conn", c.ID())
		c.Send(ErrorMessage(ErrTextRoomFull))
		return
	}

	h.leaveCurrent(c)

	room.add(c)
	h.members[c] = code
	if room.Full() {
		metricRoomsPaired.Inc()
	}

	h.logger.Info("client joined room", "code", code, "conn", c.ID(), "participants", len(room.Participants))

	h.sendOthers(room, c, &Message{Type: TypePeerJoined})
}

func (h *Hub) relayOffer(c Conn, req Offer) {
	room, ok := h.rooms[req.Code]
	if !ok {
		metricRejected.WithLabelValues("room_not_found").Inc()
		h.logger.Info("offer dropped: room not found", "code", req.Code, "conn", c.ID())
		return
	}

	h.logger.Debug("forwarding offer", "code", req.Code, "conn", c.ID())
	h.sendOthers(room, c, &Message{Type: TypeOffer, SDP: req.SDP})
}

func (h *Hub) relayAnswer(c Conn, req Answer) {
	room, ok := h.rooms[req.Code]
	if !ok {
		metricRejected.WithLabelValues("room_not_found").Inc()
		h.logger.Info("answer dropped: room not found", "code", req.Code, "conn", c.ID())
		return
	}

	h.logger.Debug("forwarding answer", "code", req.Code, "conn", c.ID(), "offerer", room.Offerer.ID())
	room.Offerer.Send(&Message{Type: TypeAnswer, SDP: req.SDP})
	metricRelayed.WithLabelValues(string(TypeAnswer)).Inc()
}

func (h *Hub) relayCandidate(c Conn, req ICECandidate) {
	room, ok := h.rooms[req.Code]
	if !ok {
		metricRejected.WithLabelValues("room_not_found").Inc()
		h.logger.Info("ice candidate dropped: room not found", "code", req.Code, "conn", c.ID())
		return
	}

	h.logger.Debug("forwarding ice candidate", "code", req.Code, "conn", c.ID())
	h.sendOthers(room, c, &Message{Type: TypeICECandidate, Candidate: req.Candidate})
}

func (h *Hub) disconnect(c Conn) {
	if _, ok := h.members[c]; !ok {
		return
	}
	h.leaveCurrent(c)
	delete(h.members, c)
	metricConnections.Dec()
	h.logger.Debug("client unregistered", "conn", c.ID())
}

// leaveCurrent takes c out of whatever room it is in. The room is deleted when
// it empties, otherwise the remaining participants are told the peer is gone.
func (h *Hub) leaveCurrent(c Conn) {
	code := h.members[c]
	if code == "" {
		return
	}
	h.members[c] = ""

	room, ok := h.rooms[code]
	if !ok || !room.remove(c) {
		return
	}

	if room.Empty() {
		delete(h.rooms, code)
		metricRooms.Dec()
		h.logger.Info("room deleted (empty)", "code", code, "age", time.Since(room.CreatedAt).Round(time.Millisecond))
		return
	}

	if room.Offerer == c {
		room.Offerer = room.Participants[0]
	}

	h.logger.Info("peer left room", "code", code, "conn", c.ID(), "participants", len(room.Participants))
	for _, p := range room.Participants {
		p.Send(&Message{Type: TypePeerDisconnected})
	}
}

func (h *Hub) sendOthers(room *Room, from Conn, msg *Message) {
	for _, p := range room.Others(from) {
		p.Send(msg)
		metricRelayed.WithLabelValues(string(msg.Type)).Inc()
	}
}

func (h *Hub) snapshot() Stats {
	s := Stats{Rooms: len(h.rooms), Connections: len(h.members)}
	for _, room := range h.rooms {
		if room.Full() {
			s.PairedRooms++
		} else {
			s.WaitingRooms++
		}
	}
	return s
}

package peer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/pairline/pairline/internal/config"
	"github.com/pairline/pairline/internal/signalclient"
	"github.com/pairline/pairline/internal/version"
)

// Role is the side a peer plays in negotiation. The room creator offers.
type Role string

const (
	RoleOfferer  Role = "offerer"
	RoleAnswerer Role = "answerer"
)

// Result summarises a completed session.
type Result struct {
	Role        Role
	Code        string
	PeerName    string
	PeerVersion string
	RTT         time.Duration
	SetupTime   time.Duration
}

type channelEvent struct {
	dc   *pion.DataChannel
	open bool
	data []byte
}

// Session negotiates one peer connection through the relay and verifies the
// resulting data channel with a hello and ping exchange.
type Session struct {
	client  *signalclient.Client
	handler *signalclient.Handler
	code    string
	role    Role
	name    string

	pc         *pion.PeerConnection
	candidates candidateQueue

	events chan channelEvent
	failed chan error
	closed chan struct{}
	once   sync.Once

	onStage func(string)
	logger  *slog.Logger

	// progress, touched only by Run
	peerHello *HelloPayload
	rtt       time.Duration
	ponged    bool
	pinged    bool
	byeSeen   bool
}

// NewSession prepares a peer connection for the room identified by code.
func NewSession(cfg *config.Client, client *signalclient.Client, handler *signalclient.Handler, code string, role Role, name string) (*Session, error) {
	pc, err := NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}

	s := &Session{
		client:  client,
		handler: handler,
		code:    code,
		role:    role,
		name:    name,
		pc:      pc,
		events:  make(chan channelEvent, 16),
		failed:  make(chan error, 1),
		closed:  make(chan struct{}),
		onStage: func(string) {},
		logger:  slog.Default().With("component", "peer", "role", string(role), "code", code),
	}

	pc.OnICECandidate(func(c *pion.ICECandidate) {
		if c == nil {
			return
		}
		msg, err := signalclient.Candidate(code, c.ToJSON())
		if err != nil {
			s.logger.Warn("encode candidate", "err", err)
			return
		}
		client.SendMessage(msg)
	})

	pc.OnConnectionStateChange(func(state pion.PeerConnectionState) {
		s.logger.Debug("connection state", "state", state.String())
		if state == pion.PeerConnectionStateFailed {
			select {
			case s.failed <- WrapError("connect", ErrConnectionFailed, "ICE negotiation failed"):
			default:
			}
		}
	})

	if role == RoleAnswerer {
		pc.OnDataChannel(func(dc *pion.DataChannel) {
			s.attach(dc)
		})
	}

	return s, nil
}

// OnStage registers a callback receiving human-readable progress updates.
func (s *Session) OnStage(fn func(string)) {
	if fn != nil {
		s.onStage = fn
	}
}

// Run drives negotiation until the data channel has been verified, the peer
// goes away, or ctx ends.
func (s *Session) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	if s.role == RoleOfferer {
		if err := s.sendOffer(); err != nil {
			return nil, err
		}
		s.onStage("Offer sent, waiting for answer...")
	} else {
		s.onStage("Waiting for offer...")
	}

	for {
		select {
		case <-ctx.Done():
			return nil, WrapError("negotiate", ErrTimeout, ctx.Err().Error())

		case raw := <-s.handler.Offer:
			if err := s.handleOffer(raw); err != nil {
				return nil, err
			}

		case raw := <-s.handler.Answer:
			if err := s.handleAnswer(raw); err != nil {
				return nil, err
			}

		case raw := <-s.handler.Candidate:
			ice, err := ParseCandidate(raw)
			if err != nil {
				s.logger.Warn("dropping candidate", "err", err)
				continue
			}
			if err := s.candidates.add(ice, s.pc.AddICECandidate); err != nil {
				s.logger.Warn("add candidate", "err", err)
			}

		case <-s.handler.PeerDisconnected:
			if s.role == RoleAnswerer && s.peerHello != nil && s.pinged {
				return s.result(start), nil
			}
			return nil, NewError("negotiate", ErrPeerDisconnected)

		case msg := <-s.handler.Error:
			return nil, WrapError("negotiate", ErrSignaling, msg)

		case <-s.handler.Done():
			return nil, NewError("negotiate", ErrServerClosed)

		case err := <-s.failed:
			return nil, err

		case ev := <-s.events:
			done, err := s.handleChannel(ev)
			if err != nil {
				return nil, err
			}
			if done {
				return s.result(start), nil
			}
		}
	}
}

// Close tears down the peer connection.
func (s *Session) Close() error {
	var err error
	s.once.Do(func() {
		close(s.closed)
		err = s.pc.Close()
	})
	return err
}

func (s *Session) sendOffer() error {
	dc, err := CreateDataChannel(s.pc)
	if err != nil {
		return err
	}
	s.attach(dc)

	offer, err := CreateOffer(s.pc)
	if err != nil {
		return err
	}
	msg, err := signalclient.Offer(s.code, offer)
	if err != nil {
		return NewError("send offer", err)
	}
	if !s.client.SendMessage(msg) {
		return NewError("send offer", ErrServerClosed)
	}
	return nil
}

func (s *Session) handleOffer(raw []byte) error {
	if s.role != RoleAnswerer {
		s.logger.Warn("ignoring offer received as offerer")
		return nil
	}

	offer, err := ParseDescription(raw, pion.SDPTypeOffer)
	if err != nil {
		return err
	}
	answer, err := CreateAnswer(s.pc, offer)
	if err != nil {
		return err
	}
	msg, err := signalclient.Answer(s.code, answer)
	if err != nil {
		return NewError("send answer", err)
	}
	if !s.client.SendMessage(msg) {
		return NewError("send answer", ErrServerClosed)
	}

	s.onStage("Answer sent, connecting...")
	return s.flushCandidates()
}

func (s *Session) handleAnswer(raw []byte) error {
	if s.role != RoleOfferer {
		s.logger.Warn("ignoring answer received as answerer")
		return nil
	}

	answer, err := ParseDescription(raw, pion.SDPTypeAnswer)
	if err != nil {
		return err
	}
	if err := s.pc.SetRemoteDescription(answer); err != nil {
		return NewError("set remote description", err)
	}

	s.onStage("Answer received, connecting...")
	return s.flushCandidates()
}

func (s *Session) flushCandidates() error {
	if err := s.candidates.flush(s.pc.AddICECandidate); err != nil {
		return NewError("add ICE candidate", err)
	}
	return nil
}

// attach forwards data channel callbacks into Run's loop.
func (s *Session) attach(dc *pion.DataChannel) {
	dc.OnOpen(func() {
		s.push(channelEvent{dc: dc, open: true})
	})
	dc.OnMessage(func(msg pion.DataChannelMessage) {
		s.push(channelEvent{dc: dc, data: msg.Data})
	})
}

func (s *Session) push(ev channelEvent) {
	select {
	case s.events <- ev:
	case <-s.closed:
	}
}

func (s *Session) handleChannel(ev channelEvent) (bool, error) {
	if ev.open {
		s.onStage("Data channel open, verifying...")
		if err := s.send(ev.dc, MessageHello, HelloPayload{Name: s.name, Version: version.Version, Role: string(s.role)}); err != nil {
			return false, err
		}
		if s.role == RoleOfferer {
			return false, s.send(ev.dc, MessagePing, PingPayload{Seq: 1, SentAt: time.Now().UnixNano()})
		}
		return false, nil
	}

	msg, err := DecodeMessage(ev.data)
	if err != nil {
		s.logger.Warn("dropping data channel frame", "err", err)
		return false, nil
	}

	switch msg.Type {
	case MessageHello:
		var hello HelloPayload
		if err := msg.DecodePayload(&hello); err != nil {
			return false, NewError("decode hello", err)
		}
		s.peerHello = &hello

	case MessagePing:
		var ping PingPayload
		if err := msg.DecodePayload(&ping); err != nil {
			return false, NewError("decode ping", err)
		}
		if err := s.send(ev.dc, MessagePong, ping); err != nil {
			return false, err
		}
		s.pinged = true

	case MessagePong:
		var pong PingPayload
		if err := msg.DecodePayload(&pong); err != nil {
			return false, NewError("decode pong", err)
		}
		s.rtt = time.Since(time.Unix(0, pong.SentAt))
		s.ponged = true

	case MessageBye:
		s.byeSeen = true

	default:
		s.logger.Debug("ignoring data channel message", "type", msg.Type)
	}

	switch s.role {
	case RoleOfferer:
		if s.peerHello != nil && s.ponged {
			return true, s.send(ev.dc, MessageBye, struct{}{})
		}
	case RoleAnswerer:
		if s.peerHello != nil && s.pinged && s.byeSeen {
			return true, nil
		}
	}
	return false, nil
}

func (s *Session) send(dc *pion.DataChannel, t string, payload any) error {
	msg, err := NewMessage(t, payload)
	if err != nil {
		return NewError("encode "+t, err)
	}
	data, err := msg.Encode()
	if err != nil {
		return NewError("encode "+t, err)
	}
	if err := dc.Send(data); err != nil {
		return NewError("send "+t, err)
	}
	return nil
}

func (s *Session) result(start time.Time) *Result {
	r := &Result{
		Role:      s.role,
		Code:      s.code,
		RTT:       s.rtt,
		SetupTime: time.Since(start),
	}
	if s.peerHello != nil {
		r.PeerName = s.peerHello.Name
		r.PeerVersion = s.peerHello.Version
	}
	return r
}

package signaling

import "time"

// MaxParticipants is the capacity of a room.
const MaxParticipants = 2

// Room represents a single room where two peers exchange signaling messages.
type Room struct {
	// Code is the 6-digit pairing code the room is stored under.
	Code string

	// Offerer is the connection that created the room. Answers are always
	// delivered to it.
	Offerer Conn

	// Participants are the connections currently in the room, in join order.
	Participants []Conn

	CreatedAt time.Time
}

func newRoom(code string, offerer Conn) *Room {
	return &Room{
		Code:         code,
		Offerer:      offerer,
		Participants: []Conn{offerer},
		CreatedAt:    time.Now(),
	}
}

// Full reports whether the room has reached MaxParticipants.
func (r *Room) Full() bool {
	return len(r.Participants) >= MaxParticipants
}

// Empty reports whether the last participant has left.
func (r *Room) Empty() bool {
	return len(r.Participants) == 0
}

// Has reports whether c is a participant.
func (r *Room) Has(c Conn) bool {
	for _, p := range r.Participants {
		if p == c {
			return true
		}
	}
	return false
}

// Others returns every participant except c, preserving join order.
func (r *Room) Others(c Conn) []Conn {
	others := make([]Conn, 0, len(r.Participants))
	for _, p := range r.Participants {
		if p != c {
			others = append(others, p)
		}
	}
	return others
}

func (r *Room) add(c Conn) {
	r.Participants = append(r.Participants, c)
}

// remove drops c from the participants and reports whether it was present.
func (r *Room) remove(c Conn) bool {
	for i, p := range r.Participants {
		if p == c {
			r.Participants = append(r.Participants[:i], r.Participants[i+1:]...)
			return true
		}
	}
	return false
}

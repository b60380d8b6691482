package peer

import (
	"encoding/json"
	"fmt"

	pion "github.com/pion/webrtc/v4"

	"github.com/pairline/pairline/internal/config"
)

// DataChannelLabel names the channel the offerer opens.
const DataChannelLabel = "pairline"

func NewPeerConnection(cfg *config.Client) (*pion.PeerConnection, error) {
	var iceServers []pion.ICEServer
	if stun := cfg.GetSTUNServers(); stun != nil {
		iceServers = append(iceServers, pion.ICEServer{URLs: stun})
	}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		iceServers = append(iceServers, pion.ICEServer{
			URLs:       turnServers,
			Username:   cfg.TURNUser,
			Credential: cfg.TURNPass,
		})
	}

	policy := pion.ICETransportPolicyAll
	if turnServers != nil && cfg.ForceRelay {
		policy = pion.ICETransportPolicyRelay
	}

	pc, err := pion.NewPeerConnection(pion.Configuration{
		ICEServers:         iceServers,
		ICETransportPolicy: policy,
	})
	if err != nil {
		return nil, NewError("create peer connection", err)
	}
	return pc, nil
}

func CreateDataChannel(pc *pion.PeerConnection) (*pion.DataChannel, error) {
	ordered := true
	dc, err := pc.CreateDataChannel(DataChannelLabel, &pion.DataChannelInit{
		Ordered: &ordered,
	})
	if err != nil {
		return nil, NewError("create data channel", err)
	}
	return dc, nil
}

func CreateOffer(pc *pion.PeerConnection) (*pion.SessionDescription, error) {
	offer, err := pc.CreateOffer(nil)
	if err != nil {
		return nil, NewError("create offer", err)
	}

	if err = pc.SetLocalDescription(offer); err != nil {
		return nil, NewError("set local description", err)
	}

	return pc.LocalDescription(), nil
}

func CreateAnswer(pc *pion.PeerConnection, offer pion.SessionDescription) (*pion.SessionDescription, error) {
	if err := pc.SetRemoteDescription(offer); err != nil {
		return nil, NewError("set remote description", err)
	}

	answer, err := pc.CreateAnswer(nil)
	if err != nil {
		return nil, NewError("create answer", err)
	}

	if err = pc.SetLocalDescription(answer); err != nil {
		return nil, NewError("set local description", err)
	}

	return pc.LocalDescription(), nil
}

// ParseDescription decodes a relayed session description. Browsers and this CLI
// send the {"type","sdp"} object; a bare SDP string is accepted as want.
func ParseDescription(raw json.RawMessage, want pion.SDPType) (pion.SessionDescription, error) {
	var desc pion.SessionDescription
	if err := json.Unmarshal(raw, &desc); err != nil {
		var sdp string
		if strErr := json.Unmarshal(raw, &sdp); strErr != nil {
			return desc, WrapError("parse session description", ErrUnexpectedSignal, err.Error())
		}
		desc = pion.SessionDescription{Type: want, SDP: sdp}
	}

	if desc.Type != want {
		return desc, WrapError("parse session description", ErrUnexpectedSignal,
			fmt.Sprintf("got %s, want %s", desc.Type, want))
	}
	if desc.SDP == "" {
		return desc, WrapError("parse session description", ErrUnexpectedSignal, "empty sdp")
	}
	return desc, nil
}

// ParseCandidate decodes a relayed ICE candidate.
func ParseCandidate(raw json.RawMessage) (pion.ICECandidateInit, error) {
	var ice pion.ICECandidateInit
	if err := json.Unmarshal(raw, &ice); err != nil {
		return ice, NewError("parse ICE candidate", err)
	}
	return ice, nil
}

package peer

import pion "github.com/pion/webrtc/v4"

// candidateQueue holds remote candidates that arrive before the remote
// description is set; pion rejects them until then.
type candidateQueue struct {
	ready   bool
	pending []pion.ICECandidateInit
}

// add applies c immediately once ready, otherwise queues it.
func (q *candidateQueue) add(c pion.ICECandidateInit, apply func(pion.ICECandidateInit) error) error {
	if !q.ready {
		q.pending = append(q.pending, c)
		return nil
	}
	return apply(c)
}

// flush marks the queue ready and applies everything queued, in arrival order.
func (q *candidateQueue) flush(apply func(pion.ICECandidateInit) error) error {
	q.ready = true
	pending := q.pending
	q.pending = nil
	for _, c := range pending {
		if err := apply(c); err != nil {
			return err
		}
	}
	return nil
}

package core

import "time"

// pendingRequest is an echo request of the current attempt waiting for its reply.
type pendingRequest struct {
	packet  EchoPacket
	sentAt  time.Time
	matched bool
}

// pendingSet holds the requests sent by one probing attempt, in the order they were sent.
type pendingSet struct {
	requests []*pendingRequest
}

func newPendingSet(capacity int) *pendingSet {
	return &pendingSet{requests: make([]*pendingRequest, 0, capacity)}
}

// add records a request that has just been handed to the OS.
func (s *pendingSet) add(packet EchoPacket, sentAt time.Time) {
	s.requests = append(s.requests, &pendingRequest{packet: packet, sentAt: sentAt})
}

// match marks the first unmatched request echoed by reply. A request is matched at most once.
func (s *pendingSet) match(reply EchoPacket) (*pendingRequest, bool) {
	for _, req := range s.requests {
		if req.matched {
			continue
		}
		if reply.Echoes(req.packet) {
			req.matched = true
			return req, true
		}
	}
	return nil, false
}

// matchedCount is the number of requests that received their reply.
func (s *pendingSet) matchedCount() int {
	count := 0
	for _, req := range s.requests {
		if req.matched {
			count++
		}
	}
	return count
}

// len is the number of requests sent in the attempt.
func (s *pendingSet) len() int {
	return len(s.requests)
}

package core

import "time"

// ProbeResult describes the outcome of a single probing attempt.
type ProbeResult struct {
	// FirstSeq is the sequence number of the first request of the attempt.
	FirstSeq uint16

	// Sent is the number of echo requests handed to the OS.
	Sent int

	// Matched is the number of requests whose reply was observed.
	Matched int

	// Discarded counts datagrams that were malformed, corrupted or did not match any request.
	Discarded int

	// BytesReceived is the total size of all datagrams read during the attempt.
	BytesReceived int

	// RTT is the round-trip time of the first matched request, zero if none matched.
	RTT time.Duration

	// Elapsed is the wall time spent in the attempt.
	Elapsed time.Duration

	// Err is nil on success, otherwise it wraps ErrTimeout, ErrRead or ErrWrite.
	Err error
}

// Succeeded reports whether the attempt confirmed the destination is reachable.
func (r *ProbeResult) Succeeded() bool {
	return r.Err == nil
}

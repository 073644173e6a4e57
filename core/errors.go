package core

import "errors"

// Kinds of failure a probe can report. Returned errors wrap one of these together with the
// underlying cause, use errors.Is to tell them apart.
var (
	// ErrOpen is returned when the raw socket could not be created or configured.
	ErrOpen = errors.New("failed to open raw socket")

	// ErrWrite is returned when an echo request could not be handed to the OS.
	ErrWrite = errors.New("failed to write to socket")

	// ErrRead is returned when reading from the socket failed with an unexpected error.
	ErrRead = errors.New("failed to read from socket")

	// ErrTimeout is returned when no matching echo reply arrived before the deadline.
	ErrTimeout = errors.New("timed out")

	// ErrNoData is returned by Transport.Recv when nothing is waiting on the socket.
	// It is a normal poll outcome, not a failure.
	ErrNoData = errors.New("no data available")
)

package core

import (
	"fmt"
	"net/netip"
	"time"

	log "github.com/sirupsen/logrus"
)

// Transport moves raw ICMPv4 datagrams between a Prober and the network.
// A Transport is owned by exactly one Prober and is not safe for concurrent use.
type Transport interface {
	// Send hands an ICMP message to the OS for delivery to dst.
	Send(packet []byte, dst netip.Addr) error

	// Recv makes a single non-blocking read of a whole datagram, IPv4 header included.
	// It returns ErrNoData when nothing is waiting.
	Recv(buf []byte) (int, error)

	// Close releases the socket.
	Close() error
}

// sendRetrier hands a packet to the OS, retrying while the OS reports a transient
// send buffer exhaustion.
type sendRetrier struct {
	attempts  int
	delay     time.Duration
	transient func(error) bool
	sleep     func(time.Duration)
	logger    *log.Entry
}

func newSendRetrier(settings *Settings, logger *log.Entry) *sendRetrier {
	return &sendRetrier{
		attempts:  settings.SendAttempts,
		delay:     settings.SendRetryDelay,
		transient: isTransientSendError,
		sleep:     time.Sleep,
		logger:    logger,
	}
}

// send calls write until it succeeds, fails with a non transient error or the attempts run out.
func (r *sendRetrier) send(write func() error) error {
	var err error
	for attempt := 1; attempt <= r.attempts; attempt++ {
		err = write()
		if err == nil {
			return nil
		}

		if !r.transient(err) {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		if attempt < r.attempts {
			r.logger.Warnf("Send attempt %d of %d failed with %s, retrying in %s", attempt, r.attempts, err, r.delay)
			r.sleep(r.delay)
		}
	}

	return fmt.Errorf("%w: giving up after %d attempts: %w", ErrWrite, r.attempts, err)
}

//go:build !unix && !windows

package core

import (
	"errors"
	"fmt"
	"net/netip"

	log "github.com/sirupsen/logrus"
)

// SocketTransport is a Transport over a non-blocking raw ICMPv4 socket.
// Raw sockets are only supported on unix platforms and Windows.
type SocketTransport struct{}

// OpenTransport always fails on this platform.
func OpenTransport(settings *Settings, logger *log.Entry) (*SocketTransport, error) {
	return nil, fmt.Errorf("%w: %w", ErrOpen, errors.ErrUnsupported)
}

// Send implements Transport.
func (t *SocketTransport) Send(packet []byte, dst netip.Addr) error {
	return fmt.Errorf("%w: %w", ErrWrite, errors.ErrUnsupported)
}

// Recv implements Transport.
func (t *SocketTransport) Recv(buf []byte) (int, error) {
	return 0, fmt.Errorf("%w: %w", ErrRead, errors.ErrUnsupported)
}

// Close implements Transport.
func (t *SocketTransport) Close() error {
	return nil
}

//go:build unix

package core

import (
	"errors"
	"fmt"
	"net/netip"

	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

// SocketTransport is a Transport over a non-blocking raw ICMPv4 socket.
type SocketTransport struct {
	fd      int
	retrier *sendRetrier
	logger  *log.Entry
}

// OpenTransport creates a raw ICMPv4 socket in non-blocking mode, bound to settings.Interface when set.
func OpenTransport(settings *Settings, logger *log.Entry) (*SocketTransport, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_RAW, unix.IPPROTO_ICMP)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}
	unix.CloseOnExec(fd)

	if err := unix.SetNonblock(fd, true); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("%w: could not set non-blocking mode: %w", ErrOpen, err)
	}

	if settings.Interface != "" {
		if err := bindToDevice(fd, settings.Interface, logger); err != nil {
			_ = unix.Close(fd)
			return nil, fmt.Errorf("%w: could not bind to interface %s: %w", ErrOpen, settings.Interface, err)
		}
	}

	logger.Debugf("Raw ICMP socket %d opened", fd)

	return &SocketTransport{
		fd:      fd,
		retrier: newSendRetrier(settings, logger),
		logger:  logger,
	}, nil
}

// Send implements Transport.
func (t *SocketTransport) Send(packet []byte, dst netip.Addr) error {
	if !dst.Is4() {
		return fmt.Errorf("%w: %s is not an IPv4 address", ErrWrite, dst)
	}

	sa := &unix.SockaddrInet4{Addr: dst.As4()}
	return t.retrier.send(func() error {
		return unix.Sendto(t.fd, packet, 0, sa)
	})
}

// Recv implements Transport.
func (t *SocketTransport) Recv(buf []byte) (int, error) {
	n, _, err := unix.Recvfrom(t.fd, buf, 0)
	switch {
	case err == nil:
		return n, nil
	case errors.Is(err, unix.EAGAIN), errors.Is(err, unix.EWOULDBLOCK), errors.Is(err, unix.EINTR):
		return 0, ErrNoData
	default:
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
}

// Close implements Transport.
func (t *SocketTransport) Close() error {
	if t.fd < 0 {
		return nil
	}

	t.logger.Debugf("Closing raw ICMP socket %d", t.fd)
	err := unix.Close(t.fd)
	t.fd = -1
	return err
}

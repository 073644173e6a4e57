package core

import (
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/icmp"
	"golang.org/x/net/ipv4"
)

// recvWait bounds how long a read waits for a datagram before reporting ErrNoData.
const recvWait = time.Millisecond

// SocketTransport is a Transport over a raw ICMPv4 socket.
// Windows strips the IPv4 header of received datagrams, so Recv puts a header
// rebuilt from the peer address back in front of the ICMP message.
type SocketTransport struct {
	conn    *icmp.PacketConn
	retrier *sendRetrier
	logger  *log.Entry
}

// OpenTransport creates a raw ICMPv4 socket listening on every local address.
// Binding to an interface is not supported here and settings.Interface is ignored.
func OpenTransport(settings *Settings, logger *log.Entry) (*SocketTransport, error) {
	conn, err := icmp.ListenPacket("ip4:icmp", "0.0.0.0")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrOpen, err)
	}

	if settings.Interface != "" {
		logger.Debugf("Ignoring interface %s, binding a socket to a device is not supported here", settings.Interface)
	}

	logger.Debugf("Raw ICMP socket opened on %s", conn.LocalAddr())

	return &SocketTransport{
		conn:    conn,
		retrier: newSendRetrier(settings, logger),
		logger:  logger,
	}, nil
}

// Send implements Transport.
func (t *SocketTransport) Send(packet []byte, dst netip.Addr) error {
	if !dst.Is4() {
		return fmt.Errorf("%w: %s is not an IPv4 address", ErrWrite, dst)
	}

	addr := &net.IPAddr{IP: dst.AsSlice()}
	return t.retrier.send(func() error {
		_, err := t.conn.WriteTo(packet, addr)
		return err
	})
}

// Recv implements Transport.
func (t *SocketTransport) Recv(buf []byte) (int, error) {
	if len(buf) <= ipv4HeaderLength {
		return 0, fmt.Errorf("%w: buffer of %d bytes cannot hold a datagram", ErrRead, len(buf))
	}

	if err := t.conn.SetReadDeadline(time.Now().Add(recvWait)); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}

	n, peer, err := t.conn.ReadFrom(buf[ipv4HeaderLength:])
	if err != nil {
		var neterr net.Error
		if errors.As(err, &neterr) && neterr.Timeout() {
			return 0, ErrNoData
		}
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}

	h := &ipv4.Header{
		Version:  ipv4.Version,
		Len:      ipv4.HeaderLen,
		TotalLen: ipv4.HeaderLen + n,
		Protocol: icmpProtocol,
		Dst:      net.IPv4zero,
	}
	if ipAddr, ok := peer.(*net.IPAddr); ok {
		h.Src = ipAddr.IP
	}

	header, err := h.Marshal()
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRead, err)
	}
	copy(buf, header)

	return ipv4HeaderLength + n, nil
}

// Close implements Transport.
func (t *SocketTransport) Close() error {
	if t.conn == nil {
		return nil
	}

	t.logger.Debug("Closing raw ICMP socket")
	err := t.conn.Close()
	t.conn = nil
	return err
}

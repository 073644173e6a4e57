package core

import (
	"net"
	"net/netip"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// queuedDatagram is a datagram the fake transport hands out once readyAt has passed.
type queuedDatagram struct {
	data    []byte
	readyAt time.Time
}

// fakeTransport is a scripted Transport. onSend decides what the network answers to each
// request, recvErr makes every read fail.
type fakeTransport struct {
	sent    []EchoPacket
	dsts    []netip.Addr
	queue   []queuedDatagram
	sendErr error
	recvErr error
	reads   int
	closed  bool

	// flood is returned by every read that finds no queued datagram, the socket never runs dry.
	flood []byte

	// onSend is called with every request and its index since the transport was created.
	onSend func(f *fakeTransport, req EchoPacket, index int)
}

func (f *fakeTransport) Send(packet []byte, dst netip.Addr) error {
	if f.sendErr != nil {
		return f.sendErr
	}

	req := EchoPacket{raw: append([]byte(nil), packet...)}
	f.sent = append(f.sent, req)
	f.dsts = append(f.dsts, dst)
	if f.onSend != nil {
		f.onSend(f, req, len(f.sent)-1)
	}
	return nil
}

func (f *fakeTransport) Recv(buf []byte) (int, error) {
	f.reads++
	if f.recvErr != nil {
		return 0, f.recvErr
	}

	now := time.Now()
	for i, d := range f.queue {
		if d.readyAt.After(now) {
			continue
		}
		f.queue = append(f.queue[:i], f.queue[i+1:]...)
		return copy(buf, d.data), nil
	}
	if f.flood != nil {
		return copy(buf, f.flood), nil
	}
	return 0, ErrNoData
}

func (f *fakeTransport) Close() error {
	f.closed = true
	return nil
}

// deliver queues a datagram that becomes readable after delay.
func (f *fakeTransport) deliver(data []byte, delay time.Duration) {
	f.queue = append(f.queue, queuedDatagram{data: data, readyAt: time.Now().Add(delay)})
}

// echoAll answers every request with a correct reply after delay.
func echoAll(delay time.Duration) func(*fakeTransport, EchoPacket, int) {
	return func(f *fakeTransport, req EchoPacket, _ int) {
		f.deliver(replyDatagram(req.Identifier(), req.Sequence(), req.Payload()), delay)
	}
}

// replyDatagram builds an IPv4 datagram carrying an echo reply, the way it is read
// from a raw socket.
func replyDatagram(id, seq uint16, payload []byte) []byte {
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolICMPv4,
		SrcIP:    net.IPv4(192, 0, 2, 1),
		DstIP:    net.IPv4(192, 0, 2, 100),
	}
	echo := &layers.ICMPv4{
		TypeCode: layers.CreateICMPv4TypeCode(layers.ICMPv4TypeEchoReply, 0),
		Id:       id,
		Seq:      seq,
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{ComputeChecksums: true, FixLengths: true}
	if err := gopacket.SerializeLayers(buf, opts, ip, echo, gopacket.Payload(payload)); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

// corrupted flips the last bit of a datagram, breaking the ICMP checksum.
func corrupted(datagram []byte) []byte {
	c := append([]byte(nil), datagram...)
	c[len(c)-1] ^= 0x01
	return c
}

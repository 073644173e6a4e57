package core

import (
	"errors"
	"fmt"
	"math/rand"
	"net/netip"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/net/ipv4"
)

const (
	// requestsPerProbe is the amount of echo requests sent back-to-back by every attempt.
	requestsPerProbe = 3

	// recvBufferSize is the size of the buffer a datagram is read into.
	recvBufferSize = 4096
)

// Prober checks whether a single IPv4 destination answers ICMP echo requests.
// A Prober owns its transport and must not be used from two goroutines concurrently.
type Prober struct {
	// Stats contain the overall statistics of the prober
	Stats Statistics

	settings *Settings

	// transport is the raw socket used to send requests and receive replies.
	transport Transport

	// dst is the address being probed.
	dst netip.Addr

	// id is the echo identifier shared by every request of this prober.
	id uint16

	// seq is the sequence number of the next request, it wraps around after 65535.
	seq uint16

	// rng generates the identifier and the request payloads.
	rng *rand.Rand

	// logger is an instance of logrus used to log activities related to this prober
	logger *log.Entry

	// probeHandlers are the callback functions called after every probing attempt.
	probeHandlers []func(*Prober, *ProbeResult)
}

// NewProber opens a raw ICMP socket and creates a Prober for dst.
// The returned error wraps ErrOpen when the socket could not be created.
func NewProber(dst netip.Addr, settings *Settings) (*Prober, error) {
	if settings == nil {
		settings = DefaultSettings()
	}

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	if !dst.Is4() {
		return nil, fmt.Errorf("destination %s is not an IPv4 address", dst)
	}

	logger := NewLogger(settings.LoggingLevel, os.Stderr).WithField("dst", dst.String())

	transport, err := OpenTransport(settings, logger)
	if err != nil {
		return nil, err
	}

	return newProber(transport, dst, settings, newRandomSource(), logger), nil
}

// NewProberWithTransport creates a Prober that uses the given transport and random source
// instead of opening a socket. The Prober takes ownership of transport. A nil rng is
// replaced by a time seeded source.
func NewProberWithTransport(transport Transport, dst netip.Addr, settings *Settings, rng *rand.Rand) (*Prober, error) {
	if settings == nil {
		settings = DefaultSettings()
	}

	if err := settings.validate(); err != nil {
		return nil, fmt.Errorf("invalid settings: %w", err)
	}

	if !dst.Is4() {
		return nil, fmt.Errorf("destination %s is not an IPv4 address", dst)
	}

	if rng == nil {
		rng = newRandomSource()
	}

	logger := NewLogger(settings.LoggingLevel, os.Stderr).WithField("dst", dst.String())
	return newProber(transport, dst, settings, rng, logger), nil
}

func newRandomSource() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UTC().UnixNano()))
}

func newProber(transport Transport, dst netip.Addr, settings *Settings, rng *rand.Rand, logger *log.Entry) *Prober {
	id := uint16(rng.Intn(1 << 16))

	p := &Prober{
		Stats:     NewStatistics(),
		settings:  settings,
		transport: transport,
		dst:       dst,
		id:        id,
		seq:       0,
		rng:       rng,
		logger:    logger.WithField("id", id),
	}

	p.logger.Infof("Created prober for %s with identifier %d", dst, id)
	return p
}

// Destination is the address being probed.
func (p *Prober) Destination() netip.Addr {
	return p.dst
}

// Identifier is the echo identifier of every request sent by this prober.
func (p *Prober) Identifier() uint16 {
	return p.id
}

// PayloadSize is the amount of data bytes carried by every request.
func (p *Prober) PayloadSize() int {
	return p.settings.PayloadSize
}

// AddOnProbe adds a handler function that will be called after every probing attempt
func (p *Prober) AddOnProbe(handler func(*Prober, *ProbeResult)) {
	p.probeHandlers = append(p.probeHandlers, handler)
}

// Close releases the prober's socket.
func (p *Prober) Close() error {
	p.logger.Info("Closing prober")
	return p.transport.Close()
}

// Probe sends a batch of echo requests and waits up to timeout for a matching reply.
// It returns nil when at least one request was answered, otherwise an error wrapping
// ErrTimeout, ErrRead or ErrWrite.
func (p *Prober) Probe(timeout time.Duration) error {
	start := time.Now()
	res := &ProbeResult{FirstSeq: p.seq}

	res.Err = p.probe(timeout, res)
	res.Elapsed = time.Since(start)

	p.Stats.AttemptRecorded(res)

	p.logger.Debug("Calling all handlers for latest probe")
	for _, f := range p.probeHandlers {
		f(p, res)
	}

	return res.Err
}

func (p *Prober) probe(timeout time.Duration, res *ProbeResult) error {
	pending := newPendingSet(requestsPerProbe)

	for i := 0; i < requestsPerProbe; i++ {
		req, err := p.nextRequest()
		if err != nil {
			return fmt.Errorf("%w: %w", ErrWrite, err)
		}

		p.logger.Tracef("Writing ICMP message %x", req.Bytes())
		if err := p.transport.Send(req.Bytes(), p.dst); err != nil {
			if !errors.Is(err, ErrWrite) {
				err = fmt.Errorf("%w: %w", ErrWrite, err)
			}
			return err
		}

		pending.add(req, time.Now())
		res.Sent++
	}

	p.logger.Debugf("Sent %d echo requests starting at sequence %d", pending.len(), res.FirstSeq)

	return p.waitForReplies(time.Now().Add(timeout), timeout, pending, res)
}

// nextRequest builds the next echo request, consuming one sequence number.
func (p *Prober) nextRequest() (EchoPacket, error) {
	payload := make([]byte, p.settings.PayloadSize)
	p.rng.Read(payload)

	return BuildEchoRequest(p.id, p.nextSeq(), payload)
}

func (p *Prober) nextSeq() uint16 {
	seq := p.seq
	p.seq++
	return seq
}

// waitForReplies polls the transport until a pending request is matched and the socket
// is drained, the deadline passes, or a read fails.
func (p *Prober) waitForReplies(deadline time.Time, timeout time.Duration, pending *pendingSet, res *ProbeResult) error {
	buffer := make([]byte, recvBufferSize)
	success := false

	for time.Now().Before(deadline) {
		n, err := p.transport.Recv(buffer)
		switch {
		case err == nil:
			res.BytesReceived += n
			if p.handleDatagram(buffer[:n], pending, res) {
				success = true
			}
		case errors.Is(err, ErrNoData):
			if success {
				return nil
			}
			p.sleepUntilNextPoll(deadline)
		default:
			if !errors.Is(err, ErrRead) {
				err = fmt.Errorf("%w: %w", ErrRead, err)
			}
			return err
		}
	}

	if success {
		return nil
	}

	p.logger.Debugf("Timing out whilst waiting for ICMP response after receiving %d bytes", res.BytesReceived)
	return fmt.Errorf("%w: no matching echo reply from %s within %s", ErrTimeout, p.dst, timeout)
}

// handleDatagram strips the IPv4 header of a received datagram and tries to match the
// echo reply it carries. It returns true when a pending request got matched.
func (p *Prober) handleDatagram(datagram []byte, pending *pendingSet, res *ProbeResult) bool {
	if len(datagram) <= ipv4HeaderLength {
		p.logger.Debugf("Discarding %d bytes datagram, too short to carry an ICMP message", len(datagram))
		res.Discarded++
		return false
	}

	p.traceHeader(datagram[:ipv4HeaderLength])

	reply, ok := ParseEchoReply(datagram[ipv4HeaderLength:])
	if !ok {
		p.logger.Debug("Discarding datagram that is not a valid echo reply")
		res.Discarded++
		return false
	}

	req, ok := pending.match(reply)
	if !ok {
		p.logger.Debugf("Echo reply with identifier %d and sequence %d does not match any pending request",
			reply.Identifier(), reply.Sequence())
		res.Discarded++
		return false
	}

	res.Matched = pending.matchedCount()
	if res.Matched == 1 {
		res.RTT = time.Since(req.sentAt)
	}
	p.logger.Debugf("Echo reply matches request with sequence %d", reply.Sequence())

	return true
}

// sleepUntilNextPoll waits for the poll interval without overshooting the deadline.
func (p *Prober) sleepUntilNextPoll(deadline time.Time) {
	wait := min(p.settings.PollInterval, time.Until(deadline))
	if wait > 0 {
		time.Sleep(wait)
	}
}

func (p *Prober) traceHeader(b []byte) {
	if !p.logger.Logger.IsLevelEnabled(log.TraceLevel) {
		return
	}

	h, err := ipv4.ParseHeader(b)
	if err != nil {
		p.logger.Tracef("Could not parse IPv4 header %x: %s", b, err)
		return
	}
	p.logger.Tracef("Datagram from %s to %s with ttl %d", h.Src, h.Dst, h.TTL)
}

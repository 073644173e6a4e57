package cmd

import (
	"bytes"
	"encoding/binary"
	"math/rand"
	"net/netip"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mikaelmello/pingmon/core"
)

// echoTransport answers every request with its echo reply, unless silent
type echoTransport struct {
	silent bool
	queue  [][]byte
	sent   int
	closed bool
}

func (e *echoTransport) Send(packet []byte, dst netip.Addr) error {
	e.sent++
	if e.silent {
		return nil
	}

	reply := append(make([]byte, 20), packet...)
	icmp := reply[20:]
	icmp[0] = 0 // echo reply
	icmp[2], icmp[3] = 0, 0
	binary.BigEndian.PutUint16(icmp[2:], core.Checksum(icmp))

	e.queue = append(e.queue, reply)
	return nil
}

func (e *echoTransport) Recv(buf []byte) (int, error) {
	if len(e.queue) == 0 {
		return 0, core.ErrNoData
	}
	n := copy(buf, e.queue[0])
	e.queue = e.queue[1:]
	return n, nil
}

func (e *echoTransport) Close() error {
	e.closed = true
	return nil
}

// useTransport makes the commands create probers over tr
func useTransport(t *testing.T, tr *echoTransport) {
	orig := newProber
	newProber = func(dst netip.Addr, s *core.Settings) (*core.Prober, error) {
		fast := *s
		fast.PollInterval = 5 * time.Millisecond
		return core.NewProberWithTransport(tr, dst, &fast, rand.New(rand.NewSource(1)))
	}
	t.Cleanup(func() { newProber = orig })
}

// waitFor fails the test if the runner does not finish within a second
func waitFor(t *testing.T, r *Runner) error {
	ch := make(chan error, 1)
	go func() {
		ch <- r.Wait()
	}()

	select {
	case err := <-ch:
		return err
	case <-time.After(time.Second):
		require.Fail(t, "runner did not finish on time")
		return nil
	}
}

// TestNewRunner tests if a runner is properly initialized
func TestNewRunner(t *testing.T) {
	useTransport(t, &echoTransport{})

	r, err := newRunner("192.0.2.1", core.DefaultSettings(), time.Second, false, &bytes.Buffer{})
	assert.NoError(t, err)

	assert.NotNil(t, r.prober)
	assert.Empty(t, r.sigch)
	assert.NoError(t, r.ctx.Err())
}

func TestNewRunnerInvalidAddress(t *testing.T) {
	useTransport(t, &echoTransport{})

	_, err := newRunner("2001:db8::1", core.DefaultSettings(), time.Second, false, &bytes.Buffer{})
	assert.Error(t, err)
}

// TestRequestStopWaitStops tests if when a runner is stopped, the monitor has really finished
func TestRequestStopWaitStops(t *testing.T) {
	tr := &echoTransport{}
	useTransport(t, tr)

	var out bytes.Buffer
	r, err := newRunner("192.0.2.1", core.DefaultSettings(), 50*time.Millisecond, false, &out)
	require.NoError(t, err)

	r.Start()
	time.Sleep(80 * time.Millisecond)
	r.RequestStop()

	assert.NoError(t, waitFor(t, r))
	assert.True(t, tr.closed)
	assert.GreaterOrEqual(t, tr.sent, 3)
	assert.Contains(t, out.String(), "192.0.2.1 reachable")
	assert.Contains(t, out.String(), "--- 192.0.2.1 probe statistics ---")
}

// TestSigTermHandling tests if the sigterm signal really stops the run
func TestSigTermHandling(t *testing.T) {
	useTransport(t, &echoTransport{})

	r, err := newRunner("192.0.2.1", core.DefaultSettings(), 50*time.Millisecond, false, &bytes.Buffer{})
	require.NoError(t, err)

	r.Start()
	r.sigch <- syscall.SIGTERM

	assert.NoError(t, waitFor(t, r))
}

// TestRunnerUnreachable tests that a timed out attempt ends the monitor
func TestRunnerUnreachable(t *testing.T) {
	useTransport(t, &echoTransport{silent: true})

	var out bytes.Buffer
	r, err := newRunner("192.0.2.1", core.DefaultSettings(), 50*time.Millisecond, false, &out)
	require.NoError(t, err)

	r.Start()

	assert.ErrorIs(t, waitFor(t, r), core.ErrTimeout)
	assert.Contains(t, out.String(), "192.0.2.1 unreachable")
}

// TestRunnerToleratesTimeouts tests that timeouts do not stop the monitor when tolerated
func TestRunnerToleratesTimeouts(t *testing.T) {
	tr := &echoTransport{silent: true}
	useTransport(t, tr)

	r, err := newRunner("192.0.2.1", core.DefaultSettings(), 30*time.Millisecond, true, &bytes.Buffer{})
	require.NoError(t, err)

	r.Start()
	time.Sleep(100 * time.Millisecond)
	r.RequestStop()

	assert.NoError(t, waitFor(t, r))
	assert.GreaterOrEqual(t, tr.sent, 6)
}

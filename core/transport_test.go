package core

import (
	"errors"
	"io"
	"testing"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

var (
	errBufferFull  = errors.New("send buffer full")
	errUnreachable = errors.New("network unreachable")
)

// newTestRetrier returns a retrier that records its pauses instead of sleeping
func newTestRetrier(attempts int, delay time.Duration) (*sendRetrier, *[]time.Duration) {
	var sleeps []time.Duration
	r := &sendRetrier{
		attempts:  attempts,
		delay:     delay,
		transient: func(err error) bool { return errors.Is(err, errBufferFull) },
		sleep:     func(d time.Duration) { sleeps = append(sleeps, d) },
		logger:    log.NewEntry(NewLogger(uint32(log.PanicLevel), io.Discard)),
	}
	return r, &sleeps
}

// TestSendRetrierExhaustsBudget checks that a persistent transient failure is retried
// exactly the configured amount of times, pausing between attempts
func TestSendRetrierExhaustsBudget(t *testing.T) {
	r, sleeps := newTestRetrier(10, time.Second)

	calls := 0
	err := r.send(func() error {
		calls++
		return errBufferFull
	})

	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errBufferFull)
	assert.Equal(t, 10, calls)
	assert.Len(t, *sleeps, 9)
	for _, d := range *sleeps {
		assert.Equal(t, time.Second, d)
	}
}

// TestSendRetrierFatalError checks that other failures are not retried
func TestSendRetrierFatalError(t *testing.T) {
	r, sleeps := newTestRetrier(10, time.Second)

	calls := 0
	err := r.send(func() error {
		calls++
		return errUnreachable
	})

	assert.ErrorIs(t, err, ErrWrite)
	assert.ErrorIs(t, err, errUnreachable)
	assert.Equal(t, 1, calls)
	assert.Empty(t, *sleeps)
}

// TestSendRetrierRecovers checks that a send succeeding after some transient failures returns at once
func TestSendRetrierRecovers(t *testing.T) {
	r, sleeps := newTestRetrier(10, time.Second)

	calls := 0
	err := r.send(func() error {
		calls++
		if calls < 4 {
			return errBufferFull
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 4, calls)
	assert.Len(t, *sleeps, 3)
}

// TestSendRetrierFatalAfterTransient checks that a fatal error ends the retries
func TestSendRetrierFatalAfterTransient(t *testing.T) {
	r, sleeps := newTestRetrier(10, time.Second)

	calls := 0
	err := r.send(func() error {
		calls++
		if calls == 1 {
			return errBufferFull
		}
		return errUnreachable
	})

	assert.ErrorIs(t, err, errUnreachable)
	assert.Equal(t, 2, calls)
	assert.Len(t, *sleeps, 1)
}

// TestSendRetrierSpacing checks the real pause between attempts
func TestSendRetrierSpacing(t *testing.T) {
	settings := DefaultSettings()
	settings.SendAttempts = 3
	settings.SendRetryDelay = 20 * time.Millisecond

	r := newSendRetrier(settings, log.NewEntry(NewLogger(uint32(log.PanicLevel), io.Discard)))
	r.transient = func(err error) bool { return errors.Is(err, errBufferFull) }

	start := time.Now()
	err := r.send(func() error { return errBufferFull })

	assert.ErrorIs(t, err, ErrWrite)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

package core

import (
	"errors"
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Statistics aggregates the outcome of every probing attempt made by a Prober.
// Getters are safe to call while the prober is running.
type Statistics interface {
	AttemptRecorded(res *ProbeResult)

	GetStartTime() (time.Time, bool)

	GetTotalAttempts() uint32
	GetTotalSucceeded() uint32
	GetTotalTimedOut() uint32
	GetTotalFailed() uint32
	GetTotalSent() uint32
	GetTotalMatched() uint32
	GetTotalDiscarded() uint32
	GetFailureRate() float64

	GetRTTMax() time.Duration
	GetRTTMin() time.Duration
	GetRTTAvg() time.Duration
	GetRTTMDev() time.Duration
}

// statistics holds running aggregates only, no per-attempt history is kept.
type statistics struct {

	// totalAttempts is the total amount of probing attempts.
	totalAttempts uint32

	// totalSucceeded is the amount of attempts that matched at least one reply.
	totalSucceeded uint32

	// totalTimedOut is the amount of attempts that ended with ErrTimeout.
	totalTimedOut uint32

	// totalFailed is the amount of attempts that ended with an I/O error.
	totalFailed uint32

	// totalSent is the total amount of echo requests handed to the OS.
	totalSent uint32

	// totalMatched is the total amount of echo requests that received their reply.
	totalMatched uint32

	// totalDiscarded is the total amount of received datagrams that were ignored.
	totalDiscarded uint32

	// rttMutex controls the update of the rtt aggregates
	rttMutex sync.RWMutex

	// rttCount is the amount of rtt samples, one per successful attempt
	rttCount uint64

	// rttMin contains the smallest encountered rtt
	rttMin time.Duration

	// rttMax contains the largest encountered rtt
	rttMax time.Duration

	// rttSum and rttSqSum are kept in seconds to compute the mean deviation without overflowing
	rttSum   float64
	rttSqSum float64

	// stTime contains the time of the first recorded attempt
	stTime  time.Time
	started bool
}

// NewStatistics creates and initializes a Statistics struct.
func NewStatistics() Statistics {
	return &statistics{
		rttMin: time.Duration(math.MaxInt64),
	}
}

func (s *statistics) AttemptRecorded(res *ProbeResult) {
	atomic.AddUint32(&s.totalAttempts, 1)
	atomic.AddUint32(&s.totalSent, uint32(res.Sent))
	atomic.AddUint32(&s.totalMatched, uint32(res.Matched))
	atomic.AddUint32(&s.totalDiscarded, uint32(res.Discarded))

	switch {
	case res.Err == nil:
		atomic.AddUint32(&s.totalSucceeded, 1)
	case errors.Is(res.Err, ErrTimeout):
		atomic.AddUint32(&s.totalTimedOut, 1)
	default:
		atomic.AddUint32(&s.totalFailed, 1)
	}

	s.rttMutex.Lock()
	defer s.rttMutex.Unlock()

	if !s.started {
		s.stTime = time.Now().Add(-res.Elapsed)
		s.started = true
	}

	if res.Err != nil || res.Matched == 0 {
		return
	}

	s.rttCount++
	s.rttMax = max(s.rttMax, res.RTT)
	s.rttMin = min(s.rttMin, res.RTT)
	s.rttSum += res.RTT.Seconds()
	s.rttSqSum += res.RTT.Seconds() * res.RTT.Seconds()
}

func (s *statistics) GetStartTime() (time.Time, bool) {
	s.rttMutex.RLock()
	defer s.rttMutex.RUnlock()

	return s.stTime, s.started
}

func (s *statistics) GetTotalAttempts() uint32 {
	return atomic.LoadUint32(&s.totalAttempts)
}

func (s *statistics) GetTotalSucceeded() uint32 {
	return atomic.LoadUint32(&s.totalSucceeded)
}

func (s *statistics) GetTotalTimedOut() uint32 {
	return atomic.LoadUint32(&s.totalTimedOut)
}

func (s *statistics) GetTotalFailed() uint32 {
	return atomic.LoadUint32(&s.totalFailed)
}

func (s *statistics) GetTotalSent() uint32 {
	return atomic.LoadUint32(&s.totalSent)
}

func (s *statistics) GetTotalMatched() uint32 {
	return atomic.LoadUint32(&s.totalMatched)
}

func (s *statistics) GetTotalDiscarded() uint32 {
	return atomic.LoadUint32(&s.totalDiscarded)
}

// GetFailureRate is the fraction of attempts that did not succeed.
func (s *statistics) GetFailureRate() float64 {
	attempts := s.GetTotalAttempts()
	if attempts == 0 {
		return 0
	}

	return float64(1) - (float64(s.GetTotalSucceeded()) / float64(attempts))
}

func (s *statistics) GetRTTMax() time.Duration {
	s.rttMutex.RLock()
	defer s.rttMutex.RUnlock()

	return s.rttMax
}

func (s *statistics) GetRTTMin() time.Duration {
	s.rttMutex.RLock()
	defer s.rttMutex.RUnlock()

	return min(s.rttMax, s.rttMin)
}

func (s *statistics) GetRTTAvg() time.Duration {
	s.rttMutex.RLock()
	defer s.rttMutex.RUnlock()

	if s.rttCount == 0 {
		return 0
	}

	return secondsToDuration(s.rttSum / float64(s.rttCount))
}

func (s *statistics) GetRTTMDev() time.Duration {
	s.rttMutex.RLock()
	defer s.rttMutex.RUnlock()

	if s.rttCount == 0 {
		return 0
	}

	avg := s.rttSum / float64(s.rttCount)
	variance := s.rttSqSum/float64(s.rttCount) - avg*avg
	if variance < 0 {
		// float rounding on identical samples
		variance = 0
	}
	return secondsToDuration(math.Sqrt(variance))
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}

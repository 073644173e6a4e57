package core

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
)

// Settings contains all configurable properties of a prober.
type Settings struct {
	// PayloadSize is the number of random bytes carried by every echo request.
	PayloadSize int

	// PollInterval is how long the prober sleeps when the socket has nothing to read.
	PollInterval time.Duration

	// SendAttempts is the max amount of times a request is handed to the OS while the send buffer is exhausted.
	SendAttempts int

	// SendRetryDelay is the pause between two send attempts.
	SendRetryDelay time.Duration

	// Interface is the name of the network interface the socket is bound to, empty means any.
	Interface string

	// LoggingLevel is the logrus level of the prober's logger.
	LoggingLevel uint32
}

// DefaultSettings returns the default settings for a prober, change as you wish.
func DefaultSettings() *Settings {
	return &Settings{
		PayloadSize:    150,
		PollInterval:   100 * time.Millisecond,
		SendAttempts:   10,
		SendRetryDelay: time.Second,
		Interface:      "",
		LoggingLevel:   uint32(log.WarnLevel),
	}
}

// maxPayloadSize keeps a whole reply, IPv4 header included, inside the receive buffer.
const maxPayloadSize = recvBufferSize - ipv4HeaderLength - icmpHeaderLength

func (s *Settings) validate() error {
	if s.PayloadSize < 0 || s.PayloadSize > maxPayloadSize {
		return fmt.Errorf("payload size must be between 0 and %d bytes, got %d", maxPayloadSize, s.PayloadSize)
	}

	if s.PollInterval <= 0 {
		return fmt.Errorf("poll interval must be positive, got %s", s.PollInterval)
	}

	if s.SendAttempts < 1 {
		return fmt.Errorf("send attempts must be at least 1, got %d", s.SendAttempts)
	}

	if s.SendRetryDelay < 0 {
		return fmt.Errorf("send retry delay must not be negative, got %s", s.SendRetryDelay)
	}

	if s.LoggingLevel > uint32(log.TraceLevel) {
		return fmt.Errorf("logging level must be at most %d, got %d", log.TraceLevel, s.LoggingLevel)
	}

	return nil
}

//go:build unix

package core

import (
	"errors"

	"golang.org/x/sys/unix"
)

// isTransientSendError reports whether a send failed only because the socket send buffer
// is temporarily exhausted.
func isTransientSendError(err error) bool {
	return errors.Is(err, unix.ENOBUFS) || errors.Is(err, unix.EAGAIN) || errors.Is(err, unix.EWOULDBLOCK)
}

package core

import (
	"errors"
	"syscall"
)

const (
	wsaEWouldBlock syscall.Errno = 10035
	wsaENoBufs     syscall.Errno = 10055
)

// isTransientSendError reports whether a send failed only because the socket send buffer
// is temporarily exhausted.
func isTransientSendError(err error) bool {
	return errors.Is(err, wsaENoBufs) || errors.Is(err, wsaEWouldBlock)
}

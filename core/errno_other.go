//go:build !unix && !windows

package core

func isTransientSendError(err error) bool {
	return false
}

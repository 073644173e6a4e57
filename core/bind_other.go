//go:build unix && !linux

package core

import (
	log "github.com/sirupsen/logrus"
)

// Device binding is not supported on this platform, the hint is ignored.
func bindToDevice(fd int, iface string, logger *log.Entry) error {
	logger.Debugf("Ignoring interface %s, binding a socket to a device is not supported here", iface)
	return nil
}

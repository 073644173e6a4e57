package core

import (
	log "github.com/sirupsen/logrus"
	"golang.org/x/sys/unix"
)

func bindToDevice(fd int, iface string, logger *log.Entry) error {
	logger.Debugf("Binding socket %d to interface %s", fd, iface)
	return unix.BindToDevice(fd, iface)
}

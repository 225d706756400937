//go:build linux || freebsd || darwin || aix || dragonfly || netbsd || openbsd
// +build linux freebsd darwin aix dragonfly netbsd openbsd

package ftpd

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// dialerControl is used as net.Dialer.Control for active-mode outbound
// connections, so the listening side of the ftp-data socket can be reused
// immediately across transfers instead of waiting out TIME_WAIT.
func dialerControl(_, _ string, c syscall.RawConn) error {
	var errSetOpts error

	err := c.Control(func(unixFd uintptr) {
		errSetOpts = unix.SetsockoptInt(int(unixFd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
		if errSetOpts != nil {
			return
		}

		errSetOpts = unix.SetsockoptInt(int(unixFd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
		if errSetOpts != nil {
			return
		}
	})
	if err != nil {
		return fmt.Errorf("unable to set control options: %w", err)
	}

	if errSetOpts != nil {
		errSetOpts = fmt.Errorf("unable to set control options: %w", errSetOpts)
	}

	return errSetOpts
}

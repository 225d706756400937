package ftpd

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// dialerControl sets SO_REUSEADDR on the outbound active-mode socket.
func dialerControl(network, address string, c syscall.RawConn) error {
	var errSetOpts error

	err := c.Control(func(fd uintptr) {
		errSetOpts = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}

	return errSetOpts
}

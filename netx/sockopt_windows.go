//go:build windows

package netx

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// ControlUDP enables SO_REUSEADDR on a UDP socket before bind, so a
// follow-up run can grab the same local port while old NAT mappings drain.
func ControlUDP(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = windows.SetsockoptInt(windows.Handle(fd), windows.SOL_SOCKET, windows.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

//go:build !windows

package netx

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// ControlUDP enables SO_REUSEADDR on a UDP socket before bind, so a
// follow-up run can grab the same local port while old NAT mappings drain.
func ControlUDP(network, address string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}

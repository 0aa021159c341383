package netx

import (
	"context"
	"net"
)

// ListenUDP opens a reuse-enabled UDP socket. laddr may be empty for an
// ephemeral port on all interfaces.
func ListenUDP(network, laddr string) (*net.UDPConn, error) {
	lc := net.ListenConfig{Control: ControlUDP}
	pc, err := lc.ListenPacket(context.Background(), network, laddr)
	if err != nil {
		return nil, err
	}
	return pc.(*net.UDPConn), nil
}

package netx

import (
	"net"

	"github.com/wlynxg/anet"
)

// InterfaceIPs returns the IP addresses bound to the local interfaces.
// anet is used instead of net.InterfaceAddrs because the latter is broken
// on Android 11+.
func InterfaceIPs() ([]net.IP, error) {
	addrs, err := anet.InterfaceAddrs()
	if err != nil {
		return nil, err
	}
	ips := make([]net.IP, 0, len(addrs))
	for _, addr := range addrs {
		switch a := addr.(type) {
		case *net.IPNet:
			ips = append(ips, a.IP)
		case *net.IPAddr:
			ips = append(ips, a.IP)
		}
	}
	return ips, nil
}

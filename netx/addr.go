package netx

import (
	"errors"
	"net"
)

// SameUDPAddr reports whether a and b are the same socket address.
// Both IP and port must match; IP comparison handles the v4/v4-in-v6 forms.
func SameUDPAddr(a, b *net.UDPAddr) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.IP.Equal(b.IP) && a.Port == b.Port
}

// IsTimeout reports whether err is a network timeout.
func IsTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}

package stunx

import (
	"io"
	"net"

	"github.com/pion/stun/v3"
)

// CHANGE-REQUEST flag bits, RFC 5780 section 7.2.
const (
	changeIPFlag   = 0x04
	changePortFlag = 0x02
)

// ChangeRequest is the CHANGE-REQUEST attribute. It asks the server to
// send its response from the alternate IP and/or port.
type ChangeRequest struct {
	ChangeIP   bool
	ChangePort bool
}

// AddTo implements stun.Setter.
func (c ChangeRequest) AddTo(m *stun.Message) error {
	v := make([]byte, 4)
	if c.ChangeIP {
		v[3] |= changeIPFlag
	}
	if c.ChangePort {
		v[3] |= changePortFlag
	}
	m.Add(stun.AttrChangeRequest, v)
	return nil
}

// GetFrom decodes CHANGE-REQUEST from m.
func (c *ChangeRequest) GetFrom(m *stun.Message) error {
	v, err := m.Get(stun.AttrChangeRequest)
	if err != nil {
		return err
	}
	if len(v) < 4 {
		return io.ErrUnexpectedEOF
	}
	c.ChangeIP = v[3]&changeIPFlag != 0
	c.ChangePort = v[3]&changePortFlag != 0
	return nil
}

// XORMappedAddr extracts XOR-MAPPED-ADDRESS from a response.
func XORMappedAddr(m *stun.Message) (*net.UDPAddr, bool) {
	var addr stun.XORMappedAddress
	if err := addr.GetFrom(m); err != nil {
		return nil, false
	}
	return &net.UDPAddr{IP: addr.IP, Port: addr.Port}, true
}

// OtherAddr extracts OTHER-ADDRESS, the server's alternate endpoint.
func OtherAddr(m *stun.Message) (*net.UDPAddr, bool) {
	var addr stun.OtherAddress
	if err := addr.GetFrom(m); err != nil {
		return nil, false
	}
	return &net.UDPAddr{IP: addr.IP, Port: addr.Port}, true
}

// MappedAddr extracts the legacy MAPPED-ADDRESS. Some public servers only
// send this one; behavior discovery never falls back to it, but the plain
// public-IP lookup does.
func MappedAddr(m *stun.Message) (*net.UDPAddr, bool) {
	var addr stun.MappedAddress
	if err := addr.GetFrom(m); err != nil {
		return nil, false
	}
	return &net.UDPAddr{IP: addr.IP, Port: addr.Port}, true
}

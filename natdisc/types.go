// Package natdisc implements client-side NAT behavior discovery per
// RFC 5780. It classifies a NAT's address mapping and packet filtering
// behavior from a short sequence of STUN Binding exchanges against a
// server that supports the OTHER-ADDRESS and CHANGE-REQUEST attributes.
package natdisc

import (
	"context"
	"net"

	"github.com/pion/stun/v3"

	"github.com/threatexpert/natprobe/netx"
)

// Binder is the STUN client capability the discovery procedures consume.
// *stunx.Client implements it. One invocation of CheckMapping or
// CheckFiltering assumes exclusive use of its Binder until it returns.
type Binder interface {
	BindingRequest(ctx context.Context, target *net.UDPAddr, attrs ...stun.Setter) (*stun.Message, error)
}

// MappingBehavior classifies how the NAT maps one internal endpoint to
// external endpoints as the destination varies.
type MappingBehavior int

const (
	MappingUnknown MappingBehavior = iota
	NoNAT
	MappingEndpointIndependent
	MappingAddressDependent
	MappingAddressAndPortDependent
)

func (b MappingBehavior) String() string {
	switch b {
	case NoNAT:
		return "No NAT"
	case MappingEndpointIndependent:
		return "Endpoint Independent Mapping"
	case MappingAddressDependent:
		return "Address Dependent Mapping"
	case MappingAddressAndPortDependent:
		return "Address and Port Dependent Mapping"
	default:
		return "Unknown"
	}
}

// FilteringBehavior classifies which inbound packets the NAT lets through
// to a previously mapped endpoint.
type FilteringBehavior int

const (
	FilteringUnknown FilteringBehavior = iota
	FilteringEndpointIndependent
	FilteringAddressDependent
	FilteringAddressAndPortDependent
)

func (b FilteringBehavior) String() string {
	switch b {
	case FilteringEndpointIndependent:
		return "Endpoint Independent Filtering"
	case FilteringAddressDependent:
		return "Address Dependent Filtering"
	case FilteringAddressAndPortDependent:
		return "Address and Port Dependent Filtering"
	default:
		return "Unknown"
	}
}

// MappingResult holds the mapped addresses observed by the mapping tests.
// Each address is set only if its test ran; Behavior is never
// MappingUnknown on a successful return.
type MappingResult struct {
	Test1Addr *net.UDPAddr
	Test2Addr *net.UDPAddr
	Test3Addr *net.UDPAddr
	Behavior  MappingBehavior
}

// FilteringResult holds the mapped address observed by filtering Test1 and
// the classification. Behavior is never FilteringUnknown on a successful
// return.
type FilteringResult struct {
	MappedAddr *net.UDPAddr
	Behavior   FilteringBehavior
}

type config struct {
	localIPs func() ([]net.IP, error)
}

type Option func(*config)

// WithLocalIPs replaces the local interface oracle used by the no-NAT
// check. Mainly for tests with fixed interface lists.
func WithLocalIPs(fn func() ([]net.IP, error)) Option {
	return func(c *config) {
		c.localIPs = fn
	}
}

func newConfig(opts []Option) config {
	cfg := config{
		localIPs: netx.InterfaceIPs,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

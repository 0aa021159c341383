package natdisc

import (
	"context"
	"net"

	"github.com/threatexpert/natprobe/netx"
	"github.com/threatexpert/natprobe/stunx"
)

// CheckMapping classifies the NAT's mapping behavior with up to three
// Binding exchanges against server (RFC 5780 section 4.3). server must be
// the resolved primary address of a server that advertises OTHER-ADDRESS;
// Test3 always combines server's IP with the alternate port, so with a
// multi-homed hostname the caller's pick of resolved address decides.
//
// Errors other than the documented NotSupported cases propagate from the
// Binder unchanged; a timeout here is a plain failure, no test of this
// procedure reads meaning into silence.
func CheckMapping(ctx context.Context, client Binder, server *net.UDPAddr, opts ...Option) (*MappingResult, error) {
	cfg := newConfig(opts)
	result := &MappingResult{Behavior: MappingUnknown}

	// Test1: plain Binding request to the primary address. Without both
	// OTHER-ADDRESS and XOR-MAPPED-ADDRESS in the answer the server
	// cannot drive the rest of the procedure.
	resp, err := client.BindingRequest(ctx, server)
	if err != nil {
		return nil, err
	}
	otherAddr, ok := stunx.OtherAddr(resp)
	if !ok {
		return nil, &stunx.NotSupportedError{Attr: "OTHER-ADDRESS"}
	}
	result.Test1Addr, ok = stunx.XORMappedAddr(resp)
	if !ok {
		return nil, &stunx.NotSupportedError{Attr: "XOR-MAPPED-ADDRESS"}
	}

	// Not behind a NAT at all when the server saw one of our own
	// interface addresses.
	localIPs, err := cfg.localIPs()
	if err != nil {
		return nil, err
	}
	for _, ip := range localIPs {
		if ip.Equal(result.Test1Addr.IP) {
			result.Behavior = NoNAT
			return result, nil
		}
	}

	// Test2: same request to the alternate address. An identical mapping
	// means the NAT reuses one external endpoint for every destination.
	resp, err = client.BindingRequest(ctx, otherAddr)
	if err != nil {
		return nil, err
	}
	result.Test2Addr, ok = stunx.XORMappedAddr(resp)
	if !ok {
		return nil, &stunx.NotSupportedError{Attr: "XOR-MAPPED-ADDRESS"}
	}
	if netx.SameUDPAddr(result.Test1Addr, result.Test2Addr) {
		result.Behavior = MappingEndpointIndependent
		return result, nil
	}

	// Test3: primary IP with the alternate port. Matching Test2 means the
	// mapping tracks the destination IP but not its port.
	test3Addr := &net.UDPAddr{IP: server.IP, Port: otherAddr.Port, Zone: server.Zone}
	resp, err = client.BindingRequest(ctx, test3Addr)
	if err != nil {
		return nil, err
	}
	result.Test3Addr, ok = stunx.XORMappedAddr(resp)
	if !ok {
		return nil, &stunx.NotSupportedError{Attr: "XOR-MAPPED-ADDRESS"}
	}
	if netx.SameUDPAddr(result.Test2Addr, result.Test3Addr) {
		result.Behavior = MappingAddressDependent
		return result, nil
	}

	result.Behavior = MappingAddressAndPortDependent
	return result, nil
}

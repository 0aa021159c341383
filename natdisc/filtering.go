package natdisc

import (
	"context"
	"errors"
	"net"

	"github.com/threatexpert/natprobe/stunx"
)

// CheckFiltering classifies the NAT's filtering behavior with up to three
// Binding exchanges against server (RFC 5780 section 4.4).
//
// Filtering is only observable by provoking replies from addresses we
// never sent to, so the signal is "did any reply arrive": a response to a
// CHANGE-REQUEST probe classifies, a timeout classifies, and every other
// error is a transport problem that propagates unchanged.
func CheckFiltering(ctx context.Context, client Binder, server *net.UDPAddr) (*FilteringResult, error) {
	// Test1: learn the mapped address. It is reported with every outcome.
	resp, err := client.BindingRequest(ctx, server)
	if err != nil {
		return nil, err
	}
	mapped, ok := stunx.XORMappedAddr(resp)
	if !ok {
		return nil, &stunx.NotSupportedError{Attr: "XOR-MAPPED-ADDRESS"}
	}
	result := &FilteringResult{MappedAddr: mapped, Behavior: FilteringUnknown}

	// Test2: ask for a reply from the alternate IP and port. Getting one
	// means the NAT admits packets from sources we never contacted.
	_, err = client.BindingRequest(ctx, server, stunx.ChangeRequest{ChangeIP: true, ChangePort: true})
	switch {
	case err == nil:
		result.Behavior = FilteringEndpointIndependent
		return result, nil
	case !errors.Is(err, stunx.ErrTimeout):
		return nil, err
	}

	// Test3: alternate port only, same IP. A reply narrows the filter to
	// the source address; silence means source address and port both have
	// to match.
	_, err = client.BindingRequest(ctx, server, stunx.ChangeRequest{ChangePort: true})
	switch {
	case err == nil:
		result.Behavior = FilteringAddressDependent
		return result, nil
	case errors.Is(err, stunx.ErrTimeout):
		result.Behavior = FilteringAddressAndPortDependent
		return result, nil
	default:
		return nil, err
	}
}

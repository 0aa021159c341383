// Package stunx is a small STUN client layer for NAT probing. It wraps the
// pion/stun codec with an unconnected-socket transaction loop so that every
// Binding request leaves from the same local endpoint regardless of target.
package stunx

import (
	"context"
	"io"
	"log"
	"net"
	"sync"
	"time"

	"github.com/pion/stun/v3"
	"github.com/pkg/errors"

	"github.com/threatexpert/natprobe/misc"
	"github.com/threatexpert/natprobe/netx"
)

const (
	defaultTimeout = 3 * time.Second
	defaultRetries = 6
	defaultRTO     = 250 * time.Millisecond

	readBufferSize = 1500
)

// Client issues STUN Binding transactions from a single local endpoint to
// arbitrary targets. RFC 5780 probing needs that: the NAT mapping under
// test only stays comparable when every request reuses one local port, and
// responses to CHANGE-REQUEST probes arrive from an address the request
// was never sent to, so a dialed (connected) socket cannot receive them.
//
// Responses are matched to their request by transaction ID only; datagrams
// from other flows on the shared socket are ignored.
//
// A Client may be reused across transactions but runs them one at a time.
type Client struct {
	// Timeout is the overall per-transaction deadline, used when the
	// context carries none.
	Timeout time.Duration

	// Retries is how many times the same request is retransmitted on
	// silence before giving up.
	Retries int

	// RTO is the initial retransmission timeout; it doubles per attempt.
	RTO time.Duration

	conn net.PacketConn
	log  *log.Logger
	mu   sync.Mutex
}

type ClientOption func(*Client)

// WithLogger routes transaction-level logs to l.
func WithLogger(l *log.Logger) ClientOption {
	return func(c *Client) {
		c.log = l
	}
}

// WithTimeout sets the per-transaction deadline.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.Timeout = d
	}
}

// WithRetransmit tunes the retransmission schedule.
func WithRetransmit(retries int, rto time.Duration) ClientOption {
	return func(c *Client) {
		c.Retries = retries
		c.RTO = rto
	}
}

// NewClient wraps an unconnected UDP socket. The caller keeps ownership of
// conn and closes it when done.
func NewClient(conn net.PacketConn, opts ...ClientOption) *Client {
	c := &Client{
		Timeout: defaultTimeout,
		Retries: defaultRetries,
		RTO:     defaultRTO,
		conn:    conn,
		log:     misc.NewLog(io.Discard, "[stunx] ", log.Lmsgprefix),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// LocalAddr returns the local endpoint all requests leave from.
func (c *Client) LocalAddr() net.Addr {
	return c.conn.LocalAddr()
}

// BindingRequest sends a STUN Binding request to target, with any extra
// attributes appended, and waits for the matching response.
//
// It returns ErrTimeout when the transaction deadline passes with no
// matching reply, *ResponseError for a STUN error response, and the
// underlying transport error otherwise. There is exactly one transaction
// in flight at a time; callers that need a stable local mapping should
// issue their probes sequentially anyway.
func (c *Client) BindingRequest(ctx context.Context, target *net.UDPAddr, attrs ...stun.Setter) (*stun.Message, error) {
	if target == nil {
		return nil, errors.New("stunx: nil target address")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	setters := append([]stun.Setter{stun.TransactionID, stun.BindingRequest}, attrs...)
	req, err := stun.Build(setters...)
	if err != nil {
		return nil, errors.Wrap(err, "stunx: build binding request")
	}

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(c.Timeout)
	}

	rto := c.RTO
	buf := make([]byte, readBufferSize)

	for attempt := 0; attempt <= c.Retries; attempt++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if _, err := c.conn.WriteTo(req.Raw, target); err != nil {
			return nil, errors.Wrapf(err, "stunx: send to %s", target)
		}

		waitUntil := time.Now().Add(rto)
		if waitUntil.After(deadline) {
			waitUntil = deadline
		}

		resp, from, err := c.readResponse(req.TransactionID, waitUntil, buf)
		if err != nil {
			if netx.IsTimeout(err) {
				if !time.Now().Before(deadline) {
					c.log.Printf("binding request to %s: no reply (attempt %d)", target, attempt+1)
					return nil, ErrTimeout
				}
				rto *= 2
				continue
			}
			return nil, errors.Wrapf(err, "stunx: recv from %s", target)
		}

		if !netx.SameUDPAddr(from, target) {
			// Expected for CHANGE-REQUEST probes; worth a trace either way.
			c.log.Printf("binding response for %s arrived from %s", target, from)
		}
		return c.checkResponse(resp, target)
	}

	return nil, ErrTimeout
}

// PublicAddr reports the external address the server saw for this
// client's endpoint. XOR-MAPPED-ADDRESS is preferred; some public servers
// only send the legacy MAPPED-ADDRESS, which is good enough for a plain
// public-IP lookup. Behavior discovery never takes this fallback, it
// requires XOR-MAPPED-ADDRESS outright.
func (c *Client) PublicAddr(ctx context.Context, target *net.UDPAddr) (*net.UDPAddr, error) {
	resp, err := c.BindingRequest(ctx, target)
	if err != nil {
		return nil, err
	}
	if addr, ok := XORMappedAddr(resp); ok {
		return addr, nil
	}
	if addr, ok := MappedAddr(resp); ok {
		return addr, nil
	}
	return nil, &NotSupportedError{Attr: "XOR-MAPPED-ADDRESS"}
}

// readResponse drains the socket until a datagram decodes as a STUN
// message with the wanted transaction ID, or the deadline passes. Foreign
// packets are dropped, not errors: the socket may be shared with other
// traffic and old retransmissions.
func (c *Client) readResponse(tid [stun.TransactionIDSize]byte, deadline time.Time, buf []byte) (*stun.Message, *net.UDPAddr, error) {
	for {
		if err := c.conn.SetReadDeadline(deadline); err != nil {
			return nil, nil, err
		}

		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			return nil, nil, err
		}

		if !stun.IsMessage(buf[:n]) {
			continue
		}

		resp := &stun.Message{Raw: append([]byte(nil), buf[:n]...)}
		if err := resp.Decode(); err != nil {
			continue
		}
		if resp.TransactionID != tid {
			continue
		}

		fromUDP, _ := from.(*net.UDPAddr)
		return resp, fromUDP, nil
	}
}

func (c *Client) checkResponse(resp *stun.Message, target *net.UDPAddr) (*stun.Message, error) {
	switch resp.Type {
	case stun.BindingSuccess:
		return resp, nil
	case stun.BindingError:
		respErr := &ResponseError{}
		var code stun.ErrorCodeAttribute
		if err := code.GetFrom(resp); err == nil {
			respErr.Code = int(code.Code)
			respErr.Reason = string(code.Reason)
		}
		c.log.Printf("binding request to %s failed: %v", target, respErr)
		return nil, respErr
	default:
		return nil, errors.Errorf("stunx: unexpected response type %s from %s", resp.Type, target)
	}
}

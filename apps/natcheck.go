package apps

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/pkg/errors"

	"github.com/threatexpert/natprobe/misc"
	"github.com/threatexpert/natprobe/natdisc"
	"github.com/threatexpert/natprobe/netx"
	"github.com/threatexpert/natprobe/stunx"
)

type AppNATCheckConfig struct {
	Network string
	Server  string
	Bind    string
	Timeout time.Duration
	Verbose bool
}

func AppNATCheckConfigByArgs(logWriter io.Writer, args []string) (*AppNATCheckConfig, error) {
	config := &AppNATCheckConfig{}
	fs := flag.NewFlagSet("natcheck", flag.ContinueOnError)
	fs.SetOutput(logWriter)
	fs.StringVar(&config.Server, "s", "stun.voipgate.com:3478", "STUN server with RFC 5780 support (OTHER-ADDRESS and CHANGE-REQUEST)")
	fs.StringVar(&config.Network, "n", "udp4", "network: udp4 or udp6")
	fs.StringVar(&config.Bind, "l", "", "local address to bind, e.g. :12345")
	timeoutSec := fs.Int("w", 3, "per-transaction timeout in seconds")
	fs.BoolVar(&config.Verbose, "v", false, "log every STUN transaction")
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	config.Timeout = time.Duration(*timeoutSec) * time.Second
	return config, nil
}

func App_NATCheck_main(w io.Writer, args []string) int {
	config, err := AppNATCheckConfigByArgs(w, args)
	if err != nil {
		return 1
	}
	if err := App_NATCheck_main_withconfig(w, config); err != nil {
		fmt.Fprintf(w, "natcheck: %v\n", err)
		return 2
	}
	return 0
}

func App_NATCheck_main_withconfig(w io.Writer, config *AppNATCheckConfig) error {
	// First resolved address wins; test3 of the mapping check reuses this
	// exact IP, so rerunning against a multi-homed hostname may probe a
	// different server instance.
	server, err := net.ResolveUDPAddr(config.Network, config.Server)
	if err != nil {
		return errors.Wrapf(err, "resolve %s", config.Server)
	}

	logOut := io.Discard
	if config.Verbose {
		logOut = w
	}
	// Millisecond timestamps, the transactions under -v are that short.
	logger := misc.NewLogMilli(logOut, "[natcheck] ", log.Lmsgprefix)

	ctx := context.Background()

	// Plain public-address lookup first. Unlike the discovery probes this
	// tolerates servers that only send the legacy MAPPED-ADDRESS.
	var public *net.UDPAddr
	err = withProbeConn(config, logger, func(client *stunx.Client) error {
		public, err = client.PublicAddr(ctx, server)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "public address lookup")
	}

	// Mapping and filtering each get a fresh socket. The filtering probes
	// must start from a mapping the mapping probes have not already opened
	// toward the server's alternate address, or the change-request replies
	// would sneak through filters they should be blocked by.
	var mapping *natdisc.MappingResult
	err = withProbeConn(config, logger, func(client *stunx.Client) error {
		mapping, err = natdisc.CheckMapping(ctx, client, server)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "mapping check")
	}

	var filtering *natdisc.FilteringResult
	err = withProbeConn(config, logger, func(client *stunx.Client) error {
		filtering, err = natdisc.CheckFiltering(ctx, client, server)
		return err
	})
	if err != nil {
		return errors.Wrap(err, "filtering check")
	}

	fmt.Fprintf(w, "server:        %s (%s)\n", config.Server, server)
	fmt.Fprintf(w, "public addr:   %s\n", fmtUDPAddr(public))
	fmt.Fprintf(w, "test1 mapped:  %s\n", fmtUDPAddr(mapping.Test1Addr))
	fmt.Fprintf(w, "test2 mapped:  %s\n", fmtUDPAddr(mapping.Test2Addr))
	fmt.Fprintf(w, "test3 mapped:  %s\n", fmtUDPAddr(mapping.Test3Addr))
	fmt.Fprintf(w, "mapping:       %s\n", mapping.Behavior)
	fmt.Fprintf(w, "filtering:     %s\n", filtering.Behavior)
	fmt.Fprintf(w, "nat type:      %s\n", natdisc.LegacyNATType(mapping.Behavior, filtering.Behavior))
	return nil
}

func withProbeConn(config *AppNATCheckConfig, logger *log.Logger, fn func(*stunx.Client) error) error {
	conn, err := netx.ListenUDP(config.Network, config.Bind)
	if err != nil {
		return errors.Wrap(err, "bind probe socket")
	}
	defer conn.Close()

	logger.Printf("probe socket %s", conn.LocalAddr())
	client := stunx.NewClient(conn,
		stunx.WithLogger(logger),
		stunx.WithTimeout(config.Timeout),
	)
	return fn(client)
}

func fmtUDPAddr(a *net.UDPAddr) string {
	if a == nil {
		return "-"
	}
	return a.String()
}

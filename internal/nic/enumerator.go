package nic

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"

	"github.com/ndmpd/ndmpadm/internal/command"
)

// Source selects how interfaces are discovered
type Source string

const (
	SourceIfconfig Source = "ifconfig"
	SourceNative   Source = "native"
)

// Options configures an Enumerator
type Options struct {
	Source       Source
	IfconfigPath string
	IfconfigArgs []string
	SkipPrefixes []string
}

// Enumerator lists the host's network interfaces
type Enumerator struct {
	opts   Options
	runner command.Runner
}

// New creates an Enumerator
func New(opts Options, runner command.Runner) *Enumerator {
	if opts.Source == "" {
		opts.Source = SourceIfconfig
	}
	if opts.IfconfigPath == "" {
		opts.IfconfigPath = "/sbin/ifconfig"
	}
	if opts.SkipPrefixes == nil {
		opts.SkipPrefixes = DefaultSkipPrefixes
	}
	return &Enumerator{
		opts:   opts,
		runner: runner,
	}
}

// List returns every interface and its IPv4 addresses
func (e *Enumerator) List(ctx context.Context) (Interfaces, error) {
	switch e.opts.Source {
	case SourceIfconfig:
		out, err := e.runner.Output(ctx, e.opts.IfconfigPath, e.opts.IfconfigArgs...)
		if err != nil {
			return nil, fmt.Errorf("failed to list interfaces: %w", err)
		}
		nics := Parse(bytes.NewReader(out), e.opts.SkipPrefixes)
		slog.Debug("parsed ifconfig output", "interfaces", len(nics))
		return nics, nil
	case SourceNative:
		return e.listNative()
	default:
		return nil, fmt.Errorf("unknown interface source: %s", e.opts.Source)
	}
}

// IsValid reports whether name is one of the listed interfaces. Any failure
// to enumerate counts as not valid.
func (e *Enumerator) IsValid(ctx context.Context, name string) bool {
	return e.Validator(ctx)(name)
}

// Validator returns an IsValid for repeated checks. The interfaces are
// listed on the first call only.
func (e *Enumerator) Validator(ctx context.Context) func(name string) bool {
	var (
		nics   Interfaces
		listed bool
		err    error
	)
	return func(name string) bool {
		if !listed {
			nics, err = e.List(ctx)
			listed = true
		}
		if err != nil {
			slog.Warn("cannot verify interface", "name", name, "err", err)
			return false
		}
		return nics.Has(name)
	}
}

func (e *Enumerator) listNative() (Interfaces, error) {
	ifaces, err := net.Interfaces()
	if err != nil {
		return nil, fmt.Errorf("failed to list interfaces: %w", err)
	}

	nics := make(Interfaces)
	for _, iface := range ifaces {
		if hasAnyPrefix(iface.Name, e.opts.SkipPrefixes) {
			continue
		}

		addrs, err := iface.Addrs()
		if err != nil {
			return nil, fmt.Errorf("failed to read addresses of %s: %w", iface.Name, err)
		}

		nics[iface.Name] = []string{}
		for _, addr := range addrs {
			ipnet, ok := addr.(*net.IPNet)
			if !ok {
				continue
			}
			if ip4 := ipnet.IP.To4(); ip4 != nil {
				nics[iface.Name] = append(nics[iface.Name], ip4.String())
			}
		}
	}

	return nics, nil
}

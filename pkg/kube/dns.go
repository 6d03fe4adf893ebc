package kube

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"go.uber.org/zap"
)

const dnsPollInterval = 500 * time.Millisecond

// ErrDNSTimeout is returned when a host name does not become resolvable in time.
var ErrDNSTimeout = errors.New("dns resolution timed out")

// Resolver looks up host addresses. *net.Resolver satisfies it.
type Resolver interface {
	LookupHost(ctx context.Context, host string) ([]string, error)
}

// DefaultResolver is used by WaitForDNS.
var DefaultResolver Resolver = net.DefaultResolver

// WaitForDNS polls until hostName resolves or the timeout expires.
func WaitForDNS(ctx context.Context, hostName string, timeout time.Duration) error {
	return waitForDNS(ctx, DefaultResolver, hostName, timeout, dnsPollInterval)
}

func waitForDNS(ctx context.Context, resolver Resolver, hostName string, timeout, interval time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		_, err := resolver.LookupHost(ctx, hostName)
		if err == nil {
			return nil
		}

		zap.S().Debugf("Address '%s' not resolvable yet: %s", hostName, err)

		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				return fmt.Errorf("%w: '%s' could not be resolved within %s", ErrDNSTimeout, hostName, timeout)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

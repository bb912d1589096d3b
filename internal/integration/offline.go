package integration

import (
	"context"
	"net"
	"net/url"
	"time"
)

// ConnectivityChecker decides whether a remote backend is worth calling.
type ConnectivityChecker interface {
	IsReachable(ctx context.Context, endpoint string) bool
}

// dialChecker implements ConnectivityChecker with a TCP dial to the
// endpoint's host.
type dialChecker struct {
	timeout time.Duration
}

// NewConnectivityChecker creates a ConnectivityChecker whose dials give up
// after timeout (3s when zero).
func NewConnectivityChecker(timeout time.Duration) ConnectivityChecker {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	return &dialChecker{timeout: timeout}
}

// IsReachable dials the host of endpoint, using the scheme's default port
// when none is given. Unparseable endpoints are reported unreachable.
func (c *dialChecker) IsReachable(ctx context.Context, endpoint string) bool {
	addr, ok := dialAddress(endpoint)
	if !ok {
		return false
	}
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}

func dialAddress(endpoint string) (string, bool) {
	u, err := url.Parse(endpoint)
	if err != nil || u.Hostname() == "" {
		return "", false
	}
	port := u.Port()
	if port == "" {
		switch u.Scheme {
		case "https":
			port = "443"
		case "http":
			port = "80"
		default:
			return "", false
		}
	}
	return net.JoinHostPort(u.Hostname(), port), true
}

package demoserver

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// NewRoutedClient returns an http.Client that sends every request to addr
// whatever the URL's host, keeping the Host header intact. Certificates are
// not verified, so it pairs with an httptest TLS server running Handler.
func NewRoutedClient(addr string) *http.Client {
	dialer := &net.Dialer{Timeout: 5 * time.Second}
	return &http.Client{
		Transport: &http.Transport{
			DialContext: func(ctx context.Context, network, _ string) (net.Conn, error) {
				return dialer.DialContext(ctx, network, addr)
			},
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true}, //nolint:gosec // fixture server only
		},
	}
}

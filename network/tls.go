package network

import (
	"context"
	"crypto/tls"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	utls "github.com/refraction-networking/utls"
	"golang.org/x/net/http2"
)

const dialTimeout = 15 * time.Second

// Some media CDNs reject the Go TLS fingerprint, so https requests go out with a
// browser ClientHello. h2 is tried first, then HTTP/1.1.
var (
	h2Transport     *http2.Transport
	h2TransportOnce sync.Once
)

func getH2Transport() *http2.Transport {
	h2TransportOnce.Do(func() {
		h2Transport = &http2.Transport{
			DialTLSContext: func(ctx context.Context, network, addr string, _ *tls.Config) (net.Conn, error) {
				return dialTLS(ctx, network, addr, nil)
			},
		}
	})
	return h2Transport
}

var h1Transport = &http.Transport{
	DialTLSContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialTLS(ctx, network, addr, []string{"http/1.1"})
	},
	ResponseHeaderTimeout: 15 * time.Second,
}

// Do sends a bodiless request. https goes through the fingerprinted transports,
// anything else through Client. Redirects are followed unless noRedirect is set.
func Do(req *http.Request, noRedirect bool) (*http.Response, error) {
	if req.Body != nil && req.Body != http.NoBody {
		return nil, fmt.Errorf("network: requests with a body are not supported")
	}

	checkRedirect := func(*http.Request, []*http.Request) error { return nil }
	if noRedirect {
		checkRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}

	if req.URL.Scheme != "https" {
		client := *Client
		if noRedirect {
			client.CheckRedirect = checkRedirect
		}
		return client.Do(req)
	}

	h2 := &http.Client{Timeout: Client.Timeout, Transport: getH2Transport()}
	if noRedirect {
		h2.CheckRedirect = checkRedirect
	}
	resp, err := h2.Do(req)
	if err == nil {
		return resp, nil
	}

	h1 := &http.Client{Timeout: Client.Timeout, Transport: h1Transport}
	if noRedirect {
		h1.CheckRedirect = checkRedirect
	}
	resp, err = h1.Do(req.Clone(req.Context()))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	return resp, nil
}

func dialTLS(ctx context.Context, network, addr string, protos []string) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		MinVersion: tls.VersionTLS12,
		NextProtos: protos,
	}, utls.HelloChrome_120)

	if err := tlsConn.Handshake(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

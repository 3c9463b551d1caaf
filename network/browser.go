package network

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"fmt"
	"net"
	"net/http"
	"time"

	utls "github.com/refraction-networking/utls"
)

const dialTimeout = 15 * time.Second

// newBrowserTransport returns an HTTP/1.1 transport whose TLS handshake
// carries a Chrome ClientHello. A nil roots uses the system pool.
func newBrowserTransport(roots *x509.CertPool) *http.Transport {
	t := newTransport()
	t.TLSNextProto = map[string]func(string, *tls.Conn) http.RoundTripper{}
	t.DialTLSContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		return dialBrowserTLS(ctx, network, addr, roots)
	}
	return t
}

// dialBrowserTLS connects with the Chrome 120 fingerprint, narrowed to
// advertise http/1.1 only so the connection can be driven by net/http.
func dialBrowserTLS(ctx context.Context, network, addr string, roots *x509.CertPool) (net.Conn, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		host = addr
	}

	dialer := &net.Dialer{Timeout: dialTimeout}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}

	spec, err := utls.UTLSIdToSpec(utls.HelloChrome_120)
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("browser hello: %w", err)
	}
	for _, ext := range spec.Extensions {
		if alpn, ok := ext.(*utls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
		}
	}

	tlsConn := utls.UClient(conn, &utls.Config{
		ServerName: host,
		RootCAs:    roots,
		MinVersion: tls.VersionTLS12,
	}, utls.HelloCustom)

	if err := tlsConn.ApplyPreset(&spec); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("browser hello: %w", err)
	}

	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("tls handshake: %w", err)
	}

	return tlsConn, nil
}

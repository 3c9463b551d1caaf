// Package network provides the shared HTTP client used to open remote streams.
package network

import (
	"net/http"
	"time"

	"github.com/playspan/playspan/constant"
	"github.com/playspan/playspan/key"
	"github.com/playspan/playspan/log"
	"github.com/spf13/viper"
	"golang.org/x/net/http2"
)

// Client is shared by every remote stream. It has no overall timeout since
// dumps may run for hours; stalls are bounded by the transport timeouts.
var Client = &http.Client{
	Transport: &userAgent{next: &selector{
		standard: newTransport(),
		browser:  newBrowserTransport(nil),
	}},
}

// newTransport clones the default transport with stream-friendly limits and enables HTTP/2.
func newTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.MaxIdleConns = 16
	t.MaxIdleConnsPerHost = 4
	t.IdleConnTimeout = 30 * time.Second
	t.ResponseHeaderTimeout = 30 * time.Second
	t.ExpectContinueTimeout = 5 * time.Second

	if err := http2.ConfigureTransport(t); err != nil {
		log.Warnf("http2 unavailable, using HTTP/1.1: %v", err)
	}
	return t
}

// userAgent stamps requests that do not carry their own User-Agent.
type userAgent struct {
	next http.RoundTripper
}

func (u *userAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", constant.UserAgent)
	}
	return u.next.RoundTrip(req)
}

// selector sends https requests through the browser transport when
// network.browser_tls is enabled.
type selector struct {
	standard, browser http.RoundTripper
}

func (s *selector) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.URL.Scheme == "https" && viper.GetBool(key.NetworkBrowserTLS) {
		return s.browser.RoundTrip(req)
	}
	return s.standard.RoundTrip(req)
}

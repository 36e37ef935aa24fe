// Package http builds the proxy-aware HTTP client used to talk to Kibana and
// provides generic retry helpers.
package http

import (
	"crypto/tls"
	nethttp "net/http"
	"os"

	"golang.org/x/net/http2"

	"github.com/mlops-tools/dfa-wizard/internal/config"
)

// NewClient creates the HTTP client used for Kibana API calls.
//
// Key features:
//   - Proxy support (uses ConfigureHTTPClient as base)
//   - HTTP/2 with runtime toggle (DISABLE_HTTP2 env var)
//   - HTTP/2 disabled when a proxy is active unless FORCE_HTTP2=true
//
// If cfg is nil, proxy settings are read from environment variables
// (HTTP_PROXY, HTTPS_PROXY, NO_PROXY).
func NewClient(cfg *config.Config) (*nethttp.Client, error) {
	var baseClient *nethttp.Client
	var err error

	if cfg != nil {
		baseClient, err = ConfigureHTTPClient(cfg)
		if err != nil {
			return nil, err
		}
	} else {
		tr := newTransport()
		tr.Proxy = nethttp.ProxyFromEnvironment
		baseClient = &nethttp.Client{Transport: tr}
	}

	tr, ok := baseClient.Transport.(*nethttp.Transport)
	if !ok {
		// NTLM mode wraps the transport in ntlmssp.Negotiator; leave it alone.
		return baseClient, nil
	}

	tr.ForceAttemptHTTP2 = true
	_ = http2.ConfigureTransport(tr)

	if os.Getenv("DISABLE_HTTP2") == "true" || (proxyActive(cfg) && os.Getenv("FORCE_HTTP2") != "true") {
		disableHTTP2(tr)
	}

	baseClient.Transport = tr
	return baseClient, nil
}

// proxyActive reports whether requests will go through a proxy. Proxies often
// break HTTP/2 multiplexing.
func proxyActive(cfg *config.Config) bool {
	envProxy := os.Getenv("HTTP_PROXY") != "" || os.Getenv("HTTPS_PROXY") != "" ||
		os.Getenv("http_proxy") != "" || os.Getenv("https_proxy") != ""
	if cfg == nil {
		return envProxy
	}
	switch cfg.ProxyMode {
	case "no-proxy", "":
		return false
	case "system":
		return envProxy
	default:
		return cfg.ProxyHost != ""
	}
}

func disableHTTP2(tr *nethttp.Transport) {
	tr.ForceAttemptHTTP2 = false
	tr.TLSNextProto = make(map[string]func(string, *tls.Conn) nethttp.RoundTripper)
}

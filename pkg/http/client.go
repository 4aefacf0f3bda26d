package http

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"
)

// TransportFunc wraps a round tripper, e.g. for auth headers or request logging
type TransportFunc func(http.RoundTripper) http.RoundTripper

// clientConfig collects the knobs of an outbound client. Zero values keep the defaults.
type clientConfig struct {
	dialTimeout           time.Duration
	requestTimeout        time.Duration
	keepAlive             time.Duration
	tlsHandshakeTimeout   time.Duration
	responseHeaderTimeout time.Duration
	idleConnTimeout       time.Duration
	maxIdleConns          int
	maxIdleConnsPerHost   int
	insecureSkipVerify    bool
	wrappers              []TransportFunc
}

// Generation calls are slow, so the request timeout is generous
func defaultClientConfig() *clientConfig {
	return &clientConfig{
		dialTimeout:           10 * time.Second,
		requestTimeout:        60 * time.Second,
		keepAlive:             30 * time.Second,
		tlsHandshakeTimeout:   10 * time.Second,
		responseHeaderTimeout: 60 * time.Second,
		idleConnTimeout:       90 * time.Second,
		maxIdleConns:          50,
		maxIdleConnsPerHost:   10,
	}
}

func newClient(opts ...HttpOpts) *http.Client {
	cfg := defaultClientConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	return buildClient(cfg)
}

func buildClient(cfg *clientConfig) *http.Client {
	dialer := &net.Dialer{
		Timeout:   cfg.dialTimeout,
		KeepAlive: cfg.keepAlive,
	}

	base := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          cfg.maxIdleConns,
		MaxIdleConnsPerHost:   cfg.maxIdleConnsPerHost,
		TLSHandshakeTimeout:   cfg.tlsHandshakeTimeout,
		ResponseHeaderTimeout: cfg.responseHeaderTimeout,
		IdleConnTimeout:       cfg.idleConnTimeout,
	}
	if cfg.insecureSkipVerify {
		base.TLSClientConfig = &tls.Config{InsecureSkipVerify: true}
	}

	var rt http.RoundTripper = base
	for _, wrap := range cfg.wrappers {
		rt = wrap(rt)
	}

	return &http.Client{
		Timeout:   cfg.requestTimeout,
		Transport: rt,
	}
}

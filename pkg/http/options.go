package http

import "time"

// HttpOpts configures the client built by NewConnector
type HttpOpts func(*clientConfig)

func WithConnClientTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.dialTimeout = timeout
		}
	}
}

// WithRequestTimeout bounds a whole request including reading the body
func WithRequestTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.requestTimeout = timeout
		}
	}
}

func WithClientKeepAlive(keepAlive time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if keepAlive > 0 {
			c.keepAlive = keepAlive
		}
	}
}

func WithTLSHandshakeTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.tlsHandshakeTimeout = timeout
		}
	}
}

func WithResponseHeaderTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.responseHeaderTimeout = timeout
		}
	}
}

func WithIdleConnTimeout(timeout time.Duration) HttpOpts {
	return func(c *clientConfig) {
		if timeout > 0 {
			c.idleConnTimeout = timeout
		}
	}
}

func WithMaxIdleConns(n int) HttpOpts {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxIdleConns = n
		}
	}
}

func WithMaxIdleConnsPerHost(n int) HttpOpts {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxIdleConnsPerHost = n
		}
	}
}

// WithTransport adds a round tripper wrapper. Wrappers apply in order, the last one is outermost.
func WithTransport(transport TransportFunc) HttpOpts {
	return func(c *clientConfig) {
		c.wrappers = append(c.wrappers, transport)
	}
}

// WithInsecureSkipVerify disables TLS certificate checks
func WithInsecureSkipVerify(skip bool) HttpOpts {
	return func(c *clientConfig) {
		c.insecureSkipVerify = skip
	}
}

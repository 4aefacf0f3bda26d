package http

import "net/http"

type headerTransport struct {
	token     string
	userAgent string
	transport http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	reqCopy := req.Clone(req.Context())

	if t.token != "" {
		reqCopy.Header.Set("Authorization", "Bearer "+t.token)
	}
	if t.userAgent != "" && reqCopy.Header.Get("User-Agent") == "" {
		reqCopy.Header.Set("User-Agent", t.userAgent)
	}

	return t.transport.RoundTrip(reqCopy)
}

// WithAuthToken sends the token as a bearer Authorization header. Empty token sends nothing.
func WithAuthToken(token string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			token:     token,
			transport: rt,
		}
	})
}

func WithUserAgent(userAgent string) HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &headerTransport{
			userAgent: userAgent,
			transport: rt,
		}
	})
}

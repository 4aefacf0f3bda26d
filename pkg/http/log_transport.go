package http

import (
	"net/http"
	"time"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// context key for attaching the JSON payload to the outbound request
type payloadContextKey struct{}

type logTransport struct {
	transport http.RoundTripper
}

func (t *logTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.String()),
	}

	if payload, ok := ctx.Value(payloadContextKey{}).([]byte); ok && len(payload) > 0 {
		fields = append(fields, zap.Int("payload_size", len(payload)))
	}

	ctxzap.Debug(ctx, "HTTP outbound request", fields...)

	start := time.Now()
	resp, err := t.transport.RoundTrip(req)
	if err != nil {
		ctxzap.Debug(ctx, "HTTP outbound request failed", append(fields, zap.Error(err))...)
		return nil, err
	}

	ctxzap.Debug(ctx, "HTTP outbound response", append(fields,
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
	)...)

	return resp, nil
}

// WithRequestLogging wraps the HTTP transport with logging of method, URL, status and duration.
// Headers are not logged since they carry the bearer token.
func WithRequestLogging() HttpOpts {
	return WithTransport(func(rt http.RoundTripper) http.RoundTripper {
		return &logTransport{
			transport: rt,
		}
	})
}

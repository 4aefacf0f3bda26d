package common

import (
	"errors"

	"github.com/futig/coverletter-backend/internal/config"
	pkgHTTP "github.com/futig/coverletter-backend/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "coverletter-backend/1.0"

// NewBaseConnector builds the shared outbound HTTP connector for a service section
func NewBaseConnector(cfg config.HTTPClientConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:  logger,
		BaseURL: cfg.Url,
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithTLSHandshakeTimeout(cfg.TLSHandshakeTimeout),
		pkgHTTP.WithMaxIdleConns(cfg.MaxIdleConns),
		pkgHTTP.WithMaxIdleConnsPerHost(cfg.MaxIdleConnsPerHost),
		pkgHTTP.WithInsecureSkipVerify(cfg.InsecureSkipVerify),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
		pkgHTTP.WithUserAgent(userAgent),
	)
}

// IsRetryable reports whether an outbound call failed in a way worth repeating
func IsRetryable(err error) bool {
	var netErr *pkgHTTP.NetworkError
	if errors.As(err, &netErr) {
		return true
	}

	var httpErr *pkgHTTP.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}

	return false
}

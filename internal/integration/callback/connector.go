package callback

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/futig/coverletter-backend/internal/config"
	"github.com/futig/coverletter-backend/internal/entity"
	"github.com/futig/coverletter-backend/internal/integration/common"
	pkghttp "github.com/futig/coverletter-backend/pkg/http"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
)

// Connector posts session events to client supplied callback URLs
type Connector struct {
	config    config.CallbackConnectorConfig
	connector *pkghttp.Connector
	logger    *zap.Logger
}

func NewConnector(
	cfg config.CallbackConnectorConfig,
	logger *zap.Logger,
) *Connector {
	return &Connector{
		connector: common.NewBaseConnector(cfg.HTTPClientConfig, logger),
		config:    cfg,
		logger:    logger,
	}
}

// SendFinalResult sends a final result event to the specified callback URL
func (c *Connector) SendFinalResult(ctx context.Context, callbackURL string, requestID string, data *entity.SessionDTO) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeFinalResult,
		Data:  data,
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send final result callback", zap.Error(err))
	}
}

// SendError sends an error event to the specified callback URL
func (c *Connector) SendError(ctx context.Context, callbackURL string, requestID string, message string, details map[string]any) {
	err := c.Send(ctx, callbackURL, requestID, &entity.CallbackEvent{
		Event: entity.CallbackEventTypeError,
		Data: &entity.CallbackErrorData{
			Error: entity.CallbackErrorDetails{
				Message: message,
				Details: details,
			},
		},
	})
	if err != nil {
		ctxzap.Error(ctx, "failed to send error callback", zap.Error(err))
	}
}

func (c *Connector) Send(ctx context.Context, callbackURL string, requestID string, event *entity.CallbackEvent) error {
	if event.Timestamp == "" {
		event.Timestamp = time.Now().UTC().Format(time.RFC3339)
	}

	ctxzap.Debug(ctx, "sending callback event",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("request_id", requestID),
		zap.String("timestamp", event.Timestamp),
	)

	opts := []pkghttp.RequestOpt{
		pkghttp.WithHeader("X-Request-ID", requestID),
		pkghttp.WithURL(callbackURL),
	}

	retryCtx, cancel := c.config.Retry.WithTimeout(ctx)
	defer cancel()

	err := retry.Do(func() error {
		return c.connector.DoRequest(retryCtx, http.MethodPost, "", event, nil, opts...)
	}, append(c.config.Retry.ToRetryOptions(retryCtx), retry.RetryIf(common.IsRetryable))...)
	if err != nil {
		return fmt.Errorf("failed to send callback, event_type: %s, url: %s, error: %w", string(event.Event), callbackURL, err)
	}

	ctxzap.Info(ctx, "callback sent successfully",
		zap.String("event_type", string(event.Event)),
		zap.String("callback_url", callbackURL),
		zap.String("request_id", requestID),
	)
	return nil
}

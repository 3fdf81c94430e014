package telemetry

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AntoDono/utmostatmos-app/internal/infra/config"
)

// Attach enables distributed tracing when an OTLP endpoint is configured.
// Returns nil with no error when telemetry is disabled; HTTP metrics are
// handled separately by the metrics middleware.
func Attach(ctx context.Context, cfg *config.AppConfig, logger *zap.Logger) (*TracerProvider, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}
	if cfg.Telemetry.OTLPEndpoint == "" {
		logger.Info("tracing disabled, no otlp endpoint configured")
		return nil, nil
	}
	return NewTracerProvider(ctx, cfg.Telemetry, logger)
}

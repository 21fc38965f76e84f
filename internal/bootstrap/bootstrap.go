// Package bootstrap wires the engine services and dispatcher shared by every
// entrypoint (the standalone HTTP server and the Lambda-hosted variant).
package bootstrap

import (
	"time"

	"go.uber.org/zap"

	"stackbox/internal/config"
	"stackbox/internal/dispatch"
	"stackbox/internal/dynamo"
	"stackbox/internal/logging"
	"stackbox/internal/objectstore"
)

// BuildRouter constructs the S3 and DynamoDB engines and wires them behind a
// single dispatcher, honoring cfg's per-service enable switches.
func BuildRouter(cfg config.Config, logger *zap.Logger) *dispatch.Router {
	s3Service := objectstore.NewService()
	dynamoService := dynamo.NewService(func() int64 { return time.Now().Unix() })

	return dispatch.NewRouter(dispatch.Config{
		S3:       cfg.S3,
		DynamoDB: cfg.DynamoDB,
		Lambda:   cfg.Lambda,
	}, s3Service, dynamoService, logger)
}

// NewLogger builds the structured logger shared by every entrypoint.
func NewLogger(cfg config.Config) (*zap.Logger, error) {
	return logging.New(config.Environment(), cfg.LogLevel)
}

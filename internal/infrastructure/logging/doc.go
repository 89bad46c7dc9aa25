// Package logging provides structured logging using uber/zap.
//
// This package offers production-ready logging with two modes:
//   - Production: JSON output for machine parsing
//   - Development: Colored console output for human readability
//
// Example Usage:
//
//	logger := logging.NewDefault()
//	logger.Info("Hub starting", zap.String("port", "8010"))
//	logger.Warn("Denied storage request", zap.String("origin", origin))
package logging

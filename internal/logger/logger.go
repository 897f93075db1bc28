package logger

import (
	"fmt"

	"github.com/quotewise/intake-api/internal/config"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger creates a new structured logger
func NewLogger(cfg *config.LoggingConfig, appCfg *config.AppConfig) (*zap.Logger, error) {
	var zapCfg zap.Config

	if cfg.Format == "json" || appCfg.Environment == "production" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
		zapCfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Set log level
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)

	// Add initial fields
	zapCfg.InitialFields = map[string]interface{}{
		"app":         appCfg.Name,
		"environment": appCfg.Environment,
	}

	logger, err := zapCfg.Build(zap.AddCallerSkip(0))
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	return logger, nil
}

// WithSession adds wizard session context to logger
func WithSession(logger *zap.Logger, sessionID string, stage string) *zap.Logger {
	return logger.With(
		zap.String("session_id", sessionID),
		zap.String("stage", stage),
	)
}

// WithLead adds lead context to logger
func WithLead(logger *zap.Logger, leadID string, contractorID string) *zap.Logger {
	return logger.With(
		zap.String("lead_id", leadID),
		zap.String("contractor_id", contractorID),
	)
}

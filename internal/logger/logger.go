package logger

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func New() *zap.SugaredLogger {
	var (
		logger *zap.Logger
		err    error
	)
	opts := []zap.Option{
		zap.AddStacktrace(zap.ErrorLevel),
	}

	if strings.ToLower(os.Getenv("LEVSIM_ENV")) == "dev" {
		logger, err = zap.NewDevelopment(opts...)
	} else {
		opts = append(opts, zap.Fields(zap.Field{
			Key:    "LEVSIM_ENV",
			Type:   zapcore.StringType,
			String: os.Getenv("LEVSIM_ENV"),
		}))
		logger, err = zap.NewProduction(opts...)
	}

	if err != nil {
		panic(fmt.Errorf("failed to initialize logger: %w", err))
	}

	return logger.Sugar()
}

type contextKey struct{}

var loggerContextKey = contextKey{}

func AddToContext(ctx context.Context, log *zap.SugaredLogger) context.Context {
	return context.WithValue(ctx, loggerContextKey, log)
}

func FromContext(ctx context.Context) *zap.SugaredLogger {
	log, ok := ctx.Value(loggerContextKey).(*zap.SugaredLogger)
	if !ok {
		log = New()
		log.Warn("no logger found in ctx - creating new one")
	}
	return log
}

func init() {
	zap.ReplaceGlobals(New().Desugar())
}

package logger_test

import (
	"context"
	"testing"

	"domainwatch/pkg/logger"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetWithoutSetup(t *testing.T) {
	// never nil, even before Setup
	require.NotNil(t, logger.Get(context.Background()))
	require.NotPanics(t, func() {
		logger.Info(context.Background(), "before setup")
	})
}

func TestSetup(t *testing.T) {
	for _, env := range []string{logger.DevelopmentEnvironment, logger.ProductionEnvironment, "staging"} {
		t.Run(env, func(t *testing.T) {
			require.NotPanics(t, func() {
				logger.Setup(env)
			})
			require.NotNil(t, logger.Get(context.Background()))
		})
	}
}

func TestIsDebug(t *testing.T) {
	logger.Setup(logger.DevelopmentEnvironment)
	require.True(t, logger.IsDebug(context.Background()))

	logger.Setup(logger.ProductionEnvironment)
	require.False(t, logger.IsDebug(context.Background()))
}

func TestWithLogger(t *testing.T) {
	custom := zap.NewExample()
	ctx := logger.WithLogger(context.Background(), custom)
	require.Equal(t, custom, logger.Get(ctx))
}

func TestWithFieldsAreAttached(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ctx := logger.WithLogger(context.Background(), zap.New(core))

	ctx = logger.WithFields(ctx, zap.String("id", "abc123"))
	ctx = logger.WithFields(ctx, zap.String("visitor_ip", "5.6.7.8"))

	logger.Debug(ctx, "debug")
	logger.Info(ctx, "info")
	logger.Warn(ctx, "warn")
	logger.Error(ctx, "error")

	entries := logs.All()
	require.Len(t, entries, 4)
	for _, e := range entries {
		fields := e.ContextMap()
		require.Equal(t, "abc123", fields["id"])
		require.Equal(t, "5.6.7.8", fields["visitor_ip"])
	}
	require.Equal(t, zapcore.ErrorLevel, entries[3].Level)
}

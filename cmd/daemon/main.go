package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/genricoloni/rdsrelay/internal/coalescer"
	"github.com/genricoloni/rdsrelay/internal/config"
	"github.com/genricoloni/rdsrelay/internal/domain"
	"github.com/genricoloni/rdsrelay/internal/feed"
	"github.com/genricoloni/rdsrelay/internal/notify"
	"github.com/genricoloni/rdsrelay/internal/smartgen"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// AppOptions assembles the daemon's dependency graph. Kept as a
// variable so tests can validate the graph without starting it.
var AppOptions = fx.Options(
	fx.Provide(
		newLogger,
		config.NewAppConfig,
		newDeviceLink,
		newNotifier,
		newProcessor,
		newFeed,
	),
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(
		// Route fx lifecycle events through the application logger
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
		AppOptions,
	)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := app.Start(ctx); err != nil {
		panic(err)
	}

	// Wait for interrupt signal
	<-ctx.Done()

	if err := app.Stop(context.Background()); err != nil {
		panic(err)
	}
}

// newLogger creates the zap logger, writing to a rotating file when
// RDSRELAY_LOG_FILE is set and to stderr otherwise.
func newLogger() (*zap.Logger, error) {
	logFile := os.Getenv("RDSRELAY_LOG_FILE")
	if logFile == "" {
		return zap.NewProduction()
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(&lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}),
		zapcore.InfoLevel,
	)
	return zap.New(core), nil
}

// newDeviceLink creates the SmartGen encoder link
func newDeviceLink(logger *zap.Logger, cfg *config.AppConfig) domain.DeviceLink {
	return smartgen.NewManager(logger, smartgen.Options{
		Addr:            cfg.EncoderAddr(),
		DialTimeout:     cfg.DialTimeout(),
		ResponseTimeout: cfg.ResponseTimeout(),
		InitialBackoff:  cfg.InitialBackoff(),
		MaxBackoff:      cfg.MaxBackoff(),
	})
}

// newNotifier creates the outbound webhook notifier (or a no-op)
func newNotifier(logger *zap.Logger, cfg *config.AppConfig) domain.Notifier {
	return notify.New(logger, cfg.Webhook.URL)
}

// newProcessor creates the track coalescer
func newProcessor(logger *zap.Logger, cfg *config.AppConfig, link domain.DeviceLink, notifier domain.Notifier) domain.TrackProcessor {
	return coalescer.New(logger, link, notifier, coalescer.Options{
		IdlePoll:    cfg.IdlePoll(),
		ConnectWait: cfg.ConnectWait(),
	})
}

// newFeed creates the spin feed subscriber
func newFeed(logger *zap.Logger, cfg *config.AppConfig, processor domain.TrackProcessor) domain.Feed {
	return feed.NewWSFeed(logger, cfg.Feed.URL, processor)
}

// registerHooks ties the components to the application lifecycle. The
// link and processor come up before the feed so the first spin already
// has a worker behind it, and shut down in reverse order.
func registerHooks(
	lc fx.Lifecycle,
	logger *zap.Logger,
	link domain.DeviceLink,
	processor domain.TrackProcessor,
	spins domain.Feed,
) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			link.Start()
			processor.Start()
			if err := spins.Start(ctx); err != nil {
				return err
			}
			logger.Info("rdsrelay daemon started")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := spins.Stop(ctx); err != nil {
				logger.Warn("Feed shutdown failed", zap.Error(err))
			}
			processor.Stop()
			link.Stop()
			logger.Info("rdsrelay daemon stopped")
			return nil
		},
	})
}

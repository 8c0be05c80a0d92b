package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/weegigs/wee-counter-go/support"
	"github.com/weegigs/wee-counter-go/we"
)

var serveFlags struct {
	address    string
	logLevel   string
	consoleLog bool
	exporter   string
	rateLimit  float64
	rateBurst  int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Host counter sessions over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := support.Load(envFiles...)
		if err != nil {
			return err
		}
		if err := overrideConfig(cmd, &cfg); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return serve(ctx, cfg, newLogger(cfg))
	},
}

func init() {
	flags := serveCmd.Flags()
	flags.StringVar(&serveFlags.address, "address", "", "listen address")
	flags.StringVar(&serveFlags.logLevel, "log-level", "", "log level")
	flags.BoolVar(&serveFlags.consoleLog, "console-log", false, "human readable logs")
	flags.StringVar(&serveFlags.exporter, "trace-exporter", "", "none, console, otlp or jaeger")
	flags.Float64Var(&serveFlags.rateLimit, "rate-limit", 0, "commands per second per client, 0 disables")
	flags.IntVar(&serveFlags.rateBurst, "rate-burst", 0, "commands a client may burst")
}

func overrideConfig(cmd *cobra.Command, cfg *support.Config) error {
	flags := cmd.Flags()
	if flags.Changed("address") {
		cfg.Address = serveFlags.address
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = serveFlags.logLevel
	}
	if flags.Changed("console-log") {
		cfg.ConsoleLog = serveFlags.consoleLog
	}
	if flags.Changed("trace-exporter") {
		cfg.TraceExporter = support.TraceExporter(serveFlags.exporter)
	}
	if flags.Changed("rate-limit") {
		cfg.RateLimit = serveFlags.rateLimit
	}
	if flags.Changed("rate-burst") {
		cfg.RateBurst = serveFlags.rateBurst
	}

	return cfg.Validate()
}

func newLogger(cfg support.Config) *zerolog.Logger {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}

	var logger zerolog.Logger
	if cfg.ConsoleLog {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	} else {
		logger = zerolog.New(os.Stderr)
	}
	logger = logger.Level(level).With().Timestamp().Logger()

	return &logger
}

func installTracing(ctx context.Context, cfg support.Config) (func(context.Context) error, error) {
	var exporter trace.SpanExporter
	var err error

	switch cfg.TraceExporter {
	case support.ConsoleTracing:
		exporter, err = we.ConsoleExporter()
	case support.OTLPTracing:
		exporter, err = we.OTLPExporter(ctx, cfg.OTLPEndpoint, cfg.OTLPHeaders, cfg.OTLPInsecure)
	case support.JaegerTracing:
		exporter, err = we.JaegerExporter(cfg.JaegerEndpoint)
	default:
		return func(context.Context) error { return nil }, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create %s exporter", cfg.TraceExporter)
	}

	return we.InstallTracing(exporter), nil
}

func serve(ctx context.Context, cfg support.Config, logger *zerolog.Logger) error {
	shutdownTracing, err := installTracing(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to flush traces")
		}
	}()

	configureAccessLog(cfg)
	server := CounterServer(cfg, logger)

	failed := make(chan error, 1)
	go func() {
		logger.Info().Str("address", cfg.Address).Msg("listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			failed <- err
		}
		close(failed)
	}()

	select {
	case err := <-failed:
		return err
	case <-ctx.Done():
	}

	logger.Info().Msg("shutting down")
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return server.Shutdown(shutdown)
}

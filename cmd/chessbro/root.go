package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/park285/chessbro/internal/chessbuilder"
	"github.com/park285/chessbro/internal/config"
	"github.com/park285/chessbro/internal/metrics"
	"github.com/park285/chessbro/internal/obslog"
	"github.com/park285/chessbro/internal/protocol"
	"github.com/park285/chessbro/internal/transport"
)

var rootCmd = &cobra.Command{
	Use:   "chessbro",
	Short: "ChessBro is a line-protocol chess engine",
	Long: `ChessBro speaks a UCI-style text protocol on stdin/stdout, or over a
websocket when --listen is set. Moves come from an optional opening book,
an optional external engine and finally a random legal move.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

// Execute runs the root command. Errors go to stderr; stdout is the protocol stream.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.SetOut(os.Stderr)
	flags := rootCmd.Flags()
	flags.String("config", "", "Path to a YAML config file")
	flags.String("listen", "", "Serve the protocol over websocket on this address instead of stdio")
	flags.String("metrics-addr", "", "Expose Prometheus metrics on this address")
	flags.String("dialect", "", "Protocol dialect: default or uci")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
}

func run(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	if err := obslog.Init(cfg.Log.ToObslog()); err != nil {
		return fmt.Errorf("logger init error: %w", err)
	}
	logger := obslog.L()
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := chessbuilder.New(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("engine init error: %w", err)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logger.Warn("shutdown_close_failed", zap.Error(err))
		}
	}()

	if addr := strings.TrimSpace(cfg.Metrics.Addr); addr != "" {
		go func() {
			if err := metrics.Serve(ctx, addr); err != nil {
				logger.Error("metrics_server_failed", zap.String("addr", addr), zap.Error(err))
			}
		}()
	}

	logger.Info("chessbro_started",
		zap.String("dialect", cfg.Protocol.Dialect),
		zap.Strings("advisors", cfg.Advisor.Kinds),
		zap.String("listen", cfg.Transport.Listen),
	)

	if listen := strings.TrimSpace(cfg.Transport.Listen); listen != "" {
		factory := func() *protocol.Interpreter { return deps.NewInterpreter(logger) }
		srv := transport.NewWebSocketServer(factory, deps.Advisor, logger)
		return srv.ListenAndServe(ctx, listen, cfg.Transport.Path)
	}

	// Reads from stdin cannot be interrupted, so a signal ends the process
	// without waiting for the loop.
	errCh := make(chan error, 1)
	go func() {
		errCh <- transport.ServeLines(ctx, os.Stdin, os.Stdout, deps.NewInterpreter(logger), deps.Advisor)
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info("chessbro_interrupted")
		return nil
	}
}

func applyFlags(cmd *cobra.Command, cfg *config.AppConfig) {
	flags := cmd.Flags()
	if flags.Changed("listen") {
		cfg.Transport.Listen, _ = flags.GetString("listen")
	}
	if flags.Changed("metrics-addr") {
		cfg.Metrics.Addr, _ = flags.GetString("metrics-addr")
	}
	if flags.Changed("dialect") {
		cfg.Protocol.Dialect, _ = flags.GetString("dialect")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
}

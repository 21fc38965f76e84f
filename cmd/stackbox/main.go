package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"stackbox/internal/bootstrap"
	"stackbox/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "stackbox",
	Short: "An in-process emulator of S3, DynamoDB, and the Lambda invocation surface",
	RunE:  runServer,
}

func init() {
	defaults := config.Defaults()
	rootCmd.Flags().Int("port", defaults.Port, "Port to listen on. Env var: RUSTSTACK_PORT")
	rootCmd.Flags().String("host", defaults.Host, "Host/address to bind. Env var: RUSTSTACK_HOST")
	rootCmd.Flags().Bool("s3", defaults.S3, "Enable the S3 emulator. Env var: RUSTSTACK_S3")
	rootCmd.Flags().Bool("dynamodb", defaults.DynamoDB, "Enable the DynamoDB emulator. Env var: RUSTSTACK_DYNAMODB")
	rootCmd.Flags().Bool("lambda", defaults.Lambda, "Enable the Lambda stub. Env var: RUSTSTACK_LAMBDA")
	rootCmd.Flags().String("data-dir", defaults.DataDir, "Unused placeholder for a future persistent backend. Env var: RUSTSTACK_DATA_DIR")
	rootCmd.Flags().String("log-level", defaults.LogLevel, "Log level (debug, info, warn, error). Env var: RUSTSTACK_LOG_LEVEL")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg := config.Defaults()

	if v, err := cmd.Flags().GetInt("port"); err == nil && cmd.Flags().Changed("port") {
		cfg.Port = v
	}
	if v, err := cmd.Flags().GetString("host"); err == nil && cmd.Flags().Changed("host") {
		cfg.Host = v
	}
	if v, err := cmd.Flags().GetBool("s3"); err == nil && cmd.Flags().Changed("s3") {
		cfg.S3 = v
	}
	if v, err := cmd.Flags().GetBool("dynamodb"); err == nil && cmd.Flags().Changed("dynamodb") {
		cfg.DynamoDB = v
	}
	if v, err := cmd.Flags().GetBool("lambda"); err == nil && cmd.Flags().Changed("lambda") {
		cfg.Lambda = v
	}
	if v, err := cmd.Flags().GetString("data-dir"); err == nil && cmd.Flags().Changed("data-dir") {
		cfg.DataDir = v
	}
	if v, err := cmd.Flags().GetString("log-level"); err == nil && cmd.Flags().Changed("log-level") {
		cfg.LogLevel = v
	}

	logger, err := bootstrap.NewLogger(cfg)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	router := bootstrap.BuildRouter(cfg, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("address", addr),
			zap.Bool("s3", cfg.S3),
			zap.Bool("dynamodb", cfg.DynamoDB),
			zap.Bool("lambda", cfg.Lambda),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

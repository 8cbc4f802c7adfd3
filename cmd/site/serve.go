package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mustafabch/website/internal/handlers"
	"github.com/mustafabch/website/internal/observability"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(flags *rootFlags) *cobra.Command {
	var port string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the site over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), flags, port)
		},
	}
	cmd.Flags().StringVar(&port, "port", "", "listen port (overrides SITE_PORT)")
	return cmd
}

func runServe(ctx context.Context, flags *rootFlags, port string) error {
	cfg, err := flags.load()
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}

	baseLogger, err := observability.NewLogger(cfg.Log.Level)
	if err != nil {
		return fmt.Errorf("initialise logger: %w", err)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()
	logger := baseLogger.Named("site")

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	closeWatch, err := a.watchData(ctx, logger)
	if err != nil {
		logger.Warn("dataset watch disabled", zap.Error(err))
		closeWatch = func() error { return nil }
	}
	defer func() {
		_ = closeWatch()
	}()

	router := handlers.NewRouter(handlers.Deps{
		Site:        cfg.Site,
		Root:        a.root,
		Pipeline:    a.pipeline,
		Contact:     a.contact,
		Bundle:      a.bundle,
		Logger:      logger,
		CORSOrigins: cfg.CORS.AllowedOrigins,
	})
	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
	}

	serverLogger := logger.Named("http").With(zap.String("addr", server.Addr))
	errCh := make(chan error, 1)
	go func() {
		serverLogger.Info("site listening",
			zap.String("root", cfg.Server.Root),
			zap.String("data_origin", cfg.Data.Origin),
			zap.Bool("dev", cfg.Dev),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	logger.Info("shutdown signal received; draining requests")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/home-affordability/internal/cache"
	"github.com/iwvelando/home-affordability/internal/server"
	"github.com/iwvelando/home-affordability/pkg/constants"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	shutdownTimeout = 10 * time.Second

	// serverConfigFlag names the overlay file read by setup before serve runs.
	serverConfigFlag = "server-config"
)

func newServeCommand(a *app) *cobra.Command {
	var address string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the affordability HTTP API",
		Args:  cobra.NoArgs,
	}
	cmd.Flags().String(serverConfigFlag, constants.DefaultServerConfigFile, "configuration merged over --config for the server")
	cmd.Flags().StringVar(&address, "address", "", "listen address override")

	cmd.RunE = func(cmd *cobra.Command, _ []string) error {
		srv := a.conf.Server
		if address != "" {
			srv.Address = address
		}
		if srv.Address == "" {
			srv.Address = constants.DefaultServerAddress
		}
		uploadSize, err := srv.UploadSizeBytes()
		if err != nil {
			return fmt.Errorf("invalid server configuration: %w", err)
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		c, err := cache.New(ctx, a.logger, a.conf.Cache)
		if err != nil {
			return err
		}
		defer func() { _ = c.Close() }()

		handler := server.NewHandler(a.logger, server.Options{
			Resolver:       a.resolver,
			Cache:          c,
			CacheTTL:       a.conf.Cache.TTL(),
			CacheKeyPrefix: a.conf.Cache.KeyPrefix,
			MaxUploadSize:  uploadSize,
			Version:        version,
		})
		return run(ctx, a.logger, &http.Server{
			Addr:              srv.Address,
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      15 * time.Second,
			IdleTimeout:       60 * time.Second,
		})
	}
	return cmd
}

// run serves until ctx is cancelled, then drains in-flight requests.
func run(ctx context.Context, logger *zap.Logger, srv *http.Server) error {
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("op", "serve"),
			zap.String("address", srv.Addr),
		)
		serverErr <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
		logger.Info("shutting down server", zap.String("op", "serve"))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error during server shutdown: %w", err)
	}
	logger.Info("server exited", zap.String("op", "serve"))
	return nil
}

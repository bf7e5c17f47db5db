package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/zipafford/internal/api"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the affordability API over HTTP",
	Long:  "Starts the JSON API. Datasets load through the shared table cache on first use; every request classifies with its own inputs.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if cmd.Flags().Changed("port") {
			cfg.Server.Port, _ = cmd.Flags().GetInt("port")
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		noStore, _ := cmd.Flags().GetBool("no-store")
		env, err := initEnv(ctx, !noStore)
		if err != nil {
			return err
		}
		defer env.Close()

		server := &http.Server{
			Addr: fmt.Sprintf(":%d", cfg.Server.Port),
			Handler: api.NewRouter(api.Options{
				Pipeline:       env.Pipeline,
				Store:          env.Store,
				Cache:          env.Cache,
				Defaults:       cfg.Defaults,
				AllowedOrigins: cfg.Server.AllowedOrigins,
			}),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errc := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errc <- eris.Wrap(err, "server listen")
			}
			close(errc)
		}()
		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port), zap.Bool("store", env.Store != nil))

		select {
		case err := <-errc:
			return err
		case <-ctx.Done():
		}
		zap.L().Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zap.L().Warn("server shutdown", zap.Error(err))
		}
		zap.L().Info("server stopped")
		return nil
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().Bool("no-store", false, "serve without a profile/run store")
	rootCmd.AddCommand(serveCmd)
}

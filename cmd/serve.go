package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"github.com/yuriiter/freccia/pkg/bot/httpchat"
	"github.com/yuriiter/freccia/pkg/metrics"
)

const shutdownTimeout = 5 * time.Second

var addrArg string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP chat server",
	Long:  `Serves the chat-bot conversation as a JSON API, with /health and /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = addrArg
		}

		m := metrics.New()
		sessions, closeStore, err := newSessions(ctx)
		if err != nil {
			return err
		}
		defer closeStore()

		srv := &http.Server{
			Addr: addr,
			Handler: httpchat.NewHandler(newBot(sessions, m), sessions,
				httpchat.WithLogger(logger),
				httpchat.WithMetrics(m.Handler()),
			),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("starting chat server", "addr", srv.Addr, "sessions", cfg.Sessions.Backend)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)

		case <-ctx.Done():
			logger.Info("shutting down chat server")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()

			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("graceful shutdown did not complete", "timeout", shutdownTimeout, "err", err)
				if err := srv.Close(); err != nil {
					return fmt.Errorf("close server: %w", err)
				}
			}
			logger.Info("chat server stopped")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVarP(&addrArg, "addr", "a", "", "Listen address (default from config)")
}

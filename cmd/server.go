package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ziadkadry99/apptagent/internal/server"
)

var (
	serverPort     int
	serverAllowAll bool
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HTTP API and chat WebSocket",
	Long:  `Starts the apptagent HTTP server with the REST API under /api, a chat WebSocket at /ws/chat, /healthz and Prometheus metrics at /metrics.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		port := a.cfg.Port
		if cmd.Flags().Changed("port") {
			port = serverPort
		}
		srv := server.New(server.Config{Port: port, AllowAll: serverAllowAll}, a.host, a.log, a.metrics)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		go func() {
			<-ctx.Done()
			a.log.Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()

		a.log.Info("apptagent server starting",
			zap.String("version", Version),
			zap.Int("port", port),
			zap.Bool("configured", a.cfg.Business != nil))

		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "port to listen on (overrides the config file)")
	serverCmd.Flags().BoolVar(&serverAllowAll, "cors-allow-all", false, "allow every CORS origin")
	rootCmd.AddCommand(serverCmd)
}

// Package serve runs the HTTP API
package serve

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/tomwattsa3/wealthwisetracker-sub000/cmd/root"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/httpapi"
	"github.com/tomwattsa3/wealthwisetracker-sub000/internal/logging"

	"github.com/spf13/cobra"
)

const shutdownTimeout = 30 * time.Second

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the JSON API over HTTP",
	Long: `Serve the JSON API over HTTP until interrupted. Routes live under /api;
/healthz reports liveness.`,
	Args: cobra.NoArgs,
	RunE: serveFunc,
}

func init() {
	Cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default server.addr from config)")
}

func serveFunc(cmd *cobra.Command, _ []string) error {
	cfg := root.App.GetConfig()
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           httpapi.NewRouter(httpapi.NewHandler(root.App), cfg.Server.Mode),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := root.Context(cmd)
	errCh := make(chan error, 1)
	go func() {
		root.Log.WithField(logging.FieldURL, addr).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	root.Log.Info("Shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	root.Log.Info("Server stopped gracefully")
	return nil
}

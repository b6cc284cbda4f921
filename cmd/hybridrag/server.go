package hybridrag

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

	"github.com/soundprediction/hybridrag/pkg/server"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the HybridRAG HTTP server",
	Long: `Start the HybridRAG HTTP server to provide REST API access to retrieval.

The server provides endpoints for:
- Retrieving triples for a query
- Lookups with "did you mean" suggestions
- Browsing node neighborhoods and topics
- Refreshing the suggestion catalog
- Health checks

Configuration can be provided through config files, environment variables, or command-line flags.`,
	RunE: runServer,
}

var (
	serverHost string
	serverPort int
	serverMode string
)

func init() {
	rootCmd.AddCommand(serverCmd)

	serverCmd.Flags().StringVar(&serverHost, "host", "localhost", "Server host")
	serverCmd.Flags().IntVar(&serverPort, "port", 8080, "Server port")
	serverCmd.Flags().StringVar(&serverMode, "mode", "debug", "Server mode (debug, release, test)")
}

func runServer(cmd *cobra.Command, args []string) error {
	return withRuntime(func(ctx context.Context, rt *app) error {
		overrideServerFlags(cmd, rt)
		if rt.cfg.Server.Port <= 0 || rt.cfg.Server.Port > 65535 {
			return fmt.Errorf("invalid port: %d", rt.cfg.Server.Port)
		}

		if n, err := rt.client.RefreshCatalog(ctx); err != nil {
			rt.logger.Warn("Initial catalog load failed", "error", err)
		} else {
			rt.logger.Debug("Catalog loaded", "names", n)
		}

		srv := server.New(rt.cfg, rt.client, rt.logger)
		srv.Setup()

		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

		serverErrChan := make(chan error, 1)
		go func() {
			if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serverErrChan <- err
			}
		}()

		select {
		case err := <-serverErrChan:
			return fmt.Errorf("server error: %w", err)
		case sig := <-sigChan:
			rt.logger.Info("Received signal", "signal", sig.String())

			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer shutdownCancel()

			if err := srv.Stop(shutdownCtx); err != nil {
				return fmt.Errorf("server shutdown error: %w", err)
			}
			rt.logger.Info("Server stopped gracefully")
			return nil
		}
	})
}

func overrideServerFlags(cmd *cobra.Command, rt *app) {
	if cmd.Flags().Changed("host") {
		rt.cfg.Server.Host = serverHost
	}
	if cmd.Flags().Changed("port") {
		rt.cfg.Server.Port = serverPort
	}
	if cmd.Flags().Changed("mode") {
		rt.cfg.Server.Mode = serverMode
	}
}

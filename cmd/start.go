package cmd

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"
	"wafconsole/api"
	"wafconsole/config"
	"wafconsole/core"
	"wafconsole/logger"

	"github.com/spf13/cobra"
)

var startServerPort string

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Starts the console server and the background status refresher",
	Long: `Starts the web UI/API server together with a background goroutine that
periodically refreshes WAF status from the control service.
Press Ctrl+C to gracefully shut down.`,
	Run: func(cmd *cobra.Command, args []string) {
		logger.Info("--- Start Command: Run ---")

		actualServerPort := startServerPort
		if !cmd.Flags().Changed("port") {
			actualServerPort = config.AppConfig.Server.Port
			logger.Info("Start Command: Server port flag not set, using config value: %s", actualServerPort)
		} else {
			logger.Info("Start Command: Server port flag was set, using flag value: %s", actualServerPort)
		}
		if actualServerPort == "" {
			logger.Error("Start Command: Server port is empty after checking flag and config, defaulting to 8890")
			actualServerPort = "8890"
		}

		client := newBackendClient()
		store := core.NewStore(client)
		sequencer := core.NewSequencer(client, store)

		var wg sync.WaitGroup

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		// --- Start API Server Goroutine ---
		wg.Add(1)
		go func(parentCtx context.Context) {
			defer wg.Done()
			logger.Info("Start Command Goroutine(API): Attempting to start console server on port %s...", actualServerPort)

			apiRouter := api.NewRouter(store, sequencer)
			staticFileDir := "./static"
			fileServer := http.FileServer(http.Dir(staticFileDir))
			mainMux := http.NewServeMux()
			mainMux.Handle("/api/", http.StripPrefix("/api", apiRouter))
			mainMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
				if strings.HasPrefix(r.URL.Path, "/api/") {
					logger.Error("Request for %s reached root handler unexpectedly, passing to API router.", r.URL.Path)
					http.StripPrefix("/api", apiRouter).ServeHTTP(w, r)
					return
				}
				logger.Debug("Start Command Goroutine(API): Serving static file for: %s", r.URL.Path)
				fileServer.ServeHTTP(w, r)
			})

			server := &http.Server{
				Addr:    ":" + actualServerPort,
				Handler: mainMux,
			}

			go func() {
				<-parentCtx.Done()
				logger.Info("Start Command Goroutine(API): Shutdown signal received...")
				shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer shutdownCancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("Start Command Goroutine(API): Graceful shutdown failed: %v", err)
				} else {
					logger.Info("Start Command Goroutine(API): Gracefully stopped.")
				}
			}()

			logger.Info("Start Command Goroutine(API): Listening on :%s", actualServerPort)
			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("Start Command Goroutine(API): ListenAndServe error: %v", err)
				cancel()
			}
			logger.Info("Start Command Goroutine(API): Finished.")
		}(ctx)

		// --- Start Status Refresher Goroutine ---
		wg.Add(1)
		go func(parentCtx context.Context) {
			defer wg.Done()
			interval := time.Duration(config.AppConfig.UI.RefreshIntervalSeconds) * time.Second
			logger.Info("Start Command Goroutine(Refresher): Refreshing WAF status every %s.", interval)

			// Prime the cache so the first page load has data.
			if err := store.FetchStatus(parentCtx); err != nil {
				logger.Error("Start Command Goroutine(Refresher): Initial status fetch failed: %v", err)
			}

			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for {
				select {
				case <-parentCtx.Done():
					logger.Info("Start Command Goroutine(Refresher): Shutdown signal received...")
					return
				case <-ticker.C:
					if err := store.FetchStatus(parentCtx); err != nil {
						logger.Error("Start Command Goroutine(Refresher): Status refresh failed: %v", err)
					}
				}
			}
		}(ctx)

		// --- Wait for termination signal ---
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)

		logger.Info("Start Command: All service goroutines launched. Press Ctrl+C to exit.")

		select {
		case sig := <-sigs:
			logger.Info("Start Command: Received signal: %s. Initiating shutdown...", sig)
		case <-ctx.Done():
			logger.Info("Start Command: Context cancelled (likely due to a service error). Initiating shutdown...")
		}

		cancel()

		shutdownComplete := make(chan struct{})
		go func() {
			logger.Info("Start Command: Waiting for goroutines to finish...")
			wg.Wait()
			logger.Info("Start Command: WaitGroup finished.")
			close(shutdownComplete)
		}()

		select {
		case <-shutdownComplete:
			logger.Info("Start Command: All services shut down.")
		case <-time.After(10 * time.Second):
			logger.Error("Start Command: Shutdown timed out. Forcing exit.")
		}

		logger.Info("Start Command: Exited.")
	},
}

func init() {
	startCmd.Flags().StringVar(&startServerPort, "port", "8890", "Port for the console server (overrides config)")
	rootCmd.AddCommand(startCmd)
}

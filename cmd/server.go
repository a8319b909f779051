package cmd

import (
	"net/http"
	"strings"
	"wafconsole/api"
	"wafconsole/core"
	"wafconsole/logger"

	"github.com/spf13/cobra"
)

var standaloneServerPort string

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Starts the web UI and API server without the background refresher",
	Run: func(cmd *cobra.Command, args []string) {
		portToUse := standaloneServerPort
		if portToUse == "" {
			portToUse = "8890" // Use default if flag parsing somehow fails
		}

		logger.Info("--- Server Command: Run ---")
		logger.Info("Attempting to start server on port %s...", portToUse)

		client := newBackendClient()
		store := core.NewStore(client)
		sequencer := core.NewSequencer(client, store)

		apiRouter := api.NewRouter(store, sequencer)
		if apiRouter == nil {
			logger.Fatal("Server Command: api.NewRouter() returned nil!")
			return
		}

		staticFileDir := "./static"
		fileServer := http.FileServer(http.Dir(staticFileDir))

		mainMux := http.NewServeMux()

		mainMux.Handle("/api/", http.StripPrefix("/api", apiRouter))
		logger.Info("Server Command: Registered API router under /api/ prefix with StripPrefix.")

		mainMux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
			if strings.HasPrefix(r.URL.Path, "/api/") {
				// This shouldn't be hit if the /api/ handle above works, but acts as a safeguard
				logger.Error("Request for %s reached root handler unexpectedly, passing to API router.", r.URL.Path)
				http.StripPrefix("/api", apiRouter).ServeHTTP(w, r)
				return
			}
			logger.Debug("Server Command: Serving static file for: %s", r.URL.Path)
			fileServer.ServeHTTP(w, r)
		})
		logger.Info("Server Command: Registered static file handler for /.")

		logger.Info("Server Command: Attempting to ListenAndServe on :%s...", portToUse)
		if err := http.ListenAndServe(":"+portToUse, mainMux); err != nil {
			logger.Fatal("Could not start server: %v", err)
		}
	},
}

func init() {
	serverCmd.Flags().StringVarP(&standaloneServerPort, "port", "p", "8890", "Port for the server to listen on (if run standalone)")
	rootCmd.AddCommand(serverCmd)
}

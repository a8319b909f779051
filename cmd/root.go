package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"wafconsole/config"
	"wafconsole/database"
	"wafconsole/logger"
	"wafconsole/wafclient"

	"github.com/spf13/cobra"
)

var (
	cfgFile            string
	dbPath             string // Bound to --dbpath flag
	appLogPathFlag     string
	backendLogPathFlag string
	logLevelFlag       string
)

// Helper function to expand tilde in this package too
func expandTildeCmd(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

// newBackendClient builds the control-service client from the loaded
// configuration.
func newBackendClient() *wafclient.Client {
	return wafclient.NewClient(
		config.AppConfig.Backend.BaseURL,
		time.Duration(config.AppConfig.Backend.TimeoutSeconds)*time.Second,
	)
}

var rootCmd = &cobra.Command{
	Use:   "wafconsole",
	Short: "Administrative console for a WAF control plane",
	Long: `wafconsole is the operator console for a web-application-firewall
control plane. It serves the policy/logs/audit UI locally and performs all
WAF operations against the external control service over HTTP.

Run 'wafconsole start' to serve the console, or use the policy/logs/audit
subcommands for the same operations from the terminal.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize config first, passing flag values for logging config
		if err := config.Init(cfgFile, appLogPathFlag, backendLogPathFlag, logLevelFlag); err != nil {
			return fmt.Errorf("failed to initialize config in PersistentPreRunE: %w", err)
		}

		finalDBPath := dbPath // Flag wins over config
		if finalDBPath != "" {
			expandedPath, err := expandTildeCmd(finalDBPath)
			if err != nil {
				logger.Error("Error expanding tilde in --dbpath flag '%s': %v. Using original.", finalDBPath, err)
			} else {
				finalDBPath = expandedPath
			}
		} else {
			finalDBPath = config.AppConfig.Database.Path
			expandedPath, err := expandTildeCmd(finalDBPath)
			if err != nil {
				logger.Error("Error expanding tilde in config DB path '%s': %v. Using original.", finalDBPath, err)
			} else {
				finalDBPath = expandedPath
			}
		}
		if finalDBPath == "" {
			logger.Error("Database path is empty after checking flag and config! Falling back to 'wafconsole.db' in CWD.")
			finalDBPath = "wafconsole.db"
		}

		if err := database.InitDB(finalDBPath); err != nil {
			return fmt.Errorf("failed to initialize database at %s: %w", finalDBPath, err)
		}

		isSuppressedCmd := false
		if cmd.Name() == "completion" ||
			cmd.Name() == cobra.ShellCompRequestCmd ||
			cmd.Name() == cobra.ShellCompNoDescRequestCmd ||
			cmd.Name() == "start" {
			isSuppressedCmd = true
		}

		if !isSuppressedCmd {
			logger.Info("Database initialized at: %s (from rootCmd PersistentPreRunE)", finalDBPath)
		}
		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/wafconsole/config.yaml or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "dbpath", "", "path to SQLite database file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&appLogPathFlag, "app-log", "", "path for the application log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&backendLogPathFlag, "backend-log", "", "path for the backend-call log file (overrides config/default)")
	rootCmd.PersistentFlags().StringVar(&logLevelFlag, "log-level", "", "log level: DEBUG, INFO, ERROR (overrides config/default)")
}

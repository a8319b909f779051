package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"wafconsole/logger"

	"github.com/spf13/viper"
)

type DefaultPaths struct {
	ConfigDir      string
	LogPathApp     string
	LogPathBackend string
	DBPath         string
	LogLevel       string
	BackendBaseURL string
}

type Configuration struct {
	Database struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"database"`
	Server struct {
		Port    string `mapstructure:"port"`
		LogPath string `mapstructure:"log_path"`
	} `mapstructure:"server"`
	Backend struct {
		BaseURL        string `mapstructure:"base_url"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds"`
		LogPath        string `mapstructure:"log_path"`
	} `mapstructure:"backend"`
	Logging struct {
		Level string `mapstructure:"level"`
	} `mapstructure:"logging"`
	UI struct {
		RefreshIntervalSeconds int `mapstructure:"refresh_interval_seconds"`
		DefaultPageSize        int `mapstructure:"default_page_size"`
	} `mapstructure:"ui"`
}

var AppConfig Configuration

func expandTilde(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(home, path[1:]), nil
}

func GetDefaultConfigPaths() DefaultPaths {
	var paths DefaultPaths
	userConfigDirBase, err := os.UserConfigDir()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not get user config dir: %v. Using current directory.\n", err)
		userConfigDirBase = "."
	}

	userConfigDir, err := expandTilde(userConfigDirBase)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in user config dir '%s': %v. Using potentially literal path.\n", userConfigDirBase, err)
		userConfigDir = userConfigDirBase
	}

	paths.ConfigDir = filepath.Join(userConfigDir, "wafconsole")
	logDir := filepath.Join(paths.ConfigDir, "logs")

	paths.LogPathApp = filepath.Join(logDir, "app.log")
	paths.LogPathBackend = filepath.Join(logDir, "backend.log")
	paths.DBPath = filepath.Join(paths.ConfigDir, "wafconsole.db")
	paths.LogLevel = "INFO"
	paths.BackendBaseURL = "http://localhost:8080"
	return paths
}

func Init(cfgFile string, flagAppLogPath, flagBackendLogPath, flagLogLevel string) error {
	v := viper.New()

	defaults := GetDefaultConfigPaths()
	v.SetDefault("database.path", defaults.DBPath)
	v.SetDefault("server.port", "8890")
	v.SetDefault("server.log_path", defaults.LogPathApp)
	v.SetDefault("backend.base_url", defaults.BackendBaseURL)
	v.SetDefault("backend.timeout_seconds", 15)
	v.SetDefault("backend.log_path", defaults.LogPathBackend)
	v.SetDefault("logging.level", defaults.LogLevel)
	v.SetDefault("ui.refresh_interval_seconds", 30)
	v.SetDefault("ui.default_page_size", 100)

	if cfgFile != "" {
		expandedCfgFile, err := expandTilde(cfgFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in config file path '%s': %v. Trying original path.\n", cfgFile, err)
			expandedCfgFile = cfgFile
		}
		v.SetConfigFile(expandedCfgFile)
		v.SetConfigType("yaml")
	} else {
		v.AddConfigPath(defaults.ConfigDir)
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("WAFCONSOLE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	configUsedMsg := "Using default/environment configuration."
	readErr := v.ReadInConfig()
	if readErr == nil {
		configUsedMsg = fmt.Sprintf("Using config file: %s", v.ConfigFileUsed())
	} else {
		if _, ok := readErr.(viper.ConfigFileNotFoundError); ok {
			if cfgFile != "" {
				fmt.Fprintf(os.Stderr, "Warning: Config file specified by flag (%s) not found: %v\n", cfgFile, readErr)
			} else {
				fmt.Fprintln(os.Stderr, "No default config file found. Using defaults/environment variables.")
			}
		} else {
			fmt.Fprintf(os.Stderr, "Error reading config file %s: %v\n", v.ConfigFileUsed(), readErr)
		}
	}

	if err := v.Unmarshal(&AppConfig); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Error unmarshalling configuration: %v\n", err)
		return fmt.Errorf("unable to decode config into struct: %w", err)
	}

	// Apply flag overrides
	if flagAppLogPath != "" {
		expandedPath, err := expandTilde(flagAppLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --app-log path '%s': %v. Using original path.\n", flagAppLogPath, err)
			AppConfig.Server.LogPath = flagAppLogPath
		} else {
			AppConfig.Server.LogPath = expandedPath
		}
	}
	if flagBackendLogPath != "" {
		expandedPath, err := expandTilde(flagBackendLogPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in --backend-log path '%s': %v. Using original path.\n", flagBackendLogPath, err)
			AppConfig.Backend.LogPath = flagBackendLogPath
		} else {
			AppConfig.Backend.LogPath = expandedPath
		}
	}
	if flagLogLevel != "" {
		AppConfig.Logging.Level = strings.ToUpper(flagLogLevel)
	}

	// Expand tilde for paths read from config that might contain it
	var err error
	AppConfig.Database.Path, err = expandTilde(AppConfig.Database.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not expand tilde in database.path '%s': %v.\n", AppConfig.Database.Path, err)
	}

	// Ensure directories exist
	if err := os.MkdirAll(filepath.Dir(AppConfig.Server.LogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create final app log directory %s: %v\n", filepath.Dir(AppConfig.Server.LogPath), err)
	}
	if err := os.MkdirAll(filepath.Dir(AppConfig.Backend.LogPath), 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create final backend log directory %s: %v\n", filepath.Dir(AppConfig.Backend.LogPath), err)
	}
	if err := os.MkdirAll(defaults.ConfigDir, 0750); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not create main config directory %s: %v\n", defaults.ConfigDir, err)
	}

	// Initialize/Re-initialize loggers
	if err := logger.InitGlobalLoggers(AppConfig.Server.LogPath, AppConfig.Backend.LogPath, AppConfig.Logging.Level); err != nil {
		fmt.Fprintf(os.Stderr, "CRITICAL: Failed to initialize global loggers with final config: %v\n", err)
		return fmt.Errorf("failed to initialize global loggers with final config: %w", err)
	}

	logger.Info(configUsedMsg)
	if readErr != nil && cfgFile != "" {
		logger.Error("Error occurred reading specified config file '%s': %v", cfgFile, readErr)
	}
	if flagAppLogPath != "" || flagBackendLogPath != "" || flagLogLevel != "" {
		logger.Info("Log path/level flags may have overridden config file/defaults.")
	}

	if AppConfig.Backend.BaseURL == "" {
		logger.Error("Backend base URL is not configured. All WAF operations will fail until backend.base_url is set.")
	} else {
		logger.Info("WAF control service URL configured: %s", AppConfig.Backend.BaseURL)
	}
	if AppConfig.Backend.TimeoutSeconds < 1 {
		logger.Warn("backend.timeout_seconds (%d) is below minimum, using 1s.", AppConfig.Backend.TimeoutSeconds)
		AppConfig.Backend.TimeoutSeconds = 1
	}
	if AppConfig.UI.RefreshIntervalSeconds < 5 {
		logger.Warn("ui.refresh_interval_seconds (%d) is below minimum (5s). Using 5s.", AppConfig.UI.RefreshIntervalSeconds)
		AppConfig.UI.RefreshIntervalSeconds = 5
	}

	logger.Debug("Final AppConfig Initialized: %+v", AppConfig)
	return nil
}

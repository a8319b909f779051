package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"wafconsole/logger"
	"wafconsole/models"
)

// GetSetting retrieves a specific setting value from the app_settings table.
func GetSetting(key string) (string, error) {
	var value string
	err := DB.QueryRow("SELECT value FROM app_settings WHERE key = ?", key).Scan(&value)
	if err != nil {
		if err == sql.ErrNoRows {
			return "", nil // Return empty string if not found, not an error
		}
		return "", fmt.Errorf("failed to get setting '%s': %w", key, err)
	}
	return value, nil
}

// SetSetting saves or updates a specific setting value in the app_settings table.
func SetSetting(key, value string) error {
	stmt, err := DB.Prepare("INSERT OR REPLACE INTO app_settings (key, value) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("failed to prepare set setting statement for key '%s': %w", key, err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(key, value)
	if err != nil {
		return fmt.Errorf("failed to execute set setting for key '%s': %w", key, err)
	}
	return nil
}

// GetUISettings retrieves the console display preferences, with defaults
// when nothing has been saved yet.
func GetUISettings() (models.UISettings, error) {
	settings := models.UISettings{
		Theme:               "light",
		AutoRefreshEnabled:  true,
		LogPageSize:         100,
		ShowGlobalPolicyRow: true,
	}

	settingsJSON, err := GetSetting(models.UISettingsKey)
	if err != nil {
		return settings, fmt.Errorf("failed to get UI settings: %w", err)
	}
	if settingsJSON == "" {
		return settings, nil
	}
	if err := json.Unmarshal([]byte(settingsJSON), &settings); err != nil {
		logger.Error("GetUISettings: Error unmarshalling settings JSON: %v. Stored value: %s", err, settingsJSON)
		return settings, fmt.Errorf("failed to unmarshal UI settings: %w", err)
	}
	return settings, nil
}

// SetUISettings saves the console display preferences.
func SetUISettings(settings models.UISettings) error {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("failed to marshal UI settings to JSON: %w", err)
	}
	if err := SetSetting(models.UISettingsKey, string(settingsJSON)); err != nil {
		return fmt.Errorf("failed to save UI settings: %w", err)
	}
	return nil
}

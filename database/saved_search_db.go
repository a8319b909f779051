package database

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
	"wafconsole/models"

	"github.com/google/uuid"
)

// CreateSavedSearch stores a named log search filter. A missing id gets a
// generated one; the created search is returned with id and timestamp set.
func CreateSavedSearch(search models.SavedSearch) (models.SavedSearch, error) {
	if search.ID == "" {
		search.ID = uuid.New().String()
	}
	if search.CreatedAt.IsZero() {
		search.CreatedAt = time.Now().UTC()
	}

	filterJSON, err := json.Marshal(search.Filter)
	if err != nil {
		return models.SavedSearch{}, fmt.Errorf("failed to marshal saved search filter: %w", err)
	}

	_, err = DB.Exec(
		"INSERT INTO saved_searches (id, name, filter, range_duration, created_at) VALUES (?, ?, ?, ?, ?)",
		search.ID, search.Name, string(filterJSON), search.RangeDur, search.CreatedAt,
	)
	if err != nil {
		return models.SavedSearch{}, fmt.Errorf("failed to insert saved search '%s': %w", search.Name, err)
	}
	return search, nil
}

// GetSavedSearches returns all saved searches, newest first.
func GetSavedSearches() ([]models.SavedSearch, error) {
	rows, err := DB.Query("SELECT id, name, filter, range_duration, created_at FROM saved_searches ORDER BY created_at DESC")
	if err != nil {
		return nil, fmt.Errorf("querying saved searches: %w", err)
	}
	defer rows.Close()

	var searches []models.SavedSearch
	for rows.Next() {
		var s models.SavedSearch
		var filterJSON string
		if err := rows.Scan(&s.ID, &s.Name, &filterJSON, &s.RangeDur, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning saved search row: %w", err)
		}
		if err := json.Unmarshal([]byte(filterJSON), &s.Filter); err != nil {
			return nil, fmt.Errorf("unmarshalling filter for saved search '%s': %w", s.ID, err)
		}
		searches = append(searches, s)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating saved search rows: %w", err)
	}
	return searches, nil
}

// GetSavedSearch returns one saved search by id.
func GetSavedSearch(id string) (models.SavedSearch, error) {
	var s models.SavedSearch
	var filterJSON string
	err := DB.QueryRow(
		"SELECT id, name, filter, range_duration, created_at FROM saved_searches WHERE id = ?", id,
	).Scan(&s.ID, &s.Name, &filterJSON, &s.RangeDur, &s.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return s, fmt.Errorf("saved search '%s' not found", id)
		}
		return s, fmt.Errorf("failed to get saved search '%s': %w", id, err)
	}
	if err := json.Unmarshal([]byte(filterJSON), &s.Filter); err != nil {
		return s, fmt.Errorf("unmarshalling filter for saved search '%s': %w", id, err)
	}
	return s, nil
}

// DeleteSavedSearch removes a saved search. Deleting an absent id is not an
// error.
func DeleteSavedSearch(id string) error {
	_, err := DB.Exec("DELETE FROM saved_searches WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete saved search '%s': %w", id, err)
	}
	return nil
}

// Package store persists app settings and user preferences.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	id "familydir/pkg/domain"
	"familydir/pkg/platform/sentinel"
	txcontext "familydir/pkg/platform/tx"
)

// PostgresStore persists settings in app_settings and user_preferences.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed settings store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) GetSetting(ctx context.Context, key string) (string, error) {
	var value string
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT value FROM app_settings WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", sentinel.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("get setting: %w", err)
	}
	return value, nil
}

func (s *PostgresStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO app_settings (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	if err != nil {
		return fmt.Errorf("set setting: %w", err)
	}
	return nil
}

func (s *PostgresStore) AllSettings(ctx context.Context) (map[string]string, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx, `SELECT key, value FROM app_settings`)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	defer rows.Close()

	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("list settings: %w", err)
		}
		out[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) GetPreference(ctx context.Context, personID id.PersonID, key string) (json.RawMessage, error) {
	var value []byte
	err := txcontext.Pick(ctx, s.db).QueryRowContext(ctx,
		`SELECT value FROM user_preferences WHERE person_id = $1 AND key = $2`, personID, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get preference: %w", err)
	}
	return json.RawMessage(value), nil
}

func (s *PostgresStore) SetPreference(ctx context.Context, personID id.PersonID, key string, value json.RawMessage) error {
	_, err := txcontext.Pick(ctx, s.db).ExecContext(ctx, `
		INSERT INTO user_preferences (person_id, key, value, updated_at) VALUES ($1, $2, $3::jsonb, NOW())
		ON CONFLICT (person_id, key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		personID, key, string(value))
	if err != nil {
		return fmt.Errorf("set preference: %w", err)
	}
	return nil
}

func (s *PostgresStore) AllPreferences(ctx context.Context, personID id.PersonID) (map[string]json.RawMessage, error) {
	rows, err := txcontext.Pick(ctx, s.db).QueryContext(ctx,
		`SELECT key, value FROM user_preferences WHERE person_id = $1`, personID)
	if err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]json.RawMessage)
	for rows.Next() {
		var key string
		var value []byte
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("list preferences: %w", err)
		}
		out[key] = json.RawMessage(value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list preferences: %w", err)
	}
	return out, nil
}

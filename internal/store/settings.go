package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/dukerupert/homestock/internal/model"
)

const (
	KeyDarkMode                 = "dark_mode"
	KeySecurityEnabled          = "security_enabled"
	KeyInventoryReminderEnabled = "inventory_reminder_enabled"
	KeySecondReminderEnabled    = "second_reminder_enabled"
	KeyReminderTime1            = "reminder_time_1"
	KeyReminderTime2            = "reminder_time_2"
	KeyShoppingState            = "shopping_state"
	KeyMiscItemHistory          = "misc_item_history"
)

// preferenceKeys are the user-editable keys. The shopping keys are owned by
// the shopping engine and written through SetShoppingState/SetMiscHistory.
var preferenceKeys = []string{
	KeyDarkMode,
	KeySecurityEnabled,
	KeyInventoryReminderEnabled,
	KeySecondReminderEnabled,
	KeyReminderTime1,
	KeyReminderTime2,
}

type SettingsStore struct {
	db DBTX
}

func NewSettingsStore(db DBTX) *SettingsStore {
	return &SettingsStore{db: db}
}

// Get returns ("", nil) when key has never been written.
func (s *SettingsStore) Get(key string) (string, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return value, nil
}

func (s *SettingsStore) GetAll() (map[string]string, error) {
	rows, err := s.db.Query(`SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("get all settings: %w", err)
	}
	defer rows.Close()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("scan setting: %w", err)
		}
		settings[key] = value
	}
	return settings, rows.Err()
}

func (s *SettingsStore) Set(key, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO settings (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, toMillis(time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

// GetAppSettings assembles the typed record. Missing or malformed values fall
// back to model.DefaultAppSettings.
func (s *SettingsStore) GetAppSettings() (model.AppSettings, error) {
	out := model.DefaultAppSettings()
	all, err := s.GetAll()
	if err != nil {
		return out, err
	}

	parseBool := func(key string, dst *bool) {
		if v, ok := all[key]; ok {
			if b, err := strconv.ParseBool(v); err == nil {
				*dst = b
			}
		}
	}
	parseBool(KeyDarkMode, &out.IsDarkMode)
	parseBool(KeySecurityEnabled, &out.IsSecurityEnabled)
	parseBool(KeyInventoryReminderEnabled, &out.IsInventoryReminderEnabled)
	parseBool(KeySecondReminderEnabled, &out.IsSecondReminderEnabled)

	if v := all[KeyReminderTime1]; v != "" {
		out.ReminderTime1 = v
	}
	if v := all[KeyReminderTime2]; v != "" {
		out.ReminderTime2 = v
	}
	if st, err := model.ParseShoppingState(all[KeyShoppingState]); err == nil {
		out.ShoppingState = st
	}
	if v := all[KeyMiscItemHistory]; v != "" {
		var history []string
		if err := json.Unmarshal([]byte(v), &history); err == nil && history != nil {
			out.MiscItemHistory = history
		}
	}
	return out, nil
}

// SavePreferences writes the user-editable fields of a. Shopping state and
// misc history are left untouched.
func (s *SettingsStore) SavePreferences(a model.AppSettings) error {
	values := map[string]string{
		KeyDarkMode:                 strconv.FormatBool(a.IsDarkMode),
		KeySecurityEnabled:          strconv.FormatBool(a.IsSecurityEnabled),
		KeyInventoryReminderEnabled: strconv.FormatBool(a.IsInventoryReminderEnabled),
		KeySecondReminderEnabled:    strconv.FormatBool(a.IsSecondReminderEnabled),
		KeyReminderTime1:            a.ReminderTime1,
		KeyReminderTime2:            a.ReminderTime2,
	}
	for _, key := range preferenceKeys {
		if err := s.Set(key, values[key]); err != nil {
			return err
		}
	}
	return nil
}

func (s *SettingsStore) SetShoppingState(state model.ShoppingState) error {
	return s.Set(KeyShoppingState, string(state))
}

func (s *SettingsStore) SetMiscHistory(history []string) error {
	if history == nil {
		history = []string{}
	}
	data, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encode misc history: %w", err)
	}
	return s.Set(KeyMiscItemHistory, string(data))
}

// Reset restores every key to its default value.
func (s *SettingsStore) Reset() error {
	def := model.DefaultAppSettings()
	if err := s.SavePreferences(def); err != nil {
		return err
	}
	if err := s.SetShoppingState(def.ShoppingState); err != nil {
		return err
	}
	return s.SetMiscHistory(def.MiscItemHistory)
}

package model

import (
	"slices"
	"time"
)

const (
	MiscHistoryLimit     = 20
	MiscSuggestionsLimit = 10
)

type Setting struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

type AppSettings struct {
	IsDarkMode                 bool          `json:"is_dark_mode"`
	IsSecurityEnabled          bool          `json:"is_security_enabled"`
	IsInventoryReminderEnabled bool          `json:"is_inventory_reminder_enabled"`
	IsSecondReminderEnabled    bool          `json:"is_second_reminder_enabled"`
	ReminderTime1              string        `json:"reminder_time_1"`
	ReminderTime2              string        `json:"reminder_time_2"`
	ShoppingState              ShoppingState `json:"shopping_state"`
	MiscItemHistory            []string      `json:"misc_item_history"`
}

func DefaultAppSettings() AppSettings {
	return AppSettings{
		ReminderTime1:   "09:00",
		ReminderTime2:   "18:00",
		ShoppingState:   ShoppingEmpty,
		MiscItemHistory: []string{},
	}
}

// AddMiscHistory returns history with item moved to (or appended at) the most
// recent position, keeping at most MiscHistoryLimit distinct entries.
func AddMiscHistory(history []string, item string) []string {
	out := make([]string, 0, len(history)+1)
	for _, h := range history {
		if h != item && !slices.Contains(out, h) {
			out = append(out, h)
		}
	}
	out = append(out, item)
	if len(out) > MiscHistoryLimit {
		out = out[len(out)-MiscHistoryLimit:]
	}
	return out
}

// MiscSuggestions returns up to MiscSuggestionsLimit entries, most recent first.
func MiscSuggestions(history []string) []string {
	out := make([]string, 0, MiscSuggestionsLimit)
	for i := len(history) - 1; i >= 0 && len(out) < MiscSuggestionsLimit; i-- {
		if !slices.Contains(out, history[i]) {
			out = append(out, history[i])
		}
	}
	return out
}

package store

import (
	"testing"

	"github.com/dukerupert/homestock/internal/model"
)

func TestSettingsSeedData(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	got, err := ss.GetAppSettings()
	if err != nil {
		t.Fatalf("get app settings: %v", err)
	}
	want := model.DefaultAppSettings()
	if got.ReminderTime1 != want.ReminderTime1 || got.ReminderTime2 != want.ReminderTime2 {
		t.Errorf("reminder times = %q/%q, want %q/%q", got.ReminderTime1, got.ReminderTime2, want.ReminderTime1, want.ReminderTime2)
	}
	if got.ShoppingState != model.ShoppingEmpty {
		t.Errorf("shopping state = %q, want EMPTY", got.ShoppingState)
	}
	if got.IsDarkMode {
		t.Error("expected dark mode off")
	}
	if got.MiscItemHistory == nil || len(got.MiscItemHistory) != 0 {
		t.Errorf("misc history = %v, want empty", got.MiscItemHistory)
	}
}

func TestSettingsSetAndGet(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	if err := ss.Set("custom", "value"); err != nil {
		t.Fatalf("set: %v", err)
	}
	val, err := ss.Get("custom")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if val != "value" {
		t.Errorf("custom = %q, want %q", val, "value")
	}

	val, err = ss.Get("never_written")
	if err != nil {
		t.Fatalf("get missing: %v", err)
	}
	if val != "" {
		t.Errorf("missing = %q, want empty", val)
	}
}

func TestSettingsSavePreferencesLeavesShoppingKeys(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	if err := ss.SetShoppingState(model.ShoppingListReady); err != nil {
		t.Fatalf("set shopping state: %v", err)
	}
	if err := ss.SetMiscHistory([]string{"Batteries", "Candles"}); err != nil {
		t.Fatalf("set misc history: %v", err)
	}

	prefs := model.DefaultAppSettings()
	prefs.IsDarkMode = true
	prefs.IsSecondReminderEnabled = true
	prefs.ReminderTime2 = "20:15"
	if err := ss.SavePreferences(prefs); err != nil {
		t.Fatalf("save preferences: %v", err)
	}

	got, _ := ss.GetAppSettings()
	if !got.IsDarkMode {
		t.Error("expected dark mode on")
	}
	if got.ReminderTime2 != "20:15" {
		t.Errorf("reminder_time_2 = %q, want 20:15", got.ReminderTime2)
	}
	if got.ShoppingState != model.ShoppingListReady {
		t.Errorf("shopping state = %q, want LIST_READY", got.ShoppingState)
	}
	if len(got.MiscItemHistory) != 2 || got.MiscItemHistory[1] != "Candles" {
		t.Errorf("misc history = %v, want [Batteries Candles]", got.MiscItemHistory)
	}
}

func TestSettingsReset(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	ss.SetShoppingState(model.ShoppingActive)
	ss.SetMiscHistory([]string{"Tape"})
	ss.Set(KeyDarkMode, "true")

	if err := ss.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	got, _ := ss.GetAppSettings()
	if got.ShoppingState != model.ShoppingEmpty || got.IsDarkMode || len(got.MiscItemHistory) != 0 {
		t.Errorf("after reset = %+v, want defaults", got)
	}
}

func TestSettingsMalformedValuesFallBack(t *testing.T) {
	ss := NewSettingsStore(setupTestDB(t))

	ss.Set(KeyDarkMode, "maybe")
	ss.Set(KeyShoppingState, "BROKEN")
	ss.Set(KeyMiscItemHistory, "{not json")

	got, err := ss.GetAppSettings()
	if err != nil {
		t.Fatalf("get app settings: %v", err)
	}
	if got.IsDarkMode {
		t.Error("expected dark mode default")
	}
	if got.ShoppingState != model.ShoppingEmpty {
		t.Errorf("shopping state = %q, want EMPTY", got.ShoppingState)
	}
	if len(got.MiscItemHistory) != 0 {
		t.Errorf("misc history = %v, want empty", got.MiscItemHistory)
	}
}

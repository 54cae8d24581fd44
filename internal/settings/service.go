package settings

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"sync"

	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/store"
)

var ErrInvalidTime = errors.New("reminder time must be HH:MM")

var timeFormatRegexp = regexp.MustCompile(`^([01]\d|2[0-3]):[0-5]\d$`)

func ValidTime(v string) bool { return timeFormatRegexp.MatchString(v) }

// Service edits the user preferences. The shopping keys belong to the
// shopping engine and are only read here.
type Service struct {
	mu     sync.Mutex
	db     *sql.DB
	pub    events.Publisher
	logger *slog.Logger
}

func NewService(db *sql.DB, pub events.Publisher, logger *slog.Logger) *Service {
	return &Service{db: db, pub: pub, logger: logger}
}

func (s *Service) Get() (model.AppSettings, error) {
	return store.NewSettingsStore(s.db).GetAppSettings()
}

func (s *Service) publish(action string, data any) {
	ev := events.NewEvent(events.EntitySettings, action, "")
	ev.Data = data
	s.pub.Publish(ev)
}

// Save validates and writes the preference fields of a.
func (s *Service) Save(a model.AppSettings) (model.AppSettings, error) {
	if !ValidTime(a.ReminderTime1) || !ValidTime(a.ReminderTime2) {
		return model.AppSettings{}, ErrInvalidTime
	}

	saved, err := s.save(a)
	if err != nil {
		return model.AppSettings{}, err
	}
	s.publish("updated", saved)
	return saved, nil
}

func (s *Service) save(a model.AppSettings) (model.AppSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		return store.NewSettingsStore(tx).SavePreferences(a)
	})
	if err != nil {
		return model.AppSettings{}, fmt.Errorf("save settings: %w", err)
	}
	return s.Get()
}

// ToggleDarkMode announces the flipped value before it is stored. If the write
// fails, the previous value is announced again and the error returned.
// Events go out with the lock released. Concurrent toggles are last writer wins.
func (s *Service) ToggleDarkMode() (bool, error) {
	s.mu.Lock()
	current, err := store.NewSettingsStore(s.db).GetAppSettings()
	s.mu.Unlock()
	if err != nil {
		return false, err
	}
	next := !current.IsDarkMode

	s.publish("dark_mode", next)

	s.mu.Lock()
	err = store.NewSettingsStore(s.db).Set(store.KeyDarkMode, strconv.FormatBool(next))
	s.mu.Unlock()
	if err != nil {
		s.logger.Error("dark mode not saved, reverting", "error", err)
		s.publish("dark_mode", current.IsDarkMode)
		return current.IsDarkMode, fmt.Errorf("toggle dark mode: %w", err)
	}
	return next, nil
}

func (s *Service) setBool(key, action string, v bool) error {
	s.mu.Lock()
	err := store.NewSettingsStore(s.db).Set(key, strconv.FormatBool(v))
	s.mu.Unlock()
	if err != nil {
		return err
	}
	s.publish(action, v)
	return nil
}

func (s *Service) SetSecurity(enabled bool) error {
	return s.setBool(store.KeySecurityEnabled, "security", enabled)
}

func (s *Service) SetInventoryReminder(enabled bool) error {
	return s.setBool(store.KeyInventoryReminderEnabled, "inventory_reminder", enabled)
}

// SetReminderTimes stores the first reminder time and, when t2 is non-nil, the
// second one. The second reminder is enabled exactly when t2 is given.
func (s *Service) SetReminderTimes(t1 string, t2 *string) error {
	if !ValidTime(t1) || (t2 != nil && !ValidTime(*t2)) {
		return ErrInvalidTime
	}

	s.mu.Lock()
	err := store.WithTx(s.db, func(tx *sql.Tx) error {
		ss := store.NewSettingsStore(tx)
		if err := ss.Set(store.KeyReminderTime1, t1); err != nil {
			return err
		}
		if t2 != nil {
			if err := ss.Set(store.KeyReminderTime2, *t2); err != nil {
				return err
			}
		}
		return ss.Set(store.KeySecondReminderEnabled, strconv.FormatBool(t2 != nil))
	})
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("set reminder times: %w", err)
	}
	s.publish("reminder_times", nil)
	return nil
}

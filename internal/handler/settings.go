package handler

import (
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/settings"
	"github.com/go-playground/validator/v10"
)

type SettingsHandler struct {
	svc      *settings.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewSettingsHandler(svc *settings.Service, v *validator.Validate, logger *slog.Logger) *SettingsHandler {
	return &SettingsHandler{svc: svc, validate: v, logger: logger}
}

type preferencesRequest struct {
	IsDarkMode                 bool   `json:"is_dark_mode"`
	IsSecurityEnabled          bool   `json:"is_security_enabled"`
	IsInventoryReminderEnabled bool   `json:"is_inventory_reminder_enabled"`
	IsSecondReminderEnabled    bool   `json:"is_second_reminder_enabled"`
	ReminderTime1              string `json:"reminder_time_1" validate:"required,hhmm"`
	ReminderTime2              string `json:"reminder_time_2" validate:"required,hhmm"`
}

type toggleRequest struct {
	Enabled bool `json:"enabled"`
}

type reminderTimesRequest struct {
	Time1 string  `json:"time_1" validate:"required,hhmm"`
	Time2 *string `json:"time_2" validate:"omitnil,hhmm"`
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, err := h.svc.Get()
	if err != nil {
		serverError(w, h.logger, "failed to get settings", err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

func (h *SettingsHandler) Save(w http.ResponseWriter, r *http.Request) {
	var req preferencesRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	saved, err := h.svc.Save(model.AppSettings{
		IsDarkMode:                 req.IsDarkMode,
		IsSecurityEnabled:          req.IsSecurityEnabled,
		IsInventoryReminderEnabled: req.IsInventoryReminderEnabled,
		IsSecondReminderEnabled:    req.IsSecondReminderEnabled,
		ReminderTime1:              req.ReminderTime1,
		ReminderTime2:              req.ReminderTime2,
	})
	if err != nil {
		serverError(w, h.logger, "failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (h *SettingsHandler) ToggleDarkMode(w http.ResponseWriter, r *http.Request) {
	on, err := h.svc.ToggleDarkMode()
	if err != nil {
		serverError(w, h.logger, "failed to toggle dark mode", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"is_dark_mode": on})
}

func (h *SettingsHandler) SetSecurity(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	if err := h.svc.SetSecurity(req.Enabled); err != nil {
		serverError(w, h.logger, "failed to save security setting", err)
		return
	}
	h.Get(w, r)
}

func (h *SettingsHandler) SetInventoryReminder(w http.ResponseWriter, r *http.Request) {
	var req toggleRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	if err := h.svc.SetInventoryReminder(req.Enabled); err != nil {
		serverError(w, h.logger, "failed to save reminder setting", err)
		return
	}
	h.Get(w, r)
}

func (h *SettingsHandler) SetReminderTimes(w http.ResponseWriter, r *http.Request) {
	var req reminderTimesRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	if err := h.svc.SetReminderTimes(req.Time1, req.Time2); err != nil {
		serverError(w, h.logger, "failed to save reminder times", err)
		return
	}
	h.Get(w, r)
}

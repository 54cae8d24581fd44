package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dukerupert/homestock/internal/model"
	"github.com/dukerupert/homestock/internal/settings"
	"github.com/go-playground/validator/v10"
)

// NewValidator returns a validator that also knows the domain tags
// "hhmm" and "subcategory".
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return settings.ValidTime(fl.Field().String())
	})
	v.RegisterValidation("subcategory", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		if s == "" {
			return true
		}
		_, err := model.ParseSubcategory(s)
		return err == nil
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// decode reads a JSON body into dst and validates it. It writes a 400 and
// returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validator.Validate, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return false
	}
	if err := v.Struct(dst); err != nil {
		writeError(w, http.StatusBadRequest, validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", strings.ToLower(fe.Field())))
		case "hhmm":
			msgs = append(msgs, fmt.Sprintf("%s must be HH:MM", strings.ToLower(fe.Field())))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid", strings.ToLower(fe.Field())))
		}
	}
	return strings.Join(msgs, "; ")
}

// serverError logs err and answers 500 with msg.
func serverError(w http.ResponseWriter, logger *slog.Logger, msg string, err error) {
	logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

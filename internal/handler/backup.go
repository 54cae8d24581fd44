package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dukerupert/homestock/internal/backup"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/go-playground/validator/v10"
)

type BackupHandler struct {
	mgr      *backup.Manager
	validate *validator.Validate
	logger   *slog.Logger
}

func NewBackupHandler(mgr *backup.Manager, v *validator.Validate, logger *slog.Logger) *BackupHandler {
	return &BackupHandler{mgr: mgr, validate: v, logger: logger}
}

type runBackupRequest struct {
	Passphrase string `json:"passphrase" validate:"required,min=8"`
}

type restoreRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

func (h *BackupHandler) Status(w http.ResponseWriter, r *http.Request) {
	o, err := h.mgr.Overview()
	if err != nil {
		serverError(w, h.logger, "failed to load backup status", err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *BackupHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.mgr.List(50)
	if err != nil {
		serverError(w, h.logger, "failed to list backups", err)
		return
	}
	if list == nil {
		list = []model.Backup{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BackupHandler) Run(w http.ResponseWriter, r *http.Request) {
	var req runBackupRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	b, err := h.mgr.RunNow(r.Context(), req.Passphrase)
	switch {
	case errors.Is(err, backup.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, backup.ErrInProgress):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		serverError(w, h.logger, "backup failed", err)
	default:
		writeJSON(w, http.StatusCreated, b)
	}
}

// Restore decrypts a completed backup into the restore directory. The running
// database is left alone.
func (h *BackupHandler) Restore(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid backup id")
		return
	}
	var req restoreRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	path, err := h.mgr.Restore(r.Context(), id, req.Passphrase)
	switch {
	case errors.Is(err, backup.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, backup.ErrRestoreDirRequired), errors.Is(err, backup.ErrNotConfigured):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, backup.ErrDecrypt), errors.Is(err, backup.ErrCiphertextTooShort):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	case err != nil:
		serverError(w, h.logger, "restore failed", err)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"path": path})
	}
}

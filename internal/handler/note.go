package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/notes"
	"github.com/go-playground/validator/v10"
)

type NoteHandler struct {
	svc      *notes.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewNoteHandler(svc *notes.Service, v *validator.Validate, logger *slog.Logger) *NoteHandler {
	return &NoteHandler{svc: svc, validate: v, logger: logger}
}

type noteRequest struct {
	Title   string `json:"title" validate:"max=200"`
	Content string `json:"content"`
}

func (h *NoteHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, notes.ErrNotFound):
		writeError(w, http.StatusNotFound, "note not found")
	case errors.Is(err, notes.ErrNoteLimit):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, notes.ErrEmptyNote):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		serverError(w, h.logger, msg, err)
	}
}

func (h *NoteHandler) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List()
	if err != nil {
		serverError(w, h.logger, "failed to list notes", err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *NoteHandler) Get(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, "failed to get note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) CanAdd(w http.ResponseWriter, r *http.Request) {
	ok, err := h.svc.CanAddNote()
	if err != nil {
		serverError(w, h.logger, "failed to count notes", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"can_add": ok})
}

func (h *NoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.Create(req.Title, req.Content)
	if err != nil {
		h.fail(w, "failed to create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, n)
}

func (h *NoteHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req noteRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	n, err := h.svc.Update(r.PathValue("id"), req.Title, req.Content)
	if err != nil {
		h.fail(w, "failed to update note", err)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

func (h *NoteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.PathValue("id")); err != nil {
		h.fail(w, "failed to delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

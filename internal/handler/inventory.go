package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/inventory"
	"github.com/dukerupert/homestock/internal/model"
	"github.com/go-playground/validator/v10"
)

type InventoryHandler struct {
	svc      *inventory.Service
	validate *validator.Validate
	logger   *slog.Logger
}

func NewInventoryHandler(svc *inventory.Service, v *validator.Validate, logger *slog.Logger) *InventoryHandler {
	return &InventoryHandler{svc: svc, validate: v, logger: logger}
}

type createItemRequest struct {
	Name        string `json:"name" validate:"required"`
	Subcategory string `json:"subcategory" validate:"subcategory"`
}

type quantityRequest struct {
	Quantity *float64 `json:"quantity" validate:"required"`
}

type renameRequest struct {
	Name string `json:"name" validate:"required"`
}

func (h *InventoryHandler) fail(w http.ResponseWriter, msg string, err error) {
	switch {
	case errors.Is(err, inventory.ErrNotFound):
		writeError(w, http.StatusNotFound, "item not found")
	case errors.Is(err, model.ErrBlankName), errors.Is(err, inventory.ErrInvalidSubcategory):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		serverError(w, h.logger, msg, err)
	}
}

// List filters by ?category=, ?subcategory= or ?low=true.
func (h *InventoryHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var items []model.InventoryItem
	var err error

	switch {
	case q.Get("subcategory") != "":
		sub, perr := model.ParseSubcategory(q.Get("subcategory"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		items, err = h.svc.ListBySubcategory(sub)
	case q.Get("category") != "":
		cat, perr := model.ParseCategory(q.Get("category"))
		if perr != nil {
			writeError(w, http.StatusBadRequest, perr.Error())
			return
		}
		items, err = h.svc.ListByCategory(cat)
	case q.Get("low") == "true":
		items, err = h.svc.ListLowStock()
	default:
		items, err = h.svc.List()
	}
	if err != nil {
		serverError(w, h.logger, "failed to list items", err)
		return
	}
	if items == nil {
		items = []model.InventoryItem{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *InventoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Get(r.PathValue("id"))
	if err != nil {
		h.fail(w, "failed to get item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createItemRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	var sub model.Subcategory
	if req.Subcategory != "" {
		sub, _ = model.ParseSubcategory(req.Subcategory)
	}
	item, err := h.svc.AddCustomItem(req.Name, sub)
	if err != nil {
		h.fail(w, "failed to create item", err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *InventoryHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req quantityRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	item, err := h.svc.UpdateQuantity(r.PathValue("id"), *req.Quantity)
	if err != nil {
		h.fail(w, "failed to update quantity", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req renameRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	item, err := h.svc.Rename(r.PathValue("id"), req.Name)
	if err != nil {
		h.fail(w, "failed to rename item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Restock(w http.ResponseWriter, r *http.Request) {
	item, err := h.svc.Restock(r.PathValue("id"))
	if err != nil {
		h.fail(w, "failed to restock item", err)
		return
	}
	writeJSON(w, http.StatusOK, item)
}

func (h *InventoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.PathValue("id")); err != nil {
		h.fail(w, "failed to delete item", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.SeedDefaults()
	if err != nil {
		serverError(w, h.logger, "failed to seed inventory", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"seeded": n})
}

func (h *InventoryHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ClearAllData(); err != nil {
		serverError(w, h.logger, "failed to clear data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *InventoryHandler) ResetDefaults(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.ResetToDefaults(); err != nil {
		serverError(w, h.logger, "failed to reset data", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Taxonomy lists every category with its subcategories.
func (h *InventoryHandler) Taxonomy(w http.ResponseWriter, r *http.Request) {
	type subJSON struct {
		ID          model.Subcategory `json:"id"`
		DisplayName string            `json:"display_name"`
		IconKey     string            `json:"icon_key"`
	}
	type catJSON struct {
		ID            model.Category `json:"id"`
		DisplayName   string         `json:"display_name"`
		IconKey       string         `json:"icon_key"`
		Subcategories []subJSON      `json:"subcategories"`
	}

	out := make([]catJSON, 0, len(model.Categories))
	for _, c := range model.Categories {
		cj := catJSON{ID: c, DisplayName: c.DisplayName(), IconKey: c.IconKey()}
		for _, s := range c.Subcategories() {
			cj.Subcategories = append(cj.Subcategories, subJSON{ID: s, DisplayName: s.DisplayName(), IconKey: s.IconKey()})
		}
		out = append(out, cj)
	}
	writeJSON(w, http.StatusOK, out)
}

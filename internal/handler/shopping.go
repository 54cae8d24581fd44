package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dukerupert/homestock/internal/shopping"
	"github.com/go-playground/validator/v10"
)

type ShoppingHandler struct {
	engine   *shopping.Engine
	validate *validator.Validate
	logger   *slog.Logger
}

func NewShoppingHandler(e *shopping.Engine, v *validator.Validate, logger *slog.Logger) *ShoppingHandler {
	return &ShoppingHandler{engine: e, validate: v, logger: logger}
}

type miscItemRequest struct {
	Name string `json:"name" validate:"required"`
}

type inventoryItemRequest struct {
	ItemID string `json:"item_id" validate:"required"`
}

type transitionResponse struct {
	Changed bool   `json:"changed"`
	Reason  string `json:"reason,omitempty"`
	shopping.Snapshot
}

// respond answers with whether the call changed anything plus the new snapshot.
// An ignored operation carries the transition error as its reason.
func (h *ShoppingHandler) respond(w http.ResponseWriter, op shopping.Op, changed bool, err error) {
	if errors.Is(err, shopping.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		serverError(w, h.logger, "shopping operation failed", err)
		return
	}
	snap, err := h.engine.Snapshot()
	if err != nil {
		serverError(w, h.logger, "failed to read shopping list", err)
		return
	}
	resp := transitionResponse{Changed: changed, Snapshot: snap}
	if !changed {
		if cerr := h.engine.Check(op); cerr != nil {
			resp.Reason = cerr.Error()
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *ShoppingHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.engine.Snapshot()
	if err != nil {
		serverError(w, h.logger, "failed to read shopping list", err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (h *ShoppingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.Generate()
	h.respond(w, shopping.OpGenerate, changed, err)
}

func (h *ShoppingHandler) AddMiscItem(w http.ResponseWriter, r *http.Request) {
	var req miscItemRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	changed, err := h.engine.AddMiscItem(req.Name)
	h.respond(w, shopping.OpAddMiscItem, changed, err)
}

func (h *ShoppingHandler) AddInventoryItem(w http.ResponseWriter, r *http.Request) {
	var req inventoryItemRequest
	if !decode(w, r, h.validate, &req) {
		return
	}
	changed, err := h.engine.AddInventoryItem(req.ItemID)
	h.respond(w, shopping.OpAddInventoryItem, changed, err)
}

func (h *ShoppingHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.RemoveItem(r.PathValue("id"))
	h.respond(w, shopping.OpRemoveItem, changed, err)
}

func (h *ShoppingHandler) ToggleChecked(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.ToggleChecked(r.PathValue("id"))
	h.respond(w, shopping.OpToggleChecked, changed, err)
}

func (h *ShoppingHandler) Finalize(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.Finalize()
	h.respond(w, shopping.OpFinalize, changed, err)
}

func (h *ShoppingHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.Cancel()
	h.respond(w, shopping.OpCancel, changed, err)
}

func (h *ShoppingHandler) StartShopping(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.StartShopping()
	h.respond(w, shopping.OpStartShopping, changed, err)
}

func (h *ShoppingHandler) Complete(w http.ResponseWriter, r *http.Request) {
	changed, err := h.engine.CompleteAndRestore()
	h.respond(w, shopping.OpComplete, changed, err)
}

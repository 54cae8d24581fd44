package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/dukerupert/homestock/internal/backup"
	"github.com/dukerupert/homestock/internal/events"
	"github.com/dukerupert/homestock/internal/handler"
	"github.com/dukerupert/homestock/internal/insights"
	"github.com/dukerupert/homestock/internal/inventory"
	"github.com/dukerupert/homestock/internal/middleware"
	"github.com/dukerupert/homestock/internal/notes"
	"github.com/dukerupert/homestock/internal/settings"
	"github.com/dukerupert/homestock/internal/shopping"
	"github.com/dukerupert/homestock/internal/store"
)

type Server struct {
	db            *sql.DB
	hub           *events.Hub
	inventory     *inventory.Service
	engine        *shopping.Engine
	backupManager *backup.Manager
	limiter       *middleware.Limiter

	inventoryH *handler.InventoryHandler
	shoppingH  *handler.ShoppingHandler
	insightsH  *handler.InsightsHandler
	noteH      *handler.NoteHandler
	settingsH  *handler.SettingsHandler
	backupH    *handler.BackupHandler

	logger *slog.Logger
}

// New wires the services over db. The shopping session is loaded from the
// settings table, so db must already be migrated.
func New(db *sql.DB, backupCfg backup.Config, logger *slog.Logger) (*Server, error) {
	hub := events.NewHub(logger.With("component", "events"))

	session, err := shopping.LoadSession(db)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	engine := shopping.NewEngine(db, session, hub, logger.With("component", "shopping"))
	inventorySvc := inventory.NewService(db, session, hub, logger.With("component", "inventory"))
	insightsSvc := insights.NewService(inventorySvc)
	notesSvc := notes.NewService(db, hub, logger.With("component", "notes"))
	settingsSvc := settings.NewService(db, hub, logger.With("component", "settings"))

	backupMgr := backup.NewManager(backupCfg, db, store.NewBackupStore(db), logger.With("component", "backup"), func(s backup.Status) {
		ev := events.NewEvent(events.EntityBackup, string(s.State), "")
		ev.Data = s
		hub.Publish(ev)
	})

	v := handler.NewValidator()
	httpLogger := logger.With("component", "http")

	return &Server{
		db:            db,
		hub:           hub,
		inventory:     inventorySvc,
		engine:        engine,
		backupManager: backupMgr,
		limiter:       middleware.NewLimiter(),
		inventoryH:    handler.NewInventoryHandler(inventorySvc, v, httpLogger),
		shoppingH:     handler.NewShoppingHandler(engine, v, httpLogger),
		insightsH:     handler.NewInsightsHandler(insightsSvc, httpLogger),
		noteH:         handler.NewNoteHandler(notesSvc, v, httpLogger),
		settingsH:     handler.NewSettingsHandler(settingsSvc, v, httpLogger),
		backupH:       handler.NewBackupHandler(backupMgr, v, httpLogger),
		logger:        logger,
	}, nil
}

// Hub returns the event hub for in-process subscribers.
func (s *Server) Hub() *events.Hub {
	return s.hub
}

// Inventory returns the inventory service, used for startup seeding.
func (s *Server) Inventory() *inventory.Service {
	return s.inventory
}

// BackupManager returns the backup manager.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// Limiter returns the request limiter for periodic pruning.
func (s *Server) Limiter() *middleware.Limiter {
	return s.limiter
}

func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /ws", events.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))

	// Inventory
	mux.HandleFunc("GET /api/taxonomy", s.inventoryH.Taxonomy)
	mux.HandleFunc("GET /api/inventory", s.inventoryH.List)
	mux.HandleFunc("POST /api/inventory", s.inventoryH.Create)
	mux.HandleFunc("GET /api/inventory/{id}", s.inventoryH.Get)
	mux.HandleFunc("PUT /api/inventory/{id}/quantity", s.inventoryH.UpdateQuantity)
	mux.HandleFunc("PUT /api/inventory/{id}/name", s.inventoryH.Rename)
	mux.HandleFunc("POST /api/inventory/{id}/restock", s.inventoryH.Restock)
	mux.HandleFunc("DELETE /api/inventory/{id}", s.inventoryH.Delete)
	mux.HandleFunc("POST /api/inventory/seed", s.inventoryH.Seed)
	mux.HandleFunc("POST /api/data/clear", s.inventoryH.ClearAll)
	mux.HandleFunc("POST /api/data/reset", s.inventoryH.ResetDefaults)

	// Shopping list
	mux.HandleFunc("GET /api/shopping", s.shoppingH.Get)
	mux.HandleFunc("POST /api/shopping/generate", s.shoppingH.Generate)
	mux.HandleFunc("POST /api/shopping/items/misc", s.shoppingH.AddMiscItem)
	mux.HandleFunc("POST /api/shopping/items/inventory", s.shoppingH.AddInventoryItem)
	mux.HandleFunc("DELETE /api/shopping/items/{id}", s.shoppingH.RemoveItem)
	mux.HandleFunc("POST /api/shopping/items/{id}/check", s.shoppingH.ToggleChecked)
	mux.HandleFunc("POST /api/shopping/finalize", s.shoppingH.Finalize)
	mux.HandleFunc("POST /api/shopping/cancel", s.shoppingH.Cancel)
	mux.HandleFunc("POST /api/shopping/start", s.shoppingH.StartShopping)
	mux.HandleFunc("POST /api/shopping/complete", s.shoppingH.Complete)

	// Insights
	mux.HandleFunc("GET /api/insights/recommendations", s.insightsH.Recommendations)
	mux.HandleFunc("GET /api/insights/stats", s.insightsH.Stats)
	mux.HandleFunc("GET /api/insights/attention", s.insightsH.Attention)

	// Notes
	mux.HandleFunc("GET /api/notes", s.noteH.List)
	mux.HandleFunc("POST /api/notes", s.noteH.Create)
	mux.HandleFunc("GET /api/notes/can-add", s.noteH.CanAdd)
	mux.HandleFunc("GET /api/notes/{id}", s.noteH.Get)
	mux.HandleFunc("PUT /api/notes/{id}", s.noteH.Update)
	mux.HandleFunc("DELETE /api/notes/{id}", s.noteH.Delete)

	// Settings
	mux.HandleFunc("GET /api/settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/settings", s.settingsH.Save)
	mux.HandleFunc("POST /api/settings/dark-mode", s.settingsH.ToggleDarkMode)
	mux.HandleFunc("PUT /api/settings/security", s.settingsH.SetSecurity)
	mux.HandleFunc("PUT /api/settings/inventory-reminder", s.settingsH.SetInventoryReminder)
	mux.HandleFunc("PUT /api/settings/reminder-times", s.settingsH.SetReminderTimes)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("GET /api/backups/status", s.backupH.Status)
	mux.Handle("POST /api/backups", middleware.Throttle(s.limiter, 3, time.Minute)(http.HandlerFunc(s.backupH.Run)))
	mux.Handle("POST /api/backups/{id}/restore", middleware.Throttle(s.limiter, 5, time.Minute)(http.HandlerFunc(s.backupH.Restore)))

	return middleware.RequestLogger(s.logger.With("component", "http"))(mux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK
	if err := s.db.PingContext(r.Context()); err != nil {
		status = "db unavailable"
		code = http.StatusServiceUnavailable
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]any{
		"status":         status,
		"shopping_state": s.engine.State(),
		"ws_clients":     s.hub.ClientCount(),
	})
}

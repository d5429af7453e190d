package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/calebquinn/packlist/internal/assistant"
	"github.com/calebquinn/packlist/internal/backup"
	"github.com/calebquinn/packlist/internal/config"
	"github.com/calebquinn/packlist/internal/handler"
	"github.com/calebquinn/packlist/internal/middleware"
	"github.com/calebquinn/packlist/internal/state"
	"github.com/calebquinn/packlist/internal/store"
	"github.com/calebquinn/packlist/internal/weather"
	ws "github.com/calebquinn/packlist/internal/websocket"
)

type Server struct {
	db            *sql.DB
	hub           *ws.Hub
	stateManager  *state.Manager
	itemH         *handler.ItemHandler
	checklistH    *handler.ChecklistHandler
	tripH         *handler.TripHandler
	assistantH    *handler.AssistantHandler
	settingsH     *handler.SettingsHandler
	authH         *handler.AuthHandler
	backupH       *handler.BackupHandler
	sessionStore  *store.SessionStore
	userStore     *store.UserStore
	rateLimiter   *middleware.RateLimiter
	backupManager *backup.Manager
	jwtSecret     string
	logger        *slog.Logger
}

func New(cfg *config.Config, db *sql.DB, weatherSvc *weather.Service, assistantSvc *assistant.Service, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	itemStore := store.NewItemStore(db)
	checklistStore := store.NewChecklistStore(db)
	tripStore := store.NewTripStore(db)
	settingsStore := store.NewUserSettingsStore(db)
	consentStore := store.NewConsentStore(db)
	usageStore := store.NewAIUsageStore(db)

	userStore := store.NewUserStore(db)
	sessionStore := store.NewSessionStore(db)

	appStateStore := store.NewAppStateStore(db)
	stateManager := state.NewManager(appStateStore, logger.With("component", "state"))

	backupStore := store.NewBackupStore(db)
	backupMgr := backup.NewManager(backup.Config{
		Endpoint:      cfg.Backup.Endpoint,
		Bucket:        cfg.Backup.Bucket,
		Region:        cfg.Backup.Region,
		AccessKey:     cfg.Backup.AccessKey,
		SecretKey:     cfg.Backup.SecretKey,
		Passphrase:    cfg.Backup.Passphrase,
		ScheduleHour:  cfg.Backup.ScheduleHour,
		RetentionDays: cfg.Backup.RetentionDays,
		DBPath:        cfg.DBPath,
	}, db, backupStore, logger.With("component", "backup"), func(s backup.Status) {
		hub.Broadcast(ws.Message{
			Type:   "backup_status",
			Entity: "backup",
			Action: string(s.State),
			Extra: map[string]any{
				"in_progress": s.InProgress,
				"error":       s.Error,
			},
		})
	})

	return &Server{
		db:           db,
		hub:          hub,
		stateManager: stateManager,
		itemH:        handler.NewItemHandler(itemStore, stateManager, hub, logger.With("component", "item")),
		checklistH:   handler.NewChecklistHandler(checklistStore, itemStore, stateManager, hub, logger.With("component", "checklist")),
		tripH:        handler.NewTripHandler(tripStore, checklistStore, weatherSvc, stateManager, hub, logger.With("component", "trip")),
		assistantH: handler.NewAssistantHandler(
			assistantSvc, weatherSvc, tripStore, checklistStore, itemStore,
			consentStore, usageStore, cfg.AIMonthlyCap,
			stateManager, hub, logger.With("component", "assistant"),
		),
		settingsH:     handler.NewSettingsHandler(settingsStore, consentStore, stateManager, hub, logger.With("component", "settings")),
		authH:         handler.NewAuthHandler(userStore, sessionStore, stateManager, cfg.SessionTTL, cfg.CookieSecure, logger.With("component", "auth")),
		backupH:       handler.NewBackupHandler(backupMgr, backupStore, logger.With("component", "backup_handler")),
		sessionStore:  sessionStore,
		userStore:     userStore,
		rateLimiter:   middleware.NewRateLimiter(),
		backupManager: backupMgr,
		jwtSecret:     cfg.JWTSecret,
		logger:        logger,
	}
}

// SessionStore returns the session store for cleanup tasks.
func (s *Server) SessionStore() *store.SessionStore {
	return s.sessionStore
}

// RateLimiter returns the rate limiter for cleanup tasks.
func (s *Server) RateLimiter() *middleware.RateLimiter {
	return s.rateLimiter
}

// BackupManager returns the backup manager for lifecycle control.
func (s *Server) BackupManager() *backup.Manager {
	return s.backupManager
}

// StateManager returns the per-user state manager for shutdown flushing.
func (s *Server) StateManager() *state.Manager {
	return s.stateManager
}

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /api/auth/signup", s.rateLimitedHandler(s.authH.Signup))
	outerMux.HandleFunc("POST /api/auth/signin", s.rateLimitedHandler(s.authH.Signin))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore, s.jwtSecret)
	outerMux.Handle("/", authMiddleware(protectedMux))

	return middleware.RequestLogger(s.logger.With("component", "http"))(outerMux)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) rateLimitedHandler(h http.HandlerFunc) http.HandlerFunc {
	keyFunc := func(r *http.Request) string {
		return middleware.RealIP(r)
	}
	rl := middleware.RateLimit(s.rateLimiter, keyFunc, 10, time.Minute)
	return func(w http.ResponseWriter, r *http.Request) {
		rl(http.HandlerFunc(h)).ServeHTTP(w, r)
	}
}

func (s *Server) registerProtectedRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/auth/signout", s.authH.Signout)
	mux.HandleFunc("GET /api/auth/session", s.authH.Session)

	// Inventory
	mux.HandleFunc("GET /api/items", s.itemH.List)
	mux.HandleFunc("POST /api/items", s.itemH.Create)
	mux.HandleFunc("POST /api/items/bulk", s.itemH.CreateBulk)
	mux.HandleFunc("PUT /api/items/{id}", s.itemH.Update)
	mux.HandleFunc("DELETE /api/items/{id}", s.itemH.Delete)

	// Checklists
	mux.HandleFunc("GET /api/checklists", s.checklistH.List)
	mux.HandleFunc("POST /api/checklists", s.checklistH.Create)
	mux.HandleFunc("GET /api/checklists/{id}", s.checklistH.Get)
	mux.HandleFunc("PUT /api/checklists/{id}", s.checklistH.Update)
	mux.HandleFunc("DELETE /api/checklists/{id}", s.checklistH.Delete)
	mux.HandleFunc("POST /api/checklists/{id}/items", s.checklistH.AddItems)
	mux.HandleFunc("PUT /api/checklists/{id}/items/{itemId}", s.checklistH.ToggleItem)
	mux.HandleFunc("DELETE /api/checklists/{id}/items/{itemId}", s.checklistH.RemoveItem)
	mux.HandleFunc("POST /api/checklists/{id}/bulk-remove", s.checklistH.BulkRemove)

	// Trips
	mux.HandleFunc("GET /api/trips", s.tripH.List)
	mux.HandleFunc("POST /api/trips", s.tripH.Create)
	mux.HandleFunc("GET /api/trips/trip-categories", s.tripH.ListCategories)
	mux.HandleFunc("GET /api/trips/{id}", s.tripH.Get)
	mux.HandleFunc("PUT /api/trips/{id}", s.tripH.Update)
	mux.HandleFunc("DELETE /api/trips/{id}", s.tripH.Delete)
	mux.HandleFunc("POST /api/trips/{id}/checklists", s.tripH.LinkChecklist)
	mux.HandleFunc("DELETE /api/trips/{id}/checklists", s.tripH.UnlinkChecklist)
	mux.HandleFunc("GET /api/trips/{id}/weather", s.tripH.Weather)
	mux.HandleFunc("POST /api/trips/{id}/participants", s.tripH.AddParticipant)
	mux.HandleFunc("DELETE /api/trips/{id}/participants/{participantId}", s.tripH.RemoveParticipant)

	// Assistant
	mux.HandleFunc("POST /api/assistant/recommendations", s.assistantH.Recommend)
	mux.HandleFunc("GET /api/ai-usage", s.assistantH.Usage)

	// Settings + consent
	mux.HandleFunc("GET /api/user-settings", s.settingsH.Get)
	mux.HandleFunc("PUT /api/user-settings", s.settingsH.Update)
	mux.HandleFunc("GET /api/consent", s.settingsH.GetConsent)
	mux.HandleFunc("PUT /api/consent", s.settingsH.UpdateConsent)

	// Backups
	mux.HandleFunc("GET /api/backups", s.backupH.List)
	mux.HandleFunc("POST /api/backups/run", s.backupH.Run)
	mux.HandleFunc("GET /api/backups/{id}/download", s.backupH.Download)
	mux.HandleFunc("POST /api/backups/{id}/restore", s.backupH.Restore)

	// Websocket sync feed
	mux.HandleFunc("GET /ws", ws.HandleWebSocket(s.hub, s.logger.With("component", "websocket")))
}

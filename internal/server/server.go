package server

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/hcardin/mesada/internal/config"
	"github.com/hcardin/mesada/internal/email"
	"github.com/hcardin/mesada/internal/handler"
	"github.com/hcardin/mesada/internal/ledger"
	"github.com/hcardin/mesada/internal/middleware"
	"github.com/hcardin/mesada/internal/policy"
	"github.com/hcardin/mesada/internal/storage"
	"github.com/hcardin/mesada/internal/store"
	ws "github.com/hcardin/mesada/internal/websocket"
)

type Server struct {
	db           *sql.DB
	hub          *ws.Hub
	authH        *handler.AuthHandler
	userH        *handler.UserHandler
	taskH        *handler.TaskHandler
	debitH       *handler.DebitHandler
	conversionH  *handler.ConversionHandler
	reportH      *handler.ReportHandler
	userStore    *store.UserStore
	sessionStore *store.SessionStore
	rateLimiter  *middleware.RateLimiter
	logger       *slog.Logger
}

func New(db *sql.DB, cfg *config.Config, logger *slog.Logger) *Server {
	hub := ws.NewHub(logger.With("component", "websocket"))

	userStore := store.NewUserStore(db)
	taskStore := store.NewTaskStore(db)
	debitStore := store.NewDebitStore(db)
	conversionStore := store.NewConversionStore(db)
	sessionStore := store.NewSessionStore(db)

	calc := ledger.NewCalculator(db, userStore)
	uploader := storage.NewUploader(cfg.S3)
	notifier := email.NewNotifier(cfg.SMTP, logger.With("component", "email"))

	return &Server{
		db:           db,
		hub:          hub,
		authH:        handler.NewAuthHandler(userStore, sessionStore, logger.With("component", "auth")),
		userH:        handler.NewUserHandler(userStore, uploader, hub, logger.With("component", "user")),
		taskH:        handler.NewTaskHandler(taskStore, userStore, notifier, hub, logger.With("component", "task")),
		debitH:       handler.NewDebitHandler(debitStore, userStore, calc, hub, logger.With("component", "debit"), cfg.ClampDebits),
		conversionH:  handler.NewConversionHandler(conversionStore, hub, logger.With("component", "conversion")),
		reportH:      handler.NewReportHandler(calc, logger.With("component", "report")),
		userStore:    userStore,
		sessionStore: sessionStore,
		rateLimiter:  middleware.NewRateLimiter(),
		logger:       logger,
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

func (s *Server) Router() http.Handler {
	outerMux := http.NewServeMux()

	// Public routes (no auth required)
	outerMux.HandleFunc("POST /login", s.rateLimitedHandler(s.authH.Login))
	outerMux.HandleFunc("GET /health", s.healthHandler)

	// Protected routes — wrapped with RequireAuth middleware
	protectedMux := http.NewServeMux()
	s.registerProtectedRoutes(protectedMux)

	authMiddleware := middleware.RequireAuth(s.sessionStore, s.userStore)
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
	mux.HandleFunc("POST /logout", s.authH.Logout)

	// Role gates come from the policy table. Email, password and photo
	// enforce own-or-validator in the handler.
	users := middleware.RequirePage(policy.PageUsers)
	tasks := middleware.RequirePage(policy.PageTasks)
	validate := middleware.RequirePage(policy.PageValidate)
	debits := middleware.RequirePage(policy.PageDebits)
	dashboard := middleware.RequirePage(policy.PageDashboard)

	// User API routes
	mux.Handle("GET /api/users", dashboard(http.HandlerFunc(s.userH.List)))
	mux.Handle("POST /api/users", users(http.HandlerFunc(s.userH.Create)))
	mux.Handle("GET /api/users/{id}", dashboard(http.HandlerFunc(s.userH.Get)))
	mux.Handle("PUT /api/users/{id}", users(http.HandlerFunc(s.userH.Update)))
	mux.Handle("DELETE /api/users/{id}", users(http.HandlerFunc(s.userH.Delete)))
	mux.HandleFunc("PUT /api/users/{id}/email", s.userH.UpdateEmail)
	mux.HandleFunc("PUT /api/users/{id}/password", s.userH.UpdatePassword)
	mux.HandleFunc("PUT /api/users/{id}/photo", s.userH.UploadPhoto)

	// Task API routes
	mux.Handle("POST /api/tasks", tasks(http.HandlerFunc(s.taskH.Create)))
	mux.Handle("GET /api/tasks", tasks(http.HandlerFunc(s.taskH.List)))
	mux.Handle("GET /api/tasks/{id}", tasks(http.HandlerFunc(s.taskH.Get)))
	mux.Handle("POST /api/tasks/{id}/validate", validate(http.HandlerFunc(s.taskH.Validate)))
	mux.Handle("DELETE /api/tasks/{id}", validate(http.HandlerFunc(s.taskH.Delete)))

	// Debit API routes. Deleting a debit is a validator-only retraction.
	mux.Handle("POST /api/debits", debits(http.HandlerFunc(s.debitH.Create)))
	mux.Handle("GET /api/debits", debits(http.HandlerFunc(s.debitH.List)))
	mux.Handle("DELETE /api/debits/{id}", middleware.RequireValidator(http.HandlerFunc(s.debitH.Delete)))

	// Conversion API routes
	mux.Handle("GET /api/conversion", dashboard(http.HandlerFunc(s.conversionH.Get)))
	mux.Handle("PUT /api/conversion", middleware.RequireValidator(http.HandlerFunc(s.conversionH.Set)))

	// Report API routes
	mux.Handle("GET /api/report", dashboard(http.HandlerFunc(s.reportH.Get)))

	// WebSocket
	mux.HandleFunc("GET /ws", ws.Handler(s.hub, s.logger.With("component", "websocket")))
}

package http

import (
	"bytes"
	"context"
	"html/template"
	"net/http"
	"time"

	"fintrack/internal/cache"
	"fintrack/internal/log"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/middleware/security"
	"fintrack/internal/middleware/trace"
	"fintrack/internal/services"
	"fintrack/internal/session"
	"fintrack/internal/storage"
	appweb "fintrack/web"
)

const (
	loginPath          = "/login"
	cacheSweepInterval = 5 * time.Minute
	staticMaxAge       = 3600
)

// Options tune a Server. The zero value is usable.
type Options struct {
	// Publisher receives ledger change events; nil disables them.
	Publisher services.ChangePublisher
	// RateLimitPerMinute caps POST requests per client; 0 means the limiter default.
	RateLimitPerMinute int
	// Now overrides the clock used for "today".
	Now func() time.Time
	// BcryptCost overrides the password hashing cost.
	BcryptCost int
}

// Server serves the fintrack web pages.
type Server struct {
	http.Server
	templates *template.Template
	store     storage.Store
	ledger    *services.LedgerService
	auth      *services.AuthService
	sessions  *session.Manager
	caches    *cache.Manager
	limiter   *ratelimit.Limiter
	detector  *security.Detector
	tracer    *trace.Middleware
	logger    *log.Logger
	startedAt time.Time
}

// NewServer wires the services, middleware and routes around store.
func NewServer(addr string, store storage.Store, sessions *session.Manager, logger *log.Logger, opts Options) *Server {
	if logger == nil {
		logger = log.Discard()
	}
	logger = logger.WithComponent(log.ComponentHTTP)

	var ledgerOpts []services.Option
	if opts.Now != nil {
		ledgerOpts = append(ledgerOpts, services.WithClock(opts.Now))
	}
	auth := services.NewAuthService(store, logger)
	if opts.BcryptCost > 0 {
		auth = auth.WithCost(opts.BcryptCost)
	}

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}
	limiterCfg.Now = opts.Now

	s := &Server{
		store:     store,
		ledger:    services.NewLedgerService(store, opts.Publisher, logger, ledgerOpts...),
		auth:      auth,
		sessions:  sessions,
		caches:    cache.NewManager(logger),
		limiter:   ratelimit.NewLimiter(limiterCfg),
		detector:  security.NewDetector(logger),
		logger:    logger,
		startedAt: time.Now(),
	}
	s.tracer = trace.NewMiddleware(logger, s.detector.ExtractClientIP)
	s.caches.Register(sessions.Cleaner())
	s.caches.Start(context.Background(), cacheSweepInterval)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, appweb.PagesGlob)
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	s.Addr = addr
	s.Handler = s.routes()
	s.ReadHeaderTimeout = 10 * time.Second
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := appweb.Static(); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(staticMaxAge)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /login", s.handleLoginPage)
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /register", s.handleRegisterPage)
	mux.HandleFunc("POST /register", s.handleRegister)
	mux.HandleFunc("GET /logout", s.handleLogout)
	mux.HandleFunc("POST /logout", s.handleLogout)

	protected := func(h http.HandlerFunc) http.Handler {
		return s.sessions.RequireUser(loginPath)(withUserLogger(security.NoStore(h)))
	}
	mux.Handle("GET /{$}", protected(s.handleDashboard))
	mux.Handle("GET /transactions", protected(s.handleTransactions))
	mux.Handle("POST /transactions", protected(s.handleAddTransaction))
	mux.Handle("POST /transactions/{id}/delete", protected(s.handleDeleteTransaction))
	mux.Handle("GET /investments", protected(s.handleInvestments))
	mux.Handle("POST /investments", protected(s.handleAddInvestment))
	mux.Handle("POST /investments/{id}/delete", protected(s.handleDeleteInvestment))
	mux.Handle("GET /reports", protected(s.handleReports))
	mux.Handle("GET /settings", protected(s.handleSettings))
	mux.Handle("POST /settings", protected(s.handleUpdateSettings))
	mux.Handle("POST /settings/danger/{mode}", protected(s.handleDanger))
	mux.Handle("GET /export.csv", protected(s.handleExport))
	mux.Handle("/", protected(handleNotFound))

	var h http.Handler = mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, ratelimit.MutatingOnly, handleRateLimited)(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = log.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = log.Middleware(s.logger)(h)
	h = s.tracer.Middleware(h)
	return h
}

// withUserLogger tags the request logger with the authenticated username.
func withUserLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := session.UserFrom(r.Context()); ok {
			logger := log.FromContext(r.Context()).With(log.FieldUsername, u)
			r = r.WithContext(log.NewContext(r.Context(), logger))
		}
		next.ServeHTTP(w, r)
	})
}

// handleNotFound answers paths no route claims. It sits behind the session
// check, so anonymous visitors are sent to the login page instead.
func handleNotFound(w http.ResponseWriter, r *http.Request) {
	NotFoundError("Página não encontrada.").Write(w, r)
}

func handleRateLimited(w http.ResponseWriter, r *http.Request) {
	ErrorResponse(http.StatusTooManyRequests, "Muitas requisições. Tente novamente em instantes.").Write(w, r)
}

// Shutdown stops background work and then the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.limiter.Stop()
	s.caches.Stop()
	return s.Server.Shutdown(ctx)
}

// render executes the named page into a buffer so a template failure can
// still turn into a clean 500.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	logger := log.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldOperation, log.OpRender)
		InternalServerError("Erro interno.").Write(w, r)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		logger.ErrorContext(r.Context(), "Template render failed",
			log.FieldOperation, log.OpRender,
			"template", name,
			log.FieldError, err)
		InternalServerError("Erro interno.").Write(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// serverError logs err and sends the generic 500 page.
func (s *Server) serverError(w http.ResponseWriter, r *http.Request, op string, err error) {
	log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
		log.FieldOperation, op,
		log.FieldError, err)
	InternalServerError("Não foi possível concluir a operação. Tente novamente.").Write(w, r)
}

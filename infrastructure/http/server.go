package http

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/http"
	"slices"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	loginflow "gridstock/frontend/login"
	sessioncontext "gridstock/frontend/shared/context"
	"gridstock/infrastructure/audit"
	"gridstock/infrastructure/cache"
	"gridstock/infrastructure/logging"
	"gridstock/infrastructure/rbac"
	sessioncookie "gridstock/infrastructure/session"
	"gridstock/infrastructure/sqlite"
	"gridstock/models"
)

//go:embed assets/*
var assets embed.FS

// Options carries the transport settings taken from configuration.
type Options struct {
	Addr               string
	ReadTimeout        time.Duration
	WriteTimeout       time.Duration
	ShutdownTimeout    time.Duration
	SessionTTL         time.Duration
	SecureCookies      bool
	LoginRatePerMinute int
	LoginBurst         int
}

// Server bundles dependencies and route wiring.
type Server struct {
	Addr   string
	ln     net.Listener
	server *http.Server
	router *chi.Mux

	DB              *sqlite.DB
	SessionCache    *cache.UserSessionCache
	UserCache       *cache.UserCache
	RbacCache       *cache.RbacRolesCache
	Rbac            *rbac.Rbac
	Audit           *audit.Service
	Log             *zap.Logger
	Cookies         sessioncookie.Cookies
	LoginLimiter    *RateLimiter
	shutdownTimeout time.Duration
}

// NewServer creates a new http server.
func NewServer(opts Options, db *sqlite.DB, sessionCache *cache.UserSessionCache, userCache *cache.UserCache, r *rbac.Rbac, rbacCache *cache.RbacRolesCache, auditSvc *audit.Service, log *zap.Logger) *Server {
	log = logging.OrNop(log)
	perMinute := opts.LoginRatePerMinute
	if perMinute <= 0 {
		perMinute = 10
	}
	burst := opts.LoginBurst
	if burst <= 0 {
		burst = 5
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 2 * time.Second
	}

	s := &Server{
		Addr:            opts.Addr,
		router:          chi.NewRouter(),
		DB:              db,
		SessionCache:    sessionCache,
		UserCache:       userCache,
		RbacCache:       rbacCache,
		Rbac:            r,
		Audit:           auditSvc,
		Log:             log,
		Cookies:         sessioncookie.NewCookies(opts.SessionTTL, opts.SecureCookies),
		LoginLimiter:    NewRateLimiter(rate.Every(time.Minute/time.Duration(perMinute)), burst),
		shutdownTimeout: shutdownTimeout,
		server: &http.Server{
			MaxHeaderBytes: 1 << 20,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
		},
	}

	// Secure headers first.
	s.router.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("X-XSS-Protection", "1; mode=block")
			next.ServeHTTP(w, r)
		})
	})

	s.router.Use(middleware.RequestID)
	s.router.Use(s.RequestLogger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(s.CSRFMiddleware)

	// Root sends signed-in users to the catalog and everyone else to login.
	s.router.Get("/", func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		session, ok := s.resolveSession(r.Context(), sessionCookie.Value)
		if !ok || session.Expired() {
			http.SetCookie(w, s.Cookies.Clear())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		http.Redirect(w, r, loginflow.HomePath, http.StatusSeeOther)
	})

	s.router.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	var assetsFS fs.FS = assets
	if sub, err := fs.Sub(assets, "assets"); err == nil {
		assetsFS = sub
	} else {
		log.Error("assets subfs init failed; serving fallback fs", zap.Error(err))
	}
	s.router.Handle("/assets/*", http.StripPrefix("/assets/", http.FileServer(http.FS(assetsFS))))

	s.RegisterLoginRoutes()

	s.router.Route("/tasker", func(r chi.Router) {
		r.Use(s.AuthenticateMiddleware)
		s.RegisterFrontendRoutes(r)
		s.RegisterAdminRoutes(r)
	})

	s.server.Handler = s.router
	return s
}

// Handler exposes the router, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.router
}

// AuthenticateMiddleware loads the session and applies RBAC checks.
func (s *Server) AuthenticateMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sessionCookie, err := r.Cookie(sessioncookie.CookieName)
		if err != nil || sessionCookie.Value == "" {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		sessionToken := sessionCookie.Value
		session, ok := s.resolveSession(r.Context(), sessionToken)
		if !ok {
			s.Log.Debug("session not found", zap.String("method", r.Method), zap.String("path", r.URL.Path))
			http.SetCookie(w, s.Cookies.Clear())
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if session.Expired() {
			http.SetCookie(w, s.Cookies.Clear())
			s.SessionCache.DeleteSessionBySessionToken(sessionToken)
			if err := loginflow.DeleteSessionByToken(r.Context(), s.DB, sessionToken); err != nil {
				s.Log.Error("cannot delete expired session", zap.Error(err))
			}
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}

		if slices.Contains(session.UserRoles, rbac.RoleAdmin) {
			session.ScreenPermissions = s.RbacCache.GetAllRouteNames()
		} else {
			session.ScreenPermissions = s.buildRbacNamedRoutesMap(session.UserRoles)
			if !s.Rbac.Allows(session.UserRoles, r.URL.Path, r.Method) {
				s.Log.Info("rbac denied",
					zap.String("user", session.User.Username),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path))
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
		}

		ctx := sessioncontext.NewContextWithSession(r.Context(), session)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveSession(ctx context.Context, token string) (models.Session, bool) {
	if cached, found := s.SessionCache.FindSessionBySessionToken(token); found {
		return cached, true
	}

	dbSession, err := loginflow.LoadSessionByToken(ctx, s.DB, token)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			s.Log.Error("load session from db failed", zap.Error(err))
		}
		return models.Session{}, false
	}

	s.SessionCache.AddSession(dbSession)
	s.UserCache.Add(dbSession.User.Username, dbSession.User)
	return dbSession, true
}

func (s *Server) buildRbacNamedRoutesMap(userRoles []string) map[string]int {
	perms := make(map[string]int)
	for _, res := range s.RbacCache.GetRolesAndResources(userRoles) {
		perms[res.UserResourceCode] = 1
	}
	return perms
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	var err error
	if s.ln, err = net.Listen("tcp", s.Addr); err != nil {
		return err
	}
	s.Addr = s.ln.Addr().String()
	go func() {
		if err := s.server.Serve(s.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Log.Error("http server stopped", zap.Error(err))
		}
	}()
	return nil
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	if s.ln == nil {
		return fmt.Errorf("HTTP server has not been started or is already stopped")
	}
	s.LoginLimiter.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown HTTP server: %w", err)
	}
	s.ln = nil
	return nil
}

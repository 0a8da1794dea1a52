// Package httpintake is the external-collaborator-facing HTTP adapter: it
// turns an incoming submission request into a model.Submission and hands it
// to the Run Controller, returning the resulting Diagnostic as JSON. It is
// one of several Submission sources the spec allows (spec.md §3 lists
// sftp/email/api/filesystem/direct_upload channels) — sftp/email/filesystem
// intake are out of this adapter's scope and are expected to construct
// Submission values directly against runner.Controller from their own
// poller/mailbox process.
package httpintake

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/sage-ingest/sage/internal/config"
	"github.com/sage-ingest/sage/internal/runner"
)

// Server is the HTTP adapter in front of a runner.Controller.
type Server struct {
	controller *runner.Controller
	router     *chi.Mux
	server     *http.Server

	serverCfg config.ServerConfig
	runCfg    config.RunConfig
}

// NewServer builds a Server wired to controller and configured by cfg
// (adapted from the teacher's internal/web/server.go setup sequence).
func NewServer(controller *runner.Controller, cfg *config.Config) *Server {
	s := &Server{
		controller: controller,
		router:     chi.NewRouter(),
		serverCfg:  cfg.Server,
		runCfg:     cfg.Run,
	}
	s.setupMiddleware(cfg.Security)
	s.setupRoutes()
	return s
}

func (s *Server) setupMiddleware(security config.SecurityConfig) {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	if s.serverCfg.RequestTimeout > 0 {
		s.router.Use(middleware.Timeout(s.serverCfg.RequestTimeout))
	}
	s.router.Use(securityHeaders)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:   []string{"Content-Type", "X-API-Key", "X-Sender-API-Key", "X-Email-Sender", "X-Source-Host"},
		MaxAge:           300,
		AllowCredentials: false,
	}))

	limiter := newRateLimiter(100, time.Minute)
	s.router.Use(limiter.middleware)
	s.router.Use(apiKeyAuth(security))
}

func (s *Server) setupRoutes() {
	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/v1", func(r chi.Router) {
		r.Post("/senders/{sender_id}/packages/{package_name}/submissions", s.handleSubmit)
	})
}

// runCtx derives a context bounded by the configured Run.Timeout, falling
// back to the request's own context cancellation.
func (s *Server) runCtx(parent context.Context) (context.Context, context.CancelFunc) {
	if s.runCfg.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.runCfg.Timeout)
}

// Start begins listening for HTTP requests.
func (s *Server) Start() error {
	s.server = &http.Server{
		Addr:         s.serverCfg.Addr(),
		Handler:      s.router,
		ReadTimeout:  s.serverCfg.ReadTimeout,
		WriteTimeout: s.serverCfg.WriteTimeout,
		IdleTimeout:  s.serverCfg.IdleTimeout,
	}
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

// Router exposes the underlying chi router for testing.
func (s *Server) Router() *chi.Mux {
	return s.router
}

func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// rateLimiter is a simple token-bucket limiter per remote IP (adapted from
// the teacher's internal/web/server.go rateLimiter).
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int
	window   time.Duration
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{visitors: make(map[string]*visitor), rate: rate, window: window}
	go rl.cleanup()
	return rl
}

func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{tokens: rl.rate - 1, lastReset: time.Now()}
		return true
	}
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}
	if v.tokens <= 0 {
		return false
	}
	v.tokens--
	return true
}

func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}
		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded", "RATE_LIMITED")
			return
		}
		next.ServeHTTP(w, r)
	})
}

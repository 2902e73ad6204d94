// Package server provides the HTTP API for the resume builder.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/jonathan/resume-builder/internal/auth"
	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/db"
	"github.com/jonathan/resume-builder/internal/llm"
	"github.com/jonathan/resume-builder/internal/pdf"
	"github.com/jonathan/resume-builder/internal/server/ratelimit"
	"github.com/jonathan/resume-builder/internal/session"
)

// Database is the persistence surface the server needs.
type Database interface {
	UpsertUser(ctx context.Context, userID, email string) (*db.UserRecord, error)
	GetUser(ctx context.Context, userID string) (*db.UserRecord, error)
	SaveResume(ctx context.Context, userID, title, html string) (uuid.UUID, error)
	ListResumes(ctx context.Context, userID string) ([]db.ResumeSummary, error)
	GetResume(ctx context.Context, userID string, id uuid.UUID) (*db.Resume, error)
	DeleteResume(ctx context.Context, userID string, id uuid.UUID) error
	Close()
}

// Server represents the HTTP server
type Server struct {
	httpServer  *http.Server
	db          Database
	sessions    session.Store
	authCfg     *config.AuthConfig
	flow        *auth.Flow
	creds       auth.CredentialStore
	llm         llm.Client
	renderer    *pdf.Renderer
	rateLimiter *ratelimit.Limiter
	validate    *validator.Validate
}

// Config holds server configuration
type Config struct {
	Port         int
	DatabaseURL  string
	GeminiAPIKey string
	RedisURL     string // empty means in-memory sessions
}

// New creates a new server instance
func New(cfg Config) (*Server, error) {
	ctx := context.Background()

	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	authCfg, err := config.NewAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load auth config: %w", err)
	}

	sessions, err := newSessionStore(cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	var verifier auth.TokenVerifier
	if authCfg.VerifyIDTokens {
		verifier, err = auth.NewOIDCVerifier(ctx, authCfg.Issuer(), authCfg.ClientID)
		if err != nil {
			return nil, fmt.Errorf("failed to create token verifier: %w", err)
		}
	} else {
		log.Println("[auth] ID-token signature verification is DISABLED")
		verifier = auth.UnverifiedDecoder{}
	}

	llmClient, err := llm.NewClient(ctx, llm.DefaultConfig(), cfg.GeminiAPIKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	s := &Server{
		db:          database,
		sessions:    sessions,
		authCfg:     authCfg,
		flow:        auth.NewFlow(authCfg, verifier),
		creds:       auth.NewCognitoCredentials(authCfg.IDPEndpoint(), authCfg.ClientID, authCfg.ClientSecret),
		llm:         llmClient,
		renderer:    pdf.NewRenderer(0, false),
		rateLimiter: ratelimit.NewLimiter(ratelimit.LoadConfig()),
		validate:    validator.New(),
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(s.routes()))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second, // PDF rendering can take a while
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// newSessionStore picks the session backend. A Redis URL selects the shared
// store; otherwise sessions live in process memory.
func newSessionStore(redisURL string) (session.Store, error) {
	if redisURL == "" {
		log.Println("[session] Using in-memory session store")
		return session.NewMemoryStore(), nil
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	return session.NewRedisStore(redis.NewClient(opts), ""), nil
}

// routes builds the request mux.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Auth flow
	mux.HandleFunc("GET /login", s.handleLogin)
	mux.HandleFunc("GET /callback", s.handleCallback)
	mux.HandleFunc("POST /custom-login", s.handleCustomLogin)
	mux.HandleFunc("GET /logout", s.handleLogout)

	// Anonymous pages
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /login-page", s.handleLoginPage)
	mux.HandleFunc("GET /health", s.handleHealth)

	// LLM helpers
	mux.HandleFunc("POST /extract-keywords", s.handleExtractKeywords)
	mux.HandleFunc("POST /ai-rewrite-job-description", s.handleRewriteJobDescription)
	mux.HandleFunc("POST /ai-rewrite-project-description", s.handleRewriteProjectDescription)

	// Authenticated surface
	mux.Handle("GET /resume-maker", s.requireSession(http.HandlerFunc(s.handleResumeMaker)))
	mux.Handle("POST /resumes", s.requireSession(http.HandlerFunc(s.handleSaveResume)))
	mux.Handle("GET /resumes", s.requireSession(http.HandlerFunc(s.handleListResumes)))
	mux.Handle("GET /resumes/{id}", s.requireSession(http.HandlerFunc(s.handleGetResume)))
	mux.Handle("DELETE /resumes/{id}", s.requireSession(http.HandlerFunc(s.handleDeleteResume)))
	mux.Handle("POST /generate-pdf", s.requireSession(http.HandlerFunc(s.handleGeneratePDF)))

	return mux
}

// Start begins listening for requests
func (s *Server) Start() error {
	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	<-stop
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.llm != nil {
		_ = s.llm.Close()
	}
	s.db.Close()
	log.Println("Server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		log.Printf("[%s] %s %s", r.Method, r.URL.Path, r.RemoteAddr)
		next.ServeHTTP(w, r)
		log.Printf("[%s] %s completed in %v", r.Method, r.URL.Path, time.Since(start))
	})
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleIndex describes the service for anonymous visitors.
func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"service": "resume-builder",
		"login":   "/login",
	})
}

// handleLoginPage is the anonymous landing the access guard redirects to.
func (s *Server) handleLoginPage(w http.ResponseWriter, _ *http.Request) {
	s.jsonResponse(w, http.StatusOK, map[string]string{
		"message":      "authentication required",
		"login":        "/login",
		"custom_login": "/custom-login",
	})
}

// handleResumeMaker is the landing for authenticated users.
func (s *Server) handleResumeMaker(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	user, err := s.db.GetUser(r.Context(), sess.UserID)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, "failed to load profile")
		return
	}

	resp := map[string]any{
		"user_id": sess.UserID,
		"email":   sess.Email,
	}
	if user != nil {
		resp["resume_count"] = user.ResumeCount
	}
	s.jsonResponse(w, http.StatusOK, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}

package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"confprint/internal/config"
	appLog "confprint/internal/log"
)

// Snapshot is the last rendered timetable.
type Snapshot struct {
	HTML []byte
	CSS  []byte
	// PDFPath is the written document, if any.
	PDFPath   string
	UpdatedAt time.Time
}

// Server serves the rendered timetable. The headless browser reads it over
// a loopback listener during pagination; `confprint serve` exposes it for
// previews.
type Server struct {
	auth *config.BasicAuthConfig
	mux  *http.ServeMux

	mu   sync.RWMutex
	snap Snapshot
}

// NewServer constructs a Server. A nil auth disables Basic Auth.
func NewServer(auth *config.BasicAuthConfig) *Server {
	s := &Server{
		auth: auth,
		mux:  http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// SetSnapshot replaces the served timetable.
func (s *Server) SetSnapshot(snap Snapshot) {
	if snap.UpdatedAt.IsZero() {
		snap.UpdatedAt = time.Now()
	}
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

func (s *Server) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		return s.basicAuthMiddleware(h)
	}
	return h
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.auth == nil {
		return false
	}
	// Empty username or password counts as disabled.
	return s.auth.Username != "" && s.auth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.auth.Username
	password := s.auth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="confprint", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/timetable", s.handleTimetable)
	s.mux.HandleFunc("/style.css", s.handleStylesheet)
	s.mux.HandleFunc("/timetable.pdf", s.handlePDF)
	s.mux.HandleFunc("/api/status", s.handleStatus)
	s.mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		http.Redirect(w, r, "/timetable", http.StatusFound)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

func (s *Server) handleTimetable(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	if len(snap.HTML) == 0 {
		http.Error(w, "timetable not rendered yet", http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(snap.HTML)
}

func (s *Server) handleStylesheet(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(snap.CSS)
}

// handlePDF serves the last written document from disk.
func (s *Server) handlePDF(w http.ResponseWriter, r *http.Request) {
	snap := s.snapshot()
	if snap.PDFPath == "" {
		http.NotFound(w, r)
		return
	}
	// ServeFile maps missing files to 404 and other errors to 500.
	http.ServeFile(w, r, snap.PDFPath)
}

type statusResponse struct {
	Ready     bool      `json:"ready"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
	HTMLBytes int       `json:"html_bytes"`
	PDFPath   string    `json:"pdf_path,omitempty"`
}

func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	snap := s.snapshot()
	writeJSON(w, http.StatusOK, statusResponse{
		Ready:     len(snap.HTML) > 0,
		UpdatedAt: snap.UpdatedAt,
		HTMLBytes: len(snap.HTML),
		PDFPath:   snap.PDFPath,
	})
}

// StartLoopback serves on an ephemeral 127.0.0.1 port and returns the base
// URL plus a function that shuts the listener down.
func (s *Server) StartLoopback() (string, func(), error) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return "", nil, err
	}
	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("loopback server failed", err)
		}
	}()

	stop := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
	return "http://" + ln.Addr().String(), stop, nil
}

// ListenAndServe serves on listen until ctx is canceled.
func (s *Server) ListenAndServe(ctx context.Context, listen string) error {
	srv := &http.Server{
		Addr:              listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+listen, "basic_auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

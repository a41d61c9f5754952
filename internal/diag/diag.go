// Package diag serves a small local HTTP endpoint for inspecting a running
// panel: health, engine counters and a PNG of the frame buffer.
package diag

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"strconv"
	"sync"
	"time"

	xdraw "golang.org/x/image/draw"

	"hubpanel/internal/config"
	"hubpanel/internal/engine"
	appLog "hubpanel/internal/log"
)

// StatsSource is the engine as seen by the endpoint.
type StatsSource interface {
	Stats() engine.Stats
}

// Server exposes /health, /api/stats and /preview.png.
type Server struct {
	cfg   config.DiagConfig
	stats StatsSource
	mux   *http.ServeMux

	mu      sync.RWMutex
	preview *image.Gray
	at      time.Time
}

func NewServer(cfg config.DiagConfig, stats StatsSource) *Server {
	s := &Server{cfg: cfg, stats: stats, mux: http.NewServeMux()}
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/stats", s.handleStats)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	return s
}

// SetPreview stores the latest frame. It is the engine's OnFrame hook and
// runs on the display goroutine.
func (s *Server) SetPreview(img *image.Gray) {
	s.mu.Lock()
	s.preview = img
	s.at = time.Now()
	s.mu.Unlock()
}

// Handler returns the mux, wrapped in Basic Auth when credentials are set.
func (s *Server) Handler() http.Handler {
	if s.basicAuthEnabled() {
		return s.basicAuth(s.mux)
	}
	return s.mux
}

func (s *Server) basicAuthEnabled() bool {
	a := s.cfg.BasicAuth
	return a != nil && a.Username != "" && a.Password != ""
}

// basicAuth guards everything except /health.
func (s *Server) basicAuth(next http.Handler) http.Handler {
	user, pass := s.cfg.BasicAuth.Username, s.cfg.BasicAuth.Password
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}
		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, user) || !secureCompare(p, pass) {
			w.Header().Set("WWW-Authenticate", `Basic realm="hubpanel", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

// Run serves on cfg.Listen until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		appLog.Info("diag: listening", "addr", "http://"+s.cfg.Listen, "auth", s.basicAuthEnabled())
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	status, body := http.StatusOK, "OK"
	if s.stats.Stats().State == engine.StateFaulted {
		status, body = http.StatusServiceUnavailable, "FAULTED"
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(body))
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, s.stats.Stats())
}

// maxScale bounds the ?scale= query of /preview.png.
const maxScale = 4

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	img, at := s.preview, s.at
	s.mu.RUnlock()
	if img == nil {
		writeError(w, http.StatusNotFound, "no frame rendered yet")
		return
	}
	scale := 1
	if v := r.URL.Query().Get("scale"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxScale {
			writeError(w, http.StatusBadRequest, "scale must be 1.."+strconv.Itoa(maxScale))
			return
		}
		scale = n
	}
	var out image.Image = img
	if scale > 1 {
		out = upscale(img, scale)
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Last-Modified", at.UTC().Format(http.TimeFormat))
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, out); err != nil {
		appLog.Error("diag: preview encode failed", err)
	}
}

// upscale enlarges the frame with nearest-neighbour sampling.
func upscale(src *image.Gray, n int) *image.Gray {
	b := src.Bounds()
	dst := image.NewGray(image.Rect(0, 0, b.Dx()*n, b.Dy()*n))
	xdraw.NearestNeighbor.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)
	return dst
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("diag: failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}

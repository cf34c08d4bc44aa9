package main

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bodul/clockofclocks/clockface"
	"github.com/bodul/clockofclocks/render"
	"github.com/bodul/clockofclocks/timer"
)

//go:embed frontend
var frontendFS embed.FS

const maxDigitsLen = 8

// rateLimiter is a simple per-IP token bucket rate limiter.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*bucket
	rate     int           // tokens per interval
	interval time.Duration // refill interval

	quit     chan struct{}
	done     chan struct{} // closed when the cleanup loop returns
	stopOnce sync.Once
}

type bucket struct {
	tokens   int
	lastSeen time.Time
}

func newRateLimiter(rate int, interval time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*bucket),
		rate:     rate,
		interval: interval,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// cleanup drops stale entries every minute until stop is called.
func (rl *rateLimiter) cleanup() {
	defer close(rl.done)
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-rl.quit:
			return
		case <-ticker.C:
			rl.mu.Lock()
			for ip, b := range rl.visitors {
				if time.Since(b.lastSeen) > 5*time.Minute {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.stopOnce.Do(func() { close(rl.quit) })
	<-rl.done
}

func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	b, ok := rl.visitors[ip]
	if !ok {
		rl.visitors[ip] = &bucket{tokens: rl.rate - 1, lastSeen: time.Now()}
		return true
	}

	// Refill tokens based on elapsed time.
	elapsed := time.Since(b.lastSeen)
	refill := int(elapsed / rl.interval)
	if refill > 0 {
		b.tokens += refill * rl.rate
		if b.tokens > rl.rate {
			b.tokens = rl.rate
		}
		b.lastSeen = time.Now()
	}

	if b.tokens <= 0 {
		return false
	}
	b.tokens--
	return true
}

// Server is the main HTTP server.
type Server struct {
	mux      *http.ServeMux
	store    *Store
	gemini   *GeminiClient
	sse      *Broadcaster
	renderRL *rateLimiter
	timerRL  *rateLimiter
	faceOpts render.Options
}

// NewServer creates a configured HTTP server. gemini may be nil.
func NewServer(store *Store, sse *Broadcaster, gemini *GeminiClient) *Server {
	s := &Server{
		mux:      http.NewServeMux(),
		store:    store,
		gemini:   gemini,
		sse:      sse,
		renderRL: newRateLimiter(10, time.Second), // 10 images/sec per IP
		timerRL:  newRateLimiter(10, time.Minute), // 10 new timers/min per IP
		faceOpts: render.DefaultOptions(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	// Catalog API
	s.mux.HandleFunc("GET /api/demos", s.handleListDemos)
	s.mux.HandleFunc("GET /api/demos/{slug}/blurb", s.handleDemoBlurb)

	// Clock API
	s.mux.HandleFunc("GET /api/clock", s.handleClock)
	s.mux.HandleFunc("GET /api/clock/events", s.handleClockEvents)
	s.mux.HandleFunc("GET /api/clock.png", s.handleClockImage)
	s.mux.HandleFunc("GET /api/digits/{value}", s.handleDigits)

	// Timer API
	s.mux.HandleFunc("POST /api/timers", s.handleCreateTimer)
	s.mux.HandleFunc("GET /api/timers", s.handleListTimers)
	s.mux.HandleFunc("GET /api/timers/{id}", s.handleGetTimer)
	s.mux.HandleFunc("POST /api/timers/{id}/toggle", s.timerAction((*TimerSession).Toggle))
	s.mux.HandleFunc("POST /api/timers/{id}/reset", s.timerAction((*TimerSession).Reset))
	s.mux.HandleFunc("POST /api/timers/{id}/mode", s.handleTimerMode)
	s.mux.HandleFunc("GET /api/timers/{id}/events", s.handleTimerEvents)

	// Frontend static files
	frontendDir, _ := fs.Sub(frontendFS, "frontend")
	fileServer := http.FileServer(http.FS(frontendDir))
	s.mux.HandleFunc("GET /clock-of-clocks", s.servePage("frontend/clock.html"))
	s.mux.HandleFunc("GET /timers/{id}", s.servePage("frontend/timer.html"))
	s.mux.Handle("GET /", fileServer)
}

// Close stops the background work of the server's rate limiters.
func (s *Server) Close() {
	s.renderRL.stop()
	s.timerRL.stop()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'self' 'unsafe-inline'; img-src 'self' data:; connect-src 'self'")
	s.mux.ServeHTTP(w, r)
}

// --- Catalog handlers ---

// GET /api/demos — list the demos of the home page.
func (s *Server) handleListDemos(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, demos)
}

// GET /api/demos/{slug}/blurb — footer text, written by Gemini when configured.
func (s *Server) handleDemoBlurb(w http.ResponseWriter, r *http.Request) {
	demo, ok := findDemo(r.PathValue("slug"))
	if !ok {
		jsonError(w, "Démo introuvable", http.StatusNotFound)
		return
	}

	text, cached := s.store.Blurb(demo.Slug)
	if !cached {
		text = demo.Info
		if s.gemini != nil {
			generated, err := s.gemini.WriteBlurb(r.Context(), demo)
			if err != nil {
				slog.Warn("Gemini blurb error", "demo", demo.Slug, "err", err)
			} else {
				text = generated
				s.store.SaveBlurb(demo.Slug, text)
			}
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"slug": demo.Slug, "text": text})
}

// --- Clock handlers ---

// GET /api/clock — current time and the rotations of its six digits.
func (s *Server) handleClock(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newClockFrame(clockface.Now(s.store.clock)))
}

// GET /api/clock/events — SSE stream of clock frames.
func (s *Server) handleClockEvents(w http.ResponseWriter, r *http.Request) {
	s.sse.ServeSSE(w, r, clockTopic, func() any {
		return newClockFrame(clockface.Now(s.store.clock))
	})
}

// GET /api/clock.png — the current face as an image.
func (s *Server) handleClockImage(w http.ResponseWriter, r *http.Request) {
	if !s.renderRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	var buf bytes.Buffer
	if err := render.Face(&buf, clockface.Now(s.store.clock), s.faceOpts); err != nil {
		slog.Error("render clock face", "err", err)
		jsonError(w, "Erreur de rendu", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	w.Write(buf.Bytes())
}

// GET /api/digits/{value} — rotations for an arbitrary digit string.
func (s *Server) handleDigits(w http.ResponseWriter, r *http.Request) {
	value := r.PathValue("value")
	if utf8.RuneCountInString(value) > maxDigitsLen {
		jsonError(w, "Valeur trop longue (max 8 caractères)", http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"value": value,
		"cells": clockface.Digits(value),
	})
}

// --- Timer handlers ---

// POST /api/timers — create a stopwatch or pomodoro session.
func (s *Server) handleCreateTimer(w http.ResponseWriter, r *http.Request) {
	if !s.timerRL.allow(r.RemoteAddr) {
		jsonError(w, "Trop de requêtes, réessayez plus tard", http.StatusTooManyRequests)
		return
	}

	var req struct {
		Kind TimerKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Kind == "" {
		jsonError(w, "Champ 'kind' requis", http.StatusBadRequest)
		return
	}

	ts, err := s.store.CreateTimer(req.Kind)
	if err != nil {
		jsonError(w, "Type de minuteur inconnu : stopwatch ou pomodoro", http.StatusBadRequest)
		return
	}

	slog.Info("minuteur créé", "timer", ts.ID, "kind", ts.Kind)
	writeJSON(w, http.StatusCreated, ts.State())
}

// GET /api/timers — list sessions, most recent first.
func (s *Server) handleListTimers(w http.ResponseWriter, _ *http.Request) {
	sessions := s.store.ListTimers()
	states := make([]TimerState, 0, len(sessions))
	for _, ts := range sessions {
		states = append(states, ts.State())
	}
	writeJSON(w, http.StatusOK, states)
}

// GET /api/timers/{id} — current session state.
func (s *Server) handleGetTimer(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTimer(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Minuteur introuvable", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, ts.State())
}

// POST /api/timers/{id}/toggle and /reset.
func (s *Server) timerAction(action func(*TimerSession)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ts := s.store.GetTimer(r.PathValue("id"))
		if ts == nil {
			jsonError(w, "Minuteur introuvable", http.StatusNotFound)
			return
		}
		action(ts)
		s.publishTimer(w, ts)
	}
}

// POST /api/timers/{id}/mode — switch a pomodoro between focus and breaks.
func (s *Server) handleTimerMode(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTimer(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Minuteur introuvable", http.StatusNotFound)
		return
	}

	var req struct {
		Mode timer.Mode `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "Requête invalide", http.StatusBadRequest)
		return
	}

	if err := ts.SetMode(req.Mode); err != nil {
		switch {
		case errors.Is(err, errNotPomodoro):
			jsonError(w, "Ce minuteur n'a pas de mode", http.StatusConflict)
		default:
			jsonError(w, "Mode invalide : focus, short ou long", http.StatusBadRequest)
		}
		return
	}

	s.publishTimer(w, ts)
}

// GET /api/timers/{id}/events — SSE stream of a session.
func (s *Server) handleTimerEvents(w http.ResponseWriter, r *http.Request) {
	ts := s.store.GetTimer(r.PathValue("id"))
	if ts == nil {
		jsonError(w, "Minuteur introuvable", http.StatusNotFound)
		return
	}

	s.sse.ServeSSE(w, r, ts.ID, func() any {
		return timerEvent(ts.State())
	})
}

// publishTimer broadcasts the new state of ts and writes it as the response.
func (s *Server) publishTimer(w http.ResponseWriter, ts *TimerSession) {
	st := ts.State()
	s.sse.BroadcastJSON(ts.ID, timerEvent(st))
	writeJSON(w, http.StatusOK, st)
}

func timerEvent(st TimerState) map[string]any {
	return map[string]any{"type": "timer_state", "state": st}
}

// --- Frontend page handlers ---

func (s *Server) servePage(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		data, _ := frontendFS.ReadFile(name)
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(data)
	}
}

// --- Helpers ---

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	writeJSON(w, code, map[string]string{"error": msg})
}

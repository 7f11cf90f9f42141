package api

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"bn9-backend/internal/alert"
	"bn9-backend/internal/classify"
	"bn9-backend/internal/line"
	"bn9-backend/internal/storage"
)

// Options wires the HTTP server to its collaborators.
type Options struct {
	Port         int
	Webhook      http.Handler
	Store        storage.Store
	Messenger    line.Messenger
	Notifier     alert.Notifier
	Summarizer   classify.Summarizer
	AdminAPIKey  string
	AllowOrigins []string
}

// Server hosts the LINE webhook and the admin dashboard API.
type Server struct {
	opts   Options
	server *http.Server
}

func NewServer(opts Options) *Server {
	return &Server{opts: opts}
}

func (s *Server) Start() error {
	mux := http.NewServeMux()

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/webhook", s.opts.Webhook)

	admin := func(h http.HandlerFunc) http.Handler {
		return s.cors(s.adminAuth(h))
	}
	mux.Handle("/api/logs", admin(s.handleLogs))
	mux.Handle("/api/stats", admin(s.handleStats))
	mux.Handle("/api/summarize", admin(s.handleSummarize))
	mux.Handle("/api/push", admin(s.handlePush))
	mux.Handle("/api/reply", admin(s.handleReply))
	mux.Handle("/api/alert", admin(s.handleAlert))

	s.server = &http.Server{
		Addr:         fmt.Sprintf(":%d", s.opts.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("🌐 BN9 backend listening on :%d", s.opts.Port)
	return s.server.ListenAndServe()
}

func (s *Server) Stop() error {
	if s.server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("BN9 backend is live ✅"))
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": time.Now().UTC().Format(time.RFC3339),
	})
}

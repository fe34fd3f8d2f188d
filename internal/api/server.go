// Package api exposes a small, read-mostly HTTP surface over the
// running translator: health, a snapshot of current counters, the
// last few business events, the live WebSocket feed, and a single
// protected action to force an AMI reconnect.
package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"calltranslator/internal/auth"
	"calltranslator/internal/config"
	"calltranslator/internal/core"
	"calltranslator/internal/sink"
)

// Reconnector is implemented by the transport in use (ami.Client in
// live mode); replay mode has no reconnect concept and is left nil.
type Reconnector interface {
	Close() error
}

// Server is the read-only API over the engine's live state.
type Server struct {
	config  *config.Config
	engine  *core.Engine
	hub     *sink.Hub
	recent  *sink.Recent
	started time.Time
	reconn  Reconnector
}

// NewServer builds a Server. hub and reconn may be nil when no
// WebSocket sink or reconnectable transport is configured.
func NewServer(cfg *config.Config, engine *core.Engine, hub *sink.Hub, recent *sink.Recent, reconn Reconnector) *Server {
	return &Server{
		config:  cfg,
		engine:  engine,
		hub:     hub,
		recent:  recent,
		started: time.Now(),
		reconn:  reconn,
	}
}

// Start inicia el servidor HTTP y bloquea hasta que falle.
func (s *Server) Start() error {
	addr := s.config.API.Address()
	log.Printf("[API] Iniciando servidor en %s", addr)

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/stats", s.handleStats)
	mux.HandleFunc("/events/recent", s.handleRecent)
	if s.hub != nil {
		mux.Handle("/ws", s.hub)
	}

	protectedMux := http.NewServeMux()
	protectedMux.HandleFunc("/admin/reconnect", s.handleReconnect)

	mainHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) >= len("/admin/") && r.URL.Path[:len("/admin/")] == "/admin/" {
			auth.Middleware(protectedMux).ServeHTTP(w, r)
			return
		}
		mux.ServeHTTP(w, r)
	})

	log.Printf("[API] Servidor iniciado correctamente")
	return http.ListenAndServe(addr, s.corsMiddleware(s.requestIDMiddleware(mainHandler)))
}

// requestIDMiddleware tags every request with a unique ID, echoed back
// in the response headers and in the request log line, so a client
// report ("the reconnect at 10:03 failed") can be matched to one line.
func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := uuid.New().String()
		w.Header().Set("X-Request-ID", id)
		log.Printf("[API] %s %s %s request_id=%s", r.Method, r.URL.Path, r.RemoteAddr, id)
		next.ServeHTTP(w, r)
	})
}

// corsMiddleware agrega headers CORS si está habilitado, y recupera de
// cualquier pánico en un handler para no tumbar el proceso completo.
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.config.API.EnableCORS {
			w.Header().Set("Access-Control-Allow-Origin", "*")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

			if r.Method == "OPTIONS" {
				w.WriteHeader(http.StatusOK)
				return
			}
		}

		defer func() {
			if r := recover(); r != nil {
				log.Printf("[API] PANIC RECOVERED: %v", r)
				w.WriteHeader(http.StatusInternalServerError)
				fmt.Fprintf(w, `{"error": "Internal Server Error"}`)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	clients := 0
	if s.hub != nil {
		clients = s.hub.ClientCount()
	}
	json.NewEncoder(w).Encode(map[string]interface{}{
		"uptime_seconds":    time.Since(s.started).Seconds(),
		"channels":          s.engine.ChannelCount(),
		"bridges":           s.engine.BridgeCount(),
		"websocket_clients": clients,
	})
}

func (s *Server) handleRecent(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	if s.recent == nil {
		json.NewEncoder(w).Encode([]sink.RecentEvent{})
		return
	}
	json.NewEncoder(w).Encode(s.recent.Snapshot())
}

func (s *Server) handleReconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}
	if s.reconn == nil {
		http.Error(w, "reconexión no soportada en este modo", http.StatusNotImplemented)
		return
	}
	if err := s.reconn.Close(); err != nil {
		log.Printf("[API] error al forzar reconexión: %v", err)
		http.Error(w, "error al reconectar", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "reconnecting"})
}

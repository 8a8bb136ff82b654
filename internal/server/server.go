// Package server exposes the template store over HTTP for development: a
// JSON API for listing and rendering templates, and a WebSocket channel
// that announces template changes for live reload.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"

	"github.com/beaufortfrancois/templates/internal/config"
	"github.com/beaufortfrancois/templates/internal/logging"
	"github.com/beaufortfrancois/templates/internal/store"
)

// PreviewServer serves the template store during development
type PreviewServer struct {
	config *config.Config
	store  *store.Store
	logger logging.Logger

	httpServer *http.Server

	clientsMutex sync.Mutex
	clients      map[*websocket.Conn]struct{}
}

// New creates a preview server over a loaded store
func New(cfg *config.Config, st *store.Store, logger logging.Logger) *PreviewServer {
	return &PreviewServer{
		config:  cfg,
		store:   st,
		logger:  logger.WithComponent("server"),
		clients: make(map[*websocket.Conn]struct{}),
	}
}

// renderRequest is the body of POST /render
type renderRequest struct {
	Template string `json:"template"`
	Contexts []any  `json:"contexts"`
}

// renderResponse mirrors a RenderResult
type renderResponse struct {
	Text   string   `json:"text"`
	Errors []string `json:"errors"`
}

// reloadMessage is pushed to WebSocket clients when a template changes
type reloadMessage struct {
	Type     string `json:"type"`
	Template string `json:"template"`
	Change   string `json:"change"`
}

// Handler returns the HTTP handler tree.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /templates", s.handleList)
	mux.HandleFunc("POST /render", s.handleRender)
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	return s.withLogging(mux)
}

// Start serves until the context is cancelled.
func (s *PreviewServer) Start(ctx context.Context) error {
	s.httpServer = &http.Server{
		Addr:              s.config.Addr(),
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go s.broadcastReloads(ctx)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn(context.Background(), err, "server shutdown")
		}
	}()

	s.logger.Info(ctx, "preview server listening", "addr", s.config.Addr())
	if err := s.httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *PreviewServer) handleList(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"templates": s.store.Names()})
}

func (s *PreviewServer) handleRender(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "malformed request body", http.StatusBadRequest)
		return
	}
	if req.Template == "" {
		http.Error(w, "missing template name", http.StatusBadRequest)
		return
	}

	result, err := s.store.Render(req.Template, req.Contexts...)
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	resp := renderResponse{Text: result.Text, Errors: result.Errors}
	if resp.Errors == nil {
		resp.Errors = []string{}
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *PreviewServer) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // development tool, same-host clients
	})
	if err != nil {
		s.logger.Warn(r.Context(), err, "websocket accept failed")
		return
	}

	s.clientsMutex.Lock()
	s.clients[conn] = struct{}{}
	s.clientsMutex.Unlock()
	s.logger.Debug(r.Context(), "websocket client connected")

	// The client only listens; CloseRead surfaces disconnection.
	ctx := conn.CloseRead(r.Context())
	<-ctx.Done()

	s.clientsMutex.Lock()
	delete(s.clients, conn)
	s.clientsMutex.Unlock()
	conn.Close(websocket.StatusNormalClosure, "")
}

// broadcastReloads forwards registry events to every connected client.
func (s *PreviewServer) broadcastReloads(ctx context.Context) {
	events := s.store.Registry().Watch()
	defer s.store.Registry().UnWatch(events)

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			payload, err := json.Marshal(reloadMessage{
				Type:     "reload",
				Template: event.Name,
				Change:   event.Type.String(),
			})
			if err != nil {
				continue
			}
			s.clientsMutex.Lock()
			for conn := range s.clients {
				writeCtx, cancel := context.WithTimeout(ctx, time.Second)
				if err := conn.Write(writeCtx, websocket.MessageText, payload); err != nil {
					s.logger.Debug(ctx, "dropping websocket client", "error", err.Error())
				}
				cancel()
			}
			s.clientsMutex.Unlock()
		}
	}
}

func (s *PreviewServer) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request handled",
			"method", r.Method,
			"path", r.URL.Path,
			"duration", time.Since(start).String(),
		)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

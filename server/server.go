package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
	"github.com/lazharichir/marketmaker/domain"
	"github.com/lazharichir/marketmaker/server/connection"
	"github.com/lazharichir/marketmaker/server/events"
	"github.com/lazharichir/marketmaker/server/handlers"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4096

	defaultHistoryLimit = 10
	shutdownTimeout     = 5 * time.Second
)

// Config holds the HTTP surface settings
type Config struct {
	Addr           string
	AllowedOrigins []string
	SendBuffer     int
}

// Server represents the WebSocket server
type Server struct {
	lobby      *domain.Lobby
	connMgr    *connection.Manager
	cmdRouter  *handlers.CommandRouter
	dispatcher *events.Dispatcher
	logger     *slog.Logger
	cfg        Config
	upgrader   websocket.Upgrader
}

// HistoryResponse is the body of the table history endpoint
type HistoryResponse struct {
	RecentHands  []domain.HandRecord `json:"recent_hands"`
	SessionStats domain.SessionStats `json:"session_stats"`
	CurrentHand  int                 `json:"current_hand"`
}

type errorResponse struct {
	Detail string `json:"detail"`
}

// NewServer wires the connection registry, the event dispatcher and the
// command router around the lobby
func NewServer(cfg Config, lobby *domain.Lobby, persister handlers.Persister, routerCfg handlers.Config, logger *slog.Logger) *Server {
	connMgr := connection.NewManager(logger)
	dispatcher := events.NewDispatcher(connMgr, logger)
	cmdRouter := handlers.NewCommandRouter(lobby, connMgr, dispatcher, persister, logger, routerCfg)

	// Register dispatcher as event handler for the lobby
	lobby.AddEventHandler(dispatcher.HandleEvent)

	s := &Server{
		lobby:      lobby,
		connMgr:    connMgr,
		cmdRouter:  cmdRouter,
		dispatcher: dispatcher,
		logger:     logger,
		cfg:        cfg,
	}
	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}
	return s
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.cfg.AllowedOrigins, origin)
}

// checkOrigin accepts non-browser clients that send no Origin header
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.originAllowed(origin)
}

// corsMiddleware adds CORS headers for allowed origins
func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if origin := r.Header.Get("Origin"); origin != "" && s.originAllowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}

		// Handle preflight requests
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// Handler returns the routed HTTP handler
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws/{tid}/{pid}", s.handleWebSocket)
	mux.HandleFunc("GET /table/{tid}/history", s.handleHistory)
	mux.HandleFunc("GET /table/{tid}/stats", s.handleStats)
	return s.corsMiddleware(mux)
}

// Run serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", s.cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := srv.Shutdown(shutdownCtx)
	// hijacked websocket connections are not tracked by Shutdown
	s.connMgr.CloseAll()
	return err
}

// handleWebSocket upgrades the request and serves the session until the peer goes away
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	tableID, playerID := r.PathValue("tid"), r.PathValue("pid")

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "table", tableID, "error", err)
		return
	}
	s.logger.Info("client connected", "remote", r.RemoteAddr, "table", tableID, "player", playerID)

	client := connection.NewClient(conn, s.cfg.SendBuffer)
	sess := connection.NewSession(tableID, playerID, client)

	go s.writePump(client)

	ctx := r.Context()
	s.cmdRouter.Open(ctx, sess)
	s.readPump(ctx, client, sess)

	s.cmdRouter.Close(sess)
	_ = client.Close()
	s.logger.Info("client disconnected", "table", tableID, "player", sess.PlayerID())
}

// readPump reads messages from the WebSocket connection
func (s *Server) readPump(ctx context.Context, client *connection.Client, sess *connection.Session) {
	client.Conn.SetReadLimit(maxMessageSize)
	_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	client.Conn.SetPongHandler(func(string) error {
		return client.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := client.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				s.logger.Warn("websocket read failed", "player", sess.PlayerID(), "error", err)
			}
			return
		}
		_ = client.Conn.SetReadDeadline(time.Now().Add(pongWait))

		// Process the message through the command router
		s.cmdRouter.HandleCommand(ctx, sess, message)
	}
}

// writePump sends queued messages and keeps the connection alive with pings
func (s *Server) writePump(client *connection.Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.Conn.Close()
	}()

	for {
		select {
		case message := <-client.Outbound():
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				s.logger.Debug("websocket write failed", "error", err)
				_ = client.Close()
				return
			}
		case <-ticker.C:
			_ = client.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = client.Close()
				return
			}
		case <-client.Done():
			_ = client.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(writeWait))
			return
		}
	}
}

// handleHistory returns recent archived hands and session statistics
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{Detail: "limit must be a non-negative integer"})
			return
		}
		limit = n
	}

	table, err := s.lobby.GetTable(r.PathValue("tid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Table not found"})
		return
	}

	table.Lock()
	resp := HistoryResponse{
		RecentHands:  table.RecentHistory(limit),
		SessionStats: table.SessionStats(),
		CurrentHand:  table.HandNumber,
	}
	table.Unlock()

	writeJSON(w, http.StatusOK, resp)
}

// handleStats returns the session statistics of a table
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	table, err := s.lobby.GetTable(r.PathValue("tid"))
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorResponse{Detail: "Table not found"})
		return
	}

	table.Lock()
	stats := table.SessionStats()
	table.Unlock()

	writeJSON(w, http.StatusOK, stats)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

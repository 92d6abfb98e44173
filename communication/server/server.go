// Package server exposes a running engine over HTTP and streams its events
// over WebSocket.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"conquest/communication"
	"conquest/engine"
	"conquest/game"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Local presentation layers only
	},
}

type Server struct {
	engine  engine.Engine
	hub     *Hub
	session string
	mux     *http.ServeMux
}

// NewServer wraps e and subscribes a WebSocket hub to its events.
func NewServer(e engine.Engine) *Server {
	s := &Server{
		engine:  e,
		session: uuid.NewString(),
		mux:     http.NewServeMux(),
	}
	s.hub = NewHub(s.session)
	e.Subscribe(s.hub)

	s.mux.HandleFunc("GET /state", s.handleGetState)
	s.mux.HandleFunc("GET /board", s.handleGetBoard)
	s.mux.HandleFunc("POST /select/{name}", s.handleSelect)
	s.mux.HandleFunc("POST /end-turn", s.handleEndTurn)
	s.mux.HandleFunc("GET /ws", s.handleWS)
	return s
}

func (s *Server) Session() string {
	return s.session
}

func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves until ctx is done, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.mux, ReadHeaderTimeout: 5 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("session", s.session).Msg("serving game")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, communication.StateResponse{Session: s.session, State: s.engine.State()})
}

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, communication.BoardResponse{
		Session:     s.session,
		Territories: communication.Territories(s.engine.Board()),
	})
}

// handleSelect accepts a territory name or numeric id.
func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	id, err := resolveTerritory(s.engine.Board(), name)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.engine.SubmitSelection(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetState(w, r)
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.EndPlayerTurn(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.handleGetState(w, r)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := &wsConn{
		conn: conn,
		send: make(chan []byte, sendBufSize),
	}
	err = s.hub.Attach(client, func() communication.Event {
		state := s.engine.State()
		return communication.Event{Type: communication.EventConnected, State: &state}
	})
	if err != nil {
		log.Error().Err(err).Msg("failed to queue websocket welcome")
		conn.Close()
		return
	}

	go s.hub.writePump(client)
	go s.hub.readPump(client)

	log.Info().Int("total", s.hub.ConnectionCount()).Msg("websocket client connected")
}

func resolveTerritory(b *game.Board, name string) (int, error) {
	if t := b.TerritoryByName(name); t != nil {
		return t.ID, nil
	}
	if id, err := strconv.Atoi(name); err == nil && b.Territory(id) != nil {
		return id, nil
	}
	return 0, fmt.Errorf("territory %q: %w", name, game.ErrUnknownTerritory)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("error encoding response")
	}
}

func writeError(w http.ResponseWriter, err error) {
	code, status := communication.Classify(err)
	if status == http.StatusInternalServerError && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("request failed")
	}
	writeJSON(w, status, communication.ErrorResponse{Error: err.Error(), Code: code})
}

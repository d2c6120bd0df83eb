// Package devserver is an in-memory peer that speaks the messaging wire
// contracts: the REST façades on one side and the push-event rooms on the
// other. It backs the demo CLI and the end-to-end tests; the production data
// service is an external system this package deliberately does not try to
// be.
package devserver

import (
	"log"
	"net/http"

	"github.com/google/uuid"
	"github.com/stafflyhq/chat/internal/config"
	"nhooyr.io/websocket"
)

type Server struct {
	cfg   *config.Config
	hub   *hub
	state *state
}

func New(cfg *config.Config) *Server {
	s := &Server{
		cfg:   cfg,
		hub:   newHub(),
		state: newState(),
	}
	go s.hub.run()
	return s
}

// Subscribed reports whether a connected user has joined a room. Lets tests
// wait for a join frame to land before broadcasting into the room.
func (s *Server) Subscribed(userID, roomID uuid.UUID) bool {
	return s.hub.subscribed(userID, roomID)
}

// Handler builds the full route table.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status": "ok"}`))
	})
	mux.HandleFunc("GET /ws", s.serveWS)

	mux.Handle("GET /api/v1/channels", s.auth(http.HandlerFunc(s.listChannels)))
	mux.Handle("POST /api/v1/channels", s.auth(http.HandlerFunc(s.createChannel)))
	mux.Handle("POST /api/v1/channels/{id}/members", s.auth(http.HandlerFunc(s.addMember)))
	mux.Handle("GET /api/v1/channels/{id}/threads", s.auth(http.HandlerFunc(s.listThreads)))
	mux.Handle("POST /api/v1/channels/{id}/threads", s.auth(http.HandlerFunc(s.createThread)))
	mux.Handle("POST /api/v1/channels/{id}/pins", s.auth(http.HandlerFunc(s.pinMessage)))
	mux.Handle("GET /api/v1/threads/{id}/messages", s.auth(http.HandlerFunc(s.listMessages)))
	mux.Handle("POST /api/v1/threads/{id}/messages", s.auth(http.HandlerFunc(s.createMessage)))
	mux.Handle("PATCH /api/v1/messages/{id}", s.auth(http.HandlerFunc(s.updateMessage)))
	mux.Handle("DELETE /api/v1/messages/{id}", s.auth(http.HandlerFunc(s.deleteMessage)))
	mux.Handle("POST /api/v1/messages/{id}/read", s.auth(http.HandlerFunc(s.markRead)))
	mux.Handle("POST /api/v1/messages/{id}/reactions", s.auth(http.HandlerFunc(s.addReaction)))

	return mux
}

// serveWS upgrades to WebSocket. Auth is done via ?token=xxx query param
// (WebSocket can't send headers).
func (s *Server) serveWS(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	who, err := parseToken(tokenStr, s.cfg.JWTSecret)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // any origin, dev only
	})
	if err != nil {
		log.Printf("ws: accept error: %v", err)
		return
	}

	c := newClient(s.hub, conn, who.userID, who.displayName)
	s.hub.register <- c

	go c.writePump()
	go c.readPump()
}

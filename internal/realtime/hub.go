// Package realtime pushes project events to connected websocket clients.
package realtime

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

type Message struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	ProjectID string `json:"project_id"`
	Kind      string `json:"kind,omitempty"`
}

// client serializes writes; a websocket connection allows one writer at a time.
type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) write(fn func(conn *websocket.Conn) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return fn(c.conn)
}

type Hub struct {
	clients  map[string]map[*client]bool
	mu       sync.RWMutex
	upgrader websocket.Upgrader
}

func NewHub(allowedOrigins []string) *Hub {
	return &Hub{
		clients: make(map[string]map[*client]bool),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || slices.Contains(allowedOrigins, origin)
			},
		},
	}
}

// Clients returns the number of connections registered for the project.
func (h *Hub) Clients(projectID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[projectID])
}

// Broadcast sends msg to every client of the project. Connections that fail
// to accept the write are dropped.
func (h *Hub) Broadcast(projectID string, msg Message) {
	h.mu.RLock()
	clients, exists := h.clients[projectID]
	if !exists || len(clients) == 0 {
		h.mu.RUnlock()
		return
	}

	targets := make([]*client, 0, len(clients))
	for c := range clients {
		targets = append(targets, c)
	}
	h.mu.RUnlock()

	msg.ProjectID = projectID

	for _, c := range targets {
		err := c.write(func(conn *websocket.Conn) error {
			return conn.WriteJSON(msg)
		})
		if err != nil {
			slog.Warn("Failed to broadcast to client", slog.String("project_id", projectID), slog.Any("error", err))
			h.remove(projectID, c)
			c.conn.Close()
		}
	}
}

// Serve upgrades the request and blocks until the client disconnects.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, projectID string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("WebSocket upgrade failed", slog.Any("error", err))
		return
	}

	conn.SetReadLimit(maxMessageSize)
	if err := conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		slog.Warn("Failed to set initial read deadline", slog.Any("error", err))
		conn.Close()
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	c := &client{conn: conn}
	h.add(projectID, c)

	defer func() {
		h.remove(projectID, c)
		conn.Close()
		slog.Debug("WebSocket connection closed", slog.String("project_id", projectID))
	}()

	err = c.write(func(conn *websocket.Conn) error {
		return conn.WriteJSON(Message{
			Type:      "connected",
			Message:   "WebSocket connection established",
			ProjectID: projectID,
		})
	})
	if err != nil {
		slog.Warn("Failed to send welcome message", slog.Any("error", err))
		return
	}

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				err := c.write(func(conn *websocket.Conn) error {
					return conn.WriteMessage(websocket.PingMessage, nil)
				})
				if err != nil {
					return
				}
			}
		}
	}()
	defer func() {
		close(done)
		wg.Wait()
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				slog.Warn("WebSocket error", slog.String("project_id", projectID), slog.Any("error", err))
			}
			return
		}
	}
}

func (h *Hub) add(projectID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[projectID] == nil {
		h.clients[projectID] = make(map[*client]bool)
	}
	h.clients[projectID][c] = true
}

func (h *Hub) remove(projectID string, c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, exists := h.clients[projectID]; exists {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.clients, projectID)
		}
	}
}

package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/gorilla/websocket"

	"github.com/okleong/campscore/internal/eventbus"
	"github.com/okleong/campscore/internal/logger"
	"github.com/okleong/campscore/internal/models"
	"github.com/okleong/campscore/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // scoreboard displays connect from arbitrary LAN hosts
	},
}

// Hub maintains the set of active scoreboard clients and fans out change
// notifications from the event bus. Messages are hints to re-fetch, never
// authoritative deltas; clients that fall behind are dropped rather than
// allowed to block the feed.
type Hub struct {
	log         logger.Logger
	clients     map[*Client]bool
	broadcast   chan models.WSMessage
	register    chan *Client
	unregister  chan *Client
	mutex       sync.RWMutex
	leaderboard services.LeaderboardServicer
}

// Client is a middleman between the websocket connection and the hub
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan models.WSMessage
}

// New creates a new Hub instance with injected dependencies
func New(log logger.Logger, leaderboard services.LeaderboardServicer) *Hub {
	return &Hub{
		log:         log,
		clients:     make(map[*Client]bool),
		broadcast:   make(chan models.WSMessage),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		leaderboard: leaderboard,
	}
}

// Start begins the hub's main loop in a goroutine
func (h *Hub) Start() {
	go h.run()
}

// run handles client registration/unregistration and message broadcasting
func (h *Hub) run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			h.mutex.Unlock()
			h.log.Debug("Client connected", "total_clients", len(h.clients))

			// Tell the new client whether the board is frozen so it knows
			// which view it is looking at
			go func() {
				st, err := h.leaderboard.FreezeState(context.Background())
				if err != nil {
					h.log.Warn("Failed to load freeze state for new client", "error", err)
					return
				}
				h.deliver(client, models.WSMessage{
					Type: eventbus.TypeFreezeChanged,
					Payload: map[string]interface{}{
						"frozen": st.IsFrozen,
					},
				})
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			h.mutex.Unlock()
			h.log.Debug("Client disconnected", "total_clients", len(h.clients))

		case msg := <-h.broadcast:
			h.mutex.RLock()
			for client := range h.clients {
				select {
				case client.send <- msg:
				default:
					// Client's send channel is full, unregister
					go func(c *Client) {
						h.unregister <- c
					}(client)
				}
			}
			h.mutex.RUnlock()
		}
	}
}

// deliver sends a message to a client that may already have disconnected.
// The unregister branch closes the send channel under the write lock, so
// checking membership under the read lock excludes a send on a closed
// channel.
func (h *Hub) deliver(client *Client, msg models.WSMessage) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	if !h.clients[client] {
		return
	}
	select {
	case client.send <- msg:
	default:
	}
}

// BroadcastMessage sends a message to all connected clients
func (h *Hub) BroadcastMessage(msgType string, payload interface{}) {
	h.broadcast <- models.WSMessage{
		Type:    msgType,
		Payload: payload,
	}
}

// Relay consumes the event bus and rebroadcasts every scoreboard event to
// connected clients. Runs until the subscription channel closes or the
// context is cancelled.
func (h *Hub) Relay(ctx context.Context, messages <-chan *message.Message) {
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var ev eventbus.Event
			if err := json.Unmarshal(msg.Payload, &ev); err != nil {
				h.log.Warn("Dropping malformed bus event", "error", err)
				msg.Ack()
				continue
			}
			h.BroadcastMessage(ev.Type, ev.Payload)
			msg.Ack()
		}
	}
}

// readPump pumps messages from the websocket connection to the hub
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		// Clients only listen; anything they send is ignored
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Debug("WebSocket error", "error", err)
			}
			break
		}
	}
}

// writePump pumps messages from the hub to the websocket connection
func (c *Client) writePump() {
	ticker := time.NewTicker(54 * time.Second)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if !ok {
				// Hub closed the channel
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}

			msgBytes, _ := json.Marshal(msg)
			w.Write(msgBytes)

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ServeWs handles websocket requests from clients
func (h *Hub) ServeWs(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Error("WebSocket upgrade error", "error", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan models.WSMessage, 256),
	}
	h.register <- client

	go client.writePump()
	go client.readPump()
}

package chat

import (
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/tkrell/backend/internal/models"
)

// Hub tracks connected chat clients keyed by user id and fans new
// messages out to the recipient's open connections.
type Hub struct {
	clients    map[int64]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	deliveries chan delivery
	mutex      sync.RWMutex
}

type Client struct {
	hub    *Hub
	userID int64
	socket *websocket.Conn
	send   chan []byte
}

type delivery struct {
	userID  int64
	payload []byte
}

// Event is the envelope for everything pushed over the socket.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[int64]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		deliveries: make(chan delivery, 64),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mutex.Lock()
			if h.clients[client.userID] == nil {
				h.clients[client.userID] = make(map[*Client]bool)
			}
			h.clients[client.userID][client] = true
			h.mutex.Unlock()
			log.Printf("[chat] user %d connected (%d connections)", client.userID, h.connectionCount())

		case client := <-h.unregister:
			h.mutex.Lock()
			if conns, ok := h.clients[client.userID]; ok && conns[client] {
				delete(conns, client)
				close(client.send)
				if len(conns) == 0 {
					delete(h.clients, client.userID)
				}
			}
			h.mutex.Unlock()
			log.Printf("[chat] user %d disconnected (%d connections)", client.userID, h.connectionCount())

		case d := <-h.deliveries:
			h.mutex.Lock()
			for client := range h.clients[d.userID] {
				select {
				case client.send <- d.payload:
				default:
					close(client.send)
					delete(h.clients[d.userID], client)
				}
			}
			h.mutex.Unlock()
		}
	}
}

func (h *Hub) connectionCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	n := 0
	for _, conns := range h.clients {
		n += len(conns)
	}
	return n
}

// NotifyMessage pushes a freshly persisted message to a user's open
// connections. Users without a connection just miss the push; the
// message is already in the database.
func (h *Hub) NotifyMessage(userID int64, message *models.Message) {
	h.notify(userID, Event{Type: "new_message", Payload: message})
}

func (h *Hub) notify(userID int64, event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[chat] failed to encode event: %v", err)
		return
	}
	h.deliveries <- delivery{userID: userID, payload: data}
}

// IsOnline reports whether the user has at least one open connection.
func (h *Hub) IsOnline(userID int64) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.clients[userID]) > 0
}

// RegisterClient attaches a websocket connection to the hub and starts
// its pumps.
func (h *Hub) RegisterClient(conn *websocket.Conn, userID int64) *Client {
	client := &Client{
		hub:    h,
		userID: userID,
		socket: conn,
		send:   make(chan []byte, 256),
	}

	h.register <- client

	go client.writePump()
	go client.readPump()

	return client
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.socket.Close()
	}()

	for {
		_, message, err := c.socket.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[chat] read error for user %d: %v", c.userID, err)
			}
			break
		}

		var event Event
		if err := json.Unmarshal(message, &event); err != nil {
			continue
		}

		// The socket is push-oriented; sending goes through the REST
		// API. Only keepalives are handled here.
		if event.Type == "ping" {
			data, _ := json.Marshal(Event{Type: "pong"})
			select {
			case c.send <- data:
			default:
			}
		}
	}
}

func (c *Client) writePump() {
	defer c.socket.Close()

	for message := range c.send {
		if err := c.socket.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.socket.WriteMessage(websocket.CloseMessage, []byte{})
}

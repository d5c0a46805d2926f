// Package transport is the websocket side of the relay: it gives every
// connection an identity, keeps room-style multicast groups and delivers
// JSON envelopes point-to-point or to a whole group.
package transport

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/pion/logging"

	"github.com/mossy-p/p2p-relay/internal/models"
)

// Handler consumes inbound traffic. HandleMessage is called from the
// connection's read goroutine; HandleDisconnect exactly once per connection.
type Handler interface {
	HandleMessage(connID string, msg models.Envelope)
	HandleDisconnect(connID string)
}

type HubConfig struct {
	// SendBuffer is the per-connection outbound queue length. Defaults to 256.
	SendBuffer int

	// LoggerFactory is optional; logging is disabled if nil.
	LoggerFactory logging.LoggerFactory
}

// Hub tracks live connections and their group memberships.
type Hub struct {
	mu         sync.RWMutex
	clients    map[string]*Client
	groups     map[string]map[string]*Client
	sendBuffer int
	log        logging.LeveledLogger
}

func NewHub(config HubConfig) *Hub {
	h := &Hub{
		clients:    make(map[string]*Client),
		groups:     make(map[string]map[string]*Client),
		sendBuffer: config.SendBuffer,
	}
	if h.sendBuffer <= 0 {
		h.sendBuffer = 256
	}

	factory := config.LoggerFactory
	if factory == nil {
		f := logging.NewDefaultLoggerFactory()
		f.DefaultLogLevel = logging.LogLevelDisabled
		factory = f
	}
	h.log = factory.NewLogger("transport")

	return h
}

// Serve registers conn under a fresh identity and starts its pumps.
func (h *Hub) Serve(conn *websocket.Conn, handler Handler) *Client {
	client := &Client{
		ID:      uuid.New().String(),
		Conn:    conn,
		Send:    make(chan []byte, h.sendBuffer),
		hub:     h,
		handler: handler,
		groups:  make(map[string]struct{}),
	}

	h.mu.Lock()
	h.clients[client.ID] = client
	h.mu.Unlock()

	h.log.Infof("Connection %s opened from %s", client.ID, conn.RemoteAddr())

	go client.writePump()
	go client.readPump()

	return client
}

// Send delivers an event to one connection.
func (h *Hub) Send(connID, event string, data any) {
	frame, ok := h.encode(models.Envelope{Event: event}, data)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[connID]; exists {
		client.enqueue(frame)
	}
}

// Reply answers an inbound message that carried an ack id.
func (h *Hub) Reply(connID string, id uint64, data any) {
	frame, ok := h.encode(models.Envelope{Event: models.EventAck, ID: &id}, data)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	if client, exists := h.clients[connID]; exists {
		client.enqueue(frame)
	}
}

// Broadcast delivers an event to every member of the group.
func (h *Hub) Broadcast(roomID, event string, data any) {
	frame, ok := h.encode(models.Envelope{Event: event}, data)
	if !ok {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, client := range h.groups[roomID] {
		client.enqueue(frame)
	}
}

// JoinGroup adds a live connection to the group for roomID. Membership lasts
// until the connection closes.
func (h *Hub) JoinGroup(connID, roomID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	client, exists := h.clients[connID]
	if !exists {
		return
	}
	members, ok := h.groups[roomID]
	if !ok {
		members = make(map[string]*Client)
		h.groups[roomID] = members
	}
	members[connID] = client
	client.groups[roomID] = struct{}{}
}

// Len returns the number of live connections.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// GroupSize returns the number of connections in the group for roomID.
func (h *Hub) GroupSize(roomID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.groups[roomID])
}

func (h *Hub) unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[client.ID]; !ok {
		return
	}
	delete(h.clients, client.ID)
	for roomID := range client.groups {
		members := h.groups[roomID]
		delete(members, client.ID)
		if len(members) == 0 {
			delete(h.groups, roomID)
		}
	}
	close(client.Send)

	h.log.Infof("Connection %s closed", client.ID)
}

func (h *Hub) encode(msg models.Envelope, data any) ([]byte, bool) {
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			h.log.Errorf("Failed to marshal %s payload: %v", msg.Event, err)
			return nil, false
		}
		msg.Data = raw
	}
	frame, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorf("Failed to marshal %s envelope: %v", msg.Event, err)
		return nil, false
	}
	return frame, true
}

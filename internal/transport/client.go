package transport

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mossy-p/p2p-relay/internal/models"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 64 * 1024
)

// Client is one websocket connection registered with the Hub.
type Client struct {
	ID   string
	Conn *websocket.Conn
	Send chan []byte

	hub     *Hub
	handler Handler

	// guarded by hub.mu
	groups map[string]struct{}
}

// enqueue must be called with hub.mu held so Send is not closed underneath.
func (c *Client) enqueue(frame []byte) {
	select {
	case c.Send <- frame:
	default:
		c.hub.log.Warnf("Dropping frame for %s, buffer full", c.ID)
	}
}

func (c *Client) readPump() {
	defer func() {
		c.handler.HandleDisconnect(c.ID)
		c.hub.unregister(c)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warnf("WebSocket error on %s: %v", c.ID, err)
			}
			break
		}

		var msg models.Envelope
		if err := json.Unmarshal(message, &msg); err != nil {
			c.hub.log.Debugf("Failed to parse frame from %s: %v", c.ID, err)
			continue
		}

		c.handler.HandleMessage(c.ID, msg)
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.log.Warnf("Failed to write to %s: %v", c.ID, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

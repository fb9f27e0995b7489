package live

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// writeWait bounds a single frame write.
	writeWait = 10 * time.Second
	// pongWait is how long a client may stay silent before its read fails.
	pongWait = 60 * time.Second
	// pingPeriod must be shorter than pongWait so pings keep the read alive.
	pingPeriod = 54 * time.Second
	// sendBuffer is the per-client queue; a client this far behind is slow.
	sendBuffer = 32
)

// wsConn is the subset of *websocket.Conn the hub drives. It exists so the
// pump and drop logic can be tested without a network.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (messageType int, p []byte, err error)
	SetWriteDeadline(t time.Time) error
	SetReadDeadline(t time.Time) error
	SetReadLimit(limit int64)
	SetPongHandler(h func(appData string) error)
	Close() error
}

// Client is one registered watcher.
type Client struct {
	hub     *Hub
	pointID string
	conn    wsConn
	send    chan []byte
	once    sync.Once
}

// shutdown removes the client from the hub and closes its send channel.
// Removal happens first, so no publisher can queue onto the closed channel.
func (c *Client) shutdown() {
	c.once.Do(func() {
		c.hub.remove(c)
		close(c.send)
	})
}

// writePump is the only writer on the connection. It drains the send queue
// and keeps the client alive with pings; when the queue closes it sends a
// close frame and hangs up.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				c.shutdown()
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.shutdown()
				return
			}
		}
	}
}

// readPump discards inbound messages. The feed is one-way; reading exists
// to process control frames and to notice the client leaving.
func (c *Client) readPump() {
	defer c.shutdown()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// clientMessage is what a subscriber may send us. Only the filter toggle is
// understood; anything else is ignored.
type clientMessage struct {
	Type   string `json:"type"`
	EVOnly bool   `json:"ev_only"`
}

// Connection represents one subscribed map client. Each connection keeps its
// own EV filter flag; pushed snapshots are filtered per connection.
type Connection struct {
	id           string
	ws           *websocket.Conn
	send         chan []byte
	logger       *zap.Logger
	writeTimeout time.Duration
	onClose      func(*Connection)
	onFilter     func(*Connection)

	mu     sync.Mutex
	evOnly bool
}

// NewConnection builds connection wrapper.
func NewConnection(id string, ws *websocket.Conn, writeTimeout time.Duration, logger *zap.Logger, onClose, onFilter func(*Connection)) *Connection {
	return &Connection{
		id:           id,
		ws:           ws,
		send:         make(chan []byte, 16),
		logger:       logger,
		writeTimeout: writeTimeout,
		onClose:      onClose,
		onFilter:     onFilter,
	}
}

// ID returns identifier.
func (c *Connection) ID() string {
	return c.id
}

// EVOnly returns the connection's filter flag.
func (c *Connection) EVOnly() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.evOnly
}

// Start launches read/write pumps and blocks until the read side closes.
func (c *Connection) Start(ctx context.Context) {
	go c.writePump(ctx)
	c.readPump(ctx)
}

func (c *Connection) readPump(ctx context.Context) {
	defer c.cleanup()
	c.ws.SetReadLimit(4096)
	c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
	c.ws.SetPongHandler(func(string) error {
		c.ws.SetReadDeadline(time.Now().Add(60 * time.Second))
		return nil
	})

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.ws.ReadMessage()
		if err != nil {
			c.logger.Info("subscriber disconnected", zap.String("conn_id", c.id), zap.Error(err))
			return
		}

		var msg clientMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			c.logger.Warn("ignoring malformed client message", zap.String("conn_id", c.id), zap.Error(err))
			continue
		}
		if msg.Type != "filter" {
			continue
		}

		c.mu.Lock()
		c.evOnly = msg.EVOnly
		c.mu.Unlock()
		if c.onFilter != nil {
			c.onFilter(c)
		}
	}
}

func (c *Connection) writePump(ctx context.Context) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-c.send:
			if !ok {
				_ = c.write(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.write(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.write(websocket.PingMessage, []byte("ping")); err != nil {
				return
			}
		}
	}
}

// Send enqueues a message for writing. A slow subscriber loses messages
// rather than blocking the broadcast; the next snapshot supersedes anything
// dropped.
func (c *Connection) Send(msg []byte) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Warn("attempted to send on closed channel", zap.String("conn_id", c.id))
		}
	}()
	select {
	case c.send <- msg:
	default:
		c.logger.Warn("dropping snapshot push, buffer full", zap.String("conn_id", c.id))
	}
}

func (c *Connection) write(messageType int, data []byte) error {
	c.ws.SetWriteDeadline(time.Now().Add(c.writeTimeout))
	return c.ws.WriteMessage(messageType, data)
}

func (c *Connection) cleanup() {
	close(c.send)
	_ = c.ws.Close()
	if c.onClose != nil {
		c.onClose(c)
	}
}
